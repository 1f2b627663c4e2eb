package miniapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:test-bot-token"

// signInitData 按平台算法给一组字段签名并生成 URL 编码负载。
func signInitData(t *testing.T, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}

	secret := sha256.Sum256([]byte(testBotToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func validFields() map[string]string {
	return map[string]string{
		"auth_date": "1735689600",
		"query_id":  "AAH9mZkE",
		"user":      `{"id":77771234,"first_name":"Мария","username":"maria_study"}`,
	}
}

func TestVerifyValidPayload(t *testing.T) {
	user, err := Verify(signInitData(t, validFields()), testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(77771234), user.ID)
	assert.Equal(t, "maria_study", user.Username)
}

func TestVerifyFieldOrderDoesNotMatter(t *testing.T) {
	fields := validFields()
	signed := signInitData(t, fields)
	values, err := url.ParseQuery(signed)
	require.NoError(t, err)

	// 手工按相反顺序重排负载，签名排序应使其归一化
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	var parts []string
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(values.Get(k)))
	}
	reordered := strings.Join(parts, "&")

	user, err := Verify(reordered, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(77771234), user.ID)
}

func TestVerifyTamperedFieldRejected(t *testing.T) {
	fields := validFields()
	signed := signInitData(t, fields)
	tampered := strings.Replace(signed, "1735689600", "1735689601", 1)

	_, err := Verify(tampered, testBotToken)
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestVerifyMissingHashRejected(t *testing.T) {
	values := url.Values{}
	for k, v := range validFields() {
		values.Set(k, v)
	}
	_, err := Verify(values.Encode(), testBotToken)
	assert.ErrorIs(t, err, ErrHashMissing)
}

func TestVerifyWrongTokenRejected(t *testing.T) {
	_, err := Verify(signInitData(t, validFields()), "another-token")
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestVerifyUserErrors(t *testing.T) {
	fields := validFields()
	delete(fields, "user")
	_, err := Verify(signInitData(t, fields), testBotToken)
	assert.ErrorIs(t, err, ErrUserMissing)

	fields = validFields()
	fields["user"] = "{broken"
	_, err = Verify(signInitData(t, fields), testBotToken)
	assert.ErrorIs(t, err, ErrUserMalformed)
}
