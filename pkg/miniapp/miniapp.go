// Package miniapp 校验嵌入式客户端（Telegram Mini App）的签名初始化数据。
// 校验算法必须与签发平台逐位一致，否则无法互操作。
package miniapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// 校验失败的错误分类：缺失/不匹配的签名属于认证错误，
// user 字段的问题属于请求格式错误。
var (
	ErrHashMissing   = errors.New("miniapp: init data has no hash field")
	ErrHashMismatch  = errors.New("miniapp: init data signature mismatch")
	ErrUserMissing   = errors.New("miniapp: init data has no user field")
	ErrUserMalformed = errors.New("miniapp: init data user field is not valid JSON")
)

// User 是签名负载中 user 字段携带的外部身份。
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
}

// Verify 校验 URL 编码的 init data 并返回其中的外部用户。
// 步骤：取出 hash 字段；其余键按字节序排序拼成 "key=value" 行
// （\n 分隔，无结尾换行）；以 SHA-256(botToken) 的原始字节为密钥计算
// HMAC-SHA256；十六进制编码后与 hash 恒定时间比较；最后解析 user JSON。
func Verify(initData, botToken string) (*User, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("miniapp: cannot parse init data: %w", err)
	}

	providedHash := values.Get("hash")
	if providedHash == "" {
		return nil, ErrHashMissing
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var checkString strings.Builder
	for i, k := range keys {
		if i > 0 {
			checkString.WriteByte('\n')
		}
		checkString.WriteString(k)
		checkString.WriteByte('=')
		checkString.WriteString(values.Get(k))
	}

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(checkString.String()))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(providedHash))) {
		return nil, ErrHashMismatch
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrUserMissing
	}
	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, ErrUserMalformed
	}
	if user.ID == 0 {
		return nil, ErrUserMalformed
	}
	return &user, nil
}
