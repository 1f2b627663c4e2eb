package exam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreMixedSubmission(t *testing.T) {
	key := map[int]string{1: "A", 2: "B", 3: "C"}

	// q1 верно, q2 неверно, q3 без ответа, q4 нет в ключе
	report, correct, total := Score(key, "1a 2x 4c")

	assert.Equal(t, 1, correct)
	assert.Equal(t, 3, total)
	assert.Equal(t, 33, Percent(correct, total))
	assert.Contains(t, report, "1/3")
	assert.Contains(t, report, "33%")
}

func TestScoreCaseInsensitive(t *testing.T) {
	key := map[int]string{1: "A", 2: "b"}
	_, correct, total := Score(key, "1A 2B")
	assert.Equal(t, 2, correct)
	assert.Equal(t, 2, total)
}

func TestScoreIgnoresGarbageTokens(t *testing.T) {
	key := map[int]string{1: "A"}
	_, correct, total := Score(key, "мусор 1 a 12 ??? 1a")
	assert.Equal(t, 1, correct)
	assert.Equal(t, 1, total)
}

func TestScoreEmptyKey(t *testing.T) {
	report, correct, total := Score(map[int]string{}, "1a")
	assert.Equal(t, 0, correct)
	assert.Equal(t, 0, total)
	assert.Contains(t, report, "0/0 (0%)")
}

func TestPercentFloor(t *testing.T) {
	assert.Equal(t, 66, Percent(2, 3))
	assert.Equal(t, 0, Percent(0, 5))
	assert.Equal(t, 100, Percent(5, 5))
	assert.Equal(t, 0, Percent(3, 0))
}

func TestParseExamOutput(t *testing.T) {
	raw := strings.Join([]string{
		"Тема: Планеты Солнечной системы",
		"1. Какая планета ближе всех к Солнцу?",
		"a) Венера b) Меркурий c) Марс d) Юпитер",
		"2. У какой планеты есть кольца?",
		"a) Сатурн b) Земля c) Меркурий d) Венера",
		"Ответы: 1b 2a",
	}, "\n")

	parsed, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Планеты Солнечной системы", parsed.Topic)
	assert.Equal(t, map[int]string{1: "B", 2: "A"}, parsed.Key)
	assert.Contains(t, parsed.Questions, "Какая планета")
	assert.NotContains(t, parsed.Questions, "Ответы")
	assert.NotContains(t, parsed.Questions, "Тема:")
}

func TestParseExamMissingSections(t *testing.T) {
	_, err := Parse("1. Вопрос без темы\nОтветы: 1a")
	assert.Error(t, err)

	_, err = Parse("Тема: дроби\n1. Вопрос без ответов")
	assert.Error(t, err)
}
