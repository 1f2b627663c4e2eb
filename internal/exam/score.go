package exam

import (
	"fmt"
	"sort"
	"strings"
)

// Score 按答案表给自由文本的答卷判分。
// 答卷按空白切分，每个记号应为 题号+字母（如 "3b"）；
// 解析不了的记号直接忽略，既不算对也不算错。
// 比较不区分大小写；返回报告文本、答对数与总题数。
func Score(key map[int]string, submission string) (string, int, int) {
	total := len(key)
	submitted := make(map[int]string)
	for _, tok := range strings.Fields(submission) {
		m := answerToken.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		var idx int
		fmt.Sscanf(m[1], "%d", &idx)
		submitted[idx] = strings.ToUpper(m[2])
	}

	indexes := make([]int, 0, len(key))
	for idx := range key {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	correct := 0
	var report strings.Builder
	report.WriteString("Результаты проверки:\n")
	for _, idx := range indexes {
		expected := strings.ToUpper(key[idx])
		given, ok := submitted[idx]
		switch {
		case !ok:
			report.WriteString(fmt.Sprintf("Вопрос %d: нет ответа (правильный: %s)\n", idx, expected))
		case given == expected:
			correct++
			report.WriteString(fmt.Sprintf("Вопрос %d: %s — верно\n", idx, given))
		default:
			report.WriteString(fmt.Sprintf("Вопрос %d: %s — неверно (правильный: %s)\n", idx, given, expected))
		}
	}
	report.WriteString(fmt.Sprintf("\nИтог: %d/%d (%d%%)", correct, total, Percent(correct, total)))

	return report.String(), correct, total
}

// Percent 计算整数百分比，向下取整；total 为 0 时返回 0。
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return correct * 100 / total
}
