// Package exam 负责试卷文本的解析与判分。
package exam

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// answerToken 匹配 "1a" 这样的 题号+单个字母 的答案记号。
var answerToken = regexp.MustCompile(`^([0-9]+)([a-zA-Zа-яА-ЯёЁ])$`)

// Parsed 是出题智能体原始输出解析后的结构。
type Parsed struct {
	Questions string         // 展示给用户的题目文本
	Key       map[int]string // 题号 -> 正确答案字母（大写）
	Topic     string         // 规范化的主题名
}

// Parse 解析出题智能体的原始输出。约定的格式：
//
//	Тема: <主题>
//	<题目与选项若干行>
//	Ответы: 1a 2b 3c ...
//
// 缺少主题行或答案行都视为协作方违反契约，返回错误。
func Parse(raw string) (*Parsed, error) {
	var (
		topic     string
		key       map[int]string
		questions []string
	)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		lowered := strings.ToLower(trimmed)

		switch {
		case strings.HasPrefix(lowered, "тема:"):
			topic = strings.TrimSpace(trimmed[len("Тема:"):])
		case strings.HasPrefix(lowered, "ответы:"):
			key = parseAnswerLine(trimmed[len("Ответы:"):])
		default:
			questions = append(questions, line)
		}
	}

	if topic == "" {
		return nil, fmt.Errorf("exam output has no topic line")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("exam output has no parseable answer key")
	}

	return &Parsed{
		Questions: strings.TrimSpace(strings.Join(questions, "\n")),
		Key:       key,
		Topic:     topic,
	}, nil
}

// parseAnswerLine 把 "1a 2b 3c" 行解析为答案表。
func parseAnswerLine(line string) map[int]string {
	key := make(map[int]string)
	for _, tok := range strings.Fields(line) {
		m := answerToken.FindStringSubmatch(strings.TrimSuffix(tok, ","))
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		key[idx] = strings.ToUpper(m[2])
	}
	if len(key) == 0 {
		return nil
	}
	return key
}
