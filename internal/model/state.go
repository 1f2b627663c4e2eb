// Package model 包含了应用的数据模型定义。
package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RoleUser 和 RoleAssistant 是对话消息的两种角色。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage 代表辅导历史中的单条消息。
type ChatMessage struct {
	Role    string `json:"role"` // "user" 或 "assistant"
	Content string `json:"content"`
}

// ProblemSolverState 是分步解题会话的子状态。
// 注意：会话结束或被隐式放弃后 Topic/Steps 可能残留旧值，
// 调用方只能以 Active 判断会话是否进行中。
type ProblemSolverState struct {
	Active      bool     `json:"active"`
	Topic       *string  `json:"topic"`
	Steps       []string `json:"steps"`
	CurrentStep int      `json:"current_step"`
}

// DialogState 是每个对话独占的可序列化状态，整体读-改-写。
type DialogState struct {
	TutorHistory  []ChatMessage      `json:"tutor_history"`
	LastTopic     *string            `json:"last_topic"`
	CurrentTest   map[int]string     `json:"current_test"`
	ProblemSolver ProblemSolverState `json:"problem_solver"`
}

// NewDialogState 创建一个干净的对话状态。
func NewDialogState() DialogState {
	return DialogState{
		TutorHistory: []ChatMessage{},
		ProblemSolver: ProblemSolverState{
			Steps: []string{},
		},
	}
}

// rawState 是用于宽容解析持久化状态的中间结构。
// 旧版本状态可能缺字段，current_test 的键在 JSON 里是字符串。
type rawState struct {
	TutorHistory  []ChatMessage   `json:"tutor_history"`
	LastTopic     *string         `json:"last_topic"`
	CurrentTest   json.RawMessage `json:"current_test"`
	ProblemSolver *struct {
		Active      *bool     `json:"active"`
		Topic       *string   `json:"topic"`
		Steps       []string  `json:"steps"`
		CurrentStep *int      `json:"current_step"`
	} `json:"problem_solver"`
}

// NormalizeState 把任意持久化内容恢复成结构完整的 DialogState。
// 输入不是合法 JSON 对象时返回初始状态；缺失字段逐项补默认值；
// current_test 重建为 int -> 大写字母，键不可解析的条目丢弃，
// 结果为空时字段变为 nil（"没有条目"与"没有测试"不可区分）。
// 该函数是幂等的。
func NormalizeState(raw []byte) DialogState {
	state := NewDialogState()

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return state
	}

	var parsed rawState
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return state
	}

	if parsed.TutorHistory != nil {
		state.TutorHistory = parsed.TutorHistory
	}
	state.LastTopic = parsed.LastTopic
	state.CurrentTest = normalizeTest(parsed.CurrentTest)

	if ps := parsed.ProblemSolver; ps != nil {
		if ps.Active != nil {
			state.ProblemSolver.Active = *ps.Active
		}
		state.ProblemSolver.Topic = ps.Topic
		if ps.Steps != nil {
			state.ProblemSolver.Steps = ps.Steps
		}
		if ps.CurrentStep != nil {
			state.ProblemSolver.CurrentStep = *ps.CurrentStep
		}
	}

	// 步骤指针夹取到合法范围，坏数据不能让后续索引越界
	if state.ProblemSolver.CurrentStep < 0 {
		state.ProblemSolver.CurrentStep = 0
	}
	if n := len(state.ProblemSolver.Steps); n > 0 && state.ProblemSolver.CurrentStep >= n {
		state.ProblemSolver.CurrentStep = n - 1
	}

	return state
}

// normalizeTest 把持久化的 current_test 重建为规范形式。
func normalizeTest(raw json.RawMessage) map[int]string {
	if len(raw) == 0 {
		return nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	// 持久化形态：键为字符串的对象
	var asStrings map[string]string
	if err := json.Unmarshal(raw, &asStrings); err != nil {
		// 兼容旧形态：值可能是任意标量，按字面转成字符串
		var loose map[string]interface{}
		if err := json.Unmarshal(raw, &loose); err != nil {
			return nil
		}
		asStrings = make(map[string]string, len(loose))
		for k, v := range loose {
			switch val := v.(type) {
			case string:
				asStrings[k] = val
			case float64:
				asStrings[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				asStrings[k] = strconv.FormatBool(val)
			}
		}
	}

	normalized := make(map[int]string, len(asStrings))
	for k, v := range asStrings {
		idx, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			continue
		}
		normalized[idx] = strings.ToUpper(v)
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

// Marshal 把状态序列化为存储用的 JSON。
func (s DialogState) Marshal() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
