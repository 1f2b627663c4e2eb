// Package agent 实现了与大模型交互的五个教学智能体，
// 以及把用户输入分派给它们的模式分类。
package agent

import (
	"context"
	"unicode"

	"lumira-go/pkg/gigachat"
)

// Agent 是闭集的智能体选择器。分类结果不在集合内时
// 一律落到 AgentUnknown，由路由层兜底，避免误分派。
type Agent int

const (
	AgentUnknown Agent = iota
	AgentTutor
	AgentExaminer
	AgentAnalyser
	AgentProblemSolver
	AgentSummarizer
)

func (a Agent) String() string {
	switch a {
	case AgentTutor:
		return "tutor"
	case AgentExaminer:
		return "examiner"
	case AgentAnalyser:
		return "analyser"
	case AgentProblemSolver:
		return "problem_solver"
	case AgentSummarizer:
		return "summarizer"
	default:
		return "unknown"
	}
}

const moderatorPrompt = `Ты модератор учебного ассистента. Определи, какой режим нужен для запроса пользователя.

Режимы:
1 — объяснение темы, вопрос по материалу (репетитор)
2 — просьба провести тест или проверить знания (экзаменатор)
3 — пользователь прислал ответы на тест, например "1a 2b 3c" (проверка ответов)
4 — просьба решить задачу по шагам (решатель задач)
5 — просьба кратко пересказать большой текст (суммаризатор)

Также определи, меняет ли запрос тему разговора: 1 — да, 0 — нет.

Ответь строго двумя числами через пробел, например: "1 1" или "3 0".`

// Classify 调用模型对一次用户输入做分类，
// 返回智能体选择器与"话题已切换"标志。
func Classify(ctx context.Context, llm gigachat.Client, text string) (Agent, bool, error) {
	reply, err := llm.Chat(ctx, []gigachat.Message{
		{Role: "system", Content: moderatorPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		return AgentUnknown, false, err
	}
	agent, topicChanged := parseModeratorReply(reply)
	return agent, topicChanged, nil
}

// parseModeratorReply 宽容地解析模型回复：取前两个数字，
// 第一个映射到智能体编号，第二个非零表示话题切换。
func parseModeratorReply(reply string) (Agent, bool) {
	var digits []int
	for _, r := range reply {
		if unicode.IsDigit(r) {
			digits = append(digits, int(r-'0'))
			if len(digits) == 2 {
				break
			}
		}
	}
	if len(digits) == 0 {
		return AgentUnknown, false
	}

	agent := AgentUnknown
	switch digits[0] {
	case 1:
		agent = AgentTutor
	case 2:
		agent = AgentExaminer
	case 3:
		agent = AgentAnalyser
	case 4:
		agent = AgentProblemSolver
	case 5:
		agent = AgentSummarizer
	}

	topicChanged := len(digits) > 1 && digits[1] != 0
	return agent, topicChanged
}
