package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"lumira-go/internal/model"
	"lumira-go/pkg/gigachat"
)

// 分步解题里识别"да/нет"答复的固定词表（двуязычный）。
var (
	yesWords = map[string]struct{}{
		"yes": {}, "y": {}, "да": {}, "ага": {},
		"понял": {}, "поняла": {}, "понял.": {}, "поняла.": {},
	}
	noWords = map[string]struct{}{
		"no": {}, "n": {}, "нет": {}, "неа": {}, "не": {},
		"не понял": {}, "не поняла": {},
	}
)

// IsAffirmative 判断输入是否恰好为肯定答复之一（按 trim+lower 后精确匹配）。
func IsAffirmative(text string) bool {
	_, ok := yesWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// IsNegative 判断输入是否恰好为否定答复之一。
func IsNegative(text string) bool {
	_, ok := noWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

const plannerPrompt = `Ты помощник по решению учебных задач. Разбей решение задачи на короткие понятные шаги.

Формат вывода строго такой — пронумерованный список, по одному шагу на строку:
1. <первый шаг>
2. <второй шаг>
...

Не добавляй вступлений и выводов, только шаги.`

var stepLine = regexp.MustCompile(`^\s*(\d+)[.)]\s*(.+)$`)

const confirmSuffix = "\n\nПонятно? (да/нет)"

// StartProblemSolver 启动一次分步解题：请模型把题目拆成步骤，
// 返回展示第一步的回复与新的激活子状态。
func StartProblemSolver(ctx context.Context, llm gigachat.Client, problem string) (string, model.ProblemSolverState, error) {
	inactive := model.ProblemSolverState{Steps: []string{}}

	reply, err := llm.Chat(ctx, []gigachat.Message{
		{Role: "system", Content: plannerPrompt},
		{Role: "user", Content: problem},
	})
	if err != nil {
		return "", inactive, err
	}

	steps := parseSteps(reply)
	if len(steps) == 0 {
		return "", inactive, fmt.Errorf("problem solver returned no parseable steps")
	}

	topic := problem
	state := model.ProblemSolverState{
		Active:      true,
		Topic:       &topic,
		Steps:       steps,
		CurrentStep: 0,
	}

	answer := fmt.Sprintf("Разберём задачу по шагам (всего шагов: %d).\n\nШаг 1: %s%s",
		len(steps), steps[0], confirmSuffix)
	return answer, state, nil
}

// ContinueProblemSolver 处理激活会话中的 да/нет 答复。
// 肯定答复推进到下一步；越过最后一步时会话结束（Active=false，
// Topic/Steps 留作痕迹）。否定答复请模型重新解释当前步骤，
// CurrentStep 绝不变化。
func ContinueProblemSolver(ctx context.Context, llm gigachat.Client, state model.ProblemSolverState, reply string) (string, model.ProblemSolverState, error) {
	if !state.Active || len(state.Steps) == 0 {
		state.Active = false
		return "Сейчас нет активного разбора задачи.", state, nil
	}

	// 持久化状态可能带着越界的步骤指针；负值归零，
	// 越过末尾视为会话已经完成
	if state.CurrentStep < 0 {
		state.CurrentStep = 0
	}
	if state.CurrentStep >= len(state.Steps) {
		state.Active = false
		return "Отлично, мы разобрали все шаги! Если хочешь, пришли новую задачу.", state, nil
	}

	if IsAffirmative(reply) {
		state.CurrentStep++
		if state.CurrentStep >= len(state.Steps) {
			state.Active = false
			return "Отлично, мы разобрали все шаги! Если хочешь, пришли новую задачу.", state, nil
		}
		answer := fmt.Sprintf("Шаг %d: %s%s", state.CurrentStep+1, state.Steps[state.CurrentStep], confirmSuffix)
		return answer, state, nil
	}

	// 否定答复：重新解释当前步骤，不推进
	step := state.Steps[state.CurrentStep]
	explained, err := llm.Chat(ctx, []gigachat.Message{
		{Role: "system", Content: "Ты терпеливый репетитор. Объясни шаг решения подробнее и проще, с примером."},
		{Role: "user", Content: fmt.Sprintf("Задача: %s\nШаг: %s", derefOr(state.Topic, ""), step)},
	})
	if err != nil {
		return "", state, err
	}
	return explained + confirmSuffix, state, nil
}

// parseSteps 把模型输出的编号行解析为步骤列表。
func parseSteps(reply string) []string {
	var steps []string
	for _, line := range strings.Split(reply, "\n") {
		if m := stepLine.FindStringSubmatch(line); m != nil {
			steps = append(steps, strings.TrimSpace(m[2]))
		}
	}
	return steps
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
