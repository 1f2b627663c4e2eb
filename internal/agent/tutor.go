package agent

import (
	"context"

	"lumira-go/internal/model"
	"lumira-go/pkg/gigachat"
)

const tutorPrompt = `Ты терпеливый школьный репетитор Lumira. Объясняй темы простым языком,
приводи примеры и отвечай на вопросы, опираясь на предыдущий разговор.
Отвечай на языке пользователя.`

// 传给模型的历史上限；存储中的历史本身不截断。
const tutorHistoryWindow = 20

// RunTutor 执行一轮辅导对话并返回追加了本轮交互的新历史。
func RunTutor(ctx context.Context, llm gigachat.Client, text string, history []model.ChatMessage) (string, []model.ChatMessage, error) {
	window := history
	if len(window) > tutorHistoryWindow {
		window = window[len(window)-tutorHistoryWindow:]
	}

	messages := make([]gigachat.Message, 0, len(window)+2)
	messages = append(messages, gigachat.Message{Role: "system", Content: tutorPrompt})
	for _, m := range window {
		messages = append(messages, gigachat.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, gigachat.Message{Role: model.RoleUser, Content: text})

	answer, err := llm.Chat(ctx, messages)
	if err != nil {
		return "", history, err
	}

	updated := append(history,
		model.ChatMessage{Role: model.RoleUser, Content: text},
		model.ChatMessage{Role: model.RoleAssistant, Content: answer},
	)
	return answer, updated, nil
}
