package agent

import (
	"context"

	"lumira-go/pkg/gigachat"
)

const examinerPrompt = `Ты экзаменатор. Составь тест из 5 вопросов с вариантами ответов a-d по заданной теме.

Формат вывода строго такой:
Тема: <короткое название темы>
1. <вопрос>
a) <вариант> b) <вариант> c) <вариант> d) <вариант>
...
Ответы: 1a 2b 3c 4d 5a

Никакого другого текста не добавляй.`

// RunExaminer 请模型按约定格式出一份测试，返回原始文本，
// 解析交给 exam.Parse。
func RunExaminer(ctx context.Context, llm gigachat.Client, topic string) (string, error) {
	return llm.Chat(ctx, []gigachat.Message{
		{Role: "system", Content: examinerPrompt},
		{Role: "user", Content: "Тема теста: " + topic},
	})
}
