package agent

import (
	"context"

	"lumira-go/pkg/gigachat"
)

const summarizerPrompt = `You are a Summarizer agent.
The user will send a large text (article, OCR output, lecture, etc.).
Your goal is to extract the main information in a concise but informative way.

Instructions:
1) Provide a short summary of the text (5-10 lines) highlighting the essential ideas.
2) After the summary, list the main topics/insights as bullet points.
3) If parts of the text are missing or unclear, mention it briefly in the summary.

Output format:
Summary:
<your 5-10 line summary>

Main topics:
- topic 1
- topic 2
- ...`

// RunSummarizer 把大段文本交给模型做摘要，回复原样返回。
func RunSummarizer(ctx context.Context, llm gigachat.Client, text string) (string, error) {
	return llm.Chat(ctx, []gigachat.Message{
		{Role: "system", Content: summarizerPrompt},
		{Role: "user", Content: text},
	})
}
