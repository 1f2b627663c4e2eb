package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumira-go/internal/model"
	"lumira-go/pkg/gigachat"
)

// stubLLM 按顺序返回预置的回复。
type stubLLM struct {
	replies []string
	calls   int
	err     error
}

func (s *stubLLM) Chat(ctx context.Context, messages []gigachat.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.calls >= len(s.replies) {
		return "", errors.New("stub: no more replies")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func TestStartProblemSolver(t *testing.T) {
	llm := &stubLLM{replies: []string{"1. Прочитай условие\n2. Составь уравнение\n3. Реши уравнение"}}

	answer, state, err := StartProblemSolver(context.Background(), llm, "реши задачу про поезд")
	require.NoError(t, err)

	assert.True(t, state.Active)
	assert.Equal(t, 0, state.CurrentStep)
	assert.Len(t, state.Steps, 3)
	require.NotNil(t, state.Topic)
	assert.Equal(t, "реши задачу про поезд", *state.Topic)
	assert.Contains(t, answer, "Шаг 1")
	assert.Contains(t, answer, "да/нет")
}

func TestStartProblemSolverUnparseable(t *testing.T) {
	llm := &stubLLM{replies: []string{"не могу разбить на шаги"}}
	_, state, err := StartProblemSolver(context.Background(), llm, "задача")
	assert.Error(t, err)
	assert.False(t, state.Active)
}

func TestContinueAdvancesAndCompletes(t *testing.T) {
	llm := &stubLLM{replies: []string{"1. a\n2. b\n3. c"}}
	_, state, err := StartProblemSolver(context.Background(), llm, "задача")
	require.NoError(t, err)

	answer, state, err := ContinueProblemSolver(context.Background(), llm, state, "да")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, 1, state.CurrentStep)
	assert.Contains(t, answer, "Шаг 2")

	_, state, err = ContinueProblemSolver(context.Background(), llm, state, "yes")
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentStep)

	// 第三次肯定答复越过最后一步，会话结束
	answer, state, err = ContinueProblemSolver(context.Background(), llm, state, "ага")
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Contains(t, answer, "все шаги")
	// 结束后 Topic/Steps 留作痕迹
	assert.NotEmpty(t, state.Steps)
	assert.NotNil(t, state.Topic)
}

func TestContinueNegativeNeverAdvances(t *testing.T) {
	llm := &stubLLM{replies: []string{"1. a\n2. b", "подробное объяснение шага"}}
	_, state, err := StartProblemSolver(context.Background(), llm, "задача")
	require.NoError(t, err)

	answer, state, err := ContinueProblemSolver(context.Background(), llm, state, "нет")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, 0, state.CurrentStep)
	assert.Contains(t, answer, "подробное объяснение шага")
}

func TestContinueStepIndexOutOfRange(t *testing.T) {
	topic := "задача"

	// шаг за пределами списка: сессия считается завершённой, без паники
	state := model.ProblemSolverState{
		Active: true, Topic: &topic, Steps: []string{"один"}, CurrentStep: 7,
	}
	answer, state, err := ContinueProblemSolver(context.Background(), &stubLLM{}, state, "нет")
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Contains(t, answer, "все шаги")

	// отрицательный шаг выправляется в начало
	state = model.ProblemSolverState{
		Active: true, Topic: &topic, Steps: []string{"a", "b"}, CurrentStep: -3,
	}
	answer, state, err = ContinueProblemSolver(context.Background(), &stubLLM{}, state, "да")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, 1, state.CurrentStep)
	assert.Contains(t, answer, "Шаг 2")
}

func TestYesNoWordSets(t *testing.T) {
	for _, w := range []string{"yes", "y", "да", "ага", "понял", "Поняла.", "  ДА  "} {
		assert.True(t, IsAffirmative(w), w)
	}
	for _, w := range []string{"no", "n", "нет", "неа", "не понял"} {
		assert.True(t, IsNegative(w), w)
	}
	assert.False(t, IsAffirmative("да, а ещё объясни"))
	assert.False(t, IsNegative("не знаю"))
}
