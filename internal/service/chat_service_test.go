package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumira-go/internal/model"
	"lumira-go/pkg/gigachat"
	"lumira-go/pkg/log"
)

// TestMain 初始化全局 logger，避免降级路径上的 log 调用触发空指针。
func TestMain(m *testing.M) {
	log.Init("error", "json", "")
	os.Exit(m.Run())
}

// scriptedLLM 按顺序回放预置回复，脚本耗尽即报错。
type scriptedLLM struct {
	replies []string
	calls   int
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []gigachat.Message) (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("scripted llm: unexpected call")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

// fakeTestResultRepo 在内存里收集插入的测验结果。
type fakeTestResultRepo struct {
	inserted []model.TestResult
	recent   []model.TestResult
}

func (f *fakeTestResultRepo) Insert(result *model.TestResult) error {
	f.inserted = append(f.inserted, *result)
	return nil
}

func (f *fakeTestResultRepo) FindRecent(limit int, topicFilter string) ([]model.TestResult, error) {
	return f.recent, nil
}

func newRouterUnderTest(llm *scriptedLLM) (*chatService, *fakeTestResultRepo) {
	repo := &fakeTestResultRepo{}
	return &chatService{
		testResultRepo: repo,
		llm:            llm,
		progress:       NewProgressService(repo),
	}, repo
}

func TestRouteBlankInput(t *testing.T) {
	svc, _ := newRouterUnderTest(&scriptedLLM{})
	state := model.NewDialogState()

	answer, err := svc.route(context.Background(), "   \t ", &state)
	require.NoError(t, err)
	assert.Equal(t, emptyInputReply, answer)
}

func TestParseProgressCommand(t *testing.T) {
	cases := []struct {
		input      string
		isProgress bool
		filter     string
	}{
		{"progress", true, ""},
		{"Progress алгебра", true, "алгебра"},
		{"PROGRESS  дроби и проценты", true, "дроби и проценты"},
		{"progressive", true, ""},
		{"прогресс", false, ""},
		{"show progress", false, ""},
	}
	for _, tc := range cases {
		isProgress, filter := parseProgressCommand(tc.input)
		assert.Equal(t, tc.isProgress, isProgress, tc.input)
		assert.Equal(t, tc.filter, filter, tc.input)
	}
}

func TestRouteActiveSolverConsumesExactYes(t *testing.T) {
	// 脚本为空：任何 LLM 调用都会失败，证明精确"да"不经过分类器
	svc, _ := newRouterUnderTest(&scriptedLLM{})
	state := model.NewDialogState()
	topic := "задача"
	state.ProblemSolver = model.ProblemSolverState{
		Active: true, Topic: &topic, Steps: []string{"a", "b"}, CurrentStep: 0,
	}

	answer, err := svc.route(context.Background(), "да", &state)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ProblemSolver.CurrentStep)
	assert.Contains(t, answer, "Шаг 2")
}

func TestRouteActiveSolverNonTokenFallsThrough(t *testing.T) {
	// "да, а ещё..." не входит в словарь ответов и уходит в классификацию
	llm := &scriptedLLM{replies: []string{"1 0", "объяснение репетитора"}}
	svc, _ := newRouterUnderTest(llm)
	state := model.NewDialogState()
	topic := "задача"
	state.ProblemSolver = model.ProblemSolverState{
		Active: true, Topic: &topic, Steps: []string{"a", "b"}, CurrentStep: 0,
	}

	answer, err := svc.route(context.Background(), "да, а ещё объясни дроби", &state)
	require.NoError(t, err)
	assert.Equal(t, "объяснение репетитора", answer)
	// состояние решателя не тронуто
	assert.True(t, state.ProblemSolver.Active)
	assert.Equal(t, 0, state.ProblemSolver.CurrentStep)
	// история репетитора пополнилась
	assert.Len(t, state.TutorHistory, 2)
}

func TestRouteAnalyserWithoutTest(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"3 0"}}
	svc, repo := newRouterUnderTest(llm)
	state := model.NewDialogState()

	answer, err := svc.route(context.Background(), "1a 2b 3c", &state)
	require.NoError(t, err)
	assert.Equal(t, noTestReply, answer)
	assert.Empty(t, repo.inserted)
}

func TestRouteAnalyserScoresAndClearsTest(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"3 0"}}
	svc, repo := newRouterUnderTest(llm)
	state := model.NewDialogState()
	topic := "Дроби"
	state.LastTopic = &topic
	state.CurrentTest = map[int]string{1: "A", 2: "B"}

	answer, err := svc.route(context.Background(), "1a 2c", &state)
	require.NoError(t, err)
	assert.Contains(t, answer, "1/2")

	require.Len(t, repo.inserted, 1)
	result := repo.inserted[0]
	require.NotNil(t, result.Topic)
	assert.Equal(t, "Дроби", *result.Topic)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 50, result.Percent)
	assert.Equal(t, "1a 2c", result.UserAnswers)

	assert.Nil(t, state.CurrentTest)
}

func TestRouteTopicChangedOverwritesLastTopic(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"1 1", "ответ"}}
	svc, _ := newRouterUnderTest(llm)
	state := model.NewDialogState()
	old := "старая тема"
	state.LastTopic = &old

	_, err := svc.route(context.Background(), "расскажи про фотосинтез", &state)
	require.NoError(t, err)
	require.NotNil(t, state.LastTopic)
	assert.Equal(t, "расскажи про фотосинтез", *state.LastTopic)
}

func TestRouteExaminerHappyPath(t *testing.T) {
	examOutput := "Тема: Дроби\n1) Сколько будет 1/2 + 1/2?\na) 1\nb) 2\nОтветы: 1a 2b 3c 4d 5a"
	llm := &scriptedLLM{replies: []string{"2 0", examOutput}}
	svc, _ := newRouterUnderTest(llm)
	state := model.NewDialogState()

	answer, err := svc.route(context.Background(), "проверь меня по дробям", &state)
	require.NoError(t, err)
	assert.Contains(t, answer, "Сколько будет")
	// блок "Как отвечать на тесты" идёт перед вопросами
	assert.Contains(t, answer, "Как отвечать на тесты")
	assert.Contains(t, answer, "1a 2c 3b 4d 5a")
	assert.Less(t, strings.Index(answer, "Как отвечать на тесты"), strings.Index(answer, "Сколько будет"))
	require.NotNil(t, state.LastTopic)
	assert.Equal(t, "Дроби", *state.LastTopic)
	assert.Equal(t, map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "A"}, state.CurrentTest)
}

func TestRouteExaminerBrokenFormat(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"2 0", "просто текст без формата"}}
	svc, _ := newRouterUnderTest(llm)
	state := model.NewDialogState()

	answer, err := svc.route(context.Background(), "проверь меня", &state)
	require.NoError(t, err)
	assert.Equal(t, examBrokenReply, answer)
	assert.Nil(t, state.CurrentTest)
}

func TestRouteUnknownMode(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"9 0"}}
	svc, _ := newRouterUnderTest(llm)
	state := model.NewDialogState()

	answer, err := svc.route(context.Background(), "что-то странное", &state)
	require.NoError(t, err)
	assert.Equal(t, unknownModeReply, answer)
}
