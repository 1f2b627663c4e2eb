// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"lumira-go/internal/agent"
	"lumira-go/internal/exam"
	"lumira-go/internal/model"
	"lumira-go/internal/repository"
	"lumira-go/pkg/gigachat"
	"lumira-go/pkg/kafka"
	"lumira-go/pkg/log"
	"lumira-go/pkg/tasks"
)

// 固定回复文案
const (
	emptyInputReply  = "Пожалуйста, введите запрос."
	noTestReply      = "Нет теста для проверки!"
	unknownModeReply = "Неизвестный режим, модератор вернул странный код."
	examBrokenReply  = "Не удалось составить тест, попробуй переформулировать запрос."
	progressKeyword  = "progress"

	// 答题说明放在题目之前
	examInstructions = "\nКак отвечать на тесты\n" +
		"Пишите только в формате:\n" +
		"1a 2c 3b 4d 5a\n" +
		"Где:\n" +
		"число — номер вопроса,\n" +
		"буква — выбранный вариант ответа."
)

// ChatService 定义了一轮对话的处理接口。
type ChatService interface {
	// ProcessTurn 处理对话中的一条用户消息并返回助手回答。
	// 整轮在对话锁内执行；消息与状态在全部协作方成功后一次性落库。
	ProcessTurn(ctx context.Context, dialogID uint, text string) (string, error)
}

type chatService struct {
	dialogRepo     repository.DialogRepository
	testResultRepo repository.TestResultRepository
	locker         repository.DialogLocker
	llm            gigachat.Client
	progress       ProgressService
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	dialogRepo repository.DialogRepository,
	testResultRepo repository.TestResultRepository,
	locker repository.DialogLocker,
	llm gigachat.Client,
	progress ProgressService,
) ChatService {
	return &chatService{
		dialogRepo:     dialogRepo,
		testResultRepo: testResultRepo,
		locker:         locker,
		llm:            llm,
		progress:       progress,
	}
}

// ProcessTurn 对一条用户消息执行完整的读-改-写回合。
func (s *chatService) ProcessTurn(ctx context.Context, dialogID uint, text string) (string, error) {
	unlock, err := s.locker.Lock(ctx, dialogID)
	if err != nil {
		return "", err
	}
	defer unlock()

	dialog, err := s.dialogRepo.FindByID(dialogID)
	if err != nil {
		return "", fmt.Errorf("failed to load dialog %d: %w", dialogID, err)
	}

	state := model.NormalizeState([]byte(dialog.StateJSON))

	answer, err := s.route(ctx, text, &state)
	if err != nil {
		// 协作方失败：整轮失败，状态与消息均不落库
		return "", err
	}

	stateJSON, err := state.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to serialize dialog state: %w", err)
	}

	userMsg := &model.DialogMessage{DialogID: dialogID, Role: model.RoleUser, Content: text}
	assistantMsg := &model.DialogMessage{DialogID: dialogID, Role: model.RoleAssistant, Content: answer}
	if err := s.dialogRepo.AppendTurn(dialogID, userMsg, assistantMsg, stateJSON); err != nil {
		return "", fmt.Errorf("failed to persist turn: %w", err)
	}

	// 搜索索引是尽力而为的旁路，失败不影响本轮结果
	s.produceIndexTasks(state, userMsg, assistantMsg)

	return answer, nil
}

// produceIndexTasks 把本轮两条消息投递到 Kafka 供搜索管道消费。
func (s *chatService) produceIndexTasks(state model.DialogState, messages ...*model.DialogMessage) {
	topic := ""
	if state.LastTopic != nil {
		topic = *state.LastTopic
	}
	for _, msg := range messages {
		task := tasks.MessageIndexTask{
			DialogID:  msg.DialogID,
			MessageID: msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Topic:     topic,
		}
		if err := kafka.ProduceMessageIndexTask(task); err != nil {
			log.Warnf("[ChatService] 投递消息索引任务失败, message: %d, error: %v", msg.ID, err)
		}
	}
}

// route 是纯路由核心：根据输入与当前状态选择处理分支，
// 就地修改状态并返回回答。检查顺序是固定的：
// 空输入 → progress 命令 → 激活的分步解题 да/нет → 模式分类 → 分支。
func (s *chatService) route(ctx context.Context, text string, state *model.DialogState) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return emptyInputReply, nil
	}

	if isProgress, filter := parseProgressCommand(trimmed); isProgress {
		return s.progress.Report(filter)
	}

	// 激活的分步解题只截获精确的 да/нет 答复，其余输入落回常规分类
	if state.ProblemSolver.Active && (agent.IsAffirmative(trimmed) || agent.IsNegative(trimmed)) {
		answer, ps, err := agent.ContinueProblemSolver(ctx, s.llm, state.ProblemSolver, trimmed)
		if err != nil {
			return "", err
		}
		state.ProblemSolver = ps
		return answer, nil
	}

	mode, topicChanged, err := agent.Classify(ctx, s.llm, trimmed)
	if err != nil {
		return "", err
	}
	if topicChanged {
		topic := trimmed
		state.LastTopic = &topic
	}

	switch mode {
	case agent.AgentTutor:
		answer, history, err := agent.RunTutor(ctx, s.llm, trimmed, state.TutorHistory)
		if err != nil {
			return "", err
		}
		state.TutorHistory = history
		return answer, nil

	case agent.AgentExaminer:
		return s.runExam(ctx, trimmed, state)

	case agent.AgentAnalyser:
		return s.analyseSubmission(trimmed, state)

	case agent.AgentProblemSolver:
		answer, ps, err := agent.StartProblemSolver(ctx, s.llm, trimmed)
		if err != nil {
			return "", err
		}
		state.ProblemSolver = ps
		return answer, nil

	case agent.AgentSummarizer:
		return agent.RunSummarizer(ctx, s.llm, trimmed)

	default:
		return unknownModeReply, nil
	}
}

// runExam 生成一份新测验并把答案键写入状态。
func (s *chatService) runExam(ctx context.Context, text string, state *model.DialogState) (string, error) {
	topic := text
	if state.LastTopic != nil && *state.LastTopic != "" {
		topic = *state.LastTopic
	}

	raw, err := agent.RunExaminer(ctx, s.llm, topic)
	if err != nil {
		return "", err
	}

	parsed, err := exam.Parse(raw)
	if err != nil {
		// экзаменатор нарушил формат — деградируем без изменения состояния
		log.Warnf("[ChatService] экзаменатор вернул неразбираемый вывод: %v", err)
		return examBrokenReply, nil
	}

	state.CurrentTest = parsed.Key
	if parsed.Topic != "" {
		t := parsed.Topic
		state.LastTopic = &t
	}
	return examInstructions + "\n\n" + parsed.Questions, nil
}

// analyseSubmission 核对答卷、落一条测验结果并清空待检测验。
func (s *chatService) analyseSubmission(text string, state *model.DialogState) (string, error) {
	if len(state.CurrentTest) == 0 {
		return noTestReply, nil
	}

	report, correct, total := exam.Score(state.CurrentTest, text)
	result := &model.TestResult{
		Topic:       state.LastTopic,
		Score:       correct,
		Total:       total,
		Percent:     exam.Percent(correct, total),
		UserAnswers: strings.TrimSpace(text),
	}
	if err := s.testResultRepo.Insert(result); err != nil {
		return "", fmt.Errorf("failed to store test result: %w", err)
	}

	state.CurrentTest = nil
	return report, nil
}

// parseProgressCommand 识别 "progress [фильтр]" 命令。
// 过滤串是首个空白段之后的剩余部分；没有空白则无过滤。
func parseProgressCommand(trimmed string) (bool, string) {
	if !strings.HasPrefix(strings.ToLower(trimmed), progressKeyword) {
		return false, ""
	}
	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return true, ""
	}
	return true, strings.TrimSpace(trimmed[idx:])
}
