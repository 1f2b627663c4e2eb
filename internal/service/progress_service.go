package service

import (
	"fmt"
	"strings"

	"lumira-go/internal/exam"
	"lumira-go/internal/model"
	"lumira-go/internal/repository"
)

const progressHistoryLimit = 200

// ProgressService 汇总历史测验结果。
type ProgressService interface {
	// Report 渲染用户可读的成绩单；filter 非空时按主题子串过滤。
	Report(filter string) (string, error)
	// ListResults 供管理端直接查看原始记录。
	ListResults(limit int, topicFilter string) ([]model.TestResult, error)
}

type progressService struct {
	testResultRepo repository.TestResultRepository
}

// NewProgressService 创建一个新的 ProgressService 实例。
func NewProgressService(testResultRepo repository.TestResultRepository) ProgressService {
	return &progressService{testResultRepo: testResultRepo}
}

// Report 把最近的测验结果按时间顺序渲染成文本，并附平均分。
func (s *progressService) Report(filter string) (string, error) {
	results, err := s.testResultRepo.FindRecent(progressHistoryLimit, filter)
	if err != nil {
		return "", fmt.Errorf("failed to load test results: %w", err)
	}

	if len(results) == 0 {
		if filter != "" {
			return fmt.Sprintf("Пока нет ни одного теста по теме, содержащей: '%s'.", filter), nil
		}
		return "Пока нет ни одного завершённого теста.", nil
	}

	var b strings.Builder
	b.WriteString("📊 Твой прогресс:\n")

	// репозиторий отдаёт свежие первыми, показываем от старых к новым
	sumScore, sumTotal := 0, 0
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		topic := "Без темы"
		if r.Topic != nil && *r.Topic != "" {
			topic = *r.Topic
		}
		fmt.Fprintf(&b, "• %s: %d/%d (%d%%)\n", topic, r.Score, r.Total, r.Percent)
		sumScore += r.Score
		sumTotal += r.Total
	}

	fmt.Fprintf(&b, "\nСредний результат: %d%%", exam.Percent(sumScore, sumTotal))
	return b.String(), nil
}

// ListResults 返回原始测验记录（最新在前）。
func (s *progressService) ListResults(limit int, topicFilter string) ([]model.TestResult, error) {
	if limit <= 0 || limit > progressHistoryLimit {
		limit = progressHistoryLimit
	}
	return s.testResultRepo.FindRecent(limit, topicFilter)
}
