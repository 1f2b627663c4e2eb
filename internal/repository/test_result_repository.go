package repository

import (
	"gorm.io/gorm"

	"lumira-go/internal/model"
)

// TestResultRepository 接口定义了测验结果的持久化操作。
type TestResultRepository interface {
	Insert(result *model.TestResult) error
	// FindRecent 返回最近的测验结果；topicFilter 非空时按主题子串过滤。
	FindRecent(limit int, topicFilter string) ([]model.TestResult, error)
}

type testResultRepository struct {
	db *gorm.DB
}

// NewTestResultRepository 创建一个新的 TestResultRepository 实例。
func NewTestResultRepository(db *gorm.DB) TestResultRepository {
	return &testResultRepository{db: db}
}

// Insert 追加一条测验结果，记录只增不改。
func (r *testResultRepository) Insert(result *model.TestResult) error {
	return r.db.Create(result).Error
}

// FindRecent 按时间倒序检索测验结果。
func (r *testResultRepository) FindRecent(limit int, topicFilter string) ([]model.TestResult, error) {
	var results []model.TestResult
	query := r.db.Order("id DESC").Limit(limit)
	if topicFilter != "" {
		query = query.Where("topic LIKE ?", "%"+topicFilter+"%")
	}
	err := query.Find(&results).Error
	return results, err
}
