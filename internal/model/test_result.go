// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// TestResult 是一次测试的成绩记录，只追加、写入后不可变。
// 它不归属于任何对话，长期保留用于学习进度统计。
type TestResult struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Topic       *string   `gorm:"type:varchar(255)" json:"topic"`
	Score       int       `gorm:"not null" json:"score"`
	Total       int       `gorm:"not null" json:"total"`
	Percent     int       `gorm:"not null" json:"percent"`
	UserAnswers string    `gorm:"type:text" json:"userAnswers"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (TestResult) TableName() string {
	return "test_results"
}
