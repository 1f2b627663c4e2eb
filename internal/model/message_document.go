// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// MessageDocument 代表索引到 Elasticsearch 的一条对话消息。
type MessageDocument struct {
	DocID     string    `json:"doc_id"` // 唯一标识：dialogID_messageID
	DialogID  uint      `json:"dialog_id"`
	MessageID uint      `json:"message_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageSearchHit 定义了返回给前端的消息搜索结果结构。
type MessageSearchHit struct {
	DialogID  uint    `json:"dialogId"`
	MessageID uint    `json:"messageId"`
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Topic     string  `json:"topic"`
	Score     float64 `json:"score"`
}
