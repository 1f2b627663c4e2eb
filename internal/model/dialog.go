// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Dialog 代表一个持久化的对话：标题、序列化状态与消息历史。
// Provider/ExternalID 记录可信客户端（如 Telegram Mini App）的外部身份绑定。
type Dialog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	StateJSON  string    `gorm:"column:state_json;type:text;not null" json:"-"`
	UserID     uint      `gorm:"index" json:"userId"`
	Provider   string    `gorm:"type:varchar(32);index:idx_dialogs_external" json:"provider,omitempty"`
	ExternalID string    `gorm:"type:varchar(64);index:idx_dialogs_external" json:"externalId,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Dialog) TableName() string {
	return "dialogs"
}

// DialogMessage 代表对话内的一条消息，按 ID 升序即时间顺序。
type DialogMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DialogID  uint      `gorm:"index;not null" json:"dialogId"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"` // "user" 或 "assistant"
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (DialogMessage) TableName() string {
	return "dialog_messages"
}
