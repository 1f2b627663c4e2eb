// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Upload 记录一次送去 OCR 识别的文件上传，原始文件保存在 MinIO。
type Upload struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"fileName"`
	ObjectName string    `gorm:"type:varchar(255);not null" json:"objectName"`
	Size       int64     `gorm:"not null" json:"size"`
	Language   string    `gorm:"type:varchar(8)" json:"language"`
	UserID     uint      `gorm:"index" json:"userId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Upload) TableName() string {
	return "uploads"
}

// UploadDTO 是上传记录的响应结构，带临时下载链接。
type UploadDTO struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"fileName"`
	Size      int64     `json:"size"`
	Language  string    `json:"language"`
	URL       string    `json:"url,omitempty"`
	CreatedAt LocalTime `json:"createdAt"`
}
