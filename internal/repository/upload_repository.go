package repository

import (
	"gorm.io/gorm"

	"lumira-go/internal/model"
)

// UploadRepository 接口定义了 OCR 上传记录的持久化操作。
type UploadRepository interface {
	Create(record *model.Upload) error
	FindByUserID(userID uint) ([]model.Upload, error)
}

// uploadRepository 是 UploadRepository 接口的 GORM 实现。
type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository 创建一个新的 UploadRepository 实例。
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

// Create 记录一次上传。
func (r *uploadRepository) Create(record *model.Upload) error {
	return r.db.Create(record).Error
}

// FindByUserID 返回某个用户的全部上传记录，按时间倒序。
func (r *uploadRepository) FindByUserID(userID uint) ([]model.Upload, error) {
	var records []model.Upload
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Find(&records).Error
	return records, err
}
