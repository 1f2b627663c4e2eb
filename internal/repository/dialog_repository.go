// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"time"

	"gorm.io/gorm"

	"lumira-go/internal/model"
)

// DialogRepository 接口定义了对话及其消息的持久化操作。
type DialogRepository interface {
	Create(dialog *model.Dialog) error
	FindByID(id uint) (*model.Dialog, error)
	FindByUserID(userID uint) ([]model.Dialog, error)
	FindByExternal(provider, externalID string) (*model.Dialog, error)
	Rename(id uint, title string) error
	Delete(id uint) error
	UpdateState(id uint, stateJSON string) error
	AddMessage(msg *model.DialogMessage) error
	GetMessages(dialogID uint) ([]model.DialogMessage, error)

	// AppendTurn 在一个事务里持久化一轮对话：用户消息、助手消息与新状态。
	// 任一步失败则整体回滚。
	AppendTurn(dialogID uint, userMsg, assistantMsg *model.DialogMessage, stateJSON string) error
}

// dialogRepository 是 DialogRepository 接口的 GORM 实现。
type dialogRepository struct {
	db *gorm.DB
}

// NewDialogRepository 创建一个新的 DialogRepository 实例。
func NewDialogRepository(db *gorm.DB) DialogRepository {
	return &dialogRepository{db: db}
}

// Create 创建一条新的对话记录。
func (r *dialogRepository) Create(dialog *model.Dialog) error {
	return r.db.Create(dialog).Error
}

// FindByID 根据 ID 查找对话。
func (r *dialogRepository) FindByID(id uint) (*model.Dialog, error) {
	var dialog model.Dialog
	if err := r.db.First(&dialog, id).Error; err != nil {
		return nil, err
	}
	return &dialog, nil
}

// FindByUserID 按最近活跃排序返回某个用户的全部对话。
func (r *dialogRepository) FindByUserID(userID uint) ([]model.Dialog, error) {
	var dialogs []model.Dialog
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&dialogs).Error
	return dialogs, err
}

// FindByExternal 根据外部身份（provider + external id）查找绑定的对话。
func (r *dialogRepository) FindByExternal(provider, externalID string) (*model.Dialog, error) {
	var dialog model.Dialog
	err := r.db.Where("provider = ? AND external_id = ?", provider, externalID).First(&dialog).Error
	if err != nil {
		return nil, err
	}
	return &dialog, nil
}

// Rename 修改对话标题。
func (r *dialogRepository) Rename(id uint, title string) error {
	return r.db.Model(&model.Dialog{}).Where("id = ?", id).Update("title", title).Error
}

// Delete 删除对话及其全部消息。
func (r *dialogRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dialog_id = ?", id).Delete(&model.DialogMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Dialog{}, id).Error
	})
}

// UpdateState 整体覆盖对话的状态 JSON。
func (r *dialogRepository) UpdateState(id uint, stateJSON string) error {
	return r.db.Model(&model.Dialog{}).Where("id = ?", id).
		Updates(map[string]interface{}{"state_json": stateJSON, "updated_at": time.Now()}).Error
}

// AddMessage 追加一条消息并刷新对话的活跃时间。
func (r *dialogRepository) AddMessage(msg *model.DialogMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Dialog{}).Where("id = ?", msg.DialogID).
			Update("updated_at", time.Now()).Error
	})
}

// GetMessages 按时间顺序返回对话的全部消息。
func (r *dialogRepository) GetMessages(dialogID uint) ([]model.DialogMessage, error) {
	var messages []model.DialogMessage
	err := r.db.Where("dialog_id = ?", dialogID).Order("id ASC").Find(&messages).Error
	return messages, err
}

// AppendTurn 原子地写入一轮对话的两条消息与新状态。
func (r *dialogRepository) AppendTurn(dialogID uint, userMsg, assistantMsg *model.DialogMessage, stateJSON string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}
		if err := tx.Create(assistantMsg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Dialog{}).Where("id = ?", dialogID).
			Updates(map[string]interface{}{"state_json": stateJSON, "updated_at": time.Now()}).Error
	})
}
