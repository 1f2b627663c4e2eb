package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lumira-go/internal/model"
	"lumira-go/internal/repository"
)

// Приветствие нового диалога, первая реплика ассистента.
const greetingMessage = "Привет! Я готова помочь с учёбой."

const defaultDialogTitle = "Новый диалог"

// DialogService 定义了对话生命周期相关的业务操作。
type DialogService interface {
	Create(userID uint, title string) (*model.Dialog, error)
	List(userID uint) ([]model.Dialog, error)
	Get(dialogID uint) (*model.Dialog, error)
	GetMessages(dialogID uint) ([]model.DialogMessage, error)
	Rename(dialogID uint, title string) error
	Delete(dialogID uint) error
	// EnsureDefault 保证用户至少有一个对话，没有则创建默认对话。
	EnsureDefault(userID uint) (*model.Dialog, error)
	// GetOrCreateByExternal 按外部身份幂等地解析绑定对话。
	GetOrCreateByExternal(userID uint, provider, externalID string) (*model.Dialog, error)
}

type dialogService struct {
	dialogRepo repository.DialogRepository
}

// NewDialogService 创建一个新的 DialogService 实例。
func NewDialogService(dialogRepo repository.DialogRepository) DialogService {
	return &dialogService{dialogRepo: dialogRepo}
}

// Create 创建对话：写入初始状态并追加问候消息。
func (s *dialogService) Create(userID uint, title string) (*model.Dialog, error) {
	return s.create(userID, title, "", "")
}

func (s *dialogService) create(userID uint, title, provider, externalID string) (*model.Dialog, error) {
	if title == "" {
		title = defaultDialogTitle
	}
	stateJSON, err := model.NewDialogState().Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize initial state: %w", err)
	}

	dialog := &model.Dialog{
		Title:      title,
		StateJSON:  stateJSON,
		UserID:     userID,
		Provider:   provider,
		ExternalID: externalID,
	}
	if err := s.dialogRepo.Create(dialog); err != nil {
		return nil, err
	}

	greeting := &model.DialogMessage{
		DialogID: dialog.ID,
		Role:     model.RoleAssistant,
		Content:  greetingMessage,
	}
	if err := s.dialogRepo.AddMessage(greeting); err != nil {
		return nil, err
	}
	return dialog, nil
}

// List 返回用户的全部对话，最近活跃在前。
func (s *dialogService) List(userID uint) ([]model.Dialog, error) {
	return s.dialogRepo.FindByUserID(userID)
}

// Get 返回单个对话。
func (s *dialogService) Get(dialogID uint) (*model.Dialog, error) {
	return s.dialogRepo.FindByID(dialogID)
}

// GetMessages 返回对话的全部消息。
func (s *dialogService) GetMessages(dialogID uint) ([]model.DialogMessage, error) {
	return s.dialogRepo.GetMessages(dialogID)
}

// Rename 修改对话标题。
func (s *dialogService) Rename(dialogID uint, title string) error {
	if title == "" {
		return errors.New("title must not be empty")
	}
	return s.dialogRepo.Rename(dialogID, title)
}

// Delete 删除对话及其消息。
func (s *dialogService) Delete(dialogID uint) error {
	return s.dialogRepo.Delete(dialogID)
}

// EnsureDefault 返回用户最近的对话，没有任何对话时创建一个默认对话。
func (s *dialogService) EnsureDefault(userID uint) (*model.Dialog, error) {
	dialogs, err := s.dialogRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(dialogs) > 0 {
		return &dialogs[0], nil
	}
	return s.create(userID, defaultDialogTitle, "", "")
}

// GetOrCreateByExternal 幂等解析外部客户端绑定的对话。
func (s *dialogService) GetOrCreateByExternal(userID uint, provider, externalID string) (*model.Dialog, error) {
	dialog, err := s.dialogRepo.FindByExternal(provider, externalID)
	if err == nil {
		return dialog, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.create(userID, defaultDialogTitle, provider, externalID)
}
