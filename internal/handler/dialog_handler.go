package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lumira-go/internal/model"
	"lumira-go/internal/service"
	"lumira-go/pkg/log"
)

// DialogHandler 处理与对话生命周期相关的 API 请求。
type DialogHandler struct {
	dialogService service.DialogService
}

// NewDialogHandler 创建一个新的 DialogHandler 实例。
func NewDialogHandler(dialogService service.DialogService) *DialogHandler {
	return &DialogHandler{dialogService: dialogService}
}

// DialogDTO 是对话的响应结构。
type DialogDTO struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	CreatedAt model.LocalTime `json:"createdAt"`
	UpdatedAt model.LocalTime `json:"updatedAt"`
}

// MessageDTO 是对话消息的响应结构。
type MessageDTO struct {
	ID        uint            `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	CreatedAt model.LocalTime `json:"createdAt"`
}

func toDialogDTO(d model.Dialog) DialogDTO {
	return DialogDTO{
		ID:        d.ID,
		Title:     d.Title,
		CreatedAt: model.LocalTime(d.CreatedAt),
		UpdatedAt: model.LocalTime(d.UpdatedAt),
	}
}

// List 返回当前用户的对话列表，保证至少有一个默认对话。
func (h *DialogHandler) List(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	if _, err := h.dialogService.EnsureDefault(user.ID); err != nil {
		log.Errorf("List dialogs: failed to ensure default dialog for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось получить список диалогов", "data": nil})
		return
	}

	dialogs, err := h.dialogService.List(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось получить список диалогов", "data": nil})
		return
	}

	dtos := make([]DialogDTO, 0, len(dialogs))
	for _, d := range dialogs {
		dtos = append(dtos, toDialogDTO(d))
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": dtos})
}

// CreateDialogRequest 定义了创建对话的请求体结构。
type CreateDialogRequest struct {
	Title string `json:"title"`
}

// Create 创建一个新对话。
func (h *DialogHandler) Create(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	// тело опционально: пустое тело создаёт диалог с названием по умолчанию
	var req CreateDialogRequest
	_ = c.ShouldBindJSON(&req)

	dialog, err := h.dialogService.Create(user.ID, req.Title)
	if err != nil {
		log.Errorf("Create dialog failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось создать диалог", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": toDialogDTO(*dialog)})
}

// resolveOwnDialog 解析路径里的对话 ID 并校验归属。
func (h *DialogHandler) resolveOwnDialog(c *gin.Context) (*model.Dialog, bool) {
	user := c.MustGet("user").(*model.User)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "некорректный идентификатор диалога", "data": nil})
		return nil, false
	}

	dialog, err := h.dialogService.Get(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "диалог не найден", "data": nil})
		return nil, false
	}
	if dialog.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "диалог принадлежит другому пользователю", "data": nil})
		return nil, false
	}
	return dialog, true
}

// GetMessages 返回对话的消息历史。
func (h *DialogHandler) GetMessages(c *gin.Context) {
	dialog, ok := h.resolveOwnDialog(c)
	if !ok {
		return
	}

	messages, err := h.dialogService.GetMessages(dialog.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось получить сообщения", "data": nil})
		return
	}

	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, MessageDTO{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: model.LocalTime(m.CreatedAt),
		})
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": dtos})
}

// RenameDialogRequest 定义了重命名对话的请求体结构。
type RenameDialogRequest struct {
	Title string `json:"title" binding:"required"`
}

// Rename 修改对话标题。
func (h *DialogHandler) Rename(c *gin.Context) {
	dialog, ok := h.resolveOwnDialog(c)
	if !ok {
		return
	}

	var req RenameDialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "название не может быть пустым", "data": nil})
		return
	}

	if err := h.dialogService.Rename(dialog.ID, req.Title); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось переименовать диалог", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// Delete 删除对话及其消息。
func (h *DialogHandler) Delete(c *gin.Context) {
	dialog, ok := h.resolveOwnDialog(c)
	if !ok {
		return
	}

	if err := h.dialogService.Delete(dialog.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось удалить диалог", "data": nil})
		return
	}
	log.Infof("Dialog %d deleted", dialog.ID)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}
