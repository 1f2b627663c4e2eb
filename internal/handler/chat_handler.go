// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lumira-go/internal/model"
	"lumira-go/internal/repository"
	"lumira-go/internal/service"
	"lumira-go/pkg/log"
	"lumira-go/pkg/token"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理单轮请求与 WebSocket 聊天连接。
type ChatHandler struct {
	chatService   service.ChatService
	dialogService service.DialogService
	userService   service.UserService
	jwtManager    *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, dialogService service.DialogService, userService service.UserService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService:   chatService,
		dialogService: dialogService,
		userService:   userService,
		jwtManager:    jwtManager,
	}
}

// ChatRequest 定义了单轮对话的请求体结构。
type ChatRequest struct {
	DialogID uint   `json:"dialogId" binding:"required"`
	Message  string `json:"message"`
}

// Chat 处理一轮对话请求。
func (h *ChatHandler) Chat(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "некорректное тело запроса", "data": nil})
		return
	}

	dialog, err := h.dialogService.Get(req.DialogID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "диалог не найден", "data": nil})
		return
	}
	if dialog.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "диалог принадлежит другому пользователю", "data": nil})
		return
	}

	answer, err := h.chatService.ProcessTurn(c.Request.Context(), dialog.ID, req.Message)
	if err != nil {
		if errors.Is(err, repository.ErrDialogBusy) {
			c.JSON(http.StatusTooManyRequests, gin.H{"code": http.StatusTooManyRequests, "message": "диалог занят, попробуйте чуть позже", "data": nil})
			return
		}
		log.Errorf("Chat: turn failed, dialog: %d, error: %v", dialog.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "ассистент временно недоступен, попробуйте позже", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"answer": answer},
	})
}

// GetWebsocketToken 签发一个短期 token，供 WebSocket 握手使用。
func (h *ChatHandler) GetWebsocketToken(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	wsToken, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось выдать токен", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"wsToken": wsToken}})
}

// wsTurnRequest 是 WebSocket 单轮请求的载荷。
type wsTurnRequest struct {
	DialogID uint   `json:"dialogId"`
	Message  string `json:"message"`
}

// wsTurnResponse 是 WebSocket 单轮响应的载荷。
type wsTurnResponse struct {
	Type      string `json:"type"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Handle 处理一个传入的 WebSocket 连接：逐条读取请求并回写回答。
func (h *ChatHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	user, err := h.userService.GetProfile(claims.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", claims.Username)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var req wsTurnRequest
		if err := json.Unmarshal(message, &req); err != nil || req.DialogID == 0 {
			h.writeWS(conn, wsTurnResponse{Type: "error", Error: "некорректный запрос"})
			continue
		}

		dialog, err := h.dialogService.Get(req.DialogID)
		if err != nil || dialog.UserID != user.ID {
			h.writeWS(conn, wsTurnResponse{Type: "error", Error: "диалог недоступен"})
			continue
		}

		answer, err := h.chatService.ProcessTurn(c.Request.Context(), dialog.ID, req.Message)
		if err != nil {
			log.Errorf("WebSocket turn failed, dialog: %d, error: %v", dialog.ID, err)
			h.writeWS(conn, wsTurnResponse{Type: "error", Error: "ассистент временно недоступен, попробуйте позже"})
			continue
		}

		h.writeWS(conn, wsTurnResponse{Type: "answer", Answer: answer})
	}
}

func (h *ChatHandler) writeWS(conn *websocket.Conn, resp wsTurnResponse) {
	resp.Timestamp = time.Now().UnixMilli()
	b, _ := json.Marshal(resp)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("向 WebSocket 写入响应失败: %v", err)
	}
}
