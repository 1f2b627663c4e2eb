// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lumira-go/internal/config"
	"lumira-go/internal/service"
	"lumira-go/pkg/log"
	"lumira-go/pkg/miniapp"
)

// AuthHandler 负责处理认证相关的 API 请求：刷新 token 与小程序登录。
type AuthHandler struct {
	userService   service.UserService
	dialogService service.DialogService
	miniAppCfg    config.MiniAppConfig
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(userService service.UserService, dialogService service.DialogService, miniAppCfg config.MiniAppConfig) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		dialogService: dialogService,
		miniAppCfg:    miniAppCfg,
	}
}

// RefreshTokenRequest 定义了刷新 token API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 处理刷新 token 的请求。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RefreshToken: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求负载：refreshToken 不能为空"})
		return
	}

	newAccessToken, newRefreshToken, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: Failed to refresh token, error: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的 refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Token refreshed successfully",
		"data": gin.H{
			"token":        newAccessToken,
			"refreshToken": newRefreshToken,
		},
	})
}

// MiniAppLoginRequest 定义了小程序登录的请求体结构。
type MiniAppLoginRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// MiniAppLogin 校验小程序 init data，幂等地解析用户与绑定对话并签发 token。
func (h *AuthHandler) MiniAppLogin(c *gin.Context) {
	var req MiniAppLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求负载：initData 不能为空"})
		return
	}

	tgUser, err := miniapp.Verify(req.InitData, h.miniAppCfg.BotToken)
	if err != nil {
		switch {
		case errors.Is(err, miniapp.ErrHashMissing), errors.Is(err, miniapp.ErrHashMismatch):
			log.Warnf("MiniAppLogin: подпись init data не прошла проверку: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "недействительные данные авторизации"})
		case errors.Is(err, miniapp.ErrUserMissing), errors.Is(err, miniapp.ErrUserMalformed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные пользователя"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные авторизации"})
		}
		return
	}

	externalID := strconv.FormatInt(tgUser.ID, 10)
	user, err := h.userService.GetOrCreateExternal(h.miniAppCfg.Provider, externalID, tgUser.FirstName)
	if err != nil {
		log.Errorf("MiniAppLogin: failed to resolve external user %s: %v", externalID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выполнить вход"})
		return
	}

	dialog, err := h.dialogService.GetOrCreateByExternal(user.ID, h.miniAppCfg.Provider, externalID)
	if err != nil {
		log.Errorf("MiniAppLogin: failed to resolve bound dialog for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выполнить вход"})
		return
	}

	accessToken, refreshToken, err := h.userService.IssueTokens(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выдать токены"})
		return
	}

	log.Infof("MiniAppLogin: user %d authenticated, dialog %d", user.ID, dialog.ID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"token":        accessToken,
			"refreshToken": refreshToken,
			"dialogId":     dialog.ID,
		},
	})
}
