package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lumira-go/internal/service"
)

// AdminHandler 处理管理端请求。
type AdminHandler struct {
	progressService service.ProgressService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(progressService service.ProgressService) *AdminHandler {
	return &AdminHandler{progressService: progressService}
}

// ListTestResults 返回原始测验结果记录，最新在前。
// 查询参数: limit, topic。
func (h *AdminHandler) ListTestResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	results, err := h.progressService.ListResults(limit, c.Query("topic"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось получить результаты", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": results})
}
