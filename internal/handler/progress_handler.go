package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira-go/internal/service"
)

// ProgressHandler 处理成绩进度查询。
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler 创建一个新的 ProgressHandler 实例。
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// Report 返回渲染好的成绩单文本；filter 参数按主题子串过滤。
func (h *ProgressHandler) Report(c *gin.Context) {
	report, err := h.progressService.Report(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось построить отчёт", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"report": report}})
}
