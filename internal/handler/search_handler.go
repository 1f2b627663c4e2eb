package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lumira-go/internal/service"
	"lumira-go/pkg/log"
)

// SearchHandler 处理消息搜索请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 在已索引的对话消息上执行全文搜索。
// 查询参数: q（必填）, dialogId, topK。
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "параметр q обязателен", "data": nil})
		return
	}

	var dialogID uint
	if raw := c.Query("dialogId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "некорректный dialogId", "data": nil})
			return
		}
		dialogID = uint(parsed)
	}

	topK, _ := strconv.Atoi(c.DefaultQuery("topK", "10"))

	hits, err := h.searchService.SearchMessages(c.Request.Context(), query, dialogID, topK)
	if err != nil {
		log.Errorf("Search: failed, query: '%s', error: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "поиск временно недоступен", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": hits})
}
