package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira-go/internal/model"
	"lumira-go/internal/service"
	"lumira-go/pkg/log"
)

// 上传图片大小上限，OCR.Space 免费档的限制是 1MB
const maxImageSize = 5 << 20

// OCRHandler 处理图片识别请求。
type OCRHandler struct {
	uploadService service.UploadService
}

// NewOCRHandler 创建一个新的 OCRHandler 实例。
func NewOCRHandler(uploadService service.UploadService) *OCRHandler {
	return &OCRHandler{uploadService: uploadService}
}

// Recognize 接收 multipart 图片并返回识别出的文本。
func (h *OCRHandler) Recognize(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "файл не найден в запросе", "data": nil})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"code": http.StatusRequestEntityTooLarge, "message": "файл слишком большой", "data": nil})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось прочитать файл", "data": nil})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось прочитать файл", "data": nil})
		return
	}

	language := c.PostForm("language")

	text, err := h.uploadService.RecognizeImage(c.Request.Context(), user.ID, fileHeader.Filename, content, language)
	if err != nil {
		log.Errorf("OCR: recognition failed for user %d, file %s: %v", user.ID, fileHeader.Filename, err)
		c.JSON(http.StatusBadGateway, gin.H{"code": http.StatusBadGateway, "message": "не удалось распознать текст на изображении", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"text": text},
	})
}

// ListUploads 返回当前用户的上传历史。
func (h *OCRHandler) ListUploads(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	uploads, err := h.uploadService.ListUploads(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "не удалось получить историю загрузок", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": uploads})
}
