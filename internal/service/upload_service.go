package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"

	"lumira-go/internal/model"
	"lumira-go/internal/repository"
	"lumira-go/pkg/log"
	"lumira-go/pkg/ocr"
	"lumira-go/pkg/storage"
)

// UploadService 接口定义了 OCR 图片上传与识别。
type UploadService interface {
	// RecognizeImage 把图片存入对象存储、调用 OCR 识别并记录上传。
	RecognizeImage(ctx context.Context, userID uint, fileName string, content []byte, language string) (string, error)
	// ListUploads 返回用户的上传历史，附带临时下载链接。
	ListUploads(userID uint) ([]model.UploadDTO, error)
}

type uploadService struct {
	uploadRepo repository.UploadRepository
	ocrClient  *ocr.Client
	bucketName string
}

// NewUploadService 创建一个新的 UploadService 实例。
func NewUploadService(uploadRepo repository.UploadRepository, ocrClient *ocr.Client, bucketName string) UploadService {
	return &uploadService{
		uploadRepo: uploadRepo,
		ocrClient:  ocrClient,
		bucketName: bucketName,
	}
}

// RecognizeImage 执行 存储 → 识别 → 记录 三步。
// 识别失败会直接返回错误，已入库的对象保留以便排查。
func (s *uploadService) RecognizeImage(ctx context.Context, userID uint, fileName string, content []byte, language string) (string, error) {
	objectName := fmt.Sprintf("%d/%d_%s", userID, time.Now().UnixNano(), fileName)

	_, err := storage.MinioClient.PutObject(ctx, s.bucketName, objectName,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	log.Infof("[UploadService] 图片已存储, object: %s, size: %d", objectName, len(content))

	text, err := s.ocrClient.ExtractText(ctx, fileName, content, language)
	if err != nil {
		return "", fmt.Errorf("ocr recognition failed: %w", err)
	}

	record := &model.Upload{
		FileName:   fileName,
		ObjectName: objectName,
		Size:       int64(len(content)),
		Language:   language,
		UserID:     userID,
	}
	if err := s.uploadRepo.Create(record); err != nil {
		return "", fmt.Errorf("failed to record upload: %w", err)
	}
	return text, nil
}

// ListUploads 返回用户的上传历史；下载链接签发失败时仅省略链接。
func (s *uploadService) ListUploads(userID uint) ([]model.UploadDTO, error) {
	records, err := s.uploadRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]model.UploadDTO, 0, len(records))
	for _, r := range records {
		url, err := storage.GetPresignedURL(s.bucketName, r.ObjectName, time.Hour)
		if err != nil {
			log.Warnf("[UploadService] 签发下载链接失败, object: %s, error: %v", r.ObjectName, err)
			url = ""
		}
		dtos = append(dtos, model.UploadDTO{
			ID:        r.ID,
			FileName:  r.FileName,
			Size:      r.Size,
			Language:  r.Language,
			URL:       url,
			CreatedAt: model.LocalTime(r.CreatedAt),
		})
	}
	return dtos, nil
}
