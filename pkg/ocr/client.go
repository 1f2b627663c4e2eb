// Package ocr 提供了一个与 OCR.Space 识别服务交互的客户端。
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lumira-go/internal/config"
)

// Client 是 OCR.Space 的客户端。
type Client struct {
	cfg    config.OCRConfig
	client *http.Client
}

// NewClient 创建一个新的 OCR 客户端实例。
func NewClient(cfg config.OCRConfig) *Client {
	if cfg.Engine == 0 {
		cfg.Engine = 2
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "eng"
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type parseResponse struct {
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
	ErrorDetails          string          `json:"ErrorDetails"`
	ParsedResults         []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
}

// ExtractText 上传文件内容并返回识别出的文本。
// language 为空时使用配置的默认语言。识别失败会返回错误，绝不静默吞掉。
func (c *Client) ExtractText(ctx context.Context, fileName string, content []byte, language string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("ocr api key is not configured")
	}
	if language == "" {
		language = c.cfg.DefaultLanguage
	}
	if fileName == "" {
		fileName = "upload"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	_ = writer.WriteField("language", language)
	_ = writer.WriteField("isOverlayRequired", "false")
	_ = writer.WriteField("OCREngine", strconv.Itoa(c.cfg.Engine))
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ocr service returned non-200 status: %s, body: %s", resp.Status, string(b))
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr processing error: %s", flattenError(parsed))
	}
	if len(parsed.ParsedResults) == 0 {
		return "", nil
	}
	return parsed.ParsedResults[0].ParsedText, nil
}

// flattenError 把 OCR.Space 的 ErrorMessage（字符串或字符串数组）压平成一行。
func flattenError(resp parseResponse) string {
	if len(resp.ErrorMessage) > 0 {
		var list []string
		if err := json.Unmarshal(resp.ErrorMessage, &list); err == nil {
			return strings.Join(list, "; ")
		}
		var single string
		if err := json.Unmarshal(resp.ErrorMessage, &single); err == nil {
			return single
		}
	}
	if resp.ErrorDetails != "" {
		return resp.ErrorDetails
	}
	return "unknown error"
}
