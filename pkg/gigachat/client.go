// Package gigachat 提供了 GigaChat 大模型服务的客户端。
package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"lumira-go/internal/config"
)

// Message 表示一条角色消息。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client 定义了 LLM 客户端的接口。所有智能体都通过它访问模型。
type Client interface {
	// Chat 发送一组 role-based 消息并返回助手的完整回复文本。
	Chat(ctx context.Context, messages []Message) (string, error)
}

type gigaChatClient struct {
	cfg    config.GigaChatConfig
	client *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewClient 创建一个新的 GigaChat 客户端。
func NewClient(cfg config.GigaChatConfig) Client {
	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		// 平台使用自签名证书链时的兼容开关
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &gigaChatClient{
		cfg:    cfg,
		client: &http.Client{Transport: transport, Timeout: 60 * time.Second},
	}
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // 毫秒时间戳
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// token 返回一个可用的 OAuth access token，过期前 60 秒主动刷新。
func (c *gigaChatClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.expiresAt) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("scope", c.cfg.Scope)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create oauth request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", c.cfg.RqUID)
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call oauth endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("oauth endpoint returned non-200 status: %s, body: %s", resp.Status, string(body))
	}

	var oauth oauthResponse
	if err := json.NewDecoder(resp.Body).Decode(&oauth); err != nil {
		return "", fmt.Errorf("failed to decode oauth response: %w", err)
	}
	if oauth.AccessToken == "" {
		return "", fmt.Errorf("oauth response has no access_token")
	}

	c.accessToken = oauth.AccessToken
	if oauth.ExpiresAt > 0 {
		c.expiresAt = time.UnixMilli(oauth.ExpiresAt)
	} else {
		c.expiresAt = time.Now().Add(25 * time.Minute)
	}
	return c.accessToken, nil
}

// Chat 调用 chat/completions 接口并返回首个 choice 的文本。
func (c *gigaChatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	reqBytes, err := json.Marshal(chatRequest{Model: c.cfg.Model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat api returned non-200 status: %s, body: %s", resp.Status, string(body))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("chat api returned no choices")
	}
	return chat.Choices[0].Message.Content, nil
}
