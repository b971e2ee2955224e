package langchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fortune-backend/internal/config"
	"fortune-backend/internal/logger"
)

// ChatRequest chat/completions 请求体
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse chat/completions 响应，只取需要的字段
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatClient DeepSeek（OpenAI 兼容）chat/completions 客户端
type ChatClient struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewChatClient httpClient 为 nil 时按 cfg.Timeout 新建
func NewChatClient(cfg config.LLMConfig, httpClient *http.Client) *ChatClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ChatClient{
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  httpClient,
	}
}

// Interpret 发送一次解读请求，返回去除首尾空白的 Markdown 文本
func (c *ChatClient) Interpret(ctx context.Context, p Prompt) (string, error) {
	if c.apiKey == "" {
		return "", ErrCredentialMissing
	}
	log := logger.C(ctx, "LLM")

	req := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "user", Content: p.Content},
		},
		Temperature: c.temperature,
		MaxTokens:   p.MaxTokens,
	}
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", networkError("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", networkError("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Debug().Str("model", c.model).Str("topic", p.Topic).Int("max_tokens", p.MaxTokens).Msg("发送解读请求")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", networkError("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("body", snippet(body, 300)).Msg("解读服务返回异常状态")
		return "", networkError("服务返回状态码 %d", resp.StatusCode)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		log.Warn().Err(err).Str("body", snippet(body, 300)).Msg("解析响应失败")
		return "", parseError("API解析错误: %w", err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == nil {
		return "", parseError("API解析错误: 响应缺少 choices[0].message.content")
	}

	log.Info().Str("topic", p.Topic).Int("total_tokens", chatResp.Usage.TotalTokens).Msg("解读完成")
	return strings.TrimSpace(*chatResp.Choices[0].Message.Content), nil
}

func snippet(b []byte, n int) string {
	s := string(b)
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
