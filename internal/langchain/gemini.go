package langchain

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"fortune-backend/internal/config"
	"fortune-backend/internal/logger"
)

// GeminiClient 通过 Gemini API 解读，与 ChatClient 行为一致
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient 创建 Gemini 客户端，未配置 API Key 时返回 ErrCredentialMissing
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrCredentialMissing
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, networkError("创建 Gemini 客户端失败: %w", err)
	}
	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Interpret 实现 Interpreter
func (g *GeminiClient) Interpret(ctx context.Context, p Prompt) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(p.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.Content), genCfg)
	if err != nil {
		return "", networkError("请求失败: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", parseError("API解析错误: 响应不含文本")
	}
	logger.C(ctx, "LLM").Info().Str("provider", "gemini").Str("topic", p.Topic).Msg("解读完成")
	return text, nil
}
