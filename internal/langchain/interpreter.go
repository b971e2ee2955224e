// Package langchain 解读服务：把八字或卦象交给大模型，返回 Markdown 文本
package langchain

import (
	"context"
	"net/http"

	"fortune-backend/internal/config"
)

// Interpreter 解读服务
type Interpreter interface {
	Interpret(ctx context.Context, p Prompt) (string, error)
}

// InterpreterFunc 函数适配器
type InterpreterFunc func(ctx context.Context, p Prompt) (string, error)

func (f InterpreterFunc) Interpret(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// NewInterpreter 按 Provider 选择实现；缺少 API Key 时返回的实现总是报 ErrCredentialMissing
func NewInterpreter(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) Interpreter {
	if !cfg.HasCredential() {
		return InterpreterFunc(func(context.Context, Prompt) (string, error) {
			return "", ErrCredentialMissing
		})
	}
	if cfg.Provider == "gemini" {
		g, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return InterpreterFunc(func(context.Context, Prompt) (string, error) {
				return "", err
			})
		}
		return g
	}
	return NewChatClient(cfg, httpClient)
}
