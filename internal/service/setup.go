package service

import (
	"context"
	"net/http"

	"fortune-backend/internal/bazi"
	"fortune-backend/internal/cache"
	"fortune-backend/internal/config"
	"fortune-backend/internal/langchain"
	"fortune-backend/internal/logger"
	"fortune-backend/pkg/corrections"
)

// Setup 按配置组装 Reader：解读服务、缓存、修正表
//
// 返回的 cleanup 关闭缓存连接。
func Setup(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*Reader, func(), error) {
	calc, err := LoadCalculator(cfg.Corrections.Path)
	if err != nil {
		return nil, nil, err
	}

	c := cache.Open(ctx, cfg.Cache)
	cleanup := func() {
		if c != nil {
			_ = c.Close()
		}
	}

	r := NewReader(Options{
		Interpreter:         langchain.NewInterpreter(ctx, cfg.LLM, httpClient),
		Cache:               c,
		CacheTTL:            cfg.Cache.TTL,
		Calculator:          calc,
		Location:            cfg.Location,
		Model:               cfg.LLM.Model,
		BaziMaxTokens:       cfg.LLM.BaziMaxTokens,
		DivinationMaxTokens: cfg.LLM.DivinationMaxTokens,
	})

	if !cfg.LLM.HasCredential() {
		logger.Named("Reading").Warn().Str("provider", cfg.LLM.Provider).Msg("未配置API Key，解读功能不可用")
	}
	return r, cleanup, nil
}

// LoadCalculator 内置修正表，叠加数据库中的条目；path 为空时只用内置表
func LoadCalculator(path string) (*bazi.Calculator, error) {
	table := bazi.DefaultCorrections()
	if path == "" {
		return bazi.NewCalculator(table), nil
	}
	extra, err := corrections.Load(path)
	if err != nil {
		return nil, err
	}
	table.Merge(extra)
	logger.Named("Corrections").Info().Str("path", corrections.ResolvePath(path)).Int("entries", table.Len()).Msg("修正表已加载")
	return bazi.NewCalculator(table), nil
}

// WatchCorrections 数据库变化时替换 Reader 的修正表
func (r *Reader) WatchCorrections(ctx context.Context, path string) error {
	return corrections.Watch(ctx, path, func(extra *bazi.Corrections) {
		table := bazi.DefaultCorrections()
		table.Merge(extra)
		r.SetCalculator(bazi.NewCalculator(table))
	})
}
