// Package logger zerolog 封装：进程级根 logger、按组件派生、请求级字段
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger 项目统一的 logger 类型
type Logger = zerolog.Logger

// Options 日志配置
type Options struct {
	Level   string
	Format  string // console | json
	Service string
	Writer  io.Writer
}

// FromEnv 读取 LOG_LEVEL / LOG_FORMAT / LOG_SERVICE
//
// 这里直接读环境变量，config 包不被引用，避免循环依赖
func FromEnv() Options {
	return Options{
		Level:   envOr("LOG_LEVEL", "info"),
		Format:  envOr("LOG_FORMAT", "console"),
		Service: envOr("LOG_SERVICE", "fortune"),
	}
}

var (
	root     atomic.Pointer[zerolog.Logger]
	initOnce sync.Once
)

// Init 构建根 logger，可重复调用，后一次覆盖前一次
func Init(opt Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}

	ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	l := ctx.Logger()
	root.Store(&l)
}

// Get 根 logger，未初始化时按环境变量初始化
func Get() *Logger {
	initOnce.Do(func() {
		if root.Load() == nil {
			Init(FromEnv())
		}
	})
	return root.Load()
}

// Named 带 component 字段的子 logger
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey struct{}

// WithRequest 在 ctx 中记录请求 ID
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, reqID)
}

// RequestID 取出请求 ID
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// C 带 request_id 的子 logger
func C(ctx context.Context, component string) *Logger {
	b := Named(component).With()
	if id := RequestID(ctx); id != "" {
		b = b.Str("request_id", id)
	}
	l := b.Logger()
	return &l
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
