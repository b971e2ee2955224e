package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"fortune-backend/internal/config"
	"fortune-backend/internal/handler"
	"fortune-backend/internal/logger"
	"fortune-backend/internal/mail"
	"fortune-backend/internal/scheduler"
	"fortune-backend/internal/service"
)

func init() {
	// 手动加载 .env 文件，已有的环境变量优先
	if len(config.LoadEnvFiles(".env", ".env.local")) == 0 {
		logger.Named("Server").Info().Msg("未找到 .env 文件，使用系统环境变量")
	}
}

func main() {
	logger.Init(logger.FromEnv())
	log := logger.Named("Server")
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader, cleanup, err := service.Setup(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化失败")
	}
	defer cleanup()

	if cfg.Corrections.Watch && cfg.Corrections.Path != "" {
		if err := reader.WatchCorrections(ctx, cfg.Corrections.Path); err != nil {
			log.Warn().Err(err).Msg("修正表热加载未启用")
		}
	}

	tasks := service.NewTaskRegistry(cfg.Tasks.Concurrency, cfg.Tasks.TTL)
	defer tasks.Close()

	r := gin.New()
	r.Use(gin.Recovery(), accessLog())

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Idempotency-Key"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
	}))

	signer := handler.NewSigner(cfg.Access)
	handler.New(reader, tasks).Register(r, signer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Access.RotateEvery > 0 {
		var notifier scheduler.Notifier
		if cfg.Mail.Enabled() {
			notifier = mail.New(cfg.Mail)
		}
		rotator := scheduler.NewInviteRotator(signer, notifier, cfg.Access.RotateEvery, cfg.Access.CodeLength)
		g.Go(func() error {
			rotator.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("服务关闭中")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("服务异常退出")
	}
}

// accessLog 用 zerolog 记录请求
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.C(c.Request.Context(), "HTTP").Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
