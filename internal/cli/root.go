// Package cli 命令行：排八字、起卦，可选请求解读，以及修正表维护
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fortune-backend/internal/config"
	"fortune-backend/internal/logger"
	"fortune-backend/internal/service"
)

// readerFactory 测试时替换
type readerFactory func(ctx context.Context, cfg *config.Config) (*service.Reader, func(), error)

func defaultReader(ctx context.Context, cfg *config.Config) (*service.Reader, func(), error) {
	return service.Setup(ctx, cfg, nil)
}

func Execute() {
	cmd := newRootCmd(defaultReader, os.Stdout)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(newReader readerFactory, out io.Writer) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "fortune",
		Short:        "八字排盘与梅花易数起卦",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			opt := logger.FromEnv()
			if debug {
				opt.Level = "debug"
			}
			opt.Writer = os.Stderr
			logger.Init(opt)
		},
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "输出调试日志")

	cmd.AddCommand(baziCmd(newReader), hexagramCmd(newReader), correctionsCmd())
	return cmd
}
