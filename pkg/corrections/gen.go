package corrections

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fortune-backend/internal/bazi"
	"fortune-backend/internal/logger"
)

// Options 生成选项
type Options struct {
	OutputPath string // 目录或 .db 文件，空时取 CORRECTIONS_PATH，再缺省为 ./data
	FromYAML   string
	NoBuiltin  bool
	DumpYAML   bool // 只输出 YAML，不写数据库
}

// Generate 生成修正表数据库：内置表加上 YAML 中的条目，YAML 冲突时覆盖内置表
func Generate(opts Options, stdout io.Writer) error {
	if strings.TrimSpace(opts.OutputPath) == "" {
		opts.OutputPath = os.Getenv("CORRECTIONS_PATH")
	}
	if strings.TrimSpace(opts.OutputPath) == "" {
		opts.OutputPath = "./data"
	}
	opts.OutputPath = ResolvePath(opts.OutputPath)

	c, err := Build(opts)
	if err != nil {
		return err
	}

	if opts.DumpYAML {
		b, err := MarshalYAML(c)
		if err != nil {
			return err
		}
		_, err = stdout.Write(b)
		return err
	}

	rows, err := Write(opts.OutputPath, c)
	if err != nil {
		return err
	}
	logger.Named("CorrectionGen").Info().Str("output", opts.OutputPath).Int("rows", rows).Msg("done")
	return nil
}

// Build 按选项组装修正表
func Build(opts Options) (*bazi.Corrections, error) {
	c := bazi.NewCorrections()
	if !opts.NoBuiltin {
		c.Merge(bazi.DefaultCorrections())
	}
	if strings.TrimSpace(opts.FromYAML) != "" {
		extra, err := ReadYAMLFile(opts.FromYAML)
		if err != nil {
			return nil, fmt.Errorf("读取 %s 失败: %w", opts.FromYAML, err)
		}
		c.Merge(extra)
	}
	return c, nil
}
