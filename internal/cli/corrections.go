package cli

import (
	"os"

	"github.com/spf13/cobra"

	"fortune-backend/pkg/corrections"
)

func correctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "维护八字修正表",
	}
	cmd.AddCommand(correctionGenCmd("gen"))
	return cmd
}

func correctionGenCmd(use string) *cobra.Command {
	var opts corrections.Options

	cmd := &cobra.Command{
		Use:   use,
		Short: "生成修正表数据库（内置表加 YAML 条目）",
		Example: `  fortune corrections gen --output ./data
  fortune corrections gen --from extra.yaml --no-builtin --dump`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return corrections.Generate(opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.OutputPath, "output", "o", "", "输出目录或 .db 文件，默认取 CORRECTIONS_PATH，再缺省为 ./data")
	f.StringVar(&opts.FromYAML, "from", "", "合并的 YAML 修正表，冲突时覆盖内置表")
	f.BoolVar(&opts.NoBuiltin, "no-builtin", false, "不包含内置修正表")
	f.BoolVar(&opts.DumpYAML, "dump", false, "只以 YAML 输出到标准输出，不写数据库")
	return cmd
}

// ExecuteCorrectionGen 独立的 correction-gen 命令
func ExecuteCorrectionGen() {
	cmd := correctionGenCmd("correction-gen")
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
