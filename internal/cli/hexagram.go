package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fortune-backend/internal/config"
	"fortune-backend/internal/model"
)

func hexagramCmd(newReader readerFactory) *cobra.Command {
	var method string
	var interpret bool
	var format string

	c := &cobra.Command{
		Use:   "hexagram [问题或数字或姓名...]",
		Short: "梅花易数起卦",
		Example: `  fortune hexagram
  fortune hexagram 12345
  fortune hexagram --method name 我叫小明 --interpret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, cleanup, err := newReader(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			defer cleanup()

			in := model.DivinationInput{Question: strings.Join(args, " "), Method: method}
			out, err := reader.Divine(cmd.Context(), in, interpret)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), format, out, func(w io.Writer) {
				printHexagram(w, out)
			})
		},
	}

	c.Flags().StringVarP(&method, "method", "m", "auto", "起卦方法: auto|time|number|name")
	c.Flags().BoolVarP(&interpret, "interpret", "i", false, "请求大模型解读")
	c.Flags().StringVar(&format, "format", "pretty", "输出格式: pretty|json")
	return c
}

func printHexagram(w io.Writer, out *model.DivinationReading) {
	h := out.Hexagram
	if out.Question != "" {
		fmt.Fprintf(w, "问题:     %s\n", out.Question)
	}
	fmt.Fprintf(w, "起卦方法: %s\n", h.MethodLabel)
	fmt.Fprintf(w, "起卦时间: %s\n", h.CastAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "卦象:     %s\n", h.Text)
	printInterpretation(w, out.Interpretation)
}

func printResult(w io.Writer, format string, v any, pretty func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "pretty", "":
		pretty(w)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}
