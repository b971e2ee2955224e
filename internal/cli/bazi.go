package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fortune-backend/internal/config"
	"fortune-backend/internal/model"
)

func baziCmd(newReader readerFactory) *cobra.Command {
	var in model.BirthInput
	var interpret bool
	var format string

	c := &cobra.Command{
		Use:   "bazi",
		Short: "根据出生时间排八字",
		Example: `  fortune bazi --time "1997-04-22 15:30" --gender female
  fortune bazi --time 1984-02-02T23:30:00+08:00 --interpret`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader, cleanup, err := newReader(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			defer cleanup()

			out, err := reader.ComputeBazi(cmd.Context(), in, interpret)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), format, out, func(w io.Writer) {
				printBazi(w, out)
			})
		},
	}

	c.Flags().StringVarP(&in.BirthTime, "time", "t", "", "出生时间，如 \"1997-04-22 15:30\" 或 RFC3339")
	c.Flags().StringVarP(&in.Gender, "gender", "g", "male", "性别: male|female")
	c.Flags().BoolVarP(&interpret, "interpret", "i", false, "请求大模型解读")
	c.Flags().StringVar(&format, "format", "pretty", "输出格式: pretty|json")
	_ = c.MarkFlagRequired("time")
	return c
}

func printBazi(w io.Writer, out *model.BaziReading) {
	ch := out.Chart
	fmt.Fprintf(w, "出生时间: %s\n", ch.BirthTime.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "性别:     %s\n", ch.GenderLabel)
	hour := ch.Hour.Text
	if ch.HourUnknown {
		hour = "未知"
	}
	fmt.Fprintf(w, "年柱: %s  月柱: %s  日柱: %s  时柱: %s\n", ch.Year.Text, ch.Month.Text, ch.Day.Text, hour)
	fmt.Fprintf(w, "八字:     %s\n", ch.FullBazi)
	if ch.Corrected {
		fmt.Fprintln(w, "（命中修正表）")
	}
	printInterpretation(w, out.Interpretation)
}

func printInterpretation(w io.Writer, in *model.Interpretation) {
	if in == nil {
		return
	}
	fmt.Fprintln(w)
	if in.Error != "" {
		fmt.Fprintln(w, in.Error)
		return
	}
	fmt.Fprintln(w, strings.TrimSpace(in.Text))
}
