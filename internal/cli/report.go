package cli

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vanika12/go-paper-formatter/internal/report"
)

// newReportCommand 格式检查报告命令
func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report input_file",
		Short: "检查论文结构完整性并打印格式报告",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() {
				_ = app.log.Sync()
			}()

			doc, err := processDocument(cmd.Context(), app, args[0])
			if err != nil {
				pterm.Error.Printfln("处理失败: %v", err)
				return err
			}

			printReport(report.Generate(doc))
			return nil
		},
	}

	return cmd
}

// printReport 报告打印为终端表格
func printReport(rep report.Report) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)

	tw.AppendRow(table.Row{"项", "值"})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"结构完整", strconv.FormatBool(rep.IsValid)})
	tw.AppendRow(table.Row{"字数", rep.WordCount})
	tw.AppendRow(table.Row{"章节数", rep.SectionCount})

	tw.AppendSeparator()
	tw.AppendRow(table.Row{"页边距", rep.FormatCompliance.Margins})
	tw.AppendRow(table.Row{"字体", rep.FormatCompliance.Font})
	tw.AppendRow(table.Row{"行距", rep.FormatCompliance.LineSpacing})
	tw.AppendRow(table.Row{"段距", rep.FormatCompliance.ParagraphSpacing})
	tw.AppendRow(table.Row{"标题格式", rep.FormatCompliance.HeadingFormat})

	if len(rep.Issues) > 0 {
		tw.AppendSeparator()
		for i, issue := range rep.Issues {
			tw.AppendRow(table.Row{"问题 " + strconv.Itoa(i+1), issue})
		}
		for i, suggestion := range rep.Suggestions {
			tw.AppendRow(table.Row{"建议 " + strconv.Itoa(i+1), suggestion})
		}
	}

	tw.SetStyle(table.StyleLight)
	tw.Render()

	if rep.IsValid {
		pterm.Success.Printfln("文档结构完整")
	} else {
		pterm.Warning.Printfln("发现 %d 个结构问题", len(rep.Issues))
	}
	pterm.Info.Printfln("通用建议:")
	for _, rec := range rep.Recommendations {
		pterm.Info.Printfln("  - %s", rec)
	}
}
