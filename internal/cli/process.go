package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/pipeline"
)

// newProcessCommand 单格式处理命令
func newProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process input_file",
		Short: "推断论文结构并导出单一格式",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() {
				_ = app.log.Sync()
			}()

			result, err := processAndExport(cmd.Context(), app, args[0], exportFormat)
			if err != nil {
				pterm.Error.Printfln("处理失败: %v", err)
				return err
			}

			path, err := writeResult(app, result)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("导出完成: %s (%s, %d 字节)", path, result.Format, len(result.Content))
			if result.Report != nil && !result.Report.IsValid {
				pterm.Warning.Printfln("格式检查发现 %d 个问题，可用 report 命令查看明细", len(result.Report.Issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&exportFormat, "format", "f", "html", "导出格式 (html, pdf, latex, docx)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录（默认取配置中的 output_dir）")
	cmd.Flags().BoolVar(&withReport, "report", false, "导出时附带格式检查报告")
	return cmd
}

// newExportCommand 批量导出命令
func newExportCommand() *cobra.Command {
	var formats []string

	cmd := &cobra.Command{
		Use:   "export input_file",
		Short: "推断论文结构并批量导出多种格式",
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

			failures := 0
			for _, item := range app.pipe.ExportBatch(cmd.Context(), doc, formats) {
				if item.Err != nil {
					failures++
					pterm.Error.Printfln("导出 %s 失败: %v", item.Format, item.Err)
					continue
				}
				path, err := writeResult(app, item.Result)
				if err != nil {
					failures++
					pterm.Error.Printfln("写入 %s 失败: %v", item.Format, err)
					continue
				}
				pterm.Success.Printfln("导出完成: %s (%d 字节)", path, len(item.Result.Content))
			}
			if failures > 0 {
				pterm.Warning.Printfln("%d 个格式未能导出", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "formats", "f", []string{"html", "latex", "docx"}, "导出格式列表")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录（默认取配置中的 output_dir）")
	return cmd
}

// processDocument 提取源文本并构建规范化文档
func processDocument(ctx context.Context, app *app, inputPath string) (*document.Document, error) {
	source, err := app.reader.Extract(inputPath)
	if err != nil {
		return nil, err
	}

	processed, err := app.pipe.Process(ctx, source.Text, source.HTML, source.Filename)
	if err != nil {
		return nil, err
	}
	if processed.Warning != "" {
		pterm.Warning.Printfln("%s", processed.Warning)
	}
	app.log.Info("文档结构构建完成",
		zap.String("filename", source.Filename),
		zap.String("provenance", string(processed.Provenance)),
		zap.Int("sections", len(processed.Sections)),
	)
	return processed, nil
}

func processAndExport(ctx context.Context, app *app, inputPath, format string) (*pipeline.ExportResult, error) {
	doc, err := processDocument(ctx, app, inputPath)
	if err != nil {
		return nil, err
	}
	return app.pipe.Export(ctx, doc, format)
}

// writeResult 导出产物落盘
func writeResult(app *app, result *pipeline.ExportResult) (string, error) {
	dir := strings.TrimSpace(outputDir)
	if dir == "" {
		dir = app.cfg.OutputDir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, result.Filename)
	if err := os.WriteFile(path, result.Content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
