// Package cli 命令行入口
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanika12/go-paper-formatter/internal/config"
	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/extractor"
	"github.com/vanika12/go-paper-formatter/internal/ingest"
	"github.com/vanika12/go-paper-formatter/internal/logger"
	"github.com/vanika12/go-paper-formatter/internal/pipeline"
	"github.com/vanika12/go-paper-formatter/internal/reflow"
	"github.com/vanika12/go-paper-formatter/internal/render"
	"github.com/vanika12/go-paper-formatter/internal/render/docx"
	"github.com/vanika12/go-paper-formatter/internal/render/html"
	"github.com/vanika12/go-paper-formatter/internal/render/latex"
	"github.com/vanika12/go-paper-formatter/internal/render/pdf"
	"github.com/vanika12/go-paper-formatter/internal/structure"
	"github.com/vanika12/go-paper-formatter/internal/styles"
)

var (
	// 命令行标志变量
	cfgFile      string
	debugMode    bool
	outputDir    string
	exportFormat string
	withReport   bool
	noAI         bool // 跳过 AI 结构分析，只用启发式提取
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paperfmt",
		Short: "学术论文格式化工具，按期刊模板重排论文结构",
		Long: `学术论文格式化工具从原始论文文本推断文档结构（标题、作者、摘要、
章节、参考文献），并按固定的期刊版式导出多种格式。

支持的导出格式:
  - html: 网页标记
  - pdf: 打印版（无头浏览器渲染）
  - latex: 排版描述文档
  - docx: 字处理文档`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认查找 ./.paperfmt.yaml 和 ~/.paperfmt.yaml）")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().BoolVar(&noAI, "no-ai", false, "跳过 AI 结构分析，只用启发式提取")

	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}

// app 组装好的应用依赖
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	reader *ingest.Reader
	pipe   *pipeline.Pipeline
}

// buildApp 从配置组装流水线
func buildApp() (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debugMode {
		cfg.Debug = true
	}

	log := logger.NewLogger(cfg.Debug)

	journal := cfg.Identity()
	identity := document.JournalIdentity{
		Content: journal.Name,
		ISSN:    journal.ISSN,
		DOI:     journal.DOI,
		Volume:  journal.Volume,
	}

	resolver := styles.NewResolver()
	engine := reflow.NewEngine()
	htmlRenderer := html.NewRenderer(resolver, engine)

	registry := render.NewRegistry()
	rasterizerTimeout := time.Duration(cfg.RasterizerTimeout) * time.Second
	renderers := []render.Renderer{
		htmlRenderer,
		pdf.NewRenderer(htmlRenderer, resolver, pdf.NewRodRasterizer(log), rasterizerTimeout, log),
		latex.NewRenderer(resolver, engine),
		docx.NewRenderer(resolver, engine),
	}
	for _, renderer := range renderers {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}

	opts := []pipeline.Option{}
	if cfg.Groq.APIKey != "" && !noAI {
		svc, err := structure.NewGroqService(structure.Config{
			APIKey:      cfg.Groq.APIKey,
			BaseURL:     cfg.Groq.BaseURL,
			Model:       cfg.Groq.Model,
			Temperature: float32(cfg.Groq.Temperature),
			Timeout:     time.Duration(cfg.Groq.Timeout) * time.Second,
		}, log)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithStructureService(svc))
	}
	if cfg.AttachReport || withReport {
		opts = append(opts, pipeline.WithReport())
	}

	pipe := pipeline.New(
		registry,
		extractor.New(identity, journal.FooterText, log),
		document.NewNormalizer(),
		identity,
		journal.FooterText,
		log,
		opts...,
	)

	return &app{
		cfg:    cfg,
		log:    log,
		reader: ingest.NewReader(log),
		pipe:   pipe,
	}, nil
}
