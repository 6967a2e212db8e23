// Package pipeline 格式化流水线编排
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/extractor"
	"github.com/vanika12/go-paper-formatter/internal/render"
	"github.com/vanika12/go-paper-formatter/internal/report"
	"github.com/vanika12/go-paper-formatter/internal/structure"
)

// 校验阈值
const (
	// minSourceLength 低于该字符数的文本不足以构成论文
	minSourceLength = 100

	// previewLength 预览截断长度
	previewLength = 5000
)

// fallbackWarning AI 结构分析失败后回退提取时附加的提示
const fallbackWarning = "AI processing unavailable, structure extracted with fallback heuristics"

// ExportResult 单次导出的产物
type ExportResult struct {
	ID          string
	Format      render.Format
	ContentType string
	Filename    string
	Content     []byte
	Binary      bool
	Report      *report.Report
}

// BatchItem 批量导出中单个格式的结果
type BatchItem struct {
	Format string
	Result *ExportResult
	Err    error
}

// Pipeline 完整格式化流水线
type Pipeline struct {
	registry   *render.Registry
	extractor  *extractor.Extractor
	normalizer *document.Normalizer
	structure  structure.Service
	identity   document.JournalIdentity
	footer     string
	withReport bool
	logger     *zap.Logger
}

// Option 流水线选项
type Option func(*Pipeline)

// WithStructureService 启用 AI 结构分析路径
func WithStructureService(svc structure.Service) Option {
	return func(p *Pipeline) { p.structure = svc }
}

// WithReport 导出时附带格式检查报告
func WithReport() Option {
	return func(p *Pipeline) { p.withReport = true }
}

// New 创建流水线
func New(registry *render.Registry, ext *extractor.Extractor, normalizer *document.Normalizer, identity document.JournalIdentity, footer string, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:   registry,
		extractor:  ext,
		normalizer: normalizer,
		identity:   identity,
		footer:     footer,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process 从原始文本构建规范化文档
func (p *Pipeline) Process(ctx context.Context, text, html, filename string) (*document.Document, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, NewPipelineError(CodeEmptySource, ErrEmptySource.Error(), StageValidate, ErrEmptySource)
	}
	if len(trimmed) < minSourceLength {
		return nil, NewPipelineError(CodeSourceTooShort, ErrSourceTooShort.Error(), StageValidate, ErrSourceTooShort)
	}

	doc := p.structureDocument(ctx, text, filename)
	if html != "" {
		doc.OriginalHTML = html
	}

	// AI 结构分析不产出期刊标识，统一在此补齐
	if doc.Header.Content == "" {
		doc.Header = p.identity
	}
	if doc.FooterText == "" {
		doc.FooterText = p.footer
	}

	return p.normalizer.Normalize(doc, text, filename), nil
}

// structureDocument AI 结构分析优先，失败时回退到启发式提取
func (p *Pipeline) structureDocument(ctx context.Context, text, filename string) *document.Document {
	if p.structure != nil {
		doc, err := p.structure.Analyze(ctx, text, filename)
		if err == nil && doc != nil {
			return doc
		}
		if err == nil {
			err = ErrNilStructure
		}
		p.logger.Warn("结构分析失败，回退到启发式提取",
			zap.String("filename", filename),
			zap.Error(err),
		)
		doc = p.extractor.Extract(text, filename)
		doc.Warning = fallbackWarning
		return doc
	}
	return p.extractor.Extract(text, filename)
}

// Export 按格式渲染文档
func (p *Pipeline) Export(ctx context.Context, doc *document.Document, format string) (*ExportResult, error) {
	renderer, err := p.registry.Get(format)
	if err != nil {
		return nil, NewPipelineError(CodeUnsupportedFormat, err.Error(), StageRender, err)
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, doc, &buf); err != nil {
		return nil, NewPipelineError(CodeRenderFailed,
			fmt.Sprintf("failed to render %s output", renderer.Format()), StageRender, err)
	}

	result := &ExportResult{
		ID:          uuid.NewString(),
		Format:      renderer.Format(),
		ContentType: renderer.ContentType(),
		Filename:    exportFilename(doc, renderer.Extension()),
		Content:     buf.Bytes(),
		Binary:      renderer.Binary(),
	}
	if p.withReport {
		rep := report.Generate(doc)
		result.Report = &rep
	}

	p.logger.Info("导出完成",
		zap.String("export_id", result.ID),
		zap.String("format", string(result.Format)),
		zap.String("filename", result.Filename),
		zap.Int("bytes", len(result.Content)),
	)
	return result, nil
}

// Preview 返回文本格式输出的前若干字符
func (p *Pipeline) Preview(ctx context.Context, doc *document.Document, format string) (string, error) {
	renderer, err := p.registry.Get(format)
	if err != nil {
		return "", NewPipelineError(CodeUnsupportedFormat, err.Error(), StageRender, err)
	}
	if renderer.Binary() {
		return "", ErrPreviewBinary
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, doc, &buf); err != nil {
		return "", NewPipelineError(CodeRenderFailed,
			fmt.Sprintf("failed to render %s preview", renderer.Format()), StageRender, err)
	}

	preview := buf.String()
	if len(preview) > previewLength {
		cut := previewLength
		// 截断点落在多字节字符中间时回退到字符边界
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	return preview, nil
}

// ExportBatch 渲染多个格式，单个格式失败不影响其余格式
func (p *Pipeline) ExportBatch(ctx context.Context, doc *document.Document, formats []string) []BatchItem {
	items := make([]BatchItem, 0, len(formats))
	for _, format := range formats {
		result, err := p.Export(ctx, doc, format)
		if err != nil {
			p.logger.Warn("批量导出中单个格式失败",
				zap.String("format", format),
				zap.Error(err),
			)
		}
		items = append(items, BatchItem{Format: format, Result: result, Err: err})
	}
	return items
}

// exportFilename 由原始文件名派生导出文件名
func exportFilename(doc *document.Document, extension string) string {
	base := "formatted_paper"
	if doc != nil && doc.Metadata.OriginalFilename != "" {
		original := doc.Metadata.OriginalFilename
		base = strings.TrimSuffix(original, filepath.Ext(original)) + "_formatted"
	}
	return base + "." + extension
}
