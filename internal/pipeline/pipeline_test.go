package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/extractor"
	"github.com/vanika12/go-paper-formatter/internal/reflow"
	"github.com/vanika12/go-paper-formatter/internal/render"
	htmlrender "github.com/vanika12/go-paper-formatter/internal/render/html"
	"github.com/vanika12/go-paper-formatter/internal/styles"
)

const samplePaper = `Machine Learning Approaches for Crop Yield Prediction

John Smith
Department of Computer Science, University of Nairobi

ABSTRACT
This study examines machine learning approaches for predicting crop yields across several regions, with models trained on historical weather and soil data.

Keywords: machine learning, agriculture

1. Introduction
Crop yield prediction remains a central problem for agricultural planning and food security policy.

References
1. Smith, J. (2020). Predictive models in agriculture. Journal of Agronomy.
`

// failingService 永远失败的结构分析服务
type failingService struct{}

func (f *failingService) Analyze(ctx context.Context, text, filename string) (*document.Document, error) {
	return nil, errors.New("inference backend unavailable")
}

// canned 返回固定文档的结构分析服务
type cannedService struct {
	doc *document.Document
}

func (c *cannedService) Analyze(ctx context.Context, text, filename string) (*document.Document, error) {
	return c.doc, nil
}

// failingRenderer 渲染必败的渲染器
type failingRenderer struct{}

func (f *failingRenderer) Render(ctx context.Context, doc *document.Document, output io.Writer) error {
	return errors.New("render exploded")
}
func (f *failingRenderer) Format() render.Format { return "pdf" }

func (f *failingRenderer) ContentType() string { return "application/pdf" }

func (f *failingRenderer) Extension() string { return "pdf" }

func (f *failingRenderer) Binary() bool { return true }

// payloadRenderer 输出固定文本的渲染器
type payloadRenderer struct {
	payload string
}

func (r *payloadRenderer) Render(ctx context.Context, doc *document.Document, output io.Writer) error {
	_, err := io.WriteString(output, r.payload)
	return err
}

func (r *payloadRenderer) Format() render.Format { return "txt" }

func (r *payloadRenderer) ContentType() string { return "text/plain" }

func (r *payloadRenderer) Extension() string { return "txt" }

func (r *payloadRenderer) Binary() bool { return false }

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()

	resolver := styles.NewResolver()
	engine := reflow.NewEngine()
	registry := render.NewRegistry()
	require.NoError(t, registry.Register(htmlrender.NewRenderer(resolver, engine)))
	require.NoError(t, registry.Register(&failingRenderer{}))

	identity := styles.DefaultJournalIdentity()
	footer := styles.Spec().FooterText
	return New(registry, extractor.New(identity, footer, nil), document.NewNormalizer(), identity,
		footer, zap.NewNop(), opts...)
}

// TestProcessValidation 空文本与过短文本在校验阶段被拒绝
func TestProcessValidation(t *testing.T) {
	p := newTestPipeline(t)

	t.Run("空文本", func(t *testing.T) {
		_, err := p.Process(context.Background(), "   ", "", "a.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptySource)

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeEmptySource, perr.Code)
		assert.Equal(t, StageValidate, perr.Stage)
	})

	t.Run("过短文本", func(t *testing.T) {
		_, err := p.Process(context.Background(), "way too short", "", "a.txt")
		assert.ErrorIs(t, err, ErrSourceTooShort)
	})
}

// TestProcessFallbackExtraction 无 AI 服务时直接走启发式提取
func TestProcessFallbackExtraction(t *testing.T) {
	p := newTestPipeline(t)

	doc, err := p.Process(context.Background(), samplePaper, "", "paper.txt")
	require.NoError(t, err)

	assert.Equal(t, "Machine Learning Approaches for Crop Yield Prediction", doc.Title.Text)
	assert.Equal(t, document.ProvenanceFallback, doc.Provenance)
	assert.Empty(t, doc.Warning)
	// 期刊标识与页脚统一补齐
	assert.Equal(t, "ISSN No. 2454-6186", doc.Header.ISSN)
	assert.Equal(t, "www.rsisinternational.org", doc.FooterText)
}

// TestProcessStructureServiceFailure AI 失败回退提取并附带警告
func TestProcessStructureServiceFailure(t *testing.T) {
	p := newTestPipeline(t, WithStructureService(&failingService{}))

	doc, err := p.Process(context.Background(), samplePaper, "", "paper.txt")
	require.NoError(t, err)

	assert.Equal(t, document.ProvenanceFallback, doc.Provenance)
	assert.Equal(t, "AI processing unavailable, structure extracted with fallback heuristics", doc.Warning)
}

// TestProcessNilStructureResult AI 返回空文档按失败处理并回退提取
func TestProcessNilStructureResult(t *testing.T) {
	p := newTestPipeline(t, WithStructureService(&cannedService{doc: nil}))

	doc, err := p.Process(context.Background(), samplePaper, "<p>rich</p>", "paper.txt")
	require.NoError(t, err)

	assert.Equal(t, document.ProvenanceFallback, doc.Provenance)
	assert.Equal(t, fallbackWarning, doc.Warning)
}

// TestProcessStructureServiceSuccess AI 产出的文档补齐标识后再规范化
func TestProcessStructureServiceSuccess(t *testing.T) {
	canned := &cannedService{doc: &document.Document{
		Title:      document.StyledText{Text: "Structured Title From Analysis"},
		Provenance: document.ProvenanceAI,
	}}
	p := newTestPipeline(t, WithStructureService(canned))

	doc, err := p.Process(context.Background(), samplePaper, "<p>rich</p>", "paper.txt")
	require.NoError(t, err)

	assert.Equal(t, "Structured Title From Analysis", doc.Title.Text)
	assert.Equal(t, document.ProvenanceAI, doc.Provenance)
	assert.Equal(t, "<p>rich</p>", doc.OriginalHTML)
	assert.NotEmpty(t, doc.Header.Content)
	// 规范化已执行
	assert.Equal(t, "research_paper", doc.Metadata.DocumentType)
}

// TestExport 导出产物带标识、内容与派生文件名
func TestExport(t *testing.T) {
	p := newTestPipeline(t)
	doc, err := p.Process(context.Background(), samplePaper, "", "paper.txt")
	require.NoError(t, err)

	result, err := p.Export(context.Background(), doc, "html")
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, render.FormatHTML, result.Format)
	assert.Equal(t, "text/html", result.ContentType)
	assert.Equal(t, "paper_formatted.html", result.Filename)
	assert.False(t, result.Binary)
	assert.Contains(t, string(result.Content), "Machine Learning Approaches")
	assert.Nil(t, result.Report)
}

// TestExportWithReport 开启报告选项时附带格式检查报告
func TestExportWithReport(t *testing.T) {
	p := newTestPipeline(t, WithReport())
	doc, err := p.Process(context.Background(), samplePaper, "", "paper.txt")
	require.NoError(t, err)

	result, err := p.Export(context.Background(), doc, "html")
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.Equal(t, "Times New Roman, 12pt", result.Report.FormatCompliance.Font)
}

// TestExportErrors 不支持的格式与渲染失败都是类型化错误
func TestExportErrors(t *testing.T) {
	p := newTestPipeline(t)
	doc := &document.Document{}

	t.Run("不支持的格式", func(t *testing.T) {
		_, err := p.Export(context.Background(), doc, "epub")
		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeUnsupportedFormat, perr.Code)
	})

	t.Run("渲染失败", func(t *testing.T) {
		_, err := p.Export(context.Background(), doc, "pdf")
		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeRenderFailed, perr.Code)
		assert.Equal(t, StageRender, perr.Stage)
	})
}

// TestPreview 文本格式可预览并截断，二进制格式被拒绝
func TestPreview(t *testing.T) {
	p := newTestPipeline(t)
	doc, err := p.Process(context.Background(), samplePaper, "", "paper.txt")
	require.NoError(t, err)

	t.Run("文本格式截断", func(t *testing.T) {
		preview, err := p.Preview(context.Background(), doc, "html")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(preview), 5000)
		assert.Contains(t, preview, "<!DOCTYPE html>")
	})

	t.Run("二进制格式拒绝", func(t *testing.T) {
		_, err := p.Preview(context.Background(), doc, "pdf")
		assert.ErrorIs(t, err, ErrPreviewBinary)
	})
}

// TestPreviewRuneBoundary 截断点落在多字节字符中间时退回到字符边界
func TestPreviewRuneBoundary(t *testing.T) {
	registry := render.NewRegistry()
	payload := strings.Repeat("a", previewLength-1) + strings.Repeat("汉", 4)
	require.NoError(t, registry.Register(&payloadRenderer{payload: payload}))

	identity := styles.DefaultJournalIdentity()
	p := New(registry, extractor.New(identity, "", nil), document.NewNormalizer(), identity,
		"", zap.NewNop())

	preview, err := p.Preview(context.Background(), &document.Document{}, "txt")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, strings.Repeat("a", previewLength-1), preview)
}

// TestExportBatch 单格式失败不影响其余格式
func TestExportBatch(t *testing.T) {
	p := newTestPipeline(t)
	doc, err := p.Process(context.Background(), samplePaper, "", "paper.txt")
	require.NoError(t, err)

	items := p.ExportBatch(context.Background(), doc, []string{"html", "pdf", "epub"})
	require.Len(t, items, 3)

	assert.NoError(t, items[0].Err)
	require.NotNil(t, items[0].Result)
	assert.Error(t, items[1].Err)
	assert.Error(t, items[2].Err)
}

// TestExportFilename 文件名派生规则
func TestExportFilename(t *testing.T) {
	assert.Equal(t, "formatted_paper.html", exportFilename(nil, "html"))
	assert.Equal(t, "formatted_paper.tex", exportFilename(&document.Document{}, "tex"))

	doc := &document.Document{}
	doc.Metadata.OriginalFilename = "thesis_draft.pdf"
	assert.Equal(t, "thesis_draft_formatted.docx", exportFilename(doc, "docx"))
}

// TestPreviewAbstractSurvivesPipeline 摘要内容穿过整条流水线
func TestPreviewAbstractSurvivesPipeline(t *testing.T) {
	p := newTestPipeline(t)
	doc, err := p.Process(context.Background(), samplePaper, "", "paper.txt")
	require.NoError(t, err)

	require.True(t, strings.Contains(doc.Abstract.Content, "machine learning approaches"))
}
