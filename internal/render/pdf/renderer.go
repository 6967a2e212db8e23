// Package pdf 打印页渲染器
// 正文委托网页标记渲染器生成，再交给外部栅格化器分页输出
// 栅格化失败是整次导出的硬失败，不返回部分文件
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/render"
	htmlrender "github.com/vanika12/go-paper-formatter/internal/render/html"
	"github.com/vanika12/go-paper-formatter/internal/styles"
)

// A4 纸张尺寸（英寸）
const (
	paperWidthA4  = 8.27
	paperHeightA4 = 11.69
)

// DefaultTimeout 栅格化默认超时
const DefaultTimeout = 60 * time.Second

// PageConfig 提交给栅格化器的页面配置
type PageConfig struct {
	PaperWidth     float64
	PaperHeight    float64
	MarginTop      float64
	MarginBottom   float64
	MarginLeft     float64
	MarginRight    float64
	HeaderTemplate string
	FooterTemplate string
}

// Rasterizer 外部栅格化能力
// 核心依赖该接口但不实现分页本身
type Rasterizer interface {
	Rasterize(ctx context.Context, markup string, cfg PageConfig) ([]byte, error)
}

// Renderer 打印页渲染器
type Renderer struct {
	body       *htmlrender.Renderer
	resolver   *styles.Resolver
	rasterizer Rasterizer
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRenderer 创建打印页渲染器
func NewRenderer(body *htmlrender.Renderer, resolver *styles.Resolver, rasterizer Rasterizer, timeout time.Duration, logger *zap.Logger) *Renderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{body: body, resolver: resolver, rasterizer: rasterizer, timeout: timeout, logger: logger}
}

// Format 返回渲染器的目标格式
func (r *Renderer) Format() render.Format { return render.FormatPDF }

// ContentType 返回输出的 MIME 类型
func (r *Renderer) ContentType() string { return "application/pdf" }

// Extension 返回输出文件扩展名
func (r *Renderer) Extension() string { return "pdf" }

// Binary 输出是否为二进制字节流
func (r *Renderer) Binary() bool { return true }

// Render 生成分页 PDF
// 栅格化调用运行在有界超时下，超时或崩溃向上传播为终态失败，不重试
func (r *Renderer) Render(ctx context.Context, doc *document.Document, output io.Writer) error {
	if r.rasterizer == nil {
		return fmt.Errorf("no rasterizer configured")
	}

	var markup bytes.Buffer
	if err := r.body.Render(ctx, doc, &markup); err != nil {
		return fmt.Errorf("failed to build print markup: %w", err)
	}

	cfg := r.pageConfig(doc)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.rasterizer.Rasterize(ctx, markup.String(), cfg)
	if err != nil {
		return fmt.Errorf("pdf generation failed: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("pdf generation resulted in an empty file")
	}

	r.logger.Debug("pdf generated", zap.Int("bytes", len(data)))

	if _, err := output.Write(data); err != nil {
		return fmt.Errorf("failed to write pdf output: %w", err)
	}
	return nil
}

// pageConfig 固定边距盒与页眉/页脚模板
func (r *Renderer) pageConfig(doc *document.Document) PageConfig {
	spec := r.resolver.Spec()
	return PageConfig{
		PaperWidth:     paperWidthA4,
		PaperHeight:    paperHeightA4,
		MarginTop:      marginInches(spec.Margins.Top),
		MarginBottom:   marginInches(spec.Margins.Bottom),
		MarginLeft:     marginInches(spec.Margins.Left),
		MarginRight:    marginInches(spec.Margins.Right),
		HeaderTemplate: r.headerTemplate(doc),
		FooterTemplate: r.footerTemplate(doc),
	}
}

// headerTemplate 每页顶部的期刊标识块（标识左侧留白，文字右对齐）
func (r *Renderer) headerTemplate(doc *document.Document) string {
	var parts []string
	for _, p := range []string{doc.Header.ISSN, doc.Header.DOI, doc.Header.Volume} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	secondLine := strings.Join(parts, " | ")

	return fmt.Sprintf(`
        <div style="font-size: 10pt; width: 100%%; text-align: center; font-family: 'Times New Roman', serif; font-weight: bold; padding: 0 0.42in;">
          <div style="border-bottom: 1px solid #000; padding-bottom: 10pt; display: flex; align-items: center; justify-content: space-between;">
            <div style="flex: 0 0 auto;"></div>
            <div style="flex: 1; text-align: right;">
              %s<br>
              <span style="font-size: 9pt; font-weight: normal;">%s</span>
            </div>
          </div>
        </div>`, doc.Header.Content, secondLine)
}

// footerTemplate 页码在左、固定页脚地址居中
func (r *Renderer) footerTemplate(doc *document.Document) string {
	footerText := doc.FooterText
	if footerText == "" {
		footerText = r.resolver.Spec().FooterText
	}

	return fmt.Sprintf(`
        <div style="font-size: 10pt; width: 100%%; font-family: 'Times New Roman', serif; padding: 0 0.42in; box-sizing: border-box;">
          <div style="border-top: 1px solid #000; width: 100%%; height: 1px;"></div>
          <div style="padding-top: 2pt; display: flex; justify-content: space-between; align-items: center;">
            <div style="flex: 1; text-align: left;">Page <span class="pageNumber"></span></div>
            <div style="flex: 1; text-align: center;">%s</div>
            <div style="flex: 1;"></div>
          </div>
        </div>`, footerText)
}

// marginInches "0.76in" 之类的边距字面量换算为英寸数值
func marginInches(m string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(m, "in"), 64)
	if err != nil {
		return 0
	}
	return v
}
