package pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RodRasterizer 基于无头 Chrome 的栅格化实现
// 每次调用独占一个浏览器进程，所有退出路径都保证回收
type RodRasterizer struct {
	logger *zap.Logger
}

// NewRodRasterizer 创建无头浏览器栅格化器
func NewRodRasterizer(logger *zap.Logger) *RodRasterizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodRasterizer{logger: logger}
}

// Rasterize 把标记渲染为分页 PDF 字节
// 上层通过 ctx 控制超时；取消即中断并回收浏览器进程
func (r *RodRasterizer) Rasterize(ctx context.Context, markup string, cfg PageConfig) ([]byte, error) {
	l := launcher.New().Headless(true)
	defer l.Kill()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(markup); err != nil {
		return nil, fmt.Errorf("failed to set page content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	req := &proto.PagePrintToPDF{
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		PreferCSSPageSize:   true,
		PaperWidth:          &cfg.PaperWidth,
		PaperHeight:         &cfg.PaperHeight,
		MarginTop:           &cfg.MarginTop,
		MarginBottom:        &cfg.MarginBottom,
		MarginLeft:          &cfg.MarginLeft,
		MarginRight:         &cfg.MarginRight,
		HeaderTemplate:      cfg.HeaderTemplate,
		FooterTemplate:      cfg.FooterTemplate,
	}

	stream, err := page.PDF(req)
	if err != nil {
		return nil, fmt.Errorf("failed to print page: %w", err)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf stream: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("rasterizer produced empty output")
	}

	r.logger.Debug("rasterization completed", zap.Int("bytes", len(data)))
	return data, nil
}
