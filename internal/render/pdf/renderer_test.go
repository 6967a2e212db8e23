package pdf

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/reflow"
	htmlrender "github.com/vanika12/go-paper-formatter/internal/render/html"
	"github.com/vanika12/go-paper-formatter/internal/styles"
)

// fakeRasterizer 可编排结果的栅格化器替身
type fakeRasterizer struct {
	data    []byte
	err     error
	block   bool
	markup  string
	lastCfg PageConfig
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, markup string, cfg PageConfig) ([]byte, error) {
	f.markup = markup
	f.lastCfg = cfg
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.data, f.err
}

func newTestRenderer(rast Rasterizer, timeout time.Duration) *Renderer {
	resolver := styles.NewResolver()
	body := htmlrender.NewRenderer(resolver, reflow.NewEngine())
	return NewRenderer(body, resolver, rast, timeout, nil)
}

func testDocument() *document.Document {
	return &document.Document{
		Title:  document.StyledText{Text: "A Study of Paging Behaviour"},
		Header: styles.DefaultJournalIdentity(),
	}
}

// TestRenderSuccess 栅格化结果原样写出
func TestRenderSuccess(t *testing.T) {
	rast := &fakeRasterizer{data: []byte("%PDF-1.7 fake body")}
	var buf bytes.Buffer

	require.NoError(t, newTestRenderer(rast, 0).Render(context.Background(), testDocument(), &buf))

	assert.Equal(t, "%PDF-1.7 fake body", buf.String())
	// 提交的标记来自网页渲染器
	assert.Contains(t, rast.markup, "A Study of Paging Behaviour")
	// 页面配置固定为 A4 和期刊边距
	assert.InDelta(t, 8.27, rast.lastCfg.PaperWidth, 0.001)
	assert.InDelta(t, 0.76, rast.lastCfg.MarginTop, 0.001)
	assert.InDelta(t, 0.42, rast.lastCfg.MarginLeft, 0.001)
	assert.Contains(t, rast.lastCfg.FooterTemplate, "www.rsisinternational.org")
	assert.True(t, strings.Contains(rast.lastCfg.HeaderTemplate, "ISSN No. 2454-6186"))
}

// TestRenderRasterizerFailure 栅格化失败是硬失败，不写出部分文件
func TestRenderRasterizerFailure(t *testing.T) {
	rast := &fakeRasterizer{err: errors.New("target crashed")}
	var buf bytes.Buffer

	err := newTestRenderer(rast, 0).Render(context.Background(), testDocument(), &buf)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf generation failed")
	assert.Zero(t, buf.Len())
}

// TestRenderTimeout 超时向上传播为终态失败，不重试
func TestRenderTimeout(t *testing.T) {
	rast := &fakeRasterizer{block: true}
	var buf bytes.Buffer

	start := time.Now()
	err := newTestRenderer(rast, 50*time.Millisecond).Render(context.Background(), testDocument(), &buf)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, buf.Len())
	assert.Less(t, time.Since(start), 5*time.Second)
}

// TestRenderEmptyOutput 空字节结果视为失败
func TestRenderEmptyOutput(t *testing.T) {
	rast := &fakeRasterizer{data: nil}
	var buf bytes.Buffer

	err := newTestRenderer(rast, 0).Render(context.Background(), testDocument(), &buf)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
	assert.Zero(t, buf.Len())
}

// TestRenderNoRasterizer 未配置栅格化器直接报错
func TestRenderNoRasterizer(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(nil, 0).Render(context.Background(), testDocument(), &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
