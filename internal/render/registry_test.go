package render

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanika12/go-paper-formatter/internal/document"
)

// stubRenderer 仅报告格式元数据的渲染器替身
type stubRenderer struct {
	format Format
}

func (s *stubRenderer) Render(ctx context.Context, doc *document.Document, output io.Writer) error {
	return nil
}
func (s *stubRenderer) Format() Format { return s.format }

func (s *stubRenderer) ContentType() string { return "application/octet-stream" }

func (s *stubRenderer) Extension() string { return string(s.format) }

func (s *stubRenderer) Binary() bool { return false }

// TestRegistryRegisterAndGet 注册后按名字查找，大小写不敏感
func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubRenderer{format: FormatHTML}))

	for _, name := range []string{"html", "HTML", "Html"} {
		renderer, err := reg.Get(name)
		require.NoError(t, err, "name %s", name)
		assert.Equal(t, FormatHTML, renderer.Format())
	}
}

// TestRegistryDuplicate 重复注册同一格式是错误
func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubRenderer{format: FormatPDF}))

	err := reg.Register(&stubRenderer{format: FormatPDF})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

// TestRegistryUnsupported 不支持的格式名在渲染前被拒绝
func TestRegistryUnsupported(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("epub")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format: epub")
}

// TestRegistryNilRenderer 空渲染器不可注册
func TestRegistryNilRenderer(t *testing.T) {
	assert.Error(t, NewRegistry().Register(nil))
}

// TestRegistryFormats 返回全部已注册格式
func TestRegistryFormats(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubRenderer{format: FormatHTML}))
	require.NoError(t, reg.Register(&stubRenderer{format: FormatDocx}))

	formats := reg.Formats()
	assert.Len(t, formats, 2)
	assert.Contains(t, formats, FormatHTML)
	assert.Contains(t, formats, FormatDocx)
}
