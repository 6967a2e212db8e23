// Package render 定义渲染器接口与格式注册表
// 四个渲染器消费同一份规范化文档和同一套片段序列，避免格式间漂移
package render

import (
	"context"
	"io"

	"github.com/vanika12/go-paper-formatter/internal/document"
)

// Format 输出格式
type Format string

const (
	FormatHTML  Format = "html"
	FormatPDF   Format = "pdf"
	FormatLaTeX Format = "latex"
	FormatDocx  Format = "docx"
)

// Renderer 文档渲染器接口
// 渲染器把文档视为只读输入，缺失字段降级为省略对应容器，绝不抛出
type Renderer interface {
	// Render 将规范化文档渲染到输出流
	Render(ctx context.Context, doc *document.Document, output io.Writer) error

	// Format 返回渲染器的目标格式
	Format() Format

	// ContentType 返回输出的 MIME 类型
	ContentType() string

	// Extension 返回输出文件扩展名
	Extension() string

	// Binary 输出是否为二进制字节流
	Binary() bool
}
