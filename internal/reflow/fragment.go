// Package reflow 把整段散文转换为与渲染器无关的内容片段
// 片段类型：段落、表格、图表标题、子标题
package reflow

// Kind 片段类型
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindCaption   Kind = "caption"
	KindHeading   Kind = "heading"
)

// Grid 从纯文本解析出的表格
// KeyValue 为真时是交替键/值行解析出的两列表格，没有表头
type Grid struct {
	Header   []string
	Rows     [][]string
	KeyValue bool
}

// Fragment 内容片段
// Raw 非空表示该块已经是渲染好的标记（来自富文本切片或再次重排），
// 渲染器必须原样透传而不能再包进段落容器
type Fragment struct {
	Kind Kind

	// Text 段落/子标题的文本，行内强调、引用、公式已替换为标记符号
	Text string

	// Grid 表格片段的结构化数据
	Grid *Grid

	// CaptionKind 标题片段的种类：table 或 figure
	CaptionKind string

	// Raw 已是最终标记的块
	Raw string
}
