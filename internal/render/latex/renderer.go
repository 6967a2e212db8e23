// Package latex 排版描述渲染器
// 先生成可组合的结构描述（导言区、几何、标题块、正文、参考文献），
// 再序列化为目标标记语言
package latex

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/reflow"
	"github.com/vanika12/go-paper-formatter/internal/render"
	"github.com/vanika12/go-paper-formatter/internal/styles"
)

// Geometry 页面几何
type Geometry struct {
	Paper  string
	Top    string
	Bottom string
	Left   string
	Right  string
}

// Structure 排版文档的结构描述
type Structure struct {
	DocumentClass string
	Packages      []string
	Geometry      Geometry
	Header        string
	Title         string
	Abstract      string
	Body          string
	References    string
}

// Renderer 排版描述渲染器
type Renderer struct {
	resolver *styles.Resolver
	engine   *reflow.Engine
}

// NewRenderer 创建排版描述渲染器
func NewRenderer(resolver *styles.Resolver, engine *reflow.Engine) *Renderer {
	return &Renderer{resolver: resolver, engine: engine}
}

// Format 返回渲染器的目标格式
func (r *Renderer) Format() render.Format { return render.FormatLaTeX }

// ContentType 返回输出的 MIME 类型
func (r *Renderer) ContentType() string { return "application/x-latex" }

// Extension 返回输出文件扩展名
func (r *Renderer) Extension() string { return "tex" }

// Binary 输出是否为二进制字节流
func (r *Renderer) Binary() bool { return false }

// Render 生成完整排版文档
func (r *Renderer) Render(ctx context.Context, doc *document.Document, output io.Writer) error {
	if doc == nil {
		doc = &document.Document{}
	}
	st := r.Structure(doc)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\\documentclass[12pt]{%s}\n\n", st.DocumentClass))

	sb.WriteString("% Packages\n")
	for _, pkg := range st.Packages {
		sb.WriteString(fmt.Sprintf("\\usepackage{%s}\n", pkg))
	}

	sb.WriteString(fmt.Sprintf("\n%% Geometry\n\\geometry{paper=%s, top=%s, bottom=%s, left=%s, right=%s}\n",
		st.Geometry.Paper, st.Geometry.Top, st.Geometry.Bottom, st.Geometry.Left, st.Geometry.Right))

	sb.WriteString("\n% Font and spacing\n\\linespread{1.0}\n\\setlength{\\parskip}{12pt}\n")

	sb.WriteString("\n% Headers and footers\n")
	sb.WriteString(st.Header)

	sb.WriteString("\n% Title and authors\n")
	sb.WriteString(st.Title)

	sb.WriteString("\n\\begin{document}\n\n\\thispagestyle{firstpage}\n\\pagestyle{plain}\n\n\\maketitle\n\n")
	sb.WriteString(st.Abstract)
	sb.WriteString("\n")
	sb.WriteString(st.Body)
	sb.WriteString("\n")
	sb.WriteString(st.References)
	sb.WriteString("\n\\end{document}\n")

	if _, err := io.WriteString(output, sb.String()); err != nil {
		return fmt.Errorf("failed to write latex output: %w", err)
	}
	return nil
}

// Structure 生成结构描述记录
func (r *Renderer) Structure(doc *document.Document) Structure {
	spec := r.resolver.Spec()
	return Structure{
		DocumentClass: "article",
		Packages:      []string{"geometry", "times", "setspace", "fancyhdr", "graphicx", "amsmath", "cite"},
		Geometry: Geometry{
			Paper:  "a4paper",
			Top:    spec.Margins.Top,
			Bottom: spec.Margins.Bottom,
			Left:   spec.Margins.Left,
			Right:  spec.Margins.Right,
		},
		Header:     r.headerBlock(doc),
		Title:      r.titleBlock(doc),
		Abstract:   r.abstractBlock(doc),
		Body:       r.bodyBlock(doc),
		References: r.referencesBlock(doc),
	}
}

// headerBlock 首页页眉与通页页脚样式
func (r *Renderer) headerBlock(doc *document.Document) string {
	footerText := doc.FooterText
	if footerText == "" {
		footerText = r.resolver.Spec().FooterText
	}
	return fmt.Sprintf(`\fancypagestyle{firstpage}{
  \fancyhf{}
  \fancyhead[C]{\fontsize{10}{12}\selectfont\textbf{%s}\\
  %s | %s | %s}
  \renewcommand{\headrulewidth}{1pt}
}
\fancypagestyle{plain}{
  \fancyhf{}
  \fancyfoot[C]{\fontsize{10}{12}\selectfont Page \thepage \hfill %s}
  \renewcommand{\footrulewidth}{1pt}
}
`, escape(doc.Header.Content), escape(doc.Header.ISSN), escape(doc.Header.DOI), escape(doc.Header.Volume), escape(footerText))
}

func (r *Renderer) titleBlock(doc *document.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\\title{\\fontsize{18}{22}\\selectfont\\textbf{%s}}\n", escape(doc.Title.Text)))

	if doc.Authors.Text != "" {
		sb.WriteString(fmt.Sprintf("\\author{\\fontsize{12}{14}\\selectfont\\textbf{%s}}\n", translateInline(escape(doc.Authors.Text))))
	}

	if len(doc.Affiliations) > 0 {
		var affs []string
		for _, aff := range doc.Affiliations {
			affs = append(affs, fmt.Sprintf("\\textsuperscript{%d}%s", aff.Number, escape(aff.Text)))
		}
		sb.WriteString(fmt.Sprintf("\\date{\\fontsize{12}{14}\\selectfont %s}\n", strings.Join(affs, "\\\\")))
	} else {
		sb.WriteString("\\date{}\n")
	}
	return sb.String()
}

func (r *Renderer) abstractBlock(doc *document.Document) string {
	var sb strings.Builder
	if doc.Abstract.Content != "" {
		sb.WriteString(fmt.Sprintf(`\begin{abstract}
\noindent\textbf{\MakeUppercase{%s}}\\[10pt]
%s
\end{abstract}
`, escape(doc.Abstract.Heading), r.fragmentsToLatex(r.engine.Reflow(doc.Abstract.Content))))
	}
	if doc.Keywords.Content != "" {
		sb.WriteString(fmt.Sprintf("\\noindent\\textbf{%s:} \\textit{%s}\\\\[15pt]\n",
			escape(doc.Keywords.Heading), escape(doc.Keywords.Content)))
	}
	return sb.String()
}

// bodyBlock 章节标题大小写与粗细镜像样式解析器的主/次级区分
func (r *Renderer) bodyBlock(doc *document.Document) string {
	var sb strings.Builder
	for _, sec := range doc.Sections {
		if sec.Heading != "" {
			if r.resolver.IsMainSection(sec.Type) {
				sb.WriteString(fmt.Sprintf("\\section*{\\MakeUppercase{%s}}\n", escape(sec.Heading)))
			} else {
				sb.WriteString(fmt.Sprintf("\\subsection*{%s}\n", escape(r.resolver.TitleCase(sec.Heading))))
			}
		}
		if sec.Content != "" {
			sb.WriteString(r.fragmentsToLatex(r.engine.Reflow(sec.Content)))
			sb.WriteString("\n\n")
		}
		for _, sub := range sec.Subsections {
			if sub.Heading != "" {
				sb.WriteString(fmt.Sprintf("\\subsubsection*{%s}\n", escape(sub.Heading)))
			}
			if sub.Content != "" {
				sb.WriteString(r.fragmentsToLatex(r.engine.Reflow(sub.Content)))
				sb.WriteString("\n\n")
			}
		}
	}
	return sb.String()
}

func (r *Renderer) referencesBlock(doc *document.Document) string {
	if len(doc.References.Entries) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\\section*{\\MakeUppercase{%s}}\n\\begin{enumerate}\n", escape(doc.References.Heading)))
	for _, ref := range doc.References.Entries {
		sb.WriteString(fmt.Sprintf("\\item %s\n", escape(ref.Text)))
	}
	sb.WriteString("\\end{enumerate}\n")
	return sb.String()
}

// fragmentsToLatex 片段序列翻译为排版标记
func (r *Renderer) fragmentsToLatex(fragments []reflow.Fragment) string {
	var parts []string
	for _, frag := range fragments {
		if frag.Raw != "" {
			// 已渲染的网页标记块退化为纯文本段落
			parts = append(parts, escape(reflow.StripTags(frag.Raw)))
			continue
		}
		switch frag.Kind {
		case reflow.KindTable:
			parts = append(parts, gridToLatex(frag.Grid))
		case reflow.KindCaption:
			parts = append(parts, fmt.Sprintf("\\begin{center}\\textbf{%s}\\end{center}", escape(frag.Text)))
		case reflow.KindHeading:
			parts = append(parts, fmt.Sprintf("\\subsection*{%s}", escape(frag.Text)))
		default:
			parts = append(parts, translateInline(escape(frag.Text)))
		}
	}
	return strings.Join(parts, "\n\n")
}

// gridToLatex 表格翻译为 tabular 环境
func gridToLatex(grid *reflow.Grid) string {
	if grid == nil {
		return ""
	}
	cols := 2
	if !grid.KeyValue {
		cols = len(grid.Header)
		if cols == 0 {
			for _, row := range grid.Rows {
				if len(row) > cols {
					cols = len(row)
				}
			}
		}
	}
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\\begin{center}\n\\begin{tabular}{|" + strings.Repeat("l|", cols) + "}\n\\hline\n")
	if !grid.KeyValue && len(grid.Header) > 0 {
		cells := make([]string, 0, len(grid.Header))
		for _, h := range grid.Header {
			cells = append(cells, "\\textbf{"+escape(h)+"}")
		}
		sb.WriteString(strings.Join(cells, " & ") + " \\\\\n\\hline\n")
	}
	for _, row := range grid.Rows {
		cells := make([]string, 0, cols)
		for i := 0; i < cols; i++ {
			if i < len(row) {
				cells = append(cells, escape(row[i]))
			} else {
				cells = append(cells, "")
			}
		}
		sb.WriteString(strings.Join(cells, " & ") + " \\\\\n\\hline\n")
	}
	sb.WriteString("\\end{tabular}\n\\end{center}")
	return sb.String()
}

var inlineReplacer = strings.NewReplacer(
	"<strong>", `\textbf{`, "</strong>", "}",
	"<em>", `\textit{`, "</em>", "}",
	"<sup>", `\textsuperscript{`, "</sup>", "}",
	`<div class="equation">`, `\[`, "</div>", `\]`,
	`<span class="inline-equation">`, `\(`, "</span>", `\)`,
)

// translateInline 行内标记符号翻译为排版命令
func translateInline(s string) string {
	s = strings.ReplaceAll(s, `\&nbsp;`, "~")
	return inlineReplacer.Replace(s)
}

var latexEscaper = strings.NewReplacer(
	"&", `\&`,
	"%", `\%`,
	"#", `\#`,
	"_", `\_`,
	"$", `\$`,
)

// escape 转义排版特殊字符（行内标记符号不含这些字符，可整串转义）
func escape(s string) string {
	return latexEscaper.Replace(s)
}
