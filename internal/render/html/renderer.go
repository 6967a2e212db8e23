// Package html 网页标记渲染器
// 内嵌与固定格式规范一致的样式表；原始文本字段全部转义，
// 重排引擎产出的片段已是安全标记，原样透传
package html

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

// Renderer 网页标记渲染器
type Renderer struct {
	resolver *styles.Resolver
	engine   *reflow.Engine
}

// NewRenderer 创建网页标记渲染器
func NewRenderer(resolver *styles.Resolver, engine *reflow.Engine) *Renderer {
	return &Renderer{resolver: resolver, engine: engine}
}

// Format 返回渲染器的目标格式
func (r *Renderer) Format() render.Format { return render.FormatHTML }

// ContentType 返回输出的 MIME 类型
func (r *Renderer) ContentType() string { return "text/html" }

// Extension 返回输出文件扩展名
func (r *Renderer) Extension() string { return "html" }

// Binary 输出是否为二进制字节流
func (r *Renderer) Binary() bool { return false }

// Render 渲染完整 HTML 文档
// 缺失的可选字段整块省略，不渲染空标题容器
func (r *Renderer) Render(ctx context.Context, doc *document.Document, output io.Writer) error {
	if doc == nil {
		doc = &document.Document{}
	}

	var sb strings.Builder
	spec := r.resolver.Spec()

	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("    <title>" + reflow.EscapeHTML(doc.Title.Text) + "</title>\n")
	sb.WriteString(r.styleSheet(spec))
	sb.WriteString("</head>\n<body>\n    <div class=\"document-container\">\n")

	r.writeHeader(&sb, doc)
	r.writeTitleBlock(&sb, doc)
	r.writePublicationInfo(&sb, doc)
	r.writeAbstract(&sb, doc)
	r.writeKeywords(&sb, doc)
	r.writeSections(&sb, doc)
	r.writeReferences(&sb, doc)

	sb.WriteString("    </div>\n</body>\n</html>\n")

	_, err := io.WriteString(output, sb.String())
	if err != nil {
		return fmt.Errorf("failed to write html output: %w", err)
	}
	return nil
}

// styleSheet 固定格式规范对应的完整样式表
func (r *Renderer) styleSheet(spec styles.FormatSpec) string {
	return fmt.Sprintf(`    <style>
        @page {
            size: %s;
            margin: %s %s %s %s;
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: '%s', serif;
            font-size: %s;
            line-height: %s;
            color: #000;
            background: #fff;
            text-align: justify;
        }

        .document-container { max-width: 8.5in; margin: 0 auto; padding: 0; }

        .header {
            text-align: center;
            font-size: 10pt;
            font-weight: bold;
            border-top: 1px solid #000;
            border-bottom: 1px solid #000;
            padding-bottom: 10pt;
            margin-bottom: 20pt;
        }
        .header-line { margin-bottom: 2pt; }

        .title { %s }
        .authors { %s }

        .journal-table {
            width: 100%%;
            border-collapse: collapse;
            table-layout: fixed;
            margin: 12pt 0;
            font-size: 12pt;
            font-family: '%s', serif;
        }
        .journal-table th, .journal-table td {
            border: 1px solid #000;
            padding: 6pt;
            text-align: left;
            vertical-align: middle;
            word-break: break-word;
        }
        .journal-table thead { display: table-header-group; }
        .journal-table tr { page-break-inside: avoid; break-inside: avoid; }

        .table-caption, .figure-caption {
            font-weight: bold;
            text-align: center;
            margin: 12pt 0 6pt 0;
        }
        .kv-key { width: 40%%; font-weight: bold; }
        .kv-val { width: 60%%; }

        .affiliations { text-align: center; font-weight: bold; font-size: 12pt; margin: 10pt 0; }
        .affiliation { margin-bottom: 6pt; }

        .publication-info { %s }

        .abstract { margin: 20pt 0; }
        .abstract-heading { %s margin-bottom: 10pt; }
        .abstract-content { %s margin-bottom: 15pt; }
        .abstract-content p, .section-content p { margin-bottom: %s; }
        .abstract-content p:last-child, .section-content p:last-child { margin-bottom: 0; }

        .keywords { margin: 15pt 0; }
        .keywords-heading { %s }
        .keywords-content { %s }

        .section { margin: 20pt 0; }
        .section-heading { margin-bottom: 10pt; }
        .section-content { text-align: justify; margin-bottom: 15pt; }
        .subsection { margin: 15pt 0; }
        .subsection-heading { font-size: 12pt; font-weight: bold; margin-bottom: 6pt; }

        .references { margin: 20pt 0; }
        .references-heading { %s margin-bottom: 10pt; }
        .references-list { margin-top: 2pt; padding-left: 20pt; }
        .reference-row {
            display: grid;
            grid-template-columns: 24pt 1fr;
            column-gap: 4pt;
            align-items: start;
        }
        .reference-row .ref-num { text-align: left; }
        .reference-row .ref-text { text-align: justify; }

        sup { font-size: 10pt; vertical-align: super; }
        .equation { text-align: center; margin: 12pt 0; font-style: italic; }
        .inline-equation { font-style: italic; }

        @media print {
            .document-container { max-width: none; }
            .section-heading { page-break-after: avoid; }
            .header { display: none; }
        }
    </style>
`,
		spec.PageSize,
		spec.Margins.Top, spec.Margins.Right, spec.Margins.Bottom, spec.Margins.Left,
		spec.FontFamily, spec.FontSize, spec.LineSpacing,
		r.resolver.TitleStyle(),
		r.resolver.AuthorsStyle(),
		spec.FontFamily,
		r.resolver.PublicationInfoStyle(),
		r.resolver.AbstractHeadingStyle(),
		r.resolver.ContentStyle(),
		spec.ParagraphSpacing,
		r.resolver.KeywordsHeadingStyle(),
		r.resolver.KeywordsContentStyle(),
		r.resolver.HeadingStyle("references"),
	)
}

func (r *Renderer) writeHeader(sb *strings.Builder, doc *document.Document) {
	if doc.Header.Content == "" && doc.Header.ISSN == "" {
		return
	}
	var parts []string
	for _, p := range []string{doc.Header.ISSN, doc.Header.DOI, doc.Header.Volume} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	sb.WriteString("        <div class=\"header\">\n")
	if doc.Header.Content != "" {
		sb.WriteString("            <div class=\"header-line\">" + reflow.EscapeHTML(doc.Header.Content) + "</div>\n")
	}
	if len(parts) > 0 {
		sb.WriteString("            <div class=\"header-line\">" + reflow.EscapeHTML(strings.Join(parts, " | ")) + "</div>\n")
	}
	sb.WriteString("        </div>\n")
}

func (r *Renderer) writeTitleBlock(sb *strings.Builder, doc *document.Document) {
	if doc.Title.Text != "" {
		sb.WriteString("        <div class=\"title\">" + reflow.EscapeHTML(doc.Title.Text) + "</div>\n")
	}
	if doc.Authors.Text != "" {
		// 作者行可能内嵌上标标记，透传
		sb.WriteString("        <div class=\"authors\">" + doc.Authors.Text + "</div>\n")
	}
	if len(doc.Affiliations) > 0 {
		sb.WriteString("        <div class=\"affiliations\">\n")
		for _, aff := range doc.Affiliations {
			sb.WriteString(fmt.Sprintf("            <div class=\"affiliation\"><sup>%d</sup> %s</div>\n",
				aff.Number, reflow.EscapeHTML(aff.Text)))
		}
		sb.WriteString("        </div>\n")
	}
}

func (r *Renderer) writePublicationInfo(sb *strings.Builder, doc *document.Document) {
	pi := doc.PublicationInfo
	if pi == nil {
		return
	}
	sb.WriteString("        <div class=\"publication-info\">\n")
	if pi.DOI != "" {
		doi := reflow.EscapeHTML(pi.DOI)
		sb.WriteString("            <p style=\"margin-bottom:8pt;\"><strong>DOI:</strong> <a href=\"" + doi + "\">" + doi + "</a></p>\n")
	}
	if pi.Received != "" || pi.Accepted != "" || pi.Published != "" {
		var parts []string
		if pi.Received != "" {
			parts = append(parts, "<strong>Received:</strong> "+reflow.EscapeHTML(pi.Received))
		}
		if pi.Accepted != "" {
			parts = append(parts, "<strong>Accepted:</strong> "+reflow.EscapeHTML(pi.Accepted))
		}
		if pi.Published != "" {
			parts = append(parts, "<strong>Published:</strong> "+reflow.EscapeHTML(pi.Published))
		}
		sb.WriteString("            <p style=\"margin-top:6pt;\">" + strings.Join(parts, "; ") + "</p>\n")
	}
	sb.WriteString("        </div>\n")
}

func (r *Renderer) writeAbstract(sb *strings.Builder, doc *document.Document) {
	if doc.Abstract.Content == "" {
		return
	}
	sb.WriteString("        <div class=\"abstract\">\n")
	sb.WriteString("            <div class=\"abstract-heading\">" + reflow.EscapeHTML(doc.Abstract.Heading) + "</div>\n")
	sb.WriteString("            <div class=\"abstract-content\">")
	sb.WriteString(r.FragmentsToHTML(r.engine.Reflow(doc.Abstract.Content), ""))
	sb.WriteString("</div>\n        </div>\n")
}

func (r *Renderer) writeKeywords(sb *strings.Builder, doc *document.Document) {
	if doc.Keywords.Content == "" {
		return
	}
	sb.WriteString("        <div class=\"keywords\">\n")
	sb.WriteString("            <span class=\"keywords-heading\">" + reflow.EscapeHTML(doc.Keywords.Heading) + ":</span>\n")
	sb.WriteString("            <span class=\"keywords-content\">" + reflow.EscapeHTML(doc.Keywords.Content) + "</span>\n")
	sb.WriteString("        </div>\n")
}

func (r *Renderer) writeSections(sb *strings.Builder, doc *document.Document) {
	slices := map[string]string{}
	if doc.OriginalHTML != "" {
		headings := make([]string, 0, len(doc.Sections))
		for _, s := range doc.Sections {
			headings = append(headings, s.Heading)
		}
		slices = reflow.SliceSections(doc.OriginalHTML, headings)
	}

	// 切片完全没有命中时退回整段原始标记，保住表格和图片
	if doc.OriginalHTML != "" && len(slices) == 0 && len(doc.Sections) == 0 {
		sb.WriteString("        <div class=\"section\">" + reflow.NormalizeTables(doc.OriginalHTML) + "</div>\n")
		return
	}

	for _, sec := range doc.Sections {
		headingStyle := r.resolver.HeadingStyle(sec.Type)

		sb.WriteString("        <div class=\"section\">\n")
		if sec.Heading != "" {
			sb.WriteString("            <div class=\"section-heading\" style=\"" + headingStyle + "\">" + reflow.EscapeHTML(sec.Heading) + "</div>\n")
		}

		content := r.sectionContentHTML(sec, slices, headingStyle)
		if content != "" {
			sb.WriteString("            <div class=\"section-content\" style=\"" + r.resolver.ContentStyle() + "\">" + content + "</div>\n")
		}

		for _, sub := range sec.Subsections {
			sb.WriteString("            <div class=\"subsection\">\n")
			if sub.Heading != "" {
				sb.WriteString("                <div class=\"subsection-heading\" style=\"" + r.resolver.SubheadingStyle() + "\">" + reflow.EscapeHTML(sub.Heading) + "</div>\n")
			}
			if sub.Content != "" {
				sb.WriteString("                <div class=\"section-content\" style=\"" + r.resolver.ContentStyle() + "\">")
				sb.WriteString(r.FragmentsToHTML(r.engine.Reflow(sub.Content), r.resolver.SubheadingStyle()))
				sb.WriteString("</div>\n")
			}
			sb.WriteString("            </div>\n")
		}
		sb.WriteString("        </div>\n")
	}
}

// sectionContentHTML 优先使用富文本切片，否则重排纯文本内容
func (r *Renderer) sectionContentHTML(sec document.Section, slices map[string]string, headingStyle string) string {
	if sliced, ok := slices[sec.Heading]; ok && sliced != "" {
		sliced = reflow.StripLeadingHeading(sliced, sec.Heading)
		return reflow.CleanBeforeTable(sliced)
	}
	if sec.Content == "" {
		return ""
	}
	return r.FragmentsToHTML(r.engine.Reflow(sec.Content), headingStyle)
}

func (r *Renderer) writeReferences(sb *strings.Builder, doc *document.Document) {
	if len(doc.References.Entries) == 0 {
		return
	}
	sb.WriteString("        <div class=\"references\">\n")
	sb.WriteString("            <div class=\"references-heading\">" + reflow.EscapeHTML(doc.References.Heading) + "</div>\n")
	sb.WriteString("            <div class=\"references-list\">\n")
	for _, ref := range doc.References.Entries {
		sb.WriteString(fmt.Sprintf("                <div class=\"reference-row\"><div class=\"ref-num\">%d.</div><div class=\"ref-text\">%s</div></div>\n",
			ref.Number, reflow.EscapeHTML(ref.Text)))
	}
	sb.WriteString("            </div>\n        </div>\n")
}

// FragmentsToHTML 片段序列序列化为 HTML
// 段落包进 <p>，表格/标题/已渲染块绝不再包装
func (r *Renderer) FragmentsToHTML(fragments []reflow.Fragment, headingStyle string) string {
	if headingStyle == "" {
		headingStyle = r.resolver.SubheadingStyle()
	}

	var sb strings.Builder
	for _, frag := range fragments {
		if frag.Raw != "" {
			sb.WriteString(frag.Raw)
			continue
		}
		switch frag.Kind {
		case reflow.KindTable:
			sb.WriteString(gridToHTML(frag.Grid))
		case reflow.KindCaption:
			sb.WriteString(`<div class="` + frag.CaptionKind + `-caption">` + reflow.EscapeHTML(frag.Text) + "</div>")
		case reflow.KindHeading:
			sb.WriteString(`<div class="section-heading" style="` + headingStyle + `">` + reflow.EscapeHTML(frag.Text) + "</div>")
		default:
			sb.WriteString("<p>" + frag.Text + "</p>")
		}
	}
	return sb.String()
}

// gridToHTML 结构化表格序列化为期刊表格标记，单元格文本转义
func gridToHTML(grid *reflow.Grid) string {
	if grid == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<table class="journal-table">`)
	if grid.KeyValue {
		sb.WriteString("<tbody>")
		for _, row := range grid.Rows {
			if len(row) < 2 {
				continue
			}
			sb.WriteString(`<tr><td class="kv-key">` + reflow.EscapeHTML(row[0]) + `</td><td class="kv-val">` + reflow.EscapeHTML(row[1]) + "</td></tr>")
		}
		sb.WriteString("</tbody>")
	} else {
		sb.WriteString("<thead><tr>")
		for _, h := range grid.Header {
			sb.WriteString("<th>" + reflow.EscapeHTML(h) + "</th>")
		}
		sb.WriteString("</tr></thead><tbody>")
		for _, row := range grid.Rows {
			sb.WriteString("<tr>")
			for _, c := range row {
				sb.WriteString("<td>" + reflow.EscapeHTML(c) + "</td>")
			}
			sb.WriteString("</tr>")
		}
		sb.WriteString("</tbody>")
	}
	sb.WriteString("</table>")
	return sb.String()
}
