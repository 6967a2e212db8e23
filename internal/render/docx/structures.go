// Package docx 字处理文档渲染器
package docx

import (
	"fmt"
	"math"
	"strings"
)

// OOXML 命名空间
const (
	WordprocessingMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	RelationshipsNamespace    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	PackageRelsNamespace      = "http://schemas.openxmlformats.org/package/2006/relationships"
	ContentTypesNamespace     = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// 对齐方式
const (
	AlignLeft      = "left"
	AlignCenter    = "center"
	AlignRight     = "right"
	AlignJustified = "both"
)

// Run 文本运行（字号单位为半磅）
type Run struct {
	Text        string
	Bold        bool
	Italic      bool
	Superscript bool
	Size        int
	PageField   bool
}

// Paragraph 段落（间距与缩进单位为缇）
type Paragraph struct {
	Runs          []Run
	Alignment     string
	SpacingBefore int
	SpacingAfter  int
	IndentLeft    int
	IndentHanging int
	BorderTop     bool
	BorderBottom  bool
}

// Table 简单表格：每个单元格承载一个段落
type Table struct {
	Header []string
	Rows   [][]string
}

// Block 文档正文块：段落或表格
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// InchesToTwips 英寸换算为缇
func InchesToTwips(inches float64) int {
	return int(math.Round(inches * 1440))
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// WriteXML 序列化文本运行
func (r Run) WriteXML(sb *strings.Builder) {
	if r.PageField {
		// PAGE 域：打开阅读器时重新计算页码
		sb.WriteString(`<w:r><w:fldChar w:fldCharType="begin"/></w:r>`)
		sb.WriteString(`<w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>`)
		sb.WriteString(`<w:r><w:fldChar w:fldCharType="separate"/></w:r>`)
		sb.WriteString(`<w:r><w:t>1</w:t></w:r>`)
		sb.WriteString(`<w:r><w:fldChar w:fldCharType="end"/></w:r>`)
		return
	}

	sb.WriteString("<w:r>")
	var props strings.Builder
	props.WriteString(`<w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman"/>`)
	if r.Bold {
		props.WriteString("<w:b/>")
	}
	if r.Italic {
		props.WriteString("<w:i/>")
	}
	if r.Superscript {
		props.WriteString(`<w:vertAlign w:val="superscript"/>`)
	}
	if r.Size > 0 {
		props.WriteString(fmt.Sprintf(`<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size, r.Size))
	}
	sb.WriteString("<w:rPr>" + props.String() + "</w:rPr>")
	sb.WriteString(`<w:t xml:space="preserve">` + escapeXML(r.Text) + "</w:t>")
	sb.WriteString("</w:r>")
}

// WriteXML 序列化段落
func (p Paragraph) WriteXML(sb *strings.Builder) {
	sb.WriteString("<w:p>")

	var props strings.Builder
	if p.BorderTop || p.BorderBottom {
		props.WriteString("<w:pBdr>")
		if p.BorderTop {
			props.WriteString(`<w:top w:val="single" w:sz="6" w:space="1" w:color="000000"/>`)
		}
		if p.BorderBottom {
			props.WriteString(`<w:bottom w:val="single" w:sz="6" w:space="1" w:color="000000"/>`)
		}
		props.WriteString("</w:pBdr>")
	}
	if p.SpacingBefore > 0 || p.SpacingAfter > 0 {
		props.WriteString(fmt.Sprintf(`<w:spacing w:before="%d" w:after="%d"/>`, p.SpacingBefore, p.SpacingAfter))
	}
	if p.IndentLeft > 0 || p.IndentHanging > 0 {
		props.WriteString(fmt.Sprintf(`<w:ind w:left="%d" w:hanging="%d"/>`, p.IndentLeft, p.IndentHanging))
	}
	if p.Alignment != "" {
		props.WriteString(fmt.Sprintf(`<w:jc w:val="%s"/>`, p.Alignment))
	}
	if props.Len() > 0 {
		sb.WriteString("<w:pPr>" + props.String() + "</w:pPr>")
	}

	for _, run := range p.Runs {
		run.WriteXML(sb)
	}
	sb.WriteString("</w:p>")
}

// WriteXML 序列化表格
func (t Table) WriteXML(sb *strings.Builder) {
	sb.WriteString("<w:tbl>")
	sb.WriteString(`<w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:color="000000"/>` +
		`<w:left w:val="single" w:sz="4" w:color="000000"/>` +
		`<w:bottom w:val="single" w:sz="4" w:color="000000"/>` +
		`<w:right w:val="single" w:sz="4" w:color="000000"/>` +
		`<w:insideH w:val="single" w:sz="4" w:color="000000"/>` +
		`<w:insideV w:val="single" w:sz="4" w:color="000000"/>` +
		`</w:tblBorders></w:tblPr>`)

	if len(t.Header) > 0 {
		writeTableRow(sb, t.Header, true)
	}
	for _, row := range t.Rows {
		writeTableRow(sb, row, false)
	}
	sb.WriteString("</w:tbl>")
}

func writeTableRow(sb *strings.Builder, cells []string, bold bool) {
	sb.WriteString("<w:tr>")
	for _, cell := range cells {
		sb.WriteString("<w:tc><w:tcPr/>")
		p := Paragraph{Runs: []Run{{Text: cell, Bold: bold, Size: 24}}}
		p.WriteXML(sb)
		sb.WriteString("</w:tc>")
	}
	sb.WriteString("</w:tr>")
}

// ContentTypesXML 生成 [Content_Types].xml
func ContentTypesXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="` + ContentTypesNamespace + `">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>
<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>
</Types>`
}

// RootRelsXML 生成包级关系文件
func RootRelsXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + PackageRelsNamespace + `">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
}

// DocumentRelsXML 生成主文档关系文件
func DocumentRelsXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + PackageRelsNamespace + `">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>
</Relationships>`
}

// StylesXML 生成最小样式表：默认字体与字号
func StylesXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="` + WordprocessingMLNamespace + `">
<w:docDefaults><w:rPrDefault><w:rPr>
<w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman"/>
<w:sz w:val="24"/><w:szCs w:val="24"/>
</w:rPr></w:rPrDefault></w:docDefaults>
</w:styles>`
}

// HeaderFooterXML 序列化页眉或页脚部件
func HeaderFooterXML(root string, paragraphs []Paragraph) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(fmt.Sprintf(`<w:%s xmlns:w="%s" xmlns:r="%s">`, root, WordprocessingMLNamespace, RelationshipsNamespace))
	for _, p := range paragraphs {
		p.WriteXML(&sb)
	}
	sb.WriteString(fmt.Sprintf("</w:%s>", root))
	return sb.String()
}

// DocumentXML 序列化主文档部件，附页面尺寸与页边距节属性
func DocumentXML(blocks []Block, margins PageMargins) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(fmt.Sprintf(`<w:document xmlns:w="%s" xmlns:r="%s"><w:body>`, WordprocessingMLNamespace, RelationshipsNamespace))
	for _, block := range blocks {
		if block.Table != nil {
			block.Table.WriteXML(&sb)
			continue
		}
		if block.Paragraph != nil {
			block.Paragraph.WriteXML(&sb)
		}
	}
	sb.WriteString(`<w:sectPr>`)
	sb.WriteString(`<w:headerReference w:type="default" r:id="rId2"/>`)
	sb.WriteString(`<w:footerReference w:type="default" r:id="rId3"/>`)
	// A4 纸张尺寸，单位缇
	sb.WriteString(`<w:pgSz w:w="11906" w:h="16838"/>`)
	sb.WriteString(fmt.Sprintf(`<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="%d"/>`,
		margins.Top, margins.Right, margins.Bottom, margins.Left, margins.Footer))
	sb.WriteString(`<w:pgNumType w:start="1"/>`)
	sb.WriteString(`</w:sectPr></w:body></w:document>`)
	return sb.String()
}

// PageMargins 页边距，单位缇
type PageMargins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
	Footer int
}
