package docx

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/reflow"
	"github.com/vanika12/go-paper-formatter/internal/render"
	"github.com/vanika12/go-paper-formatter/internal/styles"
)

// 常用字号，单位半磅
const (
	sizeTitle      = 36
	sizeHeading    = 28
	sizeBody       = 24
	sizeHeaderLine = 22
	sizeSmall      = 20
	sizeSupNumber  = 18
)

var supRunPattern = regexp.MustCompile(`(?i)<sup>(.*?)</sup>`)

// Renderer 字处理文档渲染器
type Renderer struct {
	resolver *styles.Resolver
	engine   *reflow.Engine
}

// NewRenderer 创建字处理文档渲染器
func NewRenderer(resolver *styles.Resolver, engine *reflow.Engine) *Renderer {
	return &Renderer{resolver: resolver, engine: engine}
}

// Format 返回渲染器的目标格式
func (r *Renderer) Format() render.Format { return render.FormatDocx }

// ContentType 返回输出的 MIME 类型
func (r *Renderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Extension 返回输出文件扩展名
func (r *Renderer) Extension() string { return "docx" }

// Binary 输出是否为二进制字节流
func (r *Renderer) Binary() bool { return true }

// Render 生成字处理文档包
func (r *Renderer) Render(ctx context.Context, doc *document.Document, output io.Writer) error {
	if doc == nil {
		doc = &document.Document{}
	}

	blocks := r.bodyBlocks(doc)
	margins := r.pageMargins()

	zipWriter := zip.NewWriter(output)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", ContentTypesXML()},
		{"_rels/.rels", RootRelsXML()},
		{"word/_rels/document.xml.rels", DocumentRelsXML()},
		{"word/styles.xml", StylesXML()},
		{"word/header1.xml", HeaderFooterXML("hdr", r.headerParagraphs(doc))},
		{"word/footer1.xml", HeaderFooterXML("ftr", r.footerParagraphs(doc))},
		{"word/document.xml", DocumentXML(blocks, margins)},
	}
	for _, part := range parts {
		writer, err := zipWriter.Create(part.name)
		if err != nil {
			zipWriter.Close()
			return fmt.Errorf("failed to create docx part %s: %w", part.name, err)
		}
		if _, err := io.WriteString(writer, part.content); err != nil {
			zipWriter.Close()
			return fmt.Errorf("failed to write docx part %s: %w", part.name, err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize docx package: %w", err)
	}
	return nil
}

func (r *Renderer) pageMargins() PageMargins {
	spec := r.resolver.Spec()
	return PageMargins{
		Top:    marginTwips(spec.Margins.Top),
		Right:  marginTwips(spec.Margins.Right),
		Bottom: marginTwips(spec.Margins.Bottom),
		Left:   marginTwips(spec.Margins.Left),
		Footer: InchesToTwips(0.2),
	}
}

// marginTwips 解析形如 "0.76in" 的边距字面量
func marginTwips(literal string) int {
	value, err := strconv.ParseFloat(strings.TrimSuffix(literal, "in"), 64)
	if err != nil {
		return InchesToTwips(0.42)
	}
	return InchesToTwips(value)
}

func (r *Renderer) bodyBlocks(doc *document.Document) []Block {
	var blocks []Block
	para := func(p Paragraph) {
		blocks = append(blocks, Block{Paragraph: &p})
	}

	// 页眉与标题之间留白
	para(Paragraph{SpacingAfter: 200})

	if doc.Title.Text != "" {
		para(Paragraph{
			Runs:         []Run{{Text: doc.Title.Text, Bold: true, Size: sizeTitle}},
			Alignment:    AlignCenter,
			SpacingAfter: 400,
		})
	}

	if doc.Authors.Text != "" {
		para(Paragraph{
			Runs:         supRuns(doc.Authors.Text, sizeBody, true),
			Alignment:    AlignCenter,
			SpacingAfter: 200,
		})
	}

	if len(doc.Affiliations) > 0 {
		for _, aff := range doc.Affiliations {
			para(Paragraph{
				Runs: []Run{
					{Text: strconv.Itoa(aff.Number), Superscript: true, Size: sizeSupNumber},
					{Text: " " + aff.Text, Bold: true, Size: sizeBody},
				},
				Alignment:    AlignCenter,
				SpacingAfter: 120,
			})
		}
		para(Paragraph{})
	}

	if doc.Abstract.Content != "" {
		para(headingParagraph(doc.Abstract.Heading, 400, 200))
		paragraphs := plainParagraphs(doc.Abstract.Content)
		for i, text := range paragraphs {
			after := 240
			if i == len(paragraphs)-1 {
				after = 300
			}
			para(Paragraph{
				Runs:         []Run{{Text: text, Size: sizeBody}},
				Alignment:    AlignJustified,
				SpacingAfter: after,
			})
		}
	}

	if doc.Keywords.Content != "" {
		para(Paragraph{
			Runs: []Run{
				{Text: doc.Keywords.Heading + ": ", Bold: true, Size: sizeBody},
				{Text: doc.Keywords.Content, Italic: true, Size: sizeBody},
			},
			SpacingAfter: 300,
		})
	}

	for _, sec := range doc.Sections {
		if sec.Heading != "" {
			para(headingParagraph(sec.Heading, 400, 200))
		}
		blocks = append(blocks, r.contentBlocks(sec.Content)...)
		for _, sub := range sec.Subsections {
			if sub.Heading != "" {
				para(Paragraph{
					Runs:          []Run{{Text: sub.Heading, Bold: true, Size: sizeBody}},
					SpacingBefore: 240,
					SpacingAfter:  120,
				})
			}
			blocks = append(blocks, r.contentBlocks(sub.Content)...)
		}
	}

	if len(doc.References.Entries) > 0 {
		para(headingParagraph(doc.References.Heading, 400, 200))
		indent := InchesToTwips(0.25)
		for _, ref := range doc.References.Entries {
			para(Paragraph{
				Runs:          []Run{{Text: fmt.Sprintf("%d. %s", ref.Number, ref.Text), Size: sizeBody}},
				Alignment:     AlignJustified,
				IndentLeft:    indent,
				IndentHanging: indent,
			})
		}
	}

	return blocks
}

// contentBlocks 章节正文翻译为文档块
func (r *Renderer) contentBlocks(content string) []Block {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	var blocks []Block
	for _, frag := range r.engine.Reflow(content) {
		if frag.Raw != "" {
			for _, text := range plainParagraphs(frag.Raw) {
				blocks = append(blocks, bodyParagraph(text))
			}
			continue
		}
		switch frag.Kind {
		case reflow.KindTable:
			if frag.Grid != nil {
				blocks = append(blocks, Block{Table: gridToTable(frag.Grid)})
			}
		case reflow.KindCaption:
			p := Paragraph{
				Runs:          []Run{{Text: frag.Text, Bold: true, Size: sizeBody}},
				Alignment:     AlignCenter,
				SpacingBefore: 120,
				SpacingAfter:  120,
			}
			blocks = append(blocks, Block{Paragraph: &p})
		case reflow.KindHeading:
			p := headingParagraph(frag.Text, 400, 200)
			blocks = append(blocks, Block{Paragraph: &p})
		default:
			blocks = append(blocks, bodyParagraph(plainText(frag.Text)))
		}
	}
	return blocks
}

func gridToTable(grid *reflow.Grid) *Table {
	if grid.KeyValue {
		return &Table{Rows: grid.Rows}
	}
	return &Table{Header: grid.Header, Rows: grid.Rows}
}

func bodyParagraph(text string) Block {
	p := Paragraph{
		Runs:         []Run{{Text: text, Size: sizeBody}},
		Alignment:    AlignJustified,
		SpacingAfter: 240,
	}
	return Block{Paragraph: &p}
}

func headingParagraph(text string, before, after int) Paragraph {
	return Paragraph{
		Runs:          []Run{{Text: strings.ToUpper(text), Bold: true, Size: sizeHeading}},
		SpacingBefore: before,
		SpacingAfter:  after,
	}
}

// headerParagraphs 页眉：期刊标识右对齐，末行压底边框线
func (r *Renderer) headerParagraphs(doc *document.Document) []Paragraph {
	identity := doc.Header
	paragraphs := []Paragraph{
		{
			Runs:         []Run{{Text: identity.Content, Bold: true, Size: sizeHeaderLine}},
			Alignment:    AlignRight,
			SpacingAfter: 50,
		},
	}
	var parts []string
	for _, part := range []string{identity.ISSN, identity.DOI, identity.Volume} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		paragraphs = append(paragraphs, Paragraph{
			Runs:      []Run{{Text: strings.Join(parts, " | "), Size: sizeSmall}},
			Alignment: AlignRight,
		})
	}
	paragraphs = append(paragraphs, Paragraph{BorderBottom: true})
	return paragraphs
}

// footerParagraphs 页脚：顶边框线、页码域与期刊网址
func (r *Renderer) footerParagraphs(doc *document.Document) []Paragraph {
	footerText := doc.FooterText
	if footerText == "" {
		footerText = r.resolver.Spec().FooterText
	}
	return []Paragraph{
		{BorderTop: true},
		{
			Runs: []Run{
				{Text: "Page ", Size: sizeSmall},
				{PageField: true},
			},
			Alignment: AlignLeft,
		},
		{
			Runs:      []Run{{Text: footerText, Size: sizeSmall}},
			Alignment: AlignCenter,
		},
	}
}

// supRuns 作者行中的上标标记拆分为独立文本运行
func supRuns(markup string, size int, bold bool) []Run {
	var runs []Run
	rest := markup
	for {
		loc := supRunPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		if plain := reflow.StripTags(rest[:loc[0]]); plain != "" {
			runs = append(runs, Run{Text: plain, Bold: bold, Size: size})
		}
		if inner := rest[loc[2]:loc[3]]; inner != "" {
			supSize := size * 7 / 10
			if supSize < 16 {
				supSize = 16
			}
			runs = append(runs, Run{Text: inner, Superscript: true, Bold: bold, Size: supSize})
		}
		rest = rest[loc[1]:]
	}
	if plain := reflow.StripTags(rest); plain != "" {
		runs = append(runs, Run{Text: plain, Bold: bold, Size: size})
	}
	return runs
}

// plainParagraphs 去除标记后按空行拆段
// plainText 去标记并把缩进占位实体还原为空格
func plainText(s string) string {
	return strings.ReplaceAll(reflow.StripTags(s), "&nbsp;", " ")
}

func plainParagraphs(content string) []string {
	text := strings.ReplaceAll(content, "</p>", "\n")
	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = plainText(text)
	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}
