package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanika12/go-paper-formatter/internal/document"
	"github.com/vanika12/go-paper-formatter/internal/reflow"
	"github.com/vanika12/go-paper-formatter/internal/styles"
)

func newTestRenderer() *Renderer {
	return NewRenderer(styles.NewResolver(), reflow.NewEngine())
}

// renderParts 渲染后按 zip 包解开各部件
func renderParts(t *testing.T, doc *document.Document) map[string]string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, newTestRenderer().Render(context.Background(), doc, &buf))

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	parts := make(map[string]string, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		parts[file.Name] = string(data)
	}
	return parts
}

// TestRenderPackageStructure 文档包必须带齐全部部件
func TestRenderPackageStructure(t *testing.T) {
	parts := renderParts(t, &document.Document{Title: document.StyledText{Text: "Sample"}})

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/header1.xml",
		"word/footer1.xml",
		"word/document.xml",
	} {
		assert.Contains(t, parts, name)
	}
	assert.Contains(t, parts["[Content_Types].xml"], "wordprocessingml.document.main+xml")
}

// TestRenderDocumentContent 标题、作者、正文与参考文献全部落入主部件
func TestRenderDocumentContent(t *testing.T) {
	doc := &document.Document{
		Title:   document.StyledText{Text: "Machine Learning for Crop Yield"},
		Authors: document.StyledText{Text: "John Smith<sup>1</sup>"},
		Affiliations: []document.Affiliation{
			{Number: 1, Text: "University of Nairobi"},
		},
		Abstract: document.LabeledContent{Heading: "ABSTRACT", Content: "A complete abstract body."},
		Keywords: document.LabeledContent{Heading: "Keywords", Content: "machine learning"},
		Sections: []document.Section{
			{Heading: "1. Introduction", Content: "Opening paragraph.", Type: document.TypeIntroduction},
		},
		References: document.References{
			Heading: "REFERENCES",
			Entries: []document.Reference{{Number: 1, Text: "Smith, J. (2020). A study."}},
		},
		Header: styles.DefaultJournalIdentity(),
	}
	parts := renderParts(t, doc)
	body := parts["word/document.xml"]

	assert.Contains(t, body, "Machine Learning for Crop Yield")
	assert.Contains(t, body, "John Smith")
	assert.Contains(t, body, `<w:vertAlign w:val="superscript"/>`)
	assert.Contains(t, body, "University of Nairobi")
	// 标题区标题全大写
	assert.Contains(t, body, "1. INTRODUCTION")
	assert.Contains(t, body, "1. Smith, J. (2020). A study.")
	// 页面为 A4 且上边距 0.76in = 1094 twips
	assert.Contains(t, body, `<w:pgSz w:w="11906" w:h="16838"/>`)
	assert.Contains(t, body, `w:top="1094"`)

	header := parts["word/header1.xml"]
	assert.Contains(t, header, "INTERNATIONAL JOURNAL OF RESEARCH AND INNOVATION IN SOCIAL SCIENCE (IJRISS)")
	assert.Contains(t, header, "ISSN No. 2454-6186 | DOI: 10.47772/IJRISS")

	footer := parts["word/footer1.xml"]
	assert.Contains(t, footer, "PAGE")
	assert.Contains(t, footer, "www.rsisinternational.org")
}

// TestRenderEscapesXML 文本必须做 XML 转义
func TestRenderEscapesXML(t *testing.T) {
	doc := &document.Document{
		Title: document.StyledText{Text: `Supply & Demand <Model> "Review"`},
	}
	parts := renderParts(t, doc)
	body := parts["word/document.xml"]

	assert.Contains(t, body, "Supply &amp; Demand &lt;Model&gt;")
	assert.NotContains(t, body, "<Model>")
}

// TestRenderIndentEntity 行首缩进占位实体还原为空格而不是字面文本
func TestRenderIndentEntity(t *testing.T) {
	doc := &document.Document{
		Sections: []document.Section{
			{
				Heading: "Results",
				Content: "Opening sentence of the paragraph.\n\tThe continuation line carries a tab indent.",
				Type:    document.TypeResults,
			},
		},
	}
	parts := renderParts(t, doc)
	body := parts["word/document.xml"]

	assert.Contains(t, body, "The continuation line carries a tab indent.")
	assert.NotContains(t, body, "nbsp")
}

// TestRenderTable 管道表格落为文档表格
func TestRenderTable(t *testing.T) {
	doc := &document.Document{
		Sections: []document.Section{
			{
				Heading: "Results",
				Type:    document.TypeResults,
				Content: "| Region | Yield |\n| North | 4.2 |",
			},
		},
	}
	parts := renderParts(t, doc)
	body := parts["word/document.xml"]

	assert.Contains(t, body, "<w:tbl>")
	assert.Contains(t, body, "Region")
	assert.Contains(t, body, "North")
}

// TestSupRuns 上标标记拆分为独立运行
func TestSupRuns(t *testing.T) {
	runs := supRuns("John Smith<sup>1</sup>, Jane Doe<sup>2</sup>*", 24, true)

	require.Len(t, runs, 5)
	assert.Equal(t, "John Smith", runs[0].Text)
	assert.True(t, runs[0].Bold)
	assert.False(t, runs[0].Superscript)

	assert.Equal(t, "1", runs[1].Text)
	assert.True(t, runs[1].Superscript)
	// 24 * 0.7 = 16.8 向下取整
	assert.Equal(t, 16, runs[1].Size)

	assert.Equal(t, ", Jane Doe", runs[2].Text)
	assert.Equal(t, "2", runs[3].Text)
	assert.Equal(t, "*", runs[4].Text)
}

// TestSupRunsMinimumSize 上标字号不小于 8 磅
func TestSupRunsMinimumSize(t *testing.T) {
	runs := supRuns("A<sup>1</sup>", 20, false)
	require.Len(t, runs, 2)
	assert.Equal(t, 16, runs[1].Size)
}

// TestPlainParagraphs 去标记并按行拆段
func TestPlainParagraphs(t *testing.T) {
	got := plainParagraphs("<p>First paragraph.</p><p>Second <strong>bold</strong> paragraph.</p>")
	require.Len(t, got, 2)
	assert.Equal(t, "First paragraph.", got[0])
	assert.Equal(t, "Second bold paragraph.", got[1])
}

// TestMarginTwips 边距字面量换算
func TestMarginTwips(t *testing.T) {
	assert.Equal(t, 1094, marginTwips("0.76in"))
	assert.Equal(t, 605, marginTwips("0.42in"))
	// 不可解析时退回默认边距
	assert.Equal(t, 605, marginTwips("bogus"))
}
