package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeDefaults 空文档补齐全部默认值
func TestNormalizeDefaults(t *testing.T) {
	doc := NewNormalizer().Normalize(&Document{}, "some original text here", "draft.txt")

	assert.Equal(t, "draft", doc.Title.Text)
	assert.Equal(t, "ABSTRACT", doc.Abstract.Heading)
	assert.Equal(t, "Keywords", doc.Keywords.Heading)
	assert.Equal(t, "REFERENCES", doc.References.Heading)
	assert.NotNil(t, doc.Sections)
	assert.Equal(t, "research_paper", doc.Metadata.DocumentType)
	assert.Equal(t, "draft.txt", doc.Metadata.OriginalFilename)
	assert.Equal(t, 4, doc.Metadata.WordCount)
	assert.Equal(t, 1, doc.Metadata.PageCount)
}

// TestNormalizeIdempotent 规范化第二次执行不改变结果
func TestNormalizeIdempotent(t *testing.T) {
	normalizer := NewNormalizer()

	doc := &Document{
		Title:    StyledText{Text: "A Long Enough Title For This Particular Test"},
		Authors:  StyledText{Text: "John Smith\nJane Doe\nDepartment of Physics, University of Lagos"},
		Abstract: LabeledContent{Content: "DOI: 10.47772/IJRISS\n" + strings.Repeat("A meaningful abstract sentence. ", 8)},
		Sections: []Section{
			{Heading: "Introduction", Content: "Introduction\nBody text of the section.", Type: TypeIntroduction},
		},
		References: References{Entries: []Reference{
			{Number: 4, Text: "Smith, J. (2020). A study of something important."},
			{Number: 9, Text: "short"},
		}},
	}

	first := normalizer.Normalize(doc, "original text", "paper.txt")
	require.NotNil(t, first)

	// 结果按值快照后再执行一次，Normalize 原地修改同一指针
	authors := first.Authors.Text
	affiliations := append([]Affiliation(nil), first.Affiliations...)
	abstract := first.Abstract.Content
	sections := append([]Section(nil), first.Sections...)
	references := append([]Reference(nil), first.References.Entries...)
	metadata := first.Metadata

	second := normalizer.Normalize(first, "original text", "paper.txt")

	assert.Equal(t, authors, second.Authors.Text)
	assert.Equal(t, affiliations, second.Affiliations)
	assert.Equal(t, abstract, second.Abstract.Content)
	assert.Equal(t, sections, second.Sections)
	assert.Equal(t, references, second.References.Entries)
	assert.Equal(t, metadata, second.Metadata)
}

// TestNormalizeAuthorsAndAffiliations 作者与单位拆分
func TestNormalizeAuthorsAndAffiliations(t *testing.T) {
	doc := &Document{
		Authors: StyledText{Text: "John Smith\nJane Doe\nDepartment of Physics, University of Lagos\nSchool of Computing, Makerere University"},
	}
	out := NewNormalizer().Normalize(doc, "text", "p.txt")

	assert.Equal(t, "John Smith, Jane Doe", out.Authors.Text)
	require.Len(t, out.Affiliations, 2)
	assert.Equal(t, 1, out.Affiliations[0].Number)
	assert.Equal(t, "Department of Physics, University of Lagos", out.Affiliations[0].Text)
	assert.Equal(t, 2, out.Affiliations[1].Number)
}

// TestNormalizeAuthorsStopAtAbstract 摘要行终止作者解析
func TestNormalizeAuthorsStopAtAbstract(t *testing.T) {
	doc := &Document{
		Authors: StyledText{Text: "John Smith\nAbstract\nThis should never become an author line"},
	}
	out := NewNormalizer().Normalize(doc, "text", "p.txt")
	assert.Equal(t, "John Smith", out.Authors.Text)
	assert.Empty(t, out.Affiliations)
}

// TestNormalizeReferences 过滤过短条目并连续重编号
func TestNormalizeReferences(t *testing.T) {
	doc := &Document{
		References: References{Entries: []Reference{
			{Number: 3, Text: "  Smith, J. (2020). First valid reference.  "},
			{Number: 7, Text: "too short"},
			{Number: 12, Text: "Jones, K. (2021). Second valid reference."},
		}},
	}
	out := NewNormalizer().Normalize(doc, "text", "p.txt")

	require.Len(t, out.References.Entries, 2)
	assert.Equal(t, 1, out.References.Entries[0].Number)
	assert.Equal(t, "Smith, J. (2020). First valid reference.", out.References.Entries[0].Text)
	assert.Equal(t, 2, out.References.Entries[1].Number)
}

// TestNormalizeAbstractCleanup 摘要里的元数据行被剥离，过短摘要视为无效
func TestNormalizeAbstractCleanup(t *testing.T) {
	long := strings.Repeat("An abstract sentence with enough substance. ", 5)

	t.Run("剥离DOI与日期", func(t *testing.T) {
		doc := &Document{Abstract: LabeledContent{
			Content: "DOI: 10.47772/IJRISS.2025.908\nReceived: 01 June 2025; Accepted: 10 June 2025; Published: 08 July 2025\n" + long,
		}}
		out := NewNormalizer().Normalize(doc, "text", "p.txt")
		assert.NotContains(t, out.Abstract.Content, "DOI:")
		assert.NotContains(t, out.Abstract.Content, "Received:")
		assert.Contains(t, out.Abstract.Content, "enough substance")
	})

	t.Run("清理后过短则置空", func(t *testing.T) {
		doc := &Document{Abstract: LabeledContent{Content: "DOI: 10.47772/IJRISS\nToo short."}}
		out := NewNormalizer().Normalize(doc, "text", "p.txt")
		assert.Empty(t, out.Abstract.Content)
	})
}

// TestNormalizeSectionHeadingDedup 正文开头重复的标题行被去掉
func TestNormalizeSectionHeadingDedup(t *testing.T) {
	doc := &Document{
		Sections: []Section{
			{Heading: "1. Introduction", Content: "INTRODUCTION\nActual section body."},
		},
	}
	out := NewNormalizer().Normalize(doc, "text", "p.txt")
	assert.Equal(t, "Actual section body.", out.Sections[0].Content)
}

// TestNormalizeReferencesTruncatedFromLastSection 末章正文里的参考文献块被截断
func TestNormalizeReferencesTruncatedFromLastSection(t *testing.T) {
	doc := &Document{
		Sections: []Section{
			{Heading: "Conclusion", Content: "Closing remarks.\n\nREFERENCES\n1. Stray reference line.", Type: TypeConclusion},
		},
		References: References{Entries: []Reference{
			{Number: 1, Text: "Smith, J. (2020). A proper reference entry."},
		}},
	}
	out := NewNormalizer().Normalize(doc, "text", "p.txt")
	assert.Equal(t, "Closing remarks.", out.Sections[0].Content)
}

// TestNormalizeSectionCountInvariant 元数据章节数始终与实际章节数一致
func TestNormalizeSectionCountInvariant(t *testing.T) {
	doc := &Document{
		Metadata: Metadata{SectionCount: 99},
		Sections: []Section{{Heading: "Results", Type: TypeResults}},
	}
	out := NewNormalizer().Normalize(doc, "text", "p.txt")
	assert.Equal(t, 1, out.Metadata.SectionCount)
}
