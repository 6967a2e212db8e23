// Package document 定义了规范化的学术论文文档模型
// 所有组件之间传递的唯一数据结构
package document

import "strings"

// SectionType 章节语义类型
type SectionType string

const (
	TypeIntroduction     SectionType = "introduction"
	TypeMethodology      SectionType = "methodology"
	TypeMethods          SectionType = "methods"
	TypeResults          SectionType = "results"
	TypeDiscussion       SectionType = "discussion"
	TypeConclusion       SectionType = "conclusion"
	TypeLiteratureReview SectionType = "literature_review"
	TypeOther            SectionType = "other"
)

// Provenance 标记文档结构的来源
type Provenance string

const (
	ProvenanceAI       Provenance = "ai"
	ProvenanceFallback Provenance = "fallback"
)

// StyledText 带呈现提示的文本字段
type StyledText struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

// Affiliation 作者单位，编号从 1 开始连续
type Affiliation struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Style  string `json:"style,omitempty"`
}

// LabeledContent 带标题的内容块（摘要、关键词）
// Content 是以换行分隔段落的纯文本，尚未拆分为呈现块
type LabeledContent struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Subsection 子章节，与 Section 同构但没有语义类型
type Subsection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Section 章节
type Section struct {
	Heading     string       `json:"heading"`
	Content     string       `json:"content"`
	Type        SectionType  `json:"type"`
	Subsections []Subsection `json:"subsections"`
}

// Reference 单条参考文献
type Reference struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// References 参考文献列表
type References struct {
	Heading string      `json:"heading"`
	Entries []Reference `json:"content"`
}

// Metadata 派生元数据，章节变化时必须重新计算
type Metadata struct {
	WordCount        int    `json:"wordCount"`
	PageCount        int    `json:"pageCount"`
	DocumentType     string `json:"documentType"`
	SectionCount     int    `json:"sectionCount"`
	OriginalFilename string `json:"originalFilename"`
}

// PublicationInfo 出版信息（可选），均为自由文本
type PublicationInfo struct {
	DOI       string `json:"doi"`
	Received  string `json:"received"`
	Accepted  string `json:"accepted"`
	Published string `json:"published"`
}

// JournalIdentity 期刊页眉标识，属于配置而非推断
type JournalIdentity struct {
	Content string `json:"content"`
	ISSN    string `json:"issn"`
	DOI     string `json:"doi"`
	Volume  string `json:"volume"`
}

// Document 规范化文档
// 由 AI 结构化或回退解析器创建一次，只有 Normalizer 可以修改
type Document struct {
	Title           StyledText       `json:"title"`
	Authors         StyledText       `json:"authors"`
	Affiliations    []Affiliation    `json:"affiliations"`
	Abstract        LabeledContent   `json:"abstract"`
	Keywords        LabeledContent   `json:"keywords"`
	Sections        []Section        `json:"sections"`
	References      References       `json:"references"`
	Metadata        Metadata         `json:"metadata"`
	PublicationInfo *PublicationInfo `json:"publicationInfo,omitempty"`
	Header          JournalIdentity  `json:"header"`
	FooterText      string           `json:"footer"`

	// OriginalHTML 富文本来源的原始标记（可选的增强路径）
	OriginalHTML string `json:"originalHtml,omitempty"`

	Provenance Provenance `json:"provenance,omitempty"`
	Warning    string     `json:"warning,omitempty"`
}

// DetectSectionType 根据标题关键词推断章节类型
func DetectSectionType(heading string) SectionType {
	lower := strings.ToLower(heading)
	switch {
	case strings.Contains(lower, "introduction"):
		return TypeIntroduction
	case strings.Contains(lower, "method"), strings.Contains(lower, "approach"):
		return TypeMethodology
	case strings.Contains(lower, "result"), strings.Contains(lower, "finding"):
		return TypeResults
	case strings.Contains(lower, "discussion"), strings.Contains(lower, "analysis"):
		return TypeDiscussion
	case strings.Contains(lower, "conclusion"), strings.Contains(lower, "summary"):
		return TypeConclusion
	case strings.Contains(lower, "literature"), strings.Contains(lower, "review"):
		return TypeLiteratureReview
	default:
		return TypeOther
	}
}

// WordCount 统计空白分隔的词数
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// PageCount 按每页 250 词估算页数
func PageCount(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + 249) / 250
}
