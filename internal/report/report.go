// Package report 学术格式检查报告生成
package report

import (
	"fmt"
	"strings"

	"github.com/vanika12/go-paper-formatter/internal/document"
)

// 检查阈值
const (
	minTitleLength    = 10
	minAbstractLength = 100
	minWordCount      = 1000
)

// requiredSections 学术论文的规范章节结构
var requiredSections = []document.SectionType{
	document.TypeIntroduction,
	document.TypeMethodology,
	document.TypeResults,
	document.TypeDiscussion,
	document.TypeConclusion,
}

// Validation 结构检查结果
type Validation struct {
	IsValid      bool     `json:"isValid"`
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
	WordCount    int      `json:"wordCount"`
	SectionCount int      `json:"sectionCount"`
}

// FormatCompliance 版式合规说明
type FormatCompliance struct {
	Margins          string `json:"margins"`
	Font             string `json:"font"`
	LineSpacing      string `json:"lineSpacing"`
	ParagraphSpacing string `json:"paragraphSpacing"`
	HeadingFormat    string `json:"headingFormat"`
}

// Report 完整格式报告
type Report struct {
	Validation
	FormatCompliance FormatCompliance `json:"formatCompliance"`
	Recommendations  []string         `json:"recommendations"`
}

// Validate 检查文档的学术结构完整性
func Validate(doc *document.Document) Validation {
	if doc == nil {
		doc = &document.Document{}
	}

	var issues, suggestions []string
	flag := func(issue, suggestion string) {
		issues = append(issues, issue)
		suggestions = append(suggestions, suggestion)
	}

	if len(doc.Title.Text) < minTitleLength {
		flag("Title is missing or too short",
			fmt.Sprintf("Provide a descriptive title of at least %d characters", minTitleLength))
	}

	if doc.Authors.Text == "" {
		flag("Author information is missing", "Add author names and affiliations")
	}

	if len(doc.Abstract.Content) < minAbstractLength {
		flag("Abstract is missing or too short", "Abstract should be 250-300 words summarizing the research")
	}

	present := make(map[document.SectionType]bool, len(doc.Sections))
	for _, sec := range doc.Sections {
		present[sec.Type] = true
	}
	for _, required := range requiredSections {
		found := present[required]
		// methodology 与 methods 视为同一规范章节
		if required == document.TypeMethodology && present[document.TypeMethods] {
			found = true
		}
		if !found {
			flag(fmt.Sprintf("Missing %s section", required),
				fmt.Sprintf("Add a %s section to follow academic structure", required))
		}
	}

	if len(doc.References.Entries) == 0 {
		flag("References are missing", "Add references to support your research")
	}

	wordCount := countWords(doc)
	if wordCount < minWordCount {
		flag("Document appears to be too short for a research paper",
			"Research papers typically contain 3000+ words")
	}

	return Validation{
		IsValid:      len(issues) == 0,
		Issues:       issues,
		Suggestions:  suggestions,
		WordCount:    wordCount,
		SectionCount: len(doc.Sections),
	}
}

// Generate 生成带版式合规说明的完整报告
func Generate(doc *document.Document) Report {
	return Report{
		Validation: Validate(doc),
		FormatCompliance: FormatCompliance{
			Margins:          "0.76in top, 0.42in bottom/left/right",
			Font:             "Times New Roman, 12pt",
			LineSpacing:      "Single (1.0)",
			ParagraphSpacing: "12pt before and after",
			HeadingFormat:    "Bold, uppercase for main sections",
		},
		Recommendations: []string{
			"Ensure all citations follow APA format",
			"Include DOI for all digital references",
			"Use consistent heading hierarchy",
			"Maintain justified text alignment",
			"Include page numbers in footer",
		},
	}
}

func countWords(doc *document.Document) int {
	count := len(strings.Fields(doc.Title.Text))
	count += len(strings.Fields(doc.Abstract.Content))
	for _, sec := range doc.Sections {
		count += len(strings.Fields(sec.Content))
		for _, sub := range sec.Subsections {
			count += len(strings.Fields(sub.Content))
		}
	}
	return count
}
