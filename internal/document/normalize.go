package document

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Normalizer 是唯一允许把文档字段修正为默认值的组件
// 其它组件必须假定经过这里的文档满足全部不变量
type Normalizer struct{}

// NewNormalizer 创建规范化器
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

var (
	referenceSplitter = regexp.MustCompile(`\n|\d+\.`)

	affiliationKeyword = regexp.MustCompile(`(?i)department|school|university|college|institute|@`)
	doiLine            = regexp.MustCompile(`(?i)DOI:.*`)
	publicationRun     = regexp.MustCompile(`(?i)Received:.*?Published:.*`)
	labeledDate        = regexp.MustCompile(`(?i)\b\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}`)

	headingNoise = regexp.MustCompile(`<[^>]+>|[*_~` + "`" + `#\d.\s]`)
)

// Normalize 将任意来源的文档修正为满足不变量的规范形式
// 幂等：对已规范化的文档再执行一次得到相同结果
func (n *Normalizer) Normalize(doc *Document, originalText, filename string) *Document {
	if doc == nil {
		doc = &Document{}
	}

	if filename == "" {
		filename = "document"
	}

	if strings.TrimSpace(doc.Title.Text) == "" {
		base := strings.TrimSuffix(filename, filepath.Ext(filename))
		if base == "" {
			base = "Untitled Document"
		}
		doc.Title.Text = base
	}

	// 作者与单位：仅在尚未解析出单位时才拆分原始作者文本
	if len(doc.Affiliations) == 0 {
		authors, affiliations := parseAuthorsAndAffiliations(doc.Authors.Text)
		doc.Authors.Text = authors
		doc.Affiliations = affiliations
	}
	renumberAffiliations(doc.Affiliations)

	if doc.Abstract.Heading == "" {
		doc.Abstract.Heading = "ABSTRACT"
	}
	doc.Abstract.Content = cleanAbstract(doc.Abstract.Content)

	if doc.Keywords.Heading == "" {
		doc.Keywords.Heading = "Keywords"
	}

	if doc.Sections == nil {
		doc.Sections = []Section{}
	}
	for i := range doc.Sections {
		normalizeSection(&doc.Sections[i])
	}

	if doc.References.Heading == "" {
		doc.References.Heading = "REFERENCES"
	}
	doc.References.Entries = normalizeReferences(doc.References.Entries)

	// 最后一个章节的正文里可能重复出现参考文献块，从标题处截断
	if len(doc.Sections) > 0 && len(doc.References.Entries) > 0 {
		last := &doc.Sections[len(doc.Sections)-1]
		idx := strings.Index(strings.ToLower(last.Content), strings.ToLower(doc.References.Heading))
		if idx != -1 {
			last.Content = strings.TrimSpace(last.Content[:idx])
		}
	}

	doc.Metadata.OriginalFilename = filename
	if doc.Metadata.WordCount == 0 {
		doc.Metadata.WordCount = WordCount(originalText)
	}
	doc.Metadata.PageCount = PageCount(doc.Metadata.WordCount)
	if doc.Metadata.DocumentType == "" {
		doc.Metadata.DocumentType = "research_paper"
	}
	doc.Metadata.SectionCount = len(doc.Sections)

	return doc
}

// normalizeSection 保证 {heading, content, type, subsections} 四个字段都有合法值
// 并去掉正文开头重复出现的标题行
func normalizeSection(sec *Section) {
	if sec.Heading == "" {
		sec.Heading = "Untitled Section"
	}
	if sec.Type == "" {
		sec.Type = TypeOther
	}
	if sec.Subsections == nil {
		sec.Subsections = []Subsection{}
	}

	lines := strings.Split(strings.TrimSpace(sec.Content), "\n")
	if len(lines) > 0 && normalizeHeadingText(lines[0]) == normalizeHeadingText(sec.Heading) && normalizeHeadingText(sec.Heading) != "" {
		sec.Content = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	} else {
		sec.Content = strings.TrimSpace(sec.Content)
	}
}

// normalizeHeadingText 去掉标记、编号和空白后的小写形式，用于标题比较
func normalizeHeadingText(s string) string {
	return strings.ToLower(headingNoise.ReplaceAllString(s, ""))
}

// normalizeReferences 过滤过短条目并保证编号为从 1 开始的连续序列
func normalizeReferences(entries []Reference) []Reference {
	out := make([]Reference, 0, len(entries))
	for _, ref := range entries {
		text := strings.TrimSpace(ref.Text)
		if len(text) <= 10 {
			continue
		}
		out = append(out, Reference{Number: len(out) + 1, Text: text})
	}
	return out
}

func renumberAffiliations(affiliations []Affiliation) {
	for i := range affiliations {
		affiliations[i].Number = i + 1
	}
}

// parseAuthorsAndAffiliations 把原始作者文本拆为作者行与单位行
// 遇到摘要或长正文行即停止，单位去重后连续编号
func parseAuthorsAndAffiliations(authorText string) (string, []Affiliation) {
	if authorText == "" {
		return "", nil
	}

	// 已经是单行的作者串（规范化过的形式）原样保留
	if !strings.Contains(authorText, "\n") && !affiliationKeyword.MatchString(authorText) {
		return strings.TrimSpace(authorText), nil
	}

	var authorLines, affiliationLines []string
	seen := make(map[string]bool)

	for _, raw := range strings.Split(authorText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "abstract") || strings.HasPrefix(lower, "keywords") {
			break
		}
		if len(line) > 150 && strings.Contains(line, " ") {
			break
		}

		if affiliationKeyword.MatchString(line) {
			if !seen[line] {
				seen[line] = true
				affiliationLines = append(affiliationLines, line)
			}
		} else if len(line) < 150 {
			authorLines = append(authorLines, line)
		}
	}

	authors := strings.TrimSuffix(strings.Join(authorLines, ", "), ",")
	affiliations := make([]Affiliation, 0, len(affiliationLines))
	for i, text := range affiliationLines {
		affiliations = append(affiliations, Affiliation{Number: i + 1, Text: text})
	}
	return strings.TrimSpace(authors), affiliations
}

// cleanAbstract 去掉混入摘要的 DOI、收稿日期等元数据行
// 清理后内容过短视为无效摘要
func cleanAbstract(content string) string {
	if content == "" {
		return ""
	}

	cleaned := content
	cleaned = publicationRun.ReplaceAllString(cleaned, "")
	cleaned = doiLine.ReplaceAllString(cleaned, "")
	cleaned = labeledDate.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) < 100 {
		return ""
	}
	return cleaned
}
