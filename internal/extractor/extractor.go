// Package extractor 实现确定性的回退解析器
// 当 AI 结构化不可用或返回无法解析的结果时，从原始文本恢复文档结构
package extractor

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vanika12/go-paper-formatter/internal/document"
)

const (
	titleScanLines  = 10
	authorScanLines = 15
)

// Extractor 基于启发式的结构提取器
// 绝不失败：无法判定时返回字段为空但类型完整的文档
type Extractor struct {
	identity document.JournalIdentity
	footer   string
	logger   *zap.Logger
}

// New 创建回退解析器，期刊标识属于注入的配置
func New(identity document.JournalIdentity, footer string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{identity: identity, footer: footer, logger: logger}
}

// Extract 从原始文本恢复尽力而为的文档结构
func (e *Extractor) Extract(text, filename string) *document.Document {
	lines := strings.Split(text, "\n")

	title := e.extractTitle(lines, filename)
	authors := e.extractAuthors(lines)
	publicationInfo := e.extractPublicationInfo(text)
	abstract := e.extractAbstract(text)
	keywords := e.extractKeywords(text)
	sections, inReferences := e.scanSections(lines, title, authors)
	references := e.extractReferences(text, inReferences)

	words := document.WordCount(text)

	doc := &document.Document{
		Title:           document.StyledText{Text: title},
		Authors:         document.StyledText{Text: authors},
		Abstract:        abstract,
		Keywords:        keywords,
		Sections:        sections,
		References:      references,
		PublicationInfo: publicationInfo,
		Header:          e.identity,
		FooterText:      e.footer,
		Provenance:      document.ProvenanceFallback,
		Metadata: document.Metadata{
			WordCount:        words,
			PageCount:        document.PageCount(words),
			DocumentType:     "research_paper",
			SectionCount:     len(sections),
			OriginalFilename: filename,
		},
	}

	e.logger.Debug("fallback extraction completed",
		zap.String("title", title),
		zap.Int("sections", len(sections)),
		zap.Int("references", len(references.Entries)))

	return doc
}

// extractTitle 在前几行里找第一个长度合适且不是元数据的行
// 找不到时退回到去掉扩展名的文件名
func (e *Extractor) extractTitle(lines []string, filename string) string {
	for i := 0; i < len(lines) && i < titleScanLines; i++ {
		line := lines[i]
		if len(line) <= 10 || len(line) >= 200 {
			continue
		}
		if metadataLinePattern.MatchString(line) || pureDigitsPattern.MatchString(line) {
			continue
		}
		if strings.Contains(line, "@") || strings.HasPrefix(line, "http") {
			continue
		}
		return line
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// extractAuthors 收集前几行里像人名或机构的行，保持顺序去重
func (e *Extractor) extractAuthors(lines []string) string {
	var sb strings.Builder
	for i := 0; i < len(lines) && i < authorScanLines; i++ {
		line := lines[i]
		if fullNamePattern.MatchString(line) ||
			initialNamePattern.MatchString(line) ||
			institutionPattern.MatchString(line) {
			if !strings.Contains(sb.String(), line) {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(line)
			}
		}
	}
	return sb.String()
}

// extractPublicationInfo 单次正则扫描 DOI 与三个日期标签
// 四个信号任一命中才返回非空
func (e *Extractor) extractPublicationInfo(text string) *document.PublicationInfo {
	var doi string
	for _, line := range strings.Split(text, "\n") {
		if m := doiPattern.FindStringSubmatch(line); m != nil {
			doi = m[2]
			break
		}
		if m := doiOrgPattern.FindStringSubmatch(line); m != nil {
			doi = m[1]
			break
		}
	}

	var received, accepted, published string
	if m := receivedPattern.FindStringSubmatch(text); m != nil {
		received = strings.TrimSpace(m[1])
	}
	if m := acceptedPattern.FindStringSubmatch(text); m != nil {
		accepted = strings.TrimSpace(m[1])
	}
	if m := publishedPattern.FindStringSubmatch(text); m != nil {
		published = strings.TrimSpace(m[1])
	}

	if doi == "" && received == "" && accepted == "" && published == "" {
		return nil
	}
	return &document.PublicationInfo{DOI: doi, Received: received, Accepted: accepted, Published: published}
}

// extractAbstract 取 ABSTRACT 一词到 keywords/introduction 之间的文本
func (e *Extractor) extractAbstract(text string) document.LabeledContent {
	out := document.LabeledContent{Heading: "ABSTRACT"}
	loc := abstractPattern.FindStringIndex(text)
	if loc == nil {
		return out
	}

	after := text[loc[1]:]
	if end := afterAbstractEnd.FindStringIndex(after); end != nil {
		out.Content = strings.TrimSpace(after[:end[0]])
	} else {
		out.Content = strings.TrimSpace(after)
	}
	return out
}

// extractKeywords 匹配 keywords: 行，内容是该行的剩余部分
func (e *Extractor) extractKeywords(text string) document.LabeledContent {
	out := document.LabeledContent{Heading: "Keywords"}
	if m := keywordsLinePattern.FindStringSubmatch(text); m != nil {
		out.Content = strings.TrimSpace(m[2])
	}
	return out
}

// isTableLine 表格类行：含竖线分隔或表格型数字列
func isTableLine(line string) bool {
	return strings.Contains(line, "|") || tabularNumberPattern.MatchString(line)
}

// isHeadingCandidate 标题候选判定
// 已知章节名前缀、数字编号标题或短的全大写行
func isHeadingCandidate(line string) bool {
	if isTableLine(line) {
		return false
	}
	if len(line) >= 100 || len(line) <= 3 {
		return false
	}
	if knownSectionPattern.MatchString(line) {
		return true
	}
	if numberedHeading.MatchString(line) {
		return true
	}
	if allCapsHeading.MatchString(line) {
		return true
	}
	// 短的全大写行（可能误报缩写词，见设计文档）
	return line == strings.ToUpper(line) && len(line) > 3 && len(line) < 50 && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}

// scanSections 两状态行扫描：in-body / in-references
// 标题候选冲刷当前章节并开启新章节；进入参考文献后停止建节
func (e *Extractor) scanSections(lines []string, title, authors string) ([]document.Section, bool) {
	sections := []document.Section{}
	var current *document.Section
	var contentBuffer []string
	inReferences := false

	flush := func() {
		if current != nil && len(contentBuffer) > 0 {
			current.Content = strings.TrimSpace(strings.Join(contentBuffer, "\n"))
			sections = append(sections, *current)
		}
		current = nil
		contentBuffer = nil
	}

	for i, rawLine := range lines {
		line := strings.TrimSpace(rawLine)

		// 跳过文首的标题/作者区
		if i < titleScanLines && (line == title || line == authors) {
			continue
		}

		if referencesPattern.MatchString(line) {
			inReferences = true
			flush()
			continue
		}
		if inReferences {
			continue
		}

		// 摘要/关键词区单独提取，不形成章节
		if frontMatterHeading.MatchString(line) {
			flush()
			continue
		}

		if isHeadingCandidate(line) {
			flush()
			current = &document.Section{
				Heading:     line,
				Type:        document.DetectSectionType(line),
				Subsections: []document.Subsection{},
			}
			continue
		}

		if current != nil {
			// 保留原始行和换行，不做修剪
			contentBuffer = append(contentBuffer, rawLine)
		}
	}
	flush()

	return sections, inReferences
}

// extractReferences 参考文献区的所有后续行，去掉标题行本身
// 保留修剪后长度大于 10 的行；编号由规范化阶段统一分配
func (e *Extractor) extractReferences(text string, inReferences bool) document.References {
	out := document.References{Heading: "REFERENCES", Entries: []document.Reference{}}
	if !inReferences {
		return out
	}

	loc := findReferencesStart(text)
	if loc < 0 {
		return out
	}

	refLines := strings.Split(text[loc:], "\n")
	if len(refLines) > 0 {
		refLines = refLines[1:] // 跳过标题行
	}
	for _, line := range refLines {
		line = strings.TrimSpace(line)
		if len(line) > 10 {
			out.Entries = append(out.Entries, document.Reference{Text: line})
		}
	}
	return out
}

// findReferencesStart 返回参考文献标题行在全文中的字节偏移
func findReferencesStart(text string) int {
	for idx := 0; idx < len(text); {
		lineEnd := strings.IndexByte(text[idx:], '\n')
		var line string
		if lineEnd < 0 {
			line = text[idx:]
			lineEnd = len(text) - idx
		} else {
			line = text[idx : idx+lineEnd]
		}
		if referencesPattern.MatchString(strings.TrimSpace(line)) {
			return idx
		}
		idx += lineEnd + 1
	}
	return -1
}
