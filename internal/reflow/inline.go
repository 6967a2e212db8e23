package reflow

import (
	"regexp"
	"strings"
)

// 行内标记是一个封闭的、不可扩展的子集
// 不保证嵌套或转义分隔符的处理
var (
	parentheticalCitation = regexp.MustCompile(`\(([^)]+),\s*(\d{4})\)`)
	etAlCitation          = regexp.MustCompile(`([A-Z][a-z]+\s+et\s+al\.,?\s*\d{4})`)
	numericCitation       = regexp.MustCompile(`\[(\d+)\]`)

	boldMarkup     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkup   = regexp.MustCompile(`\*(.*?)\*`)
	blockEquation  = regexp.MustCompile(`\$\$(.*?)\$\$`)
	inlineEquation = regexp.MustCompile(`\$(.*?)\$`)
	leadingSpace   = regexp.MustCompile(`(?m)^[ \t]+`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// formatCitations 把各种引用写法统一为方括号引用标记
func formatCitations(content string) string {
	if content == "" {
		return ""
	}
	content = parentheticalCitation.ReplaceAllString(content, "[$1, $2]")
	content = etAlCitation.ReplaceAllString(content, "[$1]")
	return content
}

// applyInlineMarkup 强调、公式与数字引用映射为呈现标记
func applyInlineMarkup(content string) string {
	if content == "" {
		return ""
	}
	content = leadingSpace.ReplaceAllStringFunc(content, func(m string) string {
		return strings.Repeat("&nbsp;", len(m))
	})
	content = numericCitation.ReplaceAllString(content, "<sup>$1</sup>")
	content = boldMarkup.ReplaceAllString(content, "<strong>$1</strong>")
	content = italicMarkup.ReplaceAllString(content, "<em>$1</em>")
	content = blockEquation.ReplaceAllString(content, `<div class="equation">$1</div>`)
	content = inlineEquation.ReplaceAllString(content, `<span class="inline-equation">$1</span>`)
	return content
}

// StripTags 去掉全部行内标记，返回纯文本
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// EscapeHTML 转义单元格等原始文本
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
