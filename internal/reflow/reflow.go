package reflow

import (
	"regexp"
	"strings"
)

var (
	blankLineSplit = regexp.MustCompile(`\n\s*\n`)
	captionLine    = regexp.MustCompile(`(?i)^(Table|Figure)\s+\d+[:.]`)

	headingNumbering   = regexp.MustCompile(`^\d+(?:\.\d+)*\s*[-.)]?\s*`)
	collapseWhitespace = regexp.MustCompile(`\s+`)
	trailingPunct      = regexp.MustCompile(`[:.;,\-\s]+$`)
)

// headingKeywords 段落内残留标题的封闭关键词集合
// 用于纠正提取阶段把标题留在正文里的情况
var headingKeywords = map[string]bool{
	"conclusion":                     true,
	"conclusion and recommendation":  true,
	"conclusion and recommendations": true,
	"background study":               true,
	"literature review":              true,
	"material":                       true,
	"materials":                      true,
	"methods":                        true,
	"result":                         true,
	"results":                        true,
	"discussion":                     true,
	"findings":                       true,
	"recommendation":                 true,
	"recommendations":                true,
}

// Engine 内容重排引擎
// 无状态，同一输入总是产出同一片段序列
type Engine struct{}

// NewEngine 创建重排引擎
func NewEngine() *Engine {
	return &Engine{}
}

// Reflow 把一段散文转换为类型化片段序列
// 步骤顺序敏感：表格检测 → 标题行 → 引用 → 强调/公式 → 分段 → 标题纠正
func (e *Engine) Reflow(text string) []Fragment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var fragments []Fragment
	for _, block := range blankLineSplit.Split(text, -1) {
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}
		fragments = append(fragments, e.reflowBlock(trimmed)...)
	}
	return fragments
}

// reflowBlock 单个空行分隔块的处理
func (e *Engine) reflowBlock(block string) []Fragment {
	// 已经渲染过的块直接透传，保证重排幂等
	if raw := passthroughFragment(block); raw != nil {
		return []Fragment{*raw}
	}

	// 标题行从块里剥离成独立片段
	var fragments []Fragment
	var bodyLines []string
	for _, line := range strings.Split(block, "\n") {
		if m := captionLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			fragments = append(fragments, Fragment{
				Kind:        KindCaption,
				Text:        strings.TrimSpace(line),
				CaptionKind: strings.ToLower(m[1]),
			})
		} else {
			bodyLines = append(bodyLines, line)
		}
	}
	body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if body == "" {
		return fragments
	}

	if grid := detectGrid(body); grid != nil {
		fragments = append(fragments, Fragment{Kind: KindTable, Grid: grid})
		return fragments
	}

	text := applyInlineMarkup(formatCitations(body))

	// 正文里残留的结构性标题重新归类为子标题而不是段落
	if isHeadingLeak(StripTags(text)) {
		fragments = append(fragments, Fragment{Kind: KindHeading, Text: StripTags(text)})
		return fragments
	}

	fragments = append(fragments, Fragment{Kind: KindParagraph, Text: text})
	return fragments
}

// passthroughFragment 识别已是最终标记的块
func passthroughFragment(block string) *Fragment {
	switch {
	case strings.HasPrefix(block, "<table"):
		return &Fragment{Kind: KindTable, Raw: block}
	case strings.HasPrefix(block, `<div class="table-caption"`):
		return &Fragment{Kind: KindCaption, CaptionKind: "table", Raw: block}
	case strings.HasPrefix(block, `<div class="figure-caption"`):
		return &Fragment{Kind: KindCaption, CaptionKind: "figure", Raw: block}
	case strings.HasPrefix(block, "<div"):
		return &Fragment{Kind: KindParagraph, Raw: block}
	}
	return nil
}

// isHeadingLeak 去掉编号和标点后的小写文本精确命中关键词集合
func isHeadingLeak(plain string) bool {
	t := strings.TrimSpace(plain)
	if t == "" {
		return false
	}
	t = headingNumbering.ReplaceAllString(t, "")
	t = collapseWhitespace.ReplaceAllString(t, " ")
	t = trailingPunct.ReplaceAllString(t, "")
	return headingKeywords[strings.ToLower(t)]
}
