package reflow

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// 富文本增强路径：来源提供 HTML 时按章节标题切片原始标记
// 与纯文本回退路径完全独立，切片失败时调用方退回纯文本内容

var captionPrefix = regexp.MustCompile(`(?i)^(table|figure|source)\b`)

// NormalizeTables 给没有 class 的表格补上期刊表格样式类
func NormalizeTables(markup string) string {
	// Go 正则不支持负向前瞻，手工扫描 <table 标签
	var sb strings.Builder
	lower := strings.ToLower(markup)
	i := 0
	for {
		idx := strings.Index(lower[i:], "<table")
		if idx < 0 {
			sb.WriteString(markup[i:])
			break
		}
		idx += i
		end := strings.IndexByte(markup[idx:], '>')
		if end < 0 {
			sb.WriteString(markup[i:])
			break
		}
		tag := markup[idx : idx+end+1]
		sb.WriteString(markup[i:idx])
		if strings.Contains(strings.ToLower(tag), "class=") {
			sb.WriteString(tag)
		} else {
			sb.WriteString(`<table class="journal-table"` + tag[len("<table"):])
		}
		i = idx + end + 1
	}
	return sb.String()
}

// SliceSections 把原始 HTML 按检测到的章节标题切成片段
// 显式的位置索引树遍历：定位每个标题对应的顶层节点，相邻标题之间即为该章节的标记
func SliceSections(originalHTML string, headings []string) map[string]string {
	out := make(map[string]string)
	if originalHTML == "" || len(headings) == 0 {
		return out
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="root">` + originalHTML + `</div>`))
	if err != nil {
		return out
	}
	rootSel := doc.Find("#root")
	if rootSel.Length() == 0 {
		return out
	}
	root := rootSel.Get(0)

	var topNodes []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		topNodes = append(topNodes, c)
	}

	norm := func(s string) string {
		return strings.ToLower(strings.TrimSpace(collapseWhitespace.ReplaceAllString(strings.ReplaceAll(s, " ", " "), " ")))
	}

	positions := make(map[string]int)
	candidates := rootSel.Find("h1,h2,h3,h4,h5,h6,p,strong,b")
	for _, heading := range headings {
		target := norm(heading)
		if target == "" {
			continue
		}
		var found *html.Node
		candidates.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if strings.Contains(norm(sel.Text()), target) {
				found = sel.Get(0)
				return false
			}
			return true
		})
		if found == nil {
			continue
		}
		// 上溯到 root 的直接子节点再取位置索引
		node := found
		for node != nil && node.Parent != root {
			node = node.Parent
		}
		if node == nil {
			continue
		}
		for i, tn := range topNodes {
			if tn == node {
				positions[heading] = i
				break
			}
		}
	}

	var ordered []string
	for _, h := range headings {
		if _, ok := positions[h]; ok {
			ordered = append(ordered, h)
		}
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if positions[ordered[j]] < positions[ordered[i]] {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	for i, h := range ordered {
		start := positions[h]
		end := len(topNodes)
		if i+1 < len(ordered) {
			end = positions[ordered[i+1]]
		}
		out[h] = NormalizeTables(renderNodes(topNodes[start:end]))
	}
	return out
}

// StripLeadingHeading 去掉切片开头重复出现的标题元素
func StripLeadingHeading(markup, heading string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="root">` + markup + `</div>`))
	if err != nil {
		return markup
	}
	root := doc.Find("#root")
	first := root.Children().First()
	if first.Length() == 0 {
		return markup
	}
	if normalizeForCompare(first.Text()) == normalizeForCompare(heading) && normalizeForCompare(heading) != "" {
		first.Remove()
	}
	return innerHTML(root)
}

// CleanBeforeTable 删除章节内第一个表格前面残留的零散短行
// 表格/图表标题和来源说明保留
func CleanBeforeTable(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="root">` + markup + `</div>`))
	if err != nil {
		return markup
	}
	root := doc.Find("#root")
	table := root.Find("table").First()
	if table.Length() == 0 {
		return markup
	}

	isShort := func(s string) bool {
		t := strings.TrimSpace(collapseWhitespace.ReplaceAllString(s, " "))
		if t == "" {
			return true
		}
		if captionPrefix.MatchString(t) {
			return false
		}
		return len(t) <= 50
	}

	// 上溯到顶层再向前清理兄弟节点
	node := table.Get(0)
	for node != nil && node.Parent != root.Get(0) {
		node = node.Parent
	}
	if node == nil {
		return markup
	}
	for prev := node.PrevSibling; prev != nil; {
		before := prev.PrevSibling
		if prev.Type == html.ElementNode || prev.Type == html.TextNode {
			if isShort(nodeText(prev)) {
				prev.Parent.RemoveChild(prev)
				prev = before
				continue
			}
		}
		break
	}

	return innerHTML(root)
}

var headingCompareNoise = regexp.MustCompile(`<[^>]+>|[*_~` + "`" + `#\d.\s]`)

func normalizeForCompare(s string) string {
	return strings.ToLower(headingCompareNoise.ReplaceAllString(s, ""))
}

func renderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		_ = html.Render(&buf, n)
	}
	return buf.String()
}

func innerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var buf bytes.Buffer
	for c := sel.Get(0).FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
