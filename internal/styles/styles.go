// Package styles 固定的学术排版规范
// 页边距、字体、间距等是不可变策略，所有渲染器共享同一份常量
package styles

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vanika12/go-paper-formatter/internal/document"
)

// 组合 CSS 样式串的基础片段
const (
	fontFamilyTimes = "font-family: 'Times New Roman';"
	fontSize10      = "font-size: 10pt;"
	fontSize12      = "font-size: 12pt;"
	fontSize14      = "font-size: 14pt;"
	fontWeightBold  = "font-weight: bold;"
	alignCenter     = "text-align: center;"
	alignJustify    = "text-align: justify;"
	lineHeight1     = "line-height: 1.0;"
)

// Margins 页边距
type Margins struct {
	Top    string
	Bottom string
	Left   string
	Right  string
}

// FormatSpec 固定的页面与格式规范
type FormatSpec struct {
	PageSize         string
	Margins          Margins
	FontFamily       string
	FontSize         string
	LineSpacing      string
	ParagraphSpacing string
	HeaderDistance   string
	FooterDistance   string
	FooterText       string
}

// DefaultJournalIdentity 默认期刊页眉标识
func DefaultJournalIdentity() document.JournalIdentity {
	return document.JournalIdentity{
		Content: "INTERNATIONAL JOURNAL OF RESEARCH AND INNOVATION IN SOCIAL SCIENCE (IJRISS)",
		ISSN:    "ISSN No. 2454-6186",
		DOI:     "DOI: 10.47772/IJRISS",
		Volume:  "Volume IX Issue VIII August 2025",
	}
}

// Spec 返回固定格式规范
// 这些字面量必须与期刊模板完全一致，不从输入推断
func Spec() FormatSpec {
	return FormatSpec{
		PageSize: "A4",
		Margins: Margins{
			Top:    "0.76in",
			Bottom: "0.42in",
			Left:   "0.42in",
			Right:  "0.42in",
		},
		FontFamily:       "Times New Roman",
		FontSize:         "12pt",
		LineSpacing:      "1.0",
		ParagraphSpacing: "12pt",
		HeaderDistance:   "0.24in",
		FooterDistance:   "0.28in",
		FooterText:       "www.rsisinternational.org",
	}
}

// Resolver 把章节语义类型映射为标题呈现规则
type Resolver struct {
	spec FormatSpec
}

// NewResolver 创建样式解析器
func NewResolver() *Resolver {
	return &Resolver{spec: Spec()}
}

// Spec 返回注入渲染器的固定格式规范
func (r *Resolver) Spec() FormatSpec {
	return r.spec
}

// mainSections 接受主标题样式的类型集合
var mainSections = map[document.SectionType]bool{
	document.TypeIntroduction: true,
	document.TypeMethodology:  true,
	document.TypeMethods:      true,
	document.TypeResults:      true,
	document.TypeDiscussion:   true,
	document.TypeConclusion:   true,
	"abstract":                true,
	"references":              true,
}

// IsMainSection 主学术章节使用大号加粗全大写标题
func (r *Resolver) IsMainSection(t document.SectionType) bool {
	return mainSections[t]
}

// HeadingStyle 章节标题样式
func (r *Resolver) HeadingStyle(t document.SectionType) string {
	if r.IsMainSection(t) {
		return fontSize14 + " " + fontWeightBold + " text-transform: uppercase; " + fontFamilyTimes + " text-align: left; margin-top: 20pt; margin-bottom: 10pt;"
	}
	return fontSize12 + " " + fontWeightBold + " " + fontFamilyTimes + " text-align: left; margin-top: 12pt; margin-bottom: 6pt;"
}

// SubheadingStyle 子章节标题样式
func (r *Resolver) SubheadingStyle() string {
	return fontSize12 + " " + fontWeightBold + " " + fontFamilyTimes + " margin-top: 12pt; margin-bottom: 6pt;"
}

// ContentStyle 正文样式
func (r *Resolver) ContentStyle() string {
	return fontSize12 + " " + fontFamilyTimes + " " + lineHeight1 + " " + alignJustify + " margin-bottom: 12pt;"
}

// TitleStyle 论文标题样式
func (r *Resolver) TitleStyle() string {
	return "font-size: 18pt; " + fontWeightBold + " " + alignCenter + " " + fontFamilyTimes + " margin: 20pt 0; line-height: 1.2;"
}

// AuthorsStyle 作者行样式
func (r *Resolver) AuthorsStyle() string {
	return fontSize12 + " " + fontWeightBold + " " + alignCenter + " " + fontFamilyTimes + " margin: 10pt 0;"
}

// AffiliationStyle 单位行样式
func (r *Resolver) AffiliationStyle() string {
	return fontSize12 + " " + fontFamilyTimes + " " + alignCenter + " margin-bottom: 6pt;"
}

// HeaderStyle 页眉样式
func (r *Resolver) HeaderStyle() string {
	return alignCenter + " " + fontSize10 + " " + fontFamilyTimes + " " + fontWeightBold + " border-bottom: 1px solid #000; padding-bottom: 10pt; margin-bottom: 20pt;"
}

// FooterStyle 页脚样式
func (r *Resolver) FooterStyle() string {
	return fontSize10 + " " + fontFamilyTimes + " " + alignCenter + " border-top: 1px solid #000; padding-top: 5pt; margin-top: 5pt;"
}

// ReferenceStyle 参考文献条目样式（悬挂缩进）
func (r *Resolver) ReferenceStyle() string {
	return fontSize12 + " " + fontFamilyTimes + " " + lineHeight1 + " " + alignJustify + " margin-bottom: 6pt; text-indent: -0.5in; padding-left: 0.5in;"
}

// AbstractHeadingStyle 摘要标题与主章节标题同样式
func (r *Resolver) AbstractHeadingStyle() string {
	return r.HeadingStyle("abstract")
}

// KeywordsHeadingStyle 关键词标题样式（行内）
func (r *Resolver) KeywordsHeadingStyle() string {
	return fontSize12 + " " + fontWeightBold + " " + fontFamilyTimes + " display: inline; margin-right: 5pt;"
}

// KeywordsContentStyle 关键词内容样式（行内斜体）
func (r *Resolver) KeywordsContentStyle() string {
	return fontSize12 + " " + fontFamilyTimes + " font-style: italic; display: inline;"
}

// PublicationInfoStyle 出版信息样式
func (r *Resolver) PublicationInfoStyle() string {
	return fontSize12 + " " + fontFamilyTimes + " " + alignCenter + " margin: 15pt 0;"
}

// TitleCase 次级标题使用标题大小写
// Caser 带有内部转换状态，不能跨 goroutine 复用，每次调用新建
func (r *Resolver) TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
