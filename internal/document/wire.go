package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// wireDocument AI 结构化输出的宽松线格式
// 每个字段的形状都不可靠，解码时逐字段容错
type wireDocument struct {
	Title           json.RawMessage `json:"title"`
	Authors         json.RawMessage `json:"authors"`
	Abstract        json.RawMessage `json:"abstract"`
	Keywords        json.RawMessage `json:"keywords"`
	Sections        json.RawMessage `json:"sections"`
	References      json.RawMessage `json:"references"`
	Metadata        json.RawMessage `json:"metadata"`
	PublicationInfo json.RawMessage `json:"publicationInfo"`
	Header          json.RawMessage `json:"header"`
	OriginalHTML    string          `json:"originalHtml"`
}

type wireAuthor struct {
	Name          string `json:"name"`
	Affiliation   string `json:"affiliation"`
	Email         string `json:"email"`
	Corresponding bool   `json:"corresponding"`
}

type wireLabeled struct {
	Heading string          `json:"heading"`
	Content json.RawMessage `json:"content"`
}

type wireSection struct {
	Heading     string          `json:"heading"`
	Content     string          `json:"content"`
	Type        string          `json:"type"`
	Subsections json.RawMessage `json:"subsections"`
}

// FromJSON 将 AI 返回的 JSON 解码为 Document
// 任何字段形状不符都用类型化默认值代替，绝不因单个字段失败
func FromJSON(data []byte) (*Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode structured response: %w", err)
	}

	doc := &Document{}
	doc.Title = decodeStyledText(w.Title)
	doc.Authors, doc.Affiliations = decodeAuthors(w.Authors)
	doc.Abstract = decodeLabeled(w.Abstract, "ABSTRACT")
	doc.Keywords = decodeLabeled(w.Keywords, "Keywords")
	doc.Sections = decodeSections(w.Sections)
	doc.References = decodeReferences(w.References)
	doc.Metadata = decodeMetadata(w.Metadata)
	doc.PublicationInfo = decodePublicationInfo(w.PublicationInfo)
	doc.OriginalHTML = w.OriginalHTML

	if len(w.Header) > 0 {
		_ = json.Unmarshal(w.Header, &doc.Header)
	}

	return doc, nil
}

// decodeStyledText 接受 "text" 或 {"text": "...", "style": "..."}
func decodeStyledText(raw json.RawMessage) StyledText {
	if len(raw) == 0 {
		return StyledText{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return StyledText{Text: s}
	}
	var st StyledText
	if err := json.Unmarshal(raw, &st); err == nil {
		return st
	}
	return StyledText{}
}

// decodeAuthors 接受字符串、{text} 或作者对象数组
// 数组形式会为带单位的作者附加上标编号，通信作者附加星号
func decodeAuthors(raw json.RawMessage) (StyledText, []Affiliation) {
	if len(raw) == 0 {
		return StyledText{}, nil
	}

	var list []wireAuthor
	if err := json.Unmarshal(raw, &list); err == nil {
		var parts []string
		var affiliations []Affiliation
		seen := make(map[string]int)
		for i, a := range list {
			name := a.Name
			if name == "" {
				name = fmt.Sprintf("Author %d", i+1)
			}
			if a.Affiliation != "" {
				num, ok := seen[a.Affiliation]
				if !ok {
					num = len(affiliations) + 1
					seen[a.Affiliation] = num
					affiliations = append(affiliations, Affiliation{Number: num, Text: a.Affiliation})
				}
				name += fmt.Sprintf("<sup>%d</sup>", num)
			}
			if a.Corresponding {
				name += "*"
			}
			parts = append(parts, name)
		}
		return StyledText{Text: strings.Join(parts, ", ")}, affiliations
	}

	return decodeStyledText(raw), nil
}

// decodeLabeled 接受 {heading, content}，content 可以是字符串或字符串数组
func decodeLabeled(raw json.RawMessage, defaultHeading string) LabeledContent {
	out := LabeledContent{Heading: defaultHeading}
	if len(raw) == 0 {
		return out
	}
	var lw wireLabeled
	if err := json.Unmarshal(raw, &lw); err != nil {
		// 整个字段就是一个字符串
		var s string
		if json.Unmarshal(raw, &s) == nil {
			out.Content = s
		}
		return out
	}
	if lw.Heading != "" {
		out.Heading = lw.Heading
	}
	out.Content = coerceText(lw.Content, ", ")
	return out
}

func decodeSections(raw json.RawMessage) []Section {
	if len(raw) == 0 {
		return nil
	}
	var list []wireSection
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	sections := make([]Section, 0, len(list))
	for _, ws := range list {
		sec := Section{
			Heading: ws.Heading,
			Content: ws.Content,
			Type:    SectionType(strings.ToLower(ws.Type)),
		}
		var subs []Subsection
		if len(ws.Subsections) > 0 {
			_ = json.Unmarshal(ws.Subsections, &subs)
		}
		sec.Subsections = subs
		sections = append(sections, sec)
	}
	return sections
}

// decodeReferences 接受 {heading, content}、字符串数组或单个字符串
// 条目编号在规范化时统一重排，这里只收集文本
func decodeReferences(raw json.RawMessage) References {
	out := References{Heading: "REFERENCES"}
	if len(raw) == 0 {
		return out
	}

	var lw wireLabeled
	content := raw
	if err := json.Unmarshal(raw, &lw); err == nil && len(lw.Content) > 0 {
		if lw.Heading != "" {
			out.Heading = lw.Heading
		}
		content = lw.Content
	}

	var texts []string
	if err := json.Unmarshal(content, &texts); err != nil {
		var entries []Reference
		if err := json.Unmarshal(content, &entries); err == nil {
			out.Entries = entries
			return out
		}
		var s string
		if json.Unmarshal(content, &s) == nil {
			texts = splitReferenceBlock(s)
		}
	}
	for _, t := range texts {
		out.Entries = append(out.Entries, Reference{Text: t})
	}
	return out
}

// splitReferenceBlock 将整段参考文献文本按换行或编号拆条
func splitReferenceBlock(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := referenceSplitter.Split(s, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > 10 {
			out = append(out, p)
		}
	}
	return out
}

func decodeMetadata(raw json.RawMessage) Metadata {
	var m Metadata
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}
	return m
}

func decodePublicationInfo(raw json.RawMessage) *PublicationInfo {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var pi PublicationInfo
	if err := json.Unmarshal(raw, &pi); err != nil {
		return nil
	}
	if pi.DOI == "" && pi.Received == "" && pi.Accepted == "" && pi.Published == "" {
		return nil
	}
	return &pi
}

// coerceText 字符串或字符串数组统一为单个字符串
func coerceText(raw json.RawMessage, sep string) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, sep)
	}
	return ""
}
