package structure

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/vanika12/go-paper-formatter/internal/document"
)

// 默认接入参数
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama3-70b-8192"
	DefaultTimeout = 30 * time.Second

	// 全文截断上限，约 3000-4000 个令牌
	maxTextLength = 15000
)

const systemPrompt = "You are a precise academic document analyzer. Extract information exactly as written, preserving all formatting and structure. Return only valid JSON."

const analyzePromptTemplate = `
You are an expert academic document analyzer specializing in research paper structure and content extraction. Your task is to analyze the following research paper text and extract structured information while preserving the original formatting and paragraph indentation.

CRITICAL REQUIREMENTS:
1. Preserve ALL original paragraph breaks and indentation exactly as they appear
2. Do NOT modify, summarize, or paraphrase the content - extract it as-is
3. Identify section boundaries accurately based on headings and content flow
4. Extract complete paragraphs, not fragments
5. Maintain the academic writing style and technical terminology

Please analyze and extract the following components in JSON format:

{
  "title": "Main paper title (extract exactly as written)",
  "authors": [
    {
      "name": "Full author name",
      "affiliation": "Institution/Department",
      "email": "email if provided",
      "corresponding": true/false
    }
  ],
  "abstract": {
    "heading": "Abstract heading as written",
    "content": "Complete abstract text with original formatting"
  },
  "keywords": {
    "heading": "Keywords heading as written",
    "content": "All keywords as a single string or array"
  },
  "sections": [
    {
      "heading": "Section heading exactly as written",
      "content": "Complete section content with original paragraph breaks",
      "type": "introduction|methodology|methods|results|discussion|conclusion|literature_review|other",
      "subsections": [
        {
          "heading": "Subsection heading if any",
          "content": "Subsection content"
        }
      ]
    }
  ],
  "references": {
    "heading": "References/Bibliography heading as written",
    "content": ["Individual reference 1", "Individual reference 2", "..."]
  },
  "metadata": {
    "wordCount": estimated_word_count,
    "pageCount": estimated_page_count,
    "documentType": "research_paper|conference_paper|journal_article|thesis|other",
    "sectionCount": number_of_main_sections
  }
}

Document text to analyze:
%s

Return ONLY the JSON object, no additional text or explanations.
`

// singleNewline 匹配段落内的孤立换行（需要后行断言，标准库正则不支持）
var singleNewline = regexp2.MustCompile(`(?<!\n)\n(?!\n)`, regexp2.None)

// Config Groq 接入配置
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// GroqService 基于 Groq 推理接口的结构分析服务
type GroqService struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGroqService 创建结构分析服务
func NewGroqService(cfg Config, logger *zap.Logger) (*GroqService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	// 去掉结尾斜杠，接口路径自带前导斜杠
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &GroqService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

// Analyze 分析论文全文并返回结构化文档
func (s *GroqService) Analyze(ctx context.Context, text string, filename string) (*document.Document, error) {
	truncated := text
	if len(truncated) > maxTextLength {
		truncated = truncated[:maxTextLength] + "..."
	}

	s.logger.Debug("开始结构分析",
		zap.String("filename", filename),
		zap.String("model", s.model),
		zap.Int("text_length", len(truncated)),
	)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(analyzePromptTemplate, truncated)},
		},
		Temperature: s.temperature,
		MaxTokens:   6000,
	})
	if err != nil {
		return nil, fmt.Errorf("structure analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}

	payload, err := CleanResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	doc, err := document.FromJSON([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode structure analysis response: %w", err)
	}

	ensureDocumentParagraphs(doc)
	doc.Provenance = document.ProvenanceAI

	s.logger.Debug("结构分析完成",
		zap.Int("sections", len(doc.Sections)),
		zap.Int("references", len(doc.References.Entries)),
	)
	return doc, nil
}

// CleanResponse 剥离围栏标记并截取最外层 JSON 对象
func CleanResponse(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrInvalidJSON
	}
	return cleaned[start : end+1], nil
}

// ensureDocumentParagraphs 孤立换行统一为空行分段
func ensureDocumentParagraphs(doc *document.Document) {
	doc.Abstract.Content = EnsureParagraphs(doc.Abstract.Content)
	for i := range doc.Sections {
		doc.Sections[i].Content = EnsureParagraphs(doc.Sections[i].Content)
	}
}

// EnsureParagraphs 段落间的单换行替换为双换行
func EnsureParagraphs(text string) string {
	if text == "" {
		return text
	}
	replaced, err := singleNewline.Replace(text, "\n\n", -1, -1)
	if err != nil {
		return text
	}
	return replaced
}
