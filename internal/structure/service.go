// Package structure 基于大语言模型的文档结构分析
package structure

import (
	"context"
	"errors"

	"github.com/vanika12/go-paper-formatter/internal/document"
)

// 结构分析错误
var (
	ErrMissingAPIKey = errors.New("structure analysis API key is missing or empty")
	ErrEmptyResponse = errors.New("no response from structure analysis API")
	ErrInvalidJSON   = errors.New("no JSON object found in response")
)

// Service 文档结构分析服务
type Service interface {
	// Analyze 分析论文全文并返回结构化文档
	Analyze(ctx context.Context, text string, filename string) (*document.Document, error)
}
