// Package ingest 源文件文本提取
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ErrNoText 文件中没有可提取的文本
var ErrNoText = errors.New("no text could be extracted from the document")

// Source 提取结果。HTML 为可选的富标记版本，仅部分来源能提供
type Source struct {
	Text      string
	HTML      string
	Filename  string
	WordCount int
}

// Extractor 按文件路径提取源文本
type Extractor interface {
	Extract(path string) (*Source, error)
}

// Reader 默认提取器，按扩展名分派
type Reader struct {
	logger *zap.Logger
}

// NewReader 创建文本提取器
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// Extract 提取文件文本
func (r *Reader) Extract(path string) (*Source, error) {
	filename := filepath.Base(path)

	var text string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = r.readPDF(path)
	default:
		text, err = r.readPlain(path)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	source := &Source{
		Text:      text,
		Filename:  filename,
		WordCount: len(strings.Fields(text)),
	}
	r.logger.Debug("提取源文件文本",
		zap.String("filename", filename),
		zap.Int("characters", len(text)),
		zap.Int("words", source.WordCount),
	)
	return source, nil
}

func (r *Reader) readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}
	return string(data), nil
}

func (r *Reader) readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to buffer PDF text: %w", err)
	}
	return buf.String(), nil
}
