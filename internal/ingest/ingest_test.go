package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestExtractPlainText 纯文本文件原样提取并统计词数
func TestExtractPlainText(t *testing.T) {
	path := writeTemp(t, "paper.txt", "A short research paper body with several words.")

	source, err := NewReader(nil).Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "A short research paper body with several words.", source.Text)
	assert.Equal(t, "paper.txt", source.Filename)
	assert.Equal(t, 8, source.WordCount)
	assert.Empty(t, source.HTML)
}

// TestExtractUnknownExtension 未知扩展名按纯文本处理
func TestExtractUnknownExtension(t *testing.T) {
	path := writeTemp(t, "notes.md", "# Heading\n\nSome markdown body.")

	source, err := NewReader(nil).Extract(path)
	require.NoError(t, err)
	assert.Contains(t, source.Text, "Some markdown body.")
}

// TestExtractEmptyFile 空文件报无文本错误
func TestExtractEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.txt", "   \n\t\n")

	_, err := NewReader(nil).Extract(path)
	assert.ErrorIs(t, err, ErrNoText)
}

// TestExtractMissingFile 不存在的文件返回读取错误
func TestExtractMissingFile(t *testing.T) {
	_, err := NewReader(nil).Extract(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read source file")
}

// TestExtractBrokenPDF 损坏的 PDF 报打开错误
func TestExtractBrokenPDF(t *testing.T) {
	path := writeTemp(t, "broken.pdf", "definitely not a pdf")

	_, err := NewReader(nil).Extract(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open PDF")
}
