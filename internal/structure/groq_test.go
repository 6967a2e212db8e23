package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

// TestNewGroqService 接入参数默认值与必填校验
func TestNewGroqService(t *testing.T) {
	t.Run("缺少密钥", func(t *testing.T) {
		_, err := NewGroqService(Config{}, zap.NewNop())
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("默认参数", func(t *testing.T) {
		svc, err := NewGroqService(Config{APIKey: "gsk_test"}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.model)
		assert.Equal(t, float32(0.1), svc.temperature)
		assert.Equal(t, DefaultTimeout, svc.timeout)
	})

	t.Run("显式参数", func(t *testing.T) {
		svc, err := NewGroqService(Config{
			APIKey:      "gsk_test",
			Model:       "llama3-8b-8192",
			Temperature: 0.5,
			Timeout:     5 * time.Second,
		}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "llama3-8b-8192", svc.model)
		assert.Equal(t, float32(0.5), svc.temperature)
		assert.Equal(t, 5*time.Second, svc.timeout)
	})
}

// TestCleanResponse 剥离围栏并截取最外层 JSON 对象
func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"裸JSON", `{"title": "x"}`, `{"title": "x"}`},
		{"json围栏", "```json\n{\"title\": \"x\"}\n```", `{"title": "x"}`},
		{"裸围栏", "```\n{\"title\": \"x\"}\n```", `{"title": "x"}`},
		{"前后散文", `Here is the result: {"title": "x"} Hope this helps!`, `{"title": "x"}`},
		{"嵌套对象", `{"a": {"b": 1}}`, `{"a": {"b": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCleanResponseInvalid 没有对象可截取时报错
func TestCleanResponseInvalid(t *testing.T) {
	for _, raw := range []string{"", "no json here", "```json\n```", "} {"} {
		_, err := CleanResponse(raw)
		assert.ErrorIs(t, err, ErrInvalidJSON, "raw %q", raw)
	}
}

// TestEnsureParagraphs 孤立换行统一为空行分段
func TestEnsureParagraphs(t *testing.T) {
	t.Run("单换行替换为双换行", func(t *testing.T) {
		assert.Equal(t, "one\n\ntwo", EnsureParagraphs("one\ntwo"))
	})

	t.Run("已有空行保持不变", func(t *testing.T) {
		assert.Equal(t, "one\n\ntwo", EnsureParagraphs("one\n\ntwo"))
	})

	t.Run("混合换行", func(t *testing.T) {
		assert.Equal(t, "a\n\nb\n\nc", EnsureParagraphs("a\nb\n\nc"))
	})

	t.Run("空字符串", func(t *testing.T) {
		assert.Equal(t, "", EnsureParagraphs(""))
	})
}
