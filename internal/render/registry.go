package render

import (
	"fmt"
	"strings"
	"sync"
)

// Registry 渲染器注册表
// 不支持的格式名在任何渲染工作开始前就被拒绝
type Registry struct {
	mu        sync.RWMutex
	renderers map[Format]Renderer
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[Format]Renderer)}
}

// Register 注册渲染器，重复注册同一格式是错误
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("renderer is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	format := renderer.Format()
	if _, exists := r.renderers[format]; exists {
		return fmt.Errorf("renderer already registered for format: %s", format)
	}
	r.renderers[format] = renderer
	return nil
}

// Get 按格式名查找渲染器
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[Format(strings.ToLower(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported export format: %s", name)
	}
	return renderer, nil
}

// Formats 返回全部已注册格式
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.renderers))
	for f := range r.renderers {
		formats = append(formats, f)
	}
	return formats
}
