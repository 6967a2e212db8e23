package pipeline

import (
	"errors"
	"fmt"
)

// 流水线错误
var (
	ErrEmptySource       = errors.New("no text provided for processing")
	ErrSourceTooShort    = errors.New("document text is too short to format")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrPreviewBinary     = errors.New("preview is only available for text formats")
	ErrNilStructure      = errors.New("structure service returned no document")
)

// 错误代码
const (
	CodeEmptySource       = "EMPTY_SOURCE"
	CodeSourceTooShort    = "SOURCE_TOO_SHORT"
	CodeStructureFailed   = "STRUCTURE_FAILED"
	CodeRenderFailed      = "RENDER_FAILED"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// 流水线阶段
const (
	StageValidate  = "validate"
	StageStructure = "structure"
	StageNormalize = "normalize"
	StageRender    = "render"
)

// PipelineError 流水线错误
type PipelineError struct {
	Code    string // 错误代码
	Message string // 错误消息
	Cause   error  // 原因
	Stage   string // 发生错误的阶段
}

// Error 实现error接口
func (e *PipelineError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s at stage '%s'", e.Code, e.Message, e.Stage)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError 创建流水线错误
func NewPipelineError(code, message, stage string, cause error) *PipelineError {
	return &PipelineError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Stage:   stage,
	}
}

// WrapError 包装错误并添加上下文
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
