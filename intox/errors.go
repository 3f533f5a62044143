package intox

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage 图片为空或尺寸为 0
	ErrInvalidImage = errors.New("图片尺寸无效")
	// ErrInvalidBuffer 目标缓冲区长度小于 InputLen, 属于调用方错误
	ErrInvalidBuffer = errors.New("输入缓冲区长度不足")
	// ErrInvalidDistribution 概率分布长度不是 NumClasses, 或者不是合法的概率分布, 属于内部缺陷
	ErrInvalidDistribution = errors.New("概率分布非法")
	// ErrNotLoaded 模型未加载
	ErrNotLoaded = errors.New("模型未加载")
)

// ModelLoadError 模型加载失败, 模型字节缺失、损坏或与输入输出形状不匹配
type ModelLoadError struct {
	Err error
}

func (e *ModelLoadError) Error() string {
	if e == nil || e.Err == nil {
		return "模型加载失败"
	}
	return fmt.Sprintf("模型加载失败: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *ModelLoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DetectErrorKind 识别失败的类型
type DetectErrorKind int

const (
	// NotReady 模型未加载, 调用方需要先 Load
	NotReady DetectErrorKind = iota + 1
	// InferenceFailed 预处理、推理或后处理阶段失败
	InferenceFailed
)

func (k DetectErrorKind) String() string {
	switch k {
	case NotReady:
		return "not ready"
	case InferenceFailed:
		return "inference failed"
	default:
		return fmt.Sprintf("DetectErrorKind(%d)", int(k))
	}
}

// DetectError Detect 返回的错误, 原因可通过 errors.Is/As 获取
type DetectError struct {
	Kind DetectErrorKind
	Err  error
}

func (e *DetectError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DetectError) Unwrap() error {
	return e.Err
}

func notReady() error {
	return &DetectError{Kind: NotReady, Err: &ModelLoadError{Err: ErrNotLoaded}}
}

func inferenceFailed(err error) error {
	return &DetectError{Kind: InferenceFailed, Err: err}
}

// IsNotReady 是否因为模型未加载而失败
func IsNotReady(err error) bool {
	var de *DetectError
	return errors.As(err, &de) && de.Kind == NotReady
}

// IsInferenceFailed 是否在推理过程中失败
func IsInferenceFailed(err error) bool {
	var de *DetectError
	return errors.As(err, &de) && de.Kind == InferenceFailed
}
