package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/getcharzp/go-drunkguard/intox"
)

// HintedError 带有修复提示的错误
type HintedError struct {
	Err  error
	Hint string
}

func (h *HintedError) Error() string { return h.Err.Error() }
func (h *HintedError) Unwrap() error { return h.Err }

// hintWrap 根据错误类型附加提示
func hintWrap(err error) error {
	if err == nil {
		return nil
	}
	var loadErr *intox.ModelLoadError
	var hint string
	switch {
	case errors.Is(err, fs.ErrNotExist):
		hint = "检查 [model] path 或 DRUNKGUARD_MODEL_PATH 是否指向模型文件。"
	case errors.Is(err, intox.ErrInvalidImage):
		hint = "图片为空或尺寸为 0, 请重新拍摄。"
	case errors.As(err, &loadErr):
		hint = "检查模型格式与 [model] backend、input_name、output_name 是否一致, 以及 runtime_lib 路径。"
	default:
		return err
	}
	return &HintedError{Err: err, Hint: hint}
}

// errModelFile 读取模型文件失败
func errModelFile(path string, err error) error {
	return hintWrap(fmt.Errorf("读取模型文件 %s 失败: %w", path, err))
}
