//go:build purego

package onnxpurego

import (
	"fmt"
	"sync"

	ort "github.com/getcharzp/onnxruntime_purego"
)

var (
	engine    *ort.Engine
	engineErr error
	once      sync.Once
)

// NewOpener 加载 onnxruntime 动态库并返回会话创建函数, 动态库在进程内只加载一次
//
// # Params:
//
//	libPath: onnxruntime.dll (或 .so, .dylib) 的路径
func NewOpener(libPath string) (Opener, error) {
	if libPath == "" {
		return nil, fmt.Errorf("OnnxRuntimeLibPath 不能为空")
	}
	once.Do(func() {
		engine, engineErr = ort.NewEngine(libPath)
	})
	if engineErr != nil {
		return nil, fmt.Errorf("加载 onnxruntime 失败: %w", engineErr)
	}
	return func(modelPath string) (*ort.Session, error) {
		return engine.NewSession(modelPath, nil)
	}, nil
}
