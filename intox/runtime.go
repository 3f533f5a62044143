package intox

import (
	"errors"
	"fmt"
)

// Session 已加载的模型, 持有预分配的输入输出缓冲区
//
// Input 和 Output 返回的切片在 Session 存活期间保持不变, Run 读取 Input 并覆盖 Output。
type Session interface {
	Input() []float32
	Output() []float32
	Run() error
	Destroy() error
}

// Backend 由模型字节创建 Session, 例如 ONNX Runtime 或 TFLite
type Backend interface {
	NewSession(modelData []byte) (Session, error)
}

// BackendFunc 函数形式的 Backend
type BackendFunc func(modelData []byte) (Session, error)

// NewSession implements Backend.
func (f BackendFunc) NewSession(modelData []byte) (Session, error) {
	return f(modelData)
}

// Runtime 模型运行时, 状态只有 未加载 / 已加载 两种
//
// 输入输出缓冲区在 Load 时分配并在多次推理间复用, Runtime 不是并发安全的。
type Runtime struct {
	backend Backend
	session Session
}

// NewRuntime 创建未加载状态的运行时
func NewRuntime(backend Backend) *Runtime {
	return &Runtime{backend: backend}
}

// Load 加载模型, 已加载时先释放旧模型
//
// 失败时返回 *ModelLoadError, 运行时保持未加载状态。
//
// # Params:
//
//	modelData: 模型字节
func (rt *Runtime) Load(modelData []byte) error {
	if err := rt.Unload(); err != nil {
		return &ModelLoadError{Err: fmt.Errorf("释放旧模型失败: %w", err)}
	}
	if rt.backend == nil {
		return &ModelLoadError{Err: errors.New("未设置推理后端")}
	}
	if len(modelData) == 0 {
		return &ModelLoadError{Err: errors.New("模型数据为空")}
	}

	session, err := rt.backend.NewSession(modelData)
	if err != nil {
		return &ModelLoadError{Err: err}
	}
	if session == nil {
		return &ModelLoadError{Err: errors.New("推理后端返回空会话")}
	}

	if n := len(session.Input()); n != InputLen {
		_ = session.Destroy()
		return &ModelLoadError{Err: fmt.Errorf("输入长度不匹配: 期望 %d, 实际 %d", InputLen, n)}
	}
	if n := len(session.Output()); n != NumClasses {
		_ = session.Destroy()
		return &ModelLoadError{Err: fmt.Errorf("输出长度不匹配: 期望 %d, 实际 %d", NumClasses, n)}
	}

	rt.session = session
	return nil
}

// IsLoaded 是否已加载
func (rt *Runtime) IsLoaded() bool {
	return rt.session != nil
}

// InputBuffer 返回输入缓冲区, 未加载时返回 nil
//
// 返回的切片只能在下一次 Load/Unload 之前使用, 调用方不得持有。
func (rt *Runtime) InputBuffer() []float32 {
	if rt.session == nil {
		return nil
	}
	return rt.session.Input()
}

// RunForward 对输入缓冲区中的数据执行一次推理, 返回原始输出的副本
//
// 输出可能是未归一化的 logits。未加载时返回 ErrNotLoaded。
func (rt *Runtime) RunForward() ([NumClasses]float32, error) {
	var scores [NumClasses]float32
	if rt.session == nil {
		return scores, ErrNotLoaded
	}
	if err := rt.session.Run(); err != nil {
		return scores, err
	}
	copy(scores[:], rt.session.Output())
	return scores, nil
}

// Unload 释放模型和缓冲区, 重复调用是安全的
func (rt *Runtime) Unload() error {
	if rt.session == nil {
		return nil
	}
	session := rt.session
	rt.session = nil
	if err := session.Destroy(); err != nil {
		return fmt.Errorf("释放模型失败: %w", err)
	}
	return nil
}
