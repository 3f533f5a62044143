package drunkguard

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// TensorSession 持有预分配输入/输出 Tensor 的 ONNX 会话
//
// 输入输出 Tensor 在创建时分配一次, 之后每次 Run 都复用同一块内存,
// 因此同一个 TensorSession 不能被多个 goroutine 同时使用。
type TensorSession struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// TensorSessionOptions 创建 TensorSession 的参数
type TensorSessionOptions struct {
	InputName   string
	OutputName  string
	InputShape  []int64
	OutputShape []int64
	Options     *ort.SessionOptions // 可为 nil
}

// NewTensorSession 从内存中的 ONNX 模型字节创建会话
//
// # Params:
//
//	modelData: ONNX 模型字节
//	opts: 输入输出名称及形状
func NewTensorSession(modelData []byte, opts TensorSessionOptions) (*TensorSession, error) {
	if len(modelData) == 0 {
		return nil, errors.New("模型数据为空")
	}
	if len(opts.InputShape) == 0 || len(opts.OutputShape) == 0 {
		return nil, errors.New("未指定输入输出形状")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(opts.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("创建 Input Tensor 失败: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(opts.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("创建 Output Tensor 失败: %w", err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(modelData,
		[]string{opts.InputName}, []string{opts.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		opts.Options)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("创建 ONNX 会话失败 (检查输入输出名称): %w", err)
	}

	return &TensorSession{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Input 返回输入 Tensor 的底层数据, 写入后调用 Run 生效
func (s *TensorSession) Input() []float32 {
	return s.inputTensor.GetData()
}

// Output 返回输出 Tensor 的底层数据, 下一次 Run 会覆盖
func (s *TensorSession) Output() []float32 {
	return s.outputTensor.GetData()
}

// Run 执行一次前向推理
func (s *TensorSession) Run() error {
	if err := s.session.Run(); err != nil {
		return fmt.Errorf("推理失败: %w", err)
	}
	return nil
}

// Destroy 释放会话及 Tensor
func (s *TensorSession) Destroy() error {
	var errs []error
	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("销毁 ONNX 会话失败: %w", err))
		}
		s.session = nil
	}
	if s.inputTensor != nil {
		if err := s.inputTensor.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("销毁 Input Tensor 失败: %w", err))
		}
		s.inputTensor = nil
	}
	if s.outputTensor != nil {
		if err := s.outputTensor.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("销毁 Output Tensor 失败: %w", err))
		}
		s.outputTensor = nil
	}
	return errors.Join(errs...)
}
