// Package tflite 基于 TensorFlow Lite 的推理后端, 需要 libtensorflowlite_c
package tflite

import (
	"errors"
	"fmt"

	"github.com/getcharzp/go-drunkguard/intox"
	tfl "github.com/mattn/go-tflite"
)

// Backend TFLite 推理后端
type Backend struct {
	NumThreads int // 推理线程数, <= 0 时使用 4
}

// NewBackend 创建 TFLite 后端
func NewBackend(numThreads int) *Backend {
	return &Backend{NumThreads: numThreads}
}

// NewSession implements intox.Backend.
func (b *Backend) NewSession(modelData []byte) (intox.Session, error) {
	s, err := newSession(modelData, b.NumThreads)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// session 持有解释器及其输入输出 Tensor
type session struct {
	model   *tfl.Model
	options *tfl.InterpreterOptions
	interp  *tfl.Interpreter
	input   []float32
	output  []float32
}

func newSession(modelData []byte, numThreads int) (*session, error) {
	if len(modelData) == 0 {
		return nil, errors.New("模型数据为空")
	}
	if numThreads <= 0 {
		numThreads = 4
	}

	model := tfl.NewModel(modelData)
	if model == nil {
		return nil, errors.New("解析 TFLite 模型失败")
	}

	options := tfl.NewInterpreterOptions()
	options.SetNumThread(numThreads)

	s := &session{model: model, options: options}
	s.interp = tfl.NewInterpreter(model, options)
	if s.interp == nil {
		_ = s.Destroy()
		return nil, errors.New("创建 TFLite 解释器失败")
	}
	if status := s.interp.AllocateTensors(); status != tfl.OK {
		_ = s.Destroy()
		return nil, fmt.Errorf("分配 Tensor 失败: status %v", status)
	}

	in := s.interp.GetInputTensor(0)
	out := s.interp.GetOutputTensor(0)
	if in == nil || out == nil {
		_ = s.Destroy()
		return nil, errors.New("模型缺少输入或输出 Tensor")
	}
	if in.Type() != tfl.Float32 || out.Type() != tfl.Float32 {
		_ = s.Destroy()
		return nil, fmt.Errorf("只支持 float32 模型, 输入 %v, 输出 %v", in.Type(), out.Type())
	}
	// Float32s 直接引用解释器内部内存, 解释器存活期间保持有效
	s.input = in.Float32s()
	s.output = out.Float32s()
	return s, nil
}

func (s *session) Input() []float32  { return s.input }
func (s *session) Output() []float32 { return s.output }

func (s *session) Run() error {
	if s.interp == nil {
		return errors.New("解释器已释放")
	}
	if status := s.interp.Invoke(); status != tfl.OK {
		return fmt.Errorf("推理失败: status %v", status)
	}
	return nil
}

func (s *session) Destroy() error {
	if s.interp != nil {
		s.interp.Delete()
		s.interp = nil
	}
	if s.options != nil {
		s.options.Delete()
		s.options = nil
	}
	if s.model != nil {
		s.model.Delete()
		s.model = nil
	}
	s.input, s.output = nil, nil
	return nil
}
