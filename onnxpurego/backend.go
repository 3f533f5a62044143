// Package onnxpurego 基于 onnxruntime_purego 的推理后端, 不需要 cgo
package onnxpurego

import (
	"errors"
	"fmt"
	"os"

	ort "github.com/getcharzp/onnxruntime_purego"

	"github.com/getcharzp/go-drunkguard/intox"
)

// Opener 由模型文件创建会话, 对应 OnnxEngine.NewSession
type Opener func(modelPath string) (*ort.Session, error)

// Backend onnxruntime_purego 推理后端
//
// onnxruntime_purego 只能从文件路径创建会话, 模型字节会先写入临时文件,
// 会话创建完成后删除。
type Backend struct {
	Open       Opener
	InputName  string
	OutputName string
	TempDir    string // 临时文件目录, 为空时使用 os.TempDir
}

// NewBackend 创建后端
//
// # Params:
//
//	open: 会话创建函数
//	inputName, outputName: 模型输入输出节点名称
func NewBackend(open Opener, inputName, outputName string) *Backend {
	return &Backend{Open: open, InputName: inputName, OutputName: outputName}
}

// NewSession implements intox.Backend.
func (b *Backend) NewSession(modelData []byte) (intox.Session, error) {
	if b.Open == nil {
		return nil, errors.New("未设置会话创建函数")
	}
	if len(modelData) == 0 {
		return nil, errors.New("模型数据为空")
	}

	path, err := writeTemp(b.TempDir, modelData)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	sess, err := b.Open(path)
	if err != nil {
		return nil, fmt.Errorf("创建 ONNX 会话失败: %w", err)
	}
	if sess == nil {
		return nil, errors.New("创建 ONNX 会话失败: 会话为空")
	}

	inputName, outputName := b.InputName, b.OutputName
	if inputName == "" {
		inputName = "input"
	}
	if outputName == "" {
		outputName = "output"
	}
	return &session{
		sess:       sess,
		inputName:  inputName,
		outputName: outputName,
		input:      make([]float32, intox.InputLen),
		output:     make([]float32, intox.NumClasses),
	}, nil
}

func writeTemp(dir string, modelData []byte) (string, error) {
	f, err := os.CreateTemp(dir, "drunkguard-*.onnx")
	if err != nil {
		return "", fmt.Errorf("创建临时模型文件失败: %w", err)
	}
	if _, err := f.Write(modelData); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("写入临时模型文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("写入临时模型文件失败: %w", err)
	}
	return f.Name(), nil
}

// session 输入输出缓冲区由 session 持有, 每次 Run 用输入缓冲区创建 Tensor
type session struct {
	sess       *ort.Session
	inputName  string
	outputName string
	input      []float32
	output     []float32
}

func (s *session) Input() []float32  { return s.input }
func (s *session) Output() []float32 { return s.output }

func (s *session) Run() error {
	if s.sess == nil {
		return errors.New("会话已释放")
	}

	inputTensor, err := ort.NewTensor([]int64{1, intox.InputSize, intox.InputSize, intox.Channels}, s.input)
	if err != nil {
		return fmt.Errorf("创建 Input Tensor 失败: %w", err)
	}
	defer inputTensor.Destroy()

	outputValues, err := s.sess.Run(map[string]*ort.Value{
		s.inputName: inputTensor,
	})
	if err != nil {
		return fmt.Errorf("推理失败: %w", err)
	}
	for _, v := range outputValues {
		defer v.Destroy()
	}

	outputValue, ok := outputValues[s.outputName]
	if !ok || outputValue == nil {
		return fmt.Errorf("模型没有输出节点 %q", s.outputName)
	}
	data, err := ort.GetTensorData[float32](outputValue)
	if err != nil {
		return fmt.Errorf("获取输出数据失败: %w", err)
	}
	if len(data) != intox.NumClasses {
		return fmt.Errorf("输出长度不匹配: 期望 %d, 实际 %d", intox.NumClasses, len(data))
	}
	copy(s.output, data)
	return nil
}

func (s *session) Destroy() error {
	if s.sess != nil {
		s.sess.Destroy()
		s.sess = nil
	}
	return nil
}
