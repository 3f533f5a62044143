package intox

import (
	"fmt"

	"github.com/getcharzp/go-drunkguard"
	"github.com/up-zero/gotool/convertutil"
)

// OnnxBackend 基于 ONNX Runtime 的推理后端
//
// 创建时不做任何初始化, 运行时环境在第一次 NewSession 时初始化。
type OnnxBackend struct {
	config Config
}

// NewOnnxBackend 创建 ONNX 后端
func NewOnnxBackend(cfg Config) *OnnxBackend {
	return &OnnxBackend{config: cfg}
}

// NewSession implements Backend.
func (b *OnnxBackend) NewSession(modelData []byte) (Session, error) {
	oc := new(drunkguard.OnnxConfig)
	if err := convertutil.CopyProperties(b.config, oc); err != nil {
		return nil, fmt.Errorf("复制参数失败: %w", err)
	}
	if err := oc.New(); err != nil {
		return nil, err
	}
	// 会话创建后不再需要 SessionOptions
	defer oc.Destroy()

	inputName, outputName := b.config.InputName, b.config.OutputName
	if inputName == "" {
		inputName = "input"
	}
	if outputName == "" {
		outputName = "output"
	}

	session, err := drunkguard.NewTensorSession(modelData, drunkguard.TensorSessionOptions{
		InputName:   inputName,
		OutputName:  outputName,
		InputShape:  inputShape(),
		OutputShape: outputShape(),
		Options:     oc.SessionOptions,
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}
