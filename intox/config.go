package intox

import (
	"github.com/getcharzp/go-drunkguard"
)

// 模型固定参数
const (
	// InputSize 模型输入边长, 图片会被拉伸到 InputSize x InputSize
	InputSize = 224
	// NumClasses 分类数
	NumClasses = 4
	// Channels 输入通道数 (R, G, B)
	Channels = 3
	// InputLen 输入 Tensor 的 float32 个数
	InputLen = InputSize * InputSize * Channels
	// InputBytes 输入 Tensor 的字节数
	InputBytes = InputLen * 4
)

// 均值和方差常量 (ImageNet)
const (
	MeanR = 0.485
	MeanG = 0.456
	MeanB = 0.406

	StdR = 0.229
	StdG = 0.224
	StdB = 0.225
)

// Config 引擎的初始化参数
type Config struct {
	ModelPath          string // 模型路径, 仅供调用方读取模型字节
	OnnxRuntimeLibPath string // ONNX Runtime 动态库路径

	// 模型参数
	InputName  string // 输入节点名称 (默认 input)
	OutputName string // 输出节点名称 (默认 output)

	// 推理参数
	ConfThreshold float32 // 置信度阈值 (默认 0.65), 引擎本身不使用, 由调用方判断
	// OutputsProbabilities 模型最后一层已经是 softmax 时设置为 true, 跳过引擎内的 softmax
	OutputsProbabilities bool

	// 可选参数
	UseCuda    bool // (可选) 是否启用 CUDA
	NumThreads int  // (可选) 推理线程数, 默认由CPU核心数决定
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		ModelPath:          "./drunkguard_weights/drunkguard.onnx",
		OnnxRuntimeLibPath: drunkguard.DefaultLibraryPath(),
		InputName:          "input",
		OutputName:         "output",
		ConfThreshold:      0.65,
		NumThreads:         4,
	}
}

// inputShape NHWC
func inputShape() []int64 {
	return []int64{1, InputSize, InputSize, Channels}
}

func outputShape() []int64 {
	return []int64{1, NumClasses}
}
