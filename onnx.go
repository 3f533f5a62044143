package drunkguard

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxConfig ONNX Runtime 动态库路径及会话选项
//
// 字段名与 intox.Config 保持一致, 由 convertutil.CopyProperties 填充。
type OnnxConfig struct {
	OnnxRuntimeLibPath string
	UseCuda            bool
	NumThreads         int // <= 0 时由 ONNX Runtime 决定

	SessionOptions *ort.SessionOptions // New 之后可用
}

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment 加载动态库并初始化环境, 进程内只执行一次, 之后传入的路径会被忽略
func initEnvironment(libPath string) error {
	envOnce.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		envErr = ort.InitializeEnvironment()
	})
	if envErr != nil {
		return fmt.Errorf("初始化 ONNX Runtime 环境失败: %w", envErr)
	}
	return nil
}

// New 初始化环境并创建 SessionOptions, 用完后调用 Destroy
func (cfg *OnnxConfig) New() error {
	if cfg.OnnxRuntimeLibPath == "" {
		return errors.New("OnnxRuntimeLibPath 不能为空")
	}
	if err := initEnvironment(cfg.OnnxRuntimeLibPath); err != nil {
		return err
	}
	options, err := newSessionOptions(cfg.NumThreads, cfg.UseCuda)
	if err != nil {
		return err
	}
	cfg.SessionOptions = options
	return nil
}

func newSessionOptions(numThreads int, useCuda bool) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("创建 SessionOptions 失败: %w", err)
	}
	fail := func(format string, err error) (*ort.SessionOptions, error) {
		options.Destroy()
		return nil, fmt.Errorf(format, err)
	}

	if numThreads > 0 {
		if err := options.SetIntraOpNumThreads(numThreads); err != nil {
			return fail("设置线程数失败: %w", err)
		}
	}
	if !useCuda {
		return options, nil
	}

	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return fail("创建 CUDAProviderOptions 失败: %w", err)
	}
	defer cudaOptions.Destroy()
	if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
		return fail("添加 CUDA 执行提供者失败: %w", err)
	}
	return options, nil
}

// Destroy 释放 SessionOptions, 可重复调用
func (cfg *OnnxConfig) Destroy() {
	if cfg.SessionOptions != nil {
		cfg.SessionOptions.Destroy()
		cfg.SessionOptions = nil
	}
}

// libExtensions 各系统的动态库扩展名, windows 不带架构后缀
var libExtensions = map[string]string{
	"linux":  "so",
	"darwin": "dylib",
}

// DefaultLibraryPath 当前系统默认的 onnxruntime 动态库路径
//
//	windows: ./lib/onnxruntime.dll
//	linux:   ./lib/onnxruntime_<arch>.so
//	darwin:  ./lib/onnxruntime_<arch>.dylib
//	其它:     ./lib/onnxruntime_amd64.so
func DefaultLibraryPath() string {
	const base = "./lib/onnxruntime"
	if runtime.GOOS == "windows" {
		return base + ".dll"
	}
	ext, ok := libExtensions[runtime.GOOS]
	if !ok {
		return base + "_amd64.so"
	}
	return fmt.Sprintf("%s_%s.%s", base, runtime.GOARCH, ext)
}
