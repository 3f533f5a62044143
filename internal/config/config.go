// Package config 命令行的配置, TOML 文件 + DRUNKGUARD_* 环境变量
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/getcharzp/go-drunkguard/intox"
)

// 支持的推理后端
const (
	BackendOnnx       = "onnx"
	BackendOnnxPurego = "onnx-purego"
	BackendTFLite     = "tflite"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "DRUNKGUARD_"

// Config 命令行配置
type Config struct {
	StationName string       `toml:"station_name"`
	Model       ModelConfig  `toml:"model"`
	Detect      DetectConfig `toml:"detect"`
	Log         LogConfig    `toml:"log"`
}

// ModelConfig 模型及推理后端
type ModelConfig struct {
	Path       string `toml:"path"`
	Backend    string `toml:"backend"`     // onnx | onnx-purego | tflite
	RuntimeLib string `toml:"runtime_lib"` // onnxruntime 动态库路径
	InputName  string `toml:"input_name"`
	OutputName string `toml:"output_name"`
	NumThreads int    `toml:"num_threads"`
	UseCuda    bool   `toml:"use_cuda"`
	// 模型已输出概率时设置为 true
	OutputsProbabilities bool `toml:"outputs_probabilities"`
}

// DetectConfig 识别结果的判定与展示
type DetectConfig struct {
	ConfidenceThreshold float32 `toml:"confidence_threshold"`
	FontPath            string  `toml:"font_path"`
}

// LogConfig 日志
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json | console
}

// Default 默认配置
func Default() *Config {
	ec := intox.DefaultConfig()
	return &Config{
		StationName: "Traffic Police Station",
		Model: ModelConfig{
			Path:       ec.ModelPath,
			Backend:    BackendOnnx,
			RuntimeLib: ec.OnnxRuntimeLibPath,
			InputName:  ec.InputName,
			OutputName: ec.OutputName,
			NumThreads: ec.NumThreads,
		},
		Detect: DetectConfig{
			ConfidenceThreshold: ec.ConfThreshold,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load 加载配置: 默认值 <- 配置文件 <- 环境变量
//
// path 为空时读取 DRUNKGUARD_CONFIG, 仍为空则只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	setString("STATION_NAME", &c.StationName)
	setString("MODEL_PATH", &c.Model.Path)
	setString("MODEL_BACKEND", &c.Model.Backend)
	setString("MODEL_RUNTIME_LIB", &c.Model.RuntimeLib)
	setString("DETECT_FONT_PATH", &c.Detect.FontPath)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	if v, ok := os.LookupEnv(EnvPrefix + "MODEL_THREADS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMODEL_THREADS 不是整数: %q", EnvPrefix, v)
		}
		c.Model.NumThreads = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "MODEL_USE_CUDA"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMODEL_USE_CUDA 不是布尔值: %q", EnvPrefix, v)
		}
		c.Model.UseCuda = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "DETECT_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%sDETECT_THRESHOLD 不是数字: %q", EnvPrefix, v)
		}
		c.Detect.ConfidenceThreshold = float32(f)
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Model.Backend) {
	case BackendOnnx, BackendOnnxPurego, BackendTFLite:
		c.Model.Backend = strings.ToLower(c.Model.Backend)
	default:
		errs = append(errs, fmt.Errorf("未知推理后端: %q", c.Model.Backend))
	}
	if c.Detect.ConfidenceThreshold < 0 || c.Detect.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("置信度阈值必须在 [0, 1] 之间: %v", c.Detect.ConfidenceThreshold))
	}
	if c.Model.NumThreads < 0 {
		errs = append(errs, fmt.Errorf("线程数不能为负数: %d", c.Model.NumThreads))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("未知日志格式: %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// EngineConfig 转换为引擎参数
func (c *Config) EngineConfig() intox.Config {
	ec := intox.DefaultConfig()
	ec.ModelPath = c.Model.Path
	ec.OnnxRuntimeLibPath = c.Model.RuntimeLib
	ec.InputName = c.Model.InputName
	ec.OutputName = c.Model.OutputName
	ec.NumThreads = c.Model.NumThreads
	ec.UseCuda = c.Model.UseCuda
	ec.OutputsProbabilities = c.Model.OutputsProbabilities
	ec.ConfThreshold = c.Detect.ConfidenceThreshold
	return ec
}

// Encode 以 TOML 格式输出
func (c *Config) Encode() (string, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return "", err
	}
	return sb.String(), nil
}
