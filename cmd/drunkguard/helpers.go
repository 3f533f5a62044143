package main

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"
	"github.com/up-zero/gotool/imageutil"
	"go.uber.org/zap"

	"github.com/getcharzp/go-drunkguard/intox"
	"github.com/getcharzp/go-drunkguard/internal/config"
	"github.com/getcharzp/go-drunkguard/internal/logger"
)

// backendFactories 按名称创建推理后端, 其余后端由对应 build tag 注册
var backendFactories = map[string]func(cfg *config.Config) (intox.Backend, error){
	config.BackendOnnx: func(cfg *config.Config) (intox.Backend, error) {
		return intox.NewOnnxBackend(cfg.EngineConfig()), nil
	},
}

// backendBuildTags 未默认编译的后端及其 build tag
var backendBuildTags = map[string]string{
	config.BackendTFLite:     "tflite",
	config.BackendOnnxPurego: "purego",
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// session 一次命令执行所需的配置、日志和已加载的引擎
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	engine *intox.Engine
}

// openSession 加载配置、创建日志并加载模型
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	factory, ok := backendFactories[cfg.Model.Backend]
	if !ok {
		_ = log.Sync()
		return nil, &HintedError{
			Err:  fmt.Errorf("推理后端 %q 未编译进当前程序", cfg.Model.Backend),
			Hint: fmt.Sprintf("使用 go build -tags %s 构建以启用该后端。", backendBuildTags[cfg.Model.Backend]),
		}
	}
	backend, err := factory(cfg)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("创建推理后端 %s 失败: %w", cfg.Model.Backend, err)
	}

	modelData, err := os.ReadFile(cfg.Model.Path)
	if err != nil {
		_ = log.Sync()
		return nil, errModelFile(cfg.Model.Path, err)
	}

	engine := intox.NewEngine(backend, cfg.EngineConfig(), log)
	if err := engine.Load(modelData); err != nil {
		_ = log.Sync()
		return nil, hintWrap(err)
	}
	return &session{cfg: cfg, log: log, engine: engine}, nil
}

func (s *session) Close() {
	if err := s.engine.Close(); err != nil {
		s.log.Warn("释放模型失败", zap.Error(err))
	}
	_ = s.log.Sync()
}

func openImage(path string) (image.Image, error) {
	img, err := imageutil.Open(path)
	if err != nil {
		return nil, hintWrap(fmt.Errorf("打开图片 %s 失败: %w", path, err))
	}
	return img, nil
}
