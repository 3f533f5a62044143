package intox

import (
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
)

// Engine 醉酒程度识别引擎
//
// 使用方式: NewEngine 创建 (不会失败), Load 加载模型, Detect 识别, Close 释放。
// 同一个 Engine 的 Load/Detect/Close 不能并发调用, 需要并发时使用 Pool 或每个 worker 一个 Engine。
type Engine struct {
	runtime *Runtime
	config  Config
	logger  *zap.Logger
}

// NewEngine 创建未加载模型的引擎
//
// # Params:
//
//	backend: 推理后端
//	cfg: 引擎参数
//	logger: 日志, 为 nil 时不输出
func NewEngine(backend Backend, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		runtime: NewRuntime(backend),
		config:  cfg,
		logger:  logger.Named("intox"),
	}
}

// Load 加载模型, 是引擎从未就绪到就绪的唯一方式
func (e *Engine) Load(modelData []byte) error {
	if err := e.runtime.Load(modelData); err != nil {
		e.logger.Warn("模型加载失败", zap.Int("bytes", len(modelData)), zap.Error(err))
		return err
	}
	e.logger.Info("模型已加载", zap.Int("bytes", len(modelData)))
	return nil
}

// IsLoaded 模型是否已加载
func (e *Engine) IsLoaded() bool {
	return e.runtime.IsLoaded()
}

// Detect 执行识别
//
// 未加载时返回 Kind 为 NotReady 的 *DetectError, 不会自动加载;
// 之后任何阶段的失败都以 Kind 为 InferenceFailed 的 *DetectError 返回。
//
// # Params:
//
//	img: 待识别的人脸照片, 彩色或灰度
func (e *Engine) Detect(img image.Image) (Result, error) {
	return e.detect(img, Preprocess)
}

// DetectGrayscale 按灰度图识别, 彩色图片会先转换为亮度
func (e *Engine) DetectGrayscale(img image.Image) (Result, error) {
	return e.detect(img, PreprocessGrayscale)
}

// AllProbabilities 返回每个分类的概率, 用于界面展示
//
// 这是唯一吞掉错误的方法: 任何失败都只记录日志并返回空 map。需要错误信息时请使用 Detect。
func (e *Engine) AllProbabilities(img image.Image) map[Label]float32 {
	result, err := e.Detect(img)
	if err != nil {
		e.logger.Debug("获取概率失败, 返回空结果", zap.Error(err))
		return map[Label]float32{}
	}
	probs := make(map[Label]float32, NumClasses)
	for _, l := range Labels() {
		probs[l] = result.ProbabilityOf(l)
	}
	return probs
}

// Close 释放模型, 可重复调用, 未加载时也可调用
func (e *Engine) Close() error {
	wasLoaded := e.runtime.IsLoaded()
	if err := e.runtime.Unload(); err != nil {
		return err
	}
	if wasLoaded {
		e.logger.Info("模型已释放")
	}
	return nil
}

func (e *Engine) detect(img image.Image, pre func(image.Image, []float32) error) (res Result, err error) {
	if !e.runtime.IsLoaded() {
		return Result{}, notReady()
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = inferenceFailed(fmt.Errorf("推理过程 panic: %v", r))
			e.logger.Error("推理过程 panic", zap.Any("panic", r))
		}
	}()

	start := time.Now()

	// 预处理
	if err := pre(img, e.runtime.InputBuffer()); err != nil {
		return Result{}, inferenceFailed(fmt.Errorf("预处理失败: %w", err))
	}

	// 推理
	scores, err := e.runtime.RunForward()
	if err != nil {
		return Result{}, inferenceFailed(fmt.Errorf("推理失败: %w", err))
	}

	// 后处理
	res, err = e.postprocess(scores[:])
	if err != nil {
		if errors.Is(err, ErrInvalidDistribution) {
			e.logger.Error("后处理产生了错误的概率分布", zap.Error(err))
		}
		return Result{}, inferenceFailed(fmt.Errorf("后处理失败: %w", err))
	}

	e.logger.Debug("识别完成",
		zap.Stringer("label", res.Label()),
		zap.Float32("confidence", res.Confidence()),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// postprocess 后处理, 原始输出 -> 概率分布 -> 结果
func (e *Engine) postprocess(scores []float32) (Result, error) {
	if err := checkFinite(scores); err != nil {
		return Result{}, err
	}
	if !e.config.OutputsProbabilities {
		return FromDistribution(softmax(scores))
	}
	if err := checkDistribution(scores); err != nil {
		return Result{}, err
	}
	return FromDistribution(scores)
}
