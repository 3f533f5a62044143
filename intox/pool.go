package intox

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
)

// ErrPoolClosed 池已关闭
var ErrPoolClosed = errors.New("引擎池已关闭")

// Pool 多个 Engine 组成的池, 每次识别独占一个 Engine
type Pool struct {
	engines chan *Engine
	all     []*Engine

	mu     sync.RWMutex
	closed bool
}

// NewPool 创建引擎池, 每个引擎都加载同一份模型
//
// 任意一个引擎加载失败时, 已加载的引擎会被释放。
//
// # Params:
//
//	size: 引擎数量
//	modelData: 模型字节
//	newEngine: 创建单个引擎
func NewPool(size int, modelData []byte, newEngine func() *Engine) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("引擎数量必须大于 0: %d", size)
	}

	p := &Pool{
		engines: make(chan *Engine, size),
		all:     make([]*Engine, 0, size),
	}
	for i := 0; i < size; i++ {
		e := newEngine()
		if err := e.Load(modelData); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("加载第 %d 个引擎失败: %w", i, err)
		}
		p.all = append(p.all, e)
		p.engines <- e
	}
	return p, nil
}

// Detect 取出一个空闲引擎执行识别, 等待期间响应 ctx 取消
func (p *Pool) Detect(ctx context.Context, img image.Image) (Result, error) {
	return p.do(ctx, func(e *Engine) (Result, error) { return e.Detect(img) })
}

// DetectGrayscale 同 Detect, 走灰度预处理
func (p *Pool) DetectGrayscale(ctx context.Context, img image.Image) (Result, error) {
	return p.do(ctx, func(e *Engine) (Result, error) { return e.DetectGrayscale(img) })
}

// Size 引擎数量
func (p *Pool) Size() int {
	return cap(p.engines)
}

// Close 释放所有引擎, 正在执行的识别完成后才会返回
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for _, e := range p.all {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pool) do(ctx context.Context, fn func(*Engine) (Result, error)) (Result, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return Result{}, ErrPoolClosed
	}

	var e *Engine
	select {
	case e = <-p.engines:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { p.engines <- e }()

	return fn(e)
}
