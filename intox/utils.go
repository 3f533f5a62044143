package intox

import (
	"fmt"
	"math"
)

// softmax 数值稳定的 softmax, 先减去最大值再取指数
func softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}

	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	var sum float64
	exps := make([]float64, len(logits))
	for i, v := range logits {
		exps[i] = math.Exp(float64(v - maxVal))
		sum += exps[i]
	}
	for i := range exps {
		out[i] = float32(exps[i] / sum)
	}
	return out
}

// checkFinite 模型输出出现 NaN/Inf 时返回错误
func checkFinite(values []float32) error {
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("模型输出包含非有限值: [%d] = %v", i, v)
		}
	}
	return nil
}

// distributionTolerance 概率和与 1 的允许误差
const distributionTolerance = 1e-4

// checkDistribution 模型直接输出概率时, 每个值必须非负且总和为 1
func checkDistribution(probs []float32) error {
	var sum float64
	for i, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: [%d] = %v 不在 [0, 1] 之间", ErrInvalidDistribution, i, p)
		}
		sum += float64(p)
	}
	if math.Abs(sum-1) > distributionTolerance {
		return fmt.Errorf("%w: 概率之和为 %v", ErrInvalidDistribution, sum)
	}
	return nil
}
