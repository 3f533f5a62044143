package intox

import (
	"fmt"
	"sort"
)

// Result 一次识别的结果, 创建后不可修改
type Result struct {
	label         Label
	confidence    float32
	probabilities [NumClasses]float32
}

// Score 单个分类的概率
type Score struct {
	Label       Label
	Probability float32
}

// FromDistribution 由概率分布创建结果
//
// 取概率最大的分类, 相等时取下标最小的分类。不检查概率和是否为 1。
//
// # Params:
//
//	values: 长度为 NumClasses 的概率分布
func FromDistribution(values []float32) (Result, error) {
	if len(values) != NumClasses {
		return Result{}, fmt.Errorf("%w: 期望 %d, 实际 %d", ErrInvalidDistribution, NumClasses, len(values))
	}

	var r Result
	copy(r.probabilities[:], values)

	best := 0
	for i := 1; i < NumClasses; i++ {
		if r.probabilities[i] > r.probabilities[best] {
			best = i
		}
	}
	r.label = Label(best)
	r.confidence = r.probabilities[best]
	return r, nil
}

// Label 概率最大的分类
func (r Result) Label() Label {
	return r.label
}

// Confidence 所选分类的概率
func (r Result) Confidence() float32 {
	return r.confidence
}

// Probabilities 返回概率分布的副本
func (r Result) Probabilities() [NumClasses]float32 {
	return r.probabilities
}

// ProbabilityOf 返回指定分类的概率, 非法分类返回 0
func (r Result) ProbabilityOf(l Label) float32 {
	if !l.Valid() {
		return 0
	}
	return r.probabilities[l]
}

// MeetsThreshold 置信度是否达到阈值 (confidence >= threshold)
func (r Result) MeetsThreshold(threshold float32) bool {
	return r.confidence >= threshold
}

// Ranked 按概率从高到低返回所有分类, 概率相同时保持分类顺序
func (r Result) Ranked() []Score {
	scores := make([]Score, NumClasses)
	for i, p := range r.probabilities {
		scores[i] = Score{Label: Label(i), Probability: p}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Probability > scores[j].Probability
	})
	return scores
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%.2f%%)", r.label, r.confidence*100)
}
