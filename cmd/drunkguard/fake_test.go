package main

import (
	"bytes"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/getcharzp/go-drunkguard/intox"
	"github.com/getcharzp/go-drunkguard/internal/config"
)

// fakeLogitsEnv 假模型输出的 logits, 逗号分隔
const fakeLogitsEnv = "DRUNKGUARD_FAKE_LOGITS"

var defaultFakeLogits = []float32{0.2, 3.1, 0.4, -1}

// fakeRuns 所有假模型的推理次数
var fakeRuns atomic.Int32

// fakeSession 不依赖 onnxruntime 的假模型
type fakeSession struct {
	input  []float32
	output []float32
	logits []float32
}

func (s *fakeSession) Input() []float32  { return s.input }
func (s *fakeSession) Output() []float32 { return s.output }
func (s *fakeSession) Destroy() error    { return nil }

func (s *fakeSession) Run() error {
	fakeRuns.Add(1)
	copy(s.output, s.logits)
	return nil
}

// fakeBackend 模型内容以 "broken" 开头时加载失败
func fakeBackend(*config.Config) (intox.Backend, error) {
	return intox.BackendFunc(func(modelData []byte) (intox.Session, error) {
		if bytes.HasPrefix(modelData, []byte("broken")) {
			return nil, errors.New("invalid model file")
		}
		logits, err := parseLogits(os.Getenv(fakeLogitsEnv))
		if err != nil {
			return nil, err
		}
		return &fakeSession{
			input:  make([]float32, intox.InputLen),
			output: make([]float32, intox.NumClasses),
			logits: logits,
		}, nil
	}), nil
}

func parseLogits(s string) ([]float32, error) {
	if s == "" {
		return defaultFakeLogits, nil
	}
	var out []float32
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(v))
	}
	return out, nil
}

func useFakeBackend() {
	backendFactories[config.BackendOnnx] = fakeBackend
}
