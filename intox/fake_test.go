package intox

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"
)

// fakeSession 内存中的假模型, run 为 nil 时输出固定的 logits
type fakeSession struct {
	input     []float32
	output    []float32
	logits    [NumClasses]float32
	run       func(in, out []float32) error
	runs      atomic.Int32
	destroyed atomic.Int32
}

func newFakeSession(logits ...float32) *fakeSession {
	s := &fakeSession{
		input:  make([]float32, InputLen),
		output: make([]float32, NumClasses),
	}
	copy(s.logits[:], logits)
	return s
}

func (s *fakeSession) Input() []float32  { return s.input }
func (s *fakeSession) Output() []float32 { return s.output }

func (s *fakeSession) Run() error {
	s.runs.Add(1)
	if s.run != nil {
		return s.run(s.input, s.output)
	}
	copy(s.output, s.logits[:])
	return nil
}

func (s *fakeSession) Destroy() error {
	s.destroyed.Add(1)
	return nil
}

// sessionBackend 每次 NewSession 都返回同一个 session
func sessionBackend(s Session) Backend {
	return BackendFunc(func([]byte) (Session, error) { return s, nil })
}

var errBrokenModel = errors.New("broken model")

func failingBackend() Backend {
	return BackendFunc(func([]byte) (Session, error) { return nil, errBrokenModel })
}

var fakeModel = []byte("fake-model")

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}
