package drunkguard

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnnxConfig_NewRequiresLibPath(t *testing.T) {
	cfg := &OnnxConfig{}

	err := cfg.New()

	assert.ErrorContains(t, err, "OnnxRuntimeLibPath")
	assert.Nil(t, cfg.SessionOptions)
	// 未初始化时 Destroy 不做任何事
	cfg.Destroy()
}

func TestDefaultLibraryPath(t *testing.T) {
	path := DefaultLibraryPath()

	assert.True(t, strings.HasPrefix(path, "./lib/onnxruntime"))
	switch runtime.GOOS {
	case "windows":
		assert.Equal(t, "./lib/onnxruntime.dll", path)
	case "linux":
		assert.Equal(t, "./lib/onnxruntime_"+runtime.GOARCH+".so", path)
	case "darwin":
		assert.Equal(t, "./lib/onnxruntime_"+runtime.GOARCH+".dylib", path)
	}
}

func TestNewTensorSession_InvalidArgs(t *testing.T) {
	_, err := NewTensorSession(nil, TensorSessionOptions{InputShape: []int64{1}, OutputShape: []int64{1}})
	assert.ErrorContains(t, err, "模型数据为空")

	_, err = NewTensorSession([]byte("model"), TensorSessionOptions{})
	assert.ErrorContains(t, err, "未指定输入输出形状")
}
