package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/up-zero/gotool/imageutil"
)

func TestMain(m *testing.M) {
	useFakeBackend()
	testscript.Main(m, map[string]func(){
		"drunkguard": func() { os.Exit(run(os.Args[1:], os.Stdout, os.Stderr)) },
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			env.Setenv("DRUNKGUARD_CONFIG", "")
			env.Setenv("NO_COLOR", "1")
			env.Setenv("DRUNKGUARD_LOG_LEVEL", "error")
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"mkimage": cmdMkimage,
		},
	})
}

// mkimage <path> <width> <height>: 生成一张渐变 PNG
func cmdMkimage(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkimage")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: mkimage <path> <width> <height>")
	}
	w, err := strconv.Atoi(args[1])
	ts.Check(err)
	h, err := strconv.Atoi(args[2])
	ts.Check(err)

	path := ts.MkAbs(args[0])
	ts.Check(os.MkdirAll(filepath.Dir(path), 0o755))
	ts.Check(imageutil.Save(path, gradient(w, h), 100))
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func writeTestImage(path string) error {
	return imageutil.Save(path, gradient(40, 30), 100)
}
