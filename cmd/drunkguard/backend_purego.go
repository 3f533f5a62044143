//go:build purego

package main

import (
	"github.com/getcharzp/go-drunkguard/intox"
	"github.com/getcharzp/go-drunkguard/internal/config"
	"github.com/getcharzp/go-drunkguard/onnxpurego"
)

func init() {
	backendFactories[config.BackendOnnxPurego] = func(cfg *config.Config) (intox.Backend, error) {
		open, err := onnxpurego.NewOpener(cfg.Model.RuntimeLib)
		if err != nil {
			return nil, err
		}
		return onnxpurego.NewBackend(open, cfg.Model.InputName, cfg.Model.OutputName), nil
	}
}
