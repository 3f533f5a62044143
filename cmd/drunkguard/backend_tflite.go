//go:build tflite

package main

import (
	"github.com/getcharzp/go-drunkguard/intox"
	"github.com/getcharzp/go-drunkguard/internal/config"
	"github.com/getcharzp/go-drunkguard/tflite"
)

func init() {
	backendFactories[config.BackendTFLite] = func(cfg *config.Config) (intox.Backend, error) {
		return tflite.NewBackend(cfg.Model.NumThreads), nil
	}
}
