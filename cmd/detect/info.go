package main

import (
	"fmt"
	"strings"

	"github.com/born-ml/detect/backend/cpu"
	"github.com/born-ml/detect/internal/parallel"
)

func info() {
	backend := cpu.New()
	par := backend.Parallelism()

	fmt.Printf("backend:   %s (%s)\n", backend.Name(), backend.Device())
	fmt.Printf("cpu:       %s\n", parallel.BrandName())
	fmt.Printf("workers:   %d (parallel=%v, min chunk %d)\n", par.NumWorkers, par.Enabled, par.MinChunkSize)
	fmt.Printf("features:  %s\n", strings.Join(backend.Features(), " "))
}
