package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/born-ml/detect/backend/cpu"
	"github.com/born-ml/detect/data"
)

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	path := fs.String("data", "", "safetensors dataset to read")
	batchSize := fs.Int("batch", 8, "batch size")
	shuffle := fs.Bool("shuffle", false, "shuffle records every epoch")
	seed := fs.Uint64("seed", 0, "shuffle seed (0 = random)")
	last := fs.String("last", "keep", "last batch policy: keep, discard or rollover")
	epochs := fs.Int("epochs", 1, "number of epochs to iterate")
	limit := fs.Int("limit", 0, "only read the first n records (0 = all)")
	verbose := fs.Bool("v", false, "log loader debug records")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("inspect: -data is required")
	}

	policy, err := data.ParseLastBatch(*last)
	if err != nil {
		return err
	}

	file, err := data.OpenSafetensors(*path)
	if err != nil {
		return err
	}
	defer file.Close()

	var ds data.Dataset = file
	if *limit > 0 {
		if ds, err = data.NewSubset(file, *limit); err != nil {
			return err
		}
	}

	cfg := data.DefaultConfig()
	cfg.BatchSize = *batchSize
	cfg.Shuffle = *shuffle
	cfg.LastBatch = policy
	if *seed != 0 {
		cfg.Rand = rand.New(rand.NewPCG(*seed, *seed))
	}
	if *verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	loader, err := data.NewLoader(ds, cpu.New(), cfg)
	if err != nil {
		return err
	}
	log.Printf("%s: %d records, label width %d, %d batches per epoch",
		*path, ds.Len(), file.LabelWidth(), loader.Len())

	for epoch := range *epochs {
		n := 0
		for batch, err := range loader.All() {
			if err != nil {
				return fmt.Errorf("epoch %d: %w", epoch, err)
			}
			fmt.Printf("epoch %d batch %d: %s\n", epoch, n, describe(batch))
			n++
		}
	}
	return nil
}

func describe(f data.Field) string {
	switch v := f.(type) {
	case data.Array:
		return fmt.Sprintf("%s%v", v.Raw.DType(), v.Shape())
	case data.Tuple:
		s := "("
		for i, e := range v {
			if i > 0 {
				s += ", "
			}
			s += describe(e)
		}
		return s + ")"
	default:
		return f.Kind().String()
	}
}
