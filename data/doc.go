// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data loads detection datasets in batches.
//
// # Overview
//
// A Dataset returns one Field per record: an Array (dense tensor), a Tuple of
// fields, or Labels (a variable number of fixed-width label rows, one per
// object). A Loader draws index groups from a sampler and collates each group
// with Batchify:
//   - arrays are stacked along a new leading axis
//   - tuples are collated position by position
//   - labels are padded with PadValue (default -1) to the longest record
//
// # Basic Usage
//
//	ds, err := data.OpenSafetensors("train.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.Close()
//
//	cfg := data.DefaultConfig()
//	cfg.BatchSize = 16
//	cfg.Shuffle = true
//	cfg.LastBatch = data.LastBatchRollover
//	loader, err := data.NewLoader(ds, cpu.New(), cfg)
//
//	for batch, err := range loader.All() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fields := batch.(data.Tuple)
//	    images, _ := data.TensorOf[float32](fields[0], loader.Backend())
//	    labels, _ := data.TensorOf[float32](fields[1], loader.Backend()) // [16, maxObjects, 5]
//	}
//
// # Last batch
//
// With LastBatchKeep the short final group is yielded, with LastBatchDiscard
// it is dropped, and with LastBatchRollover its indices open the first batch
// of the next epoch.
package data
