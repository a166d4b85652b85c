package data

import (
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"

	"github.com/born-ml/detect/internal/tensor"
)

// Config configures a Loader.
//
// Batches come either from BatchSize (with optional Shuffle, Sampler and
// LastBatch) or from a ready-made BatchSampler, never both.
type Config struct {
	// BatchSize is the number of records per batch.
	BatchSize int

	// Shuffle draws a fresh permutation every epoch.
	// Cannot be combined with Sampler.
	Shuffle bool

	// Sampler overrides the default sequential index order.
	Sampler Sampler

	// LastBatch is the policy for the final short group (default keep).
	LastBatch LastBatch

	// BatchSampler yields index groups directly.
	// Excludes BatchSize, Shuffle, Sampler and LastBatch.
	BatchSampler Batcher

	// PadValue fills label rows added by collation. Nil pads with
	// DefaultPadValue. Must not collide with a valid class index.
	PadValue *float32

	// Rand drives Shuffle. Nil uses the global math/rand/v2 source.
	Rand *rand.Rand

	// Logger receives Debug records for epochs and batches. Nil discards.
	Logger *slog.Logger
}

// DefaultPadValue is the label padding sentinel used when Config.PadValue is
// nil.
const DefaultPadValue float32 = -1

// DefaultConfig returns a config with batch size 1, no shuffling, keep policy
// and DefaultPadValue label padding. Clear BatchSize before setting
// BatchSampler.
func DefaultConfig() Config {
	return Config{BatchSize: 1}
}

// Pad returns a PadValue pointing at v.
func Pad(v float32) *float32 {
	return &v
}

// Loader iterates a Dataset in collated batches.
//
// Iteration is synchronous and pull-based: each step reads one group of
// records and collates it on the loader's backend.
type Loader[B tensor.Backend] struct {
	ds      Dataset
	backend B
	batches Batcher
	pad     float32
	log     *slog.Logger
}

// NewLoader validates cfg and builds a loader over ds.
func NewLoader[B tensor.Backend](ds Dataset, backend B, cfg Config) (*Loader[B], error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", ErrInvalidConfig)
	}
	batches, err := cfg.batcher(ds.Len())
	if err != nil {
		return nil, err
	}

	pad := DefaultPadValue
	if cfg.PadValue != nil {
		pad = *cfg.PadValue
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Loader[B]{
		ds:      ds,
		backend: backend,
		batches: batches,
		pad:     pad,
		log:     log.With("component", "data.Loader"),
	}, nil
}

func (cfg Config) batcher(n int) (Batcher, error) {
	if cfg.BatchSampler != nil {
		if cfg.BatchSize != 0 || cfg.Shuffle || cfg.Sampler != nil || cfg.LastBatch != LastBatchUnset {
			return nil, fmt.Errorf("%w: BatchSampler excludes BatchSize, Shuffle, Sampler and LastBatch",
				ErrInvalidConfig)
		}
		return cfg.BatchSampler, nil
	}

	if cfg.BatchSize == 0 {
		return nil, fmt.Errorf("%w: either BatchSize or BatchSampler must be set", ErrInvalidConfig)
	}
	if cfg.BatchSize < 0 {
		return nil, fmt.Errorf("%w: batch size %d must be positive", ErrInvalidConfig, cfg.BatchSize)
	}
	if cfg.Shuffle && cfg.Sampler != nil {
		return nil, fmt.Errorf("%w: Shuffle and Sampler are mutually exclusive", ErrInvalidConfig)
	}

	sampler := cfg.Sampler
	switch {
	case sampler != nil:
	case cfg.Shuffle:
		sampler = NewRandomSampler(n, cfg.Rand)
	default:
		sampler = NewSequentialSampler(n)
	}
	return NewBatchSampler(sampler, cfg.BatchSize, cfg.LastBatch)
}

// Len returns the number of batches in the next epoch.
func (l *Loader[B]) Len() int {
	return l.batches.Len()
}

// Backend returns the backend batches are collated on.
func (l *Loader[B]) Backend() B {
	return l.backend
}

// All yields one epoch of batches. A dataset or collation error is yielded
// once and ends the epoch.
func (l *Loader[B]) All() iter.Seq2[Field, error] {
	return func(yield func(Field, error) bool) {
		l.log.Debug("epoch start", "records", l.ds.Len(), "batches", l.batches.Len())

		n := 0
		for indices := range l.batches.All() {
			batch, err := l.load(indices)
			if err != nil {
				l.log.Debug("epoch aborted", "batch", n, "err", err)
				yield(nil, err)
				return
			}
			if !yield(batch, nil) {
				return
			}
			n++
		}

		if bs, ok := l.batches.(*BatchSampler); ok && bs.Pending() > 0 {
			l.log.Debug("rollover", "carried", bs.Pending())
		}
		l.log.Debug("epoch end", "batches", n)
	}
}

func (l *Loader[B]) load(indices []int) (Field, error) {
	records := make([]Field, len(indices))
	for j, i := range indices {
		rec, err := l.ds.Get(i)
		if err != nil {
			return nil, fmt.Errorf("data: get index %d: %w", i, err)
		}
		records[j] = rec
	}

	batch, err := Batchify(l.backend, records, l.pad)
	if err != nil {
		return nil, err
	}
	l.log.Debug("batch", "size", len(indices))
	return batch, nil
}
