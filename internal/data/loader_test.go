package data

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/detect/internal/backend/cpu"
	"github.com/born-ml/detect/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ramp returns n records; record i is the scalar-like array [i].
func ramp(t *testing.T, n int) SliceDataset {
	t.Helper()
	ds := make(SliceDataset, n)
	for i := range ds {
		ds[i] = mustArray(t, []float32{float32(i)}, 1)
	}
	return ds
}

func batchValues(t *testing.T, f Field) []float32 {
	t.Helper()
	x, err := TensorOf[float32](f, tensor.NewMockBackend())
	require.NoError(t, err)
	return x.Data()
}

func epoch(t *testing.T, l *Loader[*cpu.CPUBackend]) [][]float32 {
	t.Helper()
	var out [][]float32
	for batch, err := range l.All() {
		require.NoError(t, err)
		out = append(out, batchValues(t, batch))
	}
	return out
}

func TestLoader_Sequential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 3

	l, err := NewLoader(ramp(t, 10), cpu.New(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, l.Len())
	assert.Equal(t, [][]float32{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, {9}}, epoch(t, l))
}

func TestLoader_LastBatchPolicies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 3

	cfg.LastBatch = LastBatchDiscard
	l, err := NewLoader(ramp(t, 10), cpu.New(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())
	assert.Len(t, epoch(t, l), 3)

	cfg.LastBatch = LastBatchRollover
	l, err = NewLoader(ramp(t, 10), cpu.New(), cfg)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}, epoch(t, l))
	assert.Equal(t, [][]float32{{9, 0, 1}, {2, 3, 4}, {5, 6, 7}}, epoch(t, l))
}

func TestLoader_Shuffle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 4
	cfg.Shuffle = true
	cfg.Rand = rand.New(rand.NewPCG(3, 4))

	l, err := NewLoader(ramp(t, 10), cpu.New(), cfg)
	require.NoError(t, err)

	seen := make(map[float32]int)
	for _, batch := range epoch(t, l) {
		for _, v := range batch {
			seen[v]++
		}
	}
	assert.Len(t, seen, 10)
	for v, n := range seen {
		assert.Equal(t, 1, n, "index %v yielded %d times", v, n)
	}
}

func TestLoader_CustomSampler(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.Sampler = NewSequentialSampler(4)

	l, err := NewLoader(ramp(t, 10), cpu.New(), cfg)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {2, 3}}, epoch(t, l))
}

func TestLoader_BatchSampler(t *testing.T) {
	bs, err := NewBatchSampler(NewSequentialSampler(5), 2, LastBatchDiscard)
	require.NoError(t, err)

	l, err := NewLoader(ramp(t, 5), cpu.New(), Config{BatchSampler: bs})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, [][]float32{{0, 1}, {2, 3}}, epoch(t, l))
}

func TestLoader_ConfigErrors(t *testing.T) {
	bs, err := NewBatchSampler(NewSequentialSampler(5), 2, LastBatchKeep)
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"batch sampler with batch size", Config{BatchSampler: bs, BatchSize: 2}},
		{"batch sampler with shuffle", Config{BatchSampler: bs, Shuffle: true}},
		{"batch sampler with sampler", Config{BatchSampler: bs, Sampler: NewSequentialSampler(5)}},
		{"batch sampler with last batch", Config{BatchSampler: bs, LastBatch: LastBatchDiscard}},
		{"shuffle with sampler", Config{BatchSize: 2, Shuffle: true, Sampler: NewSequentialSampler(5)}},
		{"neither", Config{}},
		{"negative batch size", Config{BatchSize: -1}},
		{"bad policy", Config{BatchSize: 2, LastBatch: LastBatch(17)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLoader(ramp(t, 5), cpu.New(), tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, l)
		})
	}

	_, err = NewLoader[*cpu.CPUBackend](nil, cpu.New(), DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

type failingDataset struct {
	SliceDataset
	bad int
}

var errBroken = errors.New("broken record")

func (f failingDataset) Get(i int) (Field, error) {
	if i == f.bad {
		return nil, errBroken
	}
	return f.SliceDataset.Get(i)
}

func TestLoader_GetErrorStopsEpoch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 2

	l, err := NewLoader(failingDataset{SliceDataset: ramp(t, 6), bad: 3}, cpu.New(), cfg)
	require.NoError(t, err)

	var batches int
	var errs []error
	for batch, err := range l.All() {
		if err != nil {
			assert.Nil(t, batch)
			errs = append(errs, err)
			continue
		}
		batches++
	}

	assert.Equal(t, 1, batches)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errBroken)
	assert.Contains(t, errs[0].Error(), "get index 3")
}

func TestLoader_CollationError(t *testing.T) {
	ds := SliceDataset{
		mustArray(t, []float32{1}, 1),
		mustArray(t, []float32{1, 2}, 2),
	}
	cfg := DefaultConfig()
	cfg.BatchSize = 2

	l, err := NewLoader(ds, cpu.New(), cfg)
	require.NoError(t, err)

	for _, err := range l.All() {
		assert.ErrorIs(t, err, ErrBatchify)
	}
}

func TestLoader_NilRecordFirstInBatch(t *testing.T) {
	ds := SliceDataset{nil, mustArray(t, []float32{1}, 1)}
	cfg := DefaultConfig()
	cfg.BatchSize = 2

	l, err := NewLoader(ds, cpu.New(), cfg)
	require.NoError(t, err)

	var errs []error
	for _, err := range l.All() {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrBatchify)
}

func TestLoader_EarlyBreak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 1

	l, err := NewLoader(ramp(t, 10), cpu.New(), cfg)
	require.NoError(t, err)

	n := 0
	for range l.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestLoader_DetectionRecords(t *testing.T) {
	ds := SliceDataset{
		Tuple{mustArray(t, []float32{0, 0, 0}, 3), labelsOf(2, 5, 0)},
		Tuple{mustArray(t, []float32{1, 1, 1}, 3), labelsOf(5, 5, 0)},
		Tuple{mustArray(t, []float32{2, 2, 2}, 3), labelsOf(3, 5, 0)},
	}
	cfg := DefaultConfig()
	cfg.BatchSize = 3

	backend := cpu.New()
	l, err := NewLoader(ds, backend, cfg)
	require.NoError(t, err)
	assert.Same(t, backend, l.Backend())

	for batch, err := range l.All() {
		require.NoError(t, err)
		tuple := batch.(Tuple)

		images, err := TensorOf[float32](tuple[0], backend)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{3, 3}, images.Shape())

		labels, err := TensorOf[float32](tuple[1], backend)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{3, 5, 5}, labels.Shape())
		assert.Equal(t, float32(-1), labels.At(0, 2, 0))
		assert.Equal(t, float32(-1), labels.At(2, 4, 4))
		assert.Equal(t, float32(24), labels.At(1, 4, 4))
	}
}

func TestLoader_PadValue(t *testing.T) {
	ds := SliceDataset{labelsOf(2, 5, 0), labelsOf(5, 5, 0), labelsOf(3, 5, 0)}

	tests := []struct {
		name string
		cfg  Config
		want float32
	}{
		{"zero config", Config{BatchSize: 3}, -1},
		{"default config", func() Config { c := DefaultConfig(); c.BatchSize = 3; return c }(), -1},
		{"explicit zero", Config{BatchSize: 3, PadValue: Pad(0)}, 0},
		{"explicit value", Config{BatchSize: 3, PadValue: Pad(-99)}, -99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLoader(ds, cpu.New(), tt.cfg)
			require.NoError(t, err)

			for batch, err := range l.All() {
				require.NoError(t, err)
				labels, err := TensorOf[float32](batch, l.Backend())
				require.NoError(t, err)
				assert.Equal(t, tensor.Shape{3, 5, 5}, labels.Shape())
				assert.Equal(t, tt.want, labels.At(0, 2, 0))
				assert.Equal(t, tt.want, labels.At(2, 4, 4))
				assert.Equal(t, float32(24), labels.At(1, 4, 4))
			}
		})
	}
}

func TestLoader_BatchSamplerPadsWithDefault(t *testing.T) {
	ds := SliceDataset{labelsOf(0, 2, 0), labelsOf(1, 2, 0)}
	bs, err := NewBatchSampler(NewSequentialSampler(2), 2, LastBatchKeep)
	require.NoError(t, err)

	l, err := NewLoader(ds, cpu.New(), Config{BatchSampler: bs})
	require.NoError(t, err)

	for batch, err := range l.All() {
		require.NoError(t, err)
		assert.Equal(t, []float32{-1, -1, 0, 1}, batchValues(t, batch))
	}
}

func TestLoader_Logging(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.BatchSize = 3
	cfg.LastBatch = LastBatchRollover
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l, err := NewLoader(ramp(t, 4), cpu.New(), cfg)
	require.NoError(t, err)
	epoch(t, l)

	out := buf.String()
	assert.Contains(t, out, "epoch start")
	assert.Contains(t, out, "rollover")
	assert.Contains(t, out, "carried=1")
	assert.Contains(t, out, "component=data.Loader")
}

func TestSubset(t *testing.T) {
	s, err := NewSubset(ramp(t, 10), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())

	f, err := s.Get(3)
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, batchValues(t, f))

	_, err = s.Get(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	clamped, err := NewSubset(ramp(t, 2), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Len())

	_, err = NewSubset(ramp(t, 2), -1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSliceDataset_OutOfRange(t *testing.T) {
	_, err := ramp(t, 2).Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
