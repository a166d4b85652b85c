package data

import (
	"fmt"

	"github.com/born-ml/detect/internal/tensor"
)

// Batchify collates a group of records into one batch.
//
//   - Arrays are stacked along a new leading axis.
//   - Tuples are transposed into per-position groups and collated recursively.
//   - Labels are padded with padValue to the longest record and returned as a
//     float32 Array of shape [len(records), maxRows, width]. maxRows is at
//     least 1, so a batch without any objects is a single padding row.
//
// The leading dimension of every output equals len(records).
func Batchify[B tensor.Backend](b B, records []Field, padValue float32) (Field, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty group", ErrBatchify)
	}

	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w: record %d is nil", ErrBatchify, i)
		}
	}
	kind := records[0].Kind()
	for i, r := range records {
		if r.Kind() != kind {
			return nil, fmt.Errorf("%w: record %d is %s, record 0 is %s", ErrBatchify, i, r.Kind(), kind)
		}
	}

	switch kind {
	case KindArray:
		return stackArrays(b, records)
	case KindTuple:
		return batchTuples(b, records, padValue)
	case KindLabels:
		return padLabels(b, records, padValue)
	default:
		return nil, fmt.Errorf("%w: unknown field kind %s", ErrBatchify, kind)
	}
}

func stackArrays[B tensor.Backend](b B, records []Field) (Field, error) {
	first := records[0].(Array)
	raws := make([]*tensor.RawTensor, len(records))
	for i, r := range records {
		a := r.(Array)
		if a.Raw == nil {
			return nil, fmt.Errorf("%w: array %d has no data", ErrBatchify, i)
		}
		if a.Raw.DType() != first.Raw.DType() {
			return nil, fmt.Errorf("%w: array %d has dtype %s, array 0 has %s",
				ErrBatchify, i, a.Raw.DType(), first.Raw.DType())
		}
		if !a.Shape().Equal(first.Shape()) {
			return nil, fmt.Errorf("%w: array %d has shape %v, array 0 has %v",
				ErrBatchify, i, a.Shape(), first.Shape())
		}
		raws[i] = b.Unsqueeze(a.Raw, 0)
	}
	return Array{Raw: b.Cat(raws, 0)}, nil
}

func batchTuples[B tensor.Backend](b B, records []Field, padValue float32) (Field, error) {
	arity := len(records[0].(Tuple))
	for i, r := range records {
		if n := len(r.(Tuple)); n != arity {
			return nil, fmt.Errorf("%w: tuple %d has %d fields, tuple 0 has %d", ErrBatchify, i, n, arity)
		}
	}

	out := make(Tuple, arity)
	column := make([]Field, len(records))
	for j := range arity {
		for i, r := range records {
			column[i] = r.(Tuple)[j]
		}
		batched, err := Batchify(b, column, padValue)
		if err != nil {
			return nil, fmt.Errorf("tuple field %d: %w", j, err)
		}
		out[j] = batched
	}
	return out, nil
}

func padLabels[B tensor.Backend](b B, records []Field, padValue float32) (Field, error) {
	width := records[0].(Labels).Width
	maxRows := 1
	for i, r := range records {
		l := r.(Labels)
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("labels %d: %w", i, err)
		}
		if l.Width != width {
			return nil, fmt.Errorf("%w: labels %d have width %d, labels 0 have %d", ErrBatchify, i, l.Width, width)
		}
		maxRows = max(maxRows, len(l.Rows))
	}

	raw, err := tensor.NewRaw(tensor.Shape{len(records), maxRows, width}, tensor.Float32, b.Device())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchify, err)
	}
	dst := raw.AsFloat32()
	for i := range dst {
		dst[i] = padValue
	}
	for i, r := range records {
		base := i * maxRows * width
		for k, row := range r.(Labels).Rows {
			copy(dst[base+k*width:], row)
		}
	}
	return Array{Raw: raw}, nil
}
