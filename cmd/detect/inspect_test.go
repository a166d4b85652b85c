package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/detect/data"
)

func TestRunInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds.safetensors")
	images, err := data.NewArray(make([]float32, 5*4), 5, 4)
	require.NoError(t, err)
	labels := make([]data.Labels, 5)
	for i := range labels {
		rows := make([][]float32, i%3)
		for r := range rows {
			rows[r] = []float32{1, 0, 0, 1, 1}
		}
		labels[i] = data.Labels{Width: 5, Rows: rows}
	}
	require.NoError(t, data.WriteSafetensors(path, images, labels, 5))

	require.NoError(t, runInspect([]string{"-data", path, "-batch", "2", "-last", "rollover", "-epochs", "2", "-seed", "9", "-shuffle"}))
	require.NoError(t, runInspect([]string{"-data", path, "-limit", "3"}))

	assert.Error(t, runInspect(nil))
	assert.Error(t, runInspect([]string{"-data", path, "-last", "sometimes"}))
	assert.Error(t, runInspect([]string{"-data", path, "-batch", "0"}))
}

func TestDescribe(t *testing.T) {
	a, err := data.NewArray([]int32{1, 2}, 2)
	require.NoError(t, err)
	assert.Equal(t, "(int32[2], labels)", describe(data.Tuple{a, data.Labels{Width: 1}}))
}
