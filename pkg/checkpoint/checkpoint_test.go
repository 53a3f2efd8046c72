/*
Copyright 2022 Cortex Labs, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testParams(t *testing.T) *nn.Params {
	t.Helper()
	params, err := nn.NewParams(
		&nn.Param{Name: "Embedding-Token/embeddings", Value: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})},
		&nn.Param{Name: "Encoder-Dense/bias", Value: mat.NewDense(1, 3, []float64{-0.5, 0, 0.25})},
		&nn.Param{Name: "Classifier-Dense/kernel", Value: mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})},
	)
	require.NoError(t, err)
	return params
}

func zeroed(t *testing.T, params *nn.Params) *nn.Params {
	t.Helper()
	var list []*nn.Param
	for _, param := range params.List() {
		rows, cols := param.Value.Dims()
		list = append(list, &nn.Param{Name: param.Name, Value: mat.NewDense(rows, cols, nil)})
	}
	copied, err := nn.NewParams(list...)
	require.NoError(t, err)
	return copied
}

func requireSameValues(t *testing.T, expected *nn.Params, actual *nn.Params) {
	t.Helper()
	for _, param := range expected.List() {
		other, ok := actual.Get(param.Name)
		require.True(t, ok, param.Name)
		require.True(t, mat.Equal(param.Value, other.Value), param.Name)
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), consts.BestClassifierWeightsName)
	params := testParams(t)

	require.NoError(t, SaveWeights(ctx, path, params, "run-1"))

	snapshot, err := LoadWeights(ctx, path)
	require.NoError(t, err)
	require.Equal(t, WeightsFormat, snapshot.Format)
	require.Equal(t, "run-1", snapshot.RunID)

	restored := zeroed(t, params)
	require.NoError(t, snapshot.Restore(restored, false))
	requireSameValues(t, params, restored)
}

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	prefix := filepath.Join(t.TempDir(), "saved_model", consts.CheckpointFileName)
	params := testParams(t)

	require.NoError(t, SaveCheckpoint(ctx, prefix, params, "run-2", 42))
	require.FileExists(t, filepath.Join(prefix, consts.CheckpointIndexFileName))
	require.FileExists(t, filepath.Join(prefix, consts.CheckpointVariablesFileName))

	info, err := os.Stat(filepath.Join(prefix, consts.CheckpointVariablesFileName))
	require.NoError(t, err)
	require.EqualValues(t, params.NumValues()*8, info.Size())

	snapshot, err := LoadCheckpoint(ctx, prefix)
	require.NoError(t, err)
	require.Equal(t, CheckpointFormat, snapshot.Format)
	require.Equal(t, "run-2", snapshot.RunID)

	restored := zeroed(t, params)
	require.NoError(t, snapshot.Restore(restored, false))
	requireSameValues(t, params, restored)
}

func TestRestorePartial(t *testing.T) {
	ctx := context.Background()
	prefix := filepath.Join(t.TempDir(), "ckpt")
	params := testParams(t)
	encoder := params.Subset(func(name string) bool { return name != "Classifier-Dense/kernel" })
	require.NoError(t, SaveCheckpoint(ctx, prefix, encoder, NewRunID(), 0))

	snapshot, err := LoadCheckpoint(ctx, prefix)
	require.NoError(t, err)

	err = snapshot.Restore(zeroed(t, params), false)
	require.Equal(t, nn.ErrParamNotFound, errors.GetKind(err))

	restored := zeroed(t, params)
	require.NoError(t, snapshot.Restore(restored, true))
	requireSameValues(t, encoder, restored)
	kernel, _ := restored.Get("Classifier-Dense/kernel")
	require.Equal(t, 0.0, mat.Sum(kernel.Value))
}

func TestFormatMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	params := testParams(t)

	weightsPath := filepath.Join(dir, "model.weights")
	require.NoError(t, SaveWeights(ctx, weightsPath, params, ""))
	_, err := LoadCheckpoint(ctx, weightsPath)
	require.Equal(t, ErrFormatMismatch, errors.GetKind(err))

	prefix := filepath.Join(dir, "ckpt")
	require.NoError(t, SaveCheckpoint(ctx, prefix, params, "", 0))
	_, err = LoadWeights(ctx, prefix)
	require.Equal(t, ErrFormatMismatch, errors.GetKind(err))

	_, err = LoadWeights(ctx, filepath.Join(prefix, consts.CheckpointIndexFileName))
	require.Equal(t, ErrFormatMismatch, errors.GetKind(err))
}

func TestLoadDetectsFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	params := testParams(t)

	weightsPath := filepath.Join(dir, "model.weights")
	require.NoError(t, SaveWeights(ctx, weightsPath, params, "w"))
	snapshot, err := Load(ctx, weightsPath)
	require.NoError(t, err)
	require.Equal(t, WeightsFormat, snapshot.Format)
	require.Equal(t, "w", snapshot.RunID)

	prefix := filepath.Join(dir, "ckpt")
	require.NoError(t, SaveCheckpoint(ctx, prefix, params, "c", 3))
	snapshot, err = Load(ctx, prefix)
	require.NoError(t, err)
	require.Equal(t, CheckpointFormat, snapshot.Format)
	require.Equal(t, "c", snapshot.RunID)

	_, err = Load(ctx, filepath.Join(dir, "missing"))
	require.Equal(t, ErrNotFound, errors.GetKind(err))
}

func TestNotFoundAndCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := LoadWeights(ctx, filepath.Join(dir, "missing.weights"))
	require.Equal(t, ErrNotFound, errors.GetKind(err))

	_, err = LoadCheckpoint(ctx, filepath.Join(dir, "missing"))
	require.Equal(t, ErrNotFound, errors.GetKind(err))

	garbage := filepath.Join(dir, "garbage.weights")
	require.NoError(t, os.WriteFile(garbage, []byte("not a snapshot"), 0644))
	_, err = LoadWeights(ctx, garbage)
	require.Equal(t, ErrCorrupt, errors.GetKind(err))
}

func TestEpochPath(t *testing.T) {
	require.Equal(t, filepath.Join("saved_model_3", "bert_model.ckpt"), EpochPath("saved_model", 3))
	require.Equal(t, "s3://bucket/runs/saved_model_0/bert_model.ckpt", EpochPath("s3://bucket/runs/saved_model", 0))
	require.NotEqual(t, NewRunID(), NewRunID())
}
