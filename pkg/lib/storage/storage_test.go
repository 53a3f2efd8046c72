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

package storage

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/stretchr/testify/require"
)

func TestSplitJoin(t *testing.T) {
	dir, key := Split("s3://bucket/saved_model/bert_model.ckpt")
	require.Equal(t, "s3://bucket/saved_model", dir)
	require.Equal(t, "bert_model.ckpt", key)

	dir, key = Split("gs://bucket/corpus.0.jsonl")
	require.Equal(t, "gs://bucket", dir)
	require.Equal(t, "corpus.0.jsonl", key)

	dir, key = Split("training.log")
	require.Equal(t, ".", dir)
	require.Equal(t, "training.log", key)

	require.Equal(t, "s3://bucket/a/b/checkpoint.json", Join("s3://bucket/a", "b", "checkpoint.json"))
	require.Equal(t, filepath.Join("/tmp/a", "checkpoint.json"), Join("/tmp/a", "checkpoint.json"))
}

func TestLocalBucket(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "saved_model")

	b, err := Open(ctx, dir)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.PutBytes(ctx, "epoch_1/weights", []byte("abc")))
	require.NoError(t, b.PutJSON(ctx, "index.json", map[string]int{"step": 3}))

	exists, err := b.Exists(ctx, "epoch_1/weights")
	require.NoError(t, err)
	require.True(t, exists)

	data, err := b.GetBytes(ctx, "epoch_1/weights")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), data)

	onDisk, err := ioutil.ReadFile(filepath.Join(dir, "epoch_1", "weights"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), onDisk)

	var index map[string]int
	require.NoError(t, b.GetJSON(ctx, "index.json", &index))
	require.Equal(t, 3, index["step"])

	keys, err := b.List(ctx, "epoch_1/")
	require.NoError(t, err)
	require.Equal(t, []string{"epoch_1/weights"}, keys)

	_, err = b.GetBytes(ctx, "missing")
	require.Equal(t, ErrNotFound, errors.GetKind(err))

	require.NoError(t, b.DeleteByPrefix(ctx, "epoch_1/"))
	exists, err = b.Exists(ctx, "epoch_1/weights")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestReadWriteFile(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "out", "best_baseline.weights")

	require.NoError(t, WriteFile(ctx, p, []byte("weights")))
	_, err := os.Stat(p)
	require.NoError(t, err)

	data, err := ReadFile(ctx, p)
	require.NoError(t, err)
	require.Equal(t, []byte("weights"), data)

	r, err := OpenFile(ctx, p)
	require.NoError(t, err)
	streamed, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, []byte("weights"), streamed)
}
