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

package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/json"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
)

// ShardName is the key of shard i out of n, e.g. corpus-00003-of-00010.jsonl
func ShardName(prefix string, i int, n int) string {
	return fmt.Sprintf("%s-%05d-of-%05d.jsonl", prefix, i, n)
}

// shardWriter deals records round-robin into JSON-lines shards
type shardWriter struct {
	bucket  *storage.Bucket
	keys    []string
	writers []io.WriteCloser
	buffers []*bufio.Writer
	counts  []int
	next    int
}

func newShardWriter(ctx context.Context, outputDir string, prefix string, numShards int) (*shardWriter, error) {
	bucket, err := storage.Open(ctx, outputDir)
	if err != nil {
		return nil, err
	}

	w := &shardWriter{
		bucket: bucket,
		counts: make([]int, numShards),
	}
	for i := 0; i < numShards; i++ {
		key := ShardName(prefix, i, numShards)
		writer, err := bucket.NewWriter(ctx, key)
		if err != nil {
			w.abort()
			return nil, err
		}
		w.keys = append(w.keys, key)
		w.writers = append(w.writers, writer)
		w.buffers = append(w.buffers, bufio.NewWriter(writer))
	}
	return w, nil
}

func (w *shardWriter) write(record *dataset.Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	buf := w.buffers[w.next]
	if _, err := buf.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, w.bucket.Path(w.keys[w.next]))
	}
	w.counts[w.next]++
	w.next = (w.next + 1) % len(w.buffers)
	return nil
}

// close flushes every shard; a shard is only committed when its writer closes cleanly
func (w *shardWriter) close() error {
	var errs []error
	for i, buf := range w.buffers {
		if err := buf.Flush(); err != nil {
			errs = append(errs, errors.Wrap(err, w.bucket.Path(w.keys[i])))
		}
		if err := w.writers[i].Close(); err != nil {
			errs = append(errs, errors.Wrap(err, w.bucket.Path(w.keys[i])))
		}
	}
	w.bucket.Close()
	return errors.FirstError(errs...)
}

func (w *shardWriter) abort() {
	for _, writer := range w.writers {
		writer.Close()
	}
	w.bucket.Close()
}

func (w *shardWriter) paths() []string {
	paths := make([]string, len(w.keys))
	for i, key := range w.keys {
		paths[i] = w.bucket.Path(key)
	}
	return paths
}
