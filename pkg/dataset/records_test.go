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

package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"github.com/stretchr/testify/require"
)

func TestRecordReaderCyclesShards(t *testing.T) {
	dir := t.TempDir()
	shard0 := writeFile(t, dir, "corpus.0.jsonl", strings.Join([]string{
		`{"token_ids": [2, 4, 6, 3], "target_ids": [2, 5, 6, 3], "is_masked": [0, 1, 0, 0]}`,
		`{"token_ids": [2, 7, 3], "target_ids": [2, 7, 3], "is_masked": [0, 0, 0]}`,
	}, "\n"))
	shard1 := writeFile(t, dir, "corpus.1.jsonl", `{"token_ids": [2, 8, 3], "target_ids": [2, 9, 3], "is_masked": [0, 1, 0]}`+"\n")

	reader, err := NewRecordReader(RecordReaderConfig{
		Paths:          []string{shard0, shard1},
		Objective:      userconfig.RoBERTaObjective,
		BatchSize:      2,
		SequenceLength: 512,
	})
	require.NoError(t, err)
	defer reader.Close()

	batch, err := reader.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, [][]int{{2, 4, 6, 3}, {2, 7, 3, 0}}, batch.TokenIDs)
	require.Equal(t, [][]int{{2, 5, 6, 3}, {2, 7, 3, 0}}, batch.TargetIDs)
	require.Equal(t, [][]float64{{0, 1, 0, 0}, {0, 0, 0, 0}}, batch.IsMasked)
	require.Equal(t, [][]int{{0, 0, 0, 0}, {0, 0, 0, 0}}, batch.SegmentIDs)
	require.Nil(t, batch.NSP)

	batch, err = reader.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, [][]int{{2, 8, 3, 0}, {2, 4, 6, 3}}, batch.TokenIDs)
}

func TestRecordReaderMissingField(t *testing.T) {
	dir := t.TempDir()
	shard := writeFile(t, dir, "corpus.0.jsonl", `{"token_ids": [2, 4, 3], "target_ids": [2, 4, 3], "is_masked": [0, 1, 0], "segment_ids": [0, 0, 0]}`)

	reader, err := NewRecordReader(RecordReaderConfig{
		Paths:          []string{shard},
		Objective:      userconfig.BERTObjective,
		BatchSize:      1,
		SequenceLength: 512,
	})
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next(context.Background())
	require.Equal(t, ErrMissingRecordField, errors.GetKind(err))
	require.Contains(t, errors.Message(err), "line 1")
}

func TestRecordReaderUniLMSegments(t *testing.T) {
	dir := t.TempDir()
	shard := writeFile(t, dir, "corpus.0.jsonl", `{"token_ids": [2, 10, 11, 3, 12, 13, 3, 14]}`)

	reader, err := NewRecordReader(RecordReaderConfig{
		Paths:          []string{shard},
		Objective:      userconfig.UniLMObjective,
		BatchSize:      1,
		SequenceLength: 7,
		TokenSepID:     3,
	})
	require.NoError(t, err)
	defer reader.Close()

	batch, err := reader.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, [][]int{{2, 10, 11, 3, 12, 13, 3}}, batch.TokenIDs)
	require.Equal(t, [][]int{{0, 0, 0, 0, 1, 1, 1}}, batch.SegmentIDs)
	require.Nil(t, batch.TargetIDs)
}

func TestRecordReaderErrors(t *testing.T) {
	_, err := NewRecordReader(RecordReaderConfig{Objective: userconfig.GPTObjective})
	require.Equal(t, ErrNoShards, errors.GetKind(err))

	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.jsonl", "\n")
	reader, err := NewRecordReader(RecordReaderConfig{
		Paths:          []string{empty},
		Objective:      userconfig.GPTObjective,
		BatchSize:      1,
		SequenceLength: 8,
	})
	require.NoError(t, err)
	_, err = reader.Next(context.Background())
	require.Equal(t, ErrNoRecords, errors.GetKind(err))

	mismatch := writeFile(t, dir, "mismatch.jsonl", `{"token_ids": [2, 4, 3], "target_ids": [2, 4], "is_masked": [0, 1, 0]}`)
	reader, err = NewRecordReader(RecordReaderConfig{
		Paths:          []string{mismatch},
		Objective:      userconfig.SpanBERTObjective,
		BatchSize:      1,
		SequenceLength: 8,
	})
	require.NoError(t, err)
	_, err = reader.Next(context.Background())
	require.Equal(t, ErrRecordLengthMismatch, errors.GetKind(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reader.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
