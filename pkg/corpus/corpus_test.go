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
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"github.com/stretchr/testify/require"
)

const (
	_clsID  = 2
	_sepID  = 3
	_maskID = 4
)

var _vocab = []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "[MASK]", "the", "cat", "sat", "on", "mat", "dog", "ran", "far", "away", "."}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T, objective userconfig.Objective) *trainconfig.CorpusConfig {
	t.Helper()
	dir := t.TempDir()
	text := strings.Join([]string{
		"The cat sat on the mat.",
		"The dog ran far away.",
		"The cat ran.",
		"",
		"",
		"The dog sat on the mat.",
		"The mat ran far away.",
		"",
	}, "\n")

	return &trainconfig.CorpusConfig{
		Objective:      objective,
		InputPaths:     []string{writeFile(t, dir, "a.txt", text), writeFile(t, dir, "b.txt", "The dog sat.\nThe cat sat.\n")},
		OutputDir:      filepath.Join(dir, "corpus"),
		ShardPrefix:    "corpus",
		NumShards:      2,
		VocabPath:      writeFile(t, dir, "vocab.txt", strings.Join(_vocab, "\n")),
		DoLowerCase:    true,
		SequenceLength: 12,
		MaskRate:       0.15,
		MaxSpanLength:  3,
		SpanP:          0.2,
		DupeFactor:     2,
		TokenSepID:     _sepID,
		Runtime:        trainconfig.Runtime{Seed: 5},
	}
}

func newTestMasker(seed int64) *masker {
	return &masker{
		rng:        rand.New(rand.NewSource(seed)),
		rate:       0.3,
		maxSpan:    3,
		spanP:      0.2,
		maskID:     _maskID,
		vocabSize:  len(_vocab),
		structural: map[int]bool{0: true, _clsID: true, _sepID: true},
		reserved:   map[int]bool{0: true, 1: true, _clsID: true, _sepID: true, _maskID: true},
	}
}

func readShards(t *testing.T, stats *Stats, objective userconfig.Objective, batchSize int) *dataset.Batch {
	t.Helper()
	reader, err := dataset.NewRecordReader(dataset.RecordReaderConfig{
		Paths:          stats.Shards,
		Objective:      objective,
		BatchSize:      batchSize,
		SequenceLength: 12,
		TokenSepID:     _sepID,
	})
	require.NoError(t, err)
	defer reader.Close()

	batch, err := reader.Next(context.Background())
	require.NoError(t, err)
	return batch
}

func TestPack(t *testing.T) {
	doc := Document{{1, 2}, {3, 4, 5}, {6, 7, 8, 9, 10, 11, 12}, {13}}
	require.Equal(t, [][]int{{1, 2}, {3, 4, 5}, {6, 7, 8}, {9, 10, 11}, {12, 13}}, pack(doc, 3))
	require.Equal(t, [][]int{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}, {11, 12, 13}}, pack(doc, 5))
	require.Nil(t, pack(Document{}, 5))
}

func TestTruncatePair(t *testing.T) {
	first, second := truncatePair([]int{1, 2, 3, 4}, []int{5, 6}, 4)
	require.Equal(t, []int{1, 2}, first)
	require.Equal(t, []int{5, 6}, second)

	first, second = truncatePair([]int{1}, []int{5, 6, 7}, 2)
	require.Equal(t, []int{1}, first)
	require.Equal(t, []int{5}, second)
}

func TestMaskTokens(t *testing.T) {
	tokens := []int{_clsID, 5, 6, 7, 8, 5, 9, 14, 10, 11, _sepID}
	for seed := int64(0); seed < 20; seed++ {
		input, isMasked := newTestMasker(seed).maskTokens(tokens)
		require.Len(t, input, len(tokens))

		count := 0
		for i, m := range isMasked {
			if m == 0 {
				require.Equal(t, tokens[i], input[i])
				continue
			}
			count++
			require.NotEqual(t, _clsID, tokens[i])
			require.NotEqual(t, _sepID, tokens[i])
			require.NotContains(t, []int{0, 1, _clsID, _sepID}, input[i])
		}
		require.Equal(t, 3, count)
	}
}

func TestMaskSpans(t *testing.T) {
	tokens := []int{_clsID, 5, 6, 7, 8, 5, 9, 14, 10, 11, 12, 13, 5, 6, 7, _sepID}
	for seed := int64(0); seed < 20; seed++ {
		_, isMasked := newTestMasker(seed).maskSpans(tokens)
		require.Zero(t, isMasked[0])
		require.Zero(t, isMasked[len(tokens)-1])

		count := 0
		for _, m := range isMasked {
			count += m
		}
		require.Equal(t, 4, count)
	}
}

func TestSpanLength(t *testing.T) {
	m := newTestMasker(1)
	for i := 0; i < 100; i++ {
		length := m.spanLength()
		require.GreaterOrEqual(t, length, 1)
		require.LessOrEqual(t, length, 3)
	}
}

func TestBuildRoBERTa(t *testing.T) {
	cfg := testConfig(t, userconfig.RoBERTaObjective)
	stats, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, 3, stats.Documents)
	require.Equal(t, 7, stats.Sentences)
	require.Greater(t, stats.MaskedTokens, 0)
	require.Len(t, stats.Shards, 2)
	require.Equal(t, filepath.Join(cfg.OutputDir, "corpus-00000-of-00002.jsonl"), stats.Shards[0])
	for _, shard := range stats.Shards {
		require.FileExists(t, shard)
	}

	batch := readShards(t, stats, userconfig.RoBERTaObjective, stats.Records)
	require.Equal(t, stats.Records, batch.Size())
	for b := range batch.TokenIDs {
		require.Equal(t, _clsID, batch.TargetIDs[b][0])
		require.LessOrEqual(t, len(batch.TokenIDs[b]), cfg.SequenceLength)
	}
}

func TestBuildGPTIsDeterministic(t *testing.T) {
	cfg := testConfig(t, userconfig.GPTObjective)
	first, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(first.Shards[0])
	require.NoError(t, err)

	second, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(second.Shards[0])
	require.NoError(t, err)

	require.Equal(t, string(firstBytes), string(secondBytes))
	require.Zero(t, first.MaskedTokens)
	require.NotContains(t, string(firstBytes), "is_masked")
}

func TestBuildUniLM(t *testing.T) {
	cfg := testConfig(t, userconfig.UniLMObjective)
	cfg.DupeFactor = 1
	stats, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	// consecutive sentence pairs: 2 + 1 + 1
	require.Equal(t, 4, stats.Records)

	batch := readShards(t, stats, userconfig.UniLMObjective, 4)
	for b, tokens := range batch.TokenIDs {
		segments := batch.SegmentIDs[b]
		require.Equal(t, _clsID, tokens[0])
		sep := 0
		for i := 1; i < len(tokens); i++ {
			if tokens[i] == _sepID {
				sep = i
				break
			}
		}
		require.Greater(t, sep, 0)
		require.Zero(t, segments[sep])
		require.Equal(t, 1, segments[sep+1])
	}
}

func TestBuildBERT(t *testing.T) {
	cfg := testConfig(t, userconfig.BERTObjective)
	stats, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 8, stats.Records)

	batch := readShards(t, stats, userconfig.BERTObjective, 8)
	require.Len(t, batch.NSP, 8)
	for _, label := range batch.NSP {
		require.Contains(t, []int{0, 1}, label)
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := testConfig(t, userconfig.UnknownObjective)
	_, err := Build(context.Background(), cfg)
	require.Equal(t, ErrUnsupportedObjective, errors.GetKind(err))

	cfg = testConfig(t, userconfig.BERTObjective)
	cfg.SequenceLength = 4
	_, err = Build(context.Background(), cfg)
	require.Equal(t, ErrSequenceTooShort, errors.GetKind(err))

	cfg = testConfig(t, userconfig.GPTObjective)
	cfg.InputPaths = []string{writeFile(t, t.TempDir(), "empty.txt", "\n\n")}
	_, err = Build(context.Background(), cfg)
	require.Equal(t, ErrNoDocuments, errors.GetKind(err))
}
