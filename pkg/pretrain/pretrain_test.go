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

package pretrain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cortexlabs/trainer/pkg/checkpoint"
	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"github.com/stretchr/testify/require"
)

const _modelConfig = `{"vocab_size": 8, "hidden_size": 4, "max_position_embeddings": 8, "type_vocab_size": 2, "initializer_range": 0.5}`

func writeFile(t *testing.T, dir string, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func testConfig(t *testing.T, objective userconfig.Objective) *trainconfig.PretrainConfig {
	t.Helper()
	dir := t.TempDir()

	switch objective {
	case userconfig.GPTObjective, userconfig.UniLMObjective:
		writeFile(t, dir, "corpus-00000-of-00002.jsonl",
			`{"token_ids": [2, 5, 4, 3, 6, 3]}`,
			`{"token_ids": [2, 6, 3, 7, 3]}`,
		)
		writeFile(t, dir, "corpus-00001-of-00002.jsonl",
			`{"token_ids": [2, 7, 5, 3, 4, 4, 3]}`,
		)
	default:
		writeFile(t, dir, "corpus-00000-of-00002.jsonl",
			`{"token_ids": [2, 5, 4, 6, 3], "segment_ids": [0, 0, 0, 1, 1], "target_ids": [2, 5, 7, 6, 3], "is_masked": [0, 0, 1, 0, 0], "nsp": 1}`,
			`{"token_ids": [2, 4, 6, 3], "segment_ids": [0, 0, 1, 1], "target_ids": [2, 5, 6, 3], "is_masked": [0, 1, 0, 0], "nsp": 0}`,
		)
		writeFile(t, dir, "corpus-00001-of-00002.jsonl",
			`{"token_ids": [2, 7, 4, 5, 6, 3], "segment_ids": [0, 0, 0, 1, 1, 1], "target_ids": [2, 7, 6, 5, 6, 3], "is_masked": [0, 0, 1, 0, 0, 0], "nsp": 1}`,
		)
	}

	return &trainconfig.PretrainConfig{
		Objective:                  objective,
		CorpusPaths:                []string{filepath.Join(dir, "corpus-*.jsonl")},
		ModelConfigPath:            writeFile(t, dir, "bert_config.json", _modelConfig),
		ModelSavedPath:             filepath.Join(dir, "saved_model", consts.CheckpointFileName),
		BestModelSavedPath:         filepath.Join(dir, "saved_model_best", consts.CheckpointFileName),
		ModelSavedDir:              filepath.Join(dir, "saved_model"),
		TrainingLogPath:            filepath.Join(dir, consts.TrainingLogFileName),
		SequenceLength:             6,
		BatchSize:                  4,
		LearningRate:               0.01,
		WeightDecayRate:            0.01,
		StepsPerEpoch:              2,
		GradAccumSteps:             2,
		Epochs:                     3,
		ExcludeFromWeightDecay:     []string{"*Norm*", "*bias*"},
		ExcludeFromLayerAdaptation: []string{"*Norm*", "*bias*"},
		Optimizer:                  userconfig.LAMBOptimizerType,
		LRSchedule:                 map[int]float64{0: 1},
		TokenSepID:                 3,
		Runtime: trainconfig.Runtime{
			Replicas: 2,
			Seed:     7,
		},
	}
}

func TestRunRoBERTa(t *testing.T) {
	cfg := testConfig(t, userconfig.RoBERTaObjective)
	cfg.Adversarial = &trainconfig.AdversarialConfig{EmbeddingName: consts.TokenEmbeddingName, Epsilon: 0.5}

	result, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 3, result.Epochs)
	require.False(t, result.Stopped)
	require.EqualValues(t, 3, result.Updates)
	require.Less(t, result.BestLoss, 1e6)
	require.Contains(t, result.Last, "mlm_acc")

	for _, path := range []string{
		cfg.ModelSavedPath,
		checkpoint.EpochPath(cfg.ModelSavedDir, 0),
		checkpoint.EpochPath(cfg.ModelSavedDir, 2),
	} {
		snapshot, err := checkpoint.LoadWeights(context.Background(), path)
		require.NoError(t, err)
		require.Equal(t, result.RunID, snapshot.RunID)
	}
	require.FileExists(t, filepath.Join(cfg.BestModelSavedPath, consts.CheckpointIndexFileName))

	log, err := os.ReadFile(cfg.TrainingLogPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(log)), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "epoch,loss,mlm_acc,mlm_loss", lines[0])
	require.True(t, strings.HasPrefix(lines[3], "2,"))

	snapshot, err := checkpoint.LoadCheckpoint(context.Background(), cfg.BestModelSavedPath)
	require.NoError(t, err)
	require.Equal(t, result.RunID, snapshot.RunID)
}

func TestRunResumesIntoBERT(t *testing.T) {
	first := testConfig(t, userconfig.RoBERTaObjective)
	first.Epochs = 1
	_, err := Run(context.Background(), first, nil)
	require.NoError(t, err)

	for _, path := range []string{first.ModelSavedPath, first.BestModelSavedPath} {
		cfg := testConfig(t, userconfig.BERTObjective)
		cfg.CheckpointPath = path
		cfg.Optimizer = userconfig.AdamOptimizerType
		cfg.Epochs = 1

		result, err := Run(context.Background(), cfg, nil)
		require.NoError(t, err, path)
		require.Contains(t, result.Last, "nsp_acc")
		require.Contains(t, result.Last, "mlm_acc")
	}
}

func TestRunCorruptSnapshot(t *testing.T) {
	cfg := testConfig(t, userconfig.GPTObjective)
	cfg.CheckpointPath = writeFile(t, t.TempDir(), "best_baseline.weights", "not msgpack")

	_, err := Run(context.Background(), cfg, nil)
	require.Equal(t, checkpoint.ErrCorrupt, errors.GetKind(err))
}

func TestRunCausalObjectives(t *testing.T) {
	for _, objective := range []userconfig.Objective{userconfig.GPTObjective, userconfig.UniLMObjective} {
		cfg := testConfig(t, objective)
		cfg.Epochs = 5
		cfg.EarlyStopping = &trainconfig.EarlyStoppingConfig{
			Monitor:  trainconfig.DefaultMonitor(objective),
			Patience: 0,
			Mode:     userconfig.AutoMonitorMode,
		}

		result, err := Run(context.Background(), cfg, nil)
		require.NoError(t, err, objective.String())
		require.GreaterOrEqual(t, result.Epochs, 1)
		require.LessOrEqual(t, result.Epochs, 5)
		if result.Epochs < 5 {
			require.True(t, result.Stopped)
		}
		require.Contains(t, result.Last, trainconfig.DefaultMonitor(objective))
	}
}

func TestRunSequenceLengthTooLong(t *testing.T) {
	cfg := testConfig(t, userconfig.SpanBERTObjective)
	cfg.SequenceLength = 9

	_, err := Run(context.Background(), cfg, nil)
	require.Equal(t, ErrSequenceLengthTooLong, errors.GetKind(err))
}

func TestExpandShards(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "corpus-00001-of-00002.jsonl", "{}")
	a := writeFile(t, dir, "corpus-00000-of-00002.jsonl", "{}")
	writeFile(t, dir, "other.jsonl", "{}")
	explicit := filepath.Join(dir, "explicit.jsonl")

	shards, err := ExpandShards(context.Background(), []string{
		filepath.Join(dir, "corpus-*-of-*.jsonl"),
		a,
		explicit,
	})
	require.NoError(t, err)
	require.Equal(t, []string{a, b, explicit}, shards)

	_, err = ExpandShards(context.Background(), []string{filepath.Join(dir, "missing-*.jsonl")})
	require.Equal(t, ErrNoCorpusShards, errors.GetKind(err))
}
