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

package classifier

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T, vocabSize int) *trainconfig.ClassifierConfig {
	t.Helper()
	dir := t.TempDir()

	data := strings.Join([]string{
		`{"label": "100", "label_desc": "news_story", "sentence": "a a"}`,
		`{"label": "101", "label_desc": "news_culture", "sentence": "b b"}`,
		`{"label": "100", "label_desc": "news_story", "sentence": "c a"}`,
		`{"label": "101", "label_desc": "news_culture", "sentence": "d b"}`,
	}, "\n")

	return &trainconfig.ClassifierConfig{
		TrainPath:       writeFile(t, dir, "train.json", data),
		ValidPath:       writeFile(t, dir, "dev.json", data),
		VocabPath:       writeFile(t, dir, "vocab.txt", "[PAD]\n[UNK]\n[CLS]\n[SEP]\n[MASK]\na\nb\nc\nd\n"),
		ModelConfigPath: writeFile(t, dir, "bert_config.json", `{"vocab_size": `+strconv.Itoa(vocabSize)+`, "hidden_size": 8, "max_position_embeddings": 8, "type_vocab_size": 2, "initializer_range": 0.5}`),
		OutputDir:       filepath.Join(dir, "out"),
		NumClasses:      2,
		MaxLen:          8,
		BatchSize:       2,
		Epochs:          20,
		LearningRate:    0.05,
		NumHiddenLayers: 12,
		DoLowerCase:     true,
		Runtime: trainconfig.Runtime{
			Replicas: 1,
			Seed:     1,
		},
	}
}

func TestRunAndEvaluate(t *testing.T) {
	cfg := testConfig(t, 9)

	result, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 20, result.Epochs)
	require.Greater(t, result.BestAccuracy, 0.0)
	require.NotEmpty(t, result.RunID)
	require.FileExists(t, result.WeightsPath)

	accuracy, err := Evaluate(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 4, accuracy.Total)
	require.Equal(t, result.BestAccuracy, accuracy.Float())
}

func TestRunVocabMismatch(t *testing.T) {
	cfg := testConfig(t, 6)
	_, err := Run(context.Background(), cfg, nil)
	require.Equal(t, ErrVocabSizeMismatch, errors.GetKind(err))
}

func TestRunLabelExceedsNumClasses(t *testing.T) {
	cfg := testConfig(t, 9)
	cfg.ValidPath = writeFile(t, filepath.Dir(cfg.ValidPath), "dev_game.json", `{"label": "116", "label_desc": "news_game", "sentence": "a"}`)

	_, err := Run(context.Background(), cfg, nil)
	require.Equal(t, dataset.ErrLabelExceedsClasses, errors.GetKind(err))
	require.NoFileExists(t, WeightsPath(cfg))
}

func TestEvaluateWithoutWeights(t *testing.T) {
	cfg := testConfig(t, 9)
	_, err := Evaluate(context.Background(), cfg)
	require.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t, 9)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, nil)
	require.Error(t, err)
	require.NoFileExists(t, WeightsPath(cfg))
}
