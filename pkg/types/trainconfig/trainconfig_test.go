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

package trainconfig

import (
	"os"
	"path/filepath"
	"testing"

	cr "github.com/cortexlabs/trainer/pkg/lib/configreader"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"github.com/stretchr/testify/require"
)

func TestParsePretrainConfigDefaults(t *testing.T) {
	cfg, err := ParsePretrainConfig([]byte(`
corpus_paths:
  - corpus/corpus.0.jsonl
  - s3://bucket/corpus/corpus.1.jsonl
model_config_path: model/bert_config.json
`), "/work")
	require.NoError(t, err)

	require.Equal(t, userconfig.RoBERTaObjective, cfg.Objective)
	require.Equal(t, []string{"/work/corpus/corpus.0.jsonl", "s3://bucket/corpus/corpus.1.jsonl"}, cfg.CorpusPaths)
	require.Equal(t, "/work/model/bert_config.json", cfg.ModelConfigPath)
	require.Equal(t, "", cfg.CheckpointPath)
	require.Equal(t, "/work/saved_model/bert_model.ckpt", cfg.ModelSavedPath)
	require.Equal(t, "/work/saved_model_best/bert_model.ckpt", cfg.BestModelSavedPath)
	require.Equal(t, "/work/saved_model", cfg.ModelSavedDir)
	require.Equal(t, "/work/training.log", cfg.TrainingLogPath)

	require.Equal(t, 512, cfg.SequenceLength)
	require.Equal(t, 4096, cfg.BatchSize)
	require.Equal(t, 0.00176, cfg.LearningRate)
	require.Equal(t, 0.01, cfg.WeightDecayRate)
	require.Equal(t, 16, cfg.GradAccumSteps)
	require.Equal(t, 256, cfg.MicroBatchSize())
	require.Equal(t, 200, cfg.Epochs)
	require.Equal(t, []string{"*Norm*", "*bias*"}, cfg.ExcludeFromWeightDecay)
	require.Equal(t, []string{"*Norm*", "*bias*"}, cfg.ExcludeFromLayerAdaptation)
	require.Equal(t, userconfig.LAMBOptimizerType, cfg.Optimizer)
	require.Equal(t, map[int]float64{50000: 1.0, 2000000: 0.0}, cfg.LRSchedule)
	require.False(t, cfg.BiasCorrection)
	require.Equal(t, 3, cfg.TokenSepID)

	require.NotNil(t, cfg.Adversarial)
	require.Equal(t, "Embedding-Token", cfg.Adversarial.EmbeddingName)
	require.Equal(t, 0.5, cfg.Adversarial.Epsilon)

	require.NotNil(t, cfg.EarlyStopping)
	require.Equal(t, "mlm_acc", cfg.EarlyStopping.Monitor)
	require.Equal(t, 10, cfg.EarlyStopping.Patience)
	require.Equal(t, userconfig.AutoMonitorMode, cfg.EarlyStopping.Mode)

	require.Equal(t, 1, cfg.Replicas)
	require.Equal(t, 0, cfg.MetricsPort)
	require.Equal(t, 60, cfg.ResourceLogInterval)
}

func TestParsePretrainConfigOverrides(t *testing.T) {
	cfg, err := ParsePretrainConfig([]byte(`
objective: lm
corpus_paths: [/data/a.jsonl]
model_config_path: /models/config.json
batch_size: 8
grad_accum_steps: 2
steps_per_epoch: 10
epochs: 3
which_optimizer: adam
lr_schedule:
  10: 1.0
  40: 0.0
adversarial: null
early_stopping:
  patience: 2
  mode: max
replicas: 2
`), "/work")
	require.NoError(t, err)

	require.Equal(t, userconfig.GPTObjective, cfg.Objective)
	require.Equal(t, 4, cfg.MicroBatchSize())
	require.Equal(t, 3, cfg.Epochs)
	require.Equal(t, userconfig.AdamOptimizerType, cfg.Optimizer)
	require.Equal(t, map[int]float64{10: 1.0, 40: 0.0}, cfg.LRSchedule)
	require.Nil(t, cfg.Adversarial)
	require.Equal(t, "lm_acc", cfg.EarlyStopping.Monitor)
	require.Equal(t, 2, cfg.EarlyStopping.Patience)
	require.Equal(t, userconfig.MaxMonitorMode, cfg.EarlyStopping.Mode)
	require.Equal(t, 2, cfg.Replicas)
}

func TestParsePretrainConfigErrors(t *testing.T) {
	_, err := ParsePretrainConfig([]byte(`
model_config_path: /models/config.json
`), "/work")
	require.Error(t, err)
	require.Equal(t, cr.ErrMustBeDefined, errors.GetKind(err))

	_, err = ParsePretrainConfig([]byte(`
objective: xlnet
corpus_paths: [/data/a.jsonl]
model_config_path: /models/config.json
`), "/work")
	require.Error(t, err)
	require.Equal(t, cr.ErrInvalidStr, errors.GetKind(err))

	_, err = ParsePretrainConfig([]byte(`
corpus_paths: [/data/a.jsonl]
model_config_path: /models/config.json
batch_size: 4
grad_accum_steps: 8
`), "/work")
	require.Error(t, err)
	require.Equal(t, ErrBatchSizeTooSmall, errors.GetKind(err))

	_, err = ParsePretrainConfig([]byte(`
corpus_paths: [/data/a.jsonl]
model_config_path: /models/config.json
lr_schedule:
  -5: 1.0
`), "/work")
	require.Error(t, err)
	require.Equal(t, ErrNegativeScheduleStep, errors.GetKind(err))

	_, err = ParsePretrainConfig([]byte(`
corpus_paths: [/data/a.jsonl]
model_config_path: /models/config.json
learning_rat: 0.1
`), "/work")
	require.Error(t, err)
	require.Equal(t, cr.ErrUnsupportedKey, errors.GetKind(err))
}

func TestParseClassifierConfigDefaults(t *testing.T) {
	cfg, err := ParseClassifierConfig([]byte(`
train_path: tnews_public/train.json
valid_path: tnews_public/dev.json
vocab_path: ../model/vocab.txt
model_config_path: ../model/bert_config.json
`), "/work/example")
	require.NoError(t, err)

	require.Equal(t, "/work/example/tnews_public/train.json", cfg.TrainPath)
	require.Equal(t, "/work/model/vocab.txt", cfg.VocabPath)
	require.Equal(t, "/work/example", cfg.OutputDir)
	require.Equal(t, 16, cfg.NumClasses)
	require.Equal(t, 64, cfg.MaxLen)
	require.Equal(t, 32, cfg.BatchSize)
	require.Equal(t, 5, cfg.Epochs)
	require.Equal(t, 1e-5, cfg.LearningRate)
	require.Equal(t, 12, cfg.NumHiddenLayers)
	require.True(t, cfg.DoLowerCase)
	require.True(t, cfg.Shuffle)
}

func TestReadCorpusConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
objective: unilm
input_paths: [raw/wiki.txt]
output_dir: corpus_out
vocab_path: vocab.txt
sequence_length: 128
`), 0644))

	cfg, err := ReadCorpusConfig(configPath)
	require.NoError(t, err)
	require.Equal(t, userconfig.UniLMObjective, cfg.Objective)
	require.Equal(t, []string{filepath.Join(dir, "raw/wiki.txt")}, cfg.InputPaths)
	require.Equal(t, filepath.Join(dir, "corpus_out"), cfg.OutputDir)
	require.Equal(t, "corpus", cfg.ShardPrefix)
	require.Equal(t, 10, cfg.NumShards)
	require.Equal(t, 128, cfg.SequenceLength)
	require.Equal(t, 0.15, cfg.MaskRate)
	require.Equal(t, 3, cfg.TokenSepID)
}
