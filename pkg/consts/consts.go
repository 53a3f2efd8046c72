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

package consts

var (
	TrainerVersion      = "master" // TRAINER_VERSION
	TrainerVersionMinor = "master" // TRAINER_VERSION_MINOR

	// tokenizer special tokens
	TokenPad  = "[PAD]"
	TokenUnk  = "[UNK]"
	TokenCLS  = "[CLS]"
	TokenSEP  = "[SEP]"
	TokenMask = "[MASK]"

	// parameter names shared by the model builders, the optimizer exclusion lists and the adversarial hook
	TokenEmbeddingName    = "Embedding-Token"
	SegmentEmbeddingName  = "Embedding-Segment"
	PositionEmbeddingName = "Embedding-Position"
	EmbeddingNormName     = "Embedding-Norm"
	EncoderDenseName      = "Encoder-Dense"
	MLMBiasName           = "MLM-Bias"
	NSPProbaName          = "NSP-Proba"
	ClassifierDenseName   = "Classifier-Dense"

	// output file names
	CheckpointIndexFileName     = "checkpoint.json"
	CheckpointVariablesFileName = "variables.bin"
	CheckpointFileName          = "bert_model.ckpt"
	BestClassifierWeightsName   = "best_baseline.weights"
	TrainingLogFileName         = "training.log"

	WeightsMagic    = "trainer-weights/v1"
	CheckpointMagic = "trainer-checkpoint/v1"

	// additive stabilizer for mask-weighted means
	Epsilon = 1e-7

	TelemetrySentryDSNEnvVar       = "TRAINER_TELEMETRY_SENTRY_DSN"
	TelemetrySegmentWriteKeyEnvVar = "TRAINER_TELEMETRY_SEGMENT_WRITE_KEY"
	TelemetryDisableEnvVar         = "TRAINER_TELEMETRY_DISABLE"

	MetricsNamespace = "trainer"
)
