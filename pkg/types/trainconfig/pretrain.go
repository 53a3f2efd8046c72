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
	"github.com/cortexlabs/trainer/pkg/consts"
	cr "github.com/cortexlabs/trainer/pkg/lib/configreader"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/pointer"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

type PretrainConfig struct {
	Objective                  userconfig.Objective     `json:"objective" yaml:"objective"`
	CorpusPaths                []string                 `json:"corpus_paths" yaml:"corpus_paths"`
	ModelConfigPath            string                   `json:"model_config_path" yaml:"model_config_path"`
	CheckpointPath             string                   `json:"checkpoint_path" yaml:"checkpoint_path"`
	ModelSavedPath             string                   `json:"model_saved_path" yaml:"model_saved_path"`
	BestModelSavedPath         string                   `json:"best_model_saved_path" yaml:"best_model_saved_path"`
	ModelSavedDir              string                   `json:"model_saved_dir" yaml:"model_saved_dir"`
	TrainingLogPath            string                   `json:"training_log_path" yaml:"training_log_path"`
	SequenceLength             int                      `json:"sequence_length" yaml:"sequence_length"`
	BatchSize                  int                      `json:"batch_size" yaml:"batch_size"`
	LearningRate               float64                  `json:"learning_rate" yaml:"learning_rate"`
	WeightDecayRate            float64                  `json:"weight_decay_rate" yaml:"weight_decay_rate"`
	NumWarmupSteps             int                      `json:"num_warmup_steps" yaml:"num_warmup_steps"`
	NumTrainSteps              int                      `json:"num_train_steps" yaml:"num_train_steps"`
	StepsPerEpoch              int                      `json:"steps_per_epoch" yaml:"steps_per_epoch"`
	GradAccumSteps             int                      `json:"grad_accum_steps" yaml:"grad_accum_steps"`
	Epochs                     int                      `json:"epochs" yaml:"epochs"`
	ExcludeFromWeightDecay     []string                 `json:"exclude_from_weight_decay" yaml:"exclude_from_weight_decay"`
	ExcludeFromLayerAdaptation []string                 `json:"exclude_from_layer_adaptation" yaml:"exclude_from_layer_adaptation"`
	Optimizer                  userconfig.OptimizerType `json:"which_optimizer" yaml:"which_optimizer"`
	LRSchedule                 map[int]float64          `json:"lr_schedule" yaml:"lr_schedule"`
	BiasCorrection             bool                     `json:"bias_correction" yaml:"bias_correction"`
	TokenSepID                 int                      `json:"token_sep_id" yaml:"token_sep_id"`
	Adversarial                *AdversarialConfig       `json:"adversarial" yaml:"adversarial"`
	EarlyStopping              *EarlyStoppingConfig     `json:"early_stopping" yaml:"early_stopping"`
	Runtime
}

type AdversarialConfig struct {
	EmbeddingName string  `json:"embedding_name" yaml:"embedding_name"`
	Epsilon       float64 `json:"epsilon" yaml:"epsilon"`
}

type EarlyStoppingConfig struct {
	Monitor  string                 `json:"monitor" yaml:"monitor"`
	Patience int                    `json:"patience" yaml:"patience"`
	Mode     userconfig.MonitorMode `json:"mode" yaml:"mode"`
}

// MicroBatchSize is the number of records per micro-step
func (cfg *PretrainConfig) MicroBatchSize() int {
	return cfg.BatchSize / cfg.GradAccumSteps
}

func pretrainValidation(baseDir string) *cr.StructValidation {
	fields := []*cr.StructFieldValidation{
		{
			StructField: "Objective",
			StringValidation: &cr.StringValidation{
				Default:       userconfig.RoBERTaObjective.String(),
				AllowedValues: append(userconfig.ObjectiveTypes(), "mlm", "lm", "mlm+nsp"),
			},
			Parser: func(str string) (interface{}, error) {
				return userconfig.ObjectiveFromString(str), nil
			},
		},
		{
			StructField: "CorpusPaths",
			StringListValidation: cr.GetPathListValidation(&cr.PathValidation{
				Required: true,
				BaseDir:  baseDir,
			}, 1),
		},
		requiredPathField("ModelConfigPath", baseDir),
		optionalPathField("CheckpointPath", "", baseDir),
		optionalPathField("ModelSavedPath", "saved_model/"+consts.CheckpointFileName, baseDir),
		optionalPathField("BestModelSavedPath", "saved_model_best/"+consts.CheckpointFileName, baseDir),
		optionalPathField("ModelSavedDir", "saved_model", baseDir),
		optionalPathField("TrainingLogPath", consts.TrainingLogFileName, baseDir),
		{
			StructField: "SequenceLength",
			IntValidation: &cr.IntValidation{
				Default:     512,
				GreaterThan: pointer.Int(1),
			},
		},
		{
			StructField: "BatchSize",
			IntValidation: &cr.IntValidation{
				Default:     4096,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "LearningRate",
			Float64Validation: &cr.Float64Validation{
				Default:     0.00176,
				GreaterThan: pointer.Float64(0),
			},
		},
		{
			StructField: "WeightDecayRate",
			Float64Validation: &cr.Float64Validation{
				Default:              0.01,
				GreaterThanOrEqualTo: pointer.Float64(0),
			},
		},
		{
			StructField: "NumWarmupSteps",
			IntValidation: &cr.IntValidation{
				Default:              3125,
				GreaterThanOrEqualTo: pointer.Int(0),
			},
		},
		{
			StructField: "NumTrainSteps",
			IntValidation: &cr.IntValidation{
				Default:     125000,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "StepsPerEpoch",
			IntValidation: &cr.IntValidation{
				Default:     10000,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "GradAccumSteps",
			IntValidation: &cr.IntValidation{
				Default:     16,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "Epochs",
			IntValidation: &cr.IntValidation{
				Default:              0,
				GreaterThanOrEqualTo: pointer.Int(0),
			},
		},
		{
			StructField: "ExcludeFromWeightDecay",
			StringListValidation: &cr.StringListValidation{
				Default:           []string{"*Norm*", "*bias*"},
				AllowExplicitNull: true,
			},
		},
		{
			StructField: "ExcludeFromLayerAdaptation",
			StringListValidation: &cr.StringListValidation{
				Default:           []string{"*Norm*", "*bias*"},
				AllowExplicitNull: true,
			},
		},
		{
			StructField: "Optimizer",
			StringValidation: &cr.StringValidation{
				Default:       userconfig.LAMBOptimizerType.String(),
				AllowedValues: userconfig.OptimizerTypeStrings(),
			},
			Parser: func(str string) (interface{}, error) {
				return userconfig.OptimizerTypeFromString(str), nil
			},
		},
		{
			StructField: "LRSchedule",
			IntFloat64MapValidation: &cr.IntFloat64MapValidation{
				Validator: validateSchedule,
			},
		},
		{
			StructField: "BiasCorrection",
			BoolValidation: &cr.BoolValidation{
				Default: false,
			},
		},
		{
			StructField: "TokenSepID",
			IntValidation: &cr.IntValidation{
				Default:              3,
				GreaterThanOrEqualTo: pointer.Int(0),
			},
		},
		{
			StructField: "Adversarial",
			StructValidation: &cr.StructValidation{
				AllowExplicitNull: true,
				StructFieldValidations: []*cr.StructFieldValidation{
					{
						StructField: "EmbeddingName",
						StringValidation: &cr.StringValidation{
							Default: consts.TokenEmbeddingName,
						},
					},
					{
						StructField: "Epsilon",
						Float64Validation: &cr.Float64Validation{
							Default:     0.5,
							GreaterThan: pointer.Float64(0),
						},
					},
				},
			},
		},
		{
			StructField: "EarlyStopping",
			StructValidation: &cr.StructValidation{
				AllowExplicitNull: true,
				StructFieldValidations: []*cr.StructFieldValidation{
					{
						StructField: "Monitor",
						StringValidation: &cr.StringValidation{
							AllowEmpty: true,
						},
					},
					{
						StructField: "Patience",
						IntValidation: &cr.IntValidation{
							Default:              10,
							GreaterThanOrEqualTo: pointer.Int(0),
						},
					},
					{
						StructField: "Mode",
						StringValidation: &cr.StringValidation{
							Default:       userconfig.AutoMonitorMode.String(),
							AllowedValues: userconfig.MonitorModeStrings()[1:],
						},
						Parser: func(str string) (interface{}, error) {
							return userconfig.MonitorModeFromString(str), nil
						},
					},
				},
			},
		},
	}

	return &cr.StructValidation{
		StructFieldValidations: append(fields, runtimeFieldValidations()...),
	}
}

func validateSchedule(schedule map[int]float64) (map[int]float64, error) {
	for step, multiplier := range schedule {
		if step < 0 {
			return nil, ErrorNegativeScheduleStep(step)
		}
		if multiplier < 0 {
			return nil, ErrorNegativeScheduleMultiplier(step, multiplier)
		}
	}
	return schedule, nil
}

// complete fills the fields whose defaults depend on other fields
func (cfg *PretrainConfig) complete() error {
	if cfg.BatchSize < cfg.GradAccumSteps {
		return ErrorBatchSizeTooSmall(cfg.BatchSize, cfg.GradAccumSteps)
	}

	if cfg.Epochs == 0 {
		cfg.Epochs = cfg.NumTrainSteps * cfg.GradAccumSteps / cfg.StepsPerEpoch
		if cfg.Epochs == 0 {
			cfg.Epochs = 1
		}
	}

	if len(cfg.LRSchedule) == 0 {
		cfg.LRSchedule = map[int]float64{
			cfg.NumWarmupSteps * cfg.GradAccumSteps: 1.0,
			cfg.NumTrainSteps * cfg.GradAccumSteps:  0.0,
		}
	}

	if cfg.EarlyStopping != nil && cfg.EarlyStopping.Monitor == "" {
		cfg.EarlyStopping.Monitor = DefaultMonitor(cfg.Objective)
	}

	return nil
}

// DefaultMonitor is the accuracy output of the objective
func DefaultMonitor(objective userconfig.Objective) string {
	switch objective {
	case userconfig.GPTObjective:
		return "lm_acc"
	case userconfig.UniLMObjective:
		return "unilm_acc"
	default:
		return "mlm_acc"
	}
}

func ReadPretrainConfig(configPath string) (*PretrainConfig, error) {
	cfg := &PretrainConfig{}
	if err := readConfig(cfg, configPath, pretrainValidation); err != nil {
		return nil, err
	}
	if err := cfg.complete(); err != nil {
		return nil, errors.Wrap(err, configPath)
	}
	return cfg, nil
}

// ParsePretrainConfig parses YAML bytes; relative paths resolve against baseDir
func ParsePretrainConfig(yamlBytes []byte, baseDir string) (*PretrainConfig, error) {
	cfg := &PretrainConfig{}
	errs := cr.ParseYAMLBytes(cfg, pretrainValidation(baseDir), yamlBytes)
	if err := errors.FirstError(errs...); err != nil {
		return nil, err
	}
	if err := cfg.complete(); err != nil {
		return nil, err
	}
	return cfg, nil
}
