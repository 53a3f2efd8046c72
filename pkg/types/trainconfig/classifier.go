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
	cr "github.com/cortexlabs/trainer/pkg/lib/configreader"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/pointer"
)

type ClassifierConfig struct {
	TrainPath       string  `json:"train_path" yaml:"train_path"`
	ValidPath       string  `json:"valid_path" yaml:"valid_path"`
	VocabPath       string  `json:"vocab_path" yaml:"vocab_path"`
	ModelConfigPath string  `json:"model_config_path" yaml:"model_config_path"`
	CheckpointPath  string  `json:"checkpoint_path" yaml:"checkpoint_path"`
	OutputDir       string  `json:"output_dir" yaml:"output_dir"`
	NumClasses      int     `json:"num_classes" yaml:"num_classes"`
	MaxLen          int     `json:"maxlen" yaml:"maxlen"`
	BatchSize       int     `json:"batch_size" yaml:"batch_size"`
	Epochs          int     `json:"epochs" yaml:"epochs"`
	LearningRate    float64 `json:"learning_rate" yaml:"learning_rate"`
	NumHiddenLayers int     `json:"num_hidden_layers" yaml:"num_hidden_layers"`
	DoLowerCase     bool    `json:"do_lower_case" yaml:"do_lower_case"`
	Shuffle         bool    `json:"shuffle" yaml:"shuffle"`
	Runtime
}

func classifierValidation(baseDir string) *cr.StructValidation {
	fields := []*cr.StructFieldValidation{
		requiredPathField("TrainPath", baseDir),
		requiredPathField("ValidPath", baseDir),
		requiredPathField("VocabPath", baseDir),
		requiredPathField("ModelConfigPath", baseDir),
		optionalPathField("CheckpointPath", "", baseDir),
		optionalPathField("OutputDir", ".", baseDir),
		{
			StructField: "NumClasses",
			IntValidation: &cr.IntValidation{
				Default:     16,
				GreaterThan: pointer.Int(1),
			},
		},
		{
			StructField: "MaxLen",
			IntValidation: &cr.IntValidation{
				Default:     64,
				GreaterThan: pointer.Int(2),
			},
		},
		{
			StructField: "BatchSize",
			IntValidation: &cr.IntValidation{
				Default:     32,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "Epochs",
			IntValidation: &cr.IntValidation{
				Default:     5,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "LearningRate",
			Float64Validation: &cr.Float64Validation{
				Default:     1e-5,
				GreaterThan: pointer.Float64(0),
			},
		},
		{
			StructField: "NumHiddenLayers",
			IntValidation: &cr.IntValidation{
				Default:     12,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "DoLowerCase",
			BoolValidation: &cr.BoolValidation{
				Default: true,
			},
		},
		{
			StructField: "Shuffle",
			BoolValidation: &cr.BoolValidation{
				Default: true,
			},
		},
	}

	return &cr.StructValidation{
		StructFieldValidations: append(fields, runtimeFieldValidations()...),
	}
}

func ReadClassifierConfig(configPath string) (*ClassifierConfig, error) {
	cfg := &ClassifierConfig{}
	if err := readConfig(cfg, configPath, classifierValidation); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseClassifierConfig parses YAML bytes; relative paths resolve against baseDir
func ParseClassifierConfig(yamlBytes []byte, baseDir string) (*ClassifierConfig, error) {
	cfg := &ClassifierConfig{}
	errs := cr.ParseYAMLBytes(cfg, classifierValidation(baseDir), yamlBytes)
	if err := errors.FirstError(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
