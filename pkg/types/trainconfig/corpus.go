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
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

// CorpusConfig drives the conversion of raw text into record shards
type CorpusConfig struct {
	Objective      userconfig.Objective `json:"objective" yaml:"objective"`
	InputPaths     []string             `json:"input_paths" yaml:"input_paths"`
	OutputDir      string               `json:"output_dir" yaml:"output_dir"`
	ShardPrefix    string               `json:"shard_prefix" yaml:"shard_prefix"`
	NumShards      int                  `json:"num_shards" yaml:"num_shards"`
	VocabPath      string               `json:"vocab_path" yaml:"vocab_path"`
	DoLowerCase    bool                 `json:"do_lower_case" yaml:"do_lower_case"`
	SequenceLength int                  `json:"sequence_length" yaml:"sequence_length"`
	MaskRate       float64              `json:"mask_rate" yaml:"mask_rate"`
	MaxSpanLength  int                  `json:"max_span_length" yaml:"max_span_length"`
	SpanP          float64              `json:"span_p" yaml:"span_p"`
	DupeFactor     int                  `json:"dupe_factor" yaml:"dupe_factor"`
	TokenSepID     int                  `json:"token_sep_id" yaml:"token_sep_id"`
	Runtime
}

func corpusValidation(baseDir string) *cr.StructValidation {
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
			StructField: "InputPaths",
			StringListValidation: cr.GetPathListValidation(&cr.PathValidation{
				Required: true,
				BaseDir:  baseDir,
			}, 1),
		},
		requiredPathField("OutputDir", baseDir),
		{
			StructField: "ShardPrefix",
			StringValidation: &cr.StringValidation{
				Default: "corpus",
			},
		},
		{
			StructField: "NumShards",
			IntValidation: &cr.IntValidation{
				Default:     10,
				GreaterThan: pointer.Int(0),
			},
		},
		requiredPathField("VocabPath", baseDir),
		{
			StructField: "DoLowerCase",
			BoolValidation: &cr.BoolValidation{
				Default: true,
			},
		},
		{
			StructField: "SequenceLength",
			IntValidation: &cr.IntValidation{
				Default:     512,
				GreaterThan: pointer.Int(4),
			},
		},
		{
			StructField: "MaskRate",
			Float64Validation: &cr.Float64Validation{
				Default:     0.15,
				GreaterThan: pointer.Float64(0),
				LessThan:    pointer.Float64(1),
			},
		},
		{
			StructField: "MaxSpanLength",
			IntValidation: &cr.IntValidation{
				Default:     10,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "SpanP",
			Float64Validation: &cr.Float64Validation{
				Default:     0.2,
				GreaterThan: pointer.Float64(0),
				LessThan:    pointer.Float64(1),
			},
		},
		{
			StructField: "DupeFactor",
			IntValidation: &cr.IntValidation{
				Default:     1,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "TokenSepID",
			IntValidation: &cr.IntValidation{
				Default:              3,
				GreaterThanOrEqualTo: pointer.Int(0),
			},
		},
	}

	return &cr.StructValidation{
		StructFieldValidations: append(fields, runtimeFieldValidations()...),
	}
}

func ReadCorpusConfig(configPath string) (*CorpusConfig, error) {
	cfg := &CorpusConfig{}
	if err := readConfig(cfg, configPath, corpusValidation); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseCorpusConfig parses YAML bytes; relative paths resolve against baseDir
func ParseCorpusConfig(yamlBytes []byte, baseDir string) (*CorpusConfig, error) {
	cfg := &CorpusConfig{}
	errs := cr.ParseYAMLBytes(cfg, corpusValidation(baseDir), yamlBytes)
	if err := errors.FirstError(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
