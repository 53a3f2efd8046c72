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

package model

import (
	"context"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/json"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
)

const _defaultInitializerRange = 0.02

// Config is the subset of model_config.json the reference encoder reads
type Config struct {
	VocabSize             int     `json:"vocab_size"`
	HiddenSize            int     `json:"hidden_size"`
	MaxPositionEmbeddings int     `json:"max_position_embeddings"`
	TypeVocabSize         int     `json:"type_vocab_size"`
	NumHiddenLayers       int     `json:"num_hidden_layers"`
	InitializerRange      float64 `json:"initializer_range"`
}

func LoadConfig(ctx context.Context, path string) (*Config, error) {
	data, err := storage.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	for _, field := range []struct {
		key   string
		value int
	}{
		{"vocab_size", c.VocabSize},
		{"hidden_size", c.HiddenSize},
		{"max_position_embeddings", c.MaxPositionEmbeddings},
		{"type_vocab_size", c.TypeVocabSize},
	} {
		if field.value <= 0 {
			return ErrorInvalidModelConfig(field.key, field.value)
		}
	}

	if c.InitializerRange <= 0 {
		c.InitializerRange = _defaultInitializerRange
	}
	return nil
}
