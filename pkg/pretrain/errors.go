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
	"fmt"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrSequenceLengthTooLong = "pretrain.sequence_length_too_long"
	ErrNoCorpusShards        = "pretrain.no_corpus_shards"
	ErrInvalidCorpusPattern  = "pretrain.invalid_corpus_pattern"
)

func ErrorSequenceLengthTooLong(sequenceLength int, maxPositions int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrSequenceLengthTooLong,
		Message: fmt.Sprintf("sequence_length (%s) exceeds the model's max_position_embeddings (%s)", s.Int(sequenceLength), s.Int(maxPositions)),
	})
}

func ErrorNoCorpusShards(patterns []string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNoCorpusShards,
		Message: fmt.Sprintf("no corpus shards match %s", s.StrsAnd(patterns)),
	})
}

func ErrorInvalidCorpusPattern(pattern string, err error) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidCorpusPattern,
		Message: fmt.Sprintf("%s: invalid pattern (%s)", pattern, strings.TrimSpace(errors.Message(err))),
	})
}
