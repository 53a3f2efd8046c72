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
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrInvalidModelConfig = "model.invalid_model_config"
	ErrTokenOutOfRange    = "model.token_out_of_range"
	ErrSegmentOutOfRange  = "model.segment_out_of_range"
	ErrSequenceTooLong    = "model.sequence_too_long"
	ErrEmptySequence      = "model.empty_sequence"
	ErrInvalidNumClasses  = "model.invalid_num_classes"
	ErrLabelOutOfRange    = "model.label_out_of_range"
	ErrMissingLabels      = "model.missing_labels"
)

func ErrorInvalidModelConfig(key string, value int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidModelConfig,
		Message: fmt.Sprintf("%s: must be greater than 0 (got %d)", key, value),
	})
}

func ErrorTokenOutOfRange(tokenID int, vocabSize int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrTokenOutOfRange,
		Message: fmt.Sprintf("token id %d is outside of the vocabulary (size %s)", tokenID, s.Int(vocabSize)),
	})
}

func ErrorSegmentOutOfRange(segmentID int, typeVocabSize int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrSegmentOutOfRange,
		Message: fmt.Sprintf("segment id %d is outside of the segment vocabulary (size %d)", segmentID, typeVocabSize),
	})
}

func ErrorSequenceTooLong(length int, maxPositions int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrSequenceTooLong,
		Message: fmt.Sprintf("sequence of length %d exceeds max_position_embeddings (%d)", length, maxPositions),
	})
}

func ErrorEmptySequence() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrEmptySequence,
		Message: "cannot encode an empty sequence",
	})
}

func ErrorInvalidNumClasses(numClasses int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidNumClasses,
		Message: fmt.Sprintf("number of classes must be at least 2 (got %d)", numClasses),
	})
}

func ErrorLabelOutOfRange(label int, numClasses int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrLabelOutOfRange,
		Message: fmt.Sprintf("label %d is outside of the %d classifier classes", label, numClasses),
	})
}

func ErrorMissingLabels(examples int, labels int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMissingLabels,
		Message: fmt.Sprintf("batch has %d examples but %d labels", examples, labels),
	})
}
