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

package dataset

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrLabelOutOfRange      = "dataset.label_out_of_range"
	ErrLabelExceedsClasses  = "dataset.label_exceeds_classes"
	ErrInvalidLabel         = "dataset.invalid_label"
	ErrMalformedExample     = "dataset.malformed_example"
	ErrMissingExampleField  = "dataset.missing_example_field"
	ErrNoExamples           = "dataset.no_examples"
	ErrNoShards             = "dataset.no_shards"
	ErrNoRecords            = "dataset.no_records"
	ErrMalformedRecord      = "dataset.malformed_record"
	ErrMissingRecordField   = "dataset.missing_record_field"
	ErrRecordLengthMismatch = "dataset.record_length_mismatch"
)

func ErrorLabelOutOfRange(raw int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrLabelOutOfRange,
		Message: fmt.Sprintf("label %d is outside of the label space (100 and above, excluding 105)", raw),
	})
}

func ErrorLabelExceedsNumClasses(path string, example int, classID int, numClasses int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrLabelExceedsClasses,
		Message: fmt.Sprintf("%s: example %d has class id %d but num_classes is %d", path, example, classID, numClasses),
	})
}

func ErrorInvalidLabel(raw string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidLabel,
		Message: fmt.Sprintf("label %s is not an integer", s.UserStr(raw)),
	})
}

func ErrorMalformedExample(err error) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMalformedExample,
		Message: errors.Message(err),
		Cause:   err,
	})
}

func ErrorMissingExampleField(field string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMissingExampleField,
		Message: fmt.Sprintf("missing required field %s", s.UserStr(field)),
	})
}

func ErrorNoExamples() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNoExamples,
		Message: "no examples to batch",
	})
}

func ErrorNoShards() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNoShards,
		Message: "no corpus shards were provided",
	})
}

func ErrorNoRecords(paths []string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNoRecords,
		Message: fmt.Sprintf("no records found in %s", s.StrsAnd(paths)),
	})
}

func ErrorMalformedRecord(err error) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMalformedRecord,
		Message: errors.Message(err),
		Cause:   err,
	})
}

func ErrorMissingRecordField(field string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMissingRecordField,
		Message: fmt.Sprintf("record is missing required field %s", s.UserStr(field)),
	})
}

func ErrorRecordLengthMismatch(field string, length int, expected int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrRecordLengthMismatch,
		Message: fmt.Sprintf("%s has %d values, but token_ids has %d", field, length, expected),
	})
}
