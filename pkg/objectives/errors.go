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

package objectives

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

const (
	ErrInvalidObjective = "objectives.invalid_objective"
	ErrMissingInput     = "objectives.missing_input"
	ErrBatchMismatch    = "objectives.batch_mismatch"
)

func ErrorInvalidObjective(provided string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidObjective,
		Message: fmt.Sprintf("invalid objective %s; valid objectives are %s", s.UserStr(provided), s.UserStrsOr(userconfig.ObjectiveTypes())),
	})
}

func ErrorMissingInput(input string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMissingInput,
		Message: fmt.Sprintf("batch is missing %s, which the objective requires", input),
	})
}

func ErrorBatchMismatch(predictions int, examples int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrBatchMismatch,
		Message: fmt.Sprintf("got predictions for %d examples, but the batch has %d", predictions, examples),
	})
}
