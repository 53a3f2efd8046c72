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

package optimizer

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

const (
	ErrInvalidPattern        = "optimizer.invalid_pattern"
	ErrInvalidSchedule       = "optimizer.invalid_schedule"
	ErrInvalidOptimizerType  = "optimizer.invalid_optimizer_type"
	ErrInvalidGradAccumSteps = "optimizer.invalid_grad_accum_steps"
)

func ErrorInvalidPattern(pattern string, err error) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidPattern,
		Message: fmt.Sprintf("invalid exclusion pattern %s: %s", s.UserStr(pattern), errors.Message(err)),
		Cause:   err,
	})
}

func ErrorInvalidSchedule(step int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidSchedule,
		Message: fmt.Sprintf("learning rate schedule steps must be non-negative (got %d)", step),
	})
}

func ErrorInvalidOptimizerType(provided string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidOptimizerType,
		Message: fmt.Sprintf("invalid optimizer %s; valid optimizers are %s", s.UserStr(provided), s.UserStrsOr(userconfig.OptimizerTypeStrings())),
	})
}

func ErrorInvalidGradAccumSteps(steps int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidGradAccumSteps,
		Message: fmt.Sprintf("gradient accumulation steps must be at least 1 (got %d)", steps),
	})
}
