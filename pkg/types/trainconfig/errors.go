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
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrBatchSizeTooSmall          = "trainconfig.batch_size_too_small"
	ErrNegativeScheduleStep       = "trainconfig.negative_schedule_step"
	ErrNegativeScheduleMultiplier = "trainconfig.negative_schedule_multiplier"
)

func ErrorBatchSizeTooSmall(batchSize int, gradAccumSteps int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrBatchSizeTooSmall,
		Message: fmt.Sprintf("batch_size (%d) must be at least grad_accum_steps (%d), since each micro-step trains on batch_size / grad_accum_steps records", batchSize, gradAccumSteps),
	})
}

func ErrorNegativeScheduleStep(step int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNegativeScheduleStep,
		Message: fmt.Sprintf("lr_schedule: step %d must be greater than or equal to 0", step),
	})
}

func ErrorNegativeScheduleMultiplier(step int, multiplier float64) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNegativeScheduleMultiplier,
		Message: fmt.Sprintf("lr_schedule: multiplier at step %d (%s) must be greater than or equal to 0", step, s.Float64(multiplier)),
	})
}
