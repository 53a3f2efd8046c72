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

package nn

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const (
	ErrDuplicateParam = "nn.duplicate_param"
	ErrParamNotFound  = "nn.param_not_found"
	ErrShapeMismatch  = "nn.shape_mismatch"
)

func ErrorDuplicateParam(name string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrDuplicateParam,
		Message: fmt.Sprintf("param %s is defined more than once", name),
	})
}

func ErrorParamNotFound(name string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrParamNotFound,
		Message: fmt.Sprintf("param %s not found", name),
	})
}

func ErrorShapeMismatch(name string, expectedRows int, expectedCols int, rows int, cols int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrShapeMismatch,
		Message: fmt.Sprintf("param %s: expected shape %d x %d, got %d x %d", name, expectedRows, expectedCols, rows, cols),
	})
}
