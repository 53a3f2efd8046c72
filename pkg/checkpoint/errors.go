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

package checkpoint

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const (
	ErrFormatMismatch    = "checkpoint.format_mismatch"
	ErrNotFound          = "checkpoint.not_found"
	ErrCorrupt           = "checkpoint.corrupt"
	ErrVariableTruncated = "checkpoint.variable_truncated"
)

func ErrorFormatMismatch(path string, expected Format, found Format) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrFormatMismatch,
		Message: fmt.Sprintf("%s: expected a %s snapshot but found a %s snapshot", path, expected, found),
	})
}

func ErrorNotFound(path string, format Format) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s: no %s snapshot found", path, format),
	})
}

func ErrorCorrupt(path string, format Format) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrCorrupt,
		Message: fmt.Sprintf("%s: not a valid %s snapshot", path, format),
	})
}

func ErrorVariableTruncated(path string, name string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrVariableTruncated,
		Message: fmt.Sprintf("%s: data for variable %s is truncated", path, name),
	})
}
