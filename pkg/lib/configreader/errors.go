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

package configreader

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrParseConfig                = "configreader.parse_config"
	ErrUnsupportedFieldValidation = "configreader.unsupported_field_validation"
	ErrUnsupportedKey             = "configreader.unsupported_key"
	ErrInvalidYAML                = "configreader.invalid_yaml"
	ErrInvalidStr                 = "configreader.invalid_str"
	ErrMustBeLessThanOrEqualTo    = "configreader.must_be_less_than_or_equal_to"
	ErrMustBeLessThan             = "configreader.must_be_less_than"
	ErrMustBeGreaterThanOrEqualTo = "configreader.must_be_greater_than_or_equal_to"
	ErrMustBeGreaterThan          = "configreader.must_be_greater_than"
	ErrNonStringKeyFound          = "configreader.non_string_key_found"
	ErrInvalidPrimitiveType       = "configreader.invalid_primitive_type"
	ErrCannotSetStructField       = "configreader.cannot_set_struct_field"
	ErrCannotBeNull               = "configreader.cannot_be_null"
	ErrCannotBeEmpty              = "configreader.cannot_be_empty"
	ErrMustBeDefined              = "configreader.must_be_defined"
	ErrTooFewElements             = "configreader.too_few_elements"
)

func ErrorParseConfig() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrParseConfig,
		Message: "failed to parse config file",
	})
}

func ErrorUnsupportedFieldValidation() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrUnsupportedFieldValidation,
		Message: "undefined or unsupported field validation",
	})
}

func ErrorUnsupportedKey(key interface{}) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrUnsupportedKey,
		Message: fmt.Sprintf("%s is not supported", s.UserStr(key)),
	})
}

func ErrorInvalidYAML(err error) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidYAML,
		Message: fmt.Sprintf("invalid yaml: %s", errors.Message(err)),
		Cause:   err,
	})
}

func ErrorInvalidStr(provided string, allowed string, allowedVals ...string) error {
	allAllowedVals := append([]string{allowed}, allowedVals...)
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidStr,
		Message: fmt.Sprintf("invalid value (got %s, must be %s)", s.UserStr(provided), s.UserStrsOr(allAllowedVals)),
	})
}

func ErrorMustBeLessThanOrEqualTo(provided interface{}, boundary interface{}) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMustBeLessThanOrEqualTo,
		Message: fmt.Sprintf("%s must be less than or equal to %s", s.UserStr(provided), s.UserStr(boundary)),
	})
}

func ErrorMustBeLessThan(provided interface{}, boundary interface{}) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMustBeLessThan,
		Message: fmt.Sprintf("%s must be less than %s", s.UserStr(provided), s.UserStr(boundary)),
	})
}

func ErrorMustBeGreaterThanOrEqualTo(provided interface{}, boundary interface{}) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMustBeGreaterThanOrEqualTo,
		Message: fmt.Sprintf("%s must be greater than or equal to %s", s.UserStr(provided), s.UserStr(boundary)),
	})
}

func ErrorMustBeGreaterThan(provided interface{}, boundary interface{}) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMustBeGreaterThan,
		Message: fmt.Sprintf("%s must be greater than %s", s.UserStr(provided), s.UserStr(boundary)),
	})
}

func ErrorNonStringKeyFound(key interface{}) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNonStringKeyFound,
		Message: fmt.Sprintf("non string key found: %s", s.UserStr(key)),
	})
}

func ErrorInvalidPrimitiveType(provided interface{}, allowedType PrimitiveType, allowedTypes ...PrimitiveType) error {
	allAllowedTypes := append(PrimitiveTypes{allowedType}, allowedTypes...)
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidPrimitiveType,
		Message: fmt.Sprintf("%s: invalid type (expected %s)", s.UserStr(provided), s.StrsOr(allAllowedTypes.StringList())),
	})
}

func ErrorCannotSetStructField() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrCannotSetStructField,
		Message: "unable to set struct field",
	})
}

func ErrorCannotBeNull() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrCannotBeNull,
		Message: "cannot be null",
	})
}

func ErrorCannotBeEmpty() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrCannotBeEmpty,
		Message: "cannot be empty",
	})
}

func ErrorMustBeDefined() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMustBeDefined,
		Message: "must be defined",
	})
}

func ErrorTooFewElements(minLength int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrTooFewElements,
		Message: fmt.Sprintf("must contain at least %d %s", minLength, s.PluralS("element", minLength)),
	})
}
