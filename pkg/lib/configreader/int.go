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
	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

type IntValidation struct {
	Required             bool
	Default              int
	GreaterThan          *int
	GreaterThanOrEqualTo *int
	LessThan             *int
	LessThanOrEqualTo    *int
	Validator            func(int) (int, error)
}

func Int(inter interface{}, v *IntValidation) (int, error) {
	if inter == nil {
		return 0, ErrorCannotBeNull()
	}
	casted, castOk := interfaceToInt(inter)
	if !castOk {
		return 0, ErrorInvalidPrimitiveType(inter, PrimTypeInt)
	}
	return ValidateInt(casted, v)
}

func IntFromInterfaceMap(key string, iMap map[string]interface{}, v *IntValidation) (int, error) {
	inter, ok := ReadInterfaceMapValue(key, iMap)
	if !ok {
		val, err := ValidateIntMissing(v)
		if err != nil {
			return 0, errors.Wrap(err, key)
		}
		return val, nil
	}
	val, err := Int(inter, v)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return val, nil
}

func ValidateIntMissing(v *IntValidation) (int, error) {
	if v.Required {
		return 0, ErrorMustBeDefined()
	}
	return ValidateInt(v.Default, v)
}

func ValidateInt(val int, v *IntValidation) (int, error) {
	if v.GreaterThan != nil && val <= *v.GreaterThan {
		return 0, ErrorMustBeGreaterThan(val, *v.GreaterThan)
	}
	if v.GreaterThanOrEqualTo != nil && val < *v.GreaterThanOrEqualTo {
		return 0, ErrorMustBeGreaterThanOrEqualTo(val, *v.GreaterThanOrEqualTo)
	}
	if v.LessThan != nil && val >= *v.LessThan {
		return 0, ErrorMustBeLessThan(val, *v.LessThan)
	}
	if v.LessThanOrEqualTo != nil && val > *v.LessThanOrEqualTo {
		return 0, ErrorMustBeLessThanOrEqualTo(val, *v.LessThanOrEqualTo)
	}
	if v.Validator != nil {
		return v.Validator(val)
	}
	return val, nil
}
