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

type StringValidation struct {
	Required      bool
	Default       string
	AllowEmpty    bool
	AllowedValues []string
	Validator     func(string) (string, error)
}

func String(inter interface{}, v *StringValidation) (string, error) {
	if inter == nil {
		return "", ErrorCannotBeNull()
	}
	casted, castOk := inter.(string)
	if !castOk {
		return "", ErrorInvalidPrimitiveType(inter, PrimTypeString)
	}
	return ValidateString(casted, v)
}

func StringFromInterfaceMap(key string, iMap map[string]interface{}, v *StringValidation) (string, error) {
	inter, ok := ReadInterfaceMapValue(key, iMap)
	if !ok {
		val, err := ValidateStringMissing(v)
		if err != nil {
			return "", errors.Wrap(err, key)
		}
		return val, nil
	}
	val, err := String(inter, v)
	if err != nil {
		return "", errors.Wrap(err, key)
	}
	return val, nil
}

func ValidateStringMissing(v *StringValidation) (string, error) {
	if v.Required {
		return "", ErrorMustBeDefined()
	}
	return validateString(v.Default, v)
}

func ValidateString(val string, v *StringValidation) (string, error) {
	return validateString(val, v)
}

func validateString(val string, v *StringValidation) (string, error) {
	if !v.AllowEmpty && val == "" && v.Required {
		return "", ErrorCannotBeEmpty()
	}

	if len(v.AllowedValues) > 0 && val != "" {
		found := false
		for _, allowed := range v.AllowedValues {
			if val == allowed {
				found = true
				break
			}
		}
		if !found {
			return "", ErrorInvalidStr(val, v.AllowedValues[0], v.AllowedValues[1:]...)
		}
	}

	if v.Validator != nil {
		return v.Validator(val)
	}
	return val, nil
}
