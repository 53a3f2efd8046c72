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

// IntFloat64MapValidation reads maps such as learning rate schedules ({1000: 1.0, 5000: 0.0})
type IntFloat64MapValidation struct {
	Required   bool
	Default    map[int]float64
	AllowEmpty bool
	Validator  func(map[int]float64) (map[int]float64, error)
}

func IntFloat64Map(inter interface{}, v *IntFloat64MapValidation) (map[int]float64, error) {
	if inter == nil {
		return nil, ErrorCannotBeNull()
	}
	casted, castOk := interfaceToIntFloat64Map(inter)
	if !castOk {
		return nil, ErrorInvalidPrimitiveType(inter, PrimTypeIntToFloatMap)
	}
	return validateIntFloat64Map(casted, v)
}

func IntFloat64MapFromInterfaceMap(key string, iMap map[string]interface{}, v *IntFloat64MapValidation) (map[int]float64, error) {
	inter, ok := ReadInterfaceMapValue(key, iMap)
	if !ok {
		if v.Required {
			return nil, errors.Wrap(ErrorMustBeDefined(), key)
		}
		val, err := validateIntFloat64Map(v.Default, v)
		if err != nil {
			return nil, errors.Wrap(err, key)
		}
		return val, nil
	}
	val, err := IntFloat64Map(inter, v)
	if err != nil {
		return nil, errors.Wrap(err, key)
	}
	return val, nil
}

func validateIntFloat64Map(val map[int]float64, v *IntFloat64MapValidation) (map[int]float64, error) {
	if !v.AllowEmpty && val != nil && len(val) == 0 {
		return nil, ErrorCannotBeEmpty()
	}
	if v.Validator != nil {
		return v.Validator(val)
	}
	return val, nil
}
