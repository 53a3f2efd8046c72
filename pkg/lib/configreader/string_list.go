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
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

type StringListValidation struct {
	Required          bool
	Default           []string
	AllowExplicitNull bool
	MinLength         int
	Validator         func([]string) ([]string, error)
}

func StringList(inter interface{}, v *StringListValidation) ([]string, error) {
	if inter == nil {
		if v.AllowExplicitNull {
			return validateStringList(nil, v)
		}
		return nil, ErrorCannotBeNull()
	}
	casted, castOk := interfaceToStrSlice(inter)
	if !castOk {
		return nil, ErrorInvalidPrimitiveType(inter, PrimTypeStringList)
	}
	return validateStringList(casted, v)
}

func StringListFromInterfaceMap(key string, iMap map[string]interface{}, v *StringListValidation) ([]string, error) {
	inter, ok := ReadInterfaceMapValue(key, iMap)
	if !ok {
		if v.Required {
			return nil, errors.Wrap(ErrorMustBeDefined(), key)
		}
		val, err := validateStringList(v.Default, v)
		if err != nil {
			return nil, errors.Wrap(err, key)
		}
		return val, nil
	}
	val, err := StringList(inter, v)
	if err != nil {
		return nil, errors.Wrap(err, key)
	}
	return val, nil
}

func validateStringList(val []string, v *StringListValidation) ([]string, error) {
	if v.MinLength > 0 && len(val) < v.MinLength {
		return nil, ErrorTooFewElements(v.MinLength)
	}
	for i, str := range val {
		if str == "" {
			return nil, errors.Wrap(ErrorCannotBeEmpty(), s.Index(i))
		}
	}
	if v.Validator != nil {
		return v.Validator(val)
	}
	return val, nil
}
