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
	"io/ioutil"
	"os"
	"reflect"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/yaml"
)

type StructFieldValidation struct {
	Key          string // Required, defaults to json key or "StructField"
	StructField  string // Required
	DefaultField string // Optional. Will set the default to the runtime value of this field

	// Provide one of the following:
	StringValidation        *StringValidation
	StringListValidation    *StringListValidation
	BoolValidation          *BoolValidation
	IntValidation           *IntValidation
	Float64Validation       *Float64Validation
	IntFloat64MapValidation *IntFloat64MapValidation
	StructValidation        *StructValidation
	Nil                     bool

	// Additional parsing step for StringValidation
	Parser func(string) (interface{}, error)
}

type StructValidation struct {
	StructFieldValidations []*StructFieldValidation
	Required               bool
	AllowExplicitNull      bool
	TreatNullAsEmpty       bool // If explicit null or if it's top level and the file is empty, treat as empty map
	DefaultNil             bool // If this struct is nested and its key is not defined, set it to nil instead of defaults
	ShortCircuit           bool
	AllowExtraFields       bool
}

func Struct(dest interface{}, inter interface{}, v *StructValidation) []error {
	allowedFields := map[string]bool{}
	allErrs := []error{}
	var ok bool

	if inter == nil {
		if v.TreatNullAsEmpty {
			inter = make(map[interface{}]interface{}, 0)
		} else {
			if !v.AllowExplicitNull {
				return []error{ErrorCannotBeNull()}
			}
			return nil
		}
	}

	interMap, ok := interfaceToStrInterfaceMap(inter)
	if !ok {
		return []error{ErrorInvalidPrimitiveType(inter, PrimTypeMap)}
	}

	for _, structFieldValidation := range v.StructFieldValidations {
		key := inferKey(reflect.TypeOf(dest), structFieldValidation.StructField, structFieldValidation.Key)
		allowedFields[key] = true

		if structFieldValidation.Nil {
			continue
		}

		var err error
		var errs []error
		var val interface{}

		if structFieldValidation.StringValidation != nil {
			validation := *structFieldValidation.StringValidation
			updateValidation(&validation, dest, structFieldValidation)
			val, err = StringFromInterfaceMap(key, interMap, &validation)
			if err == nil && structFieldValidation.Parser != nil {
				val, err = structFieldValidation.Parser(val.(string))
				err = errors.Wrap(err, key)
			}
		} else if structFieldValidation.StringListValidation != nil {
			validation := *structFieldValidation.StringListValidation
			updateValidation(&validation, dest, structFieldValidation)
			val, err = StringListFromInterfaceMap(key, interMap, &validation)
		} else if structFieldValidation.BoolValidation != nil {
			validation := *structFieldValidation.BoolValidation
			updateValidation(&validation, dest, structFieldValidation)
			val, err = BoolFromInterfaceMap(key, interMap, &validation)
		} else if structFieldValidation.IntValidation != nil {
			validation := *structFieldValidation.IntValidation
			updateValidation(&validation, dest, structFieldValidation)
			val, err = IntFromInterfaceMap(key, interMap, &validation)
		} else if structFieldValidation.Float64Validation != nil {
			validation := *structFieldValidation.Float64Validation
			updateValidation(&validation, dest, structFieldValidation)
			val, err = Float64FromInterfaceMap(key, interMap, &validation)
		} else if structFieldValidation.IntFloat64MapValidation != nil {
			validation := *structFieldValidation.IntFloat64MapValidation
			updateValidation(&validation, dest, structFieldValidation)
			val, err = IntFloat64MapFromInterfaceMap(key, interMap, &validation)
		} else if structFieldValidation.StructValidation != nil {
			validation := *structFieldValidation.StructValidation
			nestedType := reflect.ValueOf(dest).Elem().FieldByName(structFieldValidation.StructField).Type()
			interMapVal, ok := ReadInterfaceMapValue(key, interMap)
			if !ok && validation.Required {
				err = errors.Wrap(ErrorMustBeDefined(), key)
			} else if !ok && validation.DefaultNil {
				val = nil
			} else {
				if !ok {
					interMapVal = make(map[string]interface{}) // Here validation.DefaultNil == false, so create an empty map to hold the nested default values
				}
				val = reflect.New(nestedType.Elem()).Interface()
				errs = Struct(val, interMapVal, &validation)
				if interMapVal == nil {
					val = nil
				}
				errs = errors.WrapAll(errs, key)
			}
		} else {
			return []error{ErrorUnsupportedFieldValidation()}
		}

		allErrs, _ = errors.AddError(allErrs, err)
		for _, subErr := range errs {
			allErrs, _ = errors.AddError(allErrs, subErr)
		}
		if errors.HasError(allErrs) {
			if v.ShortCircuit {
				return allErrs
			}
			continue
		}

		if val == nil {
			err = setFieldNil(dest, structFieldValidation.StructField)
		} else {
			err = setField(val, dest, structFieldValidation.StructField)
		}
		if allErrs, ok = errors.AddError(allErrs, err, key); ok {
			if v.ShortCircuit {
				return allErrs
			}
		}
	}

	if !v.AllowExtraFields {
		for key := range interMap {
			if !allowedFields[key] {
				allErrs = append(allErrs, ErrorUnsupportedKey(key))
			}
		}
	}
	if errors.HasError(allErrs) {
		return allErrs
	}
	return nil
}

func updateValidation(validation interface{}, dest interface{}, structFieldValidation *StructFieldValidation) {
	if structFieldValidation.DefaultField != "" {
		runtimeVal := reflect.ValueOf(dest).Elem().FieldByName(structFieldValidation.DefaultField).Interface()
		setField(runtimeVal, validation, "Default")
	}
}

func ReadInterfaceMapValue(name string, interMap map[string]interface{}) (interface{}, bool) {
	if interMap == nil {
		return nil, false
	}

	val, ok := interMap[name]
	if !ok {
		return nil, false
	}
	return val, true
}

func ReadEnvVar(envVarName string) *string {
	envVar, envVarIsSet := os.LookupEnv(envVarName)
	if envVarIsSet {
		return &envVar
	}
	return nil
}

func ParseYAMLFile(dest interface{}, validation *StructValidation, filePath string) []error {
	fileInterface, err := ReadYAMLFile(filePath)
	if err != nil {
		return []error{err}
	}

	errs := Struct(dest, fileInterface, validation)
	if errors.HasError(errs) {
		return errors.WrapAll(errs, filePath)
	}

	return nil
}

func ParseYAMLBytes(dest interface{}, validation *StructValidation, yamlBytes []byte) []error {
	parsed, err := ReadYAMLBytes(yamlBytes)
	if err != nil {
		return []error{err}
	}
	return Struct(dest, parsed, validation)
}

func ReadYAMLFile(filePath string) (interface{}, error) {
	fileBytes, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, filePath)
	}

	fileInterface, err := ReadYAMLBytes(fileBytes)
	if err != nil {
		return nil, errors.Wrap(err, filePath)
	}

	return fileInterface, nil
}

func ReadYAMLBytes(yamlBytes []byte) (interface{}, error) {
	if len(yamlBytes) == 0 {
		return nil, nil
	}
	var parsed interface{}
	err := yaml.Unmarshal(yamlBytes, &parsed)
	if err != nil {
		return nil, ErrorInvalidYAML(err)
	}
	return parsed, nil
}

// destStruct must be a pointer to a struct
func setField(val interface{}, destStruct interface{}, fieldName string) error {
	v := reflect.ValueOf(destStruct).Elem().FieldByName(fieldName)
	if !v.IsValid() || !v.CanSet() {
		return errors.Wrap(ErrorCannotSetStructField(), fieldName)
	}

	if val == nil {
		switch v.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		return errors.Wrap(ErrorCannotSetStructField(), fieldName)
	}

	valValue := reflect.ValueOf(val)
	if !valValue.Type().AssignableTo(v.Type()) {
		if valValue.Type().ConvertibleTo(v.Type()) {
			v.Set(valValue.Convert(v.Type()))
			return nil
		}
		return errors.Wrap(ErrorCannotSetStructField(), fieldName)
	}

	v.Set(valValue)
	return nil
}

// destStruct must be a pointer to a struct
func setFieldNil(destStruct interface{}, fieldName string) error {
	v := reflect.ValueOf(destStruct).Elem().FieldByName(fieldName)
	if !v.IsValid() || !v.CanSet() {
		return errors.Wrap(ErrorCannotSetStructField(), fieldName)
	}
	v.Set(reflect.Zero(v.Type()))
	return nil
}

func inferKey(structType reflect.Type, typeStructField string, typeKey string) string {
	if typeKey != "" {
		return typeKey
	}
	field, _ := structType.Elem().FieldByName(typeStructField)
	tag, ok := getTagFieldName(field)
	if ok {
		return tag
	}
	return typeStructField
}

func getTagFieldName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if ok {
		return strings.Split(tag, ",")[0], true
	}
	tag, ok = field.Tag.Lookup("yaml")
	if ok {
		return strings.Split(tag, ",")[0], true
	}
	return "", false
}
