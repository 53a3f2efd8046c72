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

package strings

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

func Bool(val bool) string {
	return strconv.FormatBool(val)
}

func Float64(val float64) string {
	str := strconv.FormatFloat(val, 'f', -1, 64)
	if !strings.Contains(str, ".") {
		str = str + ".0"
	}
	return str
}

func Int(val int) string {
	return strconv.Itoa(val)
}

func Int64(val int64) string {
	return strconv.FormatInt(val, 10)
}

func Round(val float64, decimalPlaces int, padToDecimalPlaces int) string {
	rounded := math.Round(val*math.Pow10(decimalPlaces)) / math.Pow10(decimalPlaces)
	str := strconv.FormatFloat(rounded, 'f', -1, 64)
	if padToDecimalPlaces == 0 {
		return str
	}
	split := strings.Split(str, ".")
	intVal := split[0]
	decVal := ""
	if len(split) > 1 {
		decVal = split[1]
	}
	if len(decVal) >= padToDecimalPlaces {
		return str
	}
	return intVal + "." + decVal + strings.Repeat("0", padToDecimalPlaces-len(decVal))
}

// Index formats a list position for error messages
func Index(index int) string {
	return fmt.Sprintf("index %d", index)
}

func EnvVar(envVarName string) string {
	return fmt.Sprintf("environment variable \"%s\"", envVarName)
}

// UserStr renders a value the way it would appear in a user's config file
func UserStr(val interface{}) string {
	if val == nil {
		return "null"
	}

	switch casted := val.(type) {
	case string:
		return `"` + casted + `"`
	case []string:
		quoted := make([]string, len(casted))
		for i, str := range casted {
			quoted[i] = `"` + str + `"`
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case float64:
		return Float64(casted)
	case float32:
		return Float64(float64(casted))
	case fmt.Stringer:
		return `"` + casted.String() + `"`
	}

	value := reflect.ValueOf(val)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return "null"
		}
		return UserStr(value.Elem().Interface())
	case reflect.Map:
		keys := make([]string, 0, value.Len())
		for _, key := range value.MapKeys() {
			keys = append(keys, UserStr(key.Interface())+": "+UserStr(value.MapIndex(key).Interface()))
		}
		sort.Strings(keys)
		return "{" + strings.Join(keys, ", ") + "}"
	case reflect.Slice, reflect.Array:
		items := make([]string, value.Len())
		for i := 0; i < value.Len(); i++ {
			items[i] = UserStr(value.Index(i).Interface())
		}
		return "[" + strings.Join(items, ", ") + "]"
	}

	if jsonBytes, err := json.Marshal(val); err == nil {
		return string(jsonBytes)
	}
	return fmt.Sprint(val)
}

func UserStrs(vals interface{}) []string {
	value := reflect.ValueOf(vals)
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return []string{UserStr(vals)}
	}
	strs := make([]string, value.Len())
	for i := 0; i < value.Len(); i++ {
		strs[i] = UserStr(value.Index(i).Interface())
	}
	return strs
}
