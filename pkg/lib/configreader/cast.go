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
	"math"
	"strconv"
)

func interfaceToInt(in interface{}) (int, bool) {
	switch casted := in.(type) {
	case int:
		return casted, true
	case int8:
		return int(casted), true
	case int16:
		return int(casted), true
	case int32:
		return int(casted), true
	case int64:
		return int(casted), true
	case uint:
		return int(casted), true
	case uint8:
		return int(casted), true
	case uint16:
		return int(casted), true
	case uint32:
		return int(casted), true
	case uint64:
		return int(casted), true
	case float32:
		if float64(casted) == math.Trunc(float64(casted)) {
			return int(casted), true
		}
	case float64:
		if casted == math.Trunc(casted) {
			return int(casted), true
		}
	}
	return 0, false
}

func interfaceToFloat64(in interface{}) (float64, bool) {
	switch casted := in.(type) {
	case float64:
		return casted, true
	case float32:
		return float64(casted), true
	}
	if casted, ok := interfaceToInt(in); ok {
		return float64(casted), true
	}
	return 0, false
}

func interfaceToStrInterfaceMap(in interface{}) (map[string]interface{}, bool) {
	switch casted := in.(type) {
	case map[string]interface{}:
		return casted, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(casted))
		for key, val := range casted {
			keyStr, ok := key.(string)
			if !ok {
				return nil, false
			}
			out[keyStr] = val
		}
		return out, true
	}
	return nil, false
}

func interfaceToIntFloat64Map(in interface{}) (map[int]float64, bool) {
	out := map[int]float64{}
	add := func(key interface{}, val interface{}) bool {
		var intKey int
		var ok bool
		if keyStr, isStr := key.(string); isStr {
			intKey, ok = parseInt(keyStr)
		} else {
			intKey, ok = interfaceToInt(key)
		}
		if !ok {
			return false
		}
		floatVal, ok := interfaceToFloat64(val)
		if !ok {
			return false
		}
		out[intKey] = floatVal
		return true
	}

	switch casted := in.(type) {
	case map[interface{}]interface{}:
		for key, val := range casted {
			if !add(key, val) {
				return nil, false
			}
		}
	case map[string]interface{}:
		for key, val := range casted {
			if !add(key, val) {
				return nil, false
			}
		}
	default:
		return nil, false
	}
	return out, true
}

func interfaceToStrSlice(in interface{}) ([]string, bool) {
	switch casted := in.(type) {
	case []string:
		return casted, true
	case []interface{}:
		out := make([]string, len(casted))
		for i, item := range casted {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = str
		}
		return out, true
	}
	return nil, false
}

func parseInt(str string) (int, bool) {
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, false
	}
	return val, true
}
