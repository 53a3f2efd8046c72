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

package userconfig

type OptimizerType int

const (
	UnknownOptimizerType OptimizerType = iota
	AdamOptimizerType
	LAMBOptimizerType
)

var _optimizerTypes = []string{
	"unknown",
	"adam",
	"lamb",
}

func OptimizerTypeFromString(s string) OptimizerType {
	for i := 0; i < len(_optimizerTypes); i++ {
		if s == _optimizerTypes[i] {
			return OptimizerType(i)
		}
	}
	return UnknownOptimizerType
}

func OptimizerTypeStrings() []string {
	return _optimizerTypes[1:]
}

func (t OptimizerType) String() string {
	return _optimizerTypes[t]
}

// MarshalText satisfies TextMarshaler
func (t OptimizerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText satisfies TextUnmarshaler
func (t *OptimizerType) UnmarshalText(text []byte) error {
	*t = OptimizerTypeFromString(string(text))
	return nil
}
