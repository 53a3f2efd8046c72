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

// Objective selects the pretraining task: which auxiliary inputs a batch carries and
// which loss/accuracy outputs the train model produces
type Objective int

const (
	UnknownObjective Objective = iota
	RoBERTaObjective
	SpanBERTObjective
	GPTObjective
	UniLMObjective
	BERTObjective
)

var _objectives = []string{
	"unknown",
	"roberta",
	"spanbert",
	"gpt",
	"unilm",
	"bert",
}

var _objectiveAliases = map[string]Objective{
	"mlm":     RoBERTaObjective,
	"lm":      GPTObjective,
	"mlm+nsp": BERTObjective,
}

func ObjectiveFromString(s string) Objective {
	for i := 0; i < len(_objectives); i++ {
		if s == _objectives[i] {
			return Objective(i)
		}
	}
	if objective, ok := _objectiveAliases[s]; ok {
		return objective
	}
	return UnknownObjective
}

func ObjectiveTypes() []string {
	return _objectives[1:]
}

func (t Objective) String() string {
	return _objectives[t]
}

// MarshalText satisfies TextMarshaler
func (t Objective) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText satisfies TextUnmarshaler
func (t *Objective) UnmarshalText(text []byte) error {
	*t = ObjectiveFromString(string(text))
	return nil
}

// UsesMaskedTargets is true for the variants trained on is_masked / target token ids
func (t Objective) UsesMaskedTargets() bool {
	return t == RoBERTaObjective || t == SpanBERTObjective || t == BERTObjective
}
