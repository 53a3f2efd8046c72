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

package corpus

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrNoDocuments          = "corpus.no_documents"
	ErrUnsupportedObjective = "corpus.unsupported_objective"
	ErrSequenceTooShort     = "corpus.sequence_too_short"
)

func ErrorNoDocuments(paths []string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNoDocuments,
		Message: fmt.Sprintf("no non-empty documents found in %s", s.StrsAnd(paths)),
	})
}

func ErrorUnsupportedObjective(objective string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrUnsupportedObjective,
		Message: fmt.Sprintf("cannot build a corpus for objective %s", s.UserStr(objective)),
	})
}

func ErrorSequenceTooShort(sequenceLength int, minimum int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrSequenceTooShort,
		Message: fmt.Sprintf("sequence_length must be at least %s for this objective (got %s)", s.Int(minimum), s.Int(sequenceLength)),
	})
}
