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

package classifier

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrVocabSizeMismatch = "classifier.vocab_size_mismatch"
)

func ErrorVocabSizeMismatch(vocabPath string, vocabSize int, modelVocabSize int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrVocabSizeMismatch,
		Message: fmt.Sprintf("%s: vocabulary has %s tokens but the model config only embeds %s", vocabPath, s.Int(vocabSize), s.Int(modelVocabSize)),
	})
}
