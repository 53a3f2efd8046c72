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

package tokenizer

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const (
	ErrMissingSpecialToken = "tokenizer.missing_special_token"
	ErrEmptyVocab          = "tokenizer.empty_vocab"
)

func ErrorMissingSpecialToken(token string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMissingSpecialToken,
		Message: fmt.Sprintf("vocabulary does not contain the special token %s", token),
	})
}

func ErrorEmptyVocab(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrEmptyVocab,
		Message: fmt.Sprintf("%s: vocabulary is empty", path),
	})
}
