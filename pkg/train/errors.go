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

package train

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
)

const (
	ErrEmbeddingNotFound = "train.embedding_not_found"
	ErrInvalidReplicas   = "train.invalid_replicas"
	ErrInvalidLoop       = "train.invalid_loop"
)

func ErrorEmbeddingNotFound(name string, available []string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrEmbeddingNotFound,
		Message: fmt.Sprintf("embedding layer %s not found; available layers: %s", s.UserStr(name), s.StrsAnd(available)),
	})
}

func ErrorInvalidReplicas(replicas int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidReplicas,
		Message: fmt.Sprintf("number of replicas must be at least 1 (got %d)", replicas),
	})
}

func ErrorInvalidLoop(field string, value int) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidLoop,
		Message: fmt.Sprintf("%s must be at least 1 (got %d)", field, value),
	})
}
