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
	"bufio"
	"context"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
)

const _maxLineBytes = 16 * 1024 * 1024

// Document is a list of tokenized sentences
type Document [][]int

type sentenceEncoder interface {
	Tokenize(text string) []string
	TokensToIDs(tokens []string) []int
}

// ReadDocuments reads a text file with one sentence per line and blank lines between documents
func ReadDocuments(ctx context.Context, path string, encoder sentenceEncoder) ([]Document, error) {
	r, err := storage.OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var documents []Document
	var current Document
	flush := func() {
		if len(current) > 0 {
			documents = append(documents, current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), _maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		ids := encoder.TokensToIDs(encoder.Tokenize(line))
		if len(ids) > 0 {
			current = append(current, ids)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	flush()

	return documents, nil
}
