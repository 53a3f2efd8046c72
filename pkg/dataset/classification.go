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

package dataset

import (
	"bufio"
	"context"
	"math/rand"
	"strconv"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/files"
	"github.com/cortexlabs/trainer/pkg/lib/json"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/patrickmn/go-cache"
)

const (
	_minRawLabel      = 100
	_reservedRawLabel = 105
	_maxLineBytes     = 16 * 1024 * 1024
)

// Example is one labeled sentence
type Example struct {
	Text      string
	Label     int
	LabelDesc string
}

// RemapLabel compacts raw labels from 100 upwards, with 105 unused, into class ids from 0.
// The benchmark's labels 100..116 become 0..15.
func RemapLabel(raw int) (int, error) {
	if raw < _minRawLabel || raw == _reservedRawLabel {
		return 0, ErrorLabelOutOfRange(raw)
	}
	if raw < _reservedRawLabel {
		return raw - 100, nil
	}
	return raw - 101, nil
}

// LoadExamples reads a JSON-lines file of {"sentence", "label", "label_desc"} records
func LoadExamples(ctx context.Context, path string) ([]Example, error) {
	if !storage.IsRemotePath(path) {
		if err := files.CheckFitsInMemory(path); err != nil {
			return nil, err
		}
	}

	r, err := storage.OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var examples []Example
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), _maxLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		example, err := parseExample([]byte(line))
		if err != nil {
			return nil, errors.Wrap(err, path, "line "+strconv.Itoa(lineNum))
		}
		examples = append(examples, example)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, path)
	}

	return examples, nil
}

type rawExample struct {
	Sentence  *string      `json:"sentence"`
	Label     *json.Number `json:"label"`
	LabelDesc string       `json:"label_desc"`
}

func parseExample(line []byte) (Example, error) {
	var raw rawExample
	if err := json.DecodeWithNumber(line, &raw); err != nil {
		return Example{}, ErrorMalformedExample(err)
	}
	if raw.Sentence == nil {
		return Example{}, ErrorMissingExampleField("sentence")
	}
	if raw.Label == nil {
		return Example{}, ErrorMissingExampleField("label")
	}

	rawLabel, err := strconv.Atoi(raw.Label.String())
	if err != nil {
		return Example{}, ErrorInvalidLabel(raw.Label.String())
	}
	label, err := RemapLabel(rawLabel)
	if err != nil {
		return Example{}, err
	}

	return Example{
		Text:      *raw.Sentence,
		Label:     label,
		LabelDesc: raw.LabelDesc,
	}, nil
}

// CheckNumClasses fails on the first example whose class id does not fit a head of numClasses outputs
func CheckNumClasses(examples []Example, numClasses int, path string) error {
	for i, example := range examples {
		if example.Label >= numClasses {
			return ErrorLabelExceedsNumClasses(path, i+1, example.Label, numClasses)
		}
	}
	return nil
}

// TextEncoder turns text into token ids and segment ids
type TextEncoder interface {
	Encode(first string, second string, maxLen int) ([]int, []int)
}

type encoded struct {
	tokenIDs   []int
	segmentIDs []int
}

// Batcher groups examples into fixed-size padded batches; the final partial batch is kept
type Batcher struct {
	examples  []Example
	encoder   TextEncoder
	batchSize int
	maxLen    int
	cache     *cache.Cache
	rng       *rand.Rand
}

func NewBatcher(examples []Example, encoder TextEncoder, batchSize int, maxLen int, seed int64) *Batcher {
	return &Batcher{
		examples:  examples,
		encoder:   encoder,
		batchSize: batchSize,
		maxLen:    maxLen,
		cache:     cache.New(cache.NoExpiration, 0),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Len is the number of batches in one pass
func (b *Batcher) Len() int {
	return (len(b.examples) + b.batchSize - 1) / b.batchSize
}

func (b *Batcher) NumExamples() int {
	return len(b.examples)
}

// Iterator walks one pass over the examples
type Iterator struct {
	batcher *Batcher
	order   []int
	pos     int
}

// Batches starts a new pass; shuffling permutes example order, not batch contents
func (b *Batcher) Batches(shuffle bool) *Iterator {
	order := make([]int, len(b.examples))
	for i := range order {
		order[i] = i
	}
	if shuffle {
		b.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return &Iterator{
		batcher: b,
		order:   order,
	}
}

func (it *Iterator) Next() (*Batch, bool) {
	if it.pos >= len(it.order) {
		return nil, false
	}
	end := it.pos + it.batcher.batchSize
	if end > len(it.order) {
		end = len(it.order)
	}

	var tokenIDs, segmentIDs [][]int
	labels := make([]int, 0, end-it.pos)
	for _, idx := range it.order[it.pos:end] {
		example := it.batcher.examples[idx]
		enc := it.batcher.encode(example.Text)
		tokenIDs = append(tokenIDs, enc.tokenIDs)
		segmentIDs = append(segmentIDs, enc.segmentIDs)
		labels = append(labels, example.Label)
	}
	it.pos = end

	return &Batch{
		TokenIDs:   PadSequences(tokenIDs),
		SegmentIDs: PadSequences(segmentIDs),
		Labels:     labels,
	}, true
}

func (b *Batcher) encode(text string) encoded {
	if cached, ok := b.cache.Get(text); ok {
		return cached.(encoded)
	}
	tokenIDs, segmentIDs := b.encoder.Encode(text, "", b.maxLen)
	enc := encoded{tokenIDs: tokenIDs, segmentIDs: segmentIDs}
	b.cache.SetDefault(text, enc)
	return enc
}

type cycleSource struct {
	batcher *Batcher
	shuffle bool
	current *Iterator
}

// Cycle returns a never-ending source that starts a new pass whenever one is exhausted
func (b *Batcher) Cycle(shuffle bool) Source {
	return &cycleSource{
		batcher: b,
		shuffle: shuffle,
	}
}

func (s *cycleSource) Next(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(s.batcher.examples) == 0 {
		return nil, ErrorNoExamples()
	}
	if s.current == nil {
		s.current = s.batcher.Batches(s.shuffle)
	}
	batch, ok := s.current.Next()
	if !ok {
		s.current = s.batcher.Batches(s.shuffle)
		batch, _ = s.current.Next()
	}
	return batch, nil
}
