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
	"math/rand"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

type instanceBuilder struct {
	objective      userconfig.Objective
	sequenceLength int
	clsID          int
	sepID          int
	tokenSepID     int
	rng            *rand.Rand
	masker         *masker
}

// minSequenceLength is the shortest sequence that leaves room for one token per segment
func minSequenceLength(objective userconfig.Objective) int {
	switch objective {
	case userconfig.UniLMObjective, userconfig.BERTObjective:
		return 5
	}
	return 3
}

func (b *instanceBuilder) build(documents []Document) []*dataset.Record {
	switch b.objective {
	case userconfig.RoBERTaObjective, userconfig.SpanBERTObjective, userconfig.GPTObjective:
		return b.buildPacked(documents)
	case userconfig.UniLMObjective:
		return b.buildSeq2Seq(documents)
	case userconfig.BERTObjective:
		return b.buildPairs(documents)
	}
	return nil
}

// buildPacked fills each sequence with as many consecutive sentences of a document as fit
func (b *instanceBuilder) buildPacked(documents []Document) []*dataset.Record {
	var records []*dataset.Record
	for _, doc := range documents {
		for _, chunk := range pack(doc, b.sequenceLength-2) {
			tokens := b.wrap(chunk)
			record := &dataset.Record{TokenIDs: tokens}

			switch b.objective {
			case userconfig.RoBERTaObjective:
				record.TokenIDs, record.IsMasked = b.masker.maskTokens(tokens)
				record.TargetIDs = tokens
			case userconfig.SpanBERTObjective:
				record.TokenIDs, record.IsMasked = b.masker.maskSpans(tokens)
				record.TargetIDs = tokens
			}
			records = append(records, record)
		}
	}
	return records
}

// buildSeq2Seq pairs every sentence (source) with the next one (target)
func (b *instanceBuilder) buildSeq2Seq(documents []Document) []*dataset.Record {
	var records []*dataset.Record
	for _, doc := range documents {
		for i := 0; i+1 < len(doc); i++ {
			src, tgt := truncatePair(doc[i], doc[i+1], b.sequenceLength-3)
			tokens, segments := b.joinPair(src, b.tokenSepID, tgt)
			records = append(records, &dataset.Record{
				TokenIDs:   tokens,
				SegmentIDs: segments,
			})
		}
	}
	return records
}

// buildPairs makes next-sentence pairs; half of the second sentences come from another document (nsp 0)
func (b *instanceBuilder) buildPairs(documents []Document) []*dataset.Record {
	var records []*dataset.Record
	for d, doc := range documents {
		for i := 0; i+1 < len(doc); i++ {
			second, isNext := doc[i+1], 1
			if len(documents) > 1 && b.rng.Float64() < 0.5 {
				second, isNext = b.randomSentence(documents, d), 0
			}

			first, second := truncatePair(doc[i], second, b.sequenceLength-3)
			tokens, segments := b.joinPair(first, b.sepID, second)
			input, isMasked := b.masker.maskTokens(tokens)
			nsp := isNext
			records = append(records, &dataset.Record{
				TokenIDs:   input,
				SegmentIDs: segments,
				TargetIDs:  tokens,
				IsMasked:   isMasked,
				NSP:        &nsp,
			})
		}
	}
	return records
}

func (b *instanceBuilder) randomSentence(documents []Document, exclude int) []int {
	d := b.rng.Intn(len(documents) - 1)
	if d >= exclude {
		d++
	}
	doc := documents[d]
	return doc[b.rng.Intn(len(doc))]
}

func (b *instanceBuilder) wrap(ids []int) []int {
	tokens := make([]int, 0, len(ids)+2)
	tokens = append(tokens, b.clsID)
	tokens = append(tokens, ids...)
	return append(tokens, b.sepID)
}

// joinPair lays out [CLS] first sep second [SEP]; segment 1 starts after sep
func (b *instanceBuilder) joinPair(first []int, sep int, second []int) ([]int, []int) {
	tokens := make([]int, 0, len(first)+len(second)+3)
	tokens = append(tokens, b.clsID)
	tokens = append(tokens, first...)
	tokens = append(tokens, sep)
	tokens = append(tokens, second...)
	tokens = append(tokens, b.sepID)

	segments := make([]int, len(tokens))
	for i := len(first) + 2; i < len(segments); i++ {
		segments[i] = 1
	}
	return tokens, segments
}

// pack greedily groups sentences into chunks of at most limit ids; longer sentences are split
func pack(doc Document, limit int) [][]int {
	var chunks [][]int
	var current []int
	for _, sentence := range doc {
		for len(sentence) > 0 {
			space := limit - len(current)
			switch {
			case len(sentence) <= space:
				current = append(current, sentence...)
				sentence = nil
			case len(current) > 0:
				chunks = append(chunks, current)
				current = nil
			default:
				chunks = append(chunks, append([]int(nil), sentence[:limit]...))
				sentence = sentence[limit:]
			}
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// truncatePair drops trailing ids from the longer side until both fit in limit
func truncatePair(first []int, second []int, limit int) ([]int, []int) {
	for len(first)+len(second) > limit {
		if len(first) > len(second) {
			first = first[:len(first)-1]
		} else {
			second = second[:len(second)-1]
		}
	}
	return first, second
}
