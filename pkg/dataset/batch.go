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
	"context"
)

// Batch is a rectangular set of examples; optional fields are nil when the task does not use them
type Batch struct {
	TokenIDs   [][]int
	SegmentIDs [][]int

	// classification
	Labels []int

	// masked language modeling
	TargetIDs [][]int
	IsMasked  [][]float64

	// next sentence prediction
	NSP []int
}

// Source yields batches for training; sources used by fit loops never run dry
type Source interface {
	Next(ctx context.Context) (*Batch, error)
}

func (b *Batch) Size() int {
	return len(b.TokenIDs)
}

// SeqLen is the padded length shared by every sequence of the batch
func (b *Batch) SeqLen() int {
	if len(b.TokenIDs) == 0 {
		return 0
	}
	return len(b.TokenIDs[0])
}

// Shard splits the batch into at most n contiguous non-empty parts
func (b *Batch) Shard(n int) []*Batch {
	size := b.Size()
	if n > size {
		n = size
	}
	if n <= 1 {
		return []*Batch{b}
	}

	shards := make([]*Batch, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		end := start + size/n
		if i < size%n {
			end++
		}
		shards = append(shards, b.slice(start, end))
		start = end
	}
	return shards
}

func (b *Batch) slice(start int, end int) *Batch {
	shard := &Batch{
		TokenIDs: b.TokenIDs[start:end],
	}
	if b.SegmentIDs != nil {
		shard.SegmentIDs = b.SegmentIDs[start:end]
	}
	if b.Labels != nil {
		shard.Labels = b.Labels[start:end]
	}
	if b.TargetIDs != nil {
		shard.TargetIDs = b.TargetIDs[start:end]
	}
	if b.IsMasked != nil {
		shard.IsMasked = b.IsMasked[start:end]
	}
	if b.NSP != nil {
		shard.NSP = b.NSP[start:end]
	}
	return shard
}

// PadSequences right-pads every sequence with zeros to the longest length
func PadSequences(seqs [][]int) [][]int {
	length := 0
	for _, seq := range seqs {
		if len(seq) > length {
			length = len(seq)
		}
	}
	return padTo(seqs, length)
}

func padTo(seqs [][]int, length int) [][]int {
	padded := make([][]int, len(seqs))
	for i, seq := range seqs {
		row := make([]int, length)
		copy(row, seq)
		padded[i] = row
	}
	return padded
}

func padFloatsTo(seqs [][]float64, length int) [][]float64 {
	padded := make([][]float64, len(seqs))
	for i, seq := range seqs {
		row := make([]float64, length)
		copy(row, seq)
		padded[i] = row
	}
	return padded
}
