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
	"math"
	"math/rand"
)

const (
	_maskProb    = 0.8
	_randomProb  = 0.1
	_attemptsPer = 10
)

// masker chooses prediction positions and corrupts them: 80% [MASK], 10% random token, 10% unchanged
type masker struct {
	rng        *rand.Rand
	rate       float64
	maxSpan    int
	spanP      float64
	maskID     int
	vocabSize  int
	// never selected for prediction
	structural map[int]bool
	// never drawn as a random replacement
	reserved   map[int]bool
}

func (m *masker) candidates(tokens []int) []int {
	var positions []int
	for i, id := range tokens {
		if !m.structural[id] {
			positions = append(positions, i)
		}
	}
	return positions
}

func (m *masker) budget(numCandidates int) int {
	if numCandidates == 0 {
		return 0
	}
	n := int(math.Round(float64(numCandidates) * m.rate))
	if n < 1 {
		n = 1
	}
	return n
}

func (m *masker) randomToken() int {
	if len(m.reserved) >= m.vocabSize {
		return m.maskID
	}
	for {
		id := m.rng.Intn(m.vocabSize)
		if !m.reserved[id] {
			return id
		}
	}
}

// corrupt replaces the positions as one unit, so a span is masked, randomized or kept together
func (m *masker) corrupt(input []int, positions []int) {
	r := m.rng.Float64()
	for _, p := range positions {
		switch {
		case r < _maskProb:
			input[p] = m.maskID
		case r < _maskProb+_randomProb:
			input[p] = m.randomToken()
		}
	}
}

// maskTokens selects individual positions
func (m *masker) maskTokens(tokens []int) ([]int, []int) {
	input := append([]int(nil), tokens...)
	isMasked := make([]int, len(tokens))

	candidates := m.candidates(tokens)
	budget := m.budget(len(candidates))
	for _, idx := range m.rng.Perm(len(candidates))[:budget] {
		p := candidates[idx]
		isMasked[p] = 1
		m.corrupt(input, []int{p})
	}
	return input, isMasked
}

// spanLength draws from a geometric distribution with success probability spanP, clipped to maxSpan
func (m *masker) spanLength() int {
	length := 1
	for length < m.maxSpan && m.rng.Float64() > m.spanP {
		length++
	}
	return length
}

// maskSpans selects contiguous runs of non-structural positions
func (m *masker) maskSpans(tokens []int) ([]int, []int) {
	input := append([]int(nil), tokens...)
	isMasked := make([]int, len(tokens))

	candidates := m.candidates(tokens)
	budget := m.budget(len(candidates))
	count := 0
	for attempt := 0; count < budget && attempt < _attemptsPer*len(tokens); attempt++ {
		length := m.spanLength()
		start := candidates[m.rng.Intn(len(candidates))]

		var span []int
		for p := start; p < len(tokens) && len(span) < length && count+len(span) < budget; p++ {
			if m.structural[tokens[p]] || isMasked[p] == 1 {
				break
			}
			span = append(span, p)
		}
		if len(span) == 0 {
			continue
		}

		for _, p := range span {
			isMasked[p] = 1
		}
		m.corrupt(input, span)
		count += len(span)
	}
	return input, isMasked
}
