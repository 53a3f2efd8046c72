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

package objectives

import (
	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/nn"
	"gonum.org/v1/gonum/mat"
)

// MLMLoss is the cross-entropy over masked positions, Σ(ce·m) / (Σm + ε), and its logits gradient
func MLMLoss(logits []*mat.Dense, targets [][]int, mask [][]float64) (float64, []*mat.Dense) {
	return maskedCrossEntropy(logits, targets, mask, 0, sumWeights(mask))
}

// MLMAcc is the argmax accuracy over masked positions, Σ(acc·m) / (Σm + ε)
func MLMAcc(logits []*mat.Dense, targets [][]int, mask [][]float64) float64 {
	return maskedAccuracy(logits, targets, mask, 0, sumWeights(mask))
}

// NSPLoss is the mean cross-entropy of the next sentence labels, with its logits gradient
func NSPLoss(logits *mat.Dense, labels []int) (float64, *mat.Dense) {
	rows, _ := logits.Dims()
	return nspCrossEntropy(logits, labels, float64(rows))
}

// nspCrossEntropy sums the cross-entropy of every row and divides it by total
func nspCrossEntropy(logits *mat.Dense, labels []int, total float64) (float64, *mat.Dense) {
	rows, cols := logits.Dims()
	grad := mat.NewDense(rows, cols, nil)
	sum := 0.0
	for i := 0; i < rows; i++ {
		loss, g := nn.CrossEntropy(logits.RawRowView(i), labels[i])
		sum += loss
		gradRow := grad.RawRowView(i)
		for j := range g {
			gradRow[j] = g[j] / total
		}
	}
	return sum / total, grad
}

// NSPAcc is the mean argmax accuracy of the next sentence labels
func NSPAcc(logits *mat.Dense, labels []int) float64 {
	rows, _ := logits.Dims()
	return nspAccuracy(logits, labels, float64(rows))
}

func nspAccuracy(logits *mat.Dense, labels []int, total float64) float64 {
	rows, _ := logits.Dims()
	correct := 0
	for i := 0; i < rows; i++ {
		if nn.Argmax(logits.RawRowView(i)) == labels[i] {
			correct++
		}
	}
	return float64(correct) / total
}

// LMLoss compares the prediction at position i with the token at i+1; mask is aligned with
// tokenIDs and restricted to [:, 1:] (nil means every position counts)
func LMLoss(logits []*mat.Dense, tokenIDs [][]int, mask [][]float64) (float64, []*mat.Dense) {
	weights := shiftMask(tokenIDs, mask)
	return maskedCrossEntropy(logits, tokenIDs, weights, 1, sumWeights(weights))
}

func LMAcc(logits []*mat.Dense, tokenIDs [][]int, mask [][]float64) float64 {
	weights := shiftMask(tokenIDs, mask)
	return maskedAccuracy(logits, tokenIDs, weights, 1, sumWeights(weights))
}

// UniLMLoss is LMLoss supervised only on the second segment: mask *= segment_ids[:, 1:]
func UniLMLoss(logits []*mat.Dense, tokenIDs [][]int, segmentIDs [][]int, mask [][]float64) (float64, []*mat.Dense) {
	weights := unilmMask(tokenIDs, segmentIDs, mask)
	return maskedCrossEntropy(logits, tokenIDs, weights, 1, sumWeights(weights))
}

func UniLMAcc(logits []*mat.Dense, tokenIDs [][]int, segmentIDs [][]int, mask [][]float64) float64 {
	weights := unilmMask(tokenIDs, segmentIDs, mask)
	return maskedAccuracy(logits, tokenIDs, weights, 1, sumWeights(weights))
}

// PaddingMask is 1 for every non-padding token
func PaddingMask(tokenIDs [][]int) [][]float64 {
	mask := make([][]float64, len(tokenIDs))
	for b, seq := range tokenIDs {
		mask[b] = make([]float64, len(seq))
		for i, id := range seq {
			if id != 0 {
				mask[b][i] = 1
			}
		}
	}
	return mask
}

// shiftMask returns the weights of the L-1 causal pairs: weight[i] applies to (pred i, target i+1)
func shiftMask(tokenIDs [][]int, mask [][]float64) [][]float64 {
	shifted := make([][]float64, len(tokenIDs))
	for b, seq := range tokenIDs {
		if len(seq) < 2 {
			continue
		}
		shifted[b] = make([]float64, len(seq)-1)
		for i := range shifted[b] {
			if mask == nil {
				shifted[b][i] = 1
			} else {
				shifted[b][i] = mask[b][i+1]
			}
		}
	}
	return shifted
}

func unilmMask(tokenIDs [][]int, segmentIDs [][]int, mask [][]float64) [][]float64 {
	shifted := shiftMask(tokenIDs, mask)
	for b := range shifted {
		for i := range shifted[b] {
			shifted[b][i] *= float64(segmentIDs[b][i+1])
		}
	}
	return shifted
}

// maskedCrossEntropy pairs prediction row i with targets[b][i+shift], weighted by weights[b][i].
// The weighted sum is divided by total + ε, where total is the weight sum of the whole batch
// the logits are a part of.
func maskedCrossEntropy(logits []*mat.Dense, targets [][]int, weights [][]float64, shift int, total float64) (float64, []*mat.Dense) {
	grads := make([]*mat.Dense, len(logits))
	denom := total + consts.Epsilon

	sum := 0.0
	for b, l := range logits {
		rows, cols := l.Dims()
		grads[b] = mat.NewDense(rows, cols, nil)
		for i, w := range weights[b] {
			if w == 0 {
				continue
			}
			loss, g := nn.CrossEntropy(l.RawRowView(i), targets[b][i+shift])
			sum += loss * w
			gradRow := grads[b].RawRowView(i)
			for j := range g {
				gradRow[j] = g[j] * w / denom
			}
		}
	}
	return sum / denom, grads
}

func maskedAccuracy(logits []*mat.Dense, targets [][]int, weights [][]float64, shift int, total float64) float64 {
	correct := 0.0
	for b, l := range logits {
		for i, w := range weights[b] {
			if w == 0 {
				continue
			}
			if nn.Argmax(l.RawRowView(i)) == targets[b][i+shift] {
				correct += w
			}
		}
	}
	return correct / (total + consts.Epsilon)
}

func sumWeights(weights [][]float64) float64 {
	sum := 0.0
	for _, row := range weights {
		for _, w := range row {
			sum += w
		}
	}
	return sum
}
