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

package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const LayerNormEpsilon = 1e-12

// LayerNormCache keeps what the backward pass of a row-wise layer norm needs
type LayerNormCache struct {
	XHat   *mat.Dense
	InvStd []float64
}

// LayerNorm normalizes each row of x and applies gamma and beta (both 1 x d)
func LayerNorm(x *mat.Dense, gamma *mat.Dense, beta *mat.Dense) (*mat.Dense, *LayerNormCache) {
	rows, d := x.Dims()
	out := mat.NewDense(rows, d, nil)
	cache := &LayerNormCache{
		XHat:   mat.NewDense(rows, d, nil),
		InvStd: make([]float64, rows),
	}

	gammaRow := gamma.RawRowView(0)
	betaRow := beta.RawRowView(0)
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		mean := floats.Sum(row) / float64(d)
		variance := 0.0
		for _, v := range row {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(d)
		invStd := 1 / math.Sqrt(variance+LayerNormEpsilon)
		cache.InvStd[i] = invStd

		xHatRow := cache.XHat.RawRowView(i)
		outRow := out.RawRowView(i)
		for j, v := range row {
			xHatRow[j] = (v - mean) * invStd
			outRow[j] = gammaRow[j]*xHatRow[j] + betaRow[j]
		}
	}
	return out, cache
}

// LayerNormBackward returns dX and accumulates into dGamma and dBeta
func LayerNormBackward(dY *mat.Dense, gamma *mat.Dense, cache *LayerNormCache, dGamma *mat.Dense, dBeta *mat.Dense) *mat.Dense {
	rows, d := dY.Dims()
	dX := mat.NewDense(rows, d, nil)

	gammaRow := gamma.RawRowView(0)
	dGammaRow := dGamma.RawRowView(0)
	dBetaRow := dBeta.RawRowView(0)
	dXHat := make([]float64, d)
	for i := 0; i < rows; i++ {
		dYRow := dY.RawRowView(i)
		xHatRow := cache.XHat.RawRowView(i)
		for j := range dYRow {
			dGammaRow[j] += dYRow[j] * xHatRow[j]
			dBetaRow[j] += dYRow[j]
			dXHat[j] = dYRow[j] * gammaRow[j]
		}
		meanDXHat := floats.Sum(dXHat) / float64(d)
		meanDXHatXHat := floats.Dot(dXHat, xHatRow) / float64(d)

		dXRow := dX.RawRowView(i)
		for j := range dXRow {
			dXRow[j] = cache.InvStd[i] * (dXHat[j] - meanDXHat - xHatRow[j]*meanDXHatXHat)
		}
	}
	return dX
}

// Softmax returns the softmax of a row of logits
func Softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	logSumExp := floats.LogSumExp(logits)
	for i, v := range logits {
		out[i] = math.Exp(v - logSumExp)
	}
	return out
}

// CrossEntropy is -log softmax(logits)[target], with its gradient w.r.t. the logits
func CrossEntropy(logits []float64, target int) (float64, []float64) {
	grad := Softmax(logits)
	loss := floats.LogSumExp(logits) - logits[target]
	grad[target] -= 1
	return loss, grad
}

func Argmax(row []float64) int {
	if len(row) == 0 {
		return -1
	}
	return floats.MaxIdx(row)
}

// AddRowVector adds the 1 x d vector b to every row of m in place
func AddRowVector(m *mat.Dense, b *mat.Dense) {
	bRow := b.RawRowView(0)
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(m.RawRowView(i), bRow)
	}
}

// SumRowsInto accumulates the column sums of m into the 1 x d vector dst
func SumRowsInto(dst *mat.Dense, m *mat.Dense) {
	dstRow := dst.RawRowView(0)
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(dstRow, m.RawRowView(i))
	}
}

// Tanh applies tanh element-wise in place
func Tanh(m *mat.Dense) {
	m.Apply(func(i, j int, v float64) float64 {
		return math.Tanh(v)
	}, m)
}

// TanhBackward returns dY * (1 - y^2) for y = tanh(x)
func TanhBackward(dY *mat.Dense, y *mat.Dense) *mat.Dense {
	rows, cols := y.Dims()
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		yij := y.At(i, j)
		return dY.At(i, j) * (1 - yij*yij)
	}, out)
	return out
}

// FrobeniusNorm is the L2 norm of all the entries of m
func FrobeniusNorm(m *mat.Dense) float64 {
	rows, _ := m.Dims()
	sumSquares := 0.0
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		sumSquares += floats.Dot(row, row)
	}
	return math.Sqrt(sumSquares)
}
