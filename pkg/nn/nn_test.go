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
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParams(t *testing.T) {
	a := NewParam("Encoder-Dense", "kernel", 2, 3)
	b := NewParam("Encoder-Dense", "bias", 1, 3)
	c := NewParam("Embedding-Norm", "gamma", 1, 3)

	params, err := NewParams(a, b, c)
	require.NoError(t, err)
	require.Equal(t, []string{"Encoder-Dense/kernel", "Encoder-Dense/bias", "Embedding-Norm/gamma"}, params.Names())
	require.Equal(t, 12, params.NumValues())
	require.Equal(t, []*Param{a, b}, params.Layer("Encoder-Dense"))

	got, ok := params.Get("Encoder-Dense/bias")
	require.True(t, ok)
	require.Same(t, b, got)

	err = params.Add(NewParam("Encoder-Dense", "bias", 1, 3))
	require.Equal(t, ErrDuplicateParam, errors.GetKind(err))

	subset := params.Subset(func(name string) bool { return name != "Encoder-Dense/kernel" })
	require.Equal(t, 2, subset.Len())
}

func TestParamsAssign(t *testing.T) {
	a := NewParam("Encoder-Dense", "kernel", 2, 2)
	params, err := NewParams(a)
	require.NoError(t, err)

	require.NoError(t, params.Assign(map[string]*mat.Dense{
		"Encoder-Dense/kernel": mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
	}, false))
	require.Equal(t, 4.0, a.Value.At(1, 1))

	err = params.Assign(map[string]*mat.Dense{
		"Encoder-Dense/kernel": mat.NewDense(1, 2, nil),
	}, false)
	require.Equal(t, ErrShapeMismatch, errors.GetKind(err))

	err = params.Assign(map[string]*mat.Dense{}, false)
	require.Equal(t, ErrParamNotFound, errors.GetKind(err))
	require.NoError(t, params.Assign(map[string]*mat.Dense{}, true))
}

func TestGrads(t *testing.T) {
	params, err := NewParams(NewParam("Encoder-Dense", "bias", 1, 2))
	require.NoError(t, err)

	g1 := params.NewGrads()
	g2 := params.NewGrads()
	g1["Encoder-Dense/bias"].Set(0, 0, 1)
	g2["Encoder-Dense/bias"].Set(0, 0, 3)
	g1.Add(g2)
	g1.Scale(0.5)
	require.Equal(t, 2.0, g1["Encoder-Dense/bias"].At(0, 0))

	g1.Zero()
	require.Equal(t, 0.0, g1["Encoder-Dense/bias"].At(0, 0))
}

func TestCrossEntropy(t *testing.T) {
	loss, grad := CrossEntropy([]float64{0, 0}, 1)
	require.InDelta(t, math.Log(2), loss, 1e-12)
	require.InDeltaSlice(t, []float64{0.5, -0.5}, grad, 1e-12)

	loss, _ = CrossEntropy([]float64{1000, -1000}, 0)
	require.False(t, math.IsNaN(loss) || math.IsInf(loss, 0))
	require.InDelta(t, 0, loss, 1e-9)
}

func TestLayerNormBackwardMatchesNumericGradient(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{0.1, -0.4, 0.7, 1.2, 0.3, -0.5})
	gamma := mat.NewDense(1, 3, []float64{1.5, 0.5, -1})
	beta := mat.NewDense(1, 3, []float64{0.1, 0.2, 0.3})
	weights := mat.NewDense(2, 3, []float64{0.3, -0.2, 0.9, 0.4, 0.8, -0.6})

	objective := func(x *mat.Dense) float64 {
		y, _ := LayerNorm(x, gamma, beta)
		total := 0.0
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				total += y.At(i, j) * weights.At(i, j)
			}
		}
		return total
	}

	_, cache := LayerNorm(x, gamma, beta)
	dGamma := mat.NewDense(1, 3, nil)
	dBeta := mat.NewDense(1, 3, nil)
	dX := LayerNormBackward(weights, gamma, cache, dGamma, dBeta)

	const h = 1e-6
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			plus := mat.DenseCopyOf(x)
			plus.Set(i, j, x.At(i, j)+h)
			minus := mat.DenseCopyOf(x)
			minus.Set(i, j, x.At(i, j)-h)
			numeric := (objective(plus) - objective(minus)) / (2 * h)
			require.InDelta(t, numeric, dX.At(i, j), 1e-5)
		}
	}
	require.InDelta(t, 0.7, dBeta.At(0, 0), 1e-12)
}

func TestFrobeniusNorm(t *testing.T) {
	require.InDelta(t, 5.0, FrobeniusNorm(mat.NewDense(2, 2, []float64{3, 0, 0, 4})), 1e-12)
	require.InDelta(t, math.Sqrt(30), FrobeniusNorm(mat.NewDense(2, 2, []float64{1, 2, 3, 4})), 1e-12)
}

func TestSummary(t *testing.T) {
	params, err := NewParams(
		NewParam("Embedding-Token", "embeddings", 10, 4),
		NewParam("Encoder-Dense", "kernel", 4, 4),
		NewParam("Encoder-Dense", "bias", 1, 4),
	)
	require.NoError(t, err)

	summary := Summary("encoder", params)
	require.Contains(t, summary, "Embedding-Token")
	require.Contains(t, summary, "10 x 4")
	require.Contains(t, summary, "embeddings")
	require.Contains(t, summary, "total params: 60")
}
