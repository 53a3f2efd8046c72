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

package optimizer

import (
	"math"
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newParams(t *testing.T, values map[string][]float64) *nn.Params {
	t.Helper()
	params, err := nn.NewParams()
	require.NoError(t, err)
	for _, name := range []string{"Encoder-Dense/kernel", "Embedding-Norm/gamma", "Encoder-Dense/bias"} {
		value, ok := values[name]
		if !ok {
			continue
		}
		require.NoError(t, params.Add(&nn.Param{Name: name, Value: mat.NewDense(1, len(value), append([]float64(nil), value...))}))
	}
	return params
}

func gradsOf(params *nn.Params, value float64) nn.Grads {
	grads := params.NewGrads()
	for _, grad := range grads {
		rows, cols := grad.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				grad.Set(i, j, value)
			}
		}
	}
	return grads
}

func valueOf(params *nn.Params, name string) []float64 {
	param, _ := params.Get(name)
	return param.Value.RawRowView(0)
}

func TestPiecewiseLinear(t *testing.T) {
	schedule, err := NewPiecewiseLinear(map[int]float64{1000: 1, 5000: 0})
	require.NoError(t, err)
	for step, expected := range map[int64]float64{
		0:    0,
		500:  0.5,
		1000: 1,
		3000: 0.5,
		5000: 0,
		9000: 0,
	} {
		require.InDelta(t, expected, schedule.At(step), 1e-12, "step %d", step)
	}

	schedule, err = NewPiecewiseLinear(map[int]float64{0: 0.5, 10: 1})
	require.NoError(t, err)
	require.Equal(t, 0.5, schedule.At(0))
	require.InDelta(t, 0.75, schedule.At(5), 1e-12)
	require.Equal(t, 1.0, schedule.At(20))

	schedule, err = NewPiecewiseLinear(nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, schedule.At(123))

	_, err = NewPiecewiseLinear(map[int]float64{-1: 1})
	require.Equal(t, ErrInvalidSchedule, errors.GetKind(err))
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher([]string{"*Norm*", "bias"})
	require.NoError(t, err)
	require.True(t, m.Match("Embedding-Norm/gamma"))
	require.True(t, m.Match("MLM-Bias/bias"))
	require.True(t, m.Match("Encoder-Dense/bias"))
	require.False(t, m.Match("Encoder-Dense/kernel"))
	require.False(t, m.Match("Embedding-Token/embeddings"))

	var none *Matcher
	require.False(t, none.Match("anything"))
}

func TestAdam(t *testing.T) {
	lr := 0.1

	params := newParams(t, map[string][]float64{"Encoder-Dense/kernel": {1, 2}})
	o, err := New(Config{Type: userconfig.AdamOptimizerType, LearningRate: lr, GradAccumSteps: 1})
	require.NoError(t, err)
	require.True(t, o.Apply(params, gradsOf(params, 1)))

	// m = 0.1, v = 0.001 without bias correction
	step := lr * 0.1 / (math.Sqrt(0.001) + DefaultEpsilon)
	require.InDeltaSlice(t, []float64{1 - step, 2 - step}, valueOf(params, "Encoder-Dense/kernel"), 1e-12)

	params = newParams(t, map[string][]float64{"Encoder-Dense/kernel": {1, 2}})
	o, err = New(Config{Type: userconfig.AdamOptimizerType, LearningRate: lr, GradAccumSteps: 1, BiasCorrection: true})
	require.NoError(t, err)
	o.Apply(params, gradsOf(params, 1))

	step = lr * 1 / (1 + DefaultEpsilon)
	require.InDeltaSlice(t, []float64{1 - step, 2 - step}, valueOf(params, "Encoder-Dense/kernel"), 1e-9)
}

func TestWeightDecayExclusion(t *testing.T) {
	lr, rate := 0.1, 0.5
	params := newParams(t, map[string][]float64{
		"Encoder-Dense/kernel": {1, 2},
		"Embedding-Norm/gamma": {1, 2},
		"Encoder-Dense/bias":   {1, 2},
	})
	o, err := New(Config{
		Type:                   userconfig.AdamOptimizerType,
		LearningRate:           lr,
		WeightDecayRate:        rate,
		ExcludeFromWeightDecay: []string{"*Norm*", "*bias*"},
		GradAccumSteps:         1,
	})
	require.NoError(t, err)

	// zero gradients leave only the decay term
	o.Apply(params, gradsOf(params, 0))
	require.InDeltaSlice(t, []float64{1 - lr*rate, 2 - 2*lr*rate}, valueOf(params, "Encoder-Dense/kernel"), 1e-12)
	require.Equal(t, []float64{1, 2}, valueOf(params, "Embedding-Norm/gamma"))
	require.Equal(t, []float64{1, 2}, valueOf(params, "Encoder-Dense/bias"))
}

func TestLayerAdaptationWrapsWeightDecay(t *testing.T) {
	lr, rate := 0.1, 0.5
	params := newParams(t, map[string][]float64{
		"Encoder-Dense/kernel": {3, 4},
		"Embedding-Norm/gamma": {3, 4},
	})
	o, err := New(Config{
		Type:                       userconfig.LAMBOptimizerType,
		LearningRate:               lr,
		WeightDecayRate:            rate,
		ExcludeFromWeightDecay:     []string{"*Norm*"},
		ExcludeFromLayerAdaptation: []string{"*Norm*"},
		LRSchedule:                 map[int]float64{0: 1, 10: 1},
		GradAccumSteps:             2,
	})
	require.NoError(t, err)
	require.Equal(t, "Adam -> WeightDecay -> LayerAdaptation -> PiecewiseLinear -> GradientAccumulation", o.String())

	require.False(t, o.Apply(params, gradsOf(params, 0)))
	require.True(t, o.Apply(params, gradsOf(params, 0)))

	// the decay step -lr*rate*x has norm lr*rate*||x||, so adaptation rescales it to -lr*x
	require.InDeltaSlice(t, []float64{3 * (1 - lr), 4 * (1 - lr)}, valueOf(params, "Encoder-Dense/kernel"), 1e-12)
	require.Equal(t, []float64{3, 4}, valueOf(params, "Embedding-Norm/gamma"))
}

func TestGradientAccumulation(t *testing.T) {
	params := newParams(t, map[string][]float64{"Encoder-Dense/kernel": {1, 2}})
	o, err := New(Config{Type: userconfig.AdamOptimizerType, LearningRate: 0.1, GradAccumSteps: 2, BiasCorrection: true})
	require.NoError(t, err)

	require.False(t, o.Apply(params, gradsOf(params, 1)))
	require.Equal(t, []float64{1, 2}, valueOf(params, "Encoder-Dense/kernel"))
	require.True(t, o.Apply(params, gradsOf(params, 3)))
	require.EqualValues(t, 2, o.Iterations())
	require.EqualValues(t, 1, o.Updates())

	reference := newParams(t, map[string][]float64{"Encoder-Dense/kernel": {1, 2}})
	single, err := New(Config{Type: userconfig.AdamOptimizerType, LearningRate: 0.1, GradAccumSteps: 1, BiasCorrection: true})
	require.NoError(t, err)
	single.Apply(reference, gradsOf(reference, 2))
	require.InDeltaSlice(t, valueOf(reference, "Encoder-Dense/kernel"), valueOf(params, "Encoder-Dense/kernel"), 1e-12)

	// the buffer is cleared after each update
	require.False(t, o.Apply(params, gradsOf(params, 5)))
}

func TestScheduleCountsMicroSteps(t *testing.T) {
	params := newParams(t, map[string][]float64{"Encoder-Dense/kernel": {1}})
	o, err := New(Config{
		Type:           userconfig.AdamOptimizerType,
		LearningRate:   2,
		LRSchedule:     map[int]float64{4: 1},
		GradAccumSteps: 2,
	})
	require.NoError(t, err)

	o.Apply(params, gradsOf(params, 1))
	o.Apply(params, gradsOf(params, 1))
	require.InDelta(t, 0.5, o.LearningRateMultiplier(), 1e-12)
	require.InDelta(t, 1.0, o.LearningRate(), 1e-12)
}

func TestNewErrors(t *testing.T) {
	_, err := New(Config{Type: userconfig.UnknownOptimizerType, GradAccumSteps: 1})
	require.Equal(t, ErrInvalidOptimizerType, errors.GetKind(err))

	_, err = New(Config{Type: userconfig.AdamOptimizerType})
	require.Equal(t, ErrInvalidGradAccumSteps, errors.GetKind(err))
}
