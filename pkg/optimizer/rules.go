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

	"github.com/cortexlabs/trainer/pkg/nn"
	"gonum.org/v1/gonum/mat"
)

// Rule proposes the next value of a param. t counts applied updates, starting at 1.
type Rule interface {
	Name() string
	Propose(param *nn.Param, grad *mat.Dense, lr float64, t int64) *mat.Dense
}

const (
	DefaultBeta1   = 0.9
	DefaultBeta2   = 0.999
	DefaultEpsilon = 1e-6
)

// Adam keeps first and second moment estimates per param
type Adam struct {
	Beta1          float64
	Beta2          float64
	Epsilon        float64
	BiasCorrection bool

	m map[string]*mat.Dense
	v map[string]*mat.Dense
}

func NewAdam(biasCorrection bool) *Adam {
	return &Adam{
		Beta1:          DefaultBeta1,
		Beta2:          DefaultBeta2,
		Epsilon:        DefaultEpsilon,
		BiasCorrection: biasCorrection,
		m:              map[string]*mat.Dense{},
		v:              map[string]*mat.Dense{},
	}
}

func (a *Adam) Name() string {
	return "Adam"
}

func (a *Adam) Propose(param *nn.Param, grad *mat.Dense, lr float64, t int64) *mat.Dense {
	rows, cols := param.Value.Dims()
	m, ok := a.m[param.Name]
	if !ok {
		m = mat.NewDense(rows, cols, nil)
		a.m[param.Name] = m
	}
	v, ok := a.v[param.Name]
	if !ok {
		v = mat.NewDense(rows, cols, nil)
		a.v[param.Name] = v
	}

	mCorrection, vCorrection := 1.0, 1.0
	if a.BiasCorrection {
		mCorrection = 1 - math.Pow(a.Beta1, float64(t))
		vCorrection = 1 - math.Pow(a.Beta2, float64(t))
	}

	next := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		xRow := param.Value.RawRowView(i)
		gRow := grad.RawRowView(i)
		mRow := m.RawRowView(i)
		vRow := v.RawRowView(i)
		nextRow := next.RawRowView(i)
		for j, g := range gRow {
			mRow[j] = a.Beta1*mRow[j] + (1-a.Beta1)*g
			vRow[j] = a.Beta2*vRow[j] + (1-a.Beta2)*g*g
			mHat := mRow[j] / mCorrection
			vHat := vRow[j] / vCorrection
			nextRow[j] = xRow[j] - lr*mHat/(math.Sqrt(vHat)+a.Epsilon)
		}
	}
	return next
}

// WeightDecay subtracts lr * rate * x from the proposal of the wrapped rule
type WeightDecay struct {
	Rule
	Rate    float64
	Exclude *Matcher
}

func (w *WeightDecay) Name() string {
	return w.Rule.Name() + " -> WeightDecay"
}

func (w *WeightDecay) Propose(param *nn.Param, grad *mat.Dense, lr float64, t int64) *mat.Dense {
	next := w.Rule.Propose(param, grad, lr, t)
	if w.Exclude.Match(param.Name) {
		return next
	}
	next.Add(next, scaled(param.Value, -lr*w.Rate))
	return next
}

// LayerAdaptation rescales the step of the wrapped rule by ||x|| / ||step / lr||
type LayerAdaptation struct {
	Rule
	Exclude *Matcher
}

const (
	_minAdaptationLR = 1e-7
	_maxAdaptationLR = 1e10
)

func (l *LayerAdaptation) Name() string {
	return l.Rule.Name() + " -> LayerAdaptation"
}

func (l *LayerAdaptation) Propose(param *nn.Param, grad *mat.Dense, lr float64, t int64) *mat.Dense {
	next := l.Rule.Propose(param, grad, lr, t)
	if l.Exclude.Match(param.Name) {
		return next
	}

	var step mat.Dense
	step.Sub(next, param.Value)

	lrT := math.Min(math.Max(lr, _minAdaptationLR), _maxAdaptationLR)
	xNorm := nn.FrobeniusNorm(param.Value)
	gNorm := nn.FrobeniusNorm(&step) / lrT

	ratio := 1.0
	if xNorm > 0 && gNorm > _minAdaptationLR {
		ratio = xNorm / gNorm
	}

	next.Add(param.Value, scaled(&step, ratio))
	return next
}

func scaled(m *mat.Dense, f float64) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}
