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
	"strings"

	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

type Config struct {
	Type                       userconfig.OptimizerType
	LearningRate               float64
	WeightDecayRate            float64
	ExcludeFromWeightDecay     []string
	ExcludeFromLayerAdaptation []string
	// LRSchedule maps a micro-step count to a learning rate multiplier; empty means constant
	LRSchedule     map[int]float64
	GradAccumSteps int
	BiasCorrection bool
}

// Optimizer applies Adam, then weight decay, then layer adaptation, with the learning rate
// scaled by a piecewise linear schedule and updates applied once per accumulation window.
type Optimizer struct {
	rule         Rule
	learningRate float64
	schedule     *PiecewiseLinear
	accumSteps   int

	accum      nn.Grads
	iterations int64
	updates    int64
}

func New(config Config) (*Optimizer, error) {
	if config.GradAccumSteps < 1 {
		return nil, ErrorInvalidGradAccumSteps(config.GradAccumSteps)
	}

	var rule Rule = NewAdam(config.BiasCorrection)

	switch config.Type {
	case userconfig.AdamOptimizerType, userconfig.LAMBOptimizerType:
	default:
		return nil, ErrorInvalidOptimizerType(config.Type.String())
	}

	if config.WeightDecayRate > 0 {
		exclude, err := NewMatcher(config.ExcludeFromWeightDecay)
		if err != nil {
			return nil, err
		}
		rule = &WeightDecay{Rule: rule, Rate: config.WeightDecayRate, Exclude: exclude}
	}

	if config.Type == userconfig.LAMBOptimizerType {
		exclude, err := NewMatcher(config.ExcludeFromLayerAdaptation)
		if err != nil {
			return nil, err
		}
		rule = &LayerAdaptation{Rule: rule, Exclude: exclude}
	}

	schedule, err := NewPiecewiseLinear(config.LRSchedule)
	if err != nil {
		return nil, err
	}

	return &Optimizer{
		rule:         rule,
		learningRate: config.LearningRate,
		schedule:     schedule,
		accumSteps:   config.GradAccumSteps,
	}, nil
}

// Apply consumes the gradients of one micro-step and reports whether params were updated
func (o *Optimizer) Apply(params *nn.Params, grads nn.Grads) bool {
	step := o.iterations
	o.iterations++

	if o.accumSteps > 1 {
		if o.accum == nil {
			o.accum = params.NewGrads()
		}
		o.accum.Add(grads)
		if o.iterations%int64(o.accumSteps) != 0 {
			return false
		}
		grads = o.accum
		grads.Scale(1 / float64(o.accumSteps))
		defer o.accum.Zero()
	}

	o.updates++
	lr := o.learningRate * o.schedule.At(step)
	for _, param := range params.List() {
		grad, ok := grads[param.Name]
		if !ok {
			continue
		}
		param.Value.Copy(o.rule.Propose(param, grad, lr, o.updates))
	}
	return true
}

// LearningRateMultiplier is the schedule value at the current micro-step
func (o *Optimizer) LearningRateMultiplier() float64 {
	return o.schedule.At(o.iterations)
}

func (o *Optimizer) LearningRate() float64 {
	return o.learningRate * o.LearningRateMultiplier()
}

func (o *Optimizer) Iterations() int64 {
	return o.iterations
}

func (o *Optimizer) Updates() int64 {
	return o.updates
}

// String describes the composition, innermost first
func (o *Optimizer) String() string {
	parts := []string{o.rule.Name()}
	if o.schedule.Len() > 0 {
		parts = append(parts, "PiecewiseLinear")
	}
	if o.accumSteps > 1 {
		parts = append(parts, "GradientAccumulation")
	}
	return strings.Join(parts, " -> ")
}
