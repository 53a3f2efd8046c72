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
	"sort"
)

// PiecewiseLinear maps a step count to a learning rate multiplier. Values are interpolated
// between boundaries and held after the last one; before the first boundary the curve starts
// from (0, 0) unless step 0 is given explicitly.
type PiecewiseLinear struct {
	steps  []int64
	values []float64
}

func NewPiecewiseLinear(schedule map[int]float64) (*PiecewiseLinear, error) {
	p := &PiecewiseLinear{}
	if len(schedule) == 0 {
		return p, nil
	}

	steps := make([]int, 0, len(schedule))
	for step := range schedule {
		if step < 0 {
			return nil, ErrorInvalidSchedule(step)
		}
		steps = append(steps, step)
	}
	sort.Ints(steps)

	if steps[0] != 0 {
		p.steps = append(p.steps, 0)
		p.values = append(p.values, 0)
	}
	for _, step := range steps {
		p.steps = append(p.steps, int64(step))
		p.values = append(p.values, schedule[step])
	}
	return p, nil
}

// At returns the multiplier for a step; an empty schedule is a constant 1
func (p *PiecewiseLinear) At(step int64) float64 {
	if p == nil || len(p.steps) == 0 {
		return 1
	}

	last := len(p.steps) - 1
	if step >= p.steps[last] {
		return p.values[last]
	}
	if step <= p.steps[0] {
		return p.values[0]
	}

	i := sort.Search(len(p.steps), func(i int) bool { return p.steps[i] > step }) - 1
	t := float64(step-p.steps[i]) / float64(p.steps[i+1]-p.steps[i])
	return p.values[i] + t*(p.values[i+1]-p.values[i])
}

func (p *PiecewiseLinear) Len() int {
	if p == nil {
		return 0
	}
	return len(p.steps)
}
