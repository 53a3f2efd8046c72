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
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Initializer fills params with seeded random values
type Initializer struct {
	rng *rand.Rand
}

func NewInitializer(seed int64) *Initializer {
	return &Initializer{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// TruncatedNormal draws from N(0, stddev^2), redrawing values beyond two standard deviations
func (in *Initializer) TruncatedNormal(m *mat.Dense, stddev float64) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := in.rng.NormFloat64()
			for v < -2 || v > 2 {
				v = in.rng.NormFloat64()
			}
			m.Set(i, j, v*stddev)
		}
	}
}

func Ones(m *mat.Dense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, 1)
		}
	}
}
