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

package train

import (
	"math"
	"strings"

	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

// ResolveMode picks max for accuracy-like monitors and min for everything else when mode is auto
func ResolveMode(monitor string, mode userconfig.MonitorMode) userconfig.MonitorMode {
	if mode == userconfig.MinMonitorMode || mode == userconfig.MaxMonitorMode {
		return mode
	}
	if strings.Contains(monitor, "acc") {
		return userconfig.MaxMonitorMode
	}
	return userconfig.MinMonitorMode
}

// BestTracker remembers the best value seen; only strict improvements replace it
type BestTracker struct {
	mode userconfig.MonitorMode
	best float64
}

func NewBestTracker(mode userconfig.MonitorMode, initial float64) *BestTracker {
	return &BestTracker{mode: mode, best: initial}
}

// NewUnboundedTracker starts from the worst possible value for mode
func NewUnboundedTracker(mode userconfig.MonitorMode) *BestTracker {
	if mode == userconfig.MaxMonitorMode {
		return NewBestTracker(mode, math.Inf(-1))
	}
	return NewBestTracker(mode, math.Inf(1))
}

// Improved records value if it is strictly better than the best so far
func (t *BestTracker) Improved(value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	better := value < t.best
	if t.mode == userconfig.MaxMonitorMode {
		better = value > t.best
	}
	if better {
		t.best = value
	}
	return better
}

func (t *BestTracker) Best() float64 {
	return t.best
}
