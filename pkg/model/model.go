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

package model

import (
	"sort"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/nn"
)

// LossKey names the total loss in Logs
const LossKey = "loss"

// Logs holds the named scalar outputs of a step or an epoch
type Logs map[string]float64

// Keys returns the log names in sorted order
func (l Logs) Keys() []string {
	keys := make([]string, 0, len(l))
	for key := range l {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (l Logs) Copy() Logs {
	copied := make(Logs, len(l))
	for key, value := range l {
		copied[key] = value
	}
	return copied
}

// Totals maps each output name to the weight it averages over in a batch, either examples or
// supervised token positions
type Totals map[string]float64

// Model is a trainable network. Compute reads params only, so one model can serve several
// replicas at once as long as each passes its own grads.
type Model interface {
	Params() *nn.Params
	// OutputNames lists the logged outputs other than the total loss
	OutputNames() []string
	// Totals reads the batch only; no forward pass runs
	Totals(batch *dataset.Batch) (Totals, error)
	// Compute runs the forward pass with every output divided by its entry in totals (nil means
	// the batch's own), so the logs and grads of the shards of a batch add up to those of the
	// batch. When grads is non-nil it also accumulates the gradients of the total loss.
	Compute(batch *dataset.Batch, totals Totals, grads nn.Grads) (Logs, error)
}

// EncoderParams returns the params shared by every head, in model order
func EncoderParams(m Model) *nn.Params {
	return m.Params().Subset(IsEncoderParam)
}
