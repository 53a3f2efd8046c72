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
	"context"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
)

// StepFunc runs one training step on a batch and returns its logs
type StepFunc func(ctx context.Context, batch *dataset.Batch) (model.Logs, error)

// Applier consumes gradients; the optimizer is the only implementation outside of tests
type Applier interface {
	Apply(params *nn.Params, grads nn.Grads) bool
}

// NewStep builds the forward, backward and apply step of a model
func NewStep(mdl model.Model, applier Applier, strategy *Mirrored) StepFunc {
	return func(ctx context.Context, batch *dataset.Batch) (model.Logs, error) {
		logs, grads, err := strategy.ComputeGradients(mdl, batch)
		if err != nil {
			return nil, err
		}
		applier.Apply(mdl.Params(), grads)
		return logs, nil
	}
}
