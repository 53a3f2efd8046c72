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
	"sync"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
	"gonum.org/v1/gonum/mat"
)

const _perturbationEpsilon = 1e-8

// WithAdversarialPerturbation wraps step with fast gradient perturbation of an embedding table:
// the table is moved by epsilon * g / ||g|| along the gradient g of the loss on the same batch,
// the step runs on the perturbed table, and the perturbation is removed again.
func WithAdversarialPerturbation(step StepFunc, mdl model.Model, strategy *Mirrored, layer string, epsilon float64) (StepFunc, error) {
	embeddings := mdl.Params().Layer(layer)
	if len(embeddings) == 0 {
		return nil, ErrorEmbeddingNotFound(layer, layerNames(mdl.Params()))
	}
	table := embeddings[0]

	var mu sync.Mutex

	return func(ctx context.Context, batch *dataset.Batch) (model.Logs, error) {
		mu.Lock()
		defer mu.Unlock()

		_, grads, err := strategy.ComputeGradients(mdl, batch)
		if err != nil {
			return nil, err
		}

		delta := perturbation(grads[table.Name], epsilon)
		original := mat.DenseCopyOf(table.Value)
		table.Value.Add(table.Value, delta)
		perturbed := mat.DenseCopyOf(table.Value)

		logs, stepErr := step(ctx, batch)

		// keep whatever the step changed, on top of the unperturbed table
		table.Value.Sub(table.Value, perturbed)
		table.Value.Add(table.Value, original)

		return logs, stepErr
	}, nil
}

func perturbation(grad *mat.Dense, epsilon float64) *mat.Dense {
	var delta mat.Dense
	delta.Scale(epsilon/(nn.FrobeniusNorm(grad)+_perturbationEpsilon), grad)
	return &delta
}

func layerNames(params *nn.Params) []string {
	var names []string
	seen := map[string]bool{}
	for _, param := range params.List() {
		layer := param.Layer()
		if !seen[layer] {
			seen[layer] = true
			names = append(names, layer)
		}
	}
	return names
}
