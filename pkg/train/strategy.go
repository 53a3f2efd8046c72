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
	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/parallel"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
)

// Mirrored splits each batch across replicas that share one set of params. Every replica
// accumulates into its own gradient buffer, and every output is divided by the totals of the whole
// batch, so summing the buffers and logs on the caller's goroutine gives the single-replica result.
type Mirrored struct {
	replicas int
	buffers  []nn.Grads
}

func NewMirrored(replicas int) (*Mirrored, error) {
	if replicas < 1 {
		return nil, ErrorInvalidReplicas(replicas)
	}
	return &Mirrored{replicas: replicas}, nil
}

func (m *Mirrored) Replicas() int {
	return m.replicas
}

// ComputeGradients returns the logs and gradients of one batch. The returned grads are reused by
// the next call.
func (m *Mirrored) ComputeGradients(mdl model.Model, batch *dataset.Batch) (model.Logs, nn.Grads, error) {
	if m.buffers == nil {
		m.buffers = make([]nn.Grads, m.replicas)
		for i := range m.buffers {
			m.buffers[i] = mdl.Params().NewGrads()
		}
	}

	totals, err := mdl.Totals(batch)
	if err != nil {
		return nil, nil, err
	}

	shards := batch.Shard(m.replicas)
	logs := make([]model.Logs, len(shards))

	err = parallel.RunN(len(shards), func(i int) error {
		m.buffers[i].Zero()
		replicaLogs, err := mdl.Compute(shards[i], totals, m.buffers[i])
		if err != nil {
			return err
		}
		logs[i] = replicaLogs
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	grads := m.buffers[0]
	for i := 1; i < len(shards); i++ {
		grads.Add(m.buffers[i])
	}
	return sumLogs(logs), grads, nil
}

func sumLogs(logs []model.Logs) model.Logs {
	sum := model.Logs{}
	for _, l := range logs {
		for key, value := range l {
			sum[key] += value
		}
	}
	return sum
}
