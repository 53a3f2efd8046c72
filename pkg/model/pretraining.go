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
	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/objectives"
	"gonum.org/v1/gonum/mat"
)

const _numNSPClasses = 2

// Pretraining is the encoder with a tied token head, plus a next sentence head when the objective needs one
type Pretraining struct {
	config  *Config
	spec    *objectives.Spec
	params  *nn.Params
	encoder *Encoder

	mlmBias   *nn.Param
	nspKernel *nn.Param
	nspBias   *nn.Param
}

type pretrainingCache struct {
	encoder []*encoderCache
	hidden  []*mat.Dense
}

// BuildPretraining builds the training model for any objective; the objective only decides heads and outputs
func BuildPretraining(config *Config, spec *objectives.Spec, seed int64) (*Pretraining, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	params, err := nn.NewParams()
	if err != nil {
		return nil, err
	}
	initializer := nn.NewInitializer(seed)

	encoder, err := newEncoder(config, params, initializer, spec.Causal)
	if err != nil {
		return nil, err
	}

	m := &Pretraining{
		config:  config,
		spec:    spec,
		params:  params,
		encoder: encoder,
		mlmBias: nn.NewParam(consts.MLMBiasName, "bias", 1, config.VocabSize),
	}
	if err := params.Add(m.mlmBias); err != nil {
		return nil, err
	}

	if spec.UsesNSP {
		m.nspKernel = nn.NewParam(consts.NSPProbaName, "kernel", config.HiddenSize, _numNSPClasses)
		m.nspBias = nn.NewParam(consts.NSPProbaName, "bias", 1, _numNSPClasses)
		initializer.TruncatedNormal(m.nspKernel.Value, config.InitializerRange)
		if err := params.Add(m.nspKernel, m.nspBias); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Pretraining) Params() *nn.Params {
	return m.params
}

func (m *Pretraining) OutputNames() []string {
	return m.spec.OutputNames()
}

func (m *Pretraining) Spec() *objectives.Spec {
	return m.spec
}

func (m *Pretraining) predict(batch *dataset.Batch) (*objectives.Predictions, *pretrainingCache, error) {
	n := batch.Size()
	predictions := &objectives.Predictions{
		TokenLogits: make([]*mat.Dense, n),
	}
	cache := &pretrainingCache{
		encoder: make([]*encoderCache, n),
		hidden:  make([]*mat.Dense, n),
	}
	if m.spec.UsesNSP {
		predictions.NSPLogits = mat.NewDense(n, _numNSPClasses, nil)
	}

	for b := 0; b < n; b++ {
		var segmentIDs []int
		if batch.SegmentIDs != nil {
			segmentIDs = batch.SegmentIDs[b]
		}
		hidden, encCache, err := m.encoder.forward(batch.TokenIDs[b], segmentIDs)
		if err != nil {
			return nil, nil, err
		}
		cache.encoder[b] = encCache
		cache.hidden[b] = hidden

		seqLen, _ := hidden.Dims()
		logits := mat.NewDense(seqLen, m.config.VocabSize, nil)
		logits.Mul(hidden, m.encoder.tokenEmbeddings.Value.T())
		nn.AddRowVector(logits, m.mlmBias.Value)
		predictions.TokenLogits[b] = logits

		if m.spec.UsesNSP {
			nspRow := predictions.NSPLogits.Slice(b, b+1, 0, _numNSPClasses).(*mat.Dense)
			nspRow.Mul(hidden.Slice(0, 1, 0, m.config.HiddenSize), m.nspKernel.Value)
			nspRow.Add(nspRow, m.nspBias.Value)
		}
	}
	return predictions, cache, nil
}

func (m *Pretraining) Totals(batch *dataset.Batch) (Totals, error) {
	return m.spec.Totals(batch)
}

func (m *Pretraining) Compute(batch *dataset.Batch, totals Totals, grads nn.Grads) (Logs, error) {
	predictions, cache, err := m.predict(batch)
	if err != nil {
		return nil, err
	}

	result, err := m.spec.Evaluate(predictions, batch, totals)
	if err != nil {
		return nil, err
	}

	logs := Logs{LossKey: result.Loss}
	for name, value := range result.Values {
		logs[name] = value
	}

	if grads != nil {
		m.backward(result.Grads, cache, grads)
	}
	return logs, nil
}

func (m *Pretraining) backward(dOut *objectives.Gradients, cache *pretrainingCache, grads nn.Grads) {
	tokenGrad := grads[m.encoder.tokenEmbeddings.Name]

	for b, dLogits := range dOut.TokenLogits {
		hidden := cache.hidden[b]

		// tied output embedding
		var dEmbeddings mat.Dense
		dEmbeddings.Mul(dLogits.T(), hidden)
		tokenGrad.Add(tokenGrad, &dEmbeddings)
		nn.SumRowsInto(grads[m.mlmBias.Name], dLogits)

		var dHidden mat.Dense
		dHidden.Mul(dLogits, m.encoder.tokenEmbeddings.Value)

		if m.spec.UsesNSP && dOut.NSPLogits != nil {
			dNSP := dOut.NSPLogits.Slice(b, b+1, 0, _numNSPClasses)
			cls := hidden.Slice(0, 1, 0, m.config.HiddenSize)

			var dKernel mat.Dense
			dKernel.Mul(cls.T(), dNSP)
			kernelGrad := grads[m.nspKernel.Name]
			kernelGrad.Add(kernelGrad, &dKernel)
			biasGrad := grads[m.nspBias.Name]
			biasGrad.Add(biasGrad, dNSP)

			dCLS := dHidden.Slice(0, 1, 0, m.config.HiddenSize).(*mat.Dense)
			var dFromNSP mat.Dense
			dFromNSP.Mul(dNSP, m.nspKernel.Value.T())
			dCLS.Add(dCLS, &dFromNSP)
		}

		m.encoder.backward(&dHidden, cache.encoder[b], grads)
	}
}
