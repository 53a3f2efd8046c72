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
	"gonum.org/v1/gonum/mat"
)

// AccuracyKey names the classifier's accuracy in Logs
const AccuracyKey = "accuracy"

// Classifier pools the [CLS] position of the encoder into a dense softmax layer
type Classifier struct {
	config     *Config
	numClasses int
	params     *nn.Params
	encoder    *Encoder

	kernel *nn.Param
	bias   *nn.Param
}

func BuildClassifier(config *Config, numClasses int, seed int64) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if numClasses < 2 {
		return nil, ErrorInvalidNumClasses(numClasses)
	}

	params, err := nn.NewParams()
	if err != nil {
		return nil, err
	}
	initializer := nn.NewInitializer(seed)

	encoder, err := newEncoder(config, params, initializer, false)
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		config:     config,
		numClasses: numClasses,
		params:     params,
		encoder:    encoder,
		kernel:     nn.NewParam(consts.ClassifierDenseName, "kernel", config.HiddenSize, numClasses),
		bias:       nn.NewParam(consts.ClassifierDenseName, "bias", 1, numClasses),
	}
	initializer.TruncatedNormal(c.kernel.Value, config.InitializerRange)
	if err := params.Add(c.kernel, c.bias); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Classifier) Params() *nn.Params {
	return c.params
}

func (c *Classifier) OutputNames() []string {
	return []string{AccuracyKey}
}

func (c *Classifier) NumClasses() int {
	return c.numClasses
}

// logits returns batch x numClasses logits with the per-example encoder state
func (c *Classifier) logits(batch *dataset.Batch) (*mat.Dense, []*encoderCache, error) {
	n := batch.Size()
	logits := mat.NewDense(n, c.numClasses, nil)
	caches := make([]*encoderCache, n)

	for b := 0; b < n; b++ {
		var segmentIDs []int
		if batch.SegmentIDs != nil {
			segmentIDs = batch.SegmentIDs[b]
		}
		hidden, cache, err := c.encoder.forward(batch.TokenIDs[b], segmentIDs)
		if err != nil {
			return nil, nil, err
		}
		caches[b] = cache

		row := logits.Slice(b, b+1, 0, c.numClasses).(*mat.Dense)
		row.Mul(hidden.Slice(0, 1, 0, c.config.HiddenSize), c.kernel.Value)
		row.Add(row, c.bias.Value)
	}
	return logits, caches, nil
}

// Predict returns the argmax class of every example
func (c *Classifier) Predict(batch *dataset.Batch) ([]int, error) {
	logits, _, err := c.logits(batch)
	if err != nil {
		return nil, err
	}
	predictions := make([]int, batch.Size())
	for b := range predictions {
		predictions[b] = nn.Argmax(logits.RawRowView(b))
	}
	return predictions, nil
}

// Totals averages both the loss and the accuracy over examples
func (c *Classifier) Totals(batch *dataset.Batch) (Totals, error) {
	n := batch.Size()
	if len(batch.Labels) != n {
		return nil, ErrorMissingLabels(n, len(batch.Labels))
	}
	return Totals{LossKey: float64(n), AccuracyKey: float64(n)}, nil
}

// Compute is sparse categorical cross-entropy averaged over the examples counted in totals
func (c *Classifier) Compute(batch *dataset.Batch, totals Totals, grads nn.Grads) (Logs, error) {
	n := batch.Size()
	if len(batch.Labels) != n {
		return nil, ErrorMissingLabels(n, len(batch.Labels))
	}
	if totals == nil {
		totals, _ = c.Totals(batch)
	}

	logits, caches, err := c.logits(batch)
	if err != nil {
		return nil, err
	}

	examples := totals[LossKey]
	dLogits := mat.NewDense(n, c.numClasses, nil)
	totalLoss := 0.0
	correct := 0
	for b, label := range batch.Labels {
		if label < 0 || label >= c.numClasses {
			return nil, ErrorLabelOutOfRange(label, c.numClasses)
		}
		row := logits.RawRowView(b)
		loss, g := nn.CrossEntropy(row, label)
		totalLoss += loss
		if nn.Argmax(row) == label {
			correct++
		}
		dRow := dLogits.RawRowView(b)
		for j := range g {
			dRow[j] = g[j] / examples
		}
	}

	logs := Logs{
		LossKey:     totalLoss / examples,
		AccuracyKey: float64(correct) / totals[AccuracyKey],
	}
	if grads == nil {
		return logs, nil
	}

	kernelGrad := grads[c.kernel.Name]
	biasGrad := grads[c.bias.Name]
	for b, cache := range caches {
		dRow := dLogits.Slice(b, b+1, 0, c.numClasses)
		cls := cache.hidden.Slice(0, 1, 0, c.config.HiddenSize)

		var dKernel mat.Dense
		dKernel.Mul(cls.T(), dRow)
		kernelGrad.Add(kernelGrad, &dKernel)
		biasGrad.Add(biasGrad, dRow)

		seqLen, _ := cache.hidden.Dims()
		dHidden := mat.NewDense(seqLen, c.config.HiddenSize, nil)
		dCLS := dHidden.Slice(0, 1, 0, c.config.HiddenSize).(*mat.Dense)
		dCLS.Mul(dRow, c.kernel.Value.T())

		c.encoder.backward(dHidden, cache, grads)
	}
	return logs, nil
}
