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

package objectives

import (
	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"gonum.org/v1/gonum/mat"
)

// Predictions are the pretraining head outputs for one batch
type Predictions struct {
	// one seqLen x vocab matrix per example
	TokenLogits []*mat.Dense
	// batch x 2, nil unless the objective has a next sentence head
	NSPLogits *mat.Dense
}

// Gradients of the total loss w.r.t. the predictions
type Gradients struct {
	TokenLogits []*mat.Dense
	NSPLogits   *mat.Dense
}

type Output struct {
	Name       string
	// loss outputs are summed into the total loss; the others only report
	Loss       bool
	// PerExample outputs average over examples rather than over supervised token positions
	PerExample bool
}

// Result holds every named output plus the total loss and its gradients
type Result struct {
	Values map[string]float64
	Loss   float64
	Grads  *Gradients
}

// Spec describes how one objective variant is trained
type Spec struct {
	Objective      userconfig.Objective
	Outputs        []Output
	RequiredFields []string
	UsesNSP        bool
	// Causal objectives predict later tokens, so the encoder must not see them
	Causal         bool

	evaluate func(p *Predictions, batch *dataset.Batch, totals map[string]float64) (map[string]float64, *Gradients)
}

func For(objective userconfig.Objective) (*Spec, error) {
	spec := &Spec{
		Objective:      objective,
		RequiredFields: dataset.RequiredFields(objective),
	}

	switch objective {
	case userconfig.RoBERTaObjective, userconfig.SpanBERTObjective:
		spec.Outputs = []Output{{Name: "mlm_loss", Loss: true}, {Name: "mlm_acc"}}
		spec.evaluate = evaluateMLM
	case userconfig.BERTObjective:
		spec.Outputs = []Output{{Name: "mlm_loss", Loss: true}, {Name: "mlm_acc"}, {Name: "nsp_loss", Loss: true, PerExample: true}, {Name: "nsp_acc", PerExample: true}}
		spec.UsesNSP = true
		spec.evaluate = evaluateMLMNSP
	case userconfig.GPTObjective:
		spec.Outputs = []Output{{Name: "lm_loss", Loss: true}, {Name: "lm_acc"}}
		spec.Causal = true
		spec.evaluate = evaluateLM
	case userconfig.UniLMObjective:
		spec.Outputs = []Output{{Name: "unilm_loss", Loss: true}, {Name: "unilm_acc"}}
		spec.Causal = true
		spec.evaluate = evaluateUniLM
	default:
		return nil, ErrorInvalidObjective(objective.String())
	}

	return spec, nil
}

func (s *Spec) OutputNames() []string {
	names := make([]string, len(s.Outputs))
	for i, output := range s.Outputs {
		names[i] = output.Name
	}
	return names
}

// Totals is the weight each output of batch averages over: the supervised mask sum for token
// outputs and the number of examples for per-example outputs. Only the batch is read.
func (s *Spec) Totals(batch *dataset.Batch) (map[string]float64, error) {
	if err := s.checkInputs(batch); err != nil {
		return nil, err
	}

	var tokens float64
	switch s.Objective {
	case userconfig.GPTObjective:
		tokens = sumWeights(shiftMask(batch.TokenIDs, PaddingMask(batch.TokenIDs)))
	case userconfig.UniLMObjective:
		tokens = sumWeights(unilmMask(batch.TokenIDs, batch.SegmentIDs, PaddingMask(batch.TokenIDs)))
	default:
		tokens = sumWeights(batch.IsMasked)
	}

	totals := make(map[string]float64, len(s.Outputs))
	for _, output := range s.Outputs {
		if output.PerExample {
			totals[output.Name] = float64(batch.Size())
		} else {
			totals[output.Name] = tokens
		}
	}
	return totals, nil
}

// Evaluate computes every output of the objective and the gradients of their summed losses.
// Each output is divided by its entry in totals, so the results of the shards of a batch add up
// to the result of the whole batch when totals come from the whole batch. nil totals means the
// batch's own.
func (s *Spec) Evaluate(p *Predictions, batch *dataset.Batch, totals map[string]float64) (*Result, error) {
	if err := s.checkBatch(p, batch); err != nil {
		return nil, err
	}
	if totals == nil {
		var err error
		if totals, err = s.Totals(batch); err != nil {
			return nil, err
		}
	}

	values, grads := s.evaluate(p, batch, totals)
	loss := 0.0
	for _, output := range s.Outputs {
		if output.Loss {
			loss += values[output.Name]
		}
	}

	return &Result{
		Values: values,
		Loss:   loss,
		Grads:  grads,
	}, nil
}

func (s *Spec) checkBatch(p *Predictions, batch *dataset.Batch) error {
	if len(p.TokenLogits) != batch.Size() {
		return ErrorBatchMismatch(len(p.TokenLogits), batch.Size())
	}
	if s.UsesNSP && p.NSPLogits == nil {
		return ErrorMissingInput("nsp logits")
	}
	return s.checkInputs(batch)
}

func (s *Spec) checkInputs(batch *dataset.Batch) error {
	if s.Objective.UsesMaskedTargets() && (batch.TargetIDs == nil || batch.IsMasked == nil) {
		return ErrorMissingInput(dataset.FieldTargetIDs)
	}
	if s.UsesNSP && batch.NSP == nil {
		return ErrorMissingInput(dataset.FieldNSP)
	}
	if s.Objective == userconfig.UniLMObjective && batch.SegmentIDs == nil {
		return ErrorMissingInput(dataset.FieldSegmentIDs)
	}
	return nil
}

func evaluateMLM(p *Predictions, batch *dataset.Batch, totals map[string]float64) (map[string]float64, *Gradients) {
	loss, grads := maskedCrossEntropy(p.TokenLogits, batch.TargetIDs, batch.IsMasked, 0, totals["mlm_loss"])
	return map[string]float64{
		"mlm_loss": loss,
		"mlm_acc":  maskedAccuracy(p.TokenLogits, batch.TargetIDs, batch.IsMasked, 0, totals["mlm_acc"]),
	}, &Gradients{TokenLogits: grads}
}

func evaluateMLMNSP(p *Predictions, batch *dataset.Batch, totals map[string]float64) (map[string]float64, *Gradients) {
	values, grads := evaluateMLM(p, batch, totals)
	nspLoss, nspGrads := nspCrossEntropy(p.NSPLogits, batch.NSP, totals["nsp_loss"])
	values["nsp_loss"] = nspLoss
	values["nsp_acc"] = nspAccuracy(p.NSPLogits, batch.NSP, totals["nsp_acc"])
	grads.NSPLogits = nspGrads
	return values, grads
}

func evaluateLM(p *Predictions, batch *dataset.Batch, totals map[string]float64) (map[string]float64, *Gradients) {
	weights := shiftMask(batch.TokenIDs, PaddingMask(batch.TokenIDs))
	loss, grads := maskedCrossEntropy(p.TokenLogits, batch.TokenIDs, weights, 1, totals["lm_loss"])
	return map[string]float64{
		"lm_loss": loss,
		"lm_acc":  maskedAccuracy(p.TokenLogits, batch.TokenIDs, weights, 1, totals["lm_acc"]),
	}, &Gradients{TokenLogits: grads}
}

func evaluateUniLM(p *Predictions, batch *dataset.Batch, totals map[string]float64) (map[string]float64, *Gradients) {
	weights := unilmMask(batch.TokenIDs, batch.SegmentIDs, PaddingMask(batch.TokenIDs))
	loss, grads := maskedCrossEntropy(p.TokenLogits, batch.TokenIDs, weights, 1, totals["unilm_loss"])
	return map[string]float64{
		"unilm_loss": loss,
		"unilm_acc":  maskedAccuracy(p.TokenLogits, batch.TokenIDs, weights, 1, totals["unilm_acc"]),
	}, &Gradients{TokenLogits: grads}
}
