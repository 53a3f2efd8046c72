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
	"github.com/cortexlabs/trainer/pkg/nn"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Encoder maps a token sequence to one hidden vector per position:
// n = LayerNorm(token + segment + position embeddings), m_i = n_i + mean(n_j),
// hidden = tanh(m W + b). A causal encoder averages only j <= i.
type Encoder struct {
	config *Config
	causal bool

	tokenEmbeddings    *nn.Param
	segmentEmbeddings  *nn.Param
	positionEmbeddings *nn.Param
	normGamma          *nn.Param
	normBeta           *nn.Param
	denseKernel        *nn.Param
	denseBias          *nn.Param
}

type encoderCache struct {
	tokenIDs   []int
	segmentIDs []int
	norm       *nn.LayerNormCache
	mixed      *mat.Dense
	hidden     *mat.Dense
}

func newEncoder(config *Config, params *nn.Params, initializer *nn.Initializer, causal bool) (*Encoder, error) {
	h := config.HiddenSize
	e := &Encoder{
		config:             config,
		causal:             causal,
		tokenEmbeddings:    nn.NewParam(consts.TokenEmbeddingName, "embeddings", config.VocabSize, h),
		segmentEmbeddings:  nn.NewParam(consts.SegmentEmbeddingName, "embeddings", config.TypeVocabSize, h),
		positionEmbeddings: nn.NewParam(consts.PositionEmbeddingName, "embeddings", config.MaxPositionEmbeddings, h),
		normGamma:          nn.NewParam(consts.EmbeddingNormName, "gamma", 1, h),
		normBeta:           nn.NewParam(consts.EmbeddingNormName, "beta", 1, h),
		denseKernel:        nn.NewParam(consts.EncoderDenseName, "kernel", h, h),
		denseBias:          nn.NewParam(consts.EncoderDenseName, "bias", 1, h),
	}

	initializer.TruncatedNormal(e.tokenEmbeddings.Value, config.InitializerRange)
	initializer.TruncatedNormal(e.segmentEmbeddings.Value, config.InitializerRange)
	initializer.TruncatedNormal(e.positionEmbeddings.Value, config.InitializerRange)
	nn.Ones(e.normGamma.Value)
	initializer.TruncatedNormal(e.denseKernel.Value, config.InitializerRange)

	err := params.Add(
		e.tokenEmbeddings,
		e.segmentEmbeddings,
		e.positionEmbeddings,
		e.normGamma,
		e.normBeta,
		e.denseKernel,
		e.denseBias,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// IsEncoderParam reports whether a param belongs to the shared encoder rather than a head
func IsEncoderParam(name string) bool {
	layer := (&nn.Param{Name: name}).Layer()
	switch layer {
	case consts.TokenEmbeddingName, consts.SegmentEmbeddingName, consts.PositionEmbeddingName,
		consts.EmbeddingNormName, consts.EncoderDenseName:
		return true
	}
	return false
}

func (e *Encoder) checkInputs(tokenIDs []int, segmentIDs []int) error {
	if len(tokenIDs) == 0 {
		return ErrorEmptySequence()
	}
	if len(tokenIDs) > e.config.MaxPositionEmbeddings {
		return ErrorSequenceTooLong(len(tokenIDs), e.config.MaxPositionEmbeddings)
	}
	for _, id := range tokenIDs {
		if id < 0 || id >= e.config.VocabSize {
			return ErrorTokenOutOfRange(id, e.config.VocabSize)
		}
	}
	for _, id := range segmentIDs {
		if id < 0 || id >= e.config.TypeVocabSize {
			return ErrorSegmentOutOfRange(id, e.config.TypeVocabSize)
		}
	}
	return nil
}

// forward returns the seqLen x hidden activations; a nil segmentIDs means all zeros
func (e *Encoder) forward(tokenIDs []int, segmentIDs []int) (*mat.Dense, *encoderCache, error) {
	if err := e.checkInputs(tokenIDs, segmentIDs); err != nil {
		return nil, nil, err
	}

	seqLen := len(tokenIDs)
	x := mat.NewDense(seqLen, e.config.HiddenSize, nil)
	for i, id := range tokenIDs {
		row := x.RawRowView(i)
		copy(row, e.tokenEmbeddings.Value.RawRowView(id))
		floats.Add(row, e.positionEmbeddings.Value.RawRowView(i))
		segmentID := 0
		if segmentIDs != nil {
			segmentID = segmentIDs[i]
		}
		floats.Add(row, e.segmentEmbeddings.Value.RawRowView(segmentID))
	}

	normOut, normCache := nn.LayerNorm(x, e.normGamma.Value, e.normBeta.Value)

	mixed := e.mix(normOut)

	hidden := mat.NewDense(seqLen, e.config.HiddenSize, nil)
	hidden.Mul(mixed, e.denseKernel.Value)
	nn.AddRowVector(hidden, e.denseBias.Value)
	nn.Tanh(hidden)

	return hidden, &encoderCache{
		tokenIDs:   tokenIDs,
		segmentIDs: segmentIDs,
		norm:       normCache,
		mixed:      mixed,
		hidden:     hidden,
	}, nil
}

// backward accumulates the encoder gradients for dHidden into grads
func (e *Encoder) backward(dHidden *mat.Dense, cache *encoderCache, grads nn.Grads) {
	dPre := nn.TanhBackward(dHidden, cache.hidden)

	var dKernel mat.Dense
	dKernel.Mul(cache.mixed.T(), dPre)
	kernelGrad := grads[e.denseKernel.Name]
	kernelGrad.Add(kernelGrad, &dKernel)
	nn.SumRowsInto(grads[e.denseBias.Name], dPre)

	var dMixed mat.Dense
	dMixed.Mul(dPre, e.denseKernel.Value.T())
	dNorm := e.mixBackward(&dMixed)

	dX := nn.LayerNormBackward(dNorm, e.normGamma.Value, cache.norm, grads[e.normGamma.Name], grads[e.normBeta.Name])

	tokenGrad := grads[e.tokenEmbeddings.Name]
	segmentGrad := grads[e.segmentEmbeddings.Name]
	positionGrad := grads[e.positionEmbeddings.Name]
	for i, id := range cache.tokenIDs {
		row := dX.RawRowView(i)
		floats.Add(tokenGrad.RawRowView(id), row)
		floats.Add(positionGrad.RawRowView(i), row)
		segmentID := 0
		if cache.segmentIDs != nil {
			segmentID = cache.segmentIDs[i]
		}
		floats.Add(segmentGrad.RawRowView(segmentID), row)
	}
}

// mix adds the running (causal) or full sequence mean to every row
func (e *Encoder) mix(n *mat.Dense) *mat.Dense {
	seqLen, h := n.Dims()
	out := mat.DenseCopyOf(n)
	sum := make([]float64, h)

	if !e.causal {
		for i := 0; i < seqLen; i++ {
			floats.Add(sum, n.RawRowView(i))
		}
		floats.Scale(1/float64(seqLen), sum)
		for i := 0; i < seqLen; i++ {
			floats.Add(out.RawRowView(i), sum)
		}
		return out
	}

	for i := 0; i < seqLen; i++ {
		floats.Add(sum, n.RawRowView(i))
		floats.AddScaled(out.RawRowView(i), 1/float64(i+1), sum)
	}
	return out
}

func (e *Encoder) mixBackward(dMixed *mat.Dense) *mat.Dense {
	seqLen, h := dMixed.Dims()
	dN := mat.DenseCopyOf(dMixed)
	acc := make([]float64, h)

	if !e.causal {
		for i := 0; i < seqLen; i++ {
			floats.Add(acc, dMixed.RawRowView(i))
		}
		floats.Scale(1/float64(seqLen), acc)
		for i := 0; i < seqLen; i++ {
			floats.Add(dN.RawRowView(i), acc)
		}
		return dN
	}

	// row j receives dMixed_i / (i+1) from every i >= j
	for j := seqLen - 1; j >= 0; j-- {
		floats.AddScaled(acc, 1/float64(j+1), dMixed.RawRowView(j))
		floats.Add(dN.RawRowView(j), acc)
	}
	return dN
}
