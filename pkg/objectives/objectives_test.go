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
	"math"
	"testing"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// oneHotLogits puts a large logit on the given class of each row
func oneHotLogits(classes []int, vocab int) *mat.Dense {
	m := mat.NewDense(len(classes), vocab, nil)
	for i, c := range classes {
		m.Set(i, c, 10)
	}
	return m
}

func requireFinite(t *testing.T, v float64) {
	t.Helper()
	require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "value %v is not finite", v)
}

func rowIsZero(m *mat.Dense, i int) bool {
	for _, v := range m.RawRowView(i) {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestZeroMaskIsFinite(t *testing.T) {
	logits := []*mat.Dense{oneHotLogits([]int{1, 2, 3}, 5)}
	tokenIDs := [][]int{{1, 2, 3}}
	zeros := [][]float64{{0, 0, 0}}

	loss, grads := MLMLoss(logits, tokenIDs, zeros)
	requireFinite(t, loss)
	require.Equal(t, 0.0, loss)
	require.True(t, rowIsZero(grads[0], 0))
	requireFinite(t, MLMAcc(logits, tokenIDs, zeros))

	loss, _ = LMLoss(logits, tokenIDs, zeros)
	requireFinite(t, loss)
	requireFinite(t, LMAcc(logits, tokenIDs, zeros))

	loss, _ = UniLMLoss(logits, tokenIDs, [][]int{{0, 0, 0}}, nil)
	requireFinite(t, loss)
	requireFinite(t, UniLMAcc(logits, tokenIDs, [][]int{{0, 0, 0}}, nil))
}

func TestMLMOnlyCountsMaskedPositions(t *testing.T) {
	logits := []*mat.Dense{oneHotLogits([]int{1, 4, 3}, 5)}
	targets := [][]int{{1, 2, 3}}
	mask := [][]float64{{0, 1, 1}}

	acc := MLMAcc(logits, targets, mask)
	require.InDelta(t, 1.0/(2+consts.Epsilon), acc, 1e-12)

	loss, grads := MLMLoss(logits, targets, mask)
	ce1, _ := nn.CrossEntropy(logits[0].RawRowView(1), 2)
	ce2, _ := nn.CrossEntropy(logits[0].RawRowView(2), 3)
	require.InDelta(t, (ce1+ce2)/(2+consts.Epsilon), loss, 1e-12)
	require.True(t, rowIsZero(grads[0], 0))
	require.False(t, rowIsZero(grads[0], 1))
}

func TestMLMLossGradientMatchesNumeric(t *testing.T) {
	logits := []*mat.Dense{mat.NewDense(2, 3, []float64{0.2, -0.1, 0.5, 1.0, 0.3, -0.7})}
	targets := [][]int{{2, 0}}
	mask := [][]float64{{1, 0.5}}

	_, grads := MLMLoss(logits, targets, mask)

	const h = 1e-6
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			orig := logits[0].At(i, j)
			logits[0].Set(i, j, orig+h)
			plus, _ := MLMLoss(logits, targets, mask)
			logits[0].Set(i, j, orig-h)
			minus, _ := MLMLoss(logits, targets, mask)
			logits[0].Set(i, j, orig)
			require.InDelta(t, (plus-minus)/(2*h), grads[0].At(i, j), 1e-6)
		}
	}
}

func TestLMCausalShiftComparesLMinusOnePositions(t *testing.T) {
	// prediction i targets token i+1: rows 0 and 1 predict 6 and 7 correctly, row 2 misses 8
	tokenIDs := [][]int{{5, 6, 7, 8}}
	logits := []*mat.Dense{oneHotLogits([]int{6, 7, 1, 9}, 10)}

	acc := LMAcc(logits, tokenIDs, nil)
	require.InDelta(t, 2.0/(3+consts.Epsilon), acc, 1e-12)

	loss, grads := LMLoss(logits, tokenIDs, nil)
	requireFinite(t, loss)
	require.False(t, rowIsZero(grads[0], 0))
	require.False(t, rowIsZero(grads[0], 2))
	require.True(t, rowIsZero(grads[0], 3), "the last prediction has no target")

	// the first token is never a target: making row 0 predict token 5 does not help
	logits = []*mat.Dense{oneHotLogits([]int{5, 7, 8, 9}, 10)}
	require.InDelta(t, 2.0/(3+consts.Epsilon), LMAcc(logits, tokenIDs, nil), 1e-12)
}

func TestLMPaddingMask(t *testing.T) {
	tokenIDs := [][]int{{5, 6, 0, 0}}
	logits := []*mat.Dense{oneHotLogits([]int{6, 1, 1, 1}, 10)}
	mask := PaddingMask(tokenIDs)
	require.Equal(t, [][]float64{{1, 1, 0, 0}}, mask)
	require.InDelta(t, 1.0/(1+consts.Epsilon), LMAcc(logits, tokenIDs, mask), 1e-12)
}

func TestUniLMSupervisesSecondSegmentOnly(t *testing.T) {
	tokenIDs := [][]int{{5, 6, 7, 8}}
	segmentIDs := [][]int{{0, 0, 1, 1}}
	logits := []*mat.Dense{mat.NewDense(4, 10, nil)}
	for i := 0; i < 4; i++ {
		for j := 0; j < 10; j++ {
			logits[0].Set(i, j, float64((i*7+j*3)%5)/5)
		}
	}

	loss, grads := UniLMLoss(logits, tokenIDs, segmentIDs, PaddingMask(tokenIDs))
	ce7, _ := nn.CrossEntropy(logits[0].RawRowView(1), 7)
	ce8, _ := nn.CrossEntropy(logits[0].RawRowView(2), 8)
	require.InDelta(t, (ce7+ce8)/(2+consts.Epsilon), loss, 1e-12)

	require.True(t, rowIsZero(grads[0], 0), "token 6 sits in the first segment")
	require.False(t, rowIsZero(grads[0], 1))
	require.False(t, rowIsZero(grads[0], 2))
	require.True(t, rowIsZero(grads[0], 3))
}

func TestNSP(t *testing.T) {
	logits := mat.NewDense(2, 2, []float64{2, 0, 2, 0})
	labels := []int{0, 1}

	require.Equal(t, 0.5, NSPAcc(logits, labels))
	loss, grads := NSPLoss(logits, labels)
	ce0, _ := nn.CrossEntropy([]float64{2, 0}, 0)
	ce1, _ := nn.CrossEntropy([]float64{2, 0}, 1)
	require.InDelta(t, (ce0+ce1)/2, loss, 1e-12)
	r, c := grads.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
}

func TestForBuildsEveryObjective(t *testing.T) {
	for objective, outputs := range map[userconfig.Objective][]string{
		userconfig.RoBERTaObjective:  {"mlm_loss", "mlm_acc"},
		userconfig.SpanBERTObjective: {"mlm_loss", "mlm_acc"},
		userconfig.BERTObjective:     {"mlm_loss", "mlm_acc", "nsp_loss", "nsp_acc"},
		userconfig.GPTObjective:      {"lm_loss", "lm_acc"},
		userconfig.UniLMObjective:    {"unilm_loss", "unilm_acc"},
	} {
		spec, err := For(objective)
		require.NoError(t, err)
		require.Equal(t, outputs, spec.OutputNames())
	}

	_, err := For(userconfig.UnknownObjective)
	require.Equal(t, ErrInvalidObjective, errors.GetKind(err))
}

func TestEvaluateSumsLossOutputs(t *testing.T) {
	spec, err := For(userconfig.BERTObjective)
	require.NoError(t, err)

	batch := &dataset.Batch{
		TokenIDs:   [][]int{{2, 4, 3}},
		SegmentIDs: [][]int{{0, 0, 0}},
		TargetIDs:  [][]int{{2, 5, 3}},
		IsMasked:   [][]float64{{0, 1, 0}},
		NSP:        []int{1},
	}
	predictions := &Predictions{
		TokenLogits: []*mat.Dense{oneHotLogits([]int{2, 5, 3}, 6)},
		NSPLogits:   mat.NewDense(1, 2, []float64{0, 1}),
	}

	result, err := spec.Evaluate(predictions, batch, nil)
	require.NoError(t, err)
	require.InDelta(t, result.Values["mlm_loss"]+result.Values["nsp_loss"], result.Loss, 1e-12)
	require.InDelta(t, 1.0, result.Values["mlm_acc"], 1e-6)
	require.Equal(t, 1.0, result.Values["nsp_acc"])
	require.NotNil(t, result.Grads.NSPLogits)

	batch.NSP = nil
	_, err = spec.Evaluate(predictions, batch, nil)
	require.Equal(t, ErrMissingInput, errors.GetKind(err))
}

func TestShardsAddUpWithBatchTotals(t *testing.T) {
	spec, err := For(userconfig.BERTObjective)
	require.NoError(t, err)

	batch := &dataset.Batch{
		TokenIDs:   [][]int{{2, 4, 3}, {2, 4, 4}, {2, 1, 3}},
		SegmentIDs: [][]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}},
		TargetIDs:  [][]int{{2, 5, 3}, {2, 1, 5}, {2, 5, 3}},
		IsMasked:   [][]float64{{0, 1, 0}, {0, 1, 1}, {0, 0, 0}},
		NSP:        []int{1, 0, 1},
	}
	predictions := &Predictions{
		TokenLogits: []*mat.Dense{
			oneHotLogits([]int{2, 5, 3}, 6),
			oneHotLogits([]int{2, 3, 5}, 6),
			oneHotLogits([]int{2, 5, 3}, 6),
		},
		NSPLogits: mat.NewDense(3, 2, []float64{0, 1, 0, 1, 1, 0}),
	}

	totals, err := spec.Totals(batch)
	require.NoError(t, err)
	require.Equal(t, 3.0, totals["mlm_loss"])
	require.Equal(t, 3.0, totals["nsp_acc"])

	whole, err := spec.Evaluate(predictions, batch, nil)
	require.NoError(t, err)

	first := &dataset.Batch{
		TokenIDs:   batch.TokenIDs[:1],
		SegmentIDs: batch.SegmentIDs[:1],
		TargetIDs:  batch.TargetIDs[:1],
		IsMasked:   batch.IsMasked[:1],
		NSP:        batch.NSP[:1],
	}
	rest := &dataset.Batch{
		TokenIDs:   batch.TokenIDs[1:],
		SegmentIDs: batch.SegmentIDs[1:],
		TargetIDs:  batch.TargetIDs[1:],
		IsMasked:   batch.IsMasked[1:],
		NSP:        batch.NSP[1:],
	}
	firstResult, err := spec.Evaluate(&Predictions{
		TokenLogits: predictions.TokenLogits[:1],
		NSPLogits:   mat.DenseCopyOf(predictions.NSPLogits.Slice(0, 1, 0, 2)),
	}, first, totals)
	require.NoError(t, err)
	restResult, err := spec.Evaluate(&Predictions{
		TokenLogits: predictions.TokenLogits[1:],
		NSPLogits:   mat.DenseCopyOf(predictions.NSPLogits.Slice(1, 3, 0, 2)),
	}, rest, totals)
	require.NoError(t, err)

	for name, value := range whole.Values {
		require.InDelta(t, value, firstResult.Values[name]+restResult.Values[name], 1e-9, name)
	}
	require.InDelta(t, whole.Loss, firstResult.Loss+restResult.Loss, 1e-9)
	require.True(t, mat.EqualApprox(whole.Grads.TokenLogits[1], restResult.Grads.TokenLogits[0], 1e-12))
}

func TestTotalsCausal(t *testing.T) {
	gpt, err := For(userconfig.GPTObjective)
	require.NoError(t, err)
	totals, err := gpt.Totals(&dataset.Batch{TokenIDs: [][]int{{2, 5, 3, 0}, {2, 3}}})
	require.NoError(t, err)
	require.Equal(t, 3.0, totals["lm_loss"])

	unilm, err := For(userconfig.UniLMObjective)
	require.NoError(t, err)
	totals, err = unilm.Totals(&dataset.Batch{TokenIDs: [][]int{{2, 5, 4, 3}}, SegmentIDs: [][]int{{0, 0, 1, 1}}})
	require.NoError(t, err)
	require.Equal(t, 2.0, totals["unilm_acc"])

	_, err = unilm.Totals(&dataset.Batch{TokenIDs: [][]int{{2, 5, 4, 3}}})
	require.Equal(t, ErrMissingInput, errors.GetKind(err))
}
