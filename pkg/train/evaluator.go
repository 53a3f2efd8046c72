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
	"fmt"

	"github.com/cortexlabs/trainer/pkg/checkpoint"
	"github.com/cortexlabs/trainer/pkg/evaluation"
	"github.com/cortexlabs/trainer/pkg/lib/print"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"go.uber.org/zap"
)

const (
	ValAccuracyKey     = "val_acc"
	BestValAccuracyKey = "best_val_acc"
)

type EvaluatorConfig struct {
	Predictor evaluation.Predictor
	// Batches returns a fresh pass over the validation data
	Batches     func() evaluation.Batches
	Params      *nn.Params
	WeightsPath string
	RunID       string
	Logger      *zap.SugaredLogger
}

// Evaluator measures validation accuracy after every epoch and saves the weights whenever it
// strictly beats the best accuracy so far
type Evaluator struct {
	config EvaluatorConfig
	best   *BestTracker
}

func NewEvaluator(config EvaluatorConfig) *Evaluator {
	return &Evaluator{
		config: config,
		best:   NewBestTracker(userconfig.MaxMonitorMode, 0),
	}
}

func (e *Evaluator) OnEpochEnd(ctx context.Context, epoch int, logs model.Logs) (bool, error) {
	accuracy, err := evaluation.Evaluate(ctx, e.config.Predictor, e.config.Batches())
	if err != nil {
		return false, err
	}

	improved := e.best.Improved(accuracy.Float())
	if improved {
		if err := checkpoint.SaveWeights(ctx, e.config.WeightsPath, e.config.Params, e.config.RunID); err != nil {
			return false, err
		}
	}

	logs[ValAccuracyKey] = accuracy.Float()
	logs[BestValAccuracyKey] = e.best.Best()

	print.Improvement(fmt.Sprintf("val_acc: %.5f, best_val_acc: %.5f", accuracy.Float(), e.best.Best()), improved)
	if e.config.Logger != nil {
		e.config.Logger.Debugw("evaluated", "epoch", epoch, "correct", accuracy.Correct, "total", accuracy.Total)
	}
	return false, nil
}

func (e *Evaluator) Best() float64 {
	return e.best.Best()
}
