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
	"math"
	"time"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/model"
	"go.uber.org/zap"
)

// Callback runs after every epoch; returning stop ends training once all callbacks have run
type Callback interface {
	OnEpochEnd(ctx context.Context, epoch int, logs model.Logs) (stop bool, err error)
}

// CallbackFunc adapts a function to Callback
type CallbackFunc func(ctx context.Context, epoch int, logs model.Logs) (bool, error)

func (f CallbackFunc) OnEpochEnd(ctx context.Context, epoch int, logs model.Logs) (bool, error) {
	return f(ctx, epoch, logs)
}

type Loop struct {
	Step          StepFunc
	Source        dataset.Source
	Epochs        int
	StepsPerEpoch int
	Callbacks     []Callback
	// OnStep is called after every step with its duration
	OnStep func(time.Duration)
	Logger *zap.SugaredLogger
}

type History struct {
	Epochs  []model.Logs
	Stopped bool
}

// Fit runs Epochs epochs of StepsPerEpoch steps. Epoch logs are the mean of the step logs;
// epochs are numbered from 0. Cancelling ctx stops training between steps.
func Fit(ctx context.Context, loop Loop) (*History, error) {
	if loop.Epochs < 1 {
		return nil, ErrorInvalidLoop("epochs", loop.Epochs)
	}
	if loop.StepsPerEpoch < 1 {
		return nil, ErrorInvalidLoop("steps per epoch", loop.StepsPerEpoch)
	}

	history := &History{}
	for epoch := 0; epoch < loop.Epochs; epoch++ {
		sums := model.Logs{}
		for step := 0; step < loop.StepsPerEpoch; step++ {
			if err := ctx.Err(); err != nil {
				return history, errors.WithStack(err)
			}

			batch, err := loop.Source.Next(ctx)
			if err != nil {
				return history, err
			}

			start := time.Now()
			logs, err := loop.Step(ctx, batch)
			if err != nil {
				return history, errors.Wrap(err, fmt.Sprintf("epoch %d", epoch), fmt.Sprintf("step %d", step))
			}
			if loop.OnStep != nil {
				loop.OnStep(time.Since(start))
			}

			if loss, ok := logs[model.LossKey]; ok && loop.Logger != nil && !isFinite(loss) {
				loop.Logger.Warnw("non-finite loss", "epoch", epoch, "step", step, "loss", loss)
			}
			for key, value := range logs {
				sums[key] += value
			}
		}

		logs := model.Logs{}
		for key, sum := range sums {
			logs[key] = sum / float64(loop.StepsPerEpoch)
		}

		stop := false
		for _, callback := range loop.Callbacks {
			callbackStop, err := callback.OnEpochEnd(ctx, epoch, logs)
			if err != nil {
				return history, err
			}
			stop = stop || callbackStop
		}

		history.Epochs = append(history.Epochs, logs.Copy())
		if loop.Logger != nil {
			loop.Logger.Infow("epoch finished", logFields(epoch, logs)...)
		}
		if stop {
			history.Stopped = true
			break
		}
	}
	return history, nil
}

func logFields(epoch int, logs model.Logs) []interface{} {
	fields := []interface{}{"epoch", epoch}
	for _, key := range logs.Keys() {
		fields = append(fields, key, logs[key])
	}
	return fields
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
