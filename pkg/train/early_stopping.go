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

	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"go.uber.org/zap"
)

// EarlyStopping stops training once the monitored value has not strictly improved for patience epochs
type EarlyStopping struct {
	monitor  string
	patience int
	best     *BestTracker
	wait     int
	logger   *zap.SugaredLogger

	StoppedEpoch int
}

func NewEarlyStopping(monitor string, patience int, mode userconfig.MonitorMode, logger *zap.SugaredLogger) *EarlyStopping {
	return &EarlyStopping{
		monitor:      monitor,
		patience:     patience,
		best:         NewUnboundedTracker(ResolveMode(monitor, mode)),
		logger:       logger,
		StoppedEpoch: -1,
	}
}

func (e *EarlyStopping) OnEpochEnd(ctx context.Context, epoch int, logs model.Logs) (bool, error) {
	value, ok := logs[e.monitor]
	if !ok {
		if e.logger != nil {
			e.logger.Warnw("early stopping is conditioned on a metric which is not available", "monitor", e.monitor, "available", logs.Keys())
		}
		return false, nil
	}

	if e.best.Improved(value) {
		e.wait = 0
		return false, nil
	}

	e.wait++
	if e.wait < e.patience {
		return false, nil
	}

	e.StoppedEpoch = epoch
	if e.logger != nil {
		e.logger.Infow("early stopping", "epoch", epoch, "monitor", e.monitor, "best", e.best.Best())
	}
	return true, nil
}
