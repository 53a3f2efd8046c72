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

	"github.com/cortexlabs/trainer/pkg/checkpoint"
	"github.com/cortexlabs/trainer/pkg/lib/parallel"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"go.uber.org/zap"
)

// InitialBestLoss is the value a checkpoint's monitored loss must beat to be saved as best
const InitialBestLoss = 1e6

type ModelCheckpointConfig struct {
	Params     *nn.Params
	LatestPath string
	BestPath   string
	// SavedModelDir enables an extra weights snapshot per epoch under <SavedModelDir>_<epoch>
	SavedModelDir string
	Monitor       string
	RunID         string
	// Step reports the optimizer step stored in the best checkpoint's index
	Step   func() int64
	Logger *zap.SugaredLogger
}

// ModelCheckpoint saves the latest params every epoch in weights format, and the best params in
// checkpoint format whenever the monitored value strictly improves on the best so far
type ModelCheckpoint struct {
	config ModelCheckpointConfig
	best   *BestTracker
}

func NewModelCheckpoint(config ModelCheckpointConfig) *ModelCheckpoint {
	if config.Monitor == "" {
		config.Monitor = model.LossKey
	}
	return &ModelCheckpoint{
		config: config,
		best:   NewBestTracker(ResolveMode(config.Monitor, userconfig.AutoMonitorMode), InitialBestLoss),
	}
}

func (c *ModelCheckpoint) OnEpochEnd(ctx context.Context, epoch int, logs model.Logs) (bool, error) {
	var step int64
	if c.config.Step != nil {
		step = c.config.Step()
	}
	saveWeights := func(path string) func() error {
		return func() error {
			return checkpoint.SaveWeights(ctx, path, c.config.Params, c.config.RunID)
		}
	}

	fns := []func() error{saveWeights(c.config.LatestPath)}
	if c.config.SavedModelDir != "" {
		fns = append(fns, saveWeights(checkpoint.EpochPath(c.config.SavedModelDir, epoch)))
	}

	value, ok := logs[c.config.Monitor]
	improved := ok && c.best.Improved(value)
	if improved && c.config.BestPath != "" {
		fns = append(fns, func() error {
			return checkpoint.SaveCheckpoint(ctx, c.config.BestPath, c.config.Params, c.config.RunID, step)
		})
	}

	if err := parallel.RunFirstErr(fns[0], fns[1:]...); err != nil {
		return false, err
	}

	if c.config.Logger != nil {
		c.config.Logger.Infow("saved checkpoint", "epoch", epoch, "path", c.config.LatestPath, "best", improved, c.config.Monitor, value)
	}
	return false, nil
}

func (c *ModelCheckpoint) Best() float64 {
	return c.best.Best()
}
