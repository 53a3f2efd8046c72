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

package pretrain

import (
	"context"
	"time"

	"github.com/cortexlabs/trainer/pkg/checkpoint"
	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/logging"
	"github.com/cortexlabs/trainer/pkg/metrics"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/objectives"
	"github.com/cortexlabs/trainer/pkg/optimizer"
	"github.com/cortexlabs/trainer/pkg/train"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"go.uber.org/zap"
)

type Result struct {
	RunID    string
	Epochs   int
	Stopped  bool
	BestLoss float64
	Updates  int64
	Last     model.Logs
	History  []model.Logs
}

// Run pretrains an encoder on corpus shards with the configured objective. reporter may be nil.
func Run(ctx context.Context, cfg *trainconfig.PretrainConfig, reporter *metrics.Reporter) (*Result, error) {
	logger := logging.GetLogger()

	spec, err := objectives.For(cfg.Objective)
	if err != nil {
		return nil, err
	}

	modelConfig, err := model.LoadConfig(ctx, cfg.ModelConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.SequenceLength > modelConfig.MaxPositionEmbeddings {
		return nil, ErrorSequenceLengthTooLong(cfg.SequenceLength, modelConfig.MaxPositionEmbeddings)
	}

	mdl, err := model.BuildPretraining(modelConfig, spec, int64(cfg.Seed))
	if err != nil {
		return nil, err
	}
	if cfg.CheckpointPath != "" {
		if err := restore(ctx, mdl, cfg.CheckpointPath, logger); err != nil {
			return nil, err
		}
	}
	logger.Info("\n" + nn.Summary(cfg.Objective.String(), mdl.Params()))

	shards, err := ExpandShards(ctx, cfg.CorpusPaths)
	if err != nil {
		return nil, err
	}
	reader, err := dataset.NewRecordReader(dataset.RecordReaderConfig{
		Paths:          shards,
		Objective:      cfg.Objective,
		BatchSize:      cfg.MicroBatchSize(),
		SequenceLength: cfg.SequenceLength,
		TokenSepID:     cfg.TokenSepID,
	})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	opt, err := optimizer.New(optimizer.Config{
		Type:                       cfg.Optimizer,
		LearningRate:               cfg.LearningRate,
		WeightDecayRate:            cfg.WeightDecayRate,
		ExcludeFromWeightDecay:     cfg.ExcludeFromWeightDecay,
		ExcludeFromLayerAdaptation: cfg.ExcludeFromLayerAdaptation,
		LRSchedule:                 cfg.LRSchedule,
		GradAccumSteps:             cfg.GradAccumSteps,
		BiasCorrection:             cfg.BiasCorrection,
	})
	if err != nil {
		return nil, err
	}

	strategy, err := train.NewMirrored(cfg.Replicas)
	if err != nil {
		return nil, err
	}
	step := train.NewStep(mdl, opt, strategy)
	if cfg.Adversarial != nil {
		step, err = train.WithAdversarialPerturbation(step, mdl, strategy, cfg.Adversarial.EmbeddingName, cfg.Adversarial.Epsilon)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{RunID: checkpoint.NewRunID()}

	modelCheckpoint := train.NewModelCheckpoint(train.ModelCheckpointConfig{
		Params:        mdl.Params(),
		LatestPath:    cfg.ModelSavedPath,
		BestPath:      cfg.BestModelSavedPath,
		SavedModelDir: cfg.ModelSavedDir,
		RunID:         result.RunID,
		Step:          opt.Iterations,
		Logger:        logger,
	})
	callbacks := []train.Callback{
		modelCheckpoint,
		train.NewCSVLogger(cfg.TrainingLogPath),
	}
	if cfg.EarlyStopping != nil {
		callbacks = append(callbacks, train.NewEarlyStopping(cfg.EarlyStopping.Monitor, cfg.EarlyStopping.Patience, cfg.EarlyStopping.Mode, logger))
	}

	loop := train.Loop{
		Step:          step,
		Source:        reader,
		Epochs:        cfg.Epochs,
		StepsPerEpoch: cfg.StepsPerEpoch,
		Callbacks:     callbacks,
		Logger:        logger,
	}
	if reporter != nil {
		loop.Callbacks = append(loop.Callbacks, train.ReportMetrics(reporter))
		loop.OnStep = func(d time.Duration) {
			reporter.ObserveStep(d, opt.LearningRateMultiplier())
		}
	}

	logger.Infow("pretraining",
		"run_id", result.RunID,
		"objective", cfg.Objective.String(),
		"outputs", spec.OutputNames(),
		"optimizer", opt.String(),
		"shards", len(shards),
		"micro_batch_size", cfg.MicroBatchSize(),
		"grad_accum_steps", cfg.GradAccumSteps,
		"epochs", cfg.Epochs,
		"steps_per_epoch", cfg.StepsPerEpoch,
		"replicas", strategy.Replicas(),
	)

	history, err := train.Fit(ctx, loop)
	if history != nil {
		result.Epochs = len(history.Epochs)
		result.Stopped = history.Stopped
		result.History = history.Epochs
		if len(history.Epochs) > 0 {
			result.Last = history.Epochs[len(history.Epochs)-1]
		}
	}
	result.BestLoss = modelCheckpoint.Best()
	result.Updates = opt.Updates()
	if err != nil {
		return result, err
	}
	return result, nil
}

// restore loads the encoder from a snapshot of either format, plus any heads it also holds
func restore(ctx context.Context, mdl *model.Pretraining, path string, logger *zap.SugaredLogger) error {
	snapshot, err := checkpoint.Load(ctx, path)
	if err != nil {
		return err
	}
	if err := snapshot.Restore(model.EncoderParams(mdl), false); err != nil {
		return err
	}
	if err := snapshot.Restore(mdl.Params(), true); err != nil {
		return err
	}
	logger.Infow("restored snapshot", "path", path, "format", snapshot.Format.String(), "run_id", snapshot.RunID)
	return nil
}
