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

package classifier

import (
	"context"
	"time"

	"github.com/cortexlabs/trainer/pkg/checkpoint"
	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/evaluation"
	"github.com/cortexlabs/trainer/pkg/lib/logging"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/cortexlabs/trainer/pkg/metrics"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/optimizer"
	"github.com/cortexlabs/trainer/pkg/tokenizer"
	"github.com/cortexlabs/trainer/pkg/train"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

type Result struct {
	RunID        string
	BestAccuracy float64
	Epochs       int
	WeightsPath  string
	History      []model.Logs
}

// WeightsPath is where the best weights of a run are written
func WeightsPath(cfg *trainconfig.ClassifierConfig) string {
	return storage.Join(cfg.OutputDir, consts.BestClassifierWeightsName)
}

type session struct {
	cfg        *trainconfig.ClassifierConfig
	tokenizer  *tokenizer.Tokenizer
	classifier *model.Classifier
	valid      *dataset.Batcher
}

func newSession(ctx context.Context, cfg *trainconfig.ClassifierConfig) (*session, error) {
	tok, err := tokenizer.Load(ctx, cfg.VocabPath, cfg.DoLowerCase)
	if err != nil {
		return nil, err
	}

	modelConfig, err := model.LoadConfig(ctx, cfg.ModelConfigPath)
	if err != nil {
		return nil, err
	}
	if tok.VocabSize() > modelConfig.VocabSize {
		return nil, ErrorVocabSizeMismatch(cfg.VocabPath, tok.VocabSize(), modelConfig.VocabSize)
	}
	modelConfig.NumHiddenLayers = cfg.NumHiddenLayers

	clf, err := model.BuildClassifier(modelConfig, cfg.NumClasses, int64(cfg.Seed))
	if err != nil {
		return nil, err
	}

	validExamples, err := dataset.LoadExamples(ctx, cfg.ValidPath)
	if err != nil {
		return nil, err
	}
	if err := dataset.CheckNumClasses(validExamples, cfg.NumClasses, cfg.ValidPath); err != nil {
		return nil, err
	}

	return &session{
		cfg:        cfg,
		tokenizer:  tok,
		classifier: clf,
		valid:      dataset.NewBatcher(validExamples, tok, cfg.BatchSize, cfg.MaxLen, int64(cfg.Seed)),
	}, nil
}

// Run fine-tunes a classifier and keeps the weights with the best validation accuracy.
// reporter may be nil.
func Run(ctx context.Context, cfg *trainconfig.ClassifierConfig, reporter *metrics.Reporter) (*Result, error) {
	logger := logging.GetLogger()

	sess, err := newSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	clf := sess.classifier

	if cfg.CheckpointPath != "" {
		snapshot, err := checkpoint.LoadCheckpoint(ctx, cfg.CheckpointPath)
		if err != nil {
			return nil, err
		}
		if err := snapshot.Restore(model.EncoderParams(clf), false); err != nil {
			return nil, err
		}
		logger.Infow("loaded pretrained encoder", "path", cfg.CheckpointPath, "run_id", snapshot.RunID)
	}
	logger.Info("\n" + nn.Summary("classifier", clf.Params()))

	trainExamples, err := dataset.LoadExamples(ctx, cfg.TrainPath)
	if err != nil {
		return nil, err
	}
	if err := dataset.CheckNumClasses(trainExamples, cfg.NumClasses, cfg.TrainPath); err != nil {
		return nil, err
	}
	trainBatches := dataset.NewBatcher(trainExamples, sess.tokenizer, cfg.BatchSize, cfg.MaxLen, int64(cfg.Seed))

	opt, err := optimizer.New(optimizer.Config{
		Type:           userconfig.AdamOptimizerType,
		LearningRate:   cfg.LearningRate,
		GradAccumSteps: 1,
		BiasCorrection: true,
	})
	if err != nil {
		return nil, err
	}

	strategy, err := train.NewMirrored(cfg.Replicas)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:       checkpoint.NewRunID(),
		WeightsPath: WeightsPath(cfg),
	}

	evaluator := train.NewEvaluator(train.EvaluatorConfig{
		Predictor:   clf,
		Batches:     func() evaluation.Batches { return sess.valid.Batches(false) },
		Params:      clf.Params(),
		WeightsPath: result.WeightsPath,
		RunID:       result.RunID,
		Logger:      logger,
	})

	loop := train.Loop{
		Step:          train.NewStep(clf, opt, strategy),
		Source:        trainBatches.Cycle(cfg.Shuffle),
		Epochs:        cfg.Epochs,
		StepsPerEpoch: trainBatches.Len(),
		Callbacks:     []train.Callback{evaluator},
		Logger:        logger,
	}
	if reporter != nil {
		loop.Callbacks = append(loop.Callbacks, train.ReportMetrics(reporter))
		loop.OnStep = func(d time.Duration) {
			reporter.ObserveStep(d, opt.LearningRateMultiplier())
		}
	}

	logger.Infow("training classifier",
		"run_id", result.RunID,
		"train_examples", trainBatches.NumExamples(),
		"valid_examples", sess.valid.NumExamples(),
		"steps_per_epoch", trainBatches.Len(),
		"replicas", strategy.Replicas(),
	)

	history, err := train.Fit(ctx, loop)
	if history != nil {
		result.Epochs = len(history.Epochs)
		result.History = history.Epochs
	}
	result.BestAccuracy = evaluator.Best()
	if err != nil {
		return result, err
	}
	return result, nil
}

// Evaluate loads the best weights of a previous run and measures validation accuracy
func Evaluate(ctx context.Context, cfg *trainconfig.ClassifierConfig) (evaluation.Accuracy, error) {
	sess, err := newSession(ctx, cfg)
	if err != nil {
		return evaluation.Accuracy{}, err
	}

	snapshot, err := checkpoint.LoadWeights(ctx, WeightsPath(cfg))
	if err != nil {
		return evaluation.Accuracy{}, err
	}
	if err := snapshot.Restore(sess.classifier.Params(), false); err != nil {
		return evaluation.Accuracy{}, err
	}

	return evaluation.Evaluate(ctx, sess.classifier, sess.valid.Batches(false))
}
