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

package evaluation

import (
	"context"
	"fmt"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

// Accuracy is kept as a ratio so that totals from several evaluations can be added exactly
type Accuracy struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

func (a Accuracy) Float() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Total)
}

func (a Accuracy) Add(other Accuracy) Accuracy {
	return Accuracy{Correct: a.Correct + other.Correct, Total: a.Total + other.Total}
}

func (a Accuracy) String() string {
	return fmt.Sprintf("%.5f (%d/%d)", a.Float(), a.Correct, a.Total)
}

type Predictor interface {
	Predict(batch *dataset.Batch) ([]int, error)
}

type Batches interface {
	Next() (*dataset.Batch, bool)
}

// Evaluate compares the argmax prediction of every example with its label
func Evaluate(ctx context.Context, predictor Predictor, batches Batches) (Accuracy, error) {
	var accuracy Accuracy
	for {
		if err := ctx.Err(); err != nil {
			return accuracy, errors.WithStack(err)
		}

		batch, ok := batches.Next()
		if !ok {
			return accuracy, nil
		}

		predictions, err := predictor.Predict(batch)
		if err != nil {
			return accuracy, err
		}
		for i, label := range batch.Labels {
			if predictions[i] == label {
				accuracy.Correct++
			}
		}
		accuracy.Total += len(batch.Labels)
	}
}
