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
)

type epochObserver interface {
	ObserveEpoch(epoch int, logs map[string]float64)
}

// ReportMetrics forwards every epoch's logs to a metrics reporter
func ReportMetrics(observer epochObserver) Callback {
	return CallbackFunc(func(ctx context.Context, epoch int, logs model.Logs) (bool, error) {
		observer.ObserveEpoch(epoch, logs)
		return false, nil
	})
}
