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

package checkpoint

import (
	"context"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/json"
	"github.com/cortexlabs/trainer/pkg/lib/msgpack"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/cortexlabs/trainer/pkg/nn"
	"gonum.org/v1/gonum/mat"
)

type weightsFile struct {
	Magic     string            `json:"magic"`
	RunID     string            `json:"run_id"`
	Variables []weightsVariable `json:"variables"`
}

type weightsVariable struct {
	Name string    `json:"name"`
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// SaveWeights writes every param to a single file
func SaveWeights(ctx context.Context, path string, params *nn.Params, runID string) error {
	file := weightsFile{
		Magic:     consts.WeightsMagic,
		RunID:     runID,
		Variables: make([]weightsVariable, 0, params.Len()),
	}
	for _, param := range params.List() {
		rows, cols := param.Value.Dims()
		data := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			data = append(data, param.Value.RawRowView(i)...)
		}
		file.Variables = append(file.Variables, weightsVariable{
			Name: param.Name,
			Rows: rows,
			Cols: cols,
			Data: data,
		})
	}

	data, err := msgpack.Marshal(file)
	if err != nil {
		return errors.Wrap(err, path)
	}
	return storage.WriteFile(ctx, path, data)
}

func LoadWeights(ctx context.Context, path string) (*Snapshot, error) {
	data, err := storage.ReadFile(ctx, path)
	if err != nil {
		if isCheckpoint(ctx, path) {
			return nil, ErrorFormatMismatch(path, WeightsFormat, CheckpointFormat)
		}
		if errors.GetKind(err) == storage.ErrNotFound {
			return nil, ErrorNotFound(path, WeightsFormat)
		}
		return nil, err
	}

	var file weightsFile
	if err := msgpack.Unmarshal(data, &file); err != nil || file.Magic != consts.WeightsMagic {
		var index checkpointIndex
		if json.Unmarshal(data, &index) == nil && index.Magic == consts.CheckpointMagic {
			return nil, ErrorFormatMismatch(path, WeightsFormat, CheckpointFormat)
		}
		return nil, ErrorCorrupt(path, WeightsFormat)
	}

	snapshot := &Snapshot{
		Format: WeightsFormat,
		RunID:  file.RunID,
		Values: make(map[string]*mat.Dense, len(file.Variables)),
	}
	for _, variable := range file.Variables {
		if len(variable.Data) != variable.Rows*variable.Cols || variable.Rows <= 0 || variable.Cols <= 0 {
			return nil, ErrorVariableTruncated(path, variable.Name)
		}
		snapshot.Values[variable.Name] = mat.NewDense(variable.Rows, variable.Cols, variable.Data)
	}
	return snapshot, nil
}

// isWeights reports whether path holds a weights file
func isWeights(ctx context.Context, path string) bool {
	if !storage.IsRemotePath(path) && !isLocalFile(path) {
		return false
	}
	data, err := storage.ReadFile(ctx, path)
	if err != nil {
		return false
	}
	var file weightsFile
	return msgpack.Unmarshal(data, &file) == nil && file.Magic == consts.WeightsMagic
}
