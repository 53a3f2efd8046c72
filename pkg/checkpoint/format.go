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
	"bytes"
	"context"
	"encoding/binary"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/files"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/cortexlabs/trainer/pkg/nn"
	"gonum.org/v1/gonum/mat"
)

const _bytesPerValue = 8

type checkpointIndex struct {
	Magic     string          `json:"magic"`
	RunID     string          `json:"run_id"`
	Step      int64           `json:"step"`
	Variables []indexVariable `json:"variables"`
}

type indexVariable struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
}

// SaveCheckpoint writes params under prefix. The index is written last, so a prefix with an
// index always has complete variables.
func SaveCheckpoint(ctx context.Context, prefix string, params *nn.Params, runID string, step int64) error {
	bucket, err := storage.Open(ctx, prefix)
	if err != nil {
		return err
	}
	defer bucket.Close()

	index := checkpointIndex{
		Magic:     consts.CheckpointMagic,
		RunID:     runID,
		Step:      step,
		Variables: make([]indexVariable, 0, params.Len()),
	}

	var buf bytes.Buffer
	buf.Grow(params.NumValues() * _bytesPerValue)
	for _, param := range params.List() {
		rows, cols := param.Value.Dims()
		index.Variables = append(index.Variables, indexVariable{
			Name:   param.Name,
			Shape:  []int{rows, cols},
			Offset: int64(buf.Len()),
		})
		for i := 0; i < rows; i++ {
			if err := binary.Write(&buf, binary.LittleEndian, param.Value.RawRowView(i)); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	if err := bucket.PutBytes(ctx, consts.CheckpointVariablesFileName, buf.Bytes()); err != nil {
		return err
	}
	return bucket.PutJSON(ctx, consts.CheckpointIndexFileName, index)
}

func LoadCheckpoint(ctx context.Context, prefix string) (*Snapshot, error) {
	if !isCheckpoint(ctx, prefix) {
		if isWeights(ctx, prefix) {
			return nil, ErrorFormatMismatch(prefix, CheckpointFormat, WeightsFormat)
		}
		return nil, ErrorNotFound(prefix, CheckpointFormat)
	}

	bucket, err := storage.Open(ctx, prefix)
	if err != nil {
		return nil, err
	}
	defer bucket.Close()

	var index checkpointIndex
	if err := bucket.GetJSON(ctx, consts.CheckpointIndexFileName, &index); err != nil {
		return nil, err
	}
	if index.Magic != consts.CheckpointMagic {
		return nil, ErrorCorrupt(prefix, CheckpointFormat)
	}

	data, err := bucket.GetBytes(ctx, consts.CheckpointVariablesFileName)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Format: CheckpointFormat,
		RunID:  index.RunID,
		Values: make(map[string]*mat.Dense, len(index.Variables)),
	}
	for _, variable := range index.Variables {
		if len(variable.Shape) != 2 || variable.Shape[0] <= 0 || variable.Shape[1] <= 0 {
			return nil, ErrorCorrupt(prefix, CheckpointFormat)
		}
		size := variable.Shape[0] * variable.Shape[1]
		end := variable.Offset + int64(size*_bytesPerValue)
		if variable.Offset < 0 || end > int64(len(data)) {
			return nil, ErrorVariableTruncated(prefix, variable.Name)
		}

		values := make([]float64, size)
		if err := binary.Read(bytes.NewReader(data[variable.Offset:end]), binary.LittleEndian, values); err != nil {
			return nil, errors.Wrap(err, prefix, variable.Name)
		}
		snapshot.Values[variable.Name] = mat.NewDense(variable.Shape[0], variable.Shape[1], values)
	}
	return snapshot, nil
}

// isCheckpoint reports whether prefix holds a checkpoint index
func isCheckpoint(ctx context.Context, prefix string) bool {
	if !storage.IsRemotePath(prefix) && !isLocalDir(prefix) {
		return false
	}
	bucket, err := storage.Open(ctx, prefix)
	if err != nil {
		return false
	}
	defer bucket.Close()
	exists, err := bucket.Exists(ctx, consts.CheckpointIndexFileName)
	return err == nil && exists
}

// probing a local path must not create directories as a side effect of opening it
func isLocalDir(path string) bool {
	expanded, err := files.EscapeTilde(path)
	if err != nil {
		return false
	}
	return files.IsDir(expanded)
}

func isLocalFile(path string) bool {
	expanded, err := files.EscapeTilde(path)
	if err != nil {
		return false
	}
	return files.IsFile(expanded)
}
