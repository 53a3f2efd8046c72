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
	"fmt"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Format is the on-disk layout of a parameter snapshot
type Format int

const (
	// WeightsFormat is a single msgpack file holding every param of the model
	WeightsFormat Format = iota
	// CheckpointFormat is a prefix holding a JSON index and a raw little-endian variables file
	CheckpointFormat
)

func (f Format) String() string {
	switch f {
	case WeightsFormat:
		return "weights"
	case CheckpointFormat:
		return "checkpoint"
	}
	return "unknown"
}

// Snapshot is a set of named values read back from either format
type Snapshot struct {
	Format Format
	RunID  string
	Values map[string]*mat.Dense
}

// Restore copies the snapshot into params; unless partial, every param must be present
func (s *Snapshot) Restore(params *nn.Params, partial bool) error {
	return params.Assign(s.Values, partial)
}

// Load reads a snapshot in whichever format path holds
func Load(ctx context.Context, path string) (*Snapshot, error) {
	if isCheckpoint(ctx, path) {
		return LoadCheckpoint(ctx, path)
	}
	return LoadWeights(ctx, path)
}

func NewRunID() string {
	return uuid.New().String()
}

// EpochPath is the epoch-tagged checkpoint location next to savedModelDir
func EpochPath(savedModelDir string, epoch int) string {
	return storage.Join(fmt.Sprintf("%s_%d", savedModelDir, epoch), consts.CheckpointFileName)
}
