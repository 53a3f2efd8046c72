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
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/cortexlabs/trainer/pkg/model"
)

const _csvMissingValue = "NA"

// CSVLogger writes one row per epoch; the columns are fixed by the first epoch's logs
type CSVLogger struct {
	path string
	keys []string
	rows [][]string
}

func NewCSVLogger(path string) *CSVLogger {
	return &CSVLogger{path: path}
}

func (l *CSVLogger) OnEpochEnd(ctx context.Context, epoch int, logs model.Logs) (bool, error) {
	if l.keys == nil {
		l.keys = logs.Keys()
		l.rows = append(l.rows, append([]string{"epoch"}, l.keys...))
	}

	row := []string{strconv.Itoa(epoch)}
	for _, key := range l.keys {
		value, ok := logs[key]
		if !ok {
			row = append(row, _csvMissingValue)
			continue
		}
		row = append(row, strconv.FormatFloat(value, 'g', -1, 64))
	}
	l.rows = append(l.rows, row)

	// the whole file is rewritten so remote destinations stay readable between epochs
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(l.rows); err != nil {
		return false, errors.Wrap(err, l.path)
	}
	return false, storage.WriteFile(ctx, l.path, buf.Bytes())
}
