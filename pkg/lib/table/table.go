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

package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/console"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const _missing = "-"

type Table struct {
	Headers []string
	Rows    [][]string
	Spacing int // Spacing between columns. If 0 is provided, it defaults to 3.
}

// FromHistory lays out one row per epoch; columns are "epoch" and the sorted union of metric names
func FromHistory(epochs []map[string]float64) *Table {
	names := map[string]bool{}
	for _, logs := range epochs {
		for name := range logs {
			names[name] = true
		}
	}
	var headers []string
	for name := range names {
		headers = append(headers, name)
	}
	sort.Strings(headers)

	t := &Table{Headers: append([]string{"epoch"}, headers...)}
	for epoch, logs := range epochs {
		row := []string{strconv.Itoa(epoch)}
		for _, name := range headers {
			value, ok := logs[name]
			if !ok {
				row = append(row, _missing)
				continue
			}
			row = append(row, fmt.Sprintf("%.5f", value))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func validate(t Table) error {
	numCols := len(t.Headers)
	if numCols < 1 {
		return ErrorAtLeastOneColumn()
	}
	for i, row := range t.Rows {
		if len(row) != numCols {
			return ErrorWrongNumberOfColumns(i, len(row), numCols)
		}
	}
	return nil
}

// Return the error message as a string
func (t *Table) MustFormat(boldHeader bool) string {
	str, err := t.Format(boldHeader)
	if err != nil {
		return "error: " + errors.Message(err)
	}
	return str
}

// Format left-aligns every column, keeping rows in the order given
func (t *Table) Format(boldHeader bool) (string, error) {
	if err := validate(*t); err != nil {
		return "", err
	}

	spacing := t.Spacing
	if spacing <= 0 {
		spacing = 3
	}

	colWidths := make([]int, len(t.Headers))
	for colNum, header := range t.Headers {
		colWidths[colNum] = len(header)
	}
	for _, row := range t.Rows {
		for colNum, val := range row {
			if len(val) > colWidths[colNum] {
				colWidths[colNum] = len(val)
			}
		}
	}

	lastColIndex := len(t.Headers) - 1
	formatRow := func(cells []string, bold bool) string {
		var rowStr string
		for colNum, val := range cells {
			if bold {
				rowStr += console.Bold(val)
			} else {
				rowStr += val
			}
			if colNum != lastColIndex {
				rowStr += strings.Repeat(" ", colWidths[colNum]+spacing-len(val))
			}
		}
		return strings.TrimRight(rowStr, " ")
	}

	lines := []string{formatRow(t.Headers, boldHeader)}
	for _, row := range t.Rows {
		lines = append(lines, formatRow(row, false))
	}
	return strings.Join(lines, "\n") + "\n", nil
}
