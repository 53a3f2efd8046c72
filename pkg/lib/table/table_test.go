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
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/stretchr/testify/require"
)

func TestFromHistory(t *testing.T) {
	tbl := FromHistory([]map[string]float64{
		{"loss": 1.5, "mlm_acc": 0.25},
		{"loss": 0.75},
	})
	require.Equal(t, []string{"epoch", "loss", "mlm_acc"}, tbl.Headers)

	str, err := tbl.Format(false)
	require.NoError(t, err)
	require.Equal(t, ""+
		"epoch   loss      mlm_acc\n"+
		"0       1.50000   0.25000\n"+
		"1       0.75000   -\n", str)
}

func TestFormatErrors(t *testing.T) {
	_, err := (&Table{}).Format(false)
	require.Equal(t, ErrAtLeastOneColumn, errors.GetKind(err))

	tbl := &Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}}
	_, err = tbl.Format(false)
	require.Equal(t, ErrWrongNumberOfColumns, errors.GetKind(err))
	require.Contains(t, tbl.MustFormat(false), "error: ")
}
