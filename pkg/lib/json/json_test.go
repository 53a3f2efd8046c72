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

package json

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeWithNumber(t *testing.T) {
	var parsed map[string]interface{}
	require.NoError(t, DecodeWithNumber([]byte(`{"label": 102, "sentence": "hi"}`), &parsed))
	number, ok := parsed["label"].(interface{ Int64() (int64, error) })
	require.True(t, ok)
	label, err := number.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(102), label)

	require.Error(t, DecodeWithNumber([]byte(`{"label": `), &parsed))
}
