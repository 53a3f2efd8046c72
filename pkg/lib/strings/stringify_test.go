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

package strings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	require.Equal(t, "0.5", Round(0.5, 2, 0))
	require.Equal(t, "0.50", Round(0.5, 2, 2))
	require.Equal(t, "0.567", Round(0.56666, 3, 2))
	require.Equal(t, "12.00", Round(12, 2, 2))
}

func TestStrsSentence(t *testing.T) {
	require.Equal(t, "", StrsOr(nil))
	require.Equal(t, "a", StrsOr([]string{"a"}))
	require.Equal(t, "a or b", StrsOr([]string{"a", "b"}))
	require.Equal(t, "a, b, and c", StrsAnd([]string{"a", "b", "c"}))
}

func TestUserStr(t *testing.T) {
	require.Equal(t, `"roberta"`, UserStr("roberta"))
	require.Equal(t, "1.0", UserStr(1.0))
	require.Equal(t, "3", UserStr(3))
	require.Equal(t, `["*Norm*", "*bias*"]`, UserStr([]string{"*Norm*", "*bias*"}))
	require.Equal(t, "{1000: 1.0, 5000: 0.0}", UserStr(map[int]float64{1000: 1, 5000: 0}))
	require.Equal(t, `"adam" or "lamb"`, UserStrsOr([]string{"adam", "lamb"}))
}
