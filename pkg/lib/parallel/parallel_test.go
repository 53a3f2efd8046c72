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

package parallel

import (
	"sync"
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/stretchr/testify/require"
)

func TestRunOrder(t *testing.T) {
	errs := Run(
		func() error { return errors.New("first") },
		nil,
		func() error { return nil },
		func() error { panic("fourth") },
	)
	require.Len(t, errs, 4)
	require.EqualError(t, errs[0], "first")
	require.NoError(t, errs[1])
	require.NoError(t, errs[2])
	require.EqualError(t, errs[3], "fourth")

	require.EqualError(t, RunFirstErr(func() error { return nil }, func() error { return errors.New("second") }), "second")
}

func TestRunN(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}
	err := RunN(4, func(i int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = true
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, map[int]bool{0: true, 1: true, 2: true, 3: true}, seen)

	err = RunN(3, func(i int) error {
		if i == 2 {
			return errors.New("replica 2")
		}
		return nil
	})
	require.EqualError(t, err, "replica 2")
	require.NoError(t, RunN(0, nil))
}
