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

package exit

import (
	"context"
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	require.Equal(t, CodeError, Code(errors.New("failed")))
	require.Equal(t, CodeError, Code(context.DeadlineExceeded))
	require.Equal(t, CodeError, Code(nil))

	require.Equal(t, CodeInterrupted, Code(context.Canceled))
	require.Equal(t, CodeInterrupted, Code(errors.Wrap(errors.WithStack(context.Canceled), "pretrain", "epoch 3")))
}
