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
	goerrors "errors"
	"fmt"
	"os"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/telemetry"
)

const (
	CodeError       = 1
	// 128 + SIGINT
	CodeInterrupted = 130
)

func Ok() {
	telemetry.Close()
	os.Exit(0)
}

// Error ends a failed run. A run stopped by an interrupt exits with CodeInterrupted without
// being reported; anything else is reported unless marked NoTelemetry, printed unless marked
// NoPrint, and exits with CodeError.
func Error(err error, wrapStrs ...string) {
	for _, str := range wrapStrs {
		err = errors.Wrap(err, str)
	}

	code := Code(err)
	if code == CodeInterrupted {
		fmt.Fprintln(os.Stderr, "training interrupted")
	} else if err != nil {
		if !errors.IsNoTelemetry(err) {
			telemetry.Error(err)
		}
		if !errors.IsNoPrint(err) {
			errors.PrintError(err)
		}
	}

	telemetry.Close()

	os.Exit(code)
}

// Code is the process exit code of a run that ended with err
func Code(err error) int {
	if goerrors.Is(err, context.Canceled) {
		return CodeInterrupted
	}
	return CodeError
}

func RecoverAndExit(strs ...string) {
	if errInterface := recover(); errInterface != nil {
		err := errors.CastRecoverError(errInterface, strs...)
		Error(err)
	}
}
