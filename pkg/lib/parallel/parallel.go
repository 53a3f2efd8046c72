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
	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

// Alternative: https://golang.org/pkg/sync/#WaitGroup (with error channel)
// Alternative: https://godoc.org/golang.org/x/sync/errgroup

// Run executes every function concurrently and returns their errors in argument order
func Run(fn func() error, fns ...func() error) []error {
	allFns := append([]func() error{fn}, fns...)

	errChannels := make([]chan error, len(allFns))
	for i := range errChannels {
		errChannels[i] = make(chan error, 1)
	}

	for i := range allFns {
		fn := allFns[i]
		errChannel := errChannels[i]

		if fn == nil {
			errChannel <- nil
			continue
		}

		go func() {
			defer func() {
				if r := recover(); r != nil {
					errChannel <- errors.CastRecoverError(r)
				}
			}()
			errChannel <- fn()
		}()
	}

	errs := make([]error, len(allFns))
	for i := range allFns {
		errs[i] = <-errChannels[i]
	}
	return errs
}

func RunFirstErr(fn func() error, fns ...func() error) error {
	errs := Run(fn, fns...)
	return errors.FirstError(errs...)
}

// RunN calls fn(0) ... fn(n-1) concurrently and returns the first error by index
func RunN(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	fns := make([]func() error, n)
	for i := 0; i < n; i++ {
		i := i
		fns[i] = func() error {
			return fn(i)
		}
	}
	return RunFirstErr(fns[0], fns[1:]...)
}
