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

package cron

import (
	"time"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

type Cron struct {
	cronRun    chan struct{}
	cronCancel chan struct{}
	done       chan struct{}
}

// Run calls f immediately and then every interval until Cancel is called
func Run(f func() error, errHandler func(error), interval time.Duration) Cron {
	cronRun := make(chan struct{}, 1)
	cronCancel := make(chan struct{}, 1)
	done := make(chan struct{})

	runCron := func() {
		defer recoverer(errHandler)
		err := f()
		if err != nil {
			errHandler(err)
		}
	}

	go func() {
		defer close(done)
		timer := time.NewTimer(0)
		defer timer.Stop()
		for {
			select {
			case <-cronCancel:
				return
			case <-cronRun:
				runCron()
			case <-timer.C:
				runCron()
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(interval)
		}
	}()

	return Cron{
		cronRun:    cronRun,
		cronCancel: cronCancel,
		done:       done,
	}
}

func (c *Cron) RunNow() {
	select {
	case c.cronRun <- struct{}{}:
	default:
	}
}

// Cancel stops the cron and waits for an in-flight run to finish
func (c *Cron) Cancel() {
	select {
	case c.cronCancel <- struct{}{}:
	default:
	}
	<-c.done
}

func recoverer(errHandler func(error)) {
	if errInterface := recover(); errInterface != nil {
		errHandler(errors.CastRecoverError(errInterface))
	}
}
