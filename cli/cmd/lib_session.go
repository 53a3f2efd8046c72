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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cortexlabs/trainer/pkg/lib/logging"
	"github.com/cortexlabs/trainer/pkg/lib/table"
	"github.com/cortexlabs/trainer/pkg/lib/telemetry"
	"github.com/cortexlabs/trainer/pkg/metrics"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
)

// session is the process-level state shared by the long-running commands
type session struct {
	ctx      context.Context
	reporter *metrics.Reporter
	stop     []func()
}

// startSession initializes telemetry, traps interrupts and starts the optional metrics server
func startSession(command string, runtime trainconfig.Runtime) *session {
	logger := logging.GetLogger()

	err := telemetry.Init(telemetry.Config{
		Enabled: runtime.Telemetry,
		UserID:  installID(),
		Properties: map[string]interface{}{
			"command": command,
		},
		Environment: "cli",
		LogErrors:   false,
	})
	if err != nil {
		logger.Warnw("failed to initialize telemetry", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s := &session{
		ctx:      ctx,
		reporter: metrics.NewReporter(logger),
		stop:     []func(){cancel},
	}

	if runtime.MetricsPort > 0 {
		go func() {
			if err := s.reporter.Serve(ctx, runtime.MetricsPort); err != nil {
				logger.Errorw("metrics server stopped", "error", err)
			}
		}()
	}
	s.stop = append(s.stop, s.reporter.StartResourceMonitor(time.Duration(runtime.ResourceLogInterval)*time.Second))

	telemetry.Event("training.started")
	return s
}

// close stops the background work; a successful run reports its summary properties
func (s *session) close(err error, properties map[string]interface{}) {
	for i := len(s.stop) - 1; i >= 0; i-- {
		s.stop[i]()
	}
	if err == nil {
		telemetry.Event("training.finished", properties)
	}
	_ = logging.GetLogger().Sync()
}

func printHistory(history []model.Logs) {
	if len(history) == 0 {
		return
	}
	epochs := make([]map[string]float64, len(history))
	for i, logs := range history {
		epochs[i] = logs
	}
	fmt.Print(table.FromHistory(epochs).MustFormat(true))
}
