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

package telemetry

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/parallel"
	"github.com/getsentry/sentry-go"
	"gopkg.in/segmentio/analytics-go.v3"
)

var _segment analytics.Client
var _config *Config

type Config struct {
	Enabled     bool
	UserID      string
	Properties  map[string]interface{}
	Environment string
	LogErrors   bool
}

type silentSegmentLogger struct{}

func (logger silentSegmentLogger) Logf(format string, args ...interface{}) {
	return
}

func (logger silentSegmentLogger) Errorf(format string, args ...interface{}) {
	return
}

type silentSentryLogger struct{}

func (logger silentSentryLogger) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func Init(telemetryConfig Config) error {
	if !telemetryConfig.Enabled || isDisabledByEnv() {
		_config = nil
		return nil
	}

	if telemetryConfig.UserID == "" {
		return ErrorUserIDNotSpecified()
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         os.Getenv(consts.TelemetrySentryDSNEnvVar),
		Release:     consts.TrainerVersion,
		Environment: telemetryConfig.Environment,
	})
	if err != nil {
		_config = nil
		return errors.Wrap(err, errors.Message(ErrorSentryInit()))
	}

	var segmentLogger analytics.Logger
	if !telemetryConfig.LogErrors {
		sentry.Logger.SetOutput(silentSentryLogger{})
		segmentLogger = silentSegmentLogger{}
	}

	if writeKey := os.Getenv(consts.TelemetrySegmentWriteKeyEnvVar); writeKey != "" {
		_segment, err = analytics.NewWithConfig(writeKey, analytics.Config{
			BatchSize: 1,
			Logger:    segmentLogger,
			DefaultContext: &analytics.Context{
				App: analytics.AppInfo{
					Version: consts.TrainerVersion,
				},
				Device: analytics.DeviceInfo{
					Type: telemetryConfig.Environment,
				},
			},
		})
		if err != nil {
			_config = nil
			return errors.Wrap(err, errors.Message(ErrorSegmentInit()))
		}
	}

	_config = &telemetryConfig
	return nil
}

func IsEnabled() bool {
	return _config != nil && _config.Enabled && !isDisabledByEnv()
}

func isDisabledByEnv() bool {
	return strings.ToLower(os.Getenv(consts.TelemetryDisableEnvVar)) == "true"
}

// Event records a run lifecycle event (e.g. training.started, training.finished)
func Event(name string, properties ...map[string]interface{}) {
	if !IsEnabled() || _segment == nil {
		return
	}

	err := _segment.Enqueue(analytics.Track{
		Event:      name,
		UserId:     _config.UserID,
		Properties: mergeProperties(append(properties, _config.Properties)...),
	})
	if err != nil {
		Error(err)
	}
}

func Error(err error) {
	if err == nil || !IsEnabled() {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: _config.UserID})
		scope.SetExtras(_config.Properties)
		scope.SetTag("kind", errors.GetKind(err))
		e := EventFromException(err)
		sentry.CaptureEvent(e)

		go sentry.Flush(10 * time.Second)
	})
}

func EventFromException(exception error) *sentry.Event {
	stacktrace := sentry.ExtractStacktrace(exception)

	if stacktrace == nil {
		stacktrace = sentry.NewStacktrace()
	}

	cause := errors.CauseOrSelf(exception)

	event := sentry.NewEvent()
	event.Level = sentry.LevelError

	errTypeString := reflect.TypeOf(cause).String()
	if errKind := errors.GetKind(exception); errKind != errors.ErrNotTrainerError {
		errTypeString = errKind
	}

	event.Exception = []sentry.Exception{{
		Value:      exception.Error(),
		Type:       errTypeString,
		Stacktrace: stacktrace,
	}}
	return event
}

func closeSentry() error {
	if !sentry.Flush(5 * time.Second) {
		return ErrorSentryFlushTimeout()
	}
	return nil
}

func closeSegment() error {
	if _segment == nil {
		return nil
	}
	return _segment.Close()
}

func Close() {
	if _config == nil {
		return
	}
	parallel.Run(closeSegment, closeSentry)
	_segment = nil
	_config = nil
}

func mergeProperties(properties ...map[string]interface{}) map[string]interface{} {
	mergedProperties := make(map[string]interface{})
	for _, p := range properties {
		for k, v := range p {
			mergedProperties[k] = v
		}
	}
	return mergedProperties
}
