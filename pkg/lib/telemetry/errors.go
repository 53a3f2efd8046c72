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
	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const (
	ErrUserIDNotSpecified = "telemetry.user_id_not_specified"
	ErrSentryInit         = "telemetry.sentry_init"
	ErrSegmentInit        = "telemetry.segment_init"
	ErrSentryFlushTimeout = "telemetry.sentry_flush_timeout"
)

func ErrorUserIDNotSpecified() error {
	return errors.WithStack(&errors.Error{
		Kind:        ErrUserIDNotSpecified,
		Message:     "user ID must be specified to enable telemetry",
		NoTelemetry: true,
	})
}

func ErrorSentryInit() error {
	return errors.WithStack(&errors.Error{
		Kind:        ErrSentryInit,
		Message:     "unable to initialize error reporting",
		NoTelemetry: true,
	})
}

func ErrorSegmentInit() error {
	return errors.WithStack(&errors.Error{
		Kind:        ErrSegmentInit,
		Message:     "unable to initialize event reporting",
		NoTelemetry: true,
	})
}

func ErrorSentryFlushTimeout() error {
	return errors.WithStack(&errors.Error{
		Kind:        ErrSentryFlushTimeout,
		Message:     "sentry flush timeout exceeded",
		NoTelemetry: true,
	})
}
