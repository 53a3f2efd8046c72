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

package errors

import (
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

const ErrNotTrainerError = "error"

type Error struct {
	Kind        string
	Message     string
	Metadata    interface{} // won't be printed
	NoTelemetry bool
	NoPrint     bool
	Cause       error
	stack       *stack
}

func (trainerError *Error) Error() string {
	return trainerError.Message
}

func (trainerError *Error) Unwrap() error {
	return trainerError.Cause
}

func (trainerError *Error) StackTrace() pkgerrors.StackTrace {
	if trainerError.stack == nil {
		return nil
	}
	stackTrace := make([]pkgerrors.Frame, len(*trainerError.stack))
	for i := 0; i < len(stackTrace); i++ {
		stackTrace[i] = pkgerrors.Frame((*trainerError.stack)[i])
	}
	return stackTrace
}

func New(strs ...string) error {
	strs = removeEmptyStrs(strs)
	return WithStack(&Error{
		Kind:    ErrNotTrainerError,
		Message: strings.Join(strs, ": "),
	})
}

func WithStack(err error) error {
	if err == nil {
		return nil
	}

	trainerError := getTrainerError(err)

	if trainerError == nil {
		trainerError = &Error{
			Kind:    ErrNotTrainerError,
			Message: strings.TrimSpace(err.Error()),
			Cause:   err,
		}
	}

	if trainerError.stack == nil {
		trainerError.stack = callers()
	}

	return trainerError
}

func Wrap(err error, strs ...string) error {
	if err == nil {
		return nil
	}

	trainerError := WithStack(err).(*Error)

	strs = removeEmptyStrs(strs)
	strs = append(strs, trainerError.Message)
	trainerError.Message = strings.Join(strs, ": ")

	return trainerError
}

// adds to the end of the error message (without adding any whitespace or punctuation)
func Append(err error, str string) error {
	if err == nil {
		return nil
	}

	trainerError := WithStack(err).(*Error)
	trainerError.Message = trainerError.Message + str
	return trainerError
}

func getTrainerError(err error) *Error {
	if trainerError, ok := err.(*Error); ok {
		return trainerError
	}
	return nil
}

func GetKind(err error) string {
	if trainerError, ok := err.(*Error); ok {
		return trainerError.Kind
	}
	return ErrNotTrainerError
}

func GetMetadata(err error) interface{} {
	if trainerError, ok := err.(*Error); ok {
		return trainerError.Metadata
	}
	return nil
}

func IsNoTelemetry(err error) bool {
	if trainerError, ok := err.(*Error); ok {
		return trainerError.NoTelemetry
	}
	return false
}

func SetNoTelemetry(err error) error {
	trainerError := WithStack(err).(*Error)
	trainerError.NoTelemetry = true
	return trainerError
}

func IsNoPrint(err error) bool {
	if trainerError, ok := err.(*Error); ok {
		return trainerError.NoPrint
	}
	return false
}

func SetNoPrint(err error) error {
	trainerError := WithStack(err).(*Error)
	trainerError.NoPrint = true
	return trainerError
}

// Returns nil if no cause
func Cause(err error) error {
	if trainerError, ok := err.(*Error); ok {
		return trainerError.Cause
	}
	return nil
}

func CauseOrSelf(err error) error {
	if trainerError, ok := err.(*Error); ok {
		cause := trainerError.Cause
		if cause != nil {
			return cause
		}
	}
	return err
}

func PrintStacktrace(err error) {
	fmt.Printf("%+v\n", err)
}

func (trainerError *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			io.WriteString(s, trainerError.Message)
			if trainerError.stack != nil {
				trainerError.stack.Format(s, verb)
			}
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, trainerError.Message)
	case 'q':
		fmt.Fprintf(s, "%q", trainerError.Message)
	}
}

func CastRecoverError(errInterface interface{}, strs ...string) error {
	var err error
	var ok bool
	err, ok = errInterface.(error)
	if !ok {
		err = &Error{
			Kind:    ErrNotTrainerError,
			Message: fmt.Sprint(errInterface),
		}
	}
	return Wrap(err, strs...)
}

func removeEmptyStrs(strs []string) []string {
	var cleanStrs []string
	for _, str := range strs {
		if str != "" {
			cleanStrs = append(cleanStrs, str)
		}
	}
	return cleanStrs
}
