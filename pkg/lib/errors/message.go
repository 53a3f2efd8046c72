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
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws/awserr"
)

func PrintError(err error, strs ...string) {
	os.Stderr.WriteString(ErrorStr(err, strs...) + "\n")
	// PrintStacktrace(err)
}

func ErrorStr(err error, strs ...string) string {
	wrappedErr := Wrap(err, strs...)
	return "error: " + strings.TrimSpace(Message(wrappedErr))
}

func Message(err error, strs ...string) string {
	wrappedErr := Wrap(err, strs...)
	errStr := wrappedErr.Error()
	return strings.TrimSpace(errStr)
}

func MessageFirstLine(err error, strs ...string) string {
	wrappedErr := Wrap(err, strs...)

	var errStr string
	if _, ok := CauseOrSelf(wrappedErr).(awserr.Error); ok {
		errStr = strings.Split(strings.TrimSpace(wrappedErr.Error()), "\n")[0]
	} else {
		errStr = wrappedErr.Error()
	}

	return strings.TrimSpace(errStr)
}

func RecoverAndExit(strs ...string) {
	if errInterface := recover(); errInterface != nil {
		err := CastRecoverError(errInterface, strs...)
		PrintError(err)
		os.Exit(1)
	}
}

func Panic(items ...interface{}) {
	if len(items) == 0 {
		items = append(items, "empty panic")
	}
	panic(mergeErrItems(items...))
}

func mergeErrItems(items ...interface{}) error {
	var err error
	switch casted := items[0].(type) {
	case error:
		err = casted
	case string:
		err = New(casted)
	default:
		err = New(fmt.Sprint(casted))
	}

	for _, item := range items[1:] {
		switch casted := item.(type) {
		case error:
			err = Wrap(err, casted.Error())
		case string:
			err = Wrap(err, casted)
		default:
			err = Wrap(err, fmt.Sprint(casted))
		}
	}

	return err
}
