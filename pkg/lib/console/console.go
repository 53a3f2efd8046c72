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

package console

import (
	"github.com/fatih/color"
)

var _bold = color.New(color.Bold).SprintFunc()
var _green = color.New(color.FgGreen).SprintFunc()
var _yellow = color.New(color.FgYellow).SprintFunc()
var _red = color.New(color.FgRed).SprintFunc()

func Bold(a ...interface{}) string {
	return _bold(a...)
}

func Green(a ...interface{}) string {
	return _green(a...)
}

func Yellow(a ...interface{}) string {
	return _yellow(a...)
}

func Red(a ...interface{}) string {
	return _red(a...)
}

// DisableColor strips escape codes from all output (e.g. when stdout is not a terminal)
func DisableColor() {
	color.NoColor = true
}
