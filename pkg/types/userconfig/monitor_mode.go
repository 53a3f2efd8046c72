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

package userconfig

// MonitorMode decides whether a monitored metric improves by going down or up
type MonitorMode int

const (
	UnknownMonitorMode MonitorMode = iota
	AutoMonitorMode
	MinMonitorMode
	MaxMonitorMode
)

var _monitorModes = []string{
	"unknown",
	"auto",
	"min",
	"max",
}

func MonitorModeFromString(s string) MonitorMode {
	for i := 0; i < len(_monitorModes); i++ {
		if s == _monitorModes[i] {
			return MonitorMode(i)
		}
	}
	return UnknownMonitorMode
}

func MonitorModeStrings() []string {
	return _monitorModes[1:]
}

func (t MonitorMode) String() string {
	return _monitorModes[t]
}

// MarshalText satisfies TextMarshaler
func (t MonitorMode) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText satisfies TextUnmarshaler
func (t *MonitorMode) UnmarshalText(text []byte) error {
	*t = MonitorModeFromString(string(text))
	return nil
}
