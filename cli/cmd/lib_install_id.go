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
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/files"
	"github.com/cortexlabs/trainer/pkg/lib/logging"
	"github.com/google/uuid"
)

var _installID string

// installID identifies this machine in run events. It is generated on first use and kept in
// ~/.trainer/install-id.
func installID() string {
	if _installID == "" {
		_installID = loadOrCreateInstallID(_installIDPath)
	}
	return _installID
}

// loadOrCreateInstallID returns the id stored at path, replacing a missing or malformed one
func loadOrCreateInstallID(path string) string {
	if idBytes, err := files.ReadFileBytes(path); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(idBytes))); err == nil {
			return id.String()
		}
	}

	id := uuid.New().String()
	if err := files.WriteFile([]byte(id+"\n"), path); err != nil {
		logging.GetLogger().Debugw("unable to save the install id", "path", path, "error", err)
	}
	return id
}
