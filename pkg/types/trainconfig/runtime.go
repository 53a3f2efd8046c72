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

package trainconfig

import (
	"path/filepath"

	cr "github.com/cortexlabs/trainer/pkg/lib/configreader"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/pointer"
)

// Runtime holds the process-level settings shared by every command
type Runtime struct {
	Replicas            int  `json:"replicas" yaml:"replicas"`
	Seed                int  `json:"seed" yaml:"seed"`
	MetricsPort         int  `json:"metrics_port" yaml:"metrics_port"`
	ResourceLogInterval int  `json:"resource_log_interval" yaml:"resource_log_interval"`
	Telemetry           bool `json:"telemetry" yaml:"telemetry"`
}

func runtimeFieldValidations() []*cr.StructFieldValidation {
	return []*cr.StructFieldValidation{
		{
			StructField: "Replicas",
			IntValidation: &cr.IntValidation{
				Default:     1,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "Seed",
			IntValidation: &cr.IntValidation{
				Default: 0,
			},
		},
		{
			StructField: "MetricsPort",
			IntValidation: &cr.IntValidation{
				Default:              0,
				GreaterThanOrEqualTo: pointer.Int(0),
				LessThanOrEqualTo:    pointer.Int(65535),
			},
		},
		{
			StructField: "ResourceLogInterval",
			IntValidation: &cr.IntValidation{
				Default:     60,
				GreaterThan: pointer.Int(0),
			},
		},
		{
			StructField: "Telemetry",
			BoolValidation: &cr.BoolValidation{
				Default: false,
			},
		},
	}
}

func requiredPathField(structField string, baseDir string) *cr.StructFieldValidation {
	return &cr.StructFieldValidation{
		StructField: structField,
		StringValidation: cr.GetPathValidation(&cr.PathValidation{
			Required: true,
			BaseDir:  baseDir,
		}),
	}
}

func optionalPathField(structField string, defaultPath string, baseDir string) *cr.StructFieldValidation {
	return &cr.StructFieldValidation{
		StructField: structField,
		StringValidation: cr.GetPathValidation(&cr.PathValidation{
			Default: defaultPath,
			BaseDir: baseDir,
		}),
	}
}

// readConfig parses a YAML file into dest; relative paths resolve against the file's directory
func readConfig(dest interface{}, configPath string, validationFn func(baseDir string) *cr.StructValidation) error {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return errors.Wrap(err, configPath)
	}

	errs := cr.ParseYAMLFile(dest, validationFn(filepath.Dir(absPath)), absPath)
	if errors.HasError(errs) {
		return errors.FirstError(errs...)
	}
	return nil
}
