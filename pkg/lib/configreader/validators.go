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

package configreader

import (
	"path/filepath"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/files"
)

type PathValidation struct {
	Required bool
	Default  string
	BaseDir  string
}

// GetPathValidation accepts local paths (~ is expanded, relative paths resolve against BaseDir)
// and bucket URIs (s3://, gs://, file://), which are returned unchanged
func GetPathValidation(v *PathValidation) *StringValidation {
	validator := func(val string) (string, error) {
		if val == "" || IsBucketURI(val) {
			return val, nil
		}
		expanded, err := files.EscapeTilde(val)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(expanded) && v.BaseDir != "" {
			expanded = filepath.Join(v.BaseDir, expanded)
		}
		return filepath.Clean(expanded), nil
	}

	return &StringValidation{
		Required:  v.Required,
		Default:   v.Default,
		Validator: validator,
	}
}

func GetPathListValidation(v *PathValidation, minLength int) *StringListValidation {
	pathValidation := GetPathValidation(v)
	validator := func(vals []string) ([]string, error) {
		out := make([]string, len(vals))
		for i, val := range vals {
			expanded, err := pathValidation.Validator(val)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	}

	return &StringListValidation{
		Required:  v.Required,
		MinLength: minLength,
		Validator: validator,
	}
}

func IsBucketURI(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "s3://") || strings.HasPrefix(lower, "gs://") || strings.HasPrefix(lower, "file://")
}
