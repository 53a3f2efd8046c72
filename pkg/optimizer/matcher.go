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

package optimizer

import (
	"strings"

	"github.com/gobwas/glob"
)

// Matcher selects params by name. Patterns without wildcards match anywhere in the name.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		expr := pattern
		if !strings.ContainsAny(pattern, "*?[{") {
			expr = "*" + pattern + "*"
		}
		g, err := glob.Compile(expr)
		if err != nil {
			return nil, ErrorInvalidPattern(pattern, err)
		}
		m.patterns = append(m.patterns, pattern)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *Matcher) Match(name string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}
