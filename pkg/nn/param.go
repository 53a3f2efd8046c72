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

package nn

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Param is a named trainable variable; names take the form "<layer>/<variable>"
type Param struct {
	Name  string
	Value *mat.Dense
}

func NewParam(layer string, variable string, rows int, cols int) *Param {
	return &Param{
		Name:  VariableName(layer, variable),
		Value: mat.NewDense(rows, cols, nil),
	}
}

func VariableName(layer string, variable string) string {
	return layer + "/" + variable
}

// Layer returns the layer part of the param name
func (p *Param) Layer() string {
	if idx := strings.Index(p.Name, "/"); idx >= 0 {
		return p.Name[:idx]
	}
	return p.Name
}

func (p *Param) Size() int {
	r, c := p.Value.Dims()
	return r * c
}

// Params is an ordered set of params with lookup by name
type Params struct {
	list  []*Param
	index map[string]int
}

func NewParams(params ...*Param) (*Params, error) {
	p := &Params{
		index: make(map[string]int, len(params)),
	}
	if err := p.Add(params...); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Params) Add(params ...*Param) error {
	for _, param := range params {
		if _, ok := p.index[param.Name]; ok {
			return ErrorDuplicateParam(param.Name)
		}
		p.index[param.Name] = len(p.list)
		p.list = append(p.list, param)
	}
	return nil
}

func (p *Params) Get(name string) (*Param, bool) {
	idx, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.list[idx], true
}

// Layer returns the params of a layer, in insertion order
func (p *Params) Layer(layer string) []*Param {
	var params []*Param
	for _, param := range p.list {
		if param.Layer() == layer {
			params = append(params, param)
		}
	}
	return params
}

func (p *Params) List() []*Param {
	return p.list
}

func (p *Params) Len() int {
	return len(p.list)
}

func (p *Params) Names() []string {
	names := make([]string, len(p.list))
	for i, param := range p.list {
		names[i] = param.Name
	}
	return names
}

// NumValues is the total number of scalars across all params
func (p *Params) NumValues() int {
	total := 0
	for _, param := range p.list {
		total += param.Size()
	}
	return total
}

// Snapshot copies every param value, keyed by name
func (p *Params) Snapshot() map[string]*mat.Dense {
	snapshot := make(map[string]*mat.Dense, len(p.list))
	for _, param := range p.list {
		snapshot[param.Name] = mat.DenseCopyOf(param.Value)
	}
	return snapshot
}

// Subset returns the params whose name passes keep, sharing the same values
func (p *Params) Subset(keep func(name string) bool) *Params {
	subset := &Params{index: map[string]int{}}
	for _, param := range p.list {
		if keep(param.Name) {
			subset.index[param.Name] = len(subset.list)
			subset.list = append(subset.list, param)
		}
	}
	return subset
}

// Grads holds one gradient buffer per param name
type Grads map[string]*mat.Dense

func (p *Params) NewGrads() Grads {
	grads := make(Grads, len(p.list))
	for _, param := range p.list {
		r, c := param.Value.Dims()
		grads[param.Name] = mat.NewDense(r, c, nil)
	}
	return grads
}

func (g Grads) Zero() {
	for _, grad := range g {
		grad.Zero()
	}
}

// Add accumulates other into g; names missing from g are ignored
func (g Grads) Add(other Grads) {
	for name, grad := range other {
		if dst, ok := g[name]; ok {
			dst.Add(dst, grad)
		}
	}
}

func (g Grads) Scale(f float64) {
	for _, grad := range g {
		grad.Scale(f, grad)
	}
}

func (g Grads) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Assign copies values into the params of the same name; unless partial, every param must be present
func (p *Params) Assign(values map[string]*mat.Dense, partial bool) error {
	for _, param := range p.list {
		value, ok := values[param.Name]
		if !ok {
			if partial {
				continue
			}
			return ErrorParamNotFound(param.Name)
		}
		rows, cols := param.Value.Dims()
		valueRows, valueCols := value.Dims()
		if rows != valueRows || cols != valueCols {
			return ErrorShapeMismatch(param.Name, rows, cols, valueRows, valueCols)
		}
		param.Value.Copy(value)
	}
	return nil
}
