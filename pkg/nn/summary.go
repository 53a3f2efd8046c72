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
	"fmt"
	"strings"

	s "github.com/cortexlabs/trainer/pkg/lib/strings"
	"github.com/xlab/treeprint"
)

// Summary renders params grouped by layer, with shapes and counts
func Summary(title string, params *Params) string {
	tree := treeprint.New()
	branches := map[string]treeprint.Tree{}

	for _, param := range params.List() {
		layer := param.Layer()
		branch, ok := branches[layer]
		if !ok {
			branch = tree.AddBranch(layer)
			branches[layer] = branch
		}
		rows, cols := param.Value.Dims()
		variable := strings.TrimPrefix(param.Name, layer+"/")
		branch.AddMetaNode(fmt.Sprintf("%d x %d", rows, cols), variable)
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	treeStr := tree.String()
	b.WriteString(treeStr[2:])
	b.WriteString(fmt.Sprintf("total params: %s\n", s.Int(params.NumValues())))
	return b.String()
}
