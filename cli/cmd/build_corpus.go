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
	"fmt"

	"github.com/cortexlabs/trainer/pkg/corpus"
	"github.com/cortexlabs/trainer/pkg/lib/exit"
	s "github.com/cortexlabs/trainer/pkg/lib/strings"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/spf13/cobra"
)

func init() {
	addConfigFlag(_buildCorpusCmd)
}

var _buildCorpusCmd = &cobra.Command{
	Use:   "build-corpus",
	Short: "turn raw text into pretraining record shards",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := trainconfig.ReadCorpusConfig(_flagConfigPath)
		if err != nil {
			exit.Error(err)
		}

		sess := startSession("build-corpus", cfg.Runtime)
		stats, err := corpus.Build(sess.ctx, cfg)
		if err != nil {
			sess.close(err, nil)
			exit.Error(err)
		}
		sess.close(nil, map[string]interface{}{"objective": cfg.Objective.String(), "records": stats.Records})
		fmt.Printf("wrote %s records from %s documents into %s shards under %s\n", s.Int(stats.Records), s.Int(stats.Documents), s.Int(len(stats.Shards)), cfg.OutputDir)
	},
}
