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

	"github.com/cortexlabs/trainer/pkg/lib/console"
	"github.com/cortexlabs/trainer/pkg/lib/exit"
	"github.com/cortexlabs/trainer/pkg/pretrain"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/spf13/cobra"
)

func init() {
	addConfigFlag(_pretrainCmd)
}

var _pretrainCmd = &cobra.Command{
	Use:   "pretrain",
	Short: "pretrain an encoder on corpus shards",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := trainconfig.ReadPretrainConfig(_flagConfigPath)
		if err != nil {
			exit.Error(err)
		}

		s := startSession("pretrain", cfg.Runtime)
		result, err := pretrain.Run(s.ctx, cfg, s.reporter)
		if err != nil {
			s.close(err, nil)
			exit.Error(err)
		}
		s.close(nil, map[string]interface{}{
			"objective": cfg.Objective.String(),
			"epochs":    result.Epochs,
			"best_loss": result.BestLoss,
			"stopped":   result.Stopped,
		})

		printHistory(result.History)
		status := "finished"
		if result.Stopped {
			status = console.Yellow("stopped early")
		}
		fmt.Printf("%s after %d epochs (%d updates), best loss %.5f, saved to %s\n", status, result.Epochs, result.Updates, result.BestLoss, cfg.ModelSavedPath)
	},
}
