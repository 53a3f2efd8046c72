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

	"github.com/cortexlabs/trainer/pkg/classifier"
	"github.com/cortexlabs/trainer/pkg/lib/console"
	"github.com/cortexlabs/trainer/pkg/lib/exit"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/spf13/cobra"
)

var _flagEvaluateOnly bool

func init() {
	addConfigFlag(_classifyCmd)
	_classifyCmd.Flags().BoolVar(&_flagEvaluateOnly, "evaluate", false, "skip training and evaluate the best saved weights on the validation set")
}

var _classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "fine-tune a text classifier",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := trainconfig.ReadClassifierConfig(_flagConfigPath)
		if err != nil {
			exit.Error(err)
		}

		s := startSession("classify", cfg.Runtime)

		if _flagEvaluateOnly {
			accuracy, err := classifier.Evaluate(s.ctx, cfg)
			s.close(err, map[string]interface{}{"accuracy": accuracy.Float()})
			if err != nil {
				exit.Error(err)
			}
			fmt.Println(console.Bold("validation accuracy: ") + accuracy.String())
			return
		}

		result, err := classifier.Run(s.ctx, cfg, s.reporter)
		if err != nil {
			s.close(err, nil)
			exit.Error(err)
		}
		s.close(nil, map[string]interface{}{"epochs": result.Epochs, "best_accuracy": result.BestAccuracy})
		printHistory(result.History)
		fmt.Printf("%s %.5f after %d epochs (%s)\n", console.Bold("best validation accuracy:"), result.BestAccuracy, result.Epochs, result.WeightsPath)
	},
}
