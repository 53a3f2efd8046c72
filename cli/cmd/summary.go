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
	"context"
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/exit"
	"github.com/cortexlabs/trainer/pkg/model"
	"github.com/cortexlabs/trainer/pkg/nn"
	"github.com/cortexlabs/trainer/pkg/objectives"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
	"github.com/spf13/cobra"
)

var (
	_flagModelConfigPath string
	_flagObjective       string
	_flagNumClasses      int
)

func init() {
	_summaryCmd.Flags().StringVar(&_flagModelConfigPath, "model-config", "", "path to the model config JSON")
	_summaryCmd.Flags().StringVar(&_flagObjective, "objective", userconfig.RoBERTaObjective.String(), "pretraining objective, or \"classifier\"")
	_summaryCmd.Flags().IntVar(&_flagNumClasses, "num-classes", 16, "number of classes when summarizing the classifier")
	_summaryCmd.MarkFlagRequired("model-config")
}

var _summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "print the parameters of a model",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		modelConfig, err := model.LoadConfig(context.Background(), _flagModelConfigPath)
		if err != nil {
			exit.Error(err)
		}

		var mdl model.Model
		if _flagObjective == "classifier" {
			mdl, err = model.BuildClassifier(modelConfig, _flagNumClasses, 0)
		} else {
			var spec *objectives.Spec
			spec, err = objectives.For(userconfig.ObjectiveFromString(_flagObjective))
			if err == nil {
				mdl, err = model.BuildPretraining(modelConfig, spec, 0)
			}
		}
		if err != nil {
			exit.Error(err)
		}

		fmt.Print(nn.Summary(_flagObjective, mdl.Params()))
		fmt.Printf("outputs: %v\n", mdl.OutputNames())
	},
}
