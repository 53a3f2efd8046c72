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
	"os"
	"path/filepath"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/exit"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var (
	_localDir      string
	_installIDPath string
)

func init() {
	homeDir, err := homedir.Dir()
	if err != nil {
		exit.Error(err)
	}

	_localDir = filepath.Join(homeDir, ".trainer")
	if err := os.MkdirAll(_localDir, os.ModePerm); err != nil {
		exit.Error(err)
	}
	_installIDPath = filepath.Join(_localDir, "install-id")

	cobra.EnablePrefixMatching = true
}

var _rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "fine-tune and pretrain text encoders",
	Long:  `Fine-tune a text classifier, pretrain an encoder with MLM, LM or seq2seq objectives, and build pretraining corpora`,
}

var _flagConfigPath string

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&_flagConfigPath, "config", "c", "", "path to the YAML configuration file")
	cmd.MarkFlagRequired("config")
}

func Execute() {
	defer exit.RecoverAndExit()

	cobra.EnableCommandSorting = false

	_rootCmd.AddCommand(_classifyCmd)
	_rootCmd.AddCommand(_pretrainCmd)
	_rootCmd.AddCommand(_buildCorpusCmd)
	_rootCmd.AddCommand(_summaryCmd)

	_rootCmd.AddCommand(_completionCmd)
	_rootCmd.AddCommand(_versionCmd)

	if err := _rootCmd.Execute(); err != nil {
		// cobra has already printed it
		exit.Error(errors.SetNoPrint(errors.SetNoTelemetry(errors.WithStack(err))))
	}
	exit.Ok()
}
