/*
Copyright (c) YugabyteDB, Inc.

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
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yugabyte/chameleon/src/config"
	"github.com/yugabyte/chameleon/src/utils"
)

var (
	cfgFile  string
	stateDir string
)

var rootCmd = &cobra.Command{
	Use:   "chameleon",
	Short: "Deterministic pseudonymization of names, emails and identifiers in CSV and Excel files",
	Long: `chameleon replaces personal data in tabular files with synthetic but consistent values.
The same input value always maps to the same output for a given salt, and a person's
first name, last name and email address map to the same synthetic identity.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		overrides, err := initConfig(cmd)
		if err != nil {
			utils.ErrExit("settings: %v", err)
		}
		err = config.ValidateLogLevel()
		if err != nil {
			utils.ErrExit("%v", err)
		}
		InitLogging(stateDir, commandName(cmd))
		for _, o := range overrides {
			log.Infof("flag --%s set from settings key %q", o.FlagName, o.ConfigKey)
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "settings", "",
		"settings file (default $"+SETTINGS_FILE_ENV_VAR+" or ~/"+DEFAULT_SETTINGS_NAME+".yaml)")
	rootCmd.PersistentFlags().StringVarP(&config.LogLevel, "log-level", "l", config.INFO,
		"log level for chameleon. Accepted values: (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().BoolVarP(&utils.DoNotPrompt, "yes", "y", false,
		"assume answer as yes for all questions (default false)")
}

func registerStateDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&stateDir, "state-dir", "",
		"directory keeping run history, logs, reports and (with --reuse-salt) the salt")
}

// commandName is the command path without the root, e.g. "runs list".
func commandName(cmd *cobra.Command) string {
	return strings.TrimSpace(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()))
}
