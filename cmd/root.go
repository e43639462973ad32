/*
Copyright © 2025 korvits

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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	quiet   bool
	debug   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "go-event-rule-engine",
	Short: "Match detection rules against structured event logs",
	Long: `Compiles a corpus of yaml detection rules into selection trees and
evaluates structured event records against them. Rules express field
conditions as nested mappings (conjunction) and sequences (alternatives),
values are matched with full-string regular expressions by default.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.go-event-rule-engine.yaml)")

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet output. Suppress warnings and other stuff. Cannot be used together with --debug and --quiet will take precedence.")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Debug mode. Enable trace logging. Cannot be used together with --quiet.")

	rootCmd.PersistentFlags().StringSlice("rules-dir", []string{},
		"Directories that contain detection rules.")
	viper.BindPFlag("rules.dir", rootCmd.PersistentFlags().Lookup("rules-dir"))

	rootCmd.PersistentFlags().String("field-aliases", "",
		"Yaml file mapping logical rule field names to dotted event paths.")
	viper.BindPFlag("rules.field.aliases", rootCmd.PersistentFlags().Lookup("field-aliases"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".go-event-rule-engine" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".go-event-rule-engine")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func initLogging() {
	log.SetFormatter(&log.TextFormatter{
		DisableColors: false,
		FullTimestamp: true,
	})
	if quiet {
		log.SetLevel(log.ErrorLevel)
	} else if debug {
		log.SetLevel(log.TraceLevel)
	}
}
