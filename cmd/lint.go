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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	engine "github.com/korvits/go-event-rule-engine"
)

type counts struct {
	ok, fail, unsupported int
}

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Compile and validate a ruleset for testing",
	Long:  `Recursively compiles a detection ruleset from filesystem and reports every matcher binding problem per rule, without evaluating any events.`,
	Run:   lint,
}

func lint(cmd *cobra.Command, args []string) {
	files, err := engine.NewRuleFileList(viper.GetStringSlice("rules.dir"))
	if err != nil {
		logrus.Fatal(err)
	}
	for _, f := range files {
		logrus.Info(f)
	}
	logrus.Info("Parsing rule yaml files")
	rules, err := engine.NewRuleList(files, true)
	if err != nil {
		switch err.(type) {
		case engine.ErrBulkParseYaml:
			logrus.Error(err)
		default:
			logrus.Fatal(err)
		}
	}
	logrus.Infof("Got %d rules from yaml", len(rules))

	var fields *engine.FieldAliases
	if path := viper.GetString("rules.field.aliases"); path != "" {
		if fields, err = engine.LoadFieldAliases(path); err != nil {
			logrus.Fatal(err)
		}
	}

	logrus.Info("Compiling and validating selection trees")
	c := &counts{}
loop:
	for _, raw := range rules {
		logrus.Trace(raw.Path)
		if raw.Multipart {
			c.unsupported++
			continue loop
		}
		tree := engine.NewTree(raw, fields)
		if errs := tree.Validate(); len(errs) > 0 {
			c.fail++
			// all binding problems for the rule at once, never just the first
			for _, err := range errs {
				logrus.Errorf("%s: %s", raw.Path, err)
			}
			continue loop
		}
		logrus.Infof("%s: ok", raw.Path)
		c.ok++
	}
	logrus.Infof("OK: %d; FAIL: %d; UNSUPPORTED: %d", c.ok, c.fail, c.unsupported)
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
