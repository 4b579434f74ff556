// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint [flags] definition_file(s)",
	Short: "Statically check a set of directives.",
	Long: `Statically check a set of directives without evaluating them, reporting syntax
	errors, malformed sequences or properties, and references to undeclared signals.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		config := loadConfig(cmd)
		defs := readDefinitionFiles(args...)
		//
		if !checkDirectives(defs, config) {
			os.Exit(1)
		}
		//
		for _, d := range defs.Directives {
			fmt.Printf("%s: %s (depth %d)\n", d.Name, d.String(), d.Depth())
		}
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
	addConfigFlags(lintCmd)
}
