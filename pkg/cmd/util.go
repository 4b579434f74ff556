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
	"path"
	"strings"

	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/engine"
	"github.com/consensys/go-sva/pkg/lang"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/consensys/go-sva/pkg/trace/json"
	"github.com/consensys/go-sva/pkg/trace/yaml"
	"github.com/consensys/go-sva/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// Get an expected unsigned integer, or panic if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// Get an expected string, or panic if an error arises.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// Register the flags which configure the engine.  These override any values
// given in a configuration file.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "read engine configuration from a YAML file")
	cmd.Flags().Uint("max-attempts", 0, "maximum outstanding attempts per sequence (0 is unbounded)")
	cmd.Flags().Uint("history", 0, "cycles of history available to expressions (0 is inferred)")
	cmd.Flags().String("eventually", "inconclusive", "treatment of pending strong obligations at end of trace")
	cmd.Flags().String("disable", "abort", "treatment of attempts in flight when disabled (abort or freeze)")
	cmd.Flags().Bool("streaming", false, "report verdicts as soon as they are reached")
	cmd.Flags().Bool("sequential", false, "evaluate directives sequentially")
	cmd.Flags().Uint("retain", 0, "minimum cycles of history retained for reporting")
}

// Load the engine configuration, starting from the configuration file (if
// given) and then applying any flags which were explicitly set.
func loadConfig(cmd *cobra.Command) engine.Config {
	var (
		config = engine.DefaultConfig()
		err    error
		flags  = cmd.Flags()
	)
	//
	if filename := getString(cmd, "config"); filename != "" {
		if config, err = engine.LoadConfig(filename); err != nil {
			fmt.Printf("%s: %s\n", filename, err)
			os.Exit(2)
		}
	}
	//
	if flags.Changed("max-attempts") {
		config.MaxOutstandingAttempts = getUint(cmd, "max-attempts")
	}
	//
	if flags.Changed("history") {
		config.HistoryDepth = getUint(cmd, "history")
	}
	//
	if flags.Changed("eventually") {
		config.FiniteTraceEventuallyPolicy = getString(cmd, "eventually")
	}
	//
	if flags.Changed("disable") {
		config.DisablePolicy = getString(cmd, "disable")
	}
	//
	if flags.Changed("streaming") {
		config.Streaming = getFlag(cmd, "streaming")
	}
	//
	if flags.Changed("sequential") {
		config.Parallel = !getFlag(cmd, "sequential")
	}
	//
	if flags.Changed("retain") {
		config.MaxRetainedCycles = getUint(cmd, "retain")
	}
	// Sanity check
	if _, err = config.Options(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	log.Debugf("configuration %+v", config)
	//
	return config
}

// Read and parse one or more definition files, reporting any syntax errors and
// exiting on failure.
func readDefinitionFiles(filenames ...string) *lang.Definitions {
	srcfiles, err := source.ReadFiles(filenames...)
	// Handle errors
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	defs, errs := lang.ParseSourceFiles(srcfiles)
	//
	if len(errs) != 0 {
		printSyntaxErrors(errs)
		os.Exit(1)
	}
	//
	return defs
}

// Check that every directive can be evaluated under a given configuration,
// reporting errors against the directive's declaration.  This returns false
// if any directive is rejected.
func checkDirectives(defs *lang.Definitions, config engine.Config) bool {
	var ok = true
	//
	options, err := config.Options()
	if err != nil {
		fmt.Println(err)
		return false
	}
	//
	options.Declared = defs.Declared()
	//
	for _, d := range defs.Directives {
		if _, err := directive.NewRunner(d, options); err != nil {
			if serr := defs.SyntaxError(d, err.Error()); serr != nil {
				printSyntaxError(serr)
			} else {
				fmt.Printf("%s: %s\n", d.Name, err)
			}
			//
			ok = false
		}
	}
	//
	return ok
}

// Read a finite trace file, choosing the format based on its extension.
func readTraceFile(filename string) *trace.ArrayTrace {
	var tr *trace.ArrayTrace
	//
	bytes, err := os.ReadFile(filename)
	if err == nil {
		// Check file extension
		switch ext := path.Ext(filename); ext {
		case ".json":
			tr, err = json.FromBytes(bytes)
		case ".yaml", ".yml":
			tr, err = yaml.FromBytes(bytes)
		default:
			err = fmt.Errorf("unknown trace file format: %s", ext)
		}
	}
	// Handle error
	if err != nil {
		fmt.Printf("%s: %s\n", filename, err)
		os.Exit(2)
	}
	//
	log.Debugf("read trace %s with %d cycle(s) and %d signal(s)", filename, tr.Height(), len(tr.Signals()))
	//
	return tr
}

func printSyntaxErrors(errs []source.SyntaxError) {
	for i := range errs {
		printSyntaxError(&errs[i])
	}
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	span := err.Span()
	line := err.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := min(line.Length()-lineOffset, span.Length())
	// Print error + line number
	fmt.Printf("%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
	// Print separator line
	fmt.Println()
	// Print line
	fmt.Println(line.String())
	// Print indent (todo: account for tabs)
	fmt.Print(strings.Repeat(" ", lineOffset))
	// Print highlight
	fmt.Println(strings.Repeat("^", length))
}
