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
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/consensys/go-sva/pkg/cmd/check"
	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/engine"
	"github.com/consensys/go-sva/pkg/lang"
	"github.com/consensys/go-sva/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] definition_file(s) trace_file",
	Short: "Check a given trace against a set of directives.",
	Long: `Check a given trace against a set of assertions, assumptions and cover directives.
	Traces can be given as columnar JSON (.json), YAML (.yaml) or JSON lines (.jsonl),
	where the latter is read incrementally.  Exits with status 1 if any directive fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		var cfg checkConfig
		//
		if len(args) < 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		cfg.report = getFlag(cmd, "report")
		cfg.ansiEscapes = getFlag(cmd, "ansi-escapes") && termio.IsTerminal()
		cfg.maxCellWidth = getUint(cmd, "max-width")
		config := loadConfig(cmd)
		// Parse definitions
		defs := readDefinitionFiles(args[:len(args)-1]...)
		//
		if !checkDirectives(defs, config) {
			os.Exit(2)
		}
		//
		eng, err := engine.New(config, defs.Directives, defs.Declared())
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		// Go!
		verdicts := checkTraceFile(eng, args[len(args)-1])
		//
		if !reportVerdicts(defs, verdicts, cfg) {
			os.Exit(1)
		}
	},
}

// check config encapsulates certain parameters to be used when checking
// traces.
type checkConfig struct {
	// Specifies whether or not to report the trace around each violation or
	// witness.
	report bool
	// Enable ANSI escapes
	ansiEscapes bool
	// Maximum width of any cell when reporting
	maxCellWidth uint
}

// Check a trace file, where open-ended traces are evaluated incrementally.
func checkTraceFile(eng *engine.Engine, filename string) []directive.Verdict {
	stream := newVerdictStream()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	//
	defer cancel()
	//
	if path.Ext(filename) == ".jsonl" {
		return checkTraceStream(ctx, eng, filename, stream)
	}
	//
	verdicts, err := eng.Run(ctx, readTraceFile(filename), stream.sink)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return verdicts
}

// Check an open-ended trace in JSON lines notation, stopping early once every
// directive is resolved.
func checkTraceStream(ctx context.Context, eng *engine.Engine, filename string,
	stream *verdictStream) []directive.Verdict {
	file, err := os.Open(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	defer file.Close()
	//
	session, err := eng.NewSession(stream.sink)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	if err = session.Consume(ctx, file); err != nil {
		fmt.Printf("%s: %s\n", filename, err)
		os.Exit(2)
	}
	//
	return session.Close()
}

// verdictStream reports each verdict as soon as it is reached.
type verdictStream struct {
	reported map[string]bool
}

func newVerdictStream() *verdictStream {
	return &verdictStream{make(map[string]bool)}
}

func (p *verdictStream) sink(cycle uint, v directive.Verdict) {
	if v.Resolved() && !p.reported[v.Directive] {
		p.reported[v.Directive] = true
		fmt.Printf("[%d] %s\n", cycle, v.String())
	}
}

// Print a summary table of verdicts and, if requested, the trace around each
// violation or witness.  This returns false if any directive failed.
func reportVerdicts(defs *lang.Definitions, verdicts []directive.Verdict, cfg checkConfig) bool {
	var (
		ok = true
		tp = termio.NewTablePrinter(5, uint(1+len(verdicts)))
	)
	//
	tp.SetRow(0, "Directive", "Kind", "Verdict", "Cycle", "Start")
	//
	for i, v := range verdicts {
		var (
			row  = uint(i + 1)
			kind = defs.Directive(v.Directive).Kind
		)
		//
		tp.SetRow(row, v.Directive, kind.String(), v.Kind.String(), fmt.Sprintf("%d", v.Cycle), fmt.Sprintf("%d", v.Start))
		tp.SetEscape(2, row, termio.BoldAnsiEscape().FgColour(verdictColour(v.Kind)))
		//
		ok = ok && !v.Kind.Failed()
	}
	//
	tp.AnsiEscapes(cfg.ansiEscapes)
	tp.Print(os.Stdout)
	//
	if cfg.report {
		for _, v := range verdicts {
			reportVerdict(defs.Directive(v.Directive), v, cfg)
		}
	}
	//
	log.Debugf("checked %d directive(s)", len(verdicts))
	//
	return ok
}

// Print the trace around a violation or witness.
func reportVerdict(d *directive.Directive, v directive.Verdict, cfg checkConfig) {
	if len(v.Trace) == 0 || (!v.Kind.Failed() && v.Kind != directive.COVERED) {
		return
	}
	//
	fmt.Println()
	fmt.Println(v.String())
	fmt.Println(d.String())
	printer := check.NewPrinter().AnsiEscapes(cfg.ansiEscapes).MaxCellWidth(cfg.maxCellWidth)
	//
	if v.Kind == directive.COVERED {
		printer = printer.Colour(termio.TERM_GREEN)
	}
	//
	printer.Print(check.NewTraceWindow(v, d.Signals()), os.Stdout)
}

func verdictColour(kind directive.VerdictKind) uint {
	switch kind {
	case directive.HOLDS, directive.COVERED:
		return termio.TERM_GREEN
	case directive.INCONCLUSIVE, directive.RUNNING:
		return termio.TERM_YELLOW
	default:
		return termio.TERM_RED
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("report", false, "report the trace around each violation or witness")
	checkCmd.Flags().Bool("ansi-escapes", true, "use ANSI escapes when reporting on a terminal")
	checkCmd.Flags().Uint("max-width", 16, "maximum width of a cell when reporting")
	addConfigFlags(checkCmd)
}
