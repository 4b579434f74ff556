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
package directive

import (
	"errors"
	"slices"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/property"
	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
	log "github.com/sirupsen/logrus"
)

// Options configures the evaluation of a directive.
type Options struct {
	// Maximum number of outstanding match attempts per sequence (0 means
	// unbounded).
	MaxOutstandingAttempts uint
	// Number of cycles of history available (0 means derived from the
	// directive).
	HistoryDepth uint
	// Treatment of pending strong obligations at the end of the trace.
	EventuallyPolicy EventuallyPolicy
	// Treatment of attempts in flight when the directive is disabled.
	DisablePolicy DisablePolicy
	// Set of declared signals (optional).  When given, references to
	// undeclared signals are rejected.
	Declared func(string) bool
}

// Runner evaluates a directive over a trace, one cycle at a time.  A runner
// begins in the RUNNING state and, once resolved, its verdict never changes.
type Runner struct {
	directive *Directive
	options   Options
	compiled  *property.Compiled
	monitor   *property.Monitor
	// Indicates whether the directive was disabled on the last cycle.
	disabled bool
	// Indicates whether an attempt has been spawned.
	spawned bool
	// Most recent window processed.
	window  trace.Window
	verdict Verdict
}

// NewRunner constructs a runner for a given directive.  This performs all
// static checks on the directive: sequences of unspecified strength are
// resolved, the property is validated, the history it requires is checked
// against that available, and signals are checked against those declared (if
// applicable).
func NewRunner(d *Directive, options Options) (*Runner, error) {
	// Check history
	if options.HistoryDepth > 0 && d.Depth() > options.HistoryDepth {
		return nil, &bexp.UndefinedHistoryError{Required: d.Depth(), Available: options.HistoryDepth}
	}
	// Check signals
	if options.Declared != nil {
		for _, name := range d.Signals() {
			if !options.Declared(name) {
				return nil, bexp.Malformed("unknown signal \"%s\" in %s", name, d.Name)
			}
		}
	}
	//
	compiled, err := property.Compile(property.Resolve(d.Property, d.Strong()))
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("compiled %s (%d sequences, history depth %d)", d.Name, compiled.Programs(), d.Depth())
	//
	budget := seq.NewBudget(options.MaxOutstandingAttempts)
	// Only per-cycle directives treat a failed first cycle as vacuous.
	monitor := property.NewMonitor(compiled, budget, !d.Initial)
	//
	return &Runner{
		directive: d,
		options:   options,
		compiled:  compiled,
		monitor:   monitor,
		verdict:   Verdict{Directive: d.Name, Kind: RUNNING},
	}, nil
}

// Directive returns the directive being evaluated by this runner.
func (r *Runner) Directive() *Directive {
	return r.directive
}

// Property returns the property being evaluated (i.e. after resolving the
// strength of its sequences).
func (r *Runner) Property() property.Property {
	return r.compiled.Property()
}

// Verdict returns the current verdict of this runner.
func (r *Runner) Verdict() Verdict {
	return r.verdict
}

// Outstanding returns the number of attempts currently in flight.
func (r *Runner) Outstanding() uint {
	return r.monitor.Outstanding()
}

// Matches returns the matches recorded so far for the top-level sequence (or
// antecedent) of the directive's property.
func (r *Runner) Matches() []seq.Match {
	return r.monitor.Matches()
}

// Step this runner at the cycle of the given window, returning the verdict so
// far.  Once resolved, further steps have no effect.
func (r *Runner) Step(w trace.Window) Verdict {
	if r.verdict.Resolved() {
		return r.verdict
	}
	//
	var cycle = w.Cycle()
	//
	r.window = w
	// Check disable condition
	if r.directive.Disable != nil {
		disabled, err := bexp.Holds(r.directive.Disable, cycle, w)
		//
		if err != nil {
			return r.fail(err, cycle)
		} else if disabled {
			if !r.disabled && r.options.DisablePolicy == DISABLE_ABORT {
				log.Debugf("%s disabled at cycle %d (%d attempts discarded)", r.directive.Name, cycle,
					r.monitor.Outstanding())
				r.monitor.Abort()
			}
			//
			r.disabled = true
			//
			return r.verdict
		} else if r.disabled && r.options.DisablePolicy == DISABLE_FREEZE {
			r.monitor.Skip(cycle)
		}
		//
		r.disabled = false
	}
	//
	spawn := !r.directive.Initial || !r.spawned
	r.spawned = true
	//
	results, err := r.monitor.Step(w, spawn)
	if err != nil {
		return r.fail(err, cycle)
	}
	//
	for _, result := range results {
		if r.record(result); r.verdict.Resolved() {
			break
		}
	}
	//
	return r.verdict
}

// Finish this runner at the end of a finite trace, returning its final
// verdict.
func (r *Runner) Finish() Verdict {
	if r.verdict.Resolved() {
		return r.verdict
	}
	//
	var (
		results = r.monitor.Finish()
		pending *property.Result
	)
	//
	for i, result := range results {
		if r.record(result); r.verdict.Resolved() {
			return r.verdict
		} else if result.Outcome == property.STRONG_PENDING && pending == nil {
			pending = &results[i]
		}
	}
	//
	switch {
	case r.directive.Kind == COVER:
		r.resolveAt(INCONCLUSIVE, r.lastCycle(), 0)
	case pending != nil && r.options.EventuallyPolicy == EVENTUALLY_FAIL:
		r.resolveAt(r.violation(), pending.Cycle, pending.Start)
	case pending != nil:
		r.resolveAt(INCONCLUSIVE, pending.Cycle, pending.Start)
	default:
		r.resolveAt(HOLDS, r.lastCycle(), 0)
	}
	//
	return r.verdict
}

// Record the result of a single attempt.
func (r *Runner) record(result property.Result) {
	switch {
	case r.directive.Kind == COVER && result.Outcome == property.HOLDS:
		r.resolveAt(COVERED, result.Cycle, result.Start)
	case r.directive.Kind != COVER && result.Outcome == property.VIOLATED:
		r.resolveAt(r.violation(), result.Cycle, result.Start)
	}
}

// Determine the kind of verdict arising from a violation of this directive's
// property.
func (r *Runner) violation() VerdictKind {
	if r.directive.Kind == ASSERT {
		return VIOLATED
	}
	//
	return ASSUMPTION_UNSATISFIED
}

func (r *Runner) fail(err error, cycle uint) Verdict {
	var overflow *seq.AttemptOverflowError
	//
	if errors.As(err, &overflow) {
		r.resolveAt(OVERFLOW, cycle, cycle)
	} else {
		r.resolveAt(ERROR, cycle, cycle)
	}
	//
	r.verdict.Err = err
	r.monitor.Abort()
	//
	return r.verdict
}

func (r *Runner) resolveAt(kind VerdictKind, cycle uint, start uint) {
	r.verdict = Verdict{
		Directive: r.directive.Name,
		Kind:      kind,
		Cycle:     cycle,
		Start:     start,
		Trace:     r.snapshots(start, cycle),
		Matches:   r.monitor.Matches(),
	}
	//
	log.Debugf("%s resolved as %s at cycle %d", r.directive.Name, kind.String(), cycle)
}

// Extract the snapshots for a given span of cycles, as far as they remain
// available.
func (r *Runner) snapshots(start uint, end uint) []*trace.Snapshot {
	var snapshots []*trace.Snapshot
	//
	if r.window == nil {
		return nil
	}
	//
	for i := start; i <= end; i++ {
		if s, ok := r.window.At(i); ok {
			snapshots = append(snapshots, s)
		}
	}
	//
	return snapshots
}

func (r *Runner) lastCycle() uint {
	if r.window == nil {
		return 0
	}
	//
	return r.window.Cycle()
}

func sortedUnique(names []string) []string {
	names = slices.Clone(names)
	slices.Sort(names)
	//
	return slices.Compact(names)
}
