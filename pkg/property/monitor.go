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
package property

import (
	"cmp"
	"slices"

	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
)

// Result records the outcome of one attempt of a property, identified by the
// cycle at which the attempt started.
type Result struct {
	Start   uint
	Cycle   uint
	Outcome Outcome
}

// Monitor evaluates attempts of a property started at a chosen set of cycles
// (typically every cycle, as for a concurrent assertion), reporting the
// outcome of each attempt as it resolves.  Properties whose top-level operator
// is a sequence or an implication share a single matcher across all attempts,
// rather than constructing a separate matcher per attempt.
type Monitor struct {
	strategy strategy
	// Budget against which attempts in flight are accounted.
	budget *seq.Budget
	name   string
	// Last cycle processed.
	cycle uint
}

// A strategy for monitoring attempts of a property.
type strategy interface {
	step(w trace.Window, spawn bool) ([]Result, error)
	finish(last uint) []Result
	skip(next uint)
	abort()
	outstanding() uint
	matches() []seq.Match
}

// NewMonitor constructs a monitor for a compiled property, with match attempts
// accounted against the given budget (which may be nil), as are the attempts
// and obligations of the property itself.  When trigger is set, an attempt of
// a weak multi-cycle sequence which fails at its very first cycle is
// considered vacuous rather than violated.  This reflects that a concurrent
// assertion over a sequence such as "a ##1 b" is only meaningful from cycles
// where "a" holds.  For a strong sequence, such an attempt leaves the
// obligation unmet, and is reported as pending at the end of the trace.
func NewMonitor(c *Compiled, budget *seq.Budget, trigger bool) *Monitor {
	var (
		ctx      = c.context(budget)
		strategy strategy
	)
	//
	switch p := c.property.(type) {
	case *SequenceProperty:
		strategy = &sequenceStrategy{
			matcher: ctx.matcher(p.Seq),
			strong:  p.Strength == STRONG,
			trigger: trigger && seq.MinLength(p.Seq) > 1,
			active:  make(map[uint]bool),
			matched: make(map[uint]bool),
		}
	case *Implication:
		strategy = &implicationStrategy{ctx: ctx, property: p, matcher: ctx.matcher(p.Antecedent)}
	default:
		strategy = &genericStrategy{ctx: ctx, property: p}
	}
	//
	return &Monitor{strategy: strategy, budget: budget, name: c.property.String()}
}

// Step this monitor at the cycle of the given window, starting a new attempt
// at this cycle if spawn is set.  The results of all attempts resolved at
// this cycle are returned, sorted by start cycle.
func (p *Monitor) Step(w trace.Window, spawn bool) ([]Result, error) {
	p.cycle = w.Cycle()
	//
	results, err := p.strategy.step(w, spawn)
	if err != nil {
		return nil, err
	} else if err = p.budget.Admit(p.name, p.strategy.outstanding()); err != nil {
		return nil, err
	}
	//
	slices.SortFunc(results, func(l, r Result) int { return cmp.Compare(l.Start, r.Start) })
	//
	return results, nil
}

// Finish this monitor at the end of a finite trace, classifying all attempts
// still in flight.
func (p *Monitor) Finish() []Result {
	results := p.strategy.finish(p.cycle)
	slices.SortFunc(results, func(l, r Result) int { return cmp.Compare(l.Start, r.Start) })
	//
	return results
}

// Skip informs this monitor that the next cycle follows a gap of excluded
// cycles, such that attempts in flight are carried across the gap.
func (p *Monitor) Skip(next uint) {
	p.strategy.skip(next)
}

// Abort discards all attempts in flight.
func (p *Monitor) Abort() {
	p.strategy.abort()
}

// Outstanding returns the number of attempts in flight.
func (p *Monitor) Outstanding() uint {
	return p.strategy.outstanding()
}

// Matches returns all matches recorded for the top-level sequence (or
// antecedent) of the monitored property, sorted by start and then end cycle.
func (p *Monitor) Matches() []seq.Match {
	matches := slices.Clone(p.strategy.matches())
	//
	slices.SortFunc(matches, func(l, r seq.Match) int {
		if c := cmp.Compare(l.Start, r.Start); c != 0 {
			return c
		}
		//
		return cmp.Compare(l.End, r.End)
	})
	//
	return matches
}

// ============================================================================
// Sequence Strategy
// ============================================================================

type sequenceStrategy struct {
	matcher *seq.Matcher
	strong  bool
	trigger bool
	// Attempts not yet resolved.
	active map[uint]bool
	// Attempts resolved as holding, whose matching continues in order to
	// record further matches.
	matched  map[uint]bool
	recorded []seq.Match
	// Earliest strong attempt which failed at its first cycle (if any).
	unmet *uint
}

func (p *sequenceStrategy) step(w trace.Window, spawn bool) ([]Result, error) {
	var (
		cycle   = w.Cycle()
		results []Result
	)
	//
	matches, err := p.matcher.Advance(w, spawn)
	if err != nil {
		return nil, err
	} else if spawn {
		p.active[cycle] = true
	}
	//
	p.recorded = append(p.recorded, matches...)
	//
	for _, m := range matches {
		if p.active[m.Start] {
			delete(p.active, m.Start)
			p.matched[m.Start] = true
			results = append(results, Result{m.Start, cycle, HOLDS})
		}
	}
	// Identify attempts which failed
	for _, start := range sortedStarts(p.active) {
		if p.matcher.Live(start) {
			continue
		}
		//
		vacuous := p.trigger && !p.matcher.Progressed(start)
		//
		delete(p.active, start)
		//
		switch {
		case vacuous && p.strong:
			if p.unmet == nil {
				p.unmet = &start
			}
		case vacuous:
			results = append(results, Result{start, cycle, VACUOUS})
		default:
			results = append(results, Result{start, cycle, VIOLATED})
		}
	}
	//
	for _, start := range sortedStarts(p.matched) {
		if !p.matcher.Live(start) {
			delete(p.matched, start)
		}
	}
	//
	return results, nil
}

func (p *sequenceStrategy) finish(last uint) []Result {
	var results []Result
	//
	if p.unmet != nil {
		results = append(results, Result{*p.unmet, last, STRONG_PENDING})
	}
	//
	for _, start := range sortedStarts(p.active) {
		outcome := WEAK_PENDING
		//
		if p.strong {
			outcome = STRONG_PENDING
		} else if p.trigger && !p.matcher.Progressed(start) {
			outcome = VACUOUS
		}
		//
		results = append(results, Result{start, last, outcome})
	}
	//
	return results
}

func (p *sequenceStrategy) skip(next uint) {
	p.matcher.Skip(next)
}

func (p *sequenceStrategy) abort() {
	p.matcher.Close()
	p.active, p.matched = make(map[uint]bool), make(map[uint]bool)
	p.unmet = nil
}

func (p *sequenceStrategy) outstanding() uint {
	return uint(len(p.active))
}

func (p *sequenceStrategy) matches() []seq.Match {
	return p.recorded
}

// ============================================================================
// Implication Strategy
// ============================================================================

// Every match of the antecedent (from any attempt) gives rise to an obligation
// starting at the end of the match (or the following cycle).  Since obligations
// starting at the same cycle are identical, at most one obligation is created
// per cycle.  Antecedent attempts which never match are vacuous, and are not
// reported.
type implicationStrategy struct {
	ctx         *evalContext
	property    *Implication
	matcher     *seq.Matcher
	obligations []obligation
	// Obligation scheduled to begin on the next cycle.
	scheduled *obligation
	recorded  []seq.Match
}

// An obligation records the start of the antecedent attempt which gave rise to
// it.
type obligation struct {
	origin   uint
	instance instance
}

func (p *implicationStrategy) step(w trace.Window, spawn bool) ([]Result, error) {
	var (
		cycle   = w.Cycle()
		results []Result
		pending []obligation
	)
	//
	if p.scheduled != nil {
		p.scheduled.instance = p.ctx.instantiate(p.property.Consequent, cycle)
		p.obligations = append(p.obligations, *p.scheduled)
		p.scheduled = nil
	}
	//
	matches, err := p.matcher.Advance(w, spawn)
	if err != nil {
		return nil, err
	}
	//
	p.recorded = append(p.recorded, matches...)
	//
	if len(matches) > 0 && p.property.Overlapping {
		inst := p.ctx.instantiate(p.property.Consequent, cycle)
		p.obligations = append(p.obligations, obligation{matches[0].Start, inst})
	} else if len(matches) > 0 {
		p.scheduled = &obligation{origin: matches[0].Start}
	}
	//
	for i, o := range p.obligations {
		outcome, err := o.instance.step(w)
		//
		if err != nil {
			p.obligations = append(pending, p.obligations[i+1:]...)
			return nil, err
		} else if outcome == PENDING {
			pending = append(pending, o)
		} else {
			results = append(results, Result{o.origin, cycle, outcome})
		}
	}
	//
	p.obligations = pending
	//
	return results, nil
}

func (p *implicationStrategy) finish(last uint) []Result {
	var results []Result
	//
	for _, o := range p.obligations {
		results = append(results, Result{o.origin, last, o.instance.finish()})
	}
	//
	if p.scheduled != nil {
		inst := p.ctx.instantiate(p.property.Consequent, last+1)
		results = append(results, Result{p.scheduled.origin, last, inst.finish()})
		inst.close()
	}
	//
	return results
}

func (p *implicationStrategy) skip(next uint) {
	p.matcher.Skip(next)
	//
	for _, o := range p.obligations {
		o.instance.skip(next)
	}
}

func (p *implicationStrategy) abort() {
	p.matcher.Close()
	//
	for _, o := range p.obligations {
		o.instance.close()
	}
	//
	p.obligations, p.scheduled = nil, nil
}

func (p *implicationStrategy) outstanding() uint {
	n := uint(len(p.obligations) + len(p.matcher.Starts()))
	//
	if p.scheduled != nil {
		n++
	}
	//
	return n
}

func (p *implicationStrategy) matches() []seq.Match {
	return p.recorded
}

// ============================================================================
// Generic Strategy
// ============================================================================

// Every attempt is evaluated independently.
type genericStrategy struct {
	ctx      *evalContext
	property Property
	attempts []obligation
}

func (p *genericStrategy) step(w trace.Window, spawn bool) ([]Result, error) {
	var (
		cycle   = w.Cycle()
		results []Result
		pending []obligation
	)
	//
	if spawn {
		p.attempts = append(p.attempts, obligation{cycle, p.ctx.instantiate(p.property, cycle)})
	}
	//
	for i, a := range p.attempts {
		outcome, err := a.instance.step(w)
		//
		if err != nil {
			p.attempts = append(pending, p.attempts[i+1:]...)
			return nil, err
		} else if outcome == PENDING {
			pending = append(pending, a)
		} else {
			results = append(results, Result{a.origin, cycle, outcome})
		}
	}
	//
	p.attempts = pending
	//
	return results, nil
}

func (p *genericStrategy) finish(last uint) []Result {
	var results []Result
	//
	for _, a := range p.attempts {
		results = append(results, Result{a.origin, last, a.instance.finish()})
	}
	//
	return results
}

func (p *genericStrategy) skip(next uint) {
	for _, a := range p.attempts {
		a.instance.skip(next)
	}
}

func (p *genericStrategy) abort() {
	for _, a := range p.attempts {
		a.instance.close()
	}
	//
	p.attempts = nil
}

func (p *genericStrategy) outstanding() uint {
	return uint(len(p.attempts))
}

func (p *genericStrategy) matches() []seq.Match {
	return nil
}

func sortedStarts(starts map[uint]bool) []uint {
	var keys = make([]uint, 0, len(starts))
	//
	for k := range starts {
		keys = append(keys, k)
	}
	//
	slices.Sort(keys)
	//
	return keys
}
