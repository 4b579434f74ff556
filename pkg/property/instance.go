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
	"fmt"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
)

// An instance is the run-time state of a single evaluation of a property,
// started at a given cycle.  An instance is stepped once per cycle, beginning
// with its start cycle, until it returns a resolved outcome.  Instances are
// constructed eagerly, such that finish can be called before the first step
// (e.g. when an obligation would begin after the last cycle of the trace).
type instance interface {
	// Step this instance at the cycle of the given window.
	step(w trace.Window) (Outcome, error)
	// Classify this (pending) instance at the end of the trace.
	finish() Outcome
	// Inform this instance that the next cycle follows a gap of excluded
	// cycles.
	skip(next uint)
	// Discard this instance, releasing any attempts still in flight.
	close()
}

// Shared state for all instances of a given property evaluation.
type evalContext struct {
	programs map[seq.Sequence]*seq.Program
	budget   *seq.Budget
}

// Construct an instance of a given property, starting at a given cycle.
func (c *evalContext) instantiate(p Property, start uint) instance {
	switch p := p.(type) {
	case *SequenceProperty:
		return &sequenceInstance{start: start, matcher: c.matcher(p.Seq), strong: p.Strength == STRONG}
	case *Not:
		return &notInstance{c.instantiate(p.Arg, start)}
	case *And:
		return newLogical(true, c.instantiate(p.Left, start), c.instantiate(p.Right, start))
	case *Or:
		return newLogical(false, c.instantiate(p.Left, start), c.instantiate(p.Right, start))
	case *IfElse:
		var els instance
		//
		if p.Else != nil {
			els = c.instantiate(p.Else, start)
		}
		//
		return &ifInstance{cond: p.Cond, then: c.instantiate(p.Then, start), els: els}
	case *Implication:
		return &implicationInstance{ctx: c, property: p, start: start, matcher: c.matcher(p.Antecedent)}
	case *Always:
		return &alwaysInstance{window{ctx: c, arg: p.Arg, rng: p.Range, strong: p.Strong}}
	case *Eventually:
		return &eventuallyInstance{window{ctx: c, arg: p.Arg, rng: p.Range, strong: p.Strong}}
	case *Until:
		return &untilInstance{ctx: c, property: p}
	default:
		// Properties are validated before evaluation
		panic(fmt.Sprintf("unknown property operator %T", p))
	}
}

func (c *evalContext) matcher(s seq.Sequence) *seq.Matcher {
	return seq.NewMatcher(c.programs[s], c.budget)
}

// ============================================================================
// Sequences
// ============================================================================

type sequenceInstance struct {
	start   uint
	matcher *seq.Matcher
	strong  bool
	stepped bool
}

func (p *sequenceInstance) step(w trace.Window) (Outcome, error) {
	matches, err := p.matcher.Advance(w, !p.stepped)
	p.stepped = true
	//
	if err != nil {
		p.close()
		return PENDING, err
	} else if len(matches) > 0 {
		p.close()
		return HOLDS, nil
	} else if !p.matcher.Live(p.start) {
		p.close()
		return VIOLATED, nil
	}
	//
	return PENDING, nil
}

func (p *sequenceInstance) finish() Outcome {
	if p.strong {
		return STRONG_PENDING
	}
	//
	return WEAK_PENDING
}

func (p *sequenceInstance) skip(next uint) {
	p.matcher.Skip(next)
}

func (p *sequenceInstance) close() {
	p.matcher.Close()
}

// ============================================================================
// Logical Operators
// ============================================================================

type notInstance struct {
	arg instance
}

func (p *notInstance) step(w trace.Window) (Outcome, error) {
	outcome, err := p.arg.step(w)
	//
	if err != nil || outcome == PENDING {
		return PENDING, err
	}
	//
	return negate(outcome), nil
}

func (p *notInstance) finish() Outcome {
	return negate(p.arg.finish())
}

func (p *notInstance) skip(next uint) {
	p.arg.skip(next)
}

func (p *notInstance) close() {
	p.arg.close()
}

// A logical instance is either a conjunction or a disjunction of two
// instances, both of which are stepped every cycle until resolved.
type logicalInstance struct {
	conjunct bool
	args     [2]instance
	outcomes [2]Outcome
}

func newLogical(conjunct bool, lhs instance, rhs instance) *logicalInstance {
	return &logicalInstance{conjunct, [2]instance{lhs, rhs}, [2]Outcome{PENDING, PENDING}}
}

func (p *logicalInstance) step(w trace.Window) (Outcome, error) {
	for i, arg := range p.args {
		if p.outcomes[i] != PENDING {
			continue
		}
		//
		outcome, err := arg.step(w)
		if err != nil {
			p.close()
			return PENDING, err
		}
		//
		p.outcomes[i] = outcome
	}
	// Check for short circuit
	for _, outcome := range p.outcomes {
		if (p.conjunct && outcome == VIOLATED) || (!p.conjunct && outcome.Satisfied()) {
			p.close()
			return outcome, nil
		}
	}
	//
	if p.outcomes[0] == PENDING || p.outcomes[1] == PENDING {
		return PENDING, nil
	} else if p.conjunct {
		return conjunction(p.outcomes[:]...), nil
	}
	//
	return disjunction(p.outcomes[:]...), nil
}

func (p *logicalInstance) finish() Outcome {
	var outcomes [2]Outcome
	//
	for i, arg := range p.args {
		if outcomes[i] = p.outcomes[i]; outcomes[i] == PENDING {
			outcomes[i] = arg.finish()
		}
	}
	//
	if p.conjunct {
		return conjunction(outcomes[:]...)
	}
	//
	return disjunction(outcomes[:]...)
}

func (p *logicalInstance) skip(next uint) {
	for i, arg := range p.args {
		if p.outcomes[i] == PENDING {
			arg.skip(next)
		}
	}
}

func (p *logicalInstance) close() {
	for i, arg := range p.args {
		if p.outcomes[i] == PENDING {
			arg.close()
		}
	}
}

type ifInstance struct {
	cond    bexp.Expr
	then    instance
	els     instance
	decided bool
}

func (p *ifInstance) step(w trace.Window) (Outcome, error) {
	if !p.decided {
		ok, err := bexp.Holds(p.cond, w.Cycle(), w)
		if err != nil {
			p.close()
			return PENDING, err
		}
		// Discard the branch not taken
		if ok && p.els != nil {
			p.els.close()
		} else if !ok {
			p.then.close()
			p.then = p.els
		}
		//
		p.decided, p.els = true, nil
	}
	//
	if p.then == nil {
		return VACUOUS, nil
	}
	//
	return p.then.step(w)
}

func (p *ifInstance) finish() Outcome {
	if p.decided && p.then == nil {
		return VACUOUS
	} else if p.decided || p.els == nil {
		return p.then.finish()
	}
	// Condition never evaluated, so both branches must be satisfied.
	return conjunction(p.then.finish(), p.els.finish())
}

func (p *ifInstance) skip(next uint) {
	for _, branch := range []instance{p.then, p.els} {
		if branch != nil {
			branch.skip(next)
		}
	}
}

func (p *ifInstance) close() {
	for _, branch := range []instance{p.then, p.els} {
		if branch != nil {
			branch.close()
		}
	}
}

// ============================================================================
// Implication
// ============================================================================

type implicationInstance struct {
	ctx      *evalContext
	property *Implication
	start    uint
	matcher  *seq.Matcher
	stepped  bool
	// Obligations arising from antecedent matches.
	obligations group
	// Indicates an obligation begins on the next cycle.
	scheduled bool
	// Indicates some obligation has held non-vacuously.
	holds bool
	// Last cycle processed.
	cycle uint
}

func (p *implicationInstance) step(w trace.Window) (Outcome, error) {
	p.cycle = w.Cycle()
	//
	if p.scheduled {
		p.obligations.add(p.ctx.instantiate(p.property.Consequent, p.cycle))
		p.scheduled = false
	}
	// Advance the antecedent
	if !p.stepped || p.matcher.Live(p.start) {
		matches, err := p.matcher.Advance(w, !p.stepped)
		p.stepped = true
		//
		if err != nil {
			p.close()
			return PENDING, err
		} else if len(matches) > 0 && p.property.Overlapping {
			p.obligations.add(p.ctx.instantiate(p.property.Consequent, p.cycle))
		} else if len(matches) > 0 {
			p.scheduled = true
		}
	}
	// Advance the obligations
	outcomes, err := p.obligations.step(w)
	if err != nil {
		p.close()
		return PENDING, err
	}
	//
	for _, outcome := range outcomes {
		if outcome == VIOLATED {
			p.close()
			return VIOLATED, nil
		}
		//
		p.holds = p.holds || outcome == HOLDS
	}
	// Check whether everything is resolved
	if p.matcher.Live(p.start) || p.scheduled || p.obligations.len() > 0 {
		return PENDING, nil
	} else if p.holds {
		return HOLDS, nil
	}
	//
	return VACUOUS, nil
}

func (p *implicationInstance) finish() Outcome {
	outcomes := p.obligations.finish()
	//
	if p.scheduled {
		obligation := p.ctx.instantiate(p.property.Consequent, p.cycle+1)
		outcomes = append(outcomes, obligation.finish())
		obligation.close()
	}
	//
	if p.holds {
		outcomes = append(outcomes, HOLDS)
	}
	// Incomplete antecedent matches are vacuous
	return conjunction(outcomes...)
}

func (p *implicationInstance) skip(next uint) {
	p.matcher.Skip(next)
	p.obligations.skip(next)
}

func (p *implicationInstance) close() {
	p.matcher.Close()
	p.obligations.close()
	p.scheduled = false
}

// ============================================================================
// Always / Eventually
// ============================================================================

// A window spawns an instance of a given property at each offset (from the
// start cycle) within a given range of offsets.
type window struct {
	ctx    *evalContext
	arg    Property
	rng    *seq.Range
	strong bool
	// Offset of the next cycle.
	offset uint
	// Instances in flight.
	children group
	// Indicates some instance has held non-vacuously.
	holds bool
}

// Step all instances in flight, having spawned a new instance if this cycle is
// within the window.
func (p *window) advance(w trace.Window) ([]Outcome, error) {
	if p.rng == nil || p.rng.Contains(p.offset) {
		p.children.add(p.ctx.instantiate(p.arg, w.Cycle()))
	}
	//
	p.offset++
	//
	return p.children.step(w)
}

// Check whether every instance within the window has been spawned and
// resolved.
func (p *window) done() bool {
	return p.complete() && p.children.len() == 0
}

// Check whether every instance within the window has been spawned.
func (p *window) complete() bool {
	return p.rng != nil && !p.rng.Unbounded && p.offset > p.rng.Max
}

// Outcome for the portion of the window not yet spawned at the end of the
// trace.
func (p *window) incomplete() Outcome {
	if p.strong {
		return STRONG_PENDING
	}
	//
	return WEAK_PENDING
}

type alwaysInstance struct {
	window
}

func (p *alwaysInstance) step(w trace.Window) (Outcome, error) {
	outcomes, err := p.advance(w)
	if err != nil {
		p.close()
		return PENDING, err
	}
	//
	for _, outcome := range outcomes {
		if outcome == VIOLATED {
			p.close()
			return VIOLATED, nil
		}
		//
		p.holds = p.holds || outcome == HOLDS
	}
	//
	if p.done() && p.holds {
		return HOLDS, nil
	} else if p.done() {
		return VACUOUS, nil
	}
	//
	return PENDING, nil
}

func (p *alwaysInstance) finish() Outcome {
	outcomes := p.children.finish()
	//
	if p.holds {
		outcomes = append(outcomes, HOLDS)
	}
	//
	if !p.complete() {
		outcomes = append(outcomes, p.incomplete())
	}
	//
	return conjunction(outcomes...)
}

func (p *alwaysInstance) skip(next uint) {
	p.children.skip(next)
}

func (p *alwaysInstance) close() {
	p.children.close()
}

type eventuallyInstance struct {
	window
}

func (p *eventuallyInstance) step(w trace.Window) (Outcome, error) {
	outcomes, err := p.advance(w)
	if err != nil {
		p.close()
		return PENDING, err
	}
	//
	for _, outcome := range outcomes {
		if outcome.Satisfied() {
			p.close()
			return HOLDS, nil
		}
	}
	//
	if p.done() {
		return VIOLATED, nil
	}
	//
	return PENDING, nil
}

func (p *eventuallyInstance) finish() Outcome {
	outcomes := p.children.finish()
	//
	if !p.complete() {
		outcomes = append(outcomes, p.incomplete())
	}
	//
	return disjunction(outcomes...)
}

func (p *eventuallyInstance) skip(next uint) {
	p.children.skip(next)
}

func (p *eventuallyInstance) close() {
	p.children.close()
}

// ============================================================================
// Until
// ============================================================================

// An until instance spawns an instance of both sides at every cycle, recording
// their outcomes by offset.  Offsets at which the left-hand side holds and the
// right-hand side is violated are discarded from the front, since they can
// neither witness nor refute the property.
type untilInstance struct {
	ctx      *evalContext
	property *Until
	lhs      []instance
	rhs      []instance
	lhsOut   []Outcome
	rhsOut   []Outcome
	// Indicates the left-hand side was violated at some offset, hence no
	// further offsets are relevant.
	blocked bool
}

func (p *untilInstance) step(w trace.Window) (Outcome, error) {
	if !p.blocked {
		p.lhs = append(p.lhs, p.ctx.instantiate(p.property.Lhs, w.Cycle()))
		p.rhs = append(p.rhs, p.ctx.instantiate(p.property.Rhs, w.Cycle()))
		p.lhsOut = append(p.lhsOut, PENDING)
		p.rhsOut = append(p.rhsOut, PENDING)
	}
	//
	if err := stepAll(w, p.lhs, p.lhsOut); err != nil {
		p.close()
		return PENDING, err
	} else if err := stepAll(w, p.rhs, p.rhsOut); err != nil {
		p.close()
		return PENDING, err
	}
	//
	for _, outcome := range p.lhsOut {
		p.blocked = p.blocked || outcome == VIOLATED
	}
	//
	if outcome := decideUntil(p.lhsOut, p.rhsOut, p.property.Inclusive); outcome != PENDING {
		p.close()
		return outcome, nil
	}
	// Discard irrelevant offsets
	for len(p.lhsOut) > 0 && p.lhsOut[0].Satisfied() && p.rhsOut[0] == VIOLATED {
		p.lhs, p.rhs = p.lhs[1:], p.rhs[1:]
		p.lhsOut, p.rhsOut = p.lhsOut[1:], p.rhsOut[1:]
	}
	//
	return PENDING, nil
}

func (p *untilInstance) finish() Outcome {
	var (
		lhs = finishAll(p.lhs, p.lhsOut)
		rhs = finishAll(p.rhs, p.rhsOut)
	)
	//
	if outcome := decideUntil(lhs, rhs, p.property.Inclusive); outcome != PENDING {
		return outcome
	} else if p.property.Strong {
		return STRONG_PENDING
	}
	// A weak until holds if the left-hand side held throughout.
	for _, outcome := range lhs {
		if !outcome.Satisfied() {
			return STRONG_PENDING
		}
	}
	//
	return WEAK_PENDING
}

func (p *untilInstance) skip(next uint) {
	for i := range p.lhs {
		if p.lhsOut[i] == PENDING {
			p.lhs[i].skip(next)
		}
		//
		if p.rhsOut[i] == PENDING {
			p.rhs[i].skip(next)
		}
	}
}

func (p *untilInstance) close() {
	for i := range p.lhs {
		if p.lhsOut[i] == PENDING {
			p.lhs[i].close()
		}
		//
		if p.rhsOut[i] == PENDING {
			p.rhs[i].close()
		}
	}
	//
	p.lhs, p.rhs, p.lhsOut, p.rhsOut = nil, nil, nil, nil
}

// Decide an until property from the outcomes of its left- and right-hand sides
// at each offset.  The property holds if the right-hand side holds at some
// offset, and the left-hand side holds at all earlier offsets (including that
// offset for the inclusive form).  The property is violated if the left-hand
// side is violated at some offset, and the right-hand side is violated at all
// offsets up to that point (excluding that offset for the inclusive form).
func decideUntil(lhs []Outcome, rhs []Outcome, inclusive bool) Outcome {
	prefix := true
	//
	for i := range rhs {
		if rhs[i].Satisfied() && prefix && (!inclusive || lhs[i].Satisfied()) {
			return HOLDS
		}
		//
		prefix = prefix && lhs[i].Satisfied()
	}
	//
	for j := range lhs {
		if lhs[j] != VIOLATED {
			continue
		}
		//
		limit := j
		if !inclusive {
			limit = j + 1
		}
		//
		for i := 0; i < limit; i++ {
			if rhs[i] != VIOLATED {
				return PENDING
			}
		}
		//
		return VIOLATED
	}
	//
	return PENDING
}

// Step all pending instances, updating their outcomes.
func stepAll(w trace.Window, instances []instance, outcomes []Outcome) error {
	for i, inst := range instances {
		if outcomes[i] != PENDING {
			continue
		}
		//
		outcome, err := inst.step(w)
		if err != nil {
			return err
		}
		//
		outcomes[i] = outcome
	}
	//
	return nil
}

// Classify all instances at the end of the trace, where weakly pending
// instances are considered satisfied and strongly pending instances remain
// pending.
func finishAll(instances []instance, outcomes []Outcome) []Outcome {
	var finished = make([]Outcome, len(outcomes))
	//
	for i, inst := range instances {
		finished[i] = outcomes[i]
		//
		if finished[i] != PENDING {
			continue
		}
		//
		switch inst.finish() {
		case HOLDS, WEAK_PENDING:
			finished[i] = HOLDS
		case VACUOUS:
			finished[i] = VACUOUS
		case VIOLATED:
			finished[i] = VIOLATED
		}
	}
	//
	return finished
}

// ============================================================================
// Groups
// ============================================================================

// A group holds a set of instances in flight, which are stepped together.
type group struct {
	items []instance
}

func (p *group) add(inst instance) {
	p.items = append(p.items, inst)
}

func (p *group) len() int {
	return len(p.items)
}

// Step all instances, returning the outcomes of those which resolved.  Only
// those instances still pending are retained.
func (p *group) step(w trace.Window) ([]Outcome, error) {
	var (
		outcomes []Outcome
		pending  []instance
	)
	//
	for i, inst := range p.items {
		outcome, err := inst.step(w)
		if err != nil {
			// Retain the remainder so they are released on close.
			p.items = append(pending, p.items[i+1:]...)
			return nil, err
		} else if outcome == PENDING {
			pending = append(pending, inst)
		} else {
			outcomes = append(outcomes, outcome)
		}
	}
	//
	p.items = pending
	//
	return outcomes, nil
}

func (p *group) finish() []Outcome {
	outcomes := make([]Outcome, len(p.items))
	//
	for i, inst := range p.items {
		outcomes[i] = inst.finish()
	}
	//
	return outcomes
}

func (p *group) skip(next uint) {
	for _, inst := range p.items {
		inst.skip(next)
	}
}

func (p *group) close() {
	for _, inst := range p.items {
		inst.close()
	}
	//
	p.items = nil
}
