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
package seq

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/trace"
)

// Match records that a sequence matched from a given start cycle up to (and
// including) a given end cycle.
type Match struct {
	Start uint
	End   uint
}

func (m Match) String() string {
	return fmt.Sprintf("[%d:%d]", m.Start, m.End)
}

// Matcher advances the set of in-flight match attempts for a given program one
// cycle at a time, producing matches as they complete.  Attempts which reach
// an identical state are merged, such that the number of attempts is bounded
// by the number of distinct states rather than the number of paths.
type Matcher struct {
	program *Program
	budget  *Budget
	// Attempts parked awaiting the next cycle.
	parked []*thread
	// Index of parked attempts by state.
	index map[string]int
	// Number of parked attempts for each start cycle.
	live map[uint]uint
	// Start cycles for which some attempt has made progress.
	progress map[uint]bool
	// Next cycle expected.
	next    uint
	started bool
}

// NewMatcher constructs a matcher for a given program.  Outstanding attempts
// are accounted against the given budget, which may be nil (i.e. unbounded).
func NewMatcher(program *Program, budget *Budget) *Matcher {
	return &Matcher{
		program:  program,
		budget:   budget,
		index:    make(map[string]int),
		live:     make(map[uint]uint),
		progress: make(map[uint]bool),
	}
}

// Program returns the program being executed by this matcher.
func (m *Matcher) Program() *Program {
	return m.program
}

// Advance this matcher by one cycle, where the given window is positioned at
// the cycle being processed.  Cycles must be processed in contiguous order.  If
// spawn is set, then a new attempt is started at this cycle.  The matches
// completing at this cycle are returned, sorted by start cycle.
func (m *Matcher) Advance(w trace.Window, spawn bool) ([]Match, error) {
	var cycle = w.Cycle()
	//
	if m.started && cycle != m.next {
		return nil, fmt.Errorf("non-contiguous cycle %d (expected %d)", cycle, m.next)
	}
	//
	m.started, m.next = true, cycle+1
	// Forget progress of attempts which died during the previous cycle
	for start := range m.progress {
		if m.live[start] == 0 {
			delete(m.progress, start)
		}
	}
	// Reset parked state
	resumed := m.parked
	m.parked, m.index, m.live = nil, make(map[string]int), make(map[uint]uint)
	//
	ex := execution{m, w, cycle, make(map[string]bool), nil}
	//
	for _, t := range resumed {
		if err := ex.resume(t); err != nil {
			return nil, m.release(uint(len(resumed)), err)
		}
	}
	//
	if spawn {
		t := &thread{start: cycle, counters: make([]uint, m.program.counters)}
		//
		if err := ex.run(t); err != nil {
			return nil, m.release(uint(len(resumed)), err)
		}
	}
	// Update budget
	err := m.budget.update(m.program, uint(len(resumed)), uint(len(m.parked)))
	// Sort matches
	slices.SortFunc(ex.matches, func(l, r Match) int { return cmp.Compare(l.Start, r.Start) })
	//
	return slices.Compact(ex.matches), err
}

// Live checks whether any attempt started at the given cycle remains in
// flight.
func (m *Matcher) Live(start uint) bool {
	return m.live[start] > 0
}

// Progressed checks whether any attempt started at the given cycle has made
// progress (i.e. passed its first Boolean check).  An attempt which failed at
// its very first check never progressed.  This information is retained until
// the next cycle is processed.
func (m *Matcher) Progressed(start uint) bool {
	return m.progress[start]
}

// Outstanding returns the number of attempts currently in flight.
func (m *Matcher) Outstanding() uint {
	return uint(len(m.parked))
}

// Starts returns the (sorted) start cycles of all attempts currently in flight.
func (m *Matcher) Starts() []uint {
	var starts []uint
	//
	for start := range m.live {
		starts = append(starts, start)
	}
	//
	slices.Sort(starts)
	//
	return starts
}

// Skip informs this matcher that the next cycle to be processed follows a gap
// of excluded cycles (e.g. whilst a directive is disabled).  Attempts in
// flight are carried across the gap unchanged.
func (m *Matcher) Skip(next uint) {
	if m.started && next > m.next {
		m.next = next
	}
}

// Close discards all attempts in flight, releasing them from the budget.  A
// closed matcher can be restarted from any cycle.
func (m *Matcher) Close() {
	_ = m.budget.update(m.program, uint(len(m.parked)), 0)
	m.parked, m.index = nil, make(map[string]int)
	m.live, m.progress = make(map[uint]uint), make(map[uint]bool)
	m.started = false
}

// Release the budget held by attempts which were resumed but discarded because
// of an error.
func (m *Matcher) release(resumed uint, err error) error {
	_ = m.budget.update(m.program, resumed, uint(len(m.parked)))
	return err
}

// Matches is a convenience function which runs a given program over a finite
// trace, starting an attempt at every cycle, and returns all matches found.
func Matches(program *Program, tr trace.Trace) ([]Match, error) {
	var (
		matcher = NewMatcher(program, nil)
		matches []Match
	)
	//
	for i := uint(0); i < tr.Height(); i++ {
		ms, err := matcher.Advance(tr.Window(i), true)
		if err != nil {
			return nil, err
		}
		//
		matches = append(matches, ms...)
	}
	//
	slices.SortFunc(matches, func(l, r Match) int {
		if c := cmp.Compare(l.Start, r.Start); c != 0 {
			return c
		}
		//
		return cmp.Compare(l.End, r.End)
	})
	//
	return matches, nil
}

// ============================================================================
// Threads
// ============================================================================

// A thread represents a single match attempt.  Threads are never modified once
// constructed, hence forks can share their counters.
type thread struct {
	start uint
	pc    int
	// Cycles elapsed whilst waiting at the current instruction.
	elapsed uint
	// Repetition counters.
	counters []uint
	// Whether this attempt has passed its first Boolean check.
	progressed bool
}

func (t *thread) key() string {
	var buf []byte
	//
	buf = strconv.AppendUint(buf, uint64(t.start), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(t.pc), 10)
	buf = append(buf, ':')
	buf = strconv.AppendUint(buf, uint64(t.elapsed), 10)
	//
	for _, c := range t.counters {
		buf = append(buf, ',')
		buf = strconv.AppendUint(buf, uint64(c), 10)
	}
	//
	return string(buf)
}

// Move this thread to a given instruction.
func (t *thread) jump(pc int) *thread {
	return &thread{t.start, pc, 0, t.counters, t.progressed}
}

// Move this thread to the next instruction, marking it as having progressed.
func (t *thread) advance() *thread {
	return &thread{t.start, t.pc + 1, 0, t.counters, true}
}

// Set the elapsed cycle count of this thread.
func (t *thread) wait(elapsed uint) *thread {
	return &thread{t.start, t.pc, elapsed, t.counters, t.progressed}
}

// Set a given counter of this thread.
func (t *thread) count(counter uint, value uint) *thread {
	counters := slices.Clone(t.counters)
	counters[counter] = value
	//
	return &thread{t.start, t.pc, t.elapsed, counters, t.progressed}
}

// ============================================================================
// Execution
// ============================================================================

// Execution captures the processing of a single cycle.
type execution struct {
	matcher *Matcher
	window  trace.Window
	cycle   uint
	// States visited during this cycle, mapped to whether they had progressed.
	visited map[string]bool
	// Matches found during this cycle.
	matches []Match
}

// Run a thread which has arrived at its current instruction during this cycle.
func (p *execution) run(t *thread) error {
	// Check whether equivalent state already visited
	key := t.key()
	if progressed, ok := p.visited[key]; ok && (progressed || !t.progressed) {
		return nil
	}
	//
	p.visited[key] = t.progressed
	//
	if t.progressed {
		p.matcher.progress[t.start] = true
	}
	//
	insn := p.matcher.program.code[t.pc]
	//
	switch insn.op {
	case opCheck:
		if ok, err := p.holds(insn.expr, insn.guards); err != nil || !ok {
			return err
		} else if insn.guard {
			return p.run(t.jump(t.pc + 1))
		}
		//
		return p.run(t.advance())
	case opDelay:
		// Reaching a delay counts as progress (e.g. for a leading delay).
		t = t.wait(0)
		t.progressed = true
		p.matcher.progress[t.start] = true
		//
		if insn.bounds.Min == 0 {
			if err := p.run(t.advance()); err != nil {
				return err
			}
		}
		//
		if insn.bounds.Unbounded || insn.bounds.Max > 0 {
			p.park(t)
		}
		//
		return nil
	case opAwait:
		return p.await(t, insn)
	case opTrail:
		if err := p.run(t.advance()); err != nil {
			return err
		}
		//
		p.park(t.wait(0))
		//
		return nil
	case opSplit:
		if err := p.run(t.jump(insn.x)); err != nil {
			return err
		}
		//
		return p.run(t.jump(insn.y))
	case opJump:
		return p.run(t.jump(insn.x))
	case opReset:
		return p.run(t.count(insn.counter, 0).jump(t.pc + 1))
	case opLoop:
		return p.loop(t, insn)
	case opMatch:
		p.matches = append(p.matches, Match{t.start, p.cycle})
		return nil
	}
	//
	return fmt.Errorf("unknown instruction %s", insn.String())
}

// Resume a thread parked during the previous cycle.
func (p *execution) resume(t *thread) error {
	insn := p.matcher.program.code[t.pc]
	// Check guards hold at this cycle
	if ok, err := p.holds(nil, insn.guards); err != nil || !ok {
		return err
	}
	//
	switch insn.op {
	case opDelay:
		elapsed := t.elapsed + 1
		//
		if insn.bounds.Contains(elapsed) {
			if err := p.run(t.advance()); err != nil {
				return err
			}
		}
		//
		if insn.bounds.Unbounded {
			p.park(t.wait(min(elapsed, insn.bounds.Min)))
		} else if elapsed < insn.bounds.Max {
			p.park(t.wait(elapsed))
		}
		//
		return nil
	case opAwait:
		return p.await(t, insn)
	case opTrail:
		if ok, err := p.holds(insn.expr, nil); err != nil || ok {
			return err
		}
		//
		if err := p.run(t.advance()); err != nil {
			return err
		}
		//
		p.park(t)
		//
		return nil
	}
	//
	return fmt.Errorf("cannot resume instruction %s", insn.String())
}

func (p *execution) await(t *thread, insn instruction) error {
	ok, err := p.holds(insn.expr, insn.guards)
	//
	if err != nil {
		return err
	} else if ok {
		return p.run(t.advance())
	}
	//
	p.park(t.wait(0))
	//
	return nil
}

func (p *execution) loop(t *thread, insn instruction) error {
	var (
		bounds = insn.bounds
		n      = t.counters[insn.counter] + 1
	)
	// Counts beyond the minimum are indistinguishable for unbounded repetition.
	if bounds.Unbounded {
		n = min(n, bounds.Min)
	}
	//
	t = t.count(insn.counter, n)
	//
	if n >= bounds.Min {
		if err := p.run(t.jump(insn.x)); err != nil {
			return err
		}
	}
	//
	if bounds.Unbounded || n < bounds.Max {
		return p.run(t.jump(t.pc + 1))
	}
	//
	return nil
}

// Park a thread until the next cycle.  Threads in identical states are merged.
func (p *execution) park(t *thread) {
	var (
		m   = p.matcher
		key = t.key()
	)
	//
	if i, ok := m.index[key]; ok {
		if t.progressed && !m.parked[i].progressed {
			m.parked[i] = t
		}
		//
		return
	}
	//
	m.index[key] = len(m.parked)
	m.parked = append(m.parked, t)
	m.live[t.start]++
}

// Check whether a given expression (if provided) and all guards hold at this
// cycle.
func (p *execution) holds(e bexp.Expr, guards []bexp.Expr) (bool, error) {
	for _, g := range guards {
		if ok, err := bexp.Holds(g, p.cycle, p.window); err != nil || !ok {
			return false, err
		}
	}
	//
	if e == nil {
		return true, nil
	}
	//
	return bexp.Holds(e, p.cycle, p.window)
}
