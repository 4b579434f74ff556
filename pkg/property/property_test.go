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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
)

var (
	a = seq.NewBool(bexp.NewSignal("a"))
	b = seq.NewBool(bexp.NewSignal("b"))
	c = seq.NewBool(bexp.NewSignal("c"))
)

// ============================================================================
// Sequences
// ============================================================================

func Test_Monitor_Weak_01(t *testing.T) {
	// a ##[1:$] b, where b never occurs
	checkMonitor(t, weak(seq.NewConcat(a, seq.AtLeast(1), b)),
		map[string]string{"a": "0100", "b": "0000"}, "1@3:weak-pending")
}

func Test_Monitor_Strong_01(t *testing.T) {
	// strong(a ##[1:$] b), where b never occurs
	checkMonitor(t, strong(seq.NewConcat(a, seq.AtLeast(1), b)),
		map[string]string{"a": "0100", "b": "0000"}, "0@3:strong-pending", "1@3:strong-pending")
}

func Test_Monitor_Strong_02(t *testing.T) {
	// An obligation which is never taken up leaves strong(a ##1 b) unmet, whilst
	// weak(a ##1 b) holds vacuously.
	checkMonitor(t, strong(seq.NewConcat(a, seq.Exactly(1), b)),
		map[string]string{"a": "000", "b": "000"}, "0@2:strong-pending")
	checkMonitor(t, weak(seq.NewConcat(a, seq.Exactly(1), b)),
		map[string]string{"a": "000", "b": "000"})
}

func Test_Monitor_Sequence_01(t *testing.T) {
	// Single cycle sequences are never vacuous
	checkMonitor(t, weak(a), map[string]string{"a": "101"}, "0@0:holds", "1@1:violated", "2@2:holds")
}

func Test_Monitor_Sequence_02(t *testing.T) {
	// a ##1 b
	checkMonitor(t, weak(seq.NewConcat(a, seq.Exactly(1), b)),
		map[string]string{"a": "1100", "b": "0100"}, "0@1:holds", "1@2:violated")
}

func Test_Monitor_Sequence_03(t *testing.T) {
	var (
		foo = seq.NewBool(bexp.NewSignal("foo"))
		bar = seq.NewBool(bexp.NewSignal("bar"))
		tr  = waveforms(t, map[string]string{
			"foo": "00100000000000000000",
			"bar": "00011000000000000000",
		})
	)
	// foo ##[1:2] bar over 20 cycles
	monitor, results := run(t, weak(seq.NewConcat(foo, seq.Between(1, 2), bar)), tr)
	//
	checkResults(t, results, "2@3:holds")
	//
	if actual := fmt.Sprintf("%v", monitor.Matches()); actual != "[[2:3] [2:4]]" {
		t.Errorf("expected matches [[2:3] [2:4]], got %s", actual)
	}
}

// ============================================================================
// Implication
// ============================================================================

func Test_Monitor_Implication_01(t *testing.T) {
	// CMDWR |-> ##1 notCMDPRE[*15]
	checkMonitor(t, cmdwr(), map[string]string{
		"CMDWR":     "1" + strings.Repeat("0", 19),
		"notCMDPRE": "0" + strings.Repeat("1", 15) + "0000",
	}, "0@15:holds")
}

func Test_Monitor_Implication_02(t *testing.T) {
	// CMDWR |-> ##1 notCMDPRE[*15], with notCMDPRE failing at cycle 8
	checkMonitor(t, cmdwr(), map[string]string{
		"CMDWR":     "1" + strings.Repeat("0", 19),
		"notCMDPRE": "0" + strings.Repeat("1", 7) + "0" + strings.Repeat("1", 11),
	}, "0@8:violated")
}

func Test_Monitor_Implication_03(t *testing.T) {
	// Antecedent never matches
	checkMonitor(t, NewImplication(a, weak(b), true), map[string]string{"a": "000", "b": "000"})
}

func Test_Monitor_Implication_04(t *testing.T) {
	// a |=> b
	checkMonitor(t, NewImplication(a, weak(b), false),
		map[string]string{"a": "0100", "b": "0010"}, "1@2:holds")
}

func Test_Monitor_Implication_05(t *testing.T) {
	// a |=> b
	checkMonitor(t, NewImplication(a, weak(b), false),
		map[string]string{"a": "0100", "b": "0000"}, "1@2:violated")
}

func Test_Monitor_Implication_06(t *testing.T) {
	// a |=> b, where obligation begins after the trace.
	checkMonitor(t, NewImplication(a, weak(b), false),
		map[string]string{"a": "0001", "b": "0000"}, "3@3:weak-pending")
}

func Test_Monitor_Implication_07(t *testing.T) {
	// a ##[0:1] b |-> c, with two antecedent matches from one attempt
	checkMonitor(t, NewImplication(seq.NewConcat(a, seq.Between(0, 1), b), weak(c), true),
		map[string]string{"a": "100", "b": "110", "c": "100"}, "0@0:holds", "0@1:violated")
}

// ============================================================================
// Logical Operators
// ============================================================================

func Test_Monitor_Not_01(t *testing.T) {
	// not (a ##1 b)
	checkMonitor(t, NewNot(weak(seq.NewConcat(a, seq.Exactly(1), b))),
		map[string]string{"a": "10", "b": "01"}, "0@1:violated", "1@1:holds")
}

func Test_Evaluate_Not_01(t *testing.T) {
	// Weak and strong are swapped at the end of the trace
	checkEvaluate(t, NewNot(strong(seq.NewConcat(a, seq.AtLeast(1), b))),
		map[string]string{"a": "10", "b": "00"}, WEAK_PENDING, 2)
}

func Test_Evaluate_And_01(t *testing.T) {
	checkEvaluate(t, NewAnd(weak(a), weak(seq.NewDelay(seq.Exactly(1), b))),
		map[string]string{"a": "10", "b": "00"}, VIOLATED, 1)
}

func Test_Evaluate_And_02(t *testing.T) {
	checkEvaluate(t, NewAnd(weak(a), weak(seq.NewDelay(seq.Exactly(1), b))),
		map[string]string{"a": "10", "b": "01"}, HOLDS, 1)
}

func Test_Evaluate_Or_01(t *testing.T) {
	// (a ##1 b) or (a ##2 c)
	checkEvaluate(t, NewOr(weak(seq.NewConcat(a, seq.Exactly(1), b)), weak(seq.NewConcat(a, seq.Exactly(2), c))),
		map[string]string{"a": "100", "b": "000", "c": "001"}, HOLDS, 2)
}

func Test_Evaluate_Or_02(t *testing.T) {
	checkEvaluate(t, NewOr(weak(a), weak(b)), map[string]string{"a": "0", "b": "0"}, VIOLATED, 0)
}

func Test_Evaluate_If_01(t *testing.T) {
	cond := bexp.NewSignal("a")
	//
	checkEvaluate(t, NewIfElse(cond, weak(b), nil), map[string]string{"a": "0", "b": "0"}, VACUOUS, 0)
	checkEvaluate(t, NewIfElse(cond, weak(b), nil), map[string]string{"a": "1", "b": "0"}, VIOLATED, 0)
	checkEvaluate(t, NewIfElse(cond, weak(b), weak(c)), map[string]string{"a": "0", "b": "0", "c": "1"}, HOLDS, 0)
}

// ============================================================================
// Temporal Operators
// ============================================================================

func Test_Evaluate_Always_01(t *testing.T) {
	checkEvaluate(t, NewAlways(weak(a), nil, false), map[string]string{"a": "111"}, WEAK_PENDING, 3)
}

func Test_Evaluate_Always_02(t *testing.T) {
	checkEvaluate(t, NewAlways(weak(a), nil, false), map[string]string{"a": "1101"}, VIOLATED, 2)
}

func Test_Evaluate_Always_03(t *testing.T) {
	rng := seq.Between(1, 2)
	// always [1:2] a
	checkEvaluate(t, NewAlways(weak(a), &rng, false), map[string]string{"a": "0110"}, HOLDS, 2)
	// s_always [1:2] a, where the trace ends early
	checkEvaluate(t, NewAlways(weak(a), &rng, true), map[string]string{"a": "01"}, STRONG_PENDING, 2)
}

func Test_Evaluate_Eventually_01(t *testing.T) {
	checkEvaluate(t, NewEventually(weak(a), nil, true), map[string]string{"a": "001"}, HOLDS, 2)
}

func Test_Evaluate_Eventually_02(t *testing.T) {
	checkEvaluate(t, NewEventually(weak(a), nil, true), map[string]string{"a": "000"}, STRONG_PENDING, 3)
}

func Test_Evaluate_Eventually_03(t *testing.T) {
	rng := seq.Between(1, 2)
	// eventually [1:2] a
	checkEvaluate(t, NewEventually(weak(a), &rng, false), map[string]string{"a": "1000"}, VIOLATED, 2)
	checkEvaluate(t, NewEventually(weak(a), &rng, false), map[string]string{"a": "1"}, WEAK_PENDING, 1)
}

func Test_Evaluate_Until_01(t *testing.T) {
	checkEvaluate(t, NewUntil(weak(a), weak(b), false, false),
		map[string]string{"a": "1100", "b": "0010"}, HOLDS, 2)
}

func Test_Evaluate_Until_02(t *testing.T) {
	checkEvaluate(t, NewUntil(weak(a), weak(b), false, false),
		map[string]string{"a": "1000", "b": "0010"}, VIOLATED, 1)
}

func Test_Evaluate_Until_03(t *testing.T) {
	// b never occurs
	checkEvaluate(t, NewUntil(weak(a), weak(b), false, false),
		map[string]string{"a": "111", "b": "000"}, WEAK_PENDING, 3)
	checkEvaluate(t, NewUntil(weak(a), weak(b), true, false),
		map[string]string{"a": "111", "b": "000"}, STRONG_PENDING, 3)
}

func Test_Evaluate_Until_04(t *testing.T) {
	// until_with requires a at the cycle b occurs
	checkEvaluate(t, NewUntil(weak(a), weak(b), false, true),
		map[string]string{"a": "1110", "b": "0010"}, HOLDS, 2)
	checkEvaluate(t, NewUntil(weak(a), weak(b), false, true),
		map[string]string{"a": "1100", "b": "0010"}, VIOLATED, 2)
}

// ============================================================================
// Construction
// ============================================================================

func Test_Resolve_01(t *testing.T) {
	var (
		p = NewImplication(a, NewSequence(b, DEFAULT), true)
		q = NewSequence(c, WEAK)
	)
	//
	if actual := Resolve(p, true).String(); actual != "(a |-> strong(b))" {
		t.Errorf("unexpected resolution %s", actual)
	} else if actual := Resolve(p, false).String(); actual != "(a |-> weak(b))" {
		t.Errorf("unexpected resolution %s", actual)
	} else if Resolve(q, true) != q {
		t.Errorf("explicit strength should not be resolved")
	}
}

func Test_Malformed_01(t *testing.T) {
	checkMalformed(t, NewAlways(weak(a), nil, true))
}

func Test_Malformed_02(t *testing.T) {
	checkMalformed(t, NewEventually(weak(a), nil, false))
}

func Test_Malformed_03(t *testing.T) {
	rng := seq.Between(3, 1)
	checkMalformed(t, NewEventually(weak(a), &rng, true))
}

func Test_Malformed_04(t *testing.T) {
	checkMalformed(t, NewNot(weak(seq.NewRepeat(a, seq.Exactly(0)))))
}

func Test_Overflow_01(t *testing.T) {
	var (
		tr     = waveforms(t, map[string]string{"a": "1111", "b": "0000"})
		p      = weak(seq.NewConcat(a, seq.AtLeast(1), b))
		c, _   = Compile(p)
		budget = seq.NewBudget(2)
		m      = NewMonitor(c, budget, true)
		err    error
	)
	//
	for i := uint(0); i < tr.Height() && err == nil; i++ {
		_, err = m.Step(tr.Window(i), true)
	}
	//
	var overflow *seq.AttemptOverflowError
	if !errors.As(err, &overflow) {
		t.Errorf("expected attempt overflow, got %v", err)
	}
}

func Test_Overflow_02(t *testing.T) {
	var (
		tr     = waveforms(t, map[string]string{"a": "1111", "b": "0000"})
		c, _   = Compile(NewAlways(weak(a), nil, false))
		budget = seq.NewBudget(2)
		m      = NewMonitor(c, budget, true)
		err    error
		cycle  uint
	)
	// Each cycle starts a new always obligation, none of which ever resolves.
	for ; cycle < tr.Height() && err == nil; cycle++ {
		_, err = m.Step(tr.Window(cycle), true)
	}
	//
	var overflow *seq.AttemptOverflowError
	if !errors.As(err, &overflow) || overflow.Outstanding != 3 || cycle != 3 {
		t.Errorf("expected attempt overflow at cycle 2, got %v", err)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func weak(s seq.Sequence) Property {
	return NewSequence(s, WEAK)
}

func strong(s seq.Sequence) Property {
	return NewSequence(s, STRONG)
}

func cmdwr() Property {
	var (
		cmd = seq.NewBool(bexp.NewSignal("CMDWR"))
		pre = seq.NewBool(bexp.NewSignal("notCMDPRE"))
	)
	//
	return NewImplication(cmd, weak(seq.NewDelay(seq.Exactly(1), seq.NewRepeat(pre, seq.Exactly(15)))), true)
}

func waveforms(t *testing.T, waves map[string]string) trace.Trace {
	t.Helper()
	//
	tr, err := trace.FromBits(waves)
	if err != nil {
		t.Fatal(err)
	}
	//
	return tr
}

// Run a monitor over a trace, spawning an attempt at every cycle.
func run(t *testing.T, p Property, tr trace.Trace) (*Monitor, []Result) {
	t.Helper()
	//
	c, err := Compile(p)
	if err != nil {
		t.Fatal(err)
	}
	//
	var (
		monitor = NewMonitor(c, nil, true)
		results []Result
	)
	//
	for i := uint(0); i < tr.Height(); i++ {
		rs, err := monitor.Step(tr.Window(i), true)
		if err != nil {
			t.Fatal(err)
		}
		//
		results = append(results, rs...)
	}
	//
	return monitor, append(results, monitor.Finish()...)
}

func checkMonitor(t *testing.T, p Property, waves map[string]string, expected ...string) {
	t.Helper()
	//
	_, results := run(t, p, waveforms(t, waves))
	checkResults(t, results, expected...)
}

// Check all non-vacuous results match those expected.
func checkResults(t *testing.T, results []Result, expected ...string) {
	t.Helper()
	//
	var actual []string
	//
	for _, r := range results {
		if r.Outcome != VACUOUS {
			actual = append(actual, fmt.Sprintf("%d@%d:%s", r.Start, r.Cycle, r.Outcome.String()))
		}
	}
	//
	if strings.Join(actual, " ") != strings.Join(expected, " ") {
		t.Errorf("expected results %v, got %v", expected, actual)
	}
}

// Evaluate a single attempt from cycle 0, checking both the final outcome and
// the cycle at which it was resolved (or the trace height if unresolved).
func checkEvaluate(t *testing.T, p Property, waves map[string]string, expected Outcome, cycle uint) {
	t.Helper()
	//
	var (
		tr     = waveforms(t, waves)
		c, err = Compile(p)
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	evaluator := NewEvaluator(c, nil)
	//
	for i := uint(0); i < tr.Height(); i++ {
		outcome, err := evaluator.Step(tr.Window(i))
		if err != nil {
			t.Fatal(err)
		} else if outcome != PENDING {
			if outcome != expected || i != cycle {
				t.Errorf("expected %s at cycle %d, got %s at cycle %d", expected, cycle, outcome, i)
			}
			//
			return
		}
	}
	//
	if outcome := evaluator.Finish(); outcome != expected || tr.Height() != cycle {
		t.Errorf("expected %s at cycle %d, got %s at end of trace", expected, cycle, outcome)
	}
}

func checkMalformed(t *testing.T, p Property) {
	t.Helper()
	//
	var malformed *bexp.MalformedExpressionError
	//
	if _, err := Compile(p); !errors.As(err, &malformed) {
		t.Errorf("expected malformed property, got %v", err)
	}
}
