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
	"errors"
	"fmt"
	"testing"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/trace"
)

var (
	a = NewBool(bexp.NewSignal("a"))
	b = NewBool(bexp.NewSignal("b"))
	c = NewBool(bexp.NewSignal("c"))
)

func Test_Match_Bool_01(t *testing.T) {
	checkMatches(t, a, map[string]string{"a": "0110"}, "[1:1]", "[2:2]")
}

func Test_Match_Concat_01(t *testing.T) {
	// a ##1 b
	checkMatches(t, NewConcat(a, Exactly(1), b),
		map[string]string{"a": "0110", "b": "0011"}, "[1:2]", "[2:3]")
}

func Test_Match_Concat_02(t *testing.T) {
	// a ##0 b (fusion)
	checkMatches(t, NewConcat(a, Exactly(0), b),
		map[string]string{"a": "0110", "b": "0011"}, "[2:2]")
}

func Test_Match_Concat_03(t *testing.T) {
	// foo ##[1:2] bar, with foo at cycle 2 and bar at cycles 3 and 4
	checkMatches(t, NewConcat(NewBool(bexp.NewSignal("foo")), Between(1, 2), NewBool(bexp.NewSignal("bar"))),
		map[string]string{"foo": "0010000", "bar": "0001100"}, "[2:3]", "[2:4]")
}

func Test_Match_Concat_04(t *testing.T) {
	// a ##[2:$] b
	checkMatches(t, NewConcat(a, AtLeast(2), b),
		map[string]string{"a": "100000", "b": "011001"}, "[0:2]", "[0:5]")
}

func Test_Match_Concat_05(t *testing.T) {
	// Leading delay: ##2 b
	checkMatches(t, NewDelay(Exactly(2), b),
		map[string]string{"b": "00101"}, "[0:2]", "[2:4]")
}

func Test_Match_Repeat_01(t *testing.T) {
	// a[*3]
	checkMatches(t, NewRepeat(a, Exactly(3)),
		map[string]string{"a": "011110"}, "[1:3]", "[2:4]")
}

func Test_Match_Repeat_02(t *testing.T) {
	// a[*1:2] ##1 b
	checkMatches(t, NewConcat(NewRepeat(a, Between(1, 2)), Exactly(1), b),
		map[string]string{"a": "1110", "b": "0011"}, "[0:2]", "[1:2]", "[1:3]", "[2:3]")
}

func Test_Match_Repeat_03(t *testing.T) {
	// (a ##1 b)[*2]
	checkMatches(t, NewRepeat(NewConcat(a, Exactly(1), b), Exactly(2)),
		map[string]string{"a": "10100", "b": "01010"}, "[0:3]")
}

func Test_Match_Repeat_04(t *testing.T) {
	// a[+] ##1 b
	checkMatches(t, NewConcat(NewRepeat(a, AtLeast(1)), Exactly(1), b),
		map[string]string{"a": "1100", "b": "0010"}, "[0:2]", "[1:2]")
}

func Test_Match_Goto_01(t *testing.T) {
	// a ##1 b[->2]
	checkMatches(t, NewConcat(a, Exactly(1), NewGoto(bexp.NewSignal("b"), Exactly(2))),
		map[string]string{"a": "100000", "b": "010010"}, "[0:4]")
}

func Test_Match_NonConsecutive_01(t *testing.T) {
	// a ##1 b[=1] ##1 c
	checkMatches(t, NewConcat(NewConcat(a, Exactly(1), NewNonConsecutive(bexp.NewSignal("b"), Exactly(1))),
		Exactly(1), c), map[string]string{"a": "10000", "b": "01000", "c": "00111"}, "[0:2]", "[0:3]", "[0:4]")
}

func Test_Match_NonConsecutive_02(t *testing.T) {
	// A second occurrence of b cuts off the trailing matches.
	checkMatches(t, NewConcat(NewConcat(a, Exactly(1), NewNonConsecutive(bexp.NewSignal("b"), Exactly(1))),
		Exactly(1), c), map[string]string{"a": "10000", "b": "01010", "c": "00111"}, "[0:2]", "[0:3]")
}

func Test_Match_Or_01(t *testing.T) {
	// (a ##1 b) or (a ##2 c)
	checkMatches(t, NewOr(NewConcat(a, Exactly(1), b), NewConcat(a, Exactly(2), c)),
		map[string]string{"a": "1000", "b": "0100", "c": "0010"}, "[0:1]", "[0:2]")
}

func Test_Match_Throughout_01(t *testing.T) {
	// c throughout (a ##2 b)
	checkMatches(t, NewThroughout(bexp.NewSignal("c"), NewConcat(a, Exactly(2), b)),
		map[string]string{"a": "11000", "b": "00110", "c": "11101"}, "[0:2]")
}

func Test_Match_Malformed_01(t *testing.T) {
	checkMalformed(t, NewConcat(a, Between(3, 1), b))
}

func Test_Match_Malformed_02(t *testing.T) {
	checkMalformed(t, NewRepeat(a, Exactly(0)))
}

func Test_Match_Malformed_03(t *testing.T) {
	checkMalformed(t, NewGoto(bexp.NewSignal("a"), Between(2, 1)))
}

func Test_Match_Overflow_01(t *testing.T) {
	// a ##[1:$] b with b never true accumulates one attempt per start
	program, _ := Compile(NewConcat(a, AtLeast(1), b))
	tr, _ := trace.FromBits(map[string]string{"a": "1111", "b": "0000"})
	matcher := NewMatcher(program, NewBudget(2))
	//
	var err error
	//
	for i := uint(0); i < tr.Height() && err == nil; i++ {
		_, err = matcher.Advance(tr.Window(i), true)
	}
	//
	var overflow *AttemptOverflowError
	//
	if !errors.As(err, &overflow) || overflow.Limit != 2 {
		t.Errorf("expected attempt overflow, got %v", err)
	}
}

func Test_Match_Merge_01(t *testing.T) {
	// Unbounded delays from the same start merge into one attempt.
	program, _ := Compile(NewConcat(a, AtLeast(1), b))
	tr, _ := trace.FromBits(map[string]string{"a": "100000", "b": "000000"})
	matcher := NewMatcher(program, nil)
	//
	for i := uint(0); i < tr.Height(); i++ {
		if _, err := matcher.Advance(tr.Window(i), i == 0); err != nil {
			t.Fatal(err)
		}
	}
	//
	if matcher.Outstanding() != 1 || !matcher.Live(0) || !matcher.Progressed(0) {
		t.Errorf("expected exactly one outstanding attempt, got %d", matcher.Outstanding())
	}
}

func Test_Match_Progress_01(t *testing.T) {
	program, _ := Compile(NewConcat(a, Exactly(1), b))
	tr, _ := trace.FromBits(map[string]string{"a": "01", "b": "00"})
	matcher := NewMatcher(program, nil)
	//
	if _, err := matcher.Advance(tr.Window(0), true); err != nil {
		t.Fatal(err)
	} else if matcher.Live(0) || matcher.Progressed(0) {
		t.Errorf("attempt failing at first check should not have progressed")
	}
	//
	if _, err := matcher.Advance(tr.Window(1), true); err != nil {
		t.Fatal(err)
	} else if !matcher.Live(1) || !matcher.Progressed(1) {
		t.Errorf("attempt passing first check should have progressed")
	}
}

func Test_Match_Progress_02(t *testing.T) {
	// c throughout (a ##1 b) where c holds but a does not
	program, _ := Compile(NewThroughout(bexp.NewSignal("c"), NewConcat(a, Exactly(1), b)))
	tr, _ := trace.FromBits(map[string]string{"a": "01", "b": "00", "c": "11"})
	matcher := NewMatcher(program, nil)
	//
	if _, err := matcher.Advance(tr.Window(0), true); err != nil {
		t.Fatal(err)
	} else if matcher.Live(0) || matcher.Progressed(0) {
		t.Errorf("throughout condition alone should not count as progress")
	}
	//
	if _, err := matcher.Advance(tr.Window(1), true); err != nil {
		t.Fatal(err)
	} else if !matcher.Live(1) || !matcher.Progressed(1) {
		t.Errorf("attempt passing first check should have progressed")
	}
}

func Test_Match_NonContiguous_01(t *testing.T) {
	program, _ := Compile(a)
	tr, _ := trace.FromBits(map[string]string{"a": "000"})
	matcher := NewMatcher(program, nil)
	//
	_, _ = matcher.Advance(tr.Window(0), true)
	//
	if _, err := matcher.Advance(tr.Window(2), true); err == nil {
		t.Errorf("expected non-contiguous cycle error")
	}
}

func Test_Match_Skip_01(t *testing.T) {
	program, _ := Compile(NewConcat(a, Exactly(1), b))
	tr, _ := trace.FromBits(map[string]string{"a": "1000", "b": "0001"})
	matcher := NewMatcher(program, nil)
	//
	_, _ = matcher.Advance(tr.Window(0), true)
	// Cycles 1 and 2 are excluded
	matcher.Skip(3)
	//
	if ms, err := matcher.Advance(tr.Window(3), false); err != nil {
		t.Fatal(err)
	} else if fmt.Sprintf("%v", ms) != "[[0:3]]" {
		t.Errorf("expected [[0:3]], got %v", ms)
	}
}

func Test_MinLength_01(t *testing.T) {
	checkMinLength(t, a, 1)
	checkMinLength(t, NewConcat(a, Exactly(0), b), 1)
	checkMinLength(t, NewConcat(a, Between(1, 2), b), 2)
	checkMinLength(t, NewDelay(Exactly(2), b), 3)
	checkMinLength(t, NewRepeat(a, Exactly(3)), 3)
	checkMinLength(t, NewOr(a, NewConcat(a, Exactly(1), b)), 1)
}

func checkMatches(t *testing.T, s Sequence, waveforms map[string]string, expected ...string) {
	t.Helper()
	//
	program, err := Compile(s)
	if err != nil {
		t.Fatal(err)
	}
	//
	tr, err := trace.FromBits(waveforms)
	if err != nil {
		t.Fatal(err)
	}
	//
	matches, err := Matches(program, tr)
	if err != nil {
		t.Fatal(err)
	}
	//
	actual := fmt.Sprintf("%v", matches)
	//
	if exp := fmt.Sprintf("%v", expected); actual != exp {
		t.Errorf("sequence %s: expected matches %s, got %s", s.String(), exp, actual)
	}
}

func checkMalformed(t *testing.T, s Sequence) {
	t.Helper()
	//
	var malformed *bexp.MalformedExpressionError
	//
	if _, err := Compile(s); !errors.As(err, &malformed) {
		t.Errorf("expected sequence %s to be malformed, got %v", s.String(), err)
	}
}

func checkMinLength(t *testing.T, s Sequence, expected uint) {
	t.Helper()
	//
	if n := MinLength(s); n != expected {
		t.Errorf("sequence %s: expected minimum length %d, got %d", s.String(), expected, n)
	}
}
