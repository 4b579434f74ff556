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
package lang

import (
	"context"
	"strings"
	"testing"

	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/engine"
	"github.com/consensys/go-sva/pkg/property"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/consensys/go-sva/pkg/util/source"
)

// ============================================================================
// Boolean expressions
// ============================================================================

func Test_Expr_01(t *testing.T) {
	checkProperty(t, "(&& a (! b))", "(a && !b)")
}

func Test_Expr_02(t *testing.T) {
	checkProperty(t, "(|| a b c)", "(a || b || c)")
}

func Test_Expr_03(t *testing.T) {
	checkProperty(t, "(== data 8'hff)", "(data == 255)")
}

func Test_Expr_04(t *testing.T) {
	checkProperty(t, "(-> req (<= count 3))", "(req -> (count <= 3))")
}

func Test_Expr_05(t *testing.T) {
	checkProperty(t, "(^ (& a b) (~ c))", "((a & b) ^ ~c)")
}

func Test_Expr_06(t *testing.T) {
	checkProperty(t, "($past a 2)", "$past(a, 2)")
}

func Test_Expr_07(t *testing.T) {
	checkProperty(t, "(&& ($rose req) ($stable mode.sel))", "($rose(req) && $stable(mode.sel))")
}

func Test_Expr_08(t *testing.T) {
	checkProperty(t, "(== ($countbits bus 0) 2)", "($countzeros(bus) == 2)")
}

func Test_Expr_09(t *testing.T) {
	checkProperty(t, "($onehot0 grant)", "$onehot0(grant)")
}

// ============================================================================
// Sequences
// ============================================================================

func Test_Seq_01(t *testing.T) {
	checkProperty(t, "(## [1 2] foo bar)", "(foo ##[1:2] bar)")
}

func Test_Seq_02(t *testing.T) {
	checkProperty(t, "(## + a b)", "(a ##[1:$] b)")
}

func Test_Seq_03(t *testing.T) {
	checkProperty(t, "(## * a (## [2 $] b c))", "(a ##[0:$] (b ##[2:$] c))")
}

func Test_Seq_04(t *testing.T) {
	checkProperty(t, "(## 2 a)", "##2 a")
}

func Test_Seq_05(t *testing.T) {
	checkProperty(t, "(* (## 1 a b) [2 3])", "(a ##1 b)[*2:3]")
}

func Test_Seq_06(t *testing.T) {
	checkProperty(t, "(## 1 (+ a) (*-> b 2))", "(a[*1:$] ##1 b[->2])")
}

func Test_Seq_07(t *testing.T) {
	checkProperty(t, "(*= b [1 $])", "b[=1:$]")
}

func Test_Seq_08(t *testing.T) {
	checkProperty(t, "(throughout en (## 1 a b))", "(en throughout (a ##1 b))")
}

func Test_Seq_09(t *testing.T) {
	checkProperty(t, "(or (## 1 a b) c)", "((a ##1 b) or c)")
}

// ============================================================================
// Properties
// ============================================================================

func Test_Prop_01(t *testing.T) {
	checkProperty(t, "(|-> CMDWR (## 1 (* notCMDPRE 15)))", "(CMDWR |-> ##1 notCMDPRE[*15])")
}

func Test_Prop_02(t *testing.T) {
	checkProperty(t, "(|=> req (strong (## [1 $] busy done)))", "(req |=> strong(busy ##[1:$] done))")
}

func Test_Prop_03(t *testing.T) {
	checkProperty(t, "(not (weak (## 1 a b)))", "(not weak(a ##1 b))")
}

func Test_Prop_04(t *testing.T) {
	checkProperty(t, "(or (not a) b)", "((not a) or b)")
}

func Test_Prop_05(t *testing.T) {
	checkProperty(t, "(if c a b)", "(if c a b)")
}

func Test_Prop_06(t *testing.T) {
	checkProperty(t, "(always [0 3] a)", "(always [0:3] a)")
}

func Test_Prop_07(t *testing.T) {
	checkProperty(t, "(s_eventually a)", "(s_eventually a)")
}

func Test_Prop_08(t *testing.T) {
	checkProperty(t, "(s_always [1 2] (eventually [0 4] a))", "(s_always [1:2] (eventually [0:4] a))")
}

func Test_Prop_09(t *testing.T) {
	checkProperty(t, "(until a b)", "(a until b)")
}

func Test_Prop_10(t *testing.T) {
	checkProperty(t, "(s_until_with a (and b c))", "(a s_until_with (b and c))")
}

func Test_Prop_11(t *testing.T) {
	checkProperty(t, "(always (|-> req (s_eventually ack)))", "(always (req |-> (s_eventually ack)))")
}

// ============================================================================
// Declarations
// ============================================================================

func Test_Decl_01(t *testing.T) {
	defs := checkParse(t, "(defsignal clk data@u8)")
	//
	if len(defs.Signals) != 2 || defs.Signals["clk"] != 0 || defs.Signals["data"] != 8 {
		t.Errorf("unexpected signals %v", defs.Signals)
	} else if declared := defs.Declared(); declared == nil || !declared("clk") || declared("other") {
		t.Errorf("unexpected declared signals")
	}
}

func Test_Decl_02(t *testing.T) {
	defs := checkParse(t, "(assert p a)")
	//
	if defs.Declared() != nil {
		t.Errorf("expected no declared signals")
	}
}

func Test_Decl_03(t *testing.T) {
	defs := checkParse(t, "(defsequence s (## 1 a b))\n(assert p1 s)\n(cover c1 (|-> s c))")
	s := defs.Sequences["s"]
	// Check named sequence is shared
	if p1, ok := defs.Directive("p1").Property.(*property.SequenceProperty); !ok || p1.Seq != s {
		t.Errorf("expected p1 to reference s")
	} else if c1, ok := defs.Directive("c1").Property.(*property.Implication); !ok || c1.Antecedent != s {
		t.Errorf("expected c1 to reference s")
	}
}

func Test_Decl_04(t *testing.T) {
	defs := checkParse(t, "(defproperty handshake (|-> req (## 1 ack)))\n(assume q (and handshake (not err)))")
	q := defs.Directive("q")
	//
	if q.Kind != directive.ASSUME {
		t.Errorf("expected assume, got %s", q.Kind)
	} else if and, ok := q.Property.(*property.And); !ok || and.Left != defs.Properties["handshake"] {
		t.Errorf("expected q to reference handshake")
	}
}

func Test_Decl_05(t *testing.T) {
	defs := checkParse(t, "(restrict r (## 1 a b) :disable rst :initial)")
	r := defs.Directive("r")
	//
	if r.Kind != directive.RESTRICT || !r.Initial {
		t.Errorf("unexpected directive %s", r.String())
	} else if r.Disable == nil || r.Disable.String() != "rst" {
		t.Errorf("expected disable condition rst")
	}
}

func Test_Decl_06(t *testing.T) {
	defs := checkParse(t, "(assert b a)\n(cover a b)\n(assume c c)")
	// Directives retain declaration order
	for i, name := range []string{"b", "a", "c"} {
		if defs.Directives[i].Name != name {
			t.Errorf("expected directive %s at position %d, got %s", name, i, defs.Directives[i].Name)
		}
	}
}

func Test_Decl_07(t *testing.T) {
	defs := checkParse(t, "(defsignal a)\n  (assert p a)")
	err := defs.SyntaxError(defs.Directives[0], "failed")
	//
	if err == nil {
		t.Fatalf("expected syntax error")
	} else if line := err.FirstEnclosingLine(); line.Number() != 2 {
		t.Errorf("expected line 2, got %d", line.Number())
	} else if span := err.Span(); span.Length() != len("(assert p a)") {
		t.Errorf("expected span of directive, got %d characters", span.Length())
	}
}

func Test_Decl_08(t *testing.T) {
	files := []source.File{
		*source.NewSourceFile("first.sva", []byte("(defsignal a b)\n(defsequence ab (## 1 a b))")),
		*source.NewSourceFile("second.sva", []byte("(assert p (|-> ab a))")),
	}
	//
	defs, errs := ParseSourceFiles(files)
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %s", errs[0].Message())
	} else if len(defs.Directives) != 1 || len(defs.Signals) != 2 {
		t.Errorf("unexpected definitions")
	}
}

// ============================================================================
// Invalid
// ============================================================================

func Test_Invalid_01(t *testing.T) {
	checkInvalid(t, "(assert p (## [3 1] a b))", "upper bound below lower bound")
}

func Test_Invalid_02(t *testing.T) {
	checkInvalid(t, "(assert p (* a 0))", "repetition count must be positive")
}

func Test_Invalid_03(t *testing.T) {
	checkInvalid(t, "(assert p (s_always a))", "s_always requires a bounded range")
}

func Test_Invalid_04(t *testing.T) {
	checkInvalid(t, "(assert p (eventually [1 $] a))", "eventually requires a bounded range")
}

func Test_Invalid_05(t *testing.T) {
	checkInvalid(t, "(assert p ($past a 0))", "positive depth")
}

func Test_Invalid_06(t *testing.T) {
	checkInvalid(t, "(assert p (&& a (## 1 b c)))", "expected expression, found sequence")
}

func Test_Invalid_07(t *testing.T) {
	checkInvalid(t, "(assert p (|-> (not a) b))", "expected sequence, found property")
}

func Test_Invalid_08(t *testing.T) {
	checkInvalid(t, "(assert p a :foo)", "unknown attribute")
}

func Test_Invalid_09(t *testing.T) {
	checkInvalid(t, "(assert p a)\n(cover p b)", "duplicate directive")
}

func Test_Invalid_10(t *testing.T) {
	checkInvalid(t, "(defsignal a)\n(defsequence a b)", "duplicate definition")
}

func Test_Invalid_11(t *testing.T) {
	checkInvalid(t, "(defsignal a@v3)", "malformed signal type")
}

func Test_Invalid_12(t *testing.T) {
	checkInvalid(t, "(assert p always)", "unexpected keyword")
}

func Test_Invalid_13(t *testing.T) {
	checkInvalid(t, "(frobnicate p a)", "malformed declaration")
}

func Test_Invalid_14(t *testing.T) {
	checkInvalid(t, "(assert p (foo a))", "unknown list")
}

func Test_Invalid_15(t *testing.T) {
	checkInvalid(t, "(assert p (== a 4'q1))", "unknown base")
}

func Test_Invalid_16(t *testing.T) {
	checkInvalid(t, "(assert p (&& a b)", "")
}

func Test_Invalid_17(t *testing.T) {
	checkInvalid(t, "(assert p (always (## 1 a b) c))", "expected range")
}

func Test_Invalid_18(t *testing.T) {
	checkInvalid(t, "(assert p (! a b))", "expected 1 argument(s), found 2")
}

func Test_Invalid_19(t *testing.T) {
	checkInvalid(t, "(assert p (## 1 a b) :disable)", "missing disable condition")
}

func Test_Invalid_20(t *testing.T) {
	checkInvalid(t, "(defsequence s (not a))", "expected sequence, found property")
}

// ============================================================================
// End-to-end
// ============================================================================

func Test_Run_01(t *testing.T) {
	defs := checkParse(t, `
		(defsignal req ack)
		(assert p (|-> req (## [1 2] ack)))
		(cover c (## 2 req ack))
		(assert q (|=> req ack))`)
	//
	tr, err := trace.FromBits(map[string]string{
		"req": "0100000",
		"ack": "0001000",
	})
	if err != nil {
		t.Fatal(err)
	}
	//
	eng, err := engine.New(engine.DefaultConfig(), defs.Directives, defs.Declared())
	if err != nil {
		t.Fatal(err)
	}
	//
	verdicts, err := eng.Run(context.Background(), tr, nil)
	if err != nil {
		t.Fatal(err)
	}
	//
	expected := []directive.VerdictKind{directive.HOLDS, directive.COVERED, directive.VIOLATED}
	//
	for i, v := range verdicts {
		if v.Kind != expected[i] {
			t.Errorf("directive %s: expected %s, got %s", v.Directive, expected[i], v.Kind)
		}
	}
}

func Test_Run_02(t *testing.T) {
	defs := checkParse(t, "(defsignal req)\n(assert p (|-> req gnt))")
	// Undeclared signals are rejected when the engine is constructed
	if _, err := engine.New(engine.DefaultConfig(), defs.Directives, defs.Declared()); err == nil {
		t.Errorf("expected undeclared signal gnt to be rejected")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func checkParse(t *testing.T, input string) *Definitions {
	t.Helper()
	//
	defs, errs := ParseSourceFile(source.NewSourceFile("test.sva", []byte(input)))
	//
	for _, err := range errs {
		t.Errorf("unexpected error: %s", err.Message())
	}
	//
	if len(errs) != 0 {
		t.FailNow()
	}
	//
	return defs
}

func checkProperty(t *testing.T, input string, expected string) {
	t.Helper()
	//
	defs := checkParse(t, "(assert p "+input+")")
	//
	if actual := defs.Directives[0].Property.String(); actual != expected {
		t.Errorf("expected %s, got %s", expected, actual)
	}
}

func checkInvalid(t *testing.T, input string, expected string) {
	t.Helper()
	//
	_, errs := ParseSourceFile(source.NewSourceFile("test.sva", []byte(input)))
	//
	if len(errs) == 0 {
		t.Fatalf("expected error parsing %s", input)
	}
	//
	for _, err := range errs {
		if strings.Contains(err.Message(), expected) {
			return
		}
	}
	//
	t.Errorf("expected error containing \"%s\", got \"%s\"", expected, errs[0].Message())
}
