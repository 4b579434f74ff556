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
package bexp

import (
	"errors"
	"testing"

	"github.com/consensys/go-sva/pkg/bitvec"
	"github.com/consensys/go-sva/pkg/trace"
)

// Trace used for most tests:
//
//	cycle: 0 1 2 3 4
//	a:     0 1 1 0 1
//	b:     1 1 0 0 1
//	v:     3 5 8 8 2   (u4)
var testTrace = buildTrace(map[string][]uint64{
	"a": {0, 1, 1, 0, 1},
	"b": {1, 1, 0, 0, 1},
	"v": {3, 5, 8, 8, 2},
})

var (
	a = NewSignal("a")
	b = NewSignal("b")
	v = NewSignal("v")
)

func Test_Eval_Logical_01(t *testing.T) {
	checkEval(t, NewAnd(a, b), 0, 1, 0, 0, 1)
}

func Test_Eval_Logical_02(t *testing.T) {
	checkEval(t, NewOr(a, b), 1, 1, 1, 0, 1)
}

func Test_Eval_Logical_03(t *testing.T) {
	checkEval(t, NewNot(a), 1, 0, 0, 1, 0)
}

func Test_Eval_Logical_04(t *testing.T) {
	checkEval(t, NewImplies(a, b), 1, 1, 0, 1, 1)
}

func Test_Eval_Compare_01(t *testing.T) {
	checkEval(t, NewCompare(EQ, v, NewConstant(bitvec.FromUint64(8, 4))), 0, 0, 1, 1, 0)
}

func Test_Eval_Compare_02(t *testing.T) {
	checkEval(t, NewCompare(GT, v, NewConstant(bitvec.FromUint64(4, 3))), 0, 1, 1, 1, 0)
}

func Test_Eval_Bitwise_01(t *testing.T) {
	// v & 1 is the LSB of v
	checkEval(t, NewBitwise(BITAND, v, NewConstant(bitvec.FromUint64(1, 1))), 1, 1, 0, 0, 0)
}

func Test_Eval_Bitwise_02(t *testing.T) {
	checkValues(t, NewBitwise(BITNOT, v), 12, 10, 7, 7, 13)
}

func Test_Eval_Past_01(t *testing.T) {
	past, _ := NewPast(v, 1)
	// Before start reads zero
	checkValues(t, past, 0, 3, 5, 8, 8)
}

func Test_Eval_Past_02(t *testing.T) {
	past, _ := NewPast(v, 2)
	//
	checkValues(t, past, 0, 0, 3, 5, 8)
	//
	if past.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", past.Depth())
	}
}

func Test_Eval_Past_03(t *testing.T) {
	if _, err := NewPast(v, 0); err == nil {
		t.Errorf("expected $past with zero depth to be malformed")
	}
}

func Test_Eval_Edge_01(t *testing.T) {
	checkEval(t, NewEdge(ROSE, a), 0, 1, 0, 0, 1)
	checkEval(t, NewEdge(FELL, a), 0, 0, 0, 1, 0)
	checkEval(t, NewEdge(STABLE, a), 1, 0, 1, 0, 0)
	checkEval(t, NewEdge(CHANGED, a), 0, 1, 0, 1, 1)
}

func Test_Eval_Edge_02(t *testing.T) {
	// LSB of v: 1 1 0 0 0
	checkEval(t, NewEdge(FELL, v), 0, 0, 1, 0, 0)
}

func Test_Eval_Count_01(t *testing.T) {
	// v: 0011 0101 1000 1000 0010
	checkEval(t, NewCount(ONEHOT, v), 0, 0, 1, 1, 1)
	checkEval(t, NewCount(ONEHOT0, NewBitwise(BITAND, v, NewConstant(bitvec.FromUint64(0, 4)))), 1, 1, 1, 1, 1)
	checkValues(t, NewCount(COUNTONES, v), 2, 2, 1, 1, 1)
	checkValues(t, NewCount(COUNTZEROS, v), 2, 2, 3, 3, 3)
}

func Test_Eval_Missing_01(t *testing.T) {
	_, err := NewSignal("c").EvalAt(1, testTrace.Window(1))
	//
	var missing *MissingVariableError
	//
	if !errors.As(err, &missing) || missing.Name != "c" || missing.Cycle != 1 {
		t.Errorf("expected missing variable error, got %v", err)
	}
}

func Test_Eval_Missing_02(t *testing.T) {
	// Short-circuit does not reach missing signal
	if ok, err := Holds(NewAnd(NewNot(b), NewSignal("c")), 0, testTrace.Window(0)); err != nil || ok {
		t.Errorf("unexpected result (%t, %v)", ok, err)
	}
}

func Test_Signals_01(t *testing.T) {
	past, _ := NewPast(NewAnd(b, a), 3)
	e := NewOr(past, NewEdge(ROSE, v), a)
	//
	names := e.Signals()
	//
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "v" {
		t.Errorf("unexpected signals %v", names)
	} else if e.Depth() != 3 {
		t.Errorf("expected depth 3, got %d", e.Depth())
	}
	//
	if err := CheckSignals(e, func(n string) bool { return n != "v" }); err == nil {
		t.Errorf("expected unknown signal error")
	}
}

func checkEval(t *testing.T, e Expr, expected ...uint64) {
	t.Helper()
	//
	for k, exp := range expected {
		ok, err := Holds(e, uint(k), testTrace.Window(uint(k)))
		//
		if err != nil {
			t.Fatalf("unexpected error evaluating %s at %d: %s", e, k, err)
		} else if ok != (exp != 0) {
			t.Errorf("evaluating %s at cycle %d: expected %t, got %t", e, k, exp != 0, ok)
		}
	}
}

func checkValues(t *testing.T, e Expr, expected ...uint64) {
	t.Helper()
	//
	for k, exp := range expected {
		val, err := e.EvalAt(uint(k), testTrace.Window(uint(k)))
		//
		if err != nil {
			t.Fatalf("unexpected error evaluating %s at %d: %s", e, k, err)
		} else if actual, _ := val.Uint64(); actual != exp {
			t.Errorf("evaluating %s at cycle %d: expected %d, got %d", e, k, exp, actual)
		}
	}
}

func buildTrace(columns map[string][]uint64) *trace.ArrayTrace {
	var snapshots []*trace.Snapshot
	//
	for name, data := range columns {
		for k, val := range data {
			if k >= len(snapshots) {
				snapshots = append(snapshots, nil)
			}
			//
			values := map[string]bitvec.Vector{}
			//
			if snapshots[k] != nil {
				for _, n := range snapshots[k].Names() {
					values[n], _ = snapshots[k].Get(n)
				}
			}
			//
			width := uint(1)
			if name == "v" {
				width = 4
			}
			//
			values[name] = bitvec.FromUint64(val, width)
			snapshots[k] = trace.NewSnapshot(uint(k), values)
		}
	}
	//
	tr, err := trace.NewArrayTrace(snapshots)
	if err != nil {
		panic(err)
	}
	//
	return tr
}
