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
	"math/big"

	"github.com/consensys/go-sva/pkg/bitvec"
	"github.com/consensys/go-sva/pkg/trace"
)

var (
	// TRUE is the single-bit value 1.
	TRUE = bitvec.FromBool(true)
	// FALSE is the single-bit value 0.
	FALSE = bitvec.FromBool(false)
)

// EvalAt evaluates a signal reference at a given cycle.
func (e *Signal) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	snapshot, ok := w.At(cycle)
	//
	if !ok {
		return bitvec.Vector{}, &UndefinedHistoryError{w.Cycle() - cycle, 0}
	} else if val, ok := snapshot.Get(e.Name); ok {
		return val, nil
	}
	//
	return bitvec.Vector{}, &MissingVariableError{e.Name, cycle}
}

// EvalAt evaluates a constant at a given cycle.
func (e *Constant) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	return e.Value, nil
}

// EvalAt evaluates a logical negation at a given cycle.
func (e *Not) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	val, err := e.Arg.EvalAt(cycle, w)
	//
	return bitvec.FromBool(err == nil && !val.Truth()), err
}

// EvalAt evaluates a logical conjunction at a given cycle.  Evaluation stops at
// the first false argument.
func (e *And) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	for _, arg := range e.Args {
		if val, err := arg.EvalAt(cycle, w); err != nil {
			return FALSE, err
		} else if !val.Truth() {
			return FALSE, nil
		}
	}
	//
	return TRUE, nil
}

// EvalAt evaluates a logical disjunction at a given cycle.  Evaluation stops at
// the first true argument.
func (e *Or) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	for _, arg := range e.Args {
		if val, err := arg.EvalAt(cycle, w); err != nil {
			return FALSE, err
		} else if val.Truth() {
			return TRUE, nil
		}
	}
	//
	return FALSE, nil
}

// EvalAt evaluates a logical implication at a given cycle.
func (e *Implies) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	if lhs, err := e.Lhs.EvalAt(cycle, w); err != nil {
		return FALSE, err
	} else if !lhs.Truth() {
		return TRUE, nil
	}
	//
	rhs, err := e.Rhs.EvalAt(cycle, w)
	//
	return bitvec.FromBool(rhs.Truth()), err
}

// EvalAt evaluates a relational comparison at a given cycle.
func (e *Compare) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	lhs, err := e.Lhs.EvalAt(cycle, w)
	if err != nil {
		return FALSE, err
	}
	//
	rhs, err := e.Rhs.EvalAt(cycle, w)
	if err != nil {
		return FALSE, err
	}
	//
	c := lhs.Cmp(rhs)
	//
	switch e.Op {
	case EQ:
		return bitvec.FromBool(c == 0), nil
	case NEQ:
		return bitvec.FromBool(c != 0), nil
	case LT:
		return bitvec.FromBool(c < 0), nil
	case LTEQ:
		return bitvec.FromBool(c <= 0), nil
	case GT:
		return bitvec.FromBool(c > 0), nil
	default:
		return bitvec.FromBool(c >= 0), nil
	}
}

// EvalAt evaluates a bitwise operation at a given cycle.
func (e *Bitwise) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	acc, err := e.Args[0].EvalAt(cycle, w)
	//
	if err != nil {
		return acc, err
	} else if e.Op == BITNOT {
		return acc.Not(), nil
	}
	//
	for _, arg := range e.Args[1:] {
		val, err := arg.EvalAt(cycle, w)
		if err != nil {
			return val, err
		}
		//
		switch e.Op {
		case BITAND:
			acc = acc.And(val)
		case BITOR:
			acc = acc.Or(val)
		default:
			acc = acc.Xor(val)
		}
	}
	//
	return acc, nil
}

// EvalAt evaluates $past at a given cycle.  Reads before the start of the trace
// give zero, with the width of the argument at the current cycle.
func (e *Past) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	if cycle >= e.N {
		return e.Arg.EvalAt(cycle-e.N, w)
	}
	// Before start of trace
	val, err := e.Arg.EvalAt(cycle, w)
	//
	return bitvec.New(val.Width()), err
}

// EvalAt evaluates a value-change function at a given cycle.  The previous
// value before the start of the trace is zero.
func (e *Edge) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	val, err := e.Arg.EvalAt(cycle, w)
	if err != nil {
		return FALSE, err
	}
	//
	var (
		curr = val.Lsb()
		prev bool
	)
	//
	if cycle > 0 {
		if val, err = e.Arg.EvalAt(cycle-1, w); err != nil {
			return FALSE, err
		}
		//
		prev = val.Lsb()
	}
	//
	switch e.Kind {
	case ROSE:
		return bitvec.FromBool(curr && !prev), nil
	case FELL:
		return bitvec.FromBool(!curr && prev), nil
	case STABLE:
		return bitvec.FromBool(curr == prev), nil
	default:
		return bitvec.FromBool(curr != prev), nil
	}
}

// EvalAt evaluates a bit-counting function at a given cycle.
func (e *Count) EvalAt(cycle uint, w trace.Window) (bitvec.Vector, error) {
	val, err := e.Arg.EvalAt(cycle, w)
	if err != nil {
		return FALSE, err
	}
	//
	ones := val.Count()
	//
	switch e.Kind {
	case ONEHOT:
		return bitvec.FromBool(ones == 1), nil
	case ONEHOT0:
		return bitvec.FromBool(ones <= 1), nil
	case COUNTONES:
		return countOf(ones, val.Width()), nil
	default:
		return countOf(val.Width()-ones, val.Width()), nil
	}
}

// Construct a vector holding a count, which is wide enough to hold any count of
// bits for the given width.
func countOf(n uint, width uint) bitvec.Vector {
	w := trace.InferWidth(new(big.Int).SetUint64(uint64(width)))
	return bitvec.FromUint64(uint64(n), w)
}
