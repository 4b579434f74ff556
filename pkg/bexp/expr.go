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
	"fmt"
	"slices"
	"strings"

	"github.com/consensys/go-sva/pkg/bitvec"
	"github.com/consensys/go-sva/pkg/trace"
)

// Expr represents a Boolean (or, more generally, bit-vector valued) expression
// over the signals of a trace.  Expressions are side-effect free functions of
// the snapshot at a given cycle and, for history operators such as $past, a
// bounded number of preceding snapshots.  An expression is considered true
// when any bit of its value is set.
type Expr interface {
	// EvalAt evaluates this expression at a given cycle of a window, which
	// must be no later than the window's current cycle.
	EvalAt(cycle uint, window trace.Window) (bitvec.Vector, error)
	// Depth returns the number of cycles of history needed to evaluate this
	// expression (i.e. the deepest $past).
	Depth() uint
	// Signals returns the (sorted) set of signal names referenced by this
	// expression.
	Signals() []string
	// String returns a human-readable representation of this expression.
	String() string
}

// Holds evaluates a given expression at a cycle and interprets the result as a
// Boolean.
func Holds(e Expr, cycle uint, window trace.Window) (bool, error) {
	val, err := e.EvalAt(cycle, window)
	//
	return val.Truth(), err
}

// CheckSignals checks that every signal referenced by an expression is
// declared.
func CheckSignals(e Expr, declared func(string) bool) error {
	for _, name := range e.Signals() {
		if !declared(name) {
			return Malformed("unknown signal %s", name)
		}
	}
	//
	return nil
}

// ============================================================================
// Leaves
// ============================================================================

// Signal represents a reference to a named signal in the trace.
type Signal struct {
	Name string
}

// NewSignal constructs a new signal reference.
func NewSignal(name string) *Signal {
	return &Signal{name}
}

// Depth implementation for Expr interface.
func (e *Signal) Depth() uint { return 0 }

// Signals implementation for Expr interface.
func (e *Signal) Signals() []string { return []string{e.Name} }

func (e *Signal) String() string { return e.Name }

// Constant represents a fixed bit-vector value.
type Constant struct {
	Value bitvec.Vector
}

// NewConstant constructs a new constant expression.
func NewConstant(val bitvec.Vector) *Constant {
	return &Constant{val}
}

// Depth implementation for Expr interface.
func (e *Constant) Depth() uint { return 0 }

// Signals implementation for Expr interface.
func (e *Constant) Signals() []string { return nil }

func (e *Constant) String() string { return e.Value.String() }

// ============================================================================
// Logical
// ============================================================================

// Not represents logical negation (!).
type Not struct {
	Arg Expr
}

// NewNot constructs a logical negation.
func NewNot(arg Expr) *Not { return &Not{arg} }

// Depth implementation for Expr interface.
func (e *Not) Depth() uint { return e.Arg.Depth() }

// Signals implementation for Expr interface.
func (e *Not) Signals() []string { return e.Arg.Signals() }

func (e *Not) String() string { return fmt.Sprintf("!%s", e.Arg.String()) }

// And represents logical conjunction (&&) of one or more expressions.
type And struct {
	Args []Expr
}

// NewAnd constructs a logical conjunction.
func NewAnd(args ...Expr) *And { return &And{args} }

// Depth implementation for Expr interface.
func (e *And) Depth() uint { return maxDepth(e.Args...) }

// Signals implementation for Expr interface.
func (e *And) Signals() []string { return signalsOf(e.Args...) }

func (e *And) String() string { return infix("&&", e.Args...) }

// Or represents logical disjunction (||) of one or more expressions.
type Or struct {
	Args []Expr
}

// NewOr constructs a logical disjunction.
func NewOr(args ...Expr) *Or { return &Or{args} }

// Depth implementation for Expr interface.
func (e *Or) Depth() uint { return maxDepth(e.Args...) }

// Signals implementation for Expr interface.
func (e *Or) Signals() []string { return signalsOf(e.Args...) }

func (e *Or) String() string { return infix("||", e.Args...) }

// Implies represents logical implication (->), which holds if either the left
// side is false or the right side is true.
type Implies struct {
	Lhs Expr
	Rhs Expr
}

// NewImplies constructs a logical implication.
func NewImplies(lhs Expr, rhs Expr) *Implies { return &Implies{lhs, rhs} }

// Depth implementation for Expr interface.
func (e *Implies) Depth() uint { return maxDepth(e.Lhs, e.Rhs) }

// Signals implementation for Expr interface.
func (e *Implies) Signals() []string { return signalsOf(e.Lhs, e.Rhs) }

func (e *Implies) String() string { return infix("->", e.Lhs, e.Rhs) }

// ============================================================================
// Relational
// ============================================================================

// Comparator identifies a relational operator.
type Comparator uint8

const (
	// EQ is equality (==)
	EQ Comparator = iota
	// NEQ is non-equality (!=)
	NEQ
	// LT is unsigned strict less-than (<)
	LT
	// LTEQ is unsigned less-than-or-equal (<=)
	LTEQ
	// GT is unsigned strict greater-than (>)
	GT
	// GTEQ is unsigned greater-than-or-equal (>=)
	GTEQ
)

var comparators = []string{"==", "!=", "<", "<=", ">", ">="}

func (c Comparator) String() string { return comparators[c] }

// Compare represents a relational comparison between two values, which are
// zero-extended to a common width and compared as unsigned integers.
type Compare struct {
	Op  Comparator
	Lhs Expr
	Rhs Expr
}

// NewCompare constructs a relational comparison.
func NewCompare(op Comparator, lhs Expr, rhs Expr) *Compare { return &Compare{op, lhs, rhs} }

// Depth implementation for Expr interface.
func (e *Compare) Depth() uint { return maxDepth(e.Lhs, e.Rhs) }

// Signals implementation for Expr interface.
func (e *Compare) Signals() []string { return signalsOf(e.Lhs, e.Rhs) }

func (e *Compare) String() string { return infix(e.Op.String(), e.Lhs, e.Rhs) }

// ============================================================================
// Bitwise
// ============================================================================

// BitwiseOp identifies a bitwise operator.
type BitwiseOp uint8

const (
	// BITNOT is bitwise complement (~)
	BITNOT BitwiseOp = iota
	// BITAND is bitwise conjunction (&)
	BITAND
	// BITOR is bitwise disjunction (|)
	BITOR
	// BITXOR is bitwise exclusive-or (^)
	BITXOR
)

var bitwiseOps = []string{"~", "&", "|", "^"}

func (op BitwiseOp) String() string { return bitwiseOps[op] }

// Bitwise represents a bitwise operation over one (for complement) or more
// arguments.  The width of the result is the widest of the arguments.
type Bitwise struct {
	Op   BitwiseOp
	Args []Expr
}

// NewBitwise constructs a new bitwise operation.
func NewBitwise(op BitwiseOp, args ...Expr) *Bitwise { return &Bitwise{op, args} }

// Depth implementation for Expr interface.
func (e *Bitwise) Depth() uint { return maxDepth(e.Args...) }

// Signals implementation for Expr interface.
func (e *Bitwise) Signals() []string { return signalsOf(e.Args...) }

func (e *Bitwise) String() string {
	if e.Op == BITNOT {
		return fmt.Sprintf("~%s", e.Args[0].String())
	}
	//
	return infix(e.Op.String(), e.Args...)
}

// ============================================================================
// System functions
// ============================================================================

// Past represents $past(e, n), which gives the value of e exactly n cycles
// before the current one.  Before the start of the trace, this is zero.
type Past struct {
	Arg Expr
	N   uint
}

// NewPast constructs a new $past expression.  A depth of zero is malformed.
func NewPast(arg Expr, n uint) (*Past, error) {
	if n == 0 {
		return nil, Malformed("$past requires positive depth")
	}
	//
	return &Past{arg, n}, nil
}

// Depth implementation for Expr interface.
func (e *Past) Depth() uint { return e.Arg.Depth() + e.N }

// Signals implementation for Expr interface.
func (e *Past) Signals() []string { return e.Arg.Signals() }

func (e *Past) String() string {
	if e.N == 1 {
		return fmt.Sprintf("$past(%s)", e.Arg.String())
	}
	//
	return fmt.Sprintf("$past(%s, %d)", e.Arg.String(), e.N)
}

// EdgeKind identifies a value-change function.
type EdgeKind uint8

const (
	// ROSE is $rose, which holds when the LSB changed from 0 to 1.
	ROSE EdgeKind = iota
	// FELL is $fell, which holds when the LSB changed from 1 to 0.
	FELL
	// STABLE is $stable, which holds when the LSB is unchanged.
	STABLE
	// CHANGED is $changed, which holds when the LSB has changed.
	CHANGED
)

var edgeKinds = []string{"$rose", "$fell", "$stable", "$changed"}

func (k EdgeKind) String() string { return edgeKinds[k] }

// Edge represents one of the value-change functions $rose, $fell, $stable and
// $changed.  These compare the least significant bit of the current and
// previous values of their argument.
type Edge struct {
	Kind EdgeKind
	Arg  Expr
}

// NewEdge constructs a new value-change function.
func NewEdge(kind EdgeKind, arg Expr) *Edge { return &Edge{kind, arg} }

// Depth implementation for Expr interface.
func (e *Edge) Depth() uint { return e.Arg.Depth() + 1 }

// Signals implementation for Expr interface.
func (e *Edge) Signals() []string { return e.Arg.Signals() }

func (e *Edge) String() string { return fmt.Sprintf("%s(%s)", e.Kind.String(), e.Arg.String()) }

// CountKind identifies a bit-counting function.
type CountKind uint8

const (
	// ONEHOT is $onehot, which holds when exactly one bit is set.
	ONEHOT CountKind = iota
	// ONEHOT0 is $onehot0, which holds when at most one bit is set.
	ONEHOT0
	// COUNTONES is $countones, which gives the number of bits set.
	COUNTONES
	// COUNTZEROS gives the number of bits not set.  This corresponds to
	// $countbits(e, 0).
	COUNTZEROS
)

var countKinds = []string{"$onehot", "$onehot0", "$countones", "$countzeros"}

func (k CountKind) String() string { return countKinds[k] }

// Count represents one of the bit-counting functions, which operate on the
// current value of their argument only.
type Count struct {
	Kind CountKind
	Arg  Expr
}

// NewCount constructs a new bit-counting function.
func NewCount(kind CountKind, arg Expr) *Count { return &Count{kind, arg} }

// Depth implementation for Expr interface.
func (e *Count) Depth() uint { return e.Arg.Depth() }

// Signals implementation for Expr interface.
func (e *Count) Signals() []string { return e.Arg.Signals() }

func (e *Count) String() string { return fmt.Sprintf("%s(%s)", e.Kind.String(), e.Arg.String()) }

// ============================================================================
// Helpers
// ============================================================================

func maxDepth(args ...Expr) uint {
	var depth uint
	//
	for _, arg := range args {
		depth = max(depth, arg.Depth())
	}
	//
	return depth
}

func signalsOf(args ...Expr) []string {
	var names []string
	//
	for _, arg := range args {
		names = append(names, arg.Signals()...)
	}
	//
	slices.Sort(names)
	//
	return slices.Compact(names)
}

func infix(op string, args ...Expr) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, arg := range args {
		if i != 0 {
			builder.WriteString(fmt.Sprintf(" %s ", op))
		}
		//
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
