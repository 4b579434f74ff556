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
	"slices"
	"strings"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/seq"
)

// Property represents a temporal property composed from sequences and other
// properties using logical and temporal operators.  Properties are immutable
// once constructed.
type Property interface {
	// Depth returns the number of cycles of history required to evaluate the
	// Boolean expressions within this property.
	Depth() uint
	// Signals returns the (sorted) set of signals referenced by this property.
	Signals() []string
	// String returns a human-readable representation of this property.
	String() string
}

// Strength determines how a sequence which has neither matched nor failed by
// the end of a finite trace is treated.
type Strength uint8

const (
	// DEFAULT strength is resolved according to the enclosing directive.
	DEFAULT Strength = iota
	// WEAK sequences hold when their evaluation is incomplete.
	WEAK
	// STRONG sequences require a match to actually be observed.
	STRONG
)

func (s Strength) String() string {
	switch s {
	case WEAK:
		return "weak"
	case STRONG:
		return "strong"
	default:
		return "default"
	}
}

// ============================================================================
// Sequence Property
// ============================================================================

// SequenceProperty is a property which holds when a given sequence matches.
type SequenceProperty struct {
	Seq      seq.Sequence
	Strength Strength
}

// NewSequence constructs a sequence property of the given strength.
func NewSequence(s seq.Sequence, strength Strength) *SequenceProperty {
	return &SequenceProperty{s, strength}
}

// Depth implementation for Property interface.
func (p *SequenceProperty) Depth() uint { return p.Seq.Depth() }

// Signals implementation for Property interface.
func (p *SequenceProperty) Signals() []string { return p.Seq.Signals() }

func (p *SequenceProperty) String() string {
	var str = p.Seq.String()
	//
	if p.Strength == DEFAULT {
		return str
	} else if strings.HasPrefix(str, "(") && strings.HasSuffix(str, ")") {
		return p.Strength.String() + str
	}
	//
	return fmt.Sprintf("%s(%s)", p.Strength.String(), str)
}

// ============================================================================
// Logical Operators
// ============================================================================

// Not is the negation of a property.
type Not struct {
	Arg Property
}

// NewNot constructs a negated property.
func NewNot(arg Property) *Not { return &Not{arg} }

// Depth implementation for Property interface.
func (p *Not) Depth() uint { return p.Arg.Depth() }

// Signals implementation for Property interface.
func (p *Not) Signals() []string { return p.Arg.Signals() }

func (p *Not) String() string { return fmt.Sprintf("(not %s)", p.Arg.String()) }

// And is the conjunction of two properties.
type And struct {
	Left  Property
	Right Property
}

// NewAnd constructs a conjunction.
func NewAnd(left Property, right Property) *And { return &And{left, right} }

// Depth implementation for Property interface.
func (p *And) Depth() uint { return max(p.Left.Depth(), p.Right.Depth()) }

// Signals implementation for Property interface.
func (p *And) Signals() []string { return union(p.Left.Signals(), p.Right.Signals()) }

func (p *And) String() string {
	return fmt.Sprintf("(%s and %s)", p.Left.String(), p.Right.String())
}

// Or is the disjunction of two properties.
type Or struct {
	Left  Property
	Right Property
}

// NewOr constructs a disjunction.
func NewOr(left Property, right Property) *Or { return &Or{left, right} }

// Depth implementation for Property interface.
func (p *Or) Depth() uint { return max(p.Left.Depth(), p.Right.Depth()) }

// Signals implementation for Property interface.
func (p *Or) Signals() []string { return union(p.Left.Signals(), p.Right.Signals()) }

func (p *Or) String() string {
	return fmt.Sprintf("(%s or %s)", p.Left.String(), p.Right.String())
}

// IfElse selects between two properties based on a condition evaluated at the
// start cycle.  When the else branch is omitted, the property holds vacuously
// if the condition is false.
type IfElse struct {
	Cond bexp.Expr
	Then Property
	// Else branch (optional).
	Else Property
}

// NewIfElse constructs a conditional property, where the else branch may be
// nil.
func NewIfElse(cond bexp.Expr, then Property, els Property) *IfElse {
	return &IfElse{cond, then, els}
}

// Depth implementation for Property interface.
func (p *IfElse) Depth() uint {
	depth := max(p.Cond.Depth(), p.Then.Depth())
	//
	if p.Else != nil {
		depth = max(depth, p.Else.Depth())
	}
	//
	return depth
}

// Signals implementation for Property interface.
func (p *IfElse) Signals() []string {
	signals := union(p.Cond.Signals(), p.Then.Signals())
	//
	if p.Else != nil {
		signals = union(signals, p.Else.Signals())
	}
	//
	return signals
}

func (p *IfElse) String() string {
	if p.Else == nil {
		return fmt.Sprintf("(if %s %s)", p.Cond.String(), p.Then.String())
	}
	//
	return fmt.Sprintf("(if %s %s %s)", p.Cond.String(), p.Then.String(), p.Else.String())
}

// ============================================================================
// Implication
// ============================================================================

// Implication requires that, for every match of the antecedent, the consequent
// holds from the cycle the match ended (overlapping) or the following cycle
// (non-overlapping).
type Implication struct {
	Antecedent  seq.Sequence
	Consequent  Property
	Overlapping bool
}

// NewImplication constructs an implication.
func NewImplication(antecedent seq.Sequence, consequent Property, overlapping bool) *Implication {
	return &Implication{antecedent, consequent, overlapping}
}

// Depth implementation for Property interface.
func (p *Implication) Depth() uint { return max(p.Antecedent.Depth(), p.Consequent.Depth()) }

// Signals implementation for Property interface.
func (p *Implication) Signals() []string {
	return union(p.Antecedent.Signals(), p.Consequent.Signals())
}

func (p *Implication) String() string {
	op := "|=>"
	//
	if p.Overlapping {
		op = "|->"
	}
	//
	return fmt.Sprintf("(%s %s %s)", p.Antecedent.String(), op, p.Consequent.String())
}

// ============================================================================
// Temporal Operators
// ============================================================================

// Always requires its argument to hold from every cycle within a given window
// of offsets from the start cycle.  Without a range, the window is unbounded.
type Always struct {
	Arg Property
	// Window of offsets (optional).
	Range  *seq.Range
	Strong bool
}

// NewAlways constructs an always property, where the range may be nil.
func NewAlways(arg Property, rng *seq.Range, strong bool) *Always {
	return &Always{arg, rng, strong}
}

// Depth implementation for Property interface.
func (p *Always) Depth() uint { return p.Arg.Depth() }

// Signals implementation for Property interface.
func (p *Always) Signals() []string { return p.Arg.Signals() }

func (p *Always) String() string {
	return temporalString("always", p.Strong, p.Range, p.Arg)
}

// Eventually requires its argument to hold from some cycle within a given
// window of offsets from the start cycle.  Without a range, the window is
// unbounded.
type Eventually struct {
	Arg Property
	// Window of offsets (optional).
	Range  *seq.Range
	Strong bool
}

// NewEventually constructs an eventually property, where the range may be nil.
func NewEventually(arg Property, rng *seq.Range, strong bool) *Eventually {
	return &Eventually{arg, rng, strong}
}

// Depth implementation for Property interface.
func (p *Eventually) Depth() uint { return p.Arg.Depth() }

// Signals implementation for Property interface.
func (p *Eventually) Signals() []string { return p.Arg.Signals() }

func (p *Eventually) String() string {
	return temporalString("eventually", p.Strong, p.Range, p.Arg)
}

// Until requires its left-hand side to hold at every cycle until its
// right-hand side holds.  The inclusive forms (until_with) additionally require
// the left-hand side to hold at the cycle the right-hand side holds.  The
// strong forms require the right-hand side to eventually hold.
type Until struct {
	Lhs       Property
	Rhs       Property
	Strong    bool
	Inclusive bool
}

// NewUntil constructs an until property.
func NewUntil(lhs Property, rhs Property, strong bool, inclusive bool) *Until {
	return &Until{lhs, rhs, strong, inclusive}
}

// Depth implementation for Property interface.
func (p *Until) Depth() uint { return max(p.Lhs.Depth(), p.Rhs.Depth()) }

// Signals implementation for Property interface.
func (p *Until) Signals() []string { return union(p.Lhs.Signals(), p.Rhs.Signals()) }

func (p *Until) String() string {
	op := "until"
	//
	if p.Inclusive {
		op = "until_with"
	}
	//
	if p.Strong {
		op = "s_" + op
	}
	//
	return fmt.Sprintf("(%s %s %s)", p.Lhs.String(), op, p.Rhs.String())
}

// ============================================================================
// Helpers
// ============================================================================

func temporalString(op string, strong bool, rng *seq.Range, arg Property) string {
	if strong {
		op = "s_" + op
	}
	//
	if rng != nil {
		return fmt.Sprintf("(%s [%s] %s)", op, rangeString(*rng), arg.String())
	}
	//
	return fmt.Sprintf("(%s %s)", op, arg.String())
}

func rangeString(r seq.Range) string {
	if r.Unbounded {
		return fmt.Sprintf("%d:$", r.Min)
	}
	//
	return fmt.Sprintf("%d:%d", r.Min, r.Max)
}

func union(lhs []string, rhs []string) []string {
	names := append(slices.Clone(lhs), rhs...)
	slices.Sort(names)
	//
	return slices.Compact(names)
}
