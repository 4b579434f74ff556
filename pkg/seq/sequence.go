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
	"fmt"
	"slices"

	"github.com/consensys/go-sva/pkg/bexp"
)

// Sequence represents a temporal sequence built from Boolean expressions using
// cycle delays and repetition.  A match of a sequence starts at some cycle and
// ends at the same or a later cycle.  Sequences are immutable once constructed.
type Sequence interface {
	// Depth returns the number of cycles of history needed to evaluate the
	// Boolean expressions within this sequence.
	Depth() uint
	// Signals returns the (sorted) set of signal names referenced by this
	// sequence.
	Signals() []string
	// String returns a human-readable representation of this sequence.
	String() string
}

// Range represents a (possibly unbounded) range of cycle counts, as used for
// delays (e.g. ##[1:3]) and repetition (e.g. [*2:$]).
type Range struct {
	Min       uint
	Max       uint
	Unbounded bool
}

// Exactly constructs the range [n:n].
func Exactly(n uint) Range {
	return Range{n, n, false}
}

// Between constructs the range [m:n].
func Between(m uint, n uint) Range {
	return Range{m, n, false}
}

// AtLeast constructs the range [m:$].
func AtLeast(m uint) Range {
	return Range{m, m, true}
}

// Contains checks whether a given count falls within this range.
func (r Range) Contains(n uint) bool {
	return n >= r.Min && (r.Unbounded || n <= r.Max)
}

// Validate checks this range is well-formed, i.e. its upper bound is not below
// its lower bound.
func (r Range) Validate() error {
	if !r.Unbounded && r.Max < r.Min {
		return bexp.Malformed("range [%d:%d] has upper bound below lower bound", r.Min, r.Max)
	}
	//
	return nil
}

func (r Range) String() string {
	switch {
	case r.Unbounded:
		return fmt.Sprintf("[%d:$]", r.Min)
	case r.Min == r.Max:
		return fmt.Sprintf("%d", r.Min)
	default:
		return fmt.Sprintf("[%d:%d]", r.Min, r.Max)
	}
}

// Bool is a sequence which matches a Boolean expression at a single cycle.
type Bool struct {
	Expr bexp.Expr
}

// NewBool constructs a single-cycle sequence.
func NewBool(e bexp.Expr) *Bool { return &Bool{e} }

// Depth implementation for Sequence interface.
func (s *Bool) Depth() uint { return s.Expr.Depth() }

// Signals implementation for Sequence interface.
func (s *Bool) Signals() []string { return s.Expr.Signals() }

func (s *Bool) String() string { return s.Expr.String() }

// Concat is a sequence which matches its left operand followed by its right
// operand, where the right operand starts a number of cycles after the left
// ends, as determined by the delay range.  A delay of zero fuses both operands
// at the same cycle.  If the left operand is nil, then this is a leading delay
// (e.g. ##2 a), where the right operand starts relative to the start cycle.
type Concat struct {
	Left  Sequence
	Delay Range
	Right Sequence
}

// NewConcat constructs a concatenation with a given delay range.
func NewConcat(left Sequence, delay Range, right Sequence) *Concat {
	return &Concat{left, delay, right}
}

// NewDelay constructs a leading delay.
func NewDelay(delay Range, right Sequence) *Concat {
	return &Concat{nil, delay, right}
}

// Depth implementation for Sequence interface.
func (s *Concat) Depth() uint {
	if s.Left == nil {
		return s.Right.Depth()
	}
	//
	return max(s.Left.Depth(), s.Right.Depth())
}

// Signals implementation for Sequence interface.
func (s *Concat) Signals() []string {
	if s.Left == nil {
		return s.Right.Signals()
	}
	//
	return union(s.Left.Signals(), s.Right.Signals())
}

func (s *Concat) String() string {
	if s.Left == nil {
		return fmt.Sprintf("##%s %s", s.Delay.String(), s.Right.String())
	}
	//
	return fmt.Sprintf("(%s ##%s %s)", s.Left.String(), s.Delay.String(), s.Right.String())
}

// Repeat is a sequence which matches consecutive repetitions of its argument,
// where each repetition starts one cycle after the previous one ends (e.g.
// a[*3] is a ##1 a ##1 a).
type Repeat struct {
	Arg   Sequence
	Count Range
}

// NewRepeat constructs a consecutive repetition.
func NewRepeat(arg Sequence, count Range) *Repeat { return &Repeat{arg, count} }

// Depth implementation for Sequence interface.
func (s *Repeat) Depth() uint { return s.Arg.Depth() }

// Signals implementation for Sequence interface.
func (s *Repeat) Signals() []string { return s.Arg.Signals() }

func (s *Repeat) String() string {
	return fmt.Sprintf("%s[*%s]", s.Arg.String(), repeatString(s.Count))
}

// Goto is a sequence which matches from its start up to (and including) the
// cycle of the nth occurrence of a Boolean expression, for some n in the
// given range (e.g. b[->2]).
type Goto struct {
	Expr  bexp.Expr
	Count Range
}

// NewGoto constructs a goto repetition.
func NewGoto(e bexp.Expr, count Range) *Goto { return &Goto{e, count} }

// Depth implementation for Sequence interface.
func (s *Goto) Depth() uint { return s.Expr.Depth() }

// Signals implementation for Sequence interface.
func (s *Goto) Signals() []string { return s.Expr.Signals() }

func (s *Goto) String() string {
	return fmt.Sprintf("%s[->%s]", s.Expr.String(), repeatString(s.Count))
}

// NonConsecutive is like Goto, except that a match may extend past the last
// occurrence for as long as the expression remains false (e.g. b[=2]).
type NonConsecutive struct {
	Expr  bexp.Expr
	Count Range
}

// NewNonConsecutive constructs a non-consecutive repetition.
func NewNonConsecutive(e bexp.Expr, count Range) *NonConsecutive {
	return &NonConsecutive{e, count}
}

// Depth implementation for Sequence interface.
func (s *NonConsecutive) Depth() uint { return s.Expr.Depth() }

// Signals implementation for Sequence interface.
func (s *NonConsecutive) Signals() []string { return s.Expr.Signals() }

func (s *NonConsecutive) String() string {
	return fmt.Sprintf("%s[=%s]", s.Expr.String(), repeatString(s.Count))
}

// Or is a sequence which matches whenever either operand matches.
type Or struct {
	Left  Sequence
	Right Sequence
}

// NewOr constructs a sequence disjunction.
func NewOr(left Sequence, right Sequence) *Or { return &Or{left, right} }

// Depth implementation for Sequence interface.
func (s *Or) Depth() uint { return max(s.Left.Depth(), s.Right.Depth()) }

// Signals implementation for Sequence interface.
func (s *Or) Signals() []string { return union(s.Left.Signals(), s.Right.Signals()) }

func (s *Or) String() string {
	return fmt.Sprintf("(%s or %s)", s.Left.String(), s.Right.String())
}

// Throughout is a sequence which matches its argument, provided a condition
// holds at every cycle from the start to the end of the match.
type Throughout struct {
	Cond bexp.Expr
	Seq  Sequence
}

// NewThroughout constructs a throughout sequence.
func NewThroughout(cond bexp.Expr, s Sequence) *Throughout { return &Throughout{cond, s} }

// Depth implementation for Sequence interface.
func (s *Throughout) Depth() uint { return max(s.Cond.Depth(), s.Seq.Depth()) }

// Signals implementation for Sequence interface.
func (s *Throughout) Signals() []string { return union(s.Cond.Signals(), s.Seq.Signals()) }

func (s *Throughout) String() string {
	return fmt.Sprintf("(%s throughout %s)", s.Cond.String(), s.Seq.String())
}

// Validate checks that a sequence is well-formed.  Specifically, that every
// range is well-formed and that repetition counts are positive.
func Validate(s Sequence) error {
	switch s := s.(type) {
	case *Bool:
		return nil
	case *Concat:
		if err := s.Delay.Validate(); err != nil {
			return err
		} else if s.Left != nil {
			if err := Validate(s.Left); err != nil {
				return err
			}
		}
		//
		return Validate(s.Right)
	case *Repeat:
		if err := validateCount(s.Count); err != nil {
			return err
		}
		//
		return Validate(s.Arg)
	case *Goto:
		return validateCount(s.Count)
	case *NonConsecutive:
		return validateCount(s.Count)
	case *Or:
		if err := Validate(s.Left); err != nil {
			return err
		}
		//
		return Validate(s.Right)
	case *Throughout:
		return Validate(s.Seq)
	case nil:
		return bexp.Malformed("missing sequence")
	default:
		return bexp.Malformed("unknown sequence operator %T", s)
	}
}

// MinLength returns the minimum number of cycles spanned by any match of a
// sequence, where a match starting and ending at the same cycle spans one
// cycle.
func MinLength(s Sequence) uint {
	switch s := s.(type) {
	case *Bool:
		return 1
	case *Concat:
		if s.Left == nil {
			return s.Delay.Min + MinLength(s.Right)
		}
		// A delay of zero fuses the last cycle of the left with the first cycle
		// of the right.
		return MinLength(s.Left) + s.Delay.Min + MinLength(s.Right) - 1
	case *Repeat:
		return s.Count.Min * MinLength(s.Arg)
	case *Goto:
		return s.Count.Min
	case *NonConsecutive:
		return s.Count.Min
	case *Or:
		return min(MinLength(s.Left), MinLength(s.Right))
	case *Throughout:
		return MinLength(s.Seq)
	default:
		return 1
	}
}

func validateCount(count Range) error {
	if count.Min == 0 {
		return bexp.Malformed("repetition count must be positive")
	}
	//
	return count.Validate()
}

func repeatString(r Range) string {
	switch {
	case r.Unbounded:
		return fmt.Sprintf("%d:$", r.Min)
	case r.Min == r.Max:
		return fmt.Sprintf("%d", r.Min)
	default:
		return fmt.Sprintf("%d:%d", r.Min, r.Max)
	}
}

func union(lhs []string, rhs []string) []string {
	names := append(slices.Clone(lhs), rhs...)
	slices.Sort(names)
	//
	return slices.Compact(names)
}
