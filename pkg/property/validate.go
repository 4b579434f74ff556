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
	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/seq"
)

// Validate checks that a property is well-formed.  Specifically, that all
// sequences within it are well-formed, that all ranges are well-formed, and
// that strong always and weak eventually are given bounded ranges.
func Validate(p Property) error {
	switch p := p.(type) {
	case *SequenceProperty:
		return seq.Validate(p.Seq)
	case *Not:
		return Validate(p.Arg)
	case *And:
		return validatePair(p.Left, p.Right)
	case *Or:
		return validatePair(p.Left, p.Right)
	case *IfElse:
		if p.Cond == nil {
			return bexp.Malformed("missing condition")
		} else if p.Else == nil {
			return Validate(p.Then)
		}
		//
		return validatePair(p.Then, p.Else)
	case *Implication:
		if err := seq.Validate(p.Antecedent); err != nil {
			return err
		}
		//
		return Validate(p.Consequent)
	case *Always:
		if p.Strong && (p.Range == nil || p.Range.Unbounded) {
			return bexp.Malformed("s_always requires a bounded range")
		}
		//
		return validateTemporal(p.Range, p.Arg)
	case *Eventually:
		if !p.Strong && (p.Range == nil || p.Range.Unbounded) {
			return bexp.Malformed("eventually requires a bounded range")
		}
		//
		return validateTemporal(p.Range, p.Arg)
	case *Until:
		return validatePair(p.Lhs, p.Rhs)
	case nil:
		return bexp.Malformed("missing property")
	default:
		return bexp.Malformed("unknown property operator %T", p)
	}
}

func validatePair(lhs Property, rhs Property) error {
	if err := Validate(lhs); err != nil {
		return err
	}
	//
	return Validate(rhs)
}

func validateTemporal(rng *seq.Range, arg Property) error {
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return err
		}
	}
	//
	return Validate(arg)
}

// Resolve the strength of all sequences whose strength was omitted, producing
// a new property.  Sequences are resolved as strong when the flag is set, and
// weak otherwise.  Sequences whose strength was given explicitly are left
// untouched.
func Resolve(p Property, strong bool) Property {
	switch p := p.(type) {
	case *SequenceProperty:
		if p.Strength != DEFAULT {
			return p
		} else if strong {
			return NewSequence(p.Seq, STRONG)
		}
		//
		return NewSequence(p.Seq, WEAK)
	case *Not:
		return NewNot(Resolve(p.Arg, strong))
	case *And:
		return NewAnd(Resolve(p.Left, strong), Resolve(p.Right, strong))
	case *Or:
		return NewOr(Resolve(p.Left, strong), Resolve(p.Right, strong))
	case *IfElse:
		var els Property
		//
		if p.Else != nil {
			els = Resolve(p.Else, strong)
		}
		//
		return NewIfElse(p.Cond, Resolve(p.Then, strong), els)
	case *Implication:
		return NewImplication(p.Antecedent, Resolve(p.Consequent, strong), p.Overlapping)
	case *Always:
		return NewAlways(Resolve(p.Arg, strong), p.Range, p.Strong)
	case *Eventually:
		return NewEventually(Resolve(p.Arg, strong), p.Range, p.Strong)
	case *Until:
		return NewUntil(Resolve(p.Lhs, strong), Resolve(p.Rhs, strong), p.Strong, p.Inclusive)
	default:
		return p
	}
}
