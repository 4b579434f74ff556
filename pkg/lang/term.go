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
	"fmt"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/property"
	"github.com/consensys/go-sva/pkg/seq"
)

// Term is the result of translating an S-expression.  A term is either a
// Boolean expression, a sequence or a property.  Since each level can be
// promoted to the next, operators accept the weakest level they require.
type Term interface {
	fmt.Stringer
	// Level identifies the kind of this term.
	Level() Level
}

// Level identifies whether a term is a Boolean expression, a sequence or a
// property.
type Level uint8

const (
	// EXPR is a Boolean expression
	EXPR Level = iota
	// SEQUENCE is a sequence
	SEQUENCE
	// PROPERTY is a property
	PROPERTY
)

var levels = []string{"expression", "sequence", "property"}

func (l Level) String() string { return levels[l] }

// ExprTerm wraps a Boolean expression.
type ExprTerm struct{ Expr bexp.Expr }

// SeqTerm wraps a sequence.
type SeqTerm struct{ Seq seq.Sequence }

// PropTerm wraps a property.
type PropTerm struct{ Prop property.Property }

// Level implementation for Term interface.
func (t *ExprTerm) Level() Level { return EXPR }

// Level implementation for Term interface.
func (t *SeqTerm) Level() Level { return SEQUENCE }

// Level implementation for Term interface.
func (t *PropTerm) Level() Level { return PROPERTY }

func (t *ExprTerm) String() string { return t.Expr.String() }

func (t *SeqTerm) String() string { return t.Seq.String() }

func (t *PropTerm) String() string { return t.Prop.String() }

// AsExpr extracts a Boolean expression from a term, failing if the term is a
// sequence or property.
func AsExpr(t Term) (bexp.Expr, error) {
	if e, ok := t.(*ExprTerm); ok {
		return e.Expr, nil
	}
	//
	return nil, fmt.Errorf("expected expression, found %s", t.Level())
}

// AsSequence extracts a sequence from a term, promoting a Boolean expression
// into a single-cycle sequence.
func AsSequence(t Term) (seq.Sequence, error) {
	switch t := t.(type) {
	case *ExprTerm:
		return seq.NewBool(t.Expr), nil
	case *SeqTerm:
		return t.Seq, nil
	default:
		return nil, fmt.Errorf("expected sequence, found %s", t.Level())
	}
}

// AsProperty extracts a property from a term, promoting expressions and
// sequences into sequence properties of unspecified strength.
func AsProperty(t Term) (property.Property, error) {
	if p, ok := t.(*PropTerm); ok {
		return p.Prop, nil
	}
	//
	s, err := AsSequence(t)
	if err != nil {
		return nil, err
	}
	//
	return property.NewSequence(s, property.DEFAULT), nil
}

func asExprs(args []Term) ([]bexp.Expr, error) {
	exprs := make([]bexp.Expr, len(args))
	//
	for i, arg := range args {
		e, err := AsExpr(arg)
		if err != nil {
			return nil, err
		}
		//
		exprs[i] = e
	}
	//
	return exprs, nil
}

func asProperties(args []Term) ([]property.Property, error) {
	props := make([]property.Property, len(args))
	//
	for i, arg := range args {
		p, err := AsProperty(arg)
		if err != nil {
			return nil, err
		}
		//
		props[i] = p
	}
	//
	return props, nil
}
