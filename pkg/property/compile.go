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
	"github.com/consensys/go-sva/pkg/seq"
)

// Compiled represents a property which has been validated, and whose sequences
// have been compiled, such that it is ready for evaluation.
type Compiled struct {
	property Property
	programs map[seq.Sequence]*seq.Program
}

// Compile a given property for evaluation.  This fails if the property is
// malformed.
func Compile(p Property) (*Compiled, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	//
	c := &Compiled{p, make(map[seq.Sequence]*seq.Program)}
	//
	if err := c.compile(p); err != nil {
		return nil, err
	}
	//
	return c, nil
}

// Property returns the property which was compiled.
func (p *Compiled) Property() Property {
	return p.property
}

// Programs returns the number of distinct sequence programs within this
// property.
func (p *Compiled) Programs() uint {
	return uint(len(p.programs))
}

func (p *Compiled) compile(prop Property) error {
	switch prop := prop.(type) {
	case *SequenceProperty:
		return p.compileSequence(prop.Seq)
	case *Not:
		return p.compile(prop.Arg)
	case *And:
		return p.compilePair(prop.Left, prop.Right)
	case *Or:
		return p.compilePair(prop.Left, prop.Right)
	case *IfElse:
		if prop.Else == nil {
			return p.compile(prop.Then)
		}
		//
		return p.compilePair(prop.Then, prop.Else)
	case *Implication:
		if err := p.compileSequence(prop.Antecedent); err != nil {
			return err
		}
		//
		return p.compile(prop.Consequent)
	case *Always:
		return p.compile(prop.Arg)
	case *Eventually:
		return p.compile(prop.Arg)
	case *Until:
		return p.compilePair(prop.Lhs, prop.Rhs)
	}
	//
	return nil
}

func (p *Compiled) compilePair(lhs Property, rhs Property) error {
	if err := p.compile(lhs); err != nil {
		return err
	}
	//
	return p.compile(rhs)
}

func (p *Compiled) compileSequence(s seq.Sequence) error {
	if _, ok := p.programs[s]; ok {
		return nil
	}
	//
	program, err := seq.Compile(s)
	if err != nil {
		return err
	}
	//
	p.programs[s] = program
	//
	return nil
}

func (p *Compiled) context(budget *seq.Budget) *evalContext {
	return &evalContext{p.programs, budget}
}
