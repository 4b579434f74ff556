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
package sexp

import (
	"fmt"

	"github.com/consensys/go-sva/pkg/util/source"
)

// SymbolRule is responsible for converting a terminating expression (i.e. a
// symbol) into an expression type T.  For example, a signal reference or a
// numeric literal.  The boolean indicates whether the rule applied.
type SymbolRule[T comparable] func(string) (T, bool, error)

// ListRule is responsible for converting a list into an expression type T.
type ListRule[T comparable] func(*List) (T, []source.SyntaxError)

// RecursiveRule is a wrapper for translating lists whose elements can be built
// by recursively reusing the enclosing translator.  Observe that the arguments
// are already translated into the correct form.
type RecursiveRule[T comparable] func(string, []T) (T, error)

// Translator is a generic mechanism for translating S-Expressions into a
// structured form.
type Translator[T comparable] struct {
	srcfile *source.File
	// Rules for parsing lists
	lists map[string]ListRule[T]
	// Rules for parsing symbols
	symbols []SymbolRule[T]
	// Maps S-Expressions to their spans in the original source file.  This is
	// used to build the new source map.
	oldSrcmap *source.Map[SExp]
	// Maps translated expressions to their spans in the original source file.
	// This is constructed using the old source map.
	newSrcmap *source.Map[T]
}

// NewTranslator constructs a new Translator instance.
func NewTranslator[T comparable](srcfile *source.File, srcmap *source.Map[SExp]) *Translator[T] {
	return &Translator[T]{
		srcfile:   srcfile,
		lists:     make(map[string]ListRule[T]),
		symbols:   make([]SymbolRule[T], 0),
		oldSrcmap: srcmap,
		newSrcmap: source.NewSourceMap[T](),
	}
}

// SourceMap returns the source map maintained for terms constructed by this
// translator.
func (p *Translator[T]) SourceMap() *source.Map[T] {
	return p.newSrcmap
}

// Translate a given S-Expression into a given structured representation T.
func (p *Translator[T]) Translate(sexp SExp) (T, []source.SyntaxError) {
	return translateSExp(p, sexp)
}

// HasListRule checks whether a rule is registered for lists with the given
// head.
func (p *Translator[T]) HasListRule(name string) bool {
	_, ok := p.lists[name]
	return ok
}

// AddListRule adds a raw list rule to this expression translator.
func (p *Translator[T]) AddListRule(name string, rule ListRule[T]) {
	p.lists[name] = rule
}

// AddRecursiveListRule adds a new list translator to this expression translator.
func (p *Translator[T]) AddRecursiveListRule(name string, t RecursiveRule[T]) {
	// Construct a recursive list translator as a wrapper around a generic list translator.
	p.lists[name] = p.createRecursiveListRule(t)
}

// AddSymbolRule adds a new symbol translator to this expression translator.
func (p *Translator[T]) AddSymbolRule(t SymbolRule[T]) {
	p.symbols = append(p.symbols, t)
}

// SyntaxError constructs a suitable syntax error for a given S-Expression.
func (p *Translator[T]) SyntaxError(s SExp, msg string) *source.SyntaxError {
	// Get span of enclosing list
	span := p.oldSrcmap.Get(s)
	// Construct syntax error
	return p.srcfile.SyntaxError(span, msg)
}

// SyntaxErrors constructs a suitable syntax error for a given S-Expression.
func (p *Translator[T]) SyntaxErrors(s SExp, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.SyntaxError(s, msg)}
}

func (p *Translator[T]) createRecursiveListRule(t RecursiveRule[T]) ListRule[T] {
	return func(l *List) (T, []source.SyntaxError) {
		var (
			empty  T
			errors []source.SyntaxError
		)
		// Extract the "head" of the list.
		if len(l.Elements) == 0 || l.Elements[0].AsSymbol() == nil {
			return empty, p.SyntaxErrors(l, "invalid list")
		}
		// Extract expression name
		head := (l.Elements[0].(*Symbol)).Value
		// Translate arguments
		args := make([]T, len(l.Elements)-1)
		//
		for i, s := range l.Elements[1:] {
			var errs []source.SyntaxError
			args[i], errs = translateSExp(p, s)
			errors = append(errors, errs...)
		}
		// Check for error
		if len(errors) != 0 {
			return empty, errors
		}
		// Apply constructor
		term, err := t(head, args)
		// Check error
		if err != nil {
			return empty, p.SyntaxErrors(l, err.Error())
		}
		//
		return term, nil
	}
}

// ===================================================================
// Private
// ===================================================================

// Translate an S-Expression into a term.  Observe that this can still fail in
// the event that the given S-Expression does not describe a well-formed term.
func translateSExp[T comparable](p *Translator[T], s SExp) (T, []source.SyntaxError) {
	var empty T
	//
	switch e := s.(type) {
	case *List:
		return translateSExpList(p, e)
	case *Symbol:
		for i := 0; i != len(p.symbols); i++ {
			node, ok, err := (p.symbols[i])(e.Value)
			if ok && err != nil {
				// Transform into syntax error
				return empty, p.SyntaxErrors(s, err.Error())
			} else if ok {
				map2sexp(p, node, s)
				// Done
				return node, nil
			}
		}
		//
		return empty, p.SyntaxErrors(s, fmt.Sprintf("unknown symbol \"%s\"", e.Value))
	}
	//
	return empty, p.SyntaxErrors(s, fmt.Sprintf("unexpected term \"%s\"", s.String()))
}

// Translate a list of S-Expressions into a unary, binary or n-ary
// expression of some kind.  This type of expression is determined by
// the first element of the list.
func translateSExpList[T comparable](p *Translator[T], l *List) (T, []source.SyntaxError) {
	var (
		empty  T
		node   T
		errors []source.SyntaxError
	)
	// Sanity check this list makes sense
	if len(l.Elements) == 0 || l.Elements[0].AsSymbol() == nil {
		return empty, p.SyntaxErrors(l, "invalid list")
	}
	// Lookup appropriate translator
	if t := p.lists[l.Head()]; t != nil {
		node, errors = t(l)
	} else {
		return empty, p.SyntaxErrors(l, "unknown list encountered")
	}
	// Map source node
	if len(errors) == 0 {
		map2sexp(p, node, l)
	}
	// Done
	return node, errors
}

// Add a mapping from a given item to the S-expression from which it was
// generated.  An item which is already mapped (e.g. a named definition which
// is referenced more than once) retains its original span.
func map2sexp[T comparable](p *Translator[T], item T, sexp SExp) {
	if !p.newSrcmap.Has(item) {
		p.newSrcmap.Put(item, p.oldSrcmap.Get(sexp))
	}
}
