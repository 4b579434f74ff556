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
	"strings"
	"unicode"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/bitvec"
	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/property"
	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/consensys/go-sva/pkg/util/source"
	"github.com/consensys/go-sva/pkg/util/source/sexp"
	log "github.com/sirupsen/logrus"
)

// SyntaxError defines the kind of errors that can be reported by this parser.
type SyntaxError = source.SyntaxError

var comparatorOps = map[string]bexp.Comparator{
	"==": bexp.EQ, "!=": bexp.NEQ, "<": bexp.LT, "<=": bexp.LTEQ, ">": bexp.GT, ">=": bexp.GTEQ,
}

var bitwiseOps = map[string]bexp.BitwiseOp{
	"~": bexp.BITNOT, "&": bexp.BITAND, "|": bexp.BITOR, "^": bexp.BITXOR,
}

var edgeOps = map[string]bexp.EdgeKind{
	"$rose": bexp.ROSE, "$fell": bexp.FELL, "$stable": bexp.STABLE, "$changed": bexp.CHANGED,
}

var countOps = map[string]bexp.CountKind{
	"$onehot": bexp.ONEHOT, "$onehot0": bexp.ONEHOT0, "$countones": bexp.COUNTONES,
}

// ParseSourceFiles parses zero or more source files into a single set of
// definitions.  Declarations in one file may refer to names declared by an
// earlier file.
func ParseSourceFiles(srcfiles []source.File) (*Definitions, []SyntaxError) {
	var (
		defs   = NewDefinitions()
		errors []SyntaxError
	)
	//
	for i := range srcfiles {
		errs := parseSourceFile(&srcfiles[i], defs)
		errors = append(errors, errs...)
	}
	//
	if len(errors) != 0 {
		return nil, errors
	}
	//
	log.Debugf("parsed %d directive(s) and %d signal(s) from %d file(s)", len(defs.Directives), len(defs.Signals),
		len(srcfiles))
	//
	return defs, nil
}

// ParseSourceFile parses the contents of a single source file.
func ParseSourceFile(srcfile *source.File) (*Definitions, []SyntaxError) {
	defs := NewDefinitions()
	//
	if errs := parseSourceFile(srcfile, defs); len(errs) != 0 {
		return nil, errs
	}
	//
	return defs, nil
}

func parseSourceFile(srcfile *source.File, defs *Definitions) []SyntaxError {
	var errors []SyntaxError
	// Parse bytes into an S-Expression
	terms, srcmap, err := sexp.ParseAll(srcfile)
	// Check for parsing errors
	if err != nil {
		return []SyntaxError{*err}
	}
	// Construct parser for the definition language
	p := NewParser(srcfile, srcmap, defs)
	// Parse each declaration in turn
	for _, term := range terms {
		errs := p.parseDeclaration(term)
		errors = append(errors, errs...)
	}
	//
	return errors
}

// Parser implements a simple parser for the S-Expression definition language,
// which declares signals, named sequences and properties, and directives.
type Parser struct {
	// Translator used for recursive expressions.
	translator *sexp.Translator[Term]
	// Source file being parsed
	srcfile *source.File
	// Mapping from constructed S-Expressions to their spans in the source file.
	srcmap *source.Map[sexp.SExp]
	// Definitions being accumulated
	defs *Definitions
}

// NewParser constructs a new parser using a given mapping from S-Expressions
// to spans in the underlying source file.
func NewParser(srcfile *source.File, srcmap *source.Map[sexp.SExp], defs *Definitions) *Parser {
	p := sexp.NewTranslator[Term](srcfile, srcmap)
	// Construct (initially empty) parser
	parser := &Parser{p, srcfile, srcmap, defs}
	// Symbols
	p.AddSymbolRule(constantParserRule)
	p.AddSymbolRule(referenceParserRule(defs))
	p.AddSymbolRule(signalParserRule(parser))
	// Boolean expressions
	p.AddRecursiveListRule("!", notParserRule)
	p.AddRecursiveListRule("&&", logicalParserRule)
	p.AddRecursiveListRule("||", logicalParserRule)
	p.AddRecursiveListRule("->", impliesParserRule)
	//
	for op := range comparatorOps {
		p.AddRecursiveListRule(op, compareParserRule)
	}
	//
	for op := range bitwiseOps {
		p.AddRecursiveListRule(op, bitwiseParserRule)
	}
	//
	for op := range edgeOps {
		p.AddRecursiveListRule(op, edgeParserRule)
	}
	//
	for op := range countOps {
		p.AddRecursiveListRule(op, countParserRule)
	}
	//
	p.AddListRule("$countbits", countBitsParserRule(parser))
	p.AddListRule("$past", pastParserRule(parser))
	// Sequences
	p.AddListRule("##", delayParserRule(parser))
	p.AddListRule("*", repeatParserRule(parser))
	p.AddListRule("*->", repeatParserRule(parser))
	p.AddListRule("*=", repeatParserRule(parser))
	p.AddRecursiveListRule("+", plusParserRule)
	p.AddRecursiveListRule("throughout", throughoutParserRule)
	p.AddRecursiveListRule("or", orParserRule)
	// Properties
	p.AddRecursiveListRule("not", propNotParserRule)
	p.AddRecursiveListRule("and", propAndParserRule)
	p.AddRecursiveListRule("if", ifParserRule)
	p.AddRecursiveListRule("|->", implicationParserRule)
	p.AddRecursiveListRule("|=>", implicationParserRule)
	p.AddListRule("always", temporalParserRule(parser))
	p.AddListRule("s_always", temporalParserRule(parser))
	p.AddListRule("eventually", temporalParserRule(parser))
	p.AddListRule("s_eventually", temporalParserRule(parser))
	p.AddRecursiveListRule("until", untilParserRule)
	p.AddRecursiveListRule("s_until", untilParserRule)
	p.AddRecursiveListRule("until_with", untilParserRule)
	p.AddRecursiveListRule("s_until_with", untilParserRule)
	p.AddRecursiveListRule("strong", strengthParserRule)
	p.AddRecursiveListRule("weak", strengthParserRule)
	//
	return parser
}

// SourceMap returns the source map maintained for terms constructed by this
// parser.
func (p *Parser) SourceMap() *source.Map[Term] {
	return p.translator.SourceMap()
}

// Translate a given S-Expression into a term.
func (p *Parser) Translate(s sexp.SExp) (Term, []SyntaxError) {
	return p.translator.Translate(s)
}

func (p *Parser) parseDeclaration(s sexp.SExp) []SyntaxError {
	e := s.AsList()
	//
	if e == nil {
		return p.translator.SyntaxErrors(s, "unexpected or malformed declaration")
	} else if e.MatchSymbols(1, "defsignal") {
		return p.parseDefSignal(e.Elements)
	} else if e.Len() == 3 && e.MatchSymbols(2, "defsequence") {
		return p.parseDefSequence(e.Elements)
	} else if e.Len() == 3 && e.MatchSymbols(2, "defproperty") {
		return p.parseDefProperty(e.Elements)
	} else if e.Len() >= 3 && e.MatchSymbols(2) {
		if kind, err := directive.ParseKind(e.Head()); err == nil {
			return p.parseDirective(kind, e)
		}
	}
	//
	return p.translator.SyntaxErrors(s, "malformed declaration")
}

// Parse a signal declaration, such as "(defsignal clk req ack data@u8)".
func (p *Parser) parseDefSignal(elements []sexp.SExp) []SyntaxError {
	var errors []SyntaxError
	//
	for _, element := range elements[1:] {
		symbol := element.AsSymbol()
		//
		if symbol == nil {
			errors = append(errors, *p.translator.SyntaxError(element, "expected signal name"))
			continue
		}
		//
		name, width, err := trace.SplitSignalName(symbol.Value)
		//
		if err != nil {
			errors = append(errors, *p.translator.SyntaxError(element, err.Error()))
		} else if errs := p.checkFreshName(element, name); len(errs) != 0 {
			errors = append(errors, errs...)
		} else {
			p.defs.Signals[name] = width
		}
	}
	//
	return errors
}

// Parse a named sequence declaration, such as "(defsequence req_ack (## 1 req
// ack))".
func (p *Parser) parseDefSequence(elements []sexp.SExp) []SyntaxError {
	name, errors := p.parseFreshName(elements[1])
	// Translate body
	term, errs := p.translator.Translate(elements[2])
	errors = append(errors, errs...)
	//
	if len(errors) != 0 {
		return errors
	}
	//
	s, err := AsSequence(term)
	if err != nil {
		return p.translator.SyntaxErrors(elements[2], err.Error())
	} else if err := seq.Validate(s); err != nil {
		return p.translator.SyntaxErrors(elements[2], err.Error())
	}
	//
	p.defs.names[name] = term
	p.defs.Sequences[name] = s
	//
	return nil
}

// Parse a named property declaration, such as "(defproperty handshake (|-> req
// (## 1 ack)))".
func (p *Parser) parseDefProperty(elements []sexp.SExp) []SyntaxError {
	name, errors := p.parseFreshName(elements[1])
	// Translate body
	prop, errs := p.translateProperty(elements[2])
	errors = append(errors, errs...)
	//
	if len(errors) != 0 {
		return errors
	} else if err := property.Validate(prop); err != nil {
		return p.translator.SyntaxErrors(elements[2], err.Error())
	}
	//
	p.defs.names[name] = &PropTerm{prop}
	p.defs.Properties[name] = prop
	//
	return nil
}

// Parse a directive, such as "(assert handshake (|-> req (## 1 ack)) :disable
// rst)".
func (p *Parser) parseDirective(kind directive.Kind, list *sexp.List) []SyntaxError {
	var (
		errors  []SyntaxError
		disable bexp.Expr
		initial bool
		name    = list.Get(1).AsSymbol().Value
	)
	// Sanity check name
	if !isIdentifier(name) {
		errors = p.translator.SyntaxErrors(list.Get(1), "expected directive name")
	} else if p.defs.Directive(name) != nil {
		errors = p.translator.SyntaxErrors(list.Get(1), fmt.Sprintf("duplicate directive \"%s\"", name))
	}
	// Translate property
	prop, errs := p.translateProperty(list.Get(2))
	errors = append(errors, errs...)
	// Process attributes
	for i := 3; i < list.Len(); i++ {
		ith := list.Get(i)
		//
		if ith.AsSymbol() == nil {
			errors = append(errors, *p.translator.SyntaxError(ith, "malformed attribute"))
			continue
		}
		//
		switch ith.AsSymbol().Value {
		case ":disable":
			if i+1 >= list.Len() {
				errors = append(errors, *p.translator.SyntaxError(ith, "missing disable condition"))
			} else {
				i++
				disable, errs = p.translateExpr(list.Get(i))
				errors = append(errors, errs...)
			}
		case ":initial":
			initial = true
		default:
			errors = append(errors, *p.translator.SyntaxError(ith, "unknown attribute"))
		}
	}
	// Error check
	if len(errors) != 0 {
		return errors
	} else if err := property.Validate(prop); err != nil {
		return p.translator.SyntaxErrors(list.Get(2), err.Error())
	}
	//
	d := directive.NewDirective(name, kind, prop, disable, initial)
	p.defs.Directives = append(p.defs.Directives, d)
	p.defs.origins[d] = origin{p.srcfile, p.srcmap.Get(list)}
	//
	return nil
}

func (p *Parser) parseFreshName(s sexp.SExp) (string, []SyntaxError) {
	if s.AsSymbol() == nil || !isIdentifier(s.AsSymbol().Value) {
		return "", p.translator.SyntaxErrors(s, "expected identifier")
	}
	//
	name := s.AsSymbol().Value
	//
	return name, p.checkFreshName(s, name)
}

func (p *Parser) checkFreshName(s sexp.SExp, name string) []SyntaxError {
	_, isSignal := p.defs.Signals[name]
	_, isNamed := p.defs.names[name]
	//
	if !isIdentifier(name) {
		return p.translator.SyntaxErrors(s, "expected identifier")
	} else if p.translator.HasListRule(name) {
		return p.translator.SyntaxErrors(s, fmt.Sprintf("reserved word \"%s\"", name))
	} else if isSignal || isNamed {
		return p.translator.SyntaxErrors(s, fmt.Sprintf("duplicate definition \"%s\"", name))
	}
	//
	return nil
}

// Parse a range of the form "[m n]" or "[m $]".
func (p *Parser) parseRange(s sexp.SExp) (seq.Range, []SyntaxError) {
	var arr = s.AsArray()
	//
	if arr == nil || arr.Len() != 2 || arr.Get(0).AsSymbol() == nil || arr.Get(1).AsSymbol() == nil {
		return seq.Range{}, p.translator.SyntaxErrors(s, "expected range [m n] or [m $]")
	}
	//
	lo, ok := arr.Get(0).AsSymbol().Uint()
	if !ok {
		return seq.Range{}, p.translator.SyntaxErrors(arr.Get(0), "invalid lower bound")
	} else if arr.Get(1).AsSymbol().Value == "$" {
		return seq.AtLeast(lo), nil
	}
	//
	hi, ok := arr.Get(1).AsSymbol().Uint()
	if !ok {
		return seq.Range{}, p.translator.SyntaxErrors(arr.Get(1), "invalid upper bound")
	}
	//
	r := seq.Between(lo, hi)
	if err := r.Validate(); err != nil {
		return seq.Range{}, p.translator.SyntaxErrors(s, err.Error())
	}
	//
	return r, nil
}

// Parse a cycle delay, which is either a constant, a range, "*" (for [0:$])
// or "+" (for [1:$]).
func (p *Parser) parseDelay(s sexp.SExp) (seq.Range, []SyntaxError) {
	if symbol := s.AsSymbol(); symbol != nil {
		switch symbol.Value {
		case "*":
			return seq.AtLeast(0), nil
		case "+":
			return seq.AtLeast(1), nil
		}
		//
		if n, ok := symbol.Uint(); ok {
			return seq.Exactly(n), nil
		}
		//
		return seq.Range{}, p.translator.SyntaxErrors(s, "invalid delay")
	}
	//
	return p.parseRange(s)
}

// Parse a repetition count, which is either a constant or a range.
func (p *Parser) parseCount(s sexp.SExp) (seq.Range, []SyntaxError) {
	var (
		r    seq.Range
		errs []SyntaxError
	)
	//
	if symbol := s.AsSymbol(); symbol != nil {
		n, ok := symbol.Uint()
		if !ok {
			return seq.Range{}, p.translator.SyntaxErrors(s, "invalid repetition count")
		}
		//
		r = seq.Exactly(n)
	} else if r, errs = p.parseRange(s); len(errs) != 0 {
		return r, errs
	}
	//
	if r.Min == 0 {
		return seq.Range{}, p.translator.SyntaxErrors(s, "repetition count must be positive")
	}
	//
	return r, nil
}

func (p *Parser) translateExpr(s sexp.SExp) (bexp.Expr, []SyntaxError) {
	term, errs := p.translator.Translate(s)
	if len(errs) != 0 {
		return nil, errs
	}
	//
	e, err := AsExpr(term)
	if err != nil {
		return nil, p.translator.SyntaxErrors(s, err.Error())
	}
	//
	return e, nil
}

func (p *Parser) translateSequence(s sexp.SExp) (seq.Sequence, []SyntaxError) {
	term, errs := p.translator.Translate(s)
	if len(errs) != 0 {
		return nil, errs
	}
	//
	r, err := AsSequence(term)
	if err != nil {
		return nil, p.translator.SyntaxErrors(s, err.Error())
	}
	//
	return r, nil
}

func (p *Parser) translateProperty(s sexp.SExp) (property.Property, []SyntaxError) {
	term, errs := p.translator.Translate(s)
	if len(errs) != 0 {
		return nil, errs
	}
	//
	r, err := AsProperty(term)
	if err != nil {
		return nil, p.translator.SyntaxErrors(s, err.Error())
	}
	//
	return r, nil
}

// ============================================================================
// Symbol rules
// ============================================================================

func constantParserRule(symbol string) (Term, bool, error) {
	if symbol == "" || !unicode.IsDigit(rune(symbol[0])) {
		return nil, false, nil
	}
	//
	val, err := bitvec.Parse(symbol)
	if err != nil {
		return nil, true, err
	}
	//
	return &ExprTerm{bexp.NewConstant(val)}, true, nil
}

func referenceParserRule(defs *Definitions) sexp.SymbolRule[Term] {
	return func(symbol string) (Term, bool, error) {
		term, ok := defs.names[symbol]
		return term, ok, nil
	}
}

func signalParserRule(p *Parser) sexp.SymbolRule[Term] {
	return func(symbol string) (Term, bool, error) {
		if !isIdentifier(symbol) {
			return nil, false, nil
		} else if p.translator.HasListRule(symbol) {
			return nil, true, fmt.Errorf("unexpected keyword \"%s\"", symbol)
		}
		//
		return &ExprTerm{bexp.NewSignal(symbol)}, true, nil
	}
}

// ============================================================================
// Boolean rules
// ============================================================================

func notParserRule(_ string, args []Term) (Term, error) {
	exprs, err := exprArgs(args, 1, 1)
	if err != nil {
		return nil, err
	}
	//
	return &ExprTerm{bexp.NewNot(exprs[0])}, nil
}

func logicalParserRule(op string, args []Term) (Term, error) {
	exprs, err := exprArgs(args, 2, -1)
	if err != nil {
		return nil, err
	} else if op == "&&" {
		return &ExprTerm{bexp.NewAnd(exprs...)}, nil
	}
	//
	return &ExprTerm{bexp.NewOr(exprs...)}, nil
}

func impliesParserRule(_ string, args []Term) (Term, error) {
	exprs, err := exprArgs(args, 2, 2)
	if err != nil {
		return nil, err
	}
	//
	return &ExprTerm{bexp.NewImplies(exprs[0], exprs[1])}, nil
}

func compareParserRule(op string, args []Term) (Term, error) {
	exprs, err := exprArgs(args, 2, 2)
	if err != nil {
		return nil, err
	}
	//
	return &ExprTerm{bexp.NewCompare(comparatorOps[op], exprs[0], exprs[1])}, nil
}

func bitwiseParserRule(op string, args []Term) (Term, error) {
	var (
		exprs []bexp.Expr
		err   error
	)
	//
	if op == "~" {
		exprs, err = exprArgs(args, 1, 1)
	} else {
		exprs, err = exprArgs(args, 2, -1)
	}
	//
	if err != nil {
		return nil, err
	}
	//
	return &ExprTerm{bexp.NewBitwise(bitwiseOps[op], exprs...)}, nil
}

func edgeParserRule(op string, args []Term) (Term, error) {
	exprs, err := exprArgs(args, 1, 1)
	if err != nil {
		return nil, err
	}
	//
	return &ExprTerm{bexp.NewEdge(edgeOps[op], exprs[0])}, nil
}

func countParserRule(op string, args []Term) (Term, error) {
	exprs, err := exprArgs(args, 1, 1)
	if err != nil {
		return nil, err
	}
	//
	return &ExprTerm{bexp.NewCount(countOps[op], exprs[0])}, nil
}

// ($countbits e 0) or ($countbits e 1)
func countBitsParserRule(p *Parser) sexp.ListRule[Term] {
	return func(list *sexp.List) (Term, []SyntaxError) {
		if list.Len() != 3 {
			return nil, p.translator.SyntaxErrors(list, "expected 2 arguments")
		}
		//
		arg, errs := p.translateExpr(list.Get(1))
		if len(errs) != 0 {
			return nil, errs
		}
		//
		switch list.Get(2).String() {
		case "0":
			return &ExprTerm{bexp.NewCount(bexp.COUNTZEROS, arg)}, nil
		case "1":
			return &ExprTerm{bexp.NewCount(bexp.COUNTONES, arg)}, nil
		}
		//
		return nil, p.translator.SyntaxErrors(list.Get(2), "expected 0 or 1")
	}
}

// ($past e) or ($past e n)
func pastParserRule(p *Parser) sexp.ListRule[Term] {
	return func(list *sexp.List) (Term, []SyntaxError) {
		var n uint = 1
		//
		if list.Len() != 2 && list.Len() != 3 {
			return nil, p.translator.SyntaxErrors(list, "expected 1 or 2 arguments")
		}
		//
		arg, errs := p.translateExpr(list.Get(1))
		if len(errs) != 0 {
			return nil, errs
		}
		//
		if list.Len() == 3 {
			var ok bool
			//
			if list.Get(2).AsSymbol() == nil {
				return nil, p.translator.SyntaxErrors(list.Get(2), "expected depth")
			} else if n, ok = list.Get(2).AsSymbol().Uint(); !ok {
				return nil, p.translator.SyntaxErrors(list.Get(2), "invalid depth")
			}
		}
		//
		past, err := bexp.NewPast(arg, n)
		if err != nil {
			return nil, p.translator.SyntaxErrors(list, err.Error())
		}
		//
		return &ExprTerm{past}, nil
	}
}

// ============================================================================
// Sequence rules
// ============================================================================

// (## d s) or (## d s1 s2)
func delayParserRule(p *Parser) sexp.ListRule[Term] {
	return func(list *sexp.List) (Term, []SyntaxError) {
		if list.Len() != 3 && list.Len() != 4 {
			return nil, p.translator.SyntaxErrors(list, "expected 2 or 3 arguments")
		}
		//
		delay, errors := p.parseDelay(list.Get(1))
		args := make([]seq.Sequence, list.Len()-2)
		//
		for i := range args {
			var errs []SyntaxError
			args[i], errs = p.translateSequence(list.Get(i + 2))
			errors = append(errors, errs...)
		}
		//
		if len(errors) != 0 {
			return nil, errors
		} else if len(args) == 1 {
			return &SeqTerm{seq.NewDelay(delay, args[0])}, nil
		}
		//
		return &SeqTerm{seq.NewConcat(args[0], delay, args[1])}, nil
	}
}

// (* s n), (*-> b n) or (*= b n)
func repeatParserRule(p *Parser) sexp.ListRule[Term] {
	return func(list *sexp.List) (Term, []SyntaxError) {
		if list.Len() != 3 {
			return nil, p.translator.SyntaxErrors(list, "expected 2 arguments")
		}
		//
		count, errors := p.parseCount(list.Get(2))
		//
		if list.Head() == "*" {
			arg, errs := p.translateSequence(list.Get(1))
			if errors = append(errors, errs...); len(errors) != 0 {
				return nil, errors
			}
			//
			return &SeqTerm{seq.NewRepeat(arg, count)}, nil
		}
		//
		arg, errs := p.translateExpr(list.Get(1))
		if errors = append(errors, errs...); len(errors) != 0 {
			return nil, errors
		} else if list.Head() == "*->" {
			return &SeqTerm{seq.NewGoto(arg, count)}, nil
		}
		//
		return &SeqTerm{seq.NewNonConsecutive(arg, count)}, nil
	}
}

func plusParserRule(_ string, args []Term) (Term, error) {
	if err := checkArity(args, 1, 1); err != nil {
		return nil, err
	}
	//
	arg, err := AsSequence(args[0])
	if err != nil {
		return nil, err
	}
	//
	return &SeqTerm{seq.NewRepeat(arg, seq.AtLeast(1))}, nil
}

func throughoutParserRule(_ string, args []Term) (Term, error) {
	if err := checkArity(args, 2, 2); err != nil {
		return nil, err
	}
	//
	cond, err := AsExpr(args[0])
	if err != nil {
		return nil, err
	}
	//
	body, err := AsSequence(args[1])
	if err != nil {
		return nil, err
	}
	//
	return &SeqTerm{seq.NewThroughout(cond, body)}, nil
}

// Disjunction is a sequence when all arguments are sequences, and a property
// otherwise.
func orParserRule(_ string, args []Term) (Term, error) {
	if err := checkArity(args, 2, -1); err != nil {
		return nil, err
	}
	//
	for _, arg := range args {
		if arg.Level() == PROPERTY {
			return foldProperties(args, property.NewOr)
		}
	}
	//
	lhs, err := AsSequence(args[0])
	if err != nil {
		return nil, err
	}
	//
	for _, arg := range args[1:] {
		rhs, err := AsSequence(arg)
		if err != nil {
			return nil, err
		}
		//
		lhs = seq.NewOr(lhs, rhs)
	}
	//
	return &SeqTerm{lhs}, nil
}

// ============================================================================
// Property rules
// ============================================================================

func propNotParserRule(_ string, args []Term) (Term, error) {
	if err := checkArity(args, 1, 1); err != nil {
		return nil, err
	}
	//
	arg, err := AsProperty(args[0])
	if err != nil {
		return nil, err
	}
	//
	return &PropTerm{property.NewNot(arg)}, nil
}

func propAndParserRule(_ string, args []Term) (Term, error) {
	if err := checkArity(args, 2, -1); err != nil {
		return nil, err
	}
	//
	return foldProperties(args, property.NewAnd)
}

// (if b p) or (if b p q)
func ifParserRule(_ string, args []Term) (Term, error) {
	var els property.Property
	//
	if err := checkArity(args, 2, 3); err != nil {
		return nil, err
	}
	//
	cond, err := AsExpr(args[0])
	if err != nil {
		return nil, err
	}
	//
	props, err := asProperties(args[1:])
	if err != nil {
		return nil, err
	} else if len(props) == 2 {
		els = props[1]
	}
	//
	return &PropTerm{property.NewIfElse(cond, props[0], els)}, nil
}

func implicationParserRule(op string, args []Term) (Term, error) {
	if err := checkArity(args, 2, 2); err != nil {
		return nil, err
	}
	//
	antecedent, err := AsSequence(args[0])
	if err != nil {
		return nil, err
	}
	//
	consequent, err := AsProperty(args[1])
	if err != nil {
		return nil, err
	}
	//
	return &PropTerm{property.NewImplication(antecedent, consequent, op == "|->")}, nil
}

// (always p), (always [m n] p), and likewise for s_always, eventually and
// s_eventually.
func temporalParserRule(p *Parser) sexp.ListRule[Term] {
	return func(list *sexp.List) (Term, []SyntaxError) {
		var (
			errors []SyntaxError
			rng    *seq.Range
			head   = list.Head()
			strong = strings.HasPrefix(head, "s_")
		)
		//
		if list.Len() != 2 && list.Len() != 3 {
			return nil, p.translator.SyntaxErrors(list, "expected 1 or 2 arguments")
		} else if list.Len() == 3 {
			r, errs := p.parseRange(list.Get(1))
			errors, rng = errs, &r
		}
		//
		arg, errs := p.translateProperty(list.Get(list.Len() - 1))
		errors = append(errors, errs...)
		//
		if len(errors) != 0 {
			return nil, errors
		}
		//
		bounded := rng != nil && !rng.Unbounded
		//
		if strings.HasSuffix(head, "always") {
			if strong && !bounded {
				return nil, p.translator.SyntaxErrors(list, "s_always requires a bounded range")
			}
			//
			return &PropTerm{property.NewAlways(arg, rng, strong)}, nil
		} else if !strong && !bounded {
			return nil, p.translator.SyntaxErrors(list, "eventually requires a bounded range")
		}
		//
		return &PropTerm{property.NewEventually(arg, rng, strong)}, nil
	}
}

func untilParserRule(op string, args []Term) (Term, error) {
	var (
		strong    = strings.HasPrefix(op, "s_")
		inclusive = strings.HasSuffix(op, "_with")
	)
	//
	if err := checkArity(args, 2, 2); err != nil {
		return nil, err
	}
	//
	props, err := asProperties(args)
	if err != nil {
		return nil, err
	}
	//
	return &PropTerm{property.NewUntil(props[0], props[1], strong, inclusive)}, nil
}

func strengthParserRule(op string, args []Term) (Term, error) {
	var strength = property.WEAK
	//
	if err := checkArity(args, 1, 1); err != nil {
		return nil, err
	} else if op == "strong" {
		strength = property.STRONG
	}
	//
	arg, err := AsSequence(args[0])
	if err != nil {
		return nil, err
	}
	//
	return &PropTerm{property.NewSequence(arg, strength)}, nil
}

// ============================================================================
// Helpers
// ============================================================================

// Check the number of arguments lies within a given range, where a negative
// maximum indicates no upper bound.
func checkArity(args []Term, lo int, hi int) error {
	switch {
	case lo == hi && len(args) != lo:
		return fmt.Errorf("expected %d argument(s), found %d", lo, len(args))
	case len(args) < lo:
		return fmt.Errorf("expected at least %d arguments, found %d", lo, len(args))
	case hi >= 0 && len(args) > hi:
		return fmt.Errorf("expected at most %d arguments, found %d", hi, len(args))
	}
	//
	return nil
}

func exprArgs(args []Term, lo int, hi int) ([]bexp.Expr, error) {
	if err := checkArity(args, lo, hi); err != nil {
		return nil, err
	}
	//
	return asExprs(args)
}

func foldProperties[T property.Property](args []Term, fn func(property.Property, property.Property) T) (Term, error) {
	props, err := asProperties(args)
	if err != nil {
		return nil, err
	}
	//
	var lhs property.Property = props[0]
	//
	for _, rhs := range props[1:] {
		lhs = fn(lhs, rhs)
	}
	//
	return &PropTerm{lhs}, nil
}

// Identifiers start with a letter or underscore, and may include digits, dots
// (for module-qualified names) and dollars.
func isIdentifier(symbol string) bool {
	for i, c := range symbol {
		if c == '_' || unicode.IsLetter(c) || (i > 0 && (unicode.IsDigit(c) || c == '.' || c == '$')) {
			continue
		}
		//
		return false
	}
	//
	return symbol != ""
}
