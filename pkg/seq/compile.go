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
	"strings"

	"github.com/consensys/go-sva/pkg/bexp"
)

type opcode uint8

const (
	// Evaluate a Boolean at the current cycle, continuing on success.
	opCheck opcode = iota
	// Wait for a number of cycles within a given range.
	opDelay
	// Wait (possibly zero cycles) until a Boolean holds.
	opAwait
	// Continue now, and at each subsequent cycle whilst a Boolean is false.
	opTrail
	// Fork execution at both x and y.
	opSplit
	// Continue execution at x.
	opJump
	// Reset a repetition counter.
	opReset
	// Increment a repetition counter, exiting to x if within range and
	// continuing if more repetitions are permitted.
	opLoop
	// Report a match.
	opMatch
)

var opcodes = []string{"check", "delay", "await", "trail", "split", "jump", "reset", "loop", "match"}

type instruction struct {
	op opcode
	// Boolean expression (check, await, trail)
	expr bexp.Expr
	// Conditions which must hold at every cycle visited by this instruction
	// (arising from throughout).
	guards []bexp.Expr
	// Range for delays and loops.
	bounds Range
	// Counter index (reset, loop)
	counter uint
	// Indicates a check which only guards the sequence (check), and hence
	// does not count as progress.
	guard bool
	// Branch targets (split, jump, loop)
	x, y int
}

func (p instruction) String() string {
	var builder strings.Builder
	//
	builder.WriteString(opcodes[p.op])
	//
	switch p.op {
	case opCheck, opAwait, opTrail:
		builder.WriteString(fmt.Sprintf(" %s", p.expr.String()))
	case opDelay:
		builder.WriteString(fmt.Sprintf(" %s", p.bounds.String()))
	case opSplit:
		builder.WriteString(fmt.Sprintf(" %d %d", p.x, p.y))
	case opJump:
		builder.WriteString(fmt.Sprintf(" %d", p.x))
	case opReset:
		builder.WriteString(fmt.Sprintf(" c%d", p.counter))
	case opLoop:
		builder.WriteString(fmt.Sprintf(" c%d %s %d", p.counter, p.bounds.String(), p.x))
	}
	//
	for _, g := range p.guards {
		builder.WriteString(fmt.Sprintf(" [%s]", g.String()))
	}
	//
	return builder.String()
}

// Program is the compiled form of a sequence, which is executed by a Matcher.
// Compilation produces a small instruction set in the style of a Pike VM,
// where each match attempt is a thread positioned at some instruction.  A
// program is immutable and can be shared between matchers.
type Program struct {
	sequence Sequence
	code     []instruction
	counters uint
}

// Compile a given sequence into a program, or return an error if the sequence
// is malformed.
func Compile(s Sequence) (*Program, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	//
	c := &compiler{}
	c.compile(s, nil)
	c.emit(instruction{op: opMatch})
	//
	return &Program{s, c.code, c.counters}, nil
}

// Sequence returns the sequence from which this program was compiled.
func (p *Program) Sequence() Sequence {
	return p.sequence
}

func (p *Program) String() string {
	var builder strings.Builder
	//
	for i, insn := range p.code {
		builder.WriteString(fmt.Sprintf("%d: %s\n", i, insn.String()))
	}
	//
	return builder.String()
}

type compiler struct {
	code     []instruction
	counters uint
}

func (c *compiler) emit(insn instruction) int {
	c.code = append(c.code, insn)
	return len(c.code) - 1
}

func (c *compiler) compile(s Sequence, guards []bexp.Expr) {
	switch s := s.(type) {
	case *Bool:
		c.emit(instruction{op: opCheck, expr: s.Expr, guards: guards})
	case *Concat:
		if s.Left != nil {
			c.compile(s.Left, guards)
		}
		//
		c.emit(instruction{op: opDelay, bounds: s.Delay, guards: guards})
		c.compile(s.Right, guards)
	case *Repeat:
		c.compileRepeat(s.Count, guards, func() { c.compile(s.Arg, guards) })
	case *Goto:
		c.compileRepeat(s.Count, guards, func() {
			c.emit(instruction{op: opAwait, expr: s.Expr, guards: guards})
		})
	case *NonConsecutive:
		c.compileRepeat(s.Count, guards, func() {
			c.emit(instruction{op: opAwait, expr: s.Expr, guards: guards})
		})
		c.emit(instruction{op: opTrail, expr: s.Expr, guards: guards})
	case *Or:
		split := c.emit(instruction{op: opSplit})
		c.code[split].x = len(c.code)
		c.compile(s.Left, guards)
		jump := c.emit(instruction{op: opJump})
		c.code[split].y = len(c.code)
		c.compile(s.Right, guards)
		c.code[jump].x = len(c.code)
	case *Throughout:
		// The condition must hold at the start cycle, and at every cycle
		// visited by the sequence thereafter.
		guards = append(guards[:len(guards):len(guards)], s.Cond)
		c.emit(instruction{op: opCheck, expr: s.Cond, guards: guards, guard: true})
		c.compile(s.Seq, guards)
	default:
		// Unreachable, since sequences are validated before compilation.
		panic(fmt.Sprintf("unknown sequence operator %T", s))
	}
}

// Compile a repetition of some body, where each iteration begins one cycle
// after the previous iteration ended.
func (c *compiler) compileRepeat(count Range, guards []bexp.Expr, body func()) {
	counter := c.counters
	c.counters++
	//
	c.emit(instruction{op: opReset, counter: counter})
	start := len(c.code)
	body()
	loop := c.emit(instruction{op: opLoop, counter: counter, bounds: count})
	c.emit(instruction{op: opDelay, bounds: Exactly(1), guards: guards})
	c.emit(instruction{op: opJump, x: start})
	// Patch loop exit
	c.code[loop].x = len(c.code)
}
