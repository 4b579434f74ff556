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
package source

import (
	"fmt"
)

// Span identifies a contiguous range of characters within a source file, by
// index rather than by content, so the enclosing line can be recovered.
type Span struct {
	// The first character of this span in the original string.
	start int
	// One past the final character of this span in the original string.
	end int
}

// NewSpan constructs a new span, where start must not exceed end.
func NewSpan(start int, end int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span %d-%d", start, end))
	}
	//
	return Span{start, end}
}

// Start returns the starting index of this span in the original string.
func (p *Span) Start() int {
	return p.start
}

// End returns one past the last index of this span in the original string.
func (p *Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span in the original
// string.
func (p *Span) Length() int {
	return p.end - p.start
}

// Map records, for each node of a parsed tree, the span of the source text it
// was parsed from.  Syntax errors are reported against these spans.
type Map[T comparable] struct {
	mapping map[T]Span
}

// NewSourceMap constructs an initially empty source map.
func NewSourceMap[T comparable]() *Map[T] {
	return &Map[T]{make(map[T]Span)}
}

// Put registers a node with a given span.  Registering the same node twice
// panics.
func (p *Map[T]) Put(item T, span Span) {
	if _, ok := p.mapping[item]; ok {
		panic(fmt.Sprintf("source map key already exists: %v", any(item)))
	}
	//
	p.mapping[item] = span
}

// Has checks whether a given node is registered with this source map.
func (p *Map[T]) Has(item T) bool {
	_, ok := p.mapping[item]
	return ok
}

// Get returns the span of a given node, which must be registered with this
// source map.
func (p *Map[T]) Get(item T) Span {
	if s, ok := p.mapping[item]; ok {
		return s
	}
	//
	panic(fmt.Sprintf("invalid source map key: %v", any(item)))
}
