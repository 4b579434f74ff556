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
	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/property"
	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/util/source"
)

// Definitions captures everything declared across one or more source files.
// Named sequences and properties are shared by reference, hence a named
// sequence used by several directives is compiled once per directive but
// parsed only once.
type Definitions struct {
	// Declared signals and their widths, where a width of zero indicates no
	// width was given.
	Signals map[string]uint
	// Named sequences
	Sequences map[string]seq.Sequence
	// Named properties
	Properties map[string]property.Property
	// Directives in order of declaration
	Directives []*directive.Directive
	// Named terms for resolving references
	names map[string]Term
	// Origin of each directive
	origins map[*directive.Directive]origin
}

type origin struct {
	srcfile *source.File
	span    source.Span
}

// NewDefinitions constructs an empty set of definitions.
func NewDefinitions() *Definitions {
	return &Definitions{
		Signals:    make(map[string]uint),
		Sequences:  make(map[string]seq.Sequence),
		Properties: make(map[string]property.Property),
		names:      make(map[string]Term),
		origins:    make(map[*directive.Directive]origin),
	}
}

// Declared returns a predicate identifying declared signals, or nil when no
// signals were declared (in which case any signal name is permitted).
func (p *Definitions) Declared() func(string) bool {
	if len(p.Signals) == 0 {
		return nil
	}
	//
	return func(name string) bool {
		_, ok := p.Signals[name]
		return ok
	}
}

// Directive looks up a directive by name.
func (p *Definitions) Directive(name string) *directive.Directive {
	for _, d := range p.Directives {
		if d.Name == name {
			return d
		}
	}
	//
	return nil
}

// SyntaxError constructs a syntax error highlighting the declaration of a
// given directive.  This returns nil for a directive not declared in any
// source file.
func (p *Definitions) SyntaxError(d *directive.Directive, msg string) *source.SyntaxError {
	if o, ok := p.origins[d]; ok {
		return o.srcfile.SyntaxError(o.span, msg)
	}
	//
	return nil
}
