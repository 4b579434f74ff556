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
package directive

import (
	"fmt"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/property"
)

// Kind identifies how a directive interprets the property it wraps.
type Kind uint8

const (
	// ASSERT requires the property to hold.
	ASSERT Kind = iota
	// ASSUME constrains the inputs of the design, such that a violation
	// indicates a trace lying outside the modelled input domain.
	ASSUME
	// COVER requires the property to be witnessed at least once.
	COVER
	// RESTRICT behaves identically to ASSUME for the purposes of evaluation.
	RESTRICT
)

var kinds = []string{"assert", "assume", "cover", "restrict"}

func (k Kind) String() string {
	return kinds[k]
}

// ParseKind parses the name of a directive kind.
func ParseKind(name string) (Kind, error) {
	for i, k := range kinds {
		if k == name {
			return Kind(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown directive kind \"%s\"", name)
}

// DisablePolicy determines what happens to attempts in flight when the disable
// condition of a directive becomes true.
type DisablePolicy uint8

const (
	// DISABLE_ABORT discards all attempts in flight.
	DISABLE_ABORT DisablePolicy = iota
	// DISABLE_FREEZE suspends all attempts in flight, and resumes them once
	// the disable condition becomes false.  Disabled cycles are not observed
	// by suspended attempts.
	DISABLE_FREEZE
)

var disablePolicies = []string{"abort", "freeze"}

func (p DisablePolicy) String() string {
	return disablePolicies[p]
}

// ParseDisablePolicy parses the name of a disable policy.
func ParseDisablePolicy(name string) (DisablePolicy, error) {
	for i, p := range disablePolicies {
		if p == name {
			return DisablePolicy(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown disable policy \"%s\"", name)
}

// EventuallyPolicy determines how strong obligations still pending at the end
// of a finite trace are reported.
type EventuallyPolicy uint8

const (
	// EVENTUALLY_INCONCLUSIVE reports pending strong obligations as
	// inconclusive.
	EVENTUALLY_INCONCLUSIVE EventuallyPolicy = iota
	// EVENTUALLY_FAIL reports pending strong obligations as failures.
	EVENTUALLY_FAIL
)

var eventuallyPolicies = []string{"inconclusive", "fail"}

func (p EventuallyPolicy) String() string {
	return eventuallyPolicies[p]
}

// ParseEventuallyPolicy parses the name of a finite trace policy.
func ParseEventuallyPolicy(name string) (EventuallyPolicy, error) {
	for i, p := range eventuallyPolicies {
		if p == name {
			return EventuallyPolicy(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown finite trace policy \"%s\"", name)
}

// Directive is a named instantiation of a property under assert, assume,
// cover or restrict semantics.  By default, a directive starts an attempt of
// its property at every (enabled) cycle.  An initial directive evaluates its
// property exactly once, from the first enabled cycle.
type Directive struct {
	Name     string
	Kind     Kind
	Property property.Property
	// Disable condition (optional).
	Disable bexp.Expr
	Initial bool
}

// NewDirective constructs a new directive, where the disable condition may be
// nil.
func NewDirective(name string, kind Kind, prop property.Property, disable bexp.Expr, initial bool) *Directive {
	return &Directive{name, kind, prop, disable, initial}
}

// Strong determines whether sequences of unspecified strength are strong
// under this directive.  They are weak under assert and assume, and strong
// otherwise.
func (d *Directive) Strong() bool {
	return d.Kind != ASSERT && d.Kind != ASSUME
}

// Depth returns the number of cycles of history required to evaluate this
// directive.
func (d *Directive) Depth() uint {
	depth := d.Property.Depth()
	//
	if d.Disable != nil {
		depth = max(depth, d.Disable.Depth())
	}
	//
	return depth
}

// Signals returns the (sorted) set of signals referenced by this directive.
func (d *Directive) Signals() []string {
	signals := d.Property.Signals()
	//
	if d.Disable != nil {
		signals = append(signals, d.Disable.Signals()...)
	}
	//
	return sortedUnique(signals)
}

func (d *Directive) String() string {
	var prefix = d.Kind.String()
	//
	if d.Initial {
		prefix = "initial " + prefix
	}
	//
	if d.Disable != nil {
		return fmt.Sprintf("%s property (disable iff (%s) %s)", prefix, d.Disable.String(), d.Property.String())
	}
	//
	return fmt.Sprintf("%s property (%s)", prefix, d.Property.String())
}
