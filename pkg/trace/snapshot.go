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
package trace

import (
	"maps"
	"slices"

	"github.com/consensys/go-sva/pkg/bitvec"
)

// Snapshot captures the values of all signals at a single clock cycle.  A
// snapshot is immutable once constructed, and can therefore be shared freely
// between directives evaluated in parallel.
type Snapshot struct {
	cycle  uint
	values map[string]bitvec.Vector
}

// NewSnapshot constructs a snapshot for a given cycle from a mapping of signal
// names to values.  The mapping is copied, hence subsequent changes to it do
// not affect the snapshot.
func NewSnapshot(cycle uint, values map[string]bitvec.Vector) *Snapshot {
	return &Snapshot{cycle, maps.Clone(values)}
}

// Cycle returns the clock cycle to which this snapshot corresponds.
func (p *Snapshot) Cycle() uint {
	return p.cycle
}

// Get returns the value of a given signal in this snapshot, or false if the
// signal has no value.
func (p *Snapshot) Get(name string) (bitvec.Vector, bool) {
	val, ok := p.values[name]
	return val, ok
}

// Has checks whether this snapshot holds a value for the given signal.
func (p *Snapshot) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Names returns the (sorted) names of all signals in this snapshot.
func (p *Snapshot) Names() []string {
	names := slices.Collect(maps.Keys(p.values))
	slices.Sort(names)
	//
	return names
}

// Width returns the number of signals in this snapshot.
func (p *Snapshot) Width() uint {
	return uint(len(p.values))
}
