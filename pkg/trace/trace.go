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
	"fmt"
)

// Window provides access to the current cycle of a trace, along with a bounded
// number of cycles before it.  Boolean expressions are evaluated against a
// window, where history operators (e.g. $past) look backwards from the current
// cycle.
type Window interface {
	// Cycle returns the current cycle of this window.
	Cycle() uint
	// At returns the snapshot at a given (absolute) cycle, which must be no
	// later than the current cycle.  False is returned if the requested cycle
	// is not held by this window (e.g. it was evicted from history).
	At(cycle uint) (*Snapshot, bool)
}

// Trace represents a finite sequence of snapshots with contiguous cycle
// indices starting from zero.
type Trace interface {
	// Height returns the number of cycles in this trace.
	Height() uint
	// Snapshot returns the snapshot for a given cycle.
	Snapshot(cycle uint) *Snapshot
	// Signals returns the (sorted) names of all signals in this trace.
	Signals() []string
	// Window returns a view of this trace positioned at the given cycle.
	Window(cycle uint) Window
}

// ArrayTrace provides a straightforward implementation of Trace backed by an
// array of snapshots.
type ArrayTrace struct {
	snapshots []*Snapshot
	signals   []string
}

// NewArrayTrace constructs a trace from a given array of snapshots.  An error
// is returned if the cycle indices are not contiguous from zero.
func NewArrayTrace(snapshots []*Snapshot) (*ArrayTrace, error) {
	var signals = make(map[string]bool)
	//
	for i, s := range snapshots {
		if s.Cycle() != uint(i) {
			return nil, fmt.Errorf("non-contiguous cycle %d (expected %d)", s.Cycle(), i)
		}
		//
		for _, name := range s.Names() {
			signals[name] = true
		}
	}
	//
	return &ArrayTrace{snapshots, sortedKeys(signals)}, nil
}

// Height returns the number of cycles in this trace.
func (p *ArrayTrace) Height() uint {
	return uint(len(p.snapshots))
}

// Snapshot returns the snapshot for a given cycle.
func (p *ArrayTrace) Snapshot(cycle uint) *Snapshot {
	return p.snapshots[cycle]
}

// Signals returns the (sorted) names of all signals in this trace.
func (p *ArrayTrace) Signals() []string {
	return p.signals
}

// Window returns a view of this trace positioned at the given cycle.
func (p *ArrayTrace) Window(cycle uint) Window {
	return &arrayWindow{p, cycle}
}

type arrayWindow struct {
	trace *ArrayTrace
	cycle uint
}

func (p *arrayWindow) Cycle() uint {
	return p.cycle
}

func (p *arrayWindow) At(cycle uint) (*Snapshot, bool) {
	if cycle > p.cycle || cycle >= p.trace.Height() {
		return nil, false
	}
	//
	return p.trace.snapshots[cycle], true
}
