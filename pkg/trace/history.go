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
	"maps"
	"slices"
)

// History is a bounded window over an open-ended trace, used when snapshots
// are fed incrementally.  It retains the current snapshot plus a fixed number
// of preceding snapshots, as determined by its depth.  Older snapshots are
// evicted as new ones arrive.
type History struct {
	// Ring buffer of retained snapshots.
	buffer []*Snapshot
	// Number of snapshots pushed so far.
	count uint
}

// NewHistory constructs an empty history which retains a given number of
// cycles prior to the current one.
func NewHistory(depth uint) *History {
	return &History{make([]*Snapshot, depth+1), 0}
}

// Depth returns the number of cycles retained prior to the current one.
func (p *History) Depth() uint {
	return uint(len(p.buffer)) - 1
}

// Len returns the number of snapshots pushed into this history so far.
func (p *History) Len() uint {
	return p.count
}

// Push a new snapshot into this history, which becomes the current cycle.
// Snapshots must be pushed in order of strictly increasing contiguous cycles
// starting from zero.
func (p *History) Push(snapshot *Snapshot) error {
	if snapshot.Cycle() != p.count {
		return fmt.Errorf("non-contiguous cycle %d (expected %d)", snapshot.Cycle(), p.count)
	}
	//
	p.buffer[p.count%uint(len(p.buffer))] = snapshot
	p.count++
	//
	return nil
}

// Cycle returns the current cycle of this history.  This should only be called
// after at least one snapshot has been pushed.
func (p *History) Cycle() uint {
	return p.count - 1
}

// At returns the snapshot at a given cycle, provided it is still retained.
func (p *History) At(cycle uint) (*Snapshot, bool) {
	n := uint(len(p.buffer))
	//
	if cycle >= p.count || cycle+n < p.count {
		return nil, false
	}
	//
	return p.buffer[cycle%n], true
}

// Retained returns all snapshots currently retained, in order of cycle.
func (p *History) Retained() []*Snapshot {
	var (
		n     = uint(len(p.buffer))
		first = p.count - min(p.count, n)
		snaps = make([]*Snapshot, 0, p.count-first)
	)
	//
	for i := first; i < p.count; i++ {
		snaps = append(snaps, p.buffer[i%n])
	}
	//
	return snaps
}

func sortedKeys(items map[string]bool) []string {
	keys := slices.Collect(maps.Keys(items))
	slices.Sort(keys)
	//
	return keys
}
