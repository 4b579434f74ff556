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

	log "github.com/sirupsen/logrus"
)

// AttemptOverflowError indicates that the number of outstanding match attempts
// for a sequence (or of attempts and obligations for a property) exceeded the
// configured limit.  Attempts are never silently dropped.
type AttemptOverflowError struct {
	// Sequence (or property) responsible.
	Sequence    string
	Limit       uint
	Outstanding uint
}

func (e *AttemptOverflowError) Error() string {
	return fmt.Sprintf("%d outstanding attempts for %s exceeds limit of %d", e.Outstanding, e.Sequence,
		e.Limit)
}

// Budget bounds the number of outstanding match attempts for each sequence,
// where a single budget is shared by all matchers of a directive.  A nil
// budget, or one with a limit of zero, is unbounded.
type Budget struct {
	limit  uint
	counts map[*Program]uint
}

// NewBudget constructs a budget with a given limit of outstanding attempts
// per sequence, where zero indicates no limit.
func NewBudget(limit uint) *Budget {
	return &Budget{limit, make(map[*Program]uint)}
}

// Outstanding returns the number of attempts currently outstanding for a
// given program.
func (p *Budget) Outstanding(program *Program) uint {
	if p == nil {
		return 0
	}
	//
	return p.counts[program]
}

// Update the number of outstanding attempts for a given program, having
// discarded some number of old attempts and added some number of new attempts.
func (p *Budget) update(program *Program, old uint, new uint) error {
	if p == nil {
		return nil
	}
	//
	n := p.counts[program] - min(old, p.counts[program]) + new
	//
	if n == 0 {
		delete(p.counts, program)
	} else {
		p.counts[program] = n
	}
	//
	if p.limit > 0 && n > p.limit {
		log.Debugf("attempt overflow for %s (%d > %d)", program.sequence.String(), n, p.limit)
		//
		return &AttemptOverflowError{program.sequence.String(), p.limit, n}
	}
	//
	return nil
}

// Admit checks the number of attempts in flight for a given property against
// the limit, where each attempt (or obligation) holds its own evaluation state
// regardless of the matchers it uses.
func (p *Budget) Admit(name string, outstanding uint) error {
	if p == nil || p.limit == 0 || outstanding <= p.limit {
		return nil
	}
	//
	log.Debugf("attempt overflow for %s (%d > %d)", name, outstanding, p.limit)
	//
	return &AttemptOverflowError{name, p.limit, outstanding}
}
