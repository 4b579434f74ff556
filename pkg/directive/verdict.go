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

	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
)

// VerdictKind classifies the state of a directive.
type VerdictKind uint8

const (
	// RUNNING indicates the directive is still being evaluated.
	RUNNING VerdictKind = iota
	// HOLDS indicates no violation was observed, and no strong obligation
	// remained pending.
	HOLDS
	// VIOLATED indicates an assertion was violated.
	VIOLATED
	// COVERED indicates a cover was witnessed.
	COVERED
	// INCONCLUSIVE indicates the trace ended before the directive could be
	// decided.
	INCONCLUSIVE
	// ASSUMPTION_UNSATISFIED indicates an assumption (or restriction) was
	// violated, hence the trace lies outside the modelled input domain.
	ASSUMPTION_UNSATISFIED
	// OVERFLOW indicates the number of outstanding match attempts exceeded
	// the configured limit.
	OVERFLOW
	// ERROR indicates evaluation failed (e.g. because a signal was missing).
	ERROR
)

var verdictKinds = []string{"Running", "Holds", "Violated", "Covered", "Inconclusive", "AssumptionUnsatisfied",
	"Overflow", "Error"}

func (k VerdictKind) String() string {
	return verdictKinds[k]
}

// ParseVerdictKind parses the name of a verdict kind.
func ParseVerdictKind(name string) (VerdictKind, error) {
	for i, k := range verdictKinds {
		if k == name {
			return VerdictKind(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown verdict \"%s\"", name)
}

// Failed checks whether this verdict kind indicates a failure of some kind.
func (k VerdictKind) Failed() bool {
	return k == VIOLATED || k == ASSUMPTION_UNSATISFIED || k == OVERFLOW || k == ERROR
}

// Verdict captures the outcome of a directive.  For a violation or a witness,
// the cycle at which it was detected and the start cycle of the responsible
// attempt are recorded, along with the snapshots spanning the attempt (as far
// as they remain available).
type Verdict struct {
	Directive string
	Kind      VerdictKind
	// Cycle at which this verdict was reached.
	Cycle uint
	// Start cycle of the attempt responsible for this verdict.
	Start uint
	// Snapshots from the start cycle through to the verdict cycle.
	Trace []*trace.Snapshot
	// Matches recorded for the top-level sequence (or antecedent).
	Matches []seq.Match
	// Error responsible for this verdict (if applicable).
	Err error
}

// Resolved checks whether this verdict is final.
func (v Verdict) Resolved() bool {
	return v.Kind != RUNNING
}

func (v Verdict) String() string {
	switch v.Kind {
	case RUNNING, HOLDS:
		return fmt.Sprintf("%s: %s", v.Directive, v.Kind.String())
	case INCONCLUSIVE:
		return fmt.Sprintf("%s: %s at cycle %d", v.Directive, v.Kind.String(), v.Cycle)
	case OVERFLOW, ERROR:
		return fmt.Sprintf("%s: %s at cycle %d (%s)", v.Directive, v.Kind.String(), v.Cycle, v.Err)
	default:
		return fmt.Sprintf("%s: %s at cycle %d (attempt from cycle %d)", v.Directive, v.Kind.String(), v.Cycle,
			v.Start)
	}
}
