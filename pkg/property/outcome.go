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
package property

// Outcome captures the state of a single property evaluation.  Whilst the
// trace continues, an evaluation is either PENDING or resolved as HOLDS,
// VACUOUS or VIOLATED.  At the end of a finite trace, a pending evaluation is
// classified as either WEAK_PENDING (i.e. it would hold weakly) or
// STRONG_PENDING (i.e. some strong obligation remains unfulfilled).
type Outcome uint8

const (
	// PENDING indicates evaluation is still in progress.
	PENDING Outcome = iota
	// HOLDS indicates the property holds (non-vacuously).
	HOLDS
	// VACUOUS indicates the property holds vacuously.  For example, an
	// implication whose antecedent never matched.
	VACUOUS
	// VIOLATED indicates the property was shown to be false.
	VIOLATED
	// WEAK_PENDING indicates evaluation was incomplete at the end of the
	// trace, but only weak obligations remained.
	WEAK_PENDING
	// STRONG_PENDING indicates evaluation was incomplete at the end of the
	// trace, and some strong obligation remained.
	STRONG_PENDING
)

var outcomes = []string{"pending", "holds", "vacuous", "violated", "weak-pending", "strong-pending"}

func (o Outcome) String() string {
	return outcomes[o]
}

// Satisfied checks whether this outcome is a (possibly vacuous) success.
func (o Outcome) Satisfied() bool {
	return o == HOLDS || o == VACUOUS
}

// Resolved checks whether this outcome is decisive, meaning evaluation is
// complete.
func (o Outcome) Resolved() bool {
	return o == HOLDS || o == VACUOUS || o == VIOLATED
}

// negate an outcome, such that weak and strong pending outcomes are swapped.
func negate(o Outcome) Outcome {
	switch o {
	case HOLDS, VACUOUS:
		return VIOLATED
	case VIOLATED:
		return HOLDS
	case WEAK_PENDING:
		return STRONG_PENDING
	case STRONG_PENDING:
		return WEAK_PENDING
	default:
		return o
	}
}

// Rank of final outcomes for conjunction, from most to least significant.
var conjunctionRank = []Outcome{VIOLATED, STRONG_PENDING, WEAK_PENDING, HOLDS, VACUOUS}

// Rank of final outcomes for disjunction, from most to least significant.
var disjunctionRank = []Outcome{HOLDS, VACUOUS, WEAK_PENDING, STRONG_PENDING, VIOLATED}

// conjunction of final outcomes.  The conjunction of nothing is vacuous.
func conjunction(outcomes ...Outcome) Outcome {
	return combine(conjunctionRank, VACUOUS, outcomes)
}

// disjunction of final outcomes.  The disjunction of nothing is violated.
func disjunction(outcomes ...Outcome) Outcome {
	return combine(disjunctionRank, VIOLATED, outcomes)
}

func combine(rank []Outcome, empty Outcome, outcomes []Outcome) Outcome {
	for _, r := range rank {
		for _, o := range outcomes {
			if o == r {
				return r
			}
		}
	}
	//
	return empty
}
