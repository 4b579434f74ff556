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

import (
	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
)

// Evaluator evaluates a single attempt of a property, starting from the first
// cycle it is stepped with.  Whilst the trace continues, each step reports
// whether the property is still being evaluated (PENDING) or has been resolved.
// Once resolved, further steps report the same outcome.
type Evaluator struct {
	ctx      *evalContext
	property Property
	instance instance
	outcome  Outcome
}

// NewEvaluator constructs an evaluator for a compiled property, where match
// attempts are accounted against the given budget (which may be nil).
func NewEvaluator(c *Compiled, budget *seq.Budget) *Evaluator {
	return &Evaluator{ctx: c.context(budget), property: c.property, outcome: PENDING}
}

// Step this evaluator at the cycle of the given window.  The first step
// determines the start cycle.
func (p *Evaluator) Step(w trace.Window) (Outcome, error) {
	if p.outcome != PENDING {
		return p.outcome, nil
	} else if p.instance == nil {
		p.instance = p.ctx.instantiate(p.property, w.Cycle())
	}
	//
	outcome, err := p.instance.step(w)
	if err != nil {
		return PENDING, err
	}
	//
	p.outcome = outcome
	//
	return outcome, nil
}

// Skip informs this evaluator that the next cycle follows a gap of excluded
// cycles.
func (p *Evaluator) Skip(next uint) {
	if p.instance != nil && p.outcome == PENDING {
		p.instance.skip(next)
	}
}

// Finish this evaluator at the end of a finite trace, returning its final
// outcome.  An evaluator which was never stepped finishes as though its start
// cycle lay beyond the trace.
func (p *Evaluator) Finish() Outcome {
	if p.outcome != PENDING {
		return p.outcome
	} else if p.instance == nil {
		inst := p.ctx.instantiate(p.property, 0)
		defer inst.close()
		//
		return inst.finish()
	}
	//
	p.outcome = p.instance.finish()
	p.instance.close()
	//
	return p.outcome
}
