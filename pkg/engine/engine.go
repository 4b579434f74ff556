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
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/consensys/go-sva/pkg/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// VerdictSink receives the verdict so far of a directive after each cycle,
// when streaming is enabled.  A sink may be called concurrently for distinct
// directives.
type VerdictSink func(cycle uint, verdict directive.Verdict)

// Engine evaluates a fixed set of directives over traces.  All directives are
// checked when the engine is constructed, such that malformed directives are
// rejected before any trace is accepted.  Directives share no state during
// evaluation.
type Engine struct {
	config     Config
	options    directive.Options
	directives []*directive.Directive
	// History required by the deepest directive.
	depth uint
}

// New constructs an engine for a given set of directives.  The optional
// declared function identifies the signals which can be referenced, where nil
// permits any signal.
func New(config Config, directives []*directive.Directive, declared func(string) bool) (*Engine, error) {
	options, err := config.Options()
	if err != nil {
		return nil, err
	}
	//
	options.Declared = declared
	engine := &Engine{config, options, directives, 0}
	// Check all directives up front
	for _, d := range directives {
		if _, err := directive.NewRunner(d, options); err != nil {
			return nil, err
		}
		//
		engine.depth = max(engine.depth, d.Depth())
	}
	//
	return engine, nil
}

// Config returns the configuration of this engine.
func (e *Engine) Config() Config {
	return e.config
}

// Directives returns the directives evaluated by this engine.
func (e *Engine) Directives() []*directive.Directive {
	return e.directives
}

// HistoryDepth returns the number of cycles of history retained when
// evaluating incrementally.
func (e *Engine) HistoryDepth() uint {
	return max(e.depth, e.config.HistoryDepth)
}

// Run all directives over a finite trace, returning one verdict per directive
// (in the order the directives were given).  Cancellation is checked between
// cycles.  If the context is cancelled, no verdicts are returned.
func (e *Engine) Run(ctx context.Context, tr trace.Trace, sink VerdictSink) ([]directive.Verdict, error) {
	var (
		stats    = util.NewPerfStats()
		verdicts = make([]directive.Verdict, len(e.directives))
		mutex    sync.Mutex
	)
	// Serialise calls to the sink
	if sink != nil && e.config.Streaming {
		inner := sink
		sink = func(cycle uint, v directive.Verdict) {
			mutex.Lock()
			defer mutex.Unlock()
			inner(cycle, v)
		}
	} else {
		sink = nil
	}
	//
	if e.config.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		//
		for i, d := range e.directives {
			g.Go(func() error {
				v, err := e.run(gctx, d, tr, sink)
				verdicts[i] = v
				//
				return err
			})
		}
		//
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, d := range e.directives {
			v, err := e.run(ctx, d, tr, sink)
			if err != nil {
				return nil, err
			}
			//
			verdicts[i] = v
		}
	}
	//
	stats.Log(fmt.Sprintf("Evaluating %d directives", len(e.directives)), tr.Height())
	//
	return verdicts, nil
}

// Run a single directive over a finite trace.
func (e *Engine) run(ctx context.Context, d *directive.Directive, tr trace.Trace, sink VerdictSink) (
	directive.Verdict, error) {
	runner, err := directive.NewRunner(d, e.options)
	if err != nil {
		return directive.Verdict{}, err
	}
	//
	for i := uint(0); i < tr.Height(); i++ {
		if err := ctx.Err(); err != nil {
			return directive.Verdict{}, err
		}
		//
		v := runner.Step(tr.Window(i))
		//
		if sink != nil {
			sink(i, v)
		} else if v.Resolved() {
			break
		}
	}
	//
	v := runner.Finish()
	log.Debugf("%s", v.String())
	//
	return v, nil
}
