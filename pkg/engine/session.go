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
	"errors"
	"io"

	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/consensys/go-sva/pkg/trace/json"
)

// errDone signals that all directives were resolved before the end of an
// open-ended trace.
var errDone = errors.New("all directives resolved")

// Session evaluates all directives of an engine over an open-ended trace, which
// is supplied one snapshot at a time.  Only a bounded window of history is
// retained.  A session is not safe for concurrent use.
type Session struct {
	engine  *Engine
	runners []*directive.Runner
	history *trace.History
	sink    VerdictSink
}

// NewSession starts a new incremental evaluation.  When streaming is enabled,
// the verdict so far of every directive is reported to the sink (if given)
// after each cycle.
func (e *Engine) NewSession(sink VerdictSink) (*Session, error) {
	var (
		runners = make([]*directive.Runner, len(e.directives))
		depth   = max(e.HistoryDepth(), e.config.MaxRetainedCycles)
	)
	//
	for i, d := range e.directives {
		runner, err := directive.NewRunner(d, e.options)
		if err != nil {
			return nil, err
		}
		//
		runners[i] = runner
	}
	//
	if !e.config.Streaming {
		sink = nil
	}
	//
	return &Session{e, runners, trace.NewHistory(depth), sink}, nil
}

// Feed the next snapshot into this session, advancing all directives by one
// cycle.  Snapshots must be supplied in contiguous cycle order.
func (s *Session) Feed(snapshot *trace.Snapshot) error {
	if err := s.history.Push(snapshot); err != nil {
		return err
	}
	//
	for _, runner := range s.runners {
		v := runner.Step(s.history)
		//
		if s.sink != nil {
			s.sink(snapshot.Cycle(), v)
		}
	}
	//
	return nil
}

// Consume an open-ended trace in JSON-lines notation, feeding each snapshot
// as soon as it is read.  Reading stops early once every directive is
// resolved, or with the context's error once the context is cancelled.
func (s *Session) Consume(ctx context.Context, reader io.Reader) error {
	err := json.ReadLines(reader, func(snapshot *trace.Snapshot) error {
		if err := ctx.Err(); err != nil {
			return err
		} else if err := s.Feed(snapshot); err != nil {
			return err
		} else if s.Done() {
			return errDone
		}
		//
		return nil
	})
	//
	if errors.Is(err, errDone) {
		return nil
	}
	//
	return err
}

// Done checks whether every directive has been resolved, such that feeding
// further snapshots has no effect.
func (s *Session) Done() bool {
	for _, runner := range s.runners {
		if !runner.Verdict().Resolved() {
			return false
		}
	}
	//
	return true
}

// Verdicts returns the verdicts so far for all directives.
func (s *Session) Verdicts() []directive.Verdict {
	verdicts := make([]directive.Verdict, len(s.runners))
	//
	for i, runner := range s.runners {
		verdicts[i] = runner.Verdict()
	}
	//
	return verdicts
}

// Close this session, treating the trace as having ended, and returning the
// final verdict for every directive.
func (s *Session) Close() []directive.Verdict {
	verdicts := make([]directive.Verdict, len(s.runners))
	//
	for i, runner := range s.runners {
		verdicts[i] = runner.Finish()
	}
	//
	return verdicts
}
