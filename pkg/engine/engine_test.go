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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/property"
	"github.com/consensys/go-sva/pkg/seq"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

var (
	foo = seq.NewBool(bexp.NewSignal("foo"))
	bar = seq.NewBool(bexp.NewSignal("bar"))
)

func Test_Config_01(t *testing.T) {
	config, err := ParseConfig([]byte("maxOutstandingAttempts: 8\nfiniteTraceEventuallyPolicy: fail\n"))
	require.NoError(t, err)
	//
	require.Equal(t, uint(8), config.MaxOutstandingAttempts)
	require.Equal(t, "fail", config.FiniteTraceEventuallyPolicy)
	require.Equal(t, "abort", config.DisablePolicy)
	require.True(t, config.Parallel)
	//
	options, err := config.Options()
	require.NoError(t, err)
	require.Equal(t, directive.EVENTUALLY_FAIL, options.EventuallyPolicy)
}

func Test_Config_02(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sva.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("disablePolicy: freeze\nhistoryDepth: 4\n"), 0600))
	//
	config, err := LoadConfig(filename)
	require.NoError(t, err)
	require.Equal(t, "freeze", config.DisablePolicy)
	require.Equal(t, uint(4), config.HistoryDepth)
}

func Test_Config_Invalid_01(t *testing.T) {
	_, err := ParseConfig([]byte("disablePolicy: sometimes\n"))
	require.Error(t, err)
}

func Test_Config_Invalid_02(t *testing.T) {
	_, err := ParseConfig([]byte("maxOutstandingAttempts: [1, 2]\n"))
	require.Error(t, err)
}

func Test_Engine_Run_01(t *testing.T) {
	engine := newEngine(t, DefaultConfig(), scenario()...)
	tr := waveforms(t, map[string]string{
		"foo": "00100000000000000000",
		"bar": "00011000000000000000",
	})
	//
	verdicts, err := engine.Run(context.Background(), tr, nil)
	require.NoError(t, err)
	require.Len(t, verdicts, 3)
	//
	require.Equal(t, directive.HOLDS, verdicts[0].Kind)
	require.Len(t, verdicts[0].Matches, 2)
	require.Equal(t, directive.COVERED, verdicts[1].Kind)
	require.Equal(t, uint(3), verdicts[1].Cycle)
	require.Equal(t, directive.VIOLATED, verdicts[2].Kind)
	require.Equal(t, uint(0), verdicts[2].Cycle)
}

func Test_Engine_Run_02(t *testing.T) {
	var (
		parallel   = DefaultConfig()
		sequential = DefaultConfig()
		tr         = waveforms(t, map[string]string{"foo": "0110100", "bar": "0011001"})
	)
	//
	sequential.Parallel = false
	//
	lhs, err := newEngine(t, parallel, scenario()...).Run(context.Background(), tr, nil)
	require.NoError(t, err)
	rhs, err := newEngine(t, sequential, scenario()...).Run(context.Background(), tr, nil)
	require.NoError(t, err)
	//
	require.Equal(t, lhs, rhs)
}

func Test_Engine_Cancel_01(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//
	verdicts, err := newEngine(t, DefaultConfig(), scenario()...).Run(ctx, waveforms(t,
		map[string]string{"foo": "0000", "bar": "0000"}), nil)
	//
	require.True(t, errors.Is(err, context.Canceled))
	require.Nil(t, verdicts)
}

func Test_Engine_History_01(t *testing.T) {
	var config = DefaultConfig()
	//
	past, err := bexp.NewPast(bexp.NewSignal("foo"), 2)
	require.NoError(t, err)
	//
	config.HistoryDepth = 1
	d := directive.NewDirective("past", directive.ASSERT, weak(seq.NewBool(past)), nil, false)
	//
	_, err = New(config, []*directive.Directive{d}, nil)
	//
	var history *bexp.UndefinedHistoryError
	require.True(t, errors.As(err, &history))
}

func Test_Engine_Declared_01(t *testing.T) {
	declared := func(name string) bool { return name == "foo" }
	//
	_, err := New(DefaultConfig(), scenario(), declared)
	require.Error(t, err)
}

func Test_Engine_Streaming_01(t *testing.T) {
	var (
		config = DefaultConfig()
		counts = make(map[string]uint)
		tr     = waveforms(t, map[string]string{"foo": "00100", "bar": "00010"})
	)
	//
	config.Streaming = true
	//
	_, err := newEngine(t, config, scenario()...).Run(context.Background(), tr, func(cycle uint, v directive.Verdict) {
		counts[v.Directive]++
	})
	//
	require.NoError(t, err)
	require.Equal(t, map[string]uint{"p": 5, "c": 5, "q": 5}, counts)
}

func Test_Engine_Session_01(t *testing.T) {
	var (
		engine = newEngine(t, DefaultConfig(), scenario()...)
		tr     = waveforms(t, map[string]string{"foo": "0110100", "bar": "0011001"})
	)
	//
	expected, err := engine.Run(context.Background(), tr, nil)
	require.NoError(t, err)
	//
	session, err := engine.NewSession(nil)
	require.NoError(t, err)
	//
	for i := uint(0); i < tr.Height(); i++ {
		require.NoError(t, session.Feed(tr.Snapshot(i)))
	}
	//
	checkSameVerdicts(t, expected, session.Close())
}

func Test_Engine_Session_02(t *testing.T) {
	var (
		engine = newEngine(t, DefaultConfig(), scenario()...)
		tr     = waveforms(t, map[string]string{"foo": "01", "bar": "00"})
	)
	//
	session, err := engine.NewSession(nil)
	require.NoError(t, err)
	require.NoError(t, session.Feed(tr.Snapshot(0)))
	// Cycles must be contiguous
	require.Error(t, session.Feed(tr.Snapshot(0)))
	require.False(t, session.Done())
}

func Test_Engine_Session_03(t *testing.T) {
	var (
		engine      = newEngine(t, DefaultConfig(), scenario()...)
		ctx, cancel = context.WithCancel(context.Background())
	)
	//
	session, err := engine.NewSession(nil)
	require.NoError(t, err)
	// Interrupted before the first cycle
	cancel()
	//
	err = session.Consume(ctx, strings.NewReader("{\"foo\": 1, \"bar\": 0}\n{\"foo\": 0, \"bar\": 1}\n"))
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, uint(0), session.history.Len())
}

func Test_Engine_Session_04(t *testing.T) {
	var (
		q      = directive.NewDirective("q", directive.ASSERT, weak(foo), nil, false)
		engine = newEngine(t, DefaultConfig(), q)
	)
	//
	session, err := engine.NewSession(nil)
	require.NoError(t, err)
	// Malformed second line is never read, since q fails immediately.
	require.NoError(t, session.Consume(context.Background(), strings.NewReader("{\"foo\": 0}\n{\"foo\"\n")))
	require.True(t, session.Done())
}

func Test_Engine_Idempotent_01(t *testing.T) {
	var (
		params     = gopter.DefaultTestParameters()
		properties *gopter.Properties
	)
	//
	params.MinSuccessfulTests = 200
	properties = gopter.NewProperties(params)
	//
	properties.Property("evaluation is idempotent", prop.ForAll(
		func(foos []bool, bars []bool) bool {
			tr, err := trace.FromBits(map[string]string{"foo": bits(foos), "bar": bits(bars)})
			if err != nil {
				return false
			}
			//
			engine, err := New(DefaultConfig(), scenario(), nil)
			if err != nil {
				return false
			}
			//
			first, err1 := engine.Run(context.Background(), tr, nil)
			second, err2 := engine.Run(context.Background(), tr, nil)
			//
			return err1 == nil && err2 == nil && equalVerdicts(first, second)
		},
		gen.SliceOfN(12, gen.Bool()),
		gen.SliceOfN(12, gen.Bool()),
	))
	//
	properties.Property("incremental evaluation matches replay", prop.ForAll(
		func(foos []bool, bars []bool) bool {
			tr, err := trace.FromBits(map[string]string{"foo": bits(foos), "bar": bits(bars)})
			if err != nil {
				return false
			}
			//
			engine, err := New(DefaultConfig(), scenario(), nil)
			if err != nil {
				return false
			}
			//
			expected, err := engine.Run(context.Background(), tr, nil)
			if err != nil {
				return false
			}
			//
			session, err := engine.NewSession(nil)
			if err != nil {
				return false
			}
			//
			for i := uint(0); i < tr.Height(); i++ {
				if err := session.Feed(tr.Snapshot(i)); err != nil {
					return false
				}
			}
			//
			return equalVerdicts(expected, session.Close())
		},
		gen.SliceOfN(12, gen.Bool()),
		gen.SliceOfN(12, gen.Bool()),
	))
	//
	properties.TestingRun(t)
}

// Three directives: an assertion that foo ##[1:2] bar holds, a cover of the
// same, and an assertion that foo holds everywhere.
func scenario() []*directive.Directive {
	s := seq.NewConcat(foo, seq.Between(1, 2), bar)
	//
	return []*directive.Directive{
		directive.NewDirective("p", directive.ASSERT, weak(s), nil, false),
		directive.NewDirective("c", directive.COVER, property.NewSequence(s, property.DEFAULT), nil, false),
		directive.NewDirective("q", directive.ASSERT, weak(foo), nil, false),
	}
}

func weak(s seq.Sequence) property.Property {
	return property.NewSequence(s, property.WEAK)
}

func newEngine(t *testing.T, config Config, directives ...*directive.Directive) *Engine {
	t.Helper()
	//
	engine, err := New(config, directives, nil)
	require.NoError(t, err)
	//
	return engine
}

func waveforms(t *testing.T, waves map[string]string) *trace.ArrayTrace {
	t.Helper()
	//
	tr, err := trace.FromBits(waves)
	require.NoError(t, err)
	//
	return tr
}

func bits(values []bool) string {
	var bytes = make([]byte, len(values))
	//
	for i, v := range values {
		bytes[i] = '0'
		//
		if v {
			bytes[i] = '1'
		}
	}
	//
	return string(bytes)
}

// Verdicts are compared by kind and position only, since the snapshots
// retained by a session are bounded.
func equalVerdicts(lhs []directive.Verdict, rhs []directive.Verdict) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if lhs[i].Kind != rhs[i].Kind || lhs[i].Cycle != rhs[i].Cycle || lhs[i].Start != rhs[i].Start {
			return false
		}
	}
	//
	return true
}

func checkSameVerdicts(t *testing.T, expected []directive.Verdict, actual []directive.Verdict) {
	t.Helper()
	//
	require.Len(t, actual, len(expected))
	//
	for i := range expected {
		require.Equal(t, expected[i].Kind, actual[i].Kind, expected[i].Directive)
		require.Equal(t, expected[i].Cycle, actual[i].Cycle, expected[i].Directive)
		require.Equal(t, expected[i].Start, actual[i].Start, expected[i].Directive)
	}
}
