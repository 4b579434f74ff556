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
	"testing"

	"github.com/consensys/go-sva/pkg/bexp"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// A match of foo ##[m:n] bar from the cycle where foo holds ends at offset k
// if, and only if, m <= k <= n and bar holds at that offset.
func Test_Property_DelayRange_01(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	//
	properties.Property("##[m:n] matches exactly the offsets within range", prop.ForAll(
		func(m uint, extra uint, bar []bool) bool {
			var (
				n      = m + extra
				foo    = make([]bool, len(bar))
				offset = uint(1)
			)
			// foo holds at the second cycle only
			foo[offset] = true
			//
			program, err := Compile(NewConcat(NewBool(bexp.NewSignal("foo")), Between(m, n),
				NewBool(bexp.NewSignal("bar"))))
			if err != nil {
				return false
			}
			//
			matches, err := Matches(program, waveforms(map[string][]bool{"foo": foo, "bar": bar}))
			if err != nil {
				return false
			}
			// Determine expected ends
			var expected []Match
			//
			for k := m; k <= n && offset+k < uint(len(bar)); k++ {
				if bar[offset+k] {
					expected = append(expected, Match{offset, offset + k})
				}
			}
			//
			return equalMatches(matches, expected)
		},
		gen.UIntRange(0, 3),
		gen.UIntRange(0, 3),
		gen.SliceOfN(10, gen.Bool()),
	))
	//
	properties.TestingRun(t)
}

// Matching is deterministic: running the same program twice over the same
// trace gives identical matches.
func Test_Property_Idempotent_01(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	//
	properties.Property("matching is idempotent", prop.ForAll(
		func(as []bool, bs []bool) bool {
			program, _ := Compile(NewConcat(NewRepeat(NewBool(bexp.NewSignal("a")), AtLeast(1)), Between(0, 2),
				NewGoto(bexp.NewSignal("b"), Between(1, 2))))
			tr := waveforms(map[string][]bool{"a": as, "b": bs})
			//
			m1, err1 := Matches(program, tr)
			m2, err2 := Matches(program, tr)
			//
			return err1 == nil && err2 == nil && equalMatches(m1, m2)
		},
		gen.SliceOfN(12, gen.Bool()),
		gen.SliceOfN(12, gen.Bool()),
	))
	//
	properties.TestingRun(t)
}

func equalMatches(lhs []Match, rhs []Match) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if lhs[i] != rhs[i] {
			return false
		}
	}
	//
	return true
}

func waveforms(columns map[string][]bool) *trace.ArrayTrace {
	bits := make(map[string]string)
	//
	for name, data := range columns {
		var wave []byte
		//
		for _, bit := range data {
			if bit {
				wave = append(wave, '1')
			} else {
				wave = append(wave, '0')
			}
		}
		//
		bits[name] = string(wave)
	}
	//
	tr, err := trace.FromBits(bits)
	if err != nil {
		panic(err)
	}
	//
	return tr
}
