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
package json

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"

	"github.com/consensys/go-sva/pkg/bitvec"
	"github.com/consensys/go-sva/pkg/trace"
)

// FromBytes parses a trace expressed in columnar JSON notation.  For example,
// {"X": [0, 1], "Y@u4": [1, 15]} is a trace containing two cycles of data for
// the signals "X" and "Y", where "Y" has a declared width of 4 bits.  Signals
// can also be grouped by module, as in {"top": {"X": [0, 1]}}, in which case
// the resulting signal is named "top.X".
func FromBytes(data []byte) (*trace.ArrayTrace, error) {
	var rawData map[string]map[string][]*big.Int
	// Attempt to unmarshall module-nested form
	if err := json.Unmarshal(data, &rawData); err != nil {
		// Failed, so fall back on the flat format.
		return FromBytesFlat(data)
	}
	//
	var cols []trace.Column
	//
	for _, mod := range sortedKeys(rawData) {
		modData := rawData[mod]
		//
		for _, name := range sortedKeys(modData) {
			col, err := newColumn(mod, name, modData[name])
			if err != nil {
				return nil, err
			}
			//
			cols = append(cols, col)
		}
	}
	//
	return trace.FromColumns(cols)
}

// FromBytesFlat parses a trace expressed in flat columnar JSON notation (i.e.
// without modules).  For example, {"X": [0], "Y": [1]} is a trace containing
// one cycle of data each for two signals "X" and "Y".
func FromBytesFlat(data []byte) (*trace.ArrayTrace, error) {
	var rawData map[string][]*big.Int
	// Unmarshall
	if err := json.Unmarshal(data, &rawData); err != nil {
		return nil, err
	}
	//
	cols := make([]trace.Column, 0, len(rawData))
	//
	for _, name := range sortedKeys(rawData) {
		col, err := newColumn("", name, rawData[name])
		if err != nil {
			return nil, err
		}
		//
		cols = append(cols, col)
	}
	//
	return trace.FromColumns(cols)
}

// ReadLines reads an open-ended trace in JSON-lines notation, where each line
// holds the values of all signals for the next cycle.  For example, the line
// {"X": 0, "Y@u4": 15} gives the values of "X" and "Y" in one cycle.  Blank
// lines are ignored.  Each snapshot is passed to the given callback as soon as
// it is read, and reading stops at the first error.
func ReadLines(reader io.Reader, fn func(*trace.Snapshot) error) error {
	var (
		scanner = bufio.NewScanner(reader)
		cycle   uint
		lineno  uint
	)
	//
	for scanner.Scan() {
		lineno++
		//
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		//
		snapshot, err := parseLine(cycle, line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		} else if err = fn(snapshot); err != nil {
			return err
		}
		//
		cycle++
	}
	//
	return scanner.Err()
}

// FromLines reads a complete trace in JSON-lines notation.
func FromLines(reader io.Reader) (*trace.ArrayTrace, error) {
	var snapshots []*trace.Snapshot
	//
	err := ReadLines(reader, func(s *trace.Snapshot) error {
		snapshots = append(snapshots, s)
		return nil
	})
	//
	if err != nil {
		return nil, err
	}
	//
	return trace.NewArrayTrace(snapshots)
}

func parseLine(cycle uint, line string) (*trace.Snapshot, error) {
	var (
		rawData map[string]*big.Int
		values  = make(map[string]bitvec.Vector)
	)
	//
	if err := json.Unmarshal([]byte(line), &rawData); err != nil {
		return nil, err
	}
	//
	for key, val := range rawData {
		name, width, err := trace.SplitSignalName(key)
		if err != nil {
			return nil, err
		} else if val == nil {
			return nil, fmt.Errorf("missing value for signal %s", name)
		} else if width == 0 {
			width = trace.InferWidth(val)
		}
		//
		if values[name], err = bitvec.FromBig(val, width); err != nil {
			return nil, fmt.Errorf("signal %s out-of-bounds: %w", name, err)
		}
	}
	//
	return trace.NewSnapshot(cycle, values), nil
}

func newColumn(module string, key string, data []*big.Int) (trace.Column, error) {
	name, width, err := trace.SplitSignalName(key)
	//
	if err != nil {
		return trace.Column{}, err
	} else if i := slices.Index(data, nil); i >= 0 {
		return trace.Column{}, fmt.Errorf("signal %s missing value (cycle %d)", name, i)
	}
	//
	return trace.Column{Name: trace.QualifiedName(module, name), Width: width, Data: data}, nil
}

func sortedKeys[T any](items map[string]T) []string {
	keys := make([]string, 0, len(items))
	//
	for k := range items {
		keys = append(keys, k)
	}
	//
	slices.Sort(keys)
	//
	return keys
}
