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
	"math/big"
	"strconv"
	"strings"

	"github.com/consensys/go-sva/pkg/bitvec"
)

// Column represents the raw data for a single signal, as found in a columnar
// trace file.  A width of zero indicates the width was not declared and should
// be inferred from the data.
type Column struct {
	Name  string
	Width uint
	Data  []*big.Int
}

// FromColumns constructs a trace from a given set of columns, all of which
// must have the same height.  Every value is checked against the width of its
// column.
func FromColumns(columns []Column) (*ArrayTrace, error) {
	var height uint
	//
	for i, col := range columns {
		if i == 0 {
			height = uint(len(col.Data))
		} else if uint(len(col.Data)) != height {
			return nil, fmt.Errorf("signal %s has height %d (expected %d)", col.Name, len(col.Data), height)
		}
	}
	// Construct cycle values
	values := make([]map[string]bitvec.Vector, height)
	for i := range values {
		values[i] = make(map[string]bitvec.Vector)
	}
	//
	for _, col := range columns {
		width := col.Width
		// Infer width (if applicable)
		if width == 0 {
			width = InferWidth(col.Data...)
		}
		//
		for cycle, val := range col.Data {
			v, err := bitvec.FromBig(val, width)
			if err != nil {
				return nil, fmt.Errorf("signal %s out-of-bounds (cycle %d): %w", col.Name, cycle, err)
			}
			//
			values[cycle][col.Name] = v
		}
	}
	// Finally construct snapshots
	snapshots := make([]*Snapshot, height)
	//
	for i, vals := range values {
		snapshots[i] = &Snapshot{uint(i), vals}
	}
	//
	return NewArrayTrace(snapshots)
}

// InferWidth determines the smallest width capable of holding all the given
// (non-negative) values, which is never less than one bit.
func InferWidth(values ...*big.Int) uint {
	var width uint = 1
	//
	for _, val := range values {
		width = max(width, uint(val.BitLen()))
	}
	//
	return width
}

// SplitSignalName splits a signal name of the form "name@uN" into the name and
// its declared width.  If no width is given, then zero is returned for the
// width, indicating it should be inferred.
func SplitSignalName(name string) (string, uint, error) {
	var bits = strings.Split(name, "@")
	//
	if len(bits) == 1 {
		// no bitwidth given
		return bits[0], 0, nil
	} else if len(bits) > 2 || len(bits[0]) == 0 || len(bits[1]) < 2 {
		return "", 0, fmt.Errorf("malformed signal name \"%s\"", name)
	} else if bits[1][0] != 'u' {
		return "", 0, fmt.Errorf("malformed signal type \"%s\"", bits[1])
	}
	// Extract width
	width, err := strconv.ParseUint(bits[1][1:], 10, 16)
	//
	if err != nil || width == 0 {
		return "", 0, fmt.Errorf("malformed signal width \"%s\"", bits[1])
	}
	//
	return bits[0], uint(width), nil
}

// QualifiedName constructs the name of a signal within a given module.  Signals
// in the root module (i.e. whose module name is empty) are unqualified.
func QualifiedName(module string, name string) string {
	if module == "" {
		return name
	}
	//
	return fmt.Sprintf("%s.%s", module, name)
}

// FromBits constructs a trace of single-bit signals from a compact waveform
// notation, where each signal maps to a string of '0' and '1' characters (one
// per cycle).  Whitespace and underscores are ignored, allowing waveforms to
// be grouped for readability (e.g. "0010_0000").
func FromBits(waveforms map[string]string) (*ArrayTrace, error) {
	var cols []Column
	//
	for _, name := range sortedNames(waveforms) {
		var data []*big.Int
		//
		for _, c := range waveforms[name] {
			switch c {
			case '0':
				data = append(data, big.NewInt(0))
			case '1':
				data = append(data, big.NewInt(1))
			case ' ', '_', '\t':
				continue
			default:
				return nil, fmt.Errorf("invalid waveform character '%c' for signal %s", c, name)
			}
		}
		//
		cols = append(cols, Column{name, 1, data})
	}
	//
	return FromColumns(cols)
}

func sortedNames(items map[string]string) []string {
	names := make(map[string]bool)
	for k := range items {
		names[k] = true
	}
	//
	return sortedKeys(names)
}
