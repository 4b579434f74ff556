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
package check

import (
	"fmt"

	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/trace"
)

// TraceWindow abstracts a region of a trace, where each column is a cycle and
// each row is a signal.
type TraceWindow interface {
	// CellAt returns the contents of a specific cell in this table.
	CellAt(col uint, row uint) string
	// Column returns the title of the given column.
	Column(uint) string
	// Height returns the number of rows in this table.
	Height() uint
	// Highlighted determines whether a given cell should be highlighted or not.
	Highlighted(col uint, row uint) bool
	// Row returns the title of the given row
	Row(uint) string
	// Width returns the number of columns in this table.
	Width() uint
}

// NewTraceWindow constructs a window onto the snapshots retained by a verdict,
// showing the given signals.  The column for the cycle at which the verdict was
// reached is highlighted.
func NewTraceWindow(verdict directive.Verdict, signals []string) TraceWindow {
	return &verdictWindow{verdict.Trace, signals, verdict.Cycle}
}

type verdictWindow struct {
	snapshots []*trace.Snapshot
	signals   []string
	// Cycle to highlight
	cycle uint
}

func (p *verdictWindow) CellAt(col uint, row uint) string {
	val, ok := p.snapshots[col].Get(p.signals[row])
	//
	switch {
	case !ok:
		return "-"
	case val.Width() == 1:
		return val.String()
	default:
		return fmt.Sprintf("0x%s", val.Hex())
	}
}

func (p *verdictWindow) Column(col uint) string {
	return fmt.Sprintf("%d", p.snapshots[col].Cycle())
}

func (p *verdictWindow) Height() uint {
	return uint(len(p.signals))
}

func (p *verdictWindow) Highlighted(col uint, row uint) bool {
	return p.snapshots[col].Cycle() == p.cycle
}

func (p *verdictWindow) Row(row uint) string {
	return p.signals[row]
}

func (p *verdictWindow) Width() uint {
	return uint(len(p.snapshots))
}
