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
	"io"
	"math"

	"github.com/consensys/go-sva/pkg/util/termio"
)

// Printer encapsulates various configuration options useful for printing out
// traces in human-readable forms.
type Printer struct {
	// Determine maximum width to print
	maxCellWidth uint
	// Enable ANSI
	ansiEscapes bool
	// Highlighting colour
	colour uint
}

// NewPrinter constructs a default printer
func NewPrinter() *Printer {
	// Return an empty printer
	return &Printer{math.MaxUint, true, termio.TERM_RED}
}

// AnsiEscapes can be used to enable or disable the use of ANSI escape sequences
// (e.g. for showing colour in a terminal, etc)
func (p *Printer) AnsiEscapes(enable bool) *Printer {
	p.ansiEscapes = enable
	return p
}

// MaxCellWidth sets the maximum width to use for the cell data.
func (p *Printer) MaxCellWidth(width uint) *Printer {
	p.maxCellWidth = width
	return p
}

// Colour sets the colour used to highlight cells.
func (p *Printer) Colour(colour uint) *Printer {
	p.colour = colour
	return p
}

// Print a given trace window using the configured printer
func (p *Printer) Print(window TraceWindow, out io.Writer) {
	var (
		width  = window.Width()
		height = window.Height()
		// Construct table
		tp = termio.NewTablePrinter(1+width, 1+height)
		// Construct suitable highlighting escape
		highlight = termio.BoldAnsiEscape().FgColour(p.colour)
	)
	// Initialise row titles
	for row := uint(0); row < height; row++ {
		tp.Set(0, row+1, window.Row(row))
		tp.SetEscape(0, row+1, termio.NewAnsiEscape().FgColour(termio.TERM_WHITE))
	}
	// Fill table
	for col := uint(0); col < width; col++ {
		tp.Set(col+1, 0, window.Column(col))
		tp.SetEscape(col+1, 0, termio.NewAnsiEscape().FgColour(termio.TERM_WHITE))
		//
		for row := uint(0); row < height; row++ {
			contents := window.CellAt(col, row)
			//
			if !window.Highlighted(col, row) {
				tp.Set(col+1, row+1, contents)
			} else if p.ansiEscapes {
				tp.Set(col+1, row+1, contents)
				tp.SetEscape(col+1, row+1, highlight)
			} else {
				// In a non-ANSI environment, use a marker "*" to identify highlighted cells.
				tp.Set(col+1, row+1, fmt.Sprintf("*%s", contents))
			}
		}
		//
		tp.SetMaxWidth(col+1, p.maxCellWidth)
	}
	// Done
	tp.AnsiEscapes(p.ansiEscapes)
	tp.Print(out)
}
