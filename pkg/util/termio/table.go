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
package termio

import (
	"fmt"
	"io"
	"strings"
)

// TablePrinter lays out a grid of cells in aligned columns, with optional
// per-cell escapes (e.g. for colour).  The first column is left-aligned, and
// all others are right-aligned.
type TablePrinter struct {
	widths        []uint
	rows          [][]string
	escapes       [][]*AnsiEscape
	enableEscapes bool
}

// NewTablePrinter constructs a table of the given width (columns) and height
// (rows).
func NewTablePrinter(width uint, height uint) *TablePrinter {
	widths := make([]uint, width)
	rows := make([][]string, height)
	escapes := make([][]*AnsiEscape, height)
	// Construct the table
	for i := uint(0); i < height; i++ {
		rows[i] = make([]string, width)
		escapes[i] = make([]*AnsiEscape, width)
	}
	//
	return &TablePrinter{widths, rows, escapes, true}
}

// Set the contents of a given cell.
func (p *TablePrinter) Set(col uint, row uint, val string) {
	p.widths[col] = max(p.widths[col], uint(len(val)))
	p.rows[row][col] = val
}

// Get the contents of a given cell.
func (p *TablePrinter) Get(col uint, row uint) string {
	return p.rows[row][col]
}

// Height returns the number of rows in this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// SetEscape sets the escape used when printing a given cell.
func (p *TablePrinter) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = &escape
}

// AnsiEscapes enables or disables the use of escapes when printing.
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetRow sets the contents of an entire row.
func (p *TablePrinter) SetRow(row uint, vals ...string) {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	//
	for i := range vals {
		p.Set(uint(i), row, vals[i])
	}
}

// SetMaxWidth caps the width of a given column, with longer cells being
// truncated when printed.
func (p *TablePrinter) SetMaxWidth(col uint, width uint) {
	p.widths[col] = min(p.widths[col], max(width, 3))
}

// Print this table to a given writer.
func (p *TablePrinter) Print(out io.Writer) {
	for i, row := range p.rows {
		var builder strings.Builder
		//
		for j, col := range row {
			width := int(p.widths[j])
			// Truncate (if applicable)
			if len(col) > width {
				col = col[0:width-2] + ".."
			}
			//
			if j == 0 {
				col = fmt.Sprintf("%-*s", width, col)
			} else {
				col = fmt.Sprintf("%*s", width, col)
			}
			// Apply escape (if applicable)
			if escape := p.escapes[i][j]; p.enableEscapes && escape != nil {
				col = escape.Wrap(col)
			}
			//
			builder.WriteString(" ")
			builder.WriteString(col)
			builder.WriteString(" |")
		}
		//
		fmt.Fprintln(out, builder.String())
	}
}
