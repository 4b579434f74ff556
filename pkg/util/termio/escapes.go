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

import "fmt"

// TERM_BLACK is the ANSI colour code for black.
const TERM_BLACK = uint(0)

// TERM_RED is the ANSI colour code for red.
const TERM_RED = uint(1)

// TERM_GREEN is the ANSI colour code for green.
const TERM_GREEN = uint(2)

// TERM_YELLOW is the ANSI colour code for yellow.
const TERM_YELLOW = uint(3)

// TERM_BLUE is the ANSI colour code for blue.
const TERM_BLUE = uint(4)

// TERM_WHITE is the ANSI colour code for white.
const TERM_WHITE = uint(7)

// AnsiEscape represents an ANSI escape sequence under construction, such as
// one which sets the foreground colour and boldness of subsequent text.
type AnsiEscape struct {
	escape string
	count  uint
}

// NewAnsiEscape constructs an empty escape sequence.
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{"\033", 0}
}

// ResetAnsiEscape constructs an escape sequence which resets all attributes.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{"\033[0", 1}
}

// BoldAnsiEscape constructs an escape sequence for bold text.
func BoldAnsiEscape() AnsiEscape {
	return AnsiEscape{"\033[1", 1}
}

// FgColour extends this escape sequence with a foreground colour.
func (p AnsiEscape) FgColour(col uint) AnsiEscape {
	return p.append(30 + col)
}

// BgColour extends this escape sequence with a background colour.
func (p AnsiEscape) BgColour(col uint) AnsiEscape {
	return p.append(40 + col)
}

// Build the escape sequence.
func (p AnsiEscape) Build() string {
	return fmt.Sprintf("%sm", p.escape)
}

// Wrap some text in this escape sequence, followed by a reset.
func (p AnsiEscape) Wrap(text string) string {
	return p.Build() + text + ResetAnsiEscape().Build()
}

func (p AnsiEscape) append(code uint) AnsiEscape {
	if p.count > 0 {
		return AnsiEscape{fmt.Sprintf("%s;%d", p.escape, code), p.count + 1}
	}
	//
	return AnsiEscape{fmt.Sprintf("%s[%d", p.escape, code), p.count + 1}
}
