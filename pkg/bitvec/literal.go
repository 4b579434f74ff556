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
package bitvec

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Parse a numeric literal into a vector.  The following forms are accepted:
// decimal ("12"), hexadecimal ("0x1f"), binary ("0b101"), and sized literals
// in SystemVerilog notation ("4'b1010", "8'hff", "3'd5").  Underscores may be
// used as digit separators.  Unsized literals are given the minimum width
// required to hold them, but never less than one bit.
func Parse(literal string) (Vector, error) {
	var (
		text  = strings.ReplaceAll(literal, "_", "")
		width uint
		sized bool
		base  = 10
	)
	// Sized literal
	if i := strings.Index(text, "'"); i >= 0 {
		w, err := strconv.ParseUint(text[:i], 10, 16)
		if err != nil || w == 0 || len(text) < i+3 {
			return Vector{}, fmt.Errorf("malformed sized literal \"%s\"", literal)
		}
		//
		switch text[i+1] {
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		case 'd', 'D':
			base = 10
		case 'h', 'H':
			base = 16
		default:
			return Vector{}, fmt.Errorf("unknown base in literal \"%s\"", literal)
		}
		//
		width, sized, text = uint(w), true, text[i+2:]
	} else if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base, text = 16, text[2:]
	} else if strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B") {
		base, text = 2, text[2:]
	}
	// Parse the digits
	val, ok := new(big.Int).SetString(text, base)
	if !ok || val.Sign() < 0 || text == "" || text[0] == '+' {
		return Vector{}, fmt.Errorf("malformed literal \"%s\"", literal)
	}
	// Determine width (if not given)
	if !sized {
		width = max(1, uint(val.BitLen()))
	}
	//
	return FromBig(val, width)
}
