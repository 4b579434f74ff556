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

	"github.com/bits-and-blooms/bitset"
)

// Vector is an immutable, fixed-width, unsigned bit-vector.  Bit 0 is the
// least significant bit.  Operations never mutate their receiver, hence a
// vector can be freely shared between snapshots and evaluation results.
type Vector struct {
	bits  *bitset.BitSet
	width uint
}

// New constructs a zero vector of the given width.  A width of zero is
// permitted, and represents the empty vector (which is logically false).
func New(width uint) Vector {
	return Vector{bitset.New(width), width}
}

// FromUint64 constructs a vector of the given width from an unsigned integer.
// Bits of the integer beyond the width are silently discarded.
func FromUint64(val uint64, width uint) Vector {
	bits := bitset.New(width)
	//
	for i := uint(0); i < width && i < 64; i++ {
		if val&(1<<i) != 0 {
			bits.Set(i)
		}
	}
	//
	return Vector{bits, width}
}

// FromBool constructs a single-bit vector.
func FromBool(val bool) Vector {
	if val {
		return FromUint64(1, 1)
	}
	//
	return New(1)
}

// FromBig constructs a vector of the given width from a big integer.  An
// error is returned if the value is negative, or does not fit within the
// given width.
func FromBig(val *big.Int, width uint) (Vector, error) {
	if val.Sign() < 0 {
		return Vector{}, fmt.Errorf("negative value %s", val.String())
	} else if uint(val.BitLen()) > width {
		return Vector{}, fmt.Errorf("value %s does not fit in u%d", val.String(), width)
	}
	//
	bits := bitset.New(width)
	//
	for i := 0; i < val.BitLen(); i++ {
		if val.Bit(i) == 1 {
			bits.Set(uint(i))
		}
	}
	//
	return Vector{bits, width}, nil
}

// Width returns the number of bits in this vector.
func (v Vector) Width() uint {
	return v.width
}

// Bit returns the value of the ith bit, where bits beyond the width read as
// zero.
func (v Vector) Bit(i uint) bool {
	if v.bits == nil || i >= v.width {
		return false
	}
	//
	return v.bits.Test(i)
}

// Lsb returns the least significant bit of this vector.
func (v Vector) Lsb() bool {
	return v.Bit(0)
}

// IsZero checks whether all bits of this vector are zero.
func (v Vector) IsZero() bool {
	return v.bits == nil || v.bits.None()
}

// Truth interprets this vector as a Boolean, where any non-zero value is true.
func (v Vector) Truth() bool {
	return !v.IsZero()
}

// Count returns the number of bits set in this vector.
func (v Vector) Count() uint {
	if v.bits == nil {
		return 0
	}
	//
	return v.bits.Count()
}

// Equal checks whether two vectors hold the same unsigned value.  Vectors of
// different widths are compared after zero extension.
func (v Vector) Equal(o Vector) bool {
	return v.Cmp(o) == 0
}

// Cmp compares two vectors as unsigned integers (after zero extension),
// returning -1, 0 or 1.
func (v Vector) Cmp(o Vector) int {
	for i := max(v.width, o.width); i > 0; i-- {
		l, r := v.Bit(i-1), o.Bit(i-1)
		//
		if l && !r {
			return 1
		} else if !l && r {
			return -1
		}
	}
	//
	return 0
}

// Not returns the bitwise complement of this vector.
func (v Vector) Not() Vector {
	// Complement of the empty set covers exactly width bits.
	bits := bitset.New(v.width).Complement()
	bits.InPlaceDifference(v.set())
	//
	return Vector{bits, v.width}
}

// And returns the bitwise conjunction of two vectors, whose width is the
// larger of the two.
func (v Vector) And(o Vector) Vector {
	return v.combine(o, (*bitset.BitSet).Intersection)
}

// Or returns the bitwise disjunction of two vectors, whose width is the larger
// of the two.
func (v Vector) Or(o Vector) Vector {
	return v.combine(o, (*bitset.BitSet).Union)
}

// Xor returns the bitwise exclusive-or of two vectors, whose width is the
// larger of the two.
func (v Vector) Xor(o Vector) Vector {
	return v.combine(o, (*bitset.BitSet).SymmetricDifference)
}

// Uint64 returns this vector as an unsigned integer, provided it fits.
func (v Vector) Uint64() (uint64, bool) {
	var val uint64
	//
	for i := uint(0); i < v.width; i++ {
		if !v.Bit(i) {
			continue
		} else if i >= 64 {
			return 0, false
		}
		//
		val |= 1 << i
	}
	//
	return val, true
}

// Big returns this vector as a big integer.
func (v Vector) Big() *big.Int {
	val := new(big.Int)
	//
	for i := uint(0); i < v.width; i++ {
		if v.Bit(i) {
			val.SetBit(val, int(i), 1)
		}
	}
	//
	return val
}

// Hex returns a hexadecimal representation of this vector (without prefix).
func (v Vector) Hex() string {
	return v.Big().Text(16)
}

func (v Vector) String() string {
	return v.Big().String()
}

func (v Vector) combine(o Vector, fn func(*bitset.BitSet, *bitset.BitSet) *bitset.BitSet) Vector {
	width := max(v.width, o.width)
	//
	return Vector{mask(fn(v.set(), o.set()), width), width}
}

// set returns the underlying bitset, where a zero vector may have none.
func (v Vector) set() *bitset.BitSet {
	if v.bits == nil {
		return bitset.New(0)
	}
	//
	return v.bits
}

// mask clears any bits at or beyond the given width.
func mask(bits *bitset.BitSet, width uint) *bitset.BitSet {
	for i, ok := bits.NextSet(width); ok; i, ok = bits.NextSet(i + 1) {
		bits.Clear(i)
	}
	//
	return bits
}
