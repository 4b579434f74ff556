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
package sexp

import (
	"testing"

	"github.com/consensys/go-sva/pkg/util/source"
)

func Test_SexpParse_01(t *testing.T) {
	checkParse(t, "(assert p1 a)", "(assert p1 a)")
}

func Test_SexpParse_02(t *testing.T) {
	checkParse(t, "(## [1 2] foo bar)", "(## [1 2] foo bar)")
}

func Test_SexpParse_03(t *testing.T) {
	checkParse(t, "  ( |-> CMDWR\n (## 1 (* notCMDPRE 15)) ) ; comment", "(|-> CMDWR (## 1 (* notCMDPRE 15)))")
}

func Test_SexpParse_04(t *testing.T) {
	checkParse(t, "($past;comment\n a 2)", "($past a 2)")
}

func Test_SexpParse_Invalid_01(t *testing.T) {
	checkParseInvalid(t, "(a b")
}

func Test_SexpParse_Invalid_02(t *testing.T) {
	checkParseInvalid(t, "a b)")
}

func Test_SexpParse_Invalid_03(t *testing.T) {
	checkParseInvalid(t, "(a [1 2)")
}

func Test_SexpParseAll_01(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("(defsignal a)\n(assert p a)\n"))
	//
	terms, srcmap, err := ParseAll(srcfile)
	//
	if err != nil {
		t.Fatal(err.Message())
	} else if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(terms))
	}
	// Check second term maps onto the second line
	span := srcmap.Get(terms[1])
	line := srcfile.FindFirstEnclosingLine(span)
	//
	if line.Number() != 2 || line.String() != "(assert p a)" {
		t.Errorf("unexpected enclosing line %d: \"%s\"", line.Number(), line.String())
	}
}

func checkParse(t *testing.T, input string, expected string) {
	t.Helper()
	//
	term, _, err := Parse(source.NewSourceFile("test", []byte(input)))
	//
	if err != nil {
		t.Fatalf("unexpected error parsing \"%s\": %s", input, err.Message())
	} else if term.String() != expected {
		t.Errorf("expected %s, got %s", expected, term.String())
	}
}

func checkParseInvalid(t *testing.T, input string) {
	t.Helper()
	//
	if _, _, err := Parse(source.NewSourceFile("test", []byte(input))); err == nil {
		t.Errorf("expected error parsing \"%s\"", input)
	}
}
