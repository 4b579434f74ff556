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
	"bytes"
	"testing"
)

func Test_Table_01(t *testing.T) {
	tp := NewTablePrinter(3, 2)
	tp.SetRow(0, "", "0", "1")
	tp.SetRow(1, "req", "0", "1")
	//
	checkTable(t, tp, "     | 0 | 1 |\n req | 0 | 1 |\n")
}

func Test_Table_02(t *testing.T) {
	tp := NewTablePrinter(2, 1)
	tp.SetRow(0, "data", "123456789")
	tp.SetMaxWidth(1, 5)
	//
	checkTable(t, tp, " data | 123.. |\n")
}

func Test_Table_03(t *testing.T) {
	tp := NewTablePrinter(1, 1)
	tp.Set(0, 0, "x")
	tp.SetEscape(0, 0, BoldAnsiEscape().FgColour(TERM_RED))
	//
	checkTable(t, tp, " \033[1;31mx\033[0m |\n")
	// Disabling escapes gives plain text
	tp.AnsiEscapes(false)
	checkTable(t, tp, " x |\n")
}

func checkTable(t *testing.T, tp *TablePrinter, expected string) {
	t.Helper()
	//
	var buf bytes.Buffer
	//
	tp.Print(&buf)
	//
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}
