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
	"strings"
	"testing"

	"github.com/consensys/go-sva/pkg/trace"
)

func Test_JsonTrace_01(t *testing.T) {
	tr, err := FromBytes([]byte(`{"a": [0, 1, 1], "b@u8": [3, 255, 16]}`))
	//
	if err != nil {
		t.Fatal(err)
	} else if tr.Height() != 3 {
		t.Fatalf("expected 3 cycles, got %d", tr.Height())
	}
	//
	checkValue(t, tr.Snapshot(1), "b", "255", 8)
	// Inferred width
	checkValue(t, tr.Snapshot(2), "a", "1", 1)
}

func Test_JsonTrace_02(t *testing.T) {
	tr, err := FromBytes([]byte(`{"top": {"req": [1, 0]}, "": {"clk": [0, 1]}}`))
	//
	if err != nil {
		t.Fatal(err)
	} else if names := tr.Signals(); len(names) != 2 || names[0] != "clk" || names[1] != "top.req" {
		t.Errorf("unexpected signals %v", names)
	}
}

func Test_JsonTrace_Invalid_01(t *testing.T) {
	checkInvalid(t, `{"a@u2": [0, 4]}`)
}

func Test_JsonTrace_Invalid_02(t *testing.T) {
	checkInvalid(t, `{"a": [0, -1]}`)
}

func Test_JsonTrace_Invalid_03(t *testing.T) {
	checkInvalid(t, `{"a": [0, 1], "b": [0]}`)
}

func Test_JsonTrace_Invalid_04(t *testing.T) {
	checkInvalid(t, `{"a@x4": [0]}`)
}

func Test_JsonLines_01(t *testing.T) {
	input := "{\"a\": 1, \"b@u4\": 2}\n\n{\"a\": 0, \"b@u4\": 15}\n"
	//
	tr, err := FromLines(strings.NewReader(input))
	//
	if err != nil {
		t.Fatal(err)
	} else if tr.Height() != 2 {
		t.Fatalf("expected 2 cycles, got %d", tr.Height())
	}
	//
	checkValue(t, tr.Snapshot(1), "b", "15", 4)
}

func Test_JsonLines_Invalid_01(t *testing.T) {
	err := ReadLines(strings.NewReader("{\"a\": 1}\n{\"a\"\n"), func(*trace.Snapshot) error { return nil })
	//
	if err == nil || !strings.HasPrefix(err.Error(), "line 2") {
		t.Errorf("expected error on line 2, got %v", err)
	}
}

func checkValue(t *testing.T, s *trace.Snapshot, name string, expected string, width uint) {
	t.Helper()
	//
	if v, ok := s.Get(name); !ok {
		t.Errorf("missing signal %s", name)
	} else if v.String() != expected || v.Width() != width {
		t.Errorf("expected %s=%s (u%d), got %s (u%d)", name, expected, width, v, v.Width())
	}
}

func checkInvalid(t *testing.T, input string) {
	t.Helper()
	//
	if _, err := FromBytes([]byte(input)); err == nil {
		t.Errorf("expected error reading %s", input)
	}
}
