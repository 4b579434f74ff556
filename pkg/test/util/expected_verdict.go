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
package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/util/source"
)

// ExpectedVerdict describes the verdict expected for a given directive, where
// the cycle at which it is reached is optional.
type ExpectedVerdict struct {
	Directive string
	Kind      directive.VerdictKind
	// Expected cycle (or negative if unspecified).
	Cycle int
}

func (p ExpectedVerdict) String() string {
	if p.Cycle < 0 {
		return fmt.Sprintf("%s %s", p.Directive, p.Kind)
	}
	//
	return fmt.Sprintf("%s %s %d", p.Directive, p.Kind, p.Cycle)
}

// Matches checks whether an actual verdict meets this expectation.
func (p ExpectedVerdict) Matches(v directive.Verdict) bool {
	return v.Kind == p.Kind && (p.Cycle < 0 || uint(p.Cycle) == v.Cycle)
}

// Extract an expected verdict of the form ";;verdict name Kind [cycle]".
func extractVerdict(line source.Line, _ *source.File) (bool, ExpectedVerdict, error) {
	var fields = strings.Fields(line.String())
	//
	if len(fields) == 0 || fields[0] != ";;verdict" {
		return false, ExpectedVerdict{}, nil
	} else if len(fields) != 3 && len(fields) != 4 {
		return true, ExpectedVerdict{}, fmt.Errorf("malformed verdict \"%s\", should be e.g. \";;verdict p Holds\"",
			line.String())
	}
	//
	kind, err := directive.ParseVerdictKind(fields[2])
	if err != nil {
		return true, ExpectedVerdict{}, err
	}
	//
	expected := ExpectedVerdict{fields[1], kind, -1}
	//
	if len(fields) == 4 {
		if expected.Cycle, err = strconv.Atoi(fields[3]); err != nil || expected.Cycle < 0 {
			return true, ExpectedVerdict{}, fmt.Errorf("invalid cycle \"%s\"", fields[3])
		}
	}
	//
	return true, expected, nil
}

// Extract a configuration line of the form ";;config key: value".
func extractConfig(line source.Line, _ *source.File) (bool, string, error) {
	contents, ok := strings.CutPrefix(line.String(), ";;config")
	//
	return ok, strings.TrimSpace(contents), nil
}
