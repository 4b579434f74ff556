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
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"
	"testing"

	"github.com/consensys/go-sva/pkg/directive"
	"github.com/consensys/go-sva/pkg/engine"
	"github.com/consensys/go-sva/pkg/lang"
	"github.com/consensys/go-sva/pkg/trace"
	"github.com/consensys/go-sva/pkg/trace/json"
	"github.com/consensys/go-sva/pkg/trace/yaml"
	"github.com/consensys/go-sva/pkg/util/source"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the sva test files, and their associated traces reside.
const TestDir = "../../testdata"

// Trace file extensions recognised alongside a given test.
var traceExtensions = []string{"json", "yaml", "jsonl"}

// Check that all directives of a given test produce their expected verdicts on
// every trace accompanying that test.  Each trace is evaluated by the engine
// in parallel and sequential modes, and also fed incrementally through a
// session.
func Check(t *testing.T, test string) {
	var filename = path.Join(TestDir, "valid", fmt.Sprintf("%s.sva", test))
	//
	srcfile := readSourceFile(t, filename)
	defs, errs := lang.ParseSourceFile(srcfile)
	//
	if len(errs) > 0 {
		for _, err := range errs {
			t.Errorf("%s:%s", filename, errorToString(err))
		}
		//
		return
	}
	//
	expected := readExpectedVerdicts(t, srcfile, defs)
	config := readConfig(t, srcfile)
	traces := readTraces(t, path.Join(TestDir, "valid", test))
	//
	if len(traces) == 0 {
		t.Fatalf("no traces found for %s", test)
	}
	//
	for name, tr := range traces {
		for _, parallel := range []bool{true, false} {
			config.Parallel = parallel
			//
			eng, err := engine.New(config, defs.Directives, defs.Declared())
			if err != nil {
				t.Fatalf("%s: %s", name, err)
			}
			//
			verdicts, err := eng.Run(context.Background(), tr, nil)
			if err != nil {
				t.Fatalf("%s: %s", name, err)
			}
			//
			checkVerdicts(t, fmt.Sprintf("%s (parallel=%t)", name, parallel), expected, verdicts)
		}
		//
		checkVerdicts(t, fmt.Sprintf("%s (session)", name), expected, runSession(t, config, defs, tr))
	}
}

// CheckInvalid checks that a given test is rejected with the expected errors.
// Errors arise either from parsing, or from the static checks performed on
// each directive before evaluation begins.
func CheckInvalid(t *testing.T, test string) {
	var filename = path.Join(TestDir, "invalid", fmt.Sprintf("%s.sva", test))
	//
	srcfile := readSourceFile(t, filename)
	expected, errs := ExtractAttributes(srcfile, extractSyntaxError)
	//
	for _, err := range errs {
		t.Fatalf("%s: %s", filename, err)
	}
	//
	actual := parseAndCheck(t, srcfile)
	//
	if len(actual) == 0 {
		t.Fatalf("%s: expected errors, but none reported", filename)
	}
	//
	checkExpectedErrors(t, filename, expected, actual)
}

// Parse a source file and perform static checks on its directives, returning
// any errors arising.
func parseAndCheck(t *testing.T, srcfile *source.File) []source.SyntaxError {
	defs, errs := lang.ParseSourceFile(srcfile)
	if len(errs) > 0 {
		return errs
	}
	//
	options, err := readConfig(t, srcfile).Options()
	if err != nil {
		t.Fatal(err)
	}
	//
	options.Declared = defs.Declared()
	//
	for _, d := range defs.Directives {
		if _, err := directive.NewRunner(d, options); err != nil {
			errs = append(errs, *defs.SyntaxError(d, err.Error()))
		}
	}
	//
	return errs
}

func checkExpectedErrors(t *testing.T, filename string, expected []source.SyntaxError,
	actual []source.SyntaxError) {
	var (
		expectedStrs = toSortedStrings(expected)
		actualStrs   = toSortedStrings(actual)
	)
	//
	for _, err := range actualStrs {
		if !slices.Contains(expectedStrs, err) {
			t.Errorf("%s: unexpected error %s", filename, err)
		}
	}
	//
	for _, err := range expectedStrs {
		if !slices.Contains(actualStrs, err) {
			t.Errorf("%s: missing error %s", filename, err)
		}
	}
}

func toSortedStrings(errs []source.SyntaxError) []string {
	var strs = make([]string, len(errs))
	//
	for i, err := range errs {
		strs[i] = errorToString(err)
	}
	//
	slices.Sort(strs)
	//
	return strs
}

// Feed a trace through a session one snapshot at a time, stopping early once
// all directives are resolved.
func runSession(t *testing.T, config engine.Config, defs *lang.Definitions, tr trace.Trace) []directive.Verdict {
	eng, err := engine.New(config, defs.Directives, defs.Declared())
	if err != nil {
		t.Fatal(err)
	}
	//
	session, err := eng.NewSession(nil)
	if err != nil {
		t.Fatal(err)
	}
	//
	for i := uint(0); i < tr.Height() && !session.Done(); i++ {
		if err := session.Feed(tr.Snapshot(i)); err != nil {
			t.Fatal(err)
		}
	}
	//
	return session.Close()
}

func checkVerdicts(t *testing.T, name string, expected []ExpectedVerdict, actual []directive.Verdict) {
	for _, v := range actual {
		i := slices.IndexFunc(expected, func(e ExpectedVerdict) bool { return e.Directive == v.Directive })
		//
		if i < 0 {
			t.Errorf("%s: no expectation for directive %s", name, v.Directive)
		} else if !expected[i].Matches(v) {
			t.Errorf("%s: expected \"%s\", got \"%s\"", name, expected[i].String(), v.String())
		}
	}
}

func readExpectedVerdicts(t *testing.T, srcfile *source.File, defs *lang.Definitions) []ExpectedVerdict {
	expected, errs := ExtractAttributes(srcfile, extractVerdict)
	//
	for _, err := range errs {
		t.Fatalf("%s: %s", srcfile.Filename(), err)
	}
	//
	for _, e := range expected {
		if defs.Directive(e.Directive) == nil {
			t.Fatalf("%s: verdict expected for unknown directive %s", srcfile.Filename(), e.Directive)
		}
	}
	//
	return expected
}

func readConfig(t *testing.T, srcfile *source.File) engine.Config {
	lines, errs := ExtractAttributes(srcfile, extractConfig)
	//
	for _, err := range errs {
		t.Fatalf("%s: %s", srcfile.Filename(), err)
	}
	//
	config, err := engine.ParseConfig([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("%s: %s", srcfile.Filename(), err)
	}
	//
	return config
}

// Read all traces accompanying a given test, keyed by filename.
func readTraces(t *testing.T, basename string) map[string]trace.Trace {
	var traces = make(map[string]trace.Trace)
	//
	for _, ext := range traceExtensions {
		var (
			filename = fmt.Sprintf("%s.%s", basename, ext)
			tr       *trace.ArrayTrace
		)
		//
		data, err := os.ReadFile(filename)
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			t.Fatal(err)
		}
		//
		switch ext {
		case "json":
			tr, err = json.FromBytes(data)
		case "yaml":
			tr, err = yaml.FromBytes(data)
		default:
			tr, err = json.FromLines(bytes.NewReader(data))
		}
		//
		if err != nil {
			t.Fatalf("%s: %s", filename, err)
		}
		//
		traces[filename] = tr
	}
	//
	return traces
}

func readSourceFile(t *testing.T, filename string) *source.File {
	files, err := source.ReadFiles(filename)
	if err != nil {
		t.Fatal(err)
	}
	//
	return &files[0]
}
