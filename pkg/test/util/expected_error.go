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

	"github.com/consensys/go-sva/pkg/util/source"
)

// Extract an expected syntax error of the form ";;error:L:S-E:msg", where L is
// a line number and S-E a range of columns (both counting from 1).
func extractSyntaxError(line source.Line, srcfile *source.File) (bool, source.SyntaxError, error) {
	var contents = line.String()
	//
	if !strings.HasPrefix(contents, ";;error") {
		return false, source.SyntaxError{}, nil
	}
	//
	var splits = strings.Split(contents, ":")
	//
	if len(splits) < 4 {
		return true, source.SyntaxError{}, fmt.Errorf("malformed expected error \"%s\", should be e.g. \";;error:X:Y-Z:msg\"",
			contents)
	}
	//
	lineno, err := strconv.Atoi(splits[1])
	if err != nil || lineno == 0 {
		return true, source.SyntaxError{}, fmt.Errorf("invalid line \"%s\" (lines numbered from 1)", splits[1])
	}
	//
	start, end, err := parseColumns(splits[2])
	if err != nil {
		return true, source.SyntaxError{}, err
	}
	//
	span, err := determineFileSpan(lineno, start, end, srcfile.Lines())
	if err != nil {
		return true, source.SyntaxError{}, err
	}
	//
	return true, *srcfile.SyntaxError(span, strings.Join(splits[3:], ":")), nil
}

func parseColumns(columns string) (start, end int, err error) {
	var splits = strings.Split(columns, "-")
	//
	if len(splits) != 2 {
		return 0, 0, fmt.Errorf("invalid columns \"%s\" (malformed, should be X-Y)", columns)
	} else if start, err = strconv.Atoi(splits[0]); err != nil || start == 0 {
		return 0, 0, fmt.Errorf("invalid columns \"%s\" (columns numbered from 1)", columns)
	} else if end, err = strconv.Atoi(splits[1]); err != nil || end < start {
		return 0, 0, fmt.Errorf("invalid columns \"%s\"", columns)
	}
	//
	return start, end, nil
}

// Determine the span within the file corresponding to a range of columns on a
// given line.
func determineFileSpan(lineno, start, end int, lines []source.Line) (source.Span, error) {
	if lineno > len(lines) {
		return source.Span{}, fmt.Errorf("invalid span \"%d:%d-%d\" (non-existent line)", lineno, start, end)
	}
	//
	line := lines[lineno-1]
	// Subtract one from each since column numbering starts from 1.
	start--
	end--
	//
	if start >= line.Length() || end > line.Length() {
		return source.Span{}, fmt.Errorf("invalid span \"%d:%d-%d\" (overflows to following line)", lineno, start, end)
	}
	//
	return source.NewSpan(line.Start()+start, line.Start()+end), nil
}

func errorToString(err source.SyntaxError) string {
	var (
		span = err.Span()
		line = err.FirstEnclosingLine()
	)
	//
	return fmt.Sprintf("%d:%d-%d:%s", line.Number(), 1+span.Start()-line.Start(), 1+span.End()-line.Start(),
		err.Message())
}
