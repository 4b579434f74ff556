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
	"strings"

	"github.com/consensys/go-sva/pkg/util/source"
)

// Attribute provides a generic mechanism for extracting attributes from the
// header of a file.  An attribute parses a given line producing an item if it
// matches, or an error if the line matched but was malformed.
type Attribute[T any] func(source.Line, *source.File) (bool, T, error)

// ExtractAttributes extracts all attributes from the header of a source file,
// where the header consists of the leading lines starting with ";;".  Header
// lines not matched by any of the given attributes are ignored.
func ExtractAttributes[T any](srcfile *source.File, attributes ...Attribute[T]) ([]T, []error) {
	var (
		items  []T
		errors []error
	)
	// scan header line-by-line
	for _, line := range srcfile.Lines() {
		if !strings.HasPrefix(line.String(), ";;") {
			break
		}
		//
		for _, attribute := range attributes {
			matched, item, err := attribute(line, srcfile)
			//
			if err != nil {
				errors = append(errors, err)
			} else if matched {
				items = append(items, item)
				break
			}
		}
	}
	//
	return items, errors
}
