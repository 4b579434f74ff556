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
package bexp

import "fmt"

// MalformedExpressionError indicates an expression (or a sequence or property
// built from expressions) was rejected at construction time.  For example, a
// delay range whose upper bound is below its lower bound, or a reference to an
// undeclared signal.
type MalformedExpressionError struct {
	Msg string
}

// Malformed constructs a new MalformedExpressionError with a formatted message.
func Malformed(format string, args ...any) *MalformedExpressionError {
	return &MalformedExpressionError{fmt.Sprintf(format, args...)}
}

func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("malformed expression: %s", e.Msg)
}

// UndefinedHistoryError indicates that evaluation requires more cycles of
// history than are retained.  This is normally detected statically, by
// comparing the depth of an expression against the configured history depth.
// It can also arise at runtime, if a cycle which has already been evicted is
// accessed.
type UndefinedHistoryError struct {
	// Number of cycles of history required.
	Required uint
	// Number of cycles of history available.
	Available uint
}

func (e *UndefinedHistoryError) Error() string {
	return fmt.Sprintf("requires %d cycles of history, but only %d available", e.Required, e.Available)
}

// MissingVariableError indicates that a snapshot was missing a signal referenced
// by an expression.  This is never treated as a Boolean false.
type MissingVariableError struct {
	Name  string
	Cycle uint
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("signal %s missing at cycle %d", e.Name, e.Cycle)
}
