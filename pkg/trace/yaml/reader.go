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
package yaml

import (
	"fmt"
	"math/big"

	"github.com/consensys/go-sva/pkg/bitvec"
	"github.com/consensys/go-sva/pkg/trace"
	yaml3 "gopkg.in/yaml.v3"
)

// FromBytes parses a trace expressed in columnar YAML notation.  This follows
// the same shape as the JSON notation, where each signal maps to a sequence of
// values (one per cycle) and signals may optionally be grouped by module:
//
//	top:
//	  req@u1: [0, 1, 1, 0]
//	  data: [0x0, 0xff, 8'h10, 0]
//
// Unlike JSON, values may be given using any literal notation accepted by
// bitvec.Parse (e.g. hexadecimal or sized binary literals).
func FromBytes(data []byte) (*trace.ArrayTrace, error) {
	var (
		root yaml3.Node
		cols []trace.Column
	)
	//
	if err := yaml3.Unmarshal(data, &root); err != nil {
		return nil, err
	} else if len(root.Content) == 0 {
		// Empty document
		return trace.FromColumns(nil)
	}
	//
	top := root.Content[0]
	//
	if top.Kind != yaml3.MappingNode {
		return nil, nodeError(top, "expected mapping of signals")
	}
	//
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		//
		switch val.Kind {
		case yaml3.SequenceNode:
			col, err := newColumn("", key.Value, val)
			if err != nil {
				return nil, err
			}
			//
			cols = append(cols, col)
		case yaml3.MappingNode:
			for j := 0; j+1 < len(val.Content); j += 2 {
				col, err := newColumn(key.Value, val.Content[j].Value, val.Content[j+1])
				if err != nil {
					return nil, err
				}
				//
				cols = append(cols, col)
			}
		default:
			return nil, nodeError(val, "expected sequence of values or module")
		}
	}
	//
	return trace.FromColumns(cols)
}

func newColumn(module string, key string, node *yaml3.Node) (trace.Column, error) {
	name, width, err := trace.SplitSignalName(key)
	//
	if err != nil {
		return trace.Column{}, nodeError(node, err.Error())
	} else if node.Kind != yaml3.SequenceNode {
		return trace.Column{}, nodeError(node, "expected sequence of values")
	}
	//
	data := make([]*big.Int, len(node.Content))
	//
	for i, item := range node.Content {
		if item.Kind != yaml3.ScalarNode {
			return trace.Column{}, nodeError(item, "expected value")
		}
		//
		val, err := bitvec.Parse(item.Value)
		if err != nil {
			return trace.Column{}, nodeError(item, err.Error())
		}
		//
		data[i] = val.Big()
	}
	//
	return trace.Column{Name: trace.QualifiedName(module, name), Width: width, Data: data}, nil
}

func nodeError(node *yaml3.Node, msg string) error {
	return fmt.Errorf("line %d: %s", node.Line, msg)
}
