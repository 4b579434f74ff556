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
package engine

import (
	"fmt"
	"os"

	"github.com/consensys/go-sva/pkg/directive"
	"gopkg.in/yaml.v3"
)

// Config captures the recognised engine options, as read from a YAML
// configuration file.
type Config struct {
	// Maximum number of outstanding match attempts per sequence (0 means
	// unbounded).
	MaxOutstandingAttempts uint `yaml:"maxOutstandingAttempts"`
	// Treatment of pending strong obligations at the end of a finite trace
	// ("inconclusive" or "fail").
	FiniteTraceEventuallyPolicy string `yaml:"finiteTraceEventuallyPolicy"`
	// Cycles of history available to Boolean expressions (0 means derived
	// from the deepest reference).
	HistoryDepth uint `yaml:"historyDepth"`
	// Treatment of attempts in flight when a directive is disabled ("abort"
	// or "freeze").
	DisablePolicy string `yaml:"disablePolicy"`
	// Report the verdict so far of every directive after each cycle.
	Streaming bool `yaml:"streaming"`
	// Evaluate directives in parallel over finite traces.
	Parallel bool `yaml:"parallel"`
	// Minimum number of cycles retained by a session for reporting purposes.
	MaxRetainedCycles uint `yaml:"maxRetainedCycles"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		FiniteTraceEventuallyPolicy: directive.EVENTUALLY_INCONCLUSIVE.String(),
		DisablePolicy:               directive.DISABLE_ABORT.String(),
		Parallel:                    true,
	}
}

// LoadConfig reads a configuration file, where options omitted from the file
// retain their default values.
func LoadConfig(filename string) (Config, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	//
	return ParseConfig(bytes)
}

// ParseConfig parses a configuration from YAML, where options omitted retain
// their default values.
func ParseConfig(bytes []byte) (Config, error) {
	var config = DefaultConfig()
	//
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return Config{}, err
	} else if _, err := config.Options(); err != nil {
		return Config{}, err
	}
	//
	return config, nil
}

// Options converts this configuration into the options used for evaluating
// individual directives.
func (c Config) Options() (directive.Options, error) {
	eventually, err := directive.ParseEventuallyPolicy(c.FiniteTraceEventuallyPolicy)
	if err != nil {
		return directive.Options{}, fmt.Errorf("finiteTraceEventuallyPolicy: %w", err)
	}
	//
	disable, err := directive.ParseDisablePolicy(c.DisablePolicy)
	if err != nil {
		return directive.Options{}, fmt.Errorf("disablePolicy: %w", err)
	}
	//
	return directive.Options{
		MaxOutstandingAttempts: c.MaxOutstandingAttempts,
		HistoryDepth:           c.HistoryDepth,
		EventuallyPolicy:       eventually,
		DisablePolicy:          disable,
	}, nil
}
