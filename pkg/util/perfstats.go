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
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats records the time, memory allocation and number of GC events at a
// given point, such that the cost of evaluating some number of cycles since
// then can be reported.
type PerfStats struct {
	startTime time.Time
	startMem  uint64
	startGc   uint32
}

// NewPerfStats takes a snapshot of the current time and memory allocation.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Log the cost of evaluating a given number of cycles since this snapshot was
// taken (at debug level).
func (p *PerfStats) Log(prefix string, cycles uint) {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	var (
		alloc    = (m.TotalAlloc - p.startMem) / 1024 / 1024
		gcs      = m.NumGC - p.startGc
		exectime = time.Since(p.startTime).Seconds()
		rate     float64
	)
	//
	if exectime > 0 {
		rate = float64(cycles) / exectime
	}
	//
	log.Debugf("%s took %0.3fs for %d cycles (%0.0f cycles/s) using %v Mb (%v GC events)", prefix, exectime,
		cycles, rate, alloc, gcs)
}
