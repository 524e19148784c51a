// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package runtime

import (
	"sync/atomic"
	"time"

	"github.com/n42blockchain/N42/internal/vm"
	"github.com/n42blockchain/N42/log"
)

// InstrumentedRuntime wraps a Runtime with timing and call-count metrics,
// without touching Runtime's own driving logic. Set enabled=false to skip
// the timing entirely on the hot path.
type InstrumentedRuntime struct {
	inner   *Runtime
	enabled bool

	runCount uint64
	runTimeNs uint64

	callCount   uint64
	createCount uint64
}

// NewInstrumentedRuntime wraps rt. Disable in production paths where the
// time.Now() pair on every Run call isn't worth paying for.
func NewInstrumentedRuntime(inner *Runtime, enabled bool) *InstrumentedRuntime {
	return &InstrumentedRuntime{inner: inner, enabled: enabled}
}

// Run delegates to the wrapped Runtime, timing the call and tallying
// whether it suspended on a CALL or a CREATE.
func (r *InstrumentedRuntime) Run(host Host) Outcome {
	if !r.enabled {
		return r.inner.Run(host)
	}

	start := time.Now()
	outcome := r.inner.Run(host)
	atomic.AddUint64(&r.runTimeNs, uint64(time.Since(start).Nanoseconds()))
	atomic.AddUint64(&r.runCount, 1)

	if outcome.Call != nil {
		atomic.AddUint64(&r.callCount, 1)
	}
	if outcome.Create != nil {
		atomic.AddUint64(&r.createCount, 1)
	}
	return outcome
}

// Machine, Context, and ReturnData pass straight through so an
// InstrumentedRuntime can stand in anywhere a Runtime is expected.
func (r *InstrumentedRuntime) Machine() *vm.Machine { return r.inner.Machine() }
func (r *InstrumentedRuntime) Context() *Context    { return r.inner.Context() }
func (r *InstrumentedRuntime) ReturnData() []byte   { return r.inner.ReturnData() }

// RuntimeStats holds accumulated Runtime statistics.
type RuntimeStats struct {
	RunCount    uint64
	RunTime     time.Duration
	CallCount   uint64
	CreateCount uint64
}

// Stats returns the accumulated statistics.
func (r *InstrumentedRuntime) Stats() RuntimeStats {
	return RuntimeStats{
		RunCount:    atomic.LoadUint64(&r.runCount),
		RunTime:     time.Duration(atomic.LoadUint64(&r.runTimeNs)),
		CallCount:   atomic.LoadUint64(&r.callCount),
		CreateCount: atomic.LoadUint64(&r.createCount),
	}
}

// LogStats logs the accumulated statistics at debug level.
func (r *InstrumentedRuntime) LogStats() {
	stats := r.Stats()
	log.Debug("runtime stats",
		"runs", stats.RunCount,
		"run_time", stats.RunTime,
		"calls", stats.CallCount,
		"creates", stats.CreateCount,
	)
}

// ResetStats clears all counters.
func (r *InstrumentedRuntime) ResetStats() {
	atomic.StoreUint64(&r.runCount, 0)
	atomic.StoreUint64(&r.runTimeNs, 0)
	atomic.StoreUint64(&r.callCount, 0)
	atomic.StoreUint64(&r.createCount, 0)
}

// Inner returns the wrapped Runtime.
func (r *InstrumentedRuntime) Inner() *Runtime { return r.inner }
