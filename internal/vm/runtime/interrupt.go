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
	"github.com/holiman/uint256"

	"github.com/n42blockchain/N42/internal/vm"
)

// CallInterrupt is everything the outer driver needs to perform a
// CALL/CALLCODE/DELEGATECALL/STATICCALL on this Runtime's behalf.
type CallInterrupt struct {
	Scheme    CallScheme
	Context   Context
	Transfer  *Transfer
	Input     []byte
	TargetGas *uint64
	// OutputOffset/OutputSize name where in the caller's memory the
	// sub-call's return data should land once resolved.
	OutputOffset uint64
	OutputSize   uint64
}

// CreateInterrupt is everything the outer driver needs to perform a
// CREATE/CREATE2 on this Runtime's behalf.
type CreateInterrupt struct {
	Scheme    CreateScheme
	Caller    Address
	Value     uint256.Int
	InitCode  []byte
	TargetGas *uint64
}

// Resolve is the suspended half of a trapped CALL/CREATE: the outer driver
// performs the sub-call however it sees fit, then calls ApplyCall or
// ApplyCreate to feed the outcome back into this Runtime, and calls Run to
// continue driving it.
type Resolve struct {
	rt       *Runtime
	isCreate bool
}

// ApplyCall completes a resolved CALL-family interrupt: it writes
// returnData into the return-data buffer, pastes the designated slice into
// the caller's memory, and pushes success (1) or failure (0) on the stack.
func (r *Resolve) ApplyCall(interrupt CallInterrupt, exitReason vm.ExitReason, returnData []byte) {
	if exitReason.IsSucceed() || exitReason.IsRevert() {
		r.rt.returnDataBuffer = append(r.rt.returnDataBuffer[:0], returnData...)
		r.rt.pasteOutput(interrupt.OutputOffset, interrupt.OutputSize, returnData)
	} else {
		r.rt.returnDataBuffer = r.rt.returnDataBuffer[:0]
	}
	r.rt.pushCallResult(exitReason)
}

// ApplyCreate completes a resolved CREATE-family interrupt: a successful
// create pushes the new contract's address; anything else pushes zero and,
// for Revert, still populates the return-data buffer with the init code's
// revert reason.
func (r *Resolve) ApplyCreate(exitReason vm.ExitReason, address Address, returnData []byte) {
	if exitReason.IsRevert() {
		r.rt.returnDataBuffer = append(r.rt.returnDataBuffer[:0], returnData...)
	} else {
		r.rt.returnDataBuffer = r.rt.returnDataBuffer[:0]
	}
	r.rt.pushCreateResult(exitReason, address)
}
