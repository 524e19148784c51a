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

// Runtime wraps a Machine with a Context, a return-data buffer, and
// Host-trap resolution. Where the Machine only knows Continue/Jump/Exit/
// Trap, the Runtime knows what a Trap means and either resolves it
// in-loop (BALANCE, SLOAD, and the other synchronous queries) or suspends
// itself and hands a CallInterrupt/CreateInterrupt to the outer driver.
type Runtime struct {
	machine          *vm.Machine
	context          Context
	returnDataBuffer []byte
	config           *Config
}

// New builds a Runtime over freshly constructed Machine state. The Machine
// is built with the JumpTable matching config's feature flags, cached so
// repeated frames under the same config share one table.
func New(code, data []byte, context Context, config *Config) *Runtime {
	table := vm.GetCachedJumpTable(config.Features())
	return &Runtime{
		machine: vm.NewMachine(code, data, config.StackLimit, config.MemoryLimit, table),
		context: context,
		config:  config,
	}
}

// Machine returns the wrapped Machine.
func (rt *Runtime) Machine() *vm.Machine { return rt.machine }

// Context returns this frame's Context.
func (rt *Runtime) Context() *Context { return &rt.context }

// ReturnData returns the data from the most recently completed sub-call.
func (rt *Runtime) ReturnData() []byte { return rt.returnDataBuffer }

// Outcome is what driving a Runtime to its next suspension point produces:
// either it Exited with a reason, or it needs a nested CALL or CREATE
// performed by the outer driver and fed back through Resolve.
type Outcome struct {
	Exited bool
	Exit   vm.ExitReason

	Call    *CallInterrupt
	Create  *CreateInterrupt
	Resolve *Resolve
}

// Run drives the Machine until it exits or traps on a CALL/CREATE family
// opcode that only the outer driver can perform. Every other trap (BALANCE,
// SLOAD, LOG, and the rest of the Host-backed opcodes) is resolved against
// host without returning here. After a CALL/CREATE Outcome, the caller
// performs the sub-call, calls Resolve.ApplyCall/ApplyCreate, and calls Run
// again to keep driving this same frame.
func (rt *Runtime) Run(host Host) Outcome {
	for {
		if op, ok := rt.machine.Inspect(); ok {
			if reason, pass := host.PreValidate(&rt.context, op, rt.machine.Stack().Len()); !pass {
				capture := rt.machine.Exit(reason)
				return Outcome{Exited: true, Exit: capture.Exit}
			}
		}

		done, capture := rt.machine.Step()
		if !done {
			continue
		}
		if !capture.Trapped {
			return Outcome{Exited: true, Exit: capture.Exit}
		}

		switch capture.Trap {
		case vm.CALL, vm.CALLCODE, vm.DELEGATECALL, vm.STATICCALL:
			interrupt, reason, ok := rt.buildCallInterrupt(capture.Trap)
			if !ok {
				c := rt.machine.Exit(reason)
				return Outcome{Exited: true, Exit: c.Exit}
			}
			return Outcome{Call: &interrupt, Resolve: &Resolve{rt: rt}}
		case vm.CREATE, vm.CREATE2:
			interrupt, reason, ok := rt.buildCreateInterrupt(capture.Trap)
			if !ok {
				c := rt.machine.Exit(reason)
				return Outcome{Exited: true, Exit: c.Exit}
			}
			return Outcome{Create: &interrupt, Resolve: &Resolve{rt: rt}}
		default:
			if reason, ok := rt.resolveQuery(host, capture.Trap); !ok {
				c := rt.machine.Exit(reason)
				return Outcome{Exited: true, Exit: c.Exit}
			}
		}
	}
}

func addressToUint256(a Address) uint256.Int {
	var v uint256.Int
	v.SetBytes(a[:])
	return v
}

func uint256ToAddress(v *uint256.Int) Address {
	var a Address
	b := v.Bytes20()
	copy(a[:], b[:])
	return a
}

func hashToUint256(h Hash) uint256.Int {
	var v uint256.Int
	v.SetBytes(h[:])
	return v
}

func uint256ToHash(v *uint256.Int) Hash {
	var h Hash
	b := v.Bytes32()
	copy(h[:], b[:])
	return h
}

// resolveQuery resolves every Trap that is not a CALL/CREATE family opcode:
// opcodes backed directly by this frame's Context, and opcodes backed by a
// synchronous Host query. It pops the opcode's operands, calls through to
// Context/Host, and pushes the result - the Machine resumes from the very
// next instruction since Step already advanced the PC by one on Trap.
func (rt *Runtime) resolveQuery(host Host, op vm.OpCode) (vm.ExitReason, bool) {
	st := rt.machine.Stack()
	mem := rt.machine.Memory()
	limit := rt.config.StackLimit
	if limit <= 0 {
		limit = vm.DefaultStackLimit
	}
	overflow := false
	push := func(v uint256.Int) {
		if st.Len() >= limit {
			overflow = true
			return
		}
		st.Push(&v)
	}

	switch op {
	case vm.ADDRESS:
		push(addressToUint256(rt.context.Address))
	case vm.CALLER:
		push(addressToUint256(rt.context.Caller))
	case vm.ORIGIN:
		push(addressToUint256(rt.context.Origin))
	case vm.CALLVALUE:
		push(rt.context.ApparentValue)
	case vm.GASPRICE:
		push(rt.context.GasPrice)

	case vm.BALANCE:
		if st.Len() < 1 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		addr := uint256ToAddress(st.Pop())
		push(host.Balance(addr))
	case vm.EXTCODESIZE:
		if st.Len() < 1 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		addr := uint256ToAddress(st.Pop())
		var v uint256.Int
		v.SetUint64(host.CodeSize(addr))
		push(v)
	case vm.EXTCODEHASH:
		if st.Len() < 1 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		addr := uint256ToAddress(st.Pop())
		push(hashToUint256(host.CodeHash(addr)))
	case vm.EXTCODECOPY:
		if st.Len() < 4 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		addr := uint256ToAddress(st.Pop())
		memOff, codeOff, size := st.Pop(), st.Pop(), st.Pop()
		return rt.copyExternalToMemory(mem, memOff, codeOff, size, host.Code(addr))

	case vm.BLOCKHASH:
		if st.Len() < 1 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		num, ok := vm.SafeUint256ToUint64(st.Pop())
		if !ok {
			push(uint256.Int{})
		} else {
			push(hashToUint256(host.BlockHash(num)))
		}
	case vm.COINBASE:
		push(addressToUint256(host.BlockCoinbase()))
	case vm.TIMESTAMP:
		var v uint256.Int
		v.SetUint64(host.BlockTimestamp())
		push(v)
	case vm.NUMBER:
		var v uint256.Int
		v.SetUint64(host.BlockNumber())
		push(v)
	case vm.DIFFICULTY:
		push(host.BlockDifficulty())
	case vm.GASLIMIT:
		var v uint256.Int
		v.SetUint64(host.BlockGasLimit())
		push(v)
	case vm.CHAINID:
		push(host.ChainID())
	case vm.BASEFEE:
		push(host.BlockBaseFee())
	case vm.SELFBALANCE:
		push(host.Balance(rt.context.Address))
	case vm.BLOBHASH, vm.BLOBBASEFEE:
		push(uint256.Int{})

	case vm.SLOAD:
		if st.Len() < 1 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		key := uint256ToHash(st.Pop())
		push(hashToUint256(host.Storage(rt.context.Address, key)))
	case vm.SSTORE:
		if st.Len() < 2 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		key, val := st.Pop(), st.Pop()
		host.SetStorage(rt.context.Address, uint256ToHash(key), uint256ToHash(val))
	case vm.TLOAD:
		if st.Len() < 1 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		key := uint256ToHash(st.Pop())
		push(hashToUint256(host.TransientStorage(rt.context.Address, key)))
	case vm.TSTORE:
		if st.Len() < 2 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		key, val := st.Pop(), st.Pop()
		host.SetTransientStorage(rt.context.Address, uint256ToHash(key), uint256ToHash(val))

	case vm.RETURNDATASIZE:
		var v uint256.Int
		v.SetUint64(uint64(len(rt.returnDataBuffer)))
		push(v)
	case vm.RETURNDATACOPY:
		if st.Len() < 3 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		memOff, dataOff, size := st.Pop(), st.Pop(), st.Pop()
		return rt.copyExternalToMemory(mem, memOff, dataOff, size, rt.returnDataBuffer)

	case vm.LOG0, vm.LOG1, vm.LOG2, vm.LOG3, vm.LOG4:
		n := int(op - vm.LOG0)
		if st.Len() < 2+n {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		offset, size := st.Pop(), st.Pop()
		topics := make([]Hash, n)
		for i := 0; i < n; i++ {
			topics[i] = uint256ToHash(st.Pop())
		}
		off, ok1 := vm.SafeUint256ToUint64(offset)
		sz, ok2 := vm.SafeUint256ToUint64(size)
		if !ok1 || !ok2 {
			return vm.Error(vm.ErrInvalidRange), false
		}
		if sz > 0 && !mem.Resize(off+sz) {
			return vm.Error(vm.ErrOutOfOffset), false
		}
		data := mem.GetCopy(off, int64(sz))
		host.Log(rt.context.Address, topics, data)

	case vm.SELFDESTRUCT:
		if st.Len() < 1 {
			return vm.Error(vm.ErrStackUnderflow), false
		}
		target := uint256ToAddress(st.Pop())
		host.MarkDelete(rt.context.Address, target)
		return vm.Succeed(vm.ExitSuicided), false

	default:
		return vm.Fatal(vm.FatalUnhandledInterrupt), false
	}
	if overflow {
		return vm.Error(vm.ErrStackOverflow), false
	}
	return vm.ExitReason{}, true
}

func (rt *Runtime) copyExternalToMemory(mem *vm.Memory, memOff, srcOff, size *uint256.Int, src []byte) (vm.ExitReason, bool) {
	mOff, ok := vm.SafeUint256ToUint64(memOff)
	if !ok {
		return vm.Error(vm.ErrInvalidRange), false
	}
	sz, ok := vm.SafeUint256ToUint64(size)
	if !ok {
		return vm.Error(vm.ErrInvalidRange), false
	}
	if sz == 0 {
		return vm.ExitReason{}, true
	}
	if !mem.Resize(mOff + sz) {
		return vm.Error(vm.ErrOutOfOffset), false
	}
	sOff, ok := vm.SafeUint256ToUint64(srcOff)
	if !ok || sOff >= uint64(len(src)) {
		mem.Set(mOff, sz, nil)
		return vm.ExitReason{}, true
	}
	end := sOff + sz
	if end > uint64(len(src)) {
		end = uint64(len(src))
	}
	mem.Set(mOff, end-sOff, src[sOff:end])
	if end-sOff < sz {
		mem.Set(mOff+(end-sOff), sz-(end-sOff), nil)
	}
	return vm.ExitReason{}, true
}

func (rt *Runtime) buildCallInterrupt(op vm.OpCode) (CallInterrupt, vm.ExitReason, bool) {
	st := rt.machine.Stack()
	needsValue := op == vm.CALL || op == vm.CALLCODE
	if (needsValue && st.Len() < 7) || (!needsValue && st.Len() < 6) {
		return CallInterrupt{}, vm.Error(vm.ErrStackUnderflow), false
	}

	targetGasVal := st.Pop()
	target := uint256ToAddress(st.Pop())
	var value uint256.Int
	if needsValue {
		value = *st.Pop()
	}
	inOffset, inSize := st.Pop(), st.Pop()
	outOffset, outSize := st.Pop(), st.Pop()

	inOff, ok := vm.SafeUint256ToUint64(inOffset)
	if !ok {
		return CallInterrupt{}, vm.Error(vm.ErrInvalidRange), false
	}
	inSz, ok := vm.SafeUint256ToUint64(inSize)
	if !ok {
		return CallInterrupt{}, vm.Error(vm.ErrInvalidRange), false
	}
	outOff, ok := vm.SafeUint256ToUint64(outOffset)
	if !ok {
		return CallInterrupt{}, vm.Error(vm.ErrInvalidRange), false
	}
	outSz, ok := vm.SafeUint256ToUint64(outSize)
	if !ok {
		return CallInterrupt{}, vm.Error(vm.ErrInvalidRange), false
	}
	if inSz > 0 && !rt.machine.Memory().Resize(inOff+inSz) {
		return CallInterrupt{}, vm.Error(vm.ErrOutOfOffset), false
	}
	input := rt.machine.Memory().GetCopy(inOff, int64(inSz))

	var scheme CallScheme
	var ctx Context
	var transfer *Transfer
	switch op {
	case vm.CALL:
		scheme = CallSchemeCall
		ctx = Context{Address: target, Caller: rt.context.Address, Origin: rt.context.Origin, ApparentValue: value, GasPrice: rt.context.GasPrice, InputData: input}
		transfer = &Transfer{Source: rt.context.Address, Target: target, Value: value}
	case vm.CALLCODE:
		scheme = CallSchemeCallCode
		ctx = Context{Address: rt.context.Address, Caller: rt.context.Address, Origin: rt.context.Origin, ApparentValue: value, GasPrice: rt.context.GasPrice, InputData: input}
		transfer = &Transfer{Source: rt.context.Address, Target: rt.context.Address, Value: value}
	case vm.DELEGATECALL:
		scheme = CallSchemeDelegateCall
		ctx = Context{Address: rt.context.Address, Caller: rt.context.Caller, Origin: rt.context.Origin, ApparentValue: rt.context.ApparentValue, GasPrice: rt.context.GasPrice, InputData: input}
	case vm.STATICCALL:
		scheme = CallSchemeStaticCall
		ctx = Context{Address: target, Caller: rt.context.Address, Origin: rt.context.Origin, GasPrice: rt.context.GasPrice, InputData: input}
	}

	var targetGas *uint64
	if g, ok := vm.SafeUint256ToUint64(targetGasVal); ok {
		targetGas = &g
	}

	return CallInterrupt{
		Scheme:       scheme,
		Context:      ctx,
		Transfer:     transfer,
		Input:        input,
		TargetGas:    targetGas,
		OutputOffset: outOff,
		OutputSize:   outSz,
	}, vm.ExitReason{}, true
}

func (rt *Runtime) buildCreateInterrupt(op vm.OpCode) (CreateInterrupt, vm.ExitReason, bool) {
	st := rt.machine.Stack()
	needsSalt := op == vm.CREATE2
	min := 3
	if needsSalt {
		min = 4
	}
	if st.Len() < min {
		return CreateInterrupt{}, vm.Error(vm.ErrStackUnderflow), false
	}

	value := st.Pop()
	offset, size := st.Pop(), st.Pop()
	var scheme CreateScheme
	if needsSalt {
		scheme = CreateScheme{IsCreate2: true, Salt: *st.Pop()}
	}

	off, ok := vm.SafeUint256ToUint64(offset)
	if !ok {
		return CreateInterrupt{}, vm.Error(vm.ErrInvalidRange), false
	}
	sz, ok := vm.SafeUint256ToUint64(size)
	if !ok {
		return CreateInterrupt{}, vm.Error(vm.ErrInvalidRange), false
	}
	if rt.config.CreateContractLimit > 0 && sz > uint64(rt.config.CreateContractLimit) {
		return CreateInterrupt{}, vm.Error(vm.ErrCreateContractLimit), false
	}
	if sz > 0 && !rt.machine.Memory().Resize(off+sz) {
		return CreateInterrupt{}, vm.Error(vm.ErrOutOfOffset), false
	}
	initCode := rt.machine.Memory().GetCopy(off, int64(sz))

	return CreateInterrupt{
		Scheme:   scheme,
		Caller:   rt.context.Address,
		Value:    *value,
		InitCode: initCode,
	}, vm.ExitReason{}, true
}

func (rt *Runtime) pasteOutput(offset, size uint64, data []byte) {
	if size == 0 {
		return
	}
	if !rt.machine.Memory().Resize(offset + size) {
		return
	}
	if uint64(len(data)) >= size {
		rt.machine.Memory().Set(offset, size, data[:size])
		return
	}
	rt.machine.Memory().Set(offset, uint64(len(data)), data)
}

func (rt *Runtime) pushCallResult(reason vm.ExitReason) {
	var v uint256.Int
	if reason.IsSucceed() {
		v.SetOne()
	}
	rt.machine.Stack().Push(&v)
}

func (rt *Runtime) pushCreateResult(reason vm.ExitReason, address Address) {
	var v uint256.Int
	if reason.IsSucceed() {
		v = addressToUint256(address)
	}
	rt.machine.Stack().Push(&v)
}
