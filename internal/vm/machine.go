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

// Package vm implements the Machine: a pure bytecode interpreter over a
// 256-bit word stack, byte-addressable memory, and a contract's code. The
// Machine knows nothing about gas, accounts, or a Host - any opcode that
// needs information from outside its own code/data/stack/memory suspends
// with a Trap instead of resolving it directly.
package vm

import (
	"github.com/holiman/uint256"

	"github.com/n42blockchain/N42/internal/vm/stack"
)

const (
	// DefaultStackLimit matches the Yellow Paper's 1024-word operand stack.
	DefaultStackLimit = 1024
	// DefaultMemoryLimit bounds how far Resize lets memory grow, guarding
	// against a contract driving an allocation large enough to exhaust the
	// host process regardless of how the caller prices memory expansion.
	DefaultMemoryLimit = 32 * 1024 * 1024
)

// Machine is a single EVM call frame's bytecode interpreter.
type Machine struct {
	code []byte
	data []byte

	position uint64
	exited   bool
	exitReason ExitReason

	returnRangeStart uint256.Int
	returnRangeEnd   uint256.Int

	valids Valids
	memory *Memory
	stack  *stack.Stack

	stackLimit  int
	memoryLimit uint64

	table *JumpTable
}

// NewMachine builds a Machine ready to execute code against the given
// calldata. table selects which opcodes are wired up, letting callers gate
// hard-fork-specific instructions without the Machine itself knowing about
// forks.
func NewMachine(code, data []byte, stackLimit int, memoryLimit uint64, table *JumpTable) *Machine {
	if stackLimit <= 0 {
		stackLimit = DefaultStackLimit
	}
	if memoryLimit == 0 {
		memoryLimit = DefaultMemoryLimit
	}
	if table == nil {
		table = CancunInstructionSet()
	}
	return &Machine{
		code:        code,
		data:        data,
		valids:      NewValids(code),
		memory:      NewMemory(memoryLimit),
		stack:       stack.New(),
		stackLimit:  stackLimit,
		memoryLimit: memoryLimit,
		table:       table,
	}
}

// Stack returns the operand stack.
func (m *Machine) Stack() *stack.Stack { return m.stack }

// Memory returns the memory space.
func (m *Machine) Memory() *Memory { return m.memory }

// Code returns the contract code being executed.
func (m *Machine) Code() []byte { return m.code }

// Data returns the calldata the Machine was constructed with.
func (m *Machine) Data() []byte { return m.data }

// PC returns the current program counter. Once the Machine has exited this
// is the position it stopped at, not a position past the end of code.
func (m *Machine) PC() uint64 { return m.position }

// Inspect reports the opcode about to execute, and whether there is one:
// a Machine that has already exited has none.
func (m *Machine) Inspect() (OpCode, bool) {
	if m.exited || m.position >= uint64(len(m.code)) {
		return 0, false
	}
	return OpCode(m.code[m.position]), true
}

func (m *Machine) exit(reason ExitReason) {
	m.exited = true
	m.exitReason = reason
}

// Exit forces the Machine into a terminal state, used by a Runtime that
// needs to abort a frame for a reason only it knows about (a Host query
// failing, a depth limit, and similar). It is idempotent: calling it again
// after the Machine has already exited has no effect on the first reason.
func (m *Machine) Exit(reason ExitReason) Capture {
	if !m.exited {
		m.exit(reason)
	}
	return CaptureExit(m.exitReason)
}

func (m *Machine) setReturnRange(offset, size *uint256.Int) {
	m.returnRangeStart.Set(offset)
	m.returnRangeEnd.Add(offset, size)
}

// ReturnValue extracts the bytes named by the last RETURN/REVERT, clamping
// against the addressable range exactly as a 64-bit host would: a start
// beyond what memory could ever address yields an all-zero buffer of the
// requested length, and an end beyond it reads what it can and zero-pads
// the rest.
func (m *Machine) ReturnValue() []byte {
	start, end := &m.returnRangeStart, &m.returnRangeEnd
	diff := GetUint256()
	defer PutUint256(diff)
	diff.Sub(end, start)
	diffLen, diffOK := SafeUint256ToUint64(diff)

	if !start.IsUint64() {
		if !diffOK {
			return nil
		}
		return make([]byte, diffLen)
	}
	startU := start.Uint64()
	if !end.IsUint64() {
		var ret []byte
		if memLen := uint64(m.memory.Len()); startU < memLen {
			ret = m.memory.GetCopy(startU, int64(memLen-startU))
		}
		if !diffOK {
			return ret
		}
		if uint64(len(ret)) >= diffLen {
			return ret[:diffLen]
		}
		padded := make([]byte, diffLen)
		copy(padded, ret)
		return padded
	}
	if !diffOK {
		return nil
	}
	ret := m.memory.GetCopy(startU, int64(diffLen))
	if uint64(len(ret)) < diffLen {
		padded := make([]byte, diffLen)
		copy(padded, ret)
		return padded
	}
	return ret
}

// Step executes exactly one instruction. done reports whether the Machine
// has reached a terminal state (exited or trapped); when done is false the
// returned Capture is meaningless and the caller should call Step again.
func (m *Machine) Step() (done bool, capture Capture) {
	if m.exited {
		return true, CaptureExit(m.exitReason)
	}
	if m.position >= uint64(len(m.code)) {
		m.exit(Succeed(ExitStopped))
		return true, CaptureExit(m.exitReason)
	}

	op := OpCode(m.code[m.position])
	handler := m.table[op]
	pos := m.position
	ctl := handler(m, op, pos)

	switch ctl.kind {
	case controlContinue:
		m.position = pos + ctl.advance
		return false, Capture{}
	case controlJump:
		m.position = ctl.dest
		return false, Capture{}
	case controlExit:
		m.exit(ctl.exit)
		return true, CaptureExit(ctl.exit)
	case controlTrap:
		m.position = pos + 1
		return true, CaptureTrap(ctl.trap)
	default:
		m.exit(Fatal(FatalNotSupported))
		return true, CaptureExit(m.exitReason)
	}
}

// Run drives the Machine to a Capture, looping Step until it terminates.
func (m *Machine) Run() Capture {
	for {
		done, capture := m.Step()
		if done {
			return capture
		}
	}
}

// Resume continues a Machine that suspended on a Trap, once the caller has
// pushed whatever result the trapped opcode needed onto the Stack (or left
// it untouched, for opcodes like LOG/SELFDESTRUCT that produce no result).
// It is just Run under another name, kept distinct so call sites read as
// "resume after resolving a trap" rather than "start running".
func (m *Machine) Resume() Capture {
	return m.Run()
}
