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

package vm

import "testing"

func TestMachineAddition(t *testing.T) {
	// PUSH1 1 PUSH1 2 ADD STOP
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}
	m := NewMachine(code, nil, 0, 0, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || !capture.Exit.IsSucceed() || capture.Exit.Succeed != ExitStopped {
		t.Fatalf("expected a clean stop, got %+v", capture)
	}
	if got := m.Stack().Peek(); got.Uint64() != 3 {
		t.Fatalf("expected 1+2=3 on top of stack, got %v", got)
	}
}

func TestMachineInvalidJump(t *testing.T) {
	// PUSH1 3 JUMP STOP STOP: position 3 is a STOP, not a JUMPDEST.
	code := []byte{0x60, 0x03, 0x56, 0x00, 0x00}
	m := NewMachine(code, nil, 0, 0, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || !capture.Exit.IsError() || capture.Exit.Error != ErrInvalidJump {
		t.Fatalf("expected InvalidJump, got %+v", capture)
	}
}

func TestMachineValidJump(t *testing.T) {
	// PUSH1 4 JUMP STOP JUMPDEST STOP
	code := []byte{0x60, 0x04, 0x56, 0x00, 0x5b, 0x00}
	m := NewMachine(code, nil, 0, 0, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || !capture.Exit.IsSucceed() {
		t.Fatalf("expected a clean stop after the jump, got %+v", capture)
	}
	if m.PC() != 5 {
		t.Fatalf("expected PC to land on the trailing STOP at 5, got %d", m.PC())
	}
}

func TestMachineReturn(t *testing.T) {
	// PUSH1 0x2a PUSH1 0 MSTORE PUSH1 0x20 PUSH1 0 RETURN
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	m := NewMachine(code, nil, 0, 0, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || capture.Exit.Succeed != ExitReturned {
		t.Fatalf("expected Returned, got %+v", capture)
	}
	ret := m.ReturnValue()
	if len(ret) != 32 {
		t.Fatalf("expected a 32-byte word, got %d bytes", len(ret))
	}
	if ret[31] != 0x2a {
		t.Fatalf("expected the low byte to be 0x2a, got %x", ret[31])
	}
}

func TestMachineStackOverflow(t *testing.T) {
	// PUSH1 1 PUSH1 2 PUSH1 3 STOP against a stack limit of 2 words.
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x60, 0x03, 0x00}
	m := NewMachine(code, nil, 2, 0, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || !capture.Exit.IsError() || capture.Exit.Error != ErrStackOverflow {
		t.Fatalf("expected StackOverflow, got %+v", capture)
	}
}

func TestMachineRevertWithData(t *testing.T) {
	// PUSH1 0x2a PUSH1 0 MSTORE PUSH1 0x20 PUSH1 0 REVERT, on the Cancun set
	// (REVERT is Byzantium-gated and absent from FrontierInstructionSet).
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xfd}
	m := NewMachine(code, nil, 0, 0, CancunInstructionSet())
	capture := m.Run()
	if capture.Trapped || !capture.Exit.IsRevert() {
		t.Fatalf("expected Revert, got %+v", capture)
	}
	ret := m.ReturnValue()
	if len(ret) != 32 || ret[31] != 0x2a {
		t.Fatalf("unexpected revert data: %x", ret)
	}
}

func TestMachineRevertUndefinedOnFrontier(t *testing.T) {
	// REVERT alone: on the frontier set it isn't wired, so it's undefined.
	code := []byte{0xfd}
	m := NewMachine(code, nil, 0, 0, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || !capture.Exit.IsError() || capture.Exit.Error != ErrOther {
		t.Fatalf("expected an undefined-opcode error, got %+v", capture)
	}
}

func TestMachineTrapOnHostOpcode(t *testing.T) {
	// PUSH20 <zero address> BALANCE: BALANCE always traps, Machine has no Host.
	code := append([]byte{0x73}, make([]byte, 20)...)
	code = append(code, 0x31)
	m := NewMachine(code, nil, 0, 0, CancunInstructionSet())
	done, capture := m.Step()
	for !done {
		done, capture = m.Step()
	}
	if !capture.Trapped || capture.Trap != BALANCE {
		t.Fatalf("expected a BALANCE trap, got %+v", capture)
	}
	// The PC must sit exactly one past the trapping opcode regardless of its
	// own instruction width.
	if m.PC() != uint64(len(code)) {
		t.Fatalf("expected PC at %d after the trap, got %d", len(code), m.PC())
	}
}

func TestMachineFallsOffTheEnd(t *testing.T) {
	// No STOP at all: falling off the end of code is itself a clean stop.
	code := []byte{0x60, 0x01}
	m := NewMachine(code, nil, 0, 0, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || capture.Exit.Succeed != ExitStopped {
		t.Fatalf("expected an implicit Stopped, got %+v", capture)
	}
}

func TestMachineExitIsIdempotent(t *testing.T) {
	m := NewMachine([]byte{0x00}, nil, 0, 0, FrontierInstructionSet())
	m.Run()
	first := m.Exit(Error(ErrOutOfGas))
	if first.Exit.Succeed != ExitStopped {
		t.Fatalf("Exit must not override an already-latched reason, got %+v", first.Exit)
	}
}

func TestMachineEnforcesMemoryLimit(t *testing.T) {
	// PUSH1 0 PUSH2 0x0100 MSTORE: writes a word at offset 256, ending at
	// byte 288, well past a 32-byte memory limit.
	code := []byte{0x60, 0x00, 0x61, 0x01, 0x00, 0x52}
	m := NewMachine(code, nil, 0, 32, FrontierInstructionSet())
	capture := m.Run()
	if capture.Trapped || !capture.Exit.IsError() || capture.Exit.Error != ErrOutOfOffset {
		t.Fatalf("expected OutOfOffset once the write would exceed the memory limit, got %+v", capture)
	}
}
