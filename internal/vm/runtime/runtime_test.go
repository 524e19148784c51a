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
	"testing"

	"github.com/holiman/uint256"

	"github.com/n42blockchain/N42/internal/vm"
)

func TestConfigPresets(t *testing.T) {
	f := Frontier()
	if f.HasRevert || f.HasCreate2 || f.HasDelegateCall {
		t.Error("frontier must not enable later-fork opcodes")
	}
	if err := f.Validate(); err != nil {
		t.Errorf("frontier should validate: %v", err)
	}

	i := Istanbul()
	if !i.HasRevert || !i.HasCreate2 || !i.HasSelfBalance || !i.HasChainID {
		t.Error("istanbul must enable the modern opcode set")
	}
	if err := i.Validate(); err != nil {
		t.Errorf("istanbul should validate: %v", err)
	}

	c := Cancun()
	if !c.HasMCopy || !c.HasTransientStorage || !c.HasPush0 {
		t.Error("cancun must enable its additions on top of istanbul")
	}
}

func TestConfigFeaturesCarriesCallGates(t *testing.T) {
	f := Frontier().Features()
	if f.HasDelegateCall || f.HasStaticCall {
		t.Error("frontier's Features projection must leave DELEGATECALL/STATICCALL ungated-off")
	}
	i := Istanbul().Features()
	if !i.HasDelegateCall || !i.HasStaticCall {
		t.Error("istanbul's Features projection must carry DELEGATECALL/STATICCALL through to the JumpTable")
	}
}

func TestConfigValidateRejectsTinyLimits(t *testing.T) {
	cfg := Frontier()
	cfg.StackLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a zero stack limit")
	}
}

// stubHost implements Host with fixed responses, enough to drive the
// synchronous-query opcodes without a CALL/CREATE ever firing.
type stubHost struct {
	balances map[Address]uint256.Int
	storage  map[Address]map[Hash]Hash
	logged   int
}

func newStubHost() *stubHost {
	return &stubHost{
		balances: make(map[Address]uint256.Int),
		storage:  make(map[Address]map[Hash]Hash),
	}
}

func (h *stubHost) Balance(a Address) uint256.Int    { return h.balances[a] }
func (h *stubHost) CodeSize(Address) uint64          { return 0 }
func (h *stubHost) CodeHash(Address) Hash            { return Hash{} }
func (h *stubHost) Code(Address) []byte              { return nil }
func (h *stubHost) Storage(a Address, k Hash) Hash    { return h.storage[a][k] }
func (h *stubHost) SetStorage(a Address, k, v Hash) {
	if h.storage[a] == nil {
		h.storage[a] = make(map[Hash]Hash)
	}
	h.storage[a][k] = v
}
func (h *stubHost) OriginalStorage(a Address, k Hash) Hash     { return h.storage[a][k] }
func (h *stubHost) Exists(Address) bool                        { return true }
func (h *stubHost) TransientStorage(Address, Hash) Hash         { return Hash{} }
func (h *stubHost) SetTransientStorage(Address, Hash, Hash)     {}
func (h *stubHost) BlockHash(uint64) Hash                       { return Hash{} }
func (h *stubHost) BlockNumber() uint64                         { return 1 }
func (h *stubHost) BlockCoinbase() Address                      { return Address{} }
func (h *stubHost) BlockTimestamp() uint64                      { return 1000 }
func (h *stubHost) BlockDifficulty() uint256.Int                { return uint256.Int{} }
func (h *stubHost) BlockGasLimit() uint64                       { return 30_000_000 }
func (h *stubHost) BlockBaseFee() uint256.Int                   { return uint256.Int{} }
func (h *stubHost) ChainID() uint256.Int {
	var v uint256.Int
	v.SetUint64(1)
	return v
}
func (h *stubHost) Log(Address, []Hash, []byte) { h.logged++ }
func (h *stubHost) MarkDelete(Address, Address)  {}
func (h *stubHost) Create(Address, CreateScheme, uint256.Int, []byte, *uint64) (Address, []byte, vm.ExitReason) {
	return Address{}, nil, vm.Succeed(vm.ExitReturned)
}
func (h *stubHost) Call(Address, *Transfer, []byte, *uint64, CallScheme, Context) ([]byte, vm.ExitReason) {
	return nil, vm.Succeed(vm.ExitReturned)
}
func (h *stubHost) PreValidate(*Context, vm.OpCode, int) (vm.ExitReason, bool) {
	return vm.ExitReason{}, true
}

func runCode(t *testing.T, code []byte, cfg *Config) Outcome {
	t.Helper()
	rt := New(code, nil, Context{}, cfg)
	return rt.Run(newStubHost())
}

func TestRuntimeAddition(t *testing.T) {
	// PUSH1 1 PUSH1 2 ADD STOP
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}
	out := runCode(t, code, Frontier())
	if !out.Exited || !out.Exit.IsSucceed() {
		t.Fatalf("expected a clean stop, got %+v", out.Exit)
	}
}

func TestRuntimeInvalidJump(t *testing.T) {
	// PUSH1 3 JUMP STOP STOP
	code := []byte{0x60, 0x03, 0x56, 0x00, 0x00}
	out := runCode(t, code, Frontier())
	if !out.Exited || !out.Exit.IsError() || out.Exit.Error != vm.ErrInvalidJump {
		t.Fatalf("expected InvalidJump, got %+v", out.Exit)
	}
}

func TestRuntimeValidJump(t *testing.T) {
	// PUSH1 4 JUMP STOP JUMPDEST STOP
	code := []byte{0x60, 0x04, 0x56, 0x00, 0x5b, 0x00}
	out := runCode(t, code, Frontier())
	if !out.Exited || !out.Exit.IsSucceed() {
		t.Fatalf("expected a clean stop, got %+v", out.Exit)
	}
}

func TestRuntimeReturn(t *testing.T) {
	// PUSH1 0x2a PUSH1 0 MSTORE PUSH1 0x20 PUSH1 0 RETURN
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	rt := New(code, nil, Context{}, Frontier())
	out := rt.Run(newStubHost())
	if !out.Exited || out.Exit.Succeed != vm.ExitReturned {
		t.Fatalf("expected Returned, got %+v", out.Exit)
	}
	ret := rt.Machine().ReturnValue()
	if len(ret) != 32 || ret[31] != 0x2a {
		t.Fatalf("unexpected return value: %x", ret)
	}
}

func TestRuntimeStackOverflow(t *testing.T) {
	cfg := Frontier()
	cfg.StackLimit = 2
	// PUSH1 1 PUSH1 2 PUSH1 3 STOP: third push overflows a 2-word stack.
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x60, 0x03, 0x00}
	out := runCode(t, code, cfg)
	if !out.Exited || out.Exit.Error != vm.ErrStackOverflow {
		t.Fatalf("expected StackOverflow, got %+v", out.Exit)
	}
}

func TestRuntimeRevertWithData(t *testing.T) {
	// PUSH1 0x2a PUSH1 0 MSTORE PUSH1 0x20 PUSH1 0 REVERT
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xfd}
	rt := New(code, nil, Context{}, Istanbul())
	out := rt.Run(newStubHost())
	if !out.Exited || !out.Exit.IsRevert() {
		t.Fatalf("expected Revert, got %+v", out.Exit)
	}
	if got := rt.Machine().ReturnValue(); len(got) != 32 || got[31] != 0x2a {
		t.Fatalf("unexpected revert data: %x", got)
	}
}

func TestRuntimeSloadReadsHostStorage(t *testing.T) {
	addr := Address{1}
	key := Hash{31: 2}
	host := newStubHost()
	host.storage[addr] = map[Hash]Hash{key: {31: 9}}

	// PUSH1 2 SLOAD STOP: load storage[2] (big-endian key 2 holds 9).
	code := []byte{0x60, 0x02, 0x54, 0x00}
	rt := New(code, nil, Context{Address: addr}, Istanbul())
	out := rt.Run(host)
	if !out.Exited || !out.Exit.IsSucceed() {
		t.Fatalf("expected a clean stop, got %+v", out.Exit)
	}
	if got := rt.Machine().Stack().Peek(); got.Uint64() != 9 {
		t.Fatalf("expected 9 on top of stack, got %v", got)
	}
}

func TestRuntimeCallTraps(t *testing.T) {
	// PUSH1 0 PUSH1 0 PUSH1 0 PUSH1 0 PUSH1 0 PUSH20 <addr> PUSH2 0xffff CALL
	code := append([]byte{0x60, 0, 0x60, 0, 0x60, 0, 0x60, 0, 0x60, 0, 0x73},
		make([]byte, 20)...)
	code = append(code, 0x61, 0xff, 0xff, 0xf1)
	rt := New(code, nil, Context{}, Istanbul())
	out := rt.Run(newStubHost())
	if out.Exited || out.Call == nil || out.Resolve == nil {
		t.Fatalf("expected a suspended CALL interrupt, got %+v", out)
	}
	out.Resolve.ApplyCall(*out.Call, vm.Succeed(vm.ExitReturned), []byte{1, 2, 3})
	final := rt.Run(newStubHost())
	if !final.Exited || !final.Exit.IsSucceed() {
		t.Fatalf("expected the frame to finish after resolving the call, got %+v", final.Exit)
	}
}
