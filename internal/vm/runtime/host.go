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

// Transfer describes a value movement a CALL/CREATE asks the Host to carry
// out alongside the sub-call itself.
type Transfer struct {
	Source Address
	Target Address
	Value  uint256.Int
}

// Host is everything a Runtime needs from the outside world to resolve a
// Trap: account and storage state, block context, hashing, logging, and
// the ability to actually perform a nested CALL or CREATE. Every method
// either returns a value directly or an ExitReason describing why it
// couldn't.
type Host interface {
	// Balance returns address's current wei balance.
	Balance(address Address) uint256.Int
	// CodeSize returns the length of address's deployed code.
	CodeSize(address Address) uint64
	// CodeHash returns the hash of address's deployed code.
	CodeHash(address Address) Hash
	// Code returns a copy of address's deployed code.
	Code(address Address) []byte
	// Storage returns the current value at key in address's storage.
	Storage(address Address, key Hash) Hash
	// SetStorage writes value at key in address's storage (SSTORE).
	SetStorage(address Address, key, value Hash)
	// OriginalStorage returns the value at key as of the start of the
	// current transaction, before this frame's own writes.
	OriginalStorage(address Address, key Hash) Hash
	// Exists reports whether address is a known account.
	Exists(address Address) bool

	// TransientStorage and SetTransientStorage back TLOAD/TSTORE
	// (EIP-1153): storage that lives for the transaction, not the
	// account, so the Host owns it rather than any one call frame.
	TransientStorage(address Address, key Hash) Hash
	SetTransientStorage(address Address, key, value Hash)

	// BlockHash returns the hash of the block at number, or a zero Hash
	// if number is out of the retrievable window.
	BlockHash(number uint64) Hash
	BlockNumber() uint64
	BlockCoinbase() Address
	BlockTimestamp() uint64
	BlockDifficulty() uint256.Int
	BlockGasLimit() uint64
	BlockBaseFee() uint256.Int
	ChainID() uint256.Int

	// Log records a LOG0..LOG4 emitted by address.
	Log(address Address, topics []Hash, data []byte)
	// MarkDelete records a SELFDESTRUCT of address in favor of target.
	MarkDelete(address, target Address)

	// Create performs a CREATE/CREATE2 and reports its outcome
	// synchronously: the new contract's address, any return data
	// (revert reason or deployed code), and the ExitReason.
	Create(caller Address, scheme CreateScheme, value uint256.Int, initCode []byte, targetGas *uint64) (Address, []byte, vm.ExitReason)
	// Call performs a CALL/CALLCODE/DELEGATECALL/STATICCALL and reports
	// its outcome synchronously.
	Call(code Address, transfer *Transfer, input []byte, targetGas *uint64, scheme CallScheme, ctx Context) ([]byte, vm.ExitReason)

	// PreValidate runs before every Machine step, letting the Host veto
	// an opcode before it executes (depth limits, static-call write
	// guards, and similar cross-cutting checks). ok is false when reason
	// names why the frame must abort instead of proceeding.
	PreValidate(ctx *Context, opcode vm.OpCode, stackLen int) (reason vm.ExitReason, ok bool)
}
