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

// Package runtime wraps a Machine with the things it has no access to on
// its own: a Context identifying the current call frame, a return-data
// buffer, and Host-trap resolution for CALL/CREATE/SLOAD/BALANCE and every
// other opcode that needs world state.
package runtime

import (
	"math"

	"github.com/n42blockchain/N42/internal/vm"
	"github.com/n42blockchain/N42/pkg/errors"
)

// Config declares the fork-specific policy a Runtime enforces. It is copied
// from a preset by the outer driver and never mutated afterward.
type Config struct {
	GasExtCode               uint64
	GasExtCodeHash            uint64
	GasSStoreSet              uint64
	GasSStoreReset            uint64
	RefundSStoreClears        int64
	GasBalance                uint64
	GasSLoad                  uint64
	GasSuicide                uint64
	GasSuicideNewAccount      uint64
	GasCall                   uint64
	GasExpByte                uint64
	GasTransactionCreate      uint64
	GasTransactionCall        uint64
	GasTransactionZeroData    uint64
	GasTransactionNonZeroData uint64

	SStoreGasMetering       bool // EIP-1283
	SStoreRevertUnderStipend bool // EIP-1706
	ErrOnCallWithMoreGas    bool
	CallL64AfterGas         bool // EIP-150
	EmptyConsideredExists   bool
	CreateIncreaseNonce     bool

	StackLimit          int
	MemoryLimit         uint64
	CallStackLimit      int
	CreateContractLimit int // 0 means unbounded
	CallStipend         uint64

	HasDelegateCall    bool
	HasCreate2         bool
	HasRevert          bool
	HasReturnData      bool
	HasStaticCall      bool
	HasBitwiseShifting bool
	HasChainID         bool
	HasSelfBalance     bool
	HasExtCodeHash     bool
	HasBaseFee         bool
	HasMCopy           bool
	HasTransientStorage bool
	HasPush0           bool
	HasBlobHash        bool
	HasBlobBaseFee     bool

	Estimate bool
}

// Validate rejects limits too small for the Machine to function at all.
func (c *Config) Validate() error {
	if c.StackLimit < 1 {
		return errors.ErrStackLimitTooLow
	}
	if c.MemoryLimit < 32 {
		return errors.ErrMemoryLimitTooLow
	}
	if c.CallStackLimit < 1 {
		return errors.ErrCallStackLimitTooLow
	}
	return nil
}

// Features projects the subset of Config that gates which opcodes a
// Machine's JumpTable wires up.
func (c *Config) Features() vm.Features {
	return vm.Features{
		HasDelegateCall:     c.HasDelegateCall,
		HasRevert:           c.HasRevert,
		HasReturnData:       c.HasReturnData,
		HasStaticCall:       c.HasStaticCall,
		HasBitwiseShifting:  c.HasBitwiseShifting,
		HasCreate2:          c.HasCreate2,
		HasExtCodeHash:      c.HasExtCodeHash,
		HasSelfBalance:      c.HasSelfBalance,
		HasChainID:          c.HasChainID,
		HasBaseFee:          c.HasBaseFee,
		HasMCopy:            c.HasMCopy,
		HasTransientStorage: c.HasTransientStorage,
		HasPush0:            c.HasPush0,
		HasBlobHash:         c.HasBlobHash,
		HasBlobBaseFee:      c.HasBlobBaseFee,
	}
}

// Frontier is the original EVM launch configuration: no REVERT, no
// RETURNDATA, no CREATE2, minimal gas costs.
func Frontier() *Config {
	return &Config{
		GasExtCode:                20,
		GasExtCodeHash:            20,
		GasBalance:                20,
		GasSLoad:                  50,
		GasSStoreSet:              20000,
		GasSStoreReset:            5000,
		RefundSStoreClears:        15000,
		GasSuicide:                0,
		GasSuicideNewAccount:      0,
		GasCall:                   40,
		GasExpByte:                10,
		GasTransactionCreate:      21000,
		GasTransactionCall:        21000,
		GasTransactionZeroData:    4,
		GasTransactionNonZeroData: 68,
		ErrOnCallWithMoreGas:      true,
		EmptyConsideredExists:     true,
		StackLimit:                vm.DefaultStackLimit,
		MemoryLimit:               math.MaxUint64,
		CallStackLimit:            1024,
		CallStipend:               2300,
	}
}

// Istanbul is the Istanbul-era opcode set, with the
// EIP-150/1283/1706/1344/1884 gas schedule layered on top of Frontier.
// Cancun enables the later additions on top of it.
func Istanbul() *Config {
	return &Config{
		GasExtCode:                700,
		GasExtCodeHash:            700,
		GasBalance:                700,
		GasSLoad:                  800,
		GasSStoreSet:              20000,
		GasSStoreReset:            5000,
		RefundSStoreClears:        15000,
		GasSuicide:                5000,
		GasSuicideNewAccount:      25000,
		GasCall:                   700,
		GasExpByte:                50,
		GasTransactionCreate:      53000,
		GasTransactionCall:        21000,
		GasTransactionZeroData:    4,
		GasTransactionNonZeroData: 16,
		SStoreGasMetering:         true,
		SStoreRevertUnderStipend:  true,
		CreateIncreaseNonce:       true,
		CallL64AfterGas:           true,
		StackLimit:                vm.DefaultStackLimit,
		MemoryLimit:               math.MaxUint64,
		CallStackLimit:            1024,
		CreateContractLimit:       0x6000,
		CallStipend:               2300,
		HasDelegateCall:           true,
		HasCreate2:                true,
		HasRevert:                 true,
		HasReturnData:             true,
		HasStaticCall:             true,
		HasBitwiseShifting:        true,
		HasChainID:                true,
		HasSelfBalance:            true,
		HasExtCodeHash:            true,
	}
}

// Cancun layers the Shanghai/Cancun opcode additions (PUSH0, transient
// storage, MCOPY, BASEFEE, blob fields) on top of Istanbul's gas schedule.
// Not part of the original distillation; supplied because the Machine core
// already implements these opcodes and a caller needs a preset to reach
// them through Config-gated construction.
func Cancun() *Config {
	c := Istanbul()
	c.HasBaseFee = true
	c.HasMCopy = true
	c.HasTransientStorage = true
	c.HasPush0 = true
	c.HasBlobHash = true
	c.HasBlobBaseFee = true
	return c
}
