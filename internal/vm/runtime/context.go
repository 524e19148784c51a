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
	libcommon "github.com/ledgerwatch/erigon-lib/common"
)

// Address aliases the 20-byte account identifier the rest of the tree
// already uses, so Context/Host signatures read naturally next to the
// teacher's own state-access code.
type Address = libcommon.Address

// Hash aliases the 32-byte word identifier used for code hashes and
// storage keys.
type Hash = libcommon.Hash

// Context is the immutable identity of one call frame: who is executing,
// who called it, the value attached, and the calldata it was invoked with.
// It is built by the outer driver once per frame and never mutated for the
// frame's lifetime.
type Context struct {
	Address       Address
	Caller        Address
	Origin        Address
	ApparentValue uint256.Int
	GasPrice      uint256.Int
	InputData     []byte
}

// CallScheme distinguishes the four ways one contract can invoke another.
type CallScheme int

const (
	CallSchemeCall CallScheme = iota
	CallSchemeCallCode
	CallSchemeDelegateCall
	CallSchemeStaticCall
)

func (s CallScheme) String() string {
	switch s {
	case CallSchemeCall:
		return "call"
	case CallSchemeCallCode:
		return "callcode"
	case CallSchemeDelegateCall:
		return "delegatecall"
	case CallSchemeStaticCall:
		return "staticcall"
	default:
		return "unknown call scheme"
	}
}

// CreateScheme distinguishes CREATE from CREATE2, carrying CREATE2's salt.
type CreateScheme struct {
	IsCreate2 bool
	Salt      uint256.Int
}
