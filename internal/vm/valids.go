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

// Valids is a precomputed jump-destination bitmap over a contract's code,
// one bit per byte. It is built once when a Machine is constructed so that
// JUMP/JUMPI can validate a target in O(1) instead of rescanning the code
// on every jump.
type Valids []byte

// NewValids scans code once and marks every JUMPDEST byte that is not
// sitting inside a preceding PUSH's immediate data.
func NewValids(code []byte) Valids {
	v := make(Valids, len(code)/8+1)
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			v.set(pc)
			pc++
			continue
		}
		pc += 1 + op.PushSize()
	}
	return v
}

func (v Valids) set(pos int) {
	v[pos/8] |= 1 << (uint(pos) % 8)
}

// IsJumpDest reports whether pos names a valid jump destination.
func (v Valids) IsJumpDest(pos uint64) bool {
	if pos/8 >= uint64(len(v)) {
		return false
	}
	return v[pos/8]&(1<<(pos%8)) != 0
}
