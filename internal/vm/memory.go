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

import (
	"github.com/holiman/uint256"
)

// Memory is the byte-addressable, word-oriented scratch space a Machine
// reads and writes through MLOAD/MSTORE/MSTORE8/MCOPY and the *CALL*/*CODECOPY
// family. It only ever grows: Resize is monotonic, matching the Yellow
// Paper's memory expansion rule.
type Memory struct {
	store       []byte
	lastGasCost uint64
	limit       uint64
}

// NewMemory allocates an empty Memory with enough backing capacity to
// avoid a reallocation for typical contract executions. limit bounds how
// far Resize will ever grow the backing store; a zero limit means
// unbounded.
func NewMemory(limit uint64) *Memory {
	return &Memory{
		store: make([]byte, 0, 4*1024),
		limit: limit,
	}
}

// Len returns the number of bytes currently addressable.
func (m *Memory) Len() int {
	return len(m.store)
}

// Resize grows memory to size bytes, rounded up to a whole 32-byte word.
// Shrinking requests are ignored: once the VM has paid for a memory
// expansion it never gives it back mid-call. It reports false, leaving
// memory untouched, when the rounded size exceeds the configured limit.
func (m *Memory) Resize(size uint64) bool {
	if size > ^uint64(0)-31 {
		return false
	}
	size = (size + 31) &^ 31
	if m.limit > 0 && size > m.limit {
		return false
	}
	if uint64(m.Len()) >= size {
		return true
	}
	grow := make([]byte, size-uint64(m.Len()))
	m.store = append(m.store, grow...)
	return true
}

// Set writes size bytes of data into memory starting at offset, growing
// memory through Resize as needed; where data is shorter than size the
// remaining bytes are zeroed. A write the memory limit cannot hold is
// dropped. A zero size is a no-op even when data is non-empty, matching the
// PUSH-then-CALLDATACOPY(0, 0) idiom contracts rely on.
func (m *Memory) Set(offset, size uint64, data []byte) {
	if size == 0 {
		return
	}
	if !m.Resize(offset + size) {
		return
	}
	n := copy(m.store[offset:offset+size], data)
	clear(m.store[offset+uint64(n) : offset+size])
}

// Set32 writes val as a right-aligned 32-byte big-endian word at offset,
// the shape every PUSH32-sized memory write needs.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		return
	}
	val.WriteToSlice(m.store[offset : offset+32])
}

// GetCopy returns an independent copy of size bytes starting at offset.
// Zero size, or a request entirely beyond the current length, returns nil.
func (m *Memory) GetCopy(offset uint64, size int64) []byte {
	if size == 0 {
		return nil
	}
	if int64(len(m.store)) <= int64(offset) {
		return nil
	}
	cp := make([]byte, size)
	end := offset + uint64(size)
	if end > uint64(len(m.store)) {
		end = uint64(len(m.store))
	}
	copy(cp, m.store[offset:end])
	return cp
}

// GetPtr returns a slice aliasing the internal storage, for callers that
// only read or that intentionally mutate memory in place.
func (m *Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if int64(len(m.store)) <= offset {
		return nil
	}
	return m.store[offset : offset+size]
}

// Data returns the full backing slice.
func (m *Memory) Data() []byte {
	return m.store
}

// Copy moves len bytes from src to dst within the same Memory, correctly
// handling overlapping ranges (Go's builtin copy already does, this just
// keeps the call site symmetric with the opcode it backs: MCOPY).
func (m *Memory) Copy(dst, src, len uint64) {
	if len == 0 {
		return
	}
	copy(m.store[dst:dst+len], m.store[src:src+len])
}

// Reset clears memory back to empty, used when a Machine is returned to
// a pool for reuse.
func (m *Memory) Reset() {
	m.store = m.store[:0]
	m.lastGasCost = 0
}
