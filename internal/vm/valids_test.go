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

func TestValidsPlainJumpdest(t *testing.T) {
	// JUMPDEST STOP
	v := NewValids([]byte{0x5b, 0x00})
	if !v.IsJumpDest(0) {
		t.Error("position 0 should be a valid jump destination")
	}
	if v.IsJumpDest(1) {
		t.Error("position 1 is STOP, not a jump destination")
	}
}

func TestValidsSkipsPushImmediateData(t *testing.T) {
	// PUSH1 0x5b STOP: the 0x5b byte is push data, not a real JUMPDEST.
	v := NewValids([]byte{0x60, 0x5b, 0x00})
	if v.IsJumpDest(1) {
		t.Error("a JUMPDEST byte inside PUSH data must not count")
	}
}

func TestValidsAfterMultiBytePush(t *testing.T) {
	// PUSH2 0x0000 JUMPDEST
	code := []byte{0x61, 0x00, 0x00, 0x5b}
	v := NewValids(code)
	if !v.IsJumpDest(3) {
		t.Error("JUMPDEST immediately after a PUSH2's immediate data should be valid")
	}
	if v.IsJumpDest(1) || v.IsJumpDest(2) {
		t.Error("bytes inside the PUSH2 immediate must not be valid jump destinations")
	}
}

func TestValidsOutOfRange(t *testing.T) {
	v := NewValids([]byte{0x5b})
	if v.IsJumpDest(1000) {
		t.Error("a position past the end of code can never be a jump destination")
	}
}

func TestValidsEmptyCode(t *testing.T) {
	v := NewValids(nil)
	if v.IsJumpDest(0) {
		t.Error("empty code has no jump destinations")
	}
}

func TestValidsTruncatedPush(t *testing.T) {
	// PUSH32 with only one byte of immediate data actually present: the scan
	// must not walk past the end of code looking for the rest.
	code := []byte{0x7f, 0x5b}
	v := NewValids(code)
	if v.IsJumpDest(1) {
		t.Error("a byte consumed as truncated push data is never a jump destination")
	}
}
