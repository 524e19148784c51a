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
	"golang.org/x/crypto/sha3"

	"github.com/holiman/uint256"
)

// instruction executes a single opcode against m and reports how the
// program counter should move next. pc is the position of the opcode byte
// itself, before any advance.
type instruction func(m *Machine, op OpCode, pc uint64) control

func opUnderflow(m *Machine, need int) bool {
	return m.stack.Len() < need
}

// --- arithmetic ---

func opAdd(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.Add(x, y)
	return cContinue(1)
}

func opMul(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.Mul(x, y)
	return cContinue(1)
}

func opSub(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.Sub(x, y)
	return cContinue(1)
}

func opDiv(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.Div(x, y)
	return cContinue(1)
}

func opSDiv(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.SDiv(x, y)
	return cContinue(1)
}

func opMod(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.Mod(x, y)
	return cContinue(1)
}

func opSMod(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.SMod(x, y)
	return cContinue(1)
}

func opAddMod(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 3) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y, z := m.stack.Pop(), m.stack.Pop(), m.stack.Peek()
	z.AddMod(x, y, z)
	return cContinue(1)
}

func opMulMod(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 3) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y, z := m.stack.Pop(), m.stack.Pop(), m.stack.Peek()
	z.MulMod(x, y, z)
	return cContinue(1)
}

func opExp(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	base, exponent := m.stack.Pop(), m.stack.Peek()
	exponent.Exp(base, exponent)
	return cContinue(1)
}

func opSignExtend(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	back, num := m.stack.Pop(), m.stack.Peek()
	num.ExtendSign(num, back)
	return cContinue(1)
}

// --- comparison and bitwise ---

func opLt(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return cContinue(1)
}

func opGt(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return cContinue(1)
}

func opSlt(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return cContinue(1)
}

func opSgt(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return cContinue(1)
}

func opEq(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return cContinue(1)
}

func opIsZero(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 1) {
		return cExit(Error(ErrStackUnderflow))
	}
	x := m.stack.Peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return cContinue(1)
}

func opAnd(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.And(x, y)
	return cContinue(1)
}

func opOr(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.Or(x, y)
	return cContinue(1)
}

func opXor(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	x, y := m.stack.Pop(), m.stack.Peek()
	y.Xor(x, y)
	return cContinue(1)
}

func opNot(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 1) {
		return cExit(Error(ErrStackUnderflow))
	}
	x := m.stack.Peek()
	x.Not(x)
	return cContinue(1)
}

func opByte(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	th, val := m.stack.Pop(), m.stack.Peek()
	val.Byte(th)
	return cContinue(1)
}

func opShl(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	shift, val := m.stack.Pop(), m.stack.Peek()
	val.Lsh(val, uint(shift.Uint64()))
	if !shift.IsUint64() || shift.Uint64() >= 256 {
		val.Clear()
	}
	return cContinue(1)
}

func opShr(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	shift, val := m.stack.Pop(), m.stack.Peek()
	if !shift.IsUint64() || shift.Uint64() >= 256 {
		val.Clear()
		return cContinue(1)
	}
	val.Rsh(val, uint(shift.Uint64()))
	return cContinue(1)
}

func opSar(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	shift, val := m.stack.Pop(), m.stack.Peek()
	if !shift.IsUint64() || shift.Uint64() >= 256 {
		if val.Sign() < 0 {
			val.SetAllOne()
		} else {
			val.Clear()
		}
		return cContinue(1)
	}
	val.SRsh(val, uint(shift.Uint64()))
	return cContinue(1)
}

// --- hashing ---

func opKeccak256(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	offset, size := m.stack.Pop(), m.stack.Peek()
	off, ok := SafeUint256ToUint64(offset)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	sz, ok := SafeUint256ToUint64(size)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	if sz > 0 && !m.memory.Resize(off+sz) {
		return cExit(Error(ErrOutOfOffset))
	}
	data := m.memory.GetPtr(int64(off), int64(sz))
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	h.Sum(out[:0])
	size.SetBytes(out[:])
	return cContinue(1)
}

// --- calldata, code, return-data (pure: backed by fields the Machine
// already holds, no Host involved) ---

func opCallDataLoad(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 1) {
		return cExit(Error(ErrStackUnderflow))
	}
	x := m.stack.Peek()
	off, ok := SafeUint256ToUint64(x)
	if !ok || off >= uint64(len(m.data)) {
		x.Clear()
		return cContinue(1)
	}
	var buf [32]byte
	n := copy(buf[:], m.data[off:])
	_ = n
	x.SetBytes(buf[:])
	return cContinue(1)
}

func opCallDataSize(m *Machine, op OpCode, pc uint64) control {
	if m.stack.Len() >= m.stackLimit {
		return cExit(Error(ErrStackOverflow))
	}
	var v uint256.Int
	v.SetUint64(uint64(len(m.data)))
	m.stack.Push(&v)
	return cContinue(1)
}

func opCallDataCopy(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 3) {
		return cExit(Error(ErrStackUnderflow))
	}
	memOff, dataOff, size := m.stack.Pop(), m.stack.Pop(), m.stack.Pop()
	return copyToMemory(m, memOff, dataOff, size, m.data)
}

func opCodeSize(m *Machine, op OpCode, pc uint64) control {
	if m.stack.Len() >= m.stackLimit {
		return cExit(Error(ErrStackOverflow))
	}
	var v uint256.Int
	v.SetUint64(uint64(len(m.code)))
	m.stack.Push(&v)
	return cContinue(1)
}

func opCodeCopy(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 3) {
		return cExit(Error(ErrStackUnderflow))
	}
	memOff, codeOff, size := m.stack.Pop(), m.stack.Pop(), m.stack.Pop()
	return copyToMemory(m, memOff, codeOff, size, m.code)
}

func copyToMemory(m *Machine, memOff, srcOff, size *uint256.Int, src []byte) control {
	mOff, ok := SafeUint256ToUint64(memOff)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	sz, ok := SafeUint256ToUint64(size)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	if sz == 0 {
		return cContinue(1)
	}
	if !m.memory.Resize(mOff + sz) {
		return cExit(Error(ErrOutOfOffset))
	}
	sOff, ok := SafeUint256ToUint64(srcOff)
	if !ok || sOff >= uint64(len(src)) {
		m.memory.Set(mOff, sz, nil)
		return cContinue(1)
	}
	end := sOff + sz
	if end > uint64(len(src)) {
		end = uint64(len(src))
	}
	m.memory.Set(mOff, end-sOff, src[sOff:end])
	if end-sOff < sz {
		m.memory.Set(mOff+(end-sOff), sz-(end-sOff), nil)
	}
	return cContinue(1)
}

// --- stack manipulation ---

func opPop(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 1) {
		return cExit(Error(ErrStackUnderflow))
	}
	m.stack.Pop()
	return cContinue(1)
}

func makePush(size int) instruction {
	return func(m *Machine, op OpCode, pc uint64) control {
		if m.stack.Len() >= m.stackLimit {
			return cExit(Error(ErrStackOverflow))
		}
		var buf [32]byte
		start := pc + 1
		if size > 0 {
			end := start + uint64(size)
			if end > uint64(len(m.code)) {
				end = uint64(len(m.code))
			}
			copy(buf[32-size:], m.code[start:end])
		}
		var v uint256.Int
		v.SetBytes(buf[:])
		m.stack.Push(&v)
		return cContinue(uint64(1 + size))
	}
}

func makeDup(n int) instruction {
	return func(m *Machine, op OpCode, pc uint64) control {
		if opUnderflow(m, n) {
			return cExit(Error(ErrStackUnderflow))
		}
		if m.stack.Len() >= m.stackLimit {
			return cExit(Error(ErrStackOverflow))
		}
		m.stack.Dup(n)
		return cContinue(1)
	}
}

func makeSwap(n int) instruction {
	return func(m *Machine, op OpCode, pc uint64) control {
		if opUnderflow(m, n+1) {
			return cExit(Error(ErrStackUnderflow))
		}
		m.stack.Swap(n)
		return cContinue(1)
	}
}

// --- memory ---

func opMLoad(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 1) {
		return cExit(Error(ErrStackUnderflow))
	}
	x := m.stack.Peek()
	off, ok := SafeUint256ToUint64(x)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	if !m.memory.Resize(off + 32) {
		return cExit(Error(ErrOutOfOffset))
	}
	x.SetBytes(m.memory.GetPtr(int64(off), 32))
	return cContinue(1)
}

func opMStore(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	offset, val := m.stack.Pop(), m.stack.Pop()
	off, ok := SafeUint256ToUint64(offset)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	if !m.memory.Resize(off + 32) {
		return cExit(Error(ErrOutOfOffset))
	}
	m.memory.Set32(off, val)
	return cContinue(1)
}

func opMStore8(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	offset, val := m.stack.Pop(), m.stack.Pop()
	off, ok := SafeUint256ToUint64(offset)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	if !m.memory.Resize(off + 1) {
		return cExit(Error(ErrOutOfOffset))
	}
	m.memory.store[off] = byte(val.Uint64())
	return cContinue(1)
}

func opMSize(m *Machine, op OpCode, pc uint64) control {
	if m.stack.Len() >= m.stackLimit {
		return cExit(Error(ErrStackOverflow))
	}
	var v uint256.Int
	v.SetUint64(uint64(m.memory.Len()))
	m.stack.Push(&v)
	return cContinue(1)
}

func opMCopy(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 3) {
		return cExit(Error(ErrStackUnderflow))
	}
	dst, src, size := m.stack.Pop(), m.stack.Pop(), m.stack.Pop()
	d, ok := SafeUint256ToUint64(dst)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	s, ok := SafeUint256ToUint64(src)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	sz, ok := SafeUint256ToUint64(size)
	if !ok {
		return cExit(Error(ErrInvalidRange))
	}
	if sz == 0 {
		return cContinue(1)
	}
	top := d
	if s > top {
		top = s
	}
	if !m.memory.Resize(top + sz) {
		return cExit(Error(ErrOutOfOffset))
	}
	m.memory.Copy(d, s, sz)
	return cContinue(1)
}

// --- control flow ---

func opJump(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 1) {
		return cExit(Error(ErrStackUnderflow))
	}
	dest := m.stack.Pop()
	target, ok := SafeUint256ToUint64(dest)
	if !ok || !m.valids.IsJumpDest(target) {
		return cExit(Error(ErrInvalidJump))
	}
	return cJump(target)
}

func opJumpI(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	dest, cond := m.stack.Pop(), m.stack.Pop()
	if cond.IsZero() {
		return cContinue(1)
	}
	target, ok := SafeUint256ToUint64(dest)
	if !ok || !m.valids.IsJumpDest(target) {
		return cExit(Error(ErrInvalidJump))
	}
	return cJump(target)
}

func opJumpDest(m *Machine, op OpCode, pc uint64) control {
	return cContinue(1)
}

func opPC(m *Machine, op OpCode, pc uint64) control {
	if m.stack.Len() >= m.stackLimit {
		return cExit(Error(ErrStackOverflow))
	}
	var v uint256.Int
	v.SetUint64(pc)
	m.stack.Push(&v)
	return cContinue(1)
}

func opStop(m *Machine, op OpCode, pc uint64) control {
	return cExit(Succeed(ExitStopped))
}

func opReturn(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	offset, size := m.stack.Pop(), m.stack.Pop()
	m.setReturnRange(offset, size)
	return cExit(Succeed(ExitReturned))
}

func opRevert(m *Machine, op OpCode, pc uint64) control {
	if opUnderflow(m, 2) {
		return cExit(Error(ErrStackUnderflow))
	}
	offset, size := m.stack.Pop(), m.stack.Pop()
	m.setReturnRange(offset, size)
	return cExit(Revert())
}

func opInvalid(m *Machine, op OpCode, pc uint64) control {
	return cExit(Error(ErrDesignatedInvalid))
}

// opGas has no gas model to report against: the Machine core tracks no gas
// at all, so it returns an unbounded sentinel rather than trapping out to a
// Host that has nothing useful to say either.
func opGas(m *Machine, op OpCode, pc uint64) control {
	if m.stack.Len() >= m.stackLimit {
		return cExit(Error(ErrStackOverflow))
	}
	var v uint256.Int
	v.SetAllOne()
	m.stack.Push(&v)
	return cContinue(1)
}

// opTrap is shared by every opcode that needs Context or a Host: the
// Machine core holds neither, so it suspends and leaves its operands
// exactly where the resuming Runtime expects to find them.
func opTrap(m *Machine, op OpCode, pc uint64) control {
	return cTrap(op)
}

func opUndefined(m *Machine, op OpCode, pc uint64) control {
	return cExit(Error(ErrOther))
}
