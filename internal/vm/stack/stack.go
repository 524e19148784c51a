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

// Package stack implements the Machine's operand stack and the separate
// return-address stack used by EIP-2315-style static jumps.
package stack

import (
	"sync"

	"github.com/holiman/uint256"
)

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is the Machine's 256-bit word operand stack.
type Stack struct {
	data []uint256.Int
}

// New returns a Stack from the pool, empty and ready to use.
func New() *Stack {
	return stackPool.Get().(*Stack)
}

// ReturnNormalStack resets s and returns it to the pool.
func ReturnNormalStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// Len reports the number of words on the stack.
func (st *Stack) Len() int {
	return len(st.data)
}

// Cap reports the stack's current backing capacity.
func (st *Stack) Cap() int {
	return cap(st.data)
}

// Push pushes a copy of val onto the stack.
func (st *Stack) Push(val *uint256.Int) {
	st.data = append(st.data, *val)
}

// PushN pushes vals in the order given, so the last element of vals ends
// up on top.
func (st *Stack) PushN(vals ...uint256.Int) {
	st.data = append(st.data, vals...)
}

// Pop removes and returns the top word.
func (st *Stack) Pop() *uint256.Int {
	n := len(st.data) - 1
	v := st.data[n]
	st.data = st.data[:n]
	return &v
}

// Peek returns the top word without removing it.
func (st *Stack) Peek() *uint256.Int {
	return &st.data[len(st.data)-1]
}

// Back returns the n-th word from the top, 0-indexed, without removing it.
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[len(st.data)-1-n]
}

// Swap exchanges the top word with the word n positions below it.
func (st *Stack) Swap(n int) {
	top := len(st.data) - 1
	st.data[top], st.data[top-n] = st.data[top-n], st.data[top]
}

// Dup duplicates the n-th word from the top, 1-indexed, onto the top.
func (st *Stack) Dup(n int) {
	st.data = append(st.data, st.data[len(st.data)-n])
}

// Reset empties the stack without releasing its backing array.
func (st *Stack) Reset() {
	st.data = st.data[:0]
}

// Data exposes the backing slice, bottom to top.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

var returnStackPool = sync.Pool{
	New: func() interface{} {
		return &ReturnStack{data: make([]uint32, 0, 10)}
	},
}

// ReturnStack holds the return PCs pushed by EIP-2315 CALLF-style static
// calls, kept separate from the operand Stack so ordinary arithmetic can
// never corrupt control flow.
type ReturnStack struct {
	data []uint32
}

// NewReturnStack returns a ReturnStack from the pool, empty and ready to use.
func NewReturnStack() *ReturnStack {
	return returnStackPool.Get().(*ReturnStack)
}

// ReturnRStack resets rs and returns it to the pool.
func ReturnRStack(rs *ReturnStack) {
	rs.data = rs.data[:0]
	returnStackPool.Put(rs)
}

// Push pushes a return address.
func (rs *ReturnStack) Push(d uint32) {
	rs.data = append(rs.data, d)
}

// Pop removes and returns the top return address.
func (rs *ReturnStack) Pop() uint32 {
	n := len(rs.data) - 1
	v := rs.data[n]
	rs.data = rs.data[:n]
	return v
}

// Data exposes the backing slice, bottom to top.
func (rs *ReturnStack) Data() []uint32 {
	return rs.data
}
