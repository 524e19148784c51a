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

// controlKind tags the outcome of executing a single instruction.
type controlKind int

const (
	controlContinue controlKind = iota
	controlJump
	controlExit
	controlTrap
)

// control is the per-step result an instruction handler returns to the
// Machine's driving loop. It never leaves this package: Step/Run translate
// it into a public Capture.
//
// advance carries the Continue payload: how many bytes the handler itself
// occupies (1 for most opcodes, 1+n for a PUSHn), since the driving loop
// has no other way to know how far to move the program counter.
type control struct {
	kind    controlKind
	advance uint64
	dest    uint64
	exit    ExitReason
	trap    Trap
}

func cContinue(advance uint64) control { return control{kind: controlContinue, advance: advance} }
func cJump(dest uint64) control        { return control{kind: controlJump, dest: dest} }
func cExit(reason ExitReason) control  { return control{kind: controlExit, exit: reason} }
func cTrap(op Trap) control            { return control{kind: controlTrap, trap: op} }
