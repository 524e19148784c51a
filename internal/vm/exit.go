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

import "fmt"

// ExitKind tags which variant of ExitReason is populated.
type ExitKind int

const (
	ExitKindSucceed ExitKind = iota
	ExitKindError
	ExitKindRevert
	ExitKindFatal
)

// ExitSucceedReason enumerates the ways a Machine can terminate successfully.
type ExitSucceedReason int

const (
	ExitStopped ExitSucceedReason = iota
	ExitReturned
	ExitSuicided
)

func (r ExitSucceedReason) String() string {
	switch r {
	case ExitStopped:
		return "stopped"
	case ExitReturned:
		return "returned"
	case ExitSuicided:
		return "suicided"
	default:
		return "unknown succeed reason"
	}
}

// ExitErrorReason enumerates execution errors the Machine core itself
// detects, independent of any Host.
type ExitErrorReason int

const (
	ErrStackUnderflow ExitErrorReason = iota
	ErrStackOverflow
	ErrInvalidJump
	ErrInvalidRange
	ErrDesignatedInvalid
	ErrCallTooDeep
	ErrCreateCollision
	ErrCreateContractLimit
	ErrOutOfOffset
	ErrOutOfGas
	ErrOutOfFund
	ErrPCUnderflow
	ErrCreateEmpty
	ErrOther
)

func (r ExitErrorReason) String() string {
	switch r {
	case ErrStackUnderflow:
		return "stack underflow"
	case ErrStackOverflow:
		return "stack overflow"
	case ErrInvalidJump:
		return "invalid jump"
	case ErrInvalidRange:
		return "invalid range"
	case ErrDesignatedInvalid:
		return "designated invalid"
	case ErrCallTooDeep:
		return "call too deep"
	case ErrCreateCollision:
		return "create collision"
	case ErrCreateContractLimit:
		return "create contract limit"
	case ErrOutOfOffset:
		return "out of offset"
	case ErrOutOfGas:
		return "out of gas"
	case ErrOutOfFund:
		return "out of fund"
	case ErrPCUnderflow:
		return "PC underflow"
	case ErrCreateEmpty:
		return "create empty"
	default:
		return "other"
	}
}

// ExitFatalReason enumerates unrecoverable driver-level failures: ones that
// signal a bug or an unsupported configuration rather than a contract-level
// failure.
type ExitFatalReason int

const (
	FatalNotSupported ExitFatalReason = iota
	FatalUnhandledInterrupt
	FatalCallErrorAsFatal
)

func (r ExitFatalReason) String() string {
	switch r {
	case FatalNotSupported:
		return "not supported"
	case FatalUnhandledInterrupt:
		return "unhandled interrupt"
	case FatalCallErrorAsFatal:
		return "call error treated as fatal"
	default:
		return "unknown fatal reason"
	}
}

// ExitReason is the tagged result of a finished Machine or Runtime run. Only
// one of Succeed/Error/Fatal is meaningful, selected by Kind; ExitKindRevert
// carries no payload of its own beyond the return-data buffer the caller
// already holds.
type ExitReason struct {
	Kind    ExitKind
	Succeed ExitSucceedReason
	Error   ExitErrorReason
	Fatal   ExitFatalReason
	// OtherMsg holds the detail string when Error == ErrOther.
	OtherMsg string
}

// Succeed builds an ExitReason for a successful stop.
func Succeed(reason ExitSucceedReason) ExitReason {
	return ExitReason{Kind: ExitKindSucceed, Succeed: reason}
}

// Error builds an ExitReason for a Machine-detected error.
func Error(reason ExitErrorReason) ExitReason {
	return ExitReason{Kind: ExitKindError, Error: reason}
}

// OtherError builds an ErrOther ExitReason carrying a free-form message.
func OtherError(msg string) ExitReason {
	return ExitReason{Kind: ExitKindError, Error: ErrOther, OtherMsg: msg}
}

// Revert builds an ExitReason for a REVERT.
func Revert() ExitReason {
	return ExitReason{Kind: ExitKindRevert}
}

// Fatal builds an ExitReason for a driver-level failure.
func Fatal(reason ExitFatalReason) ExitReason {
	return ExitReason{Kind: ExitKindFatal, Fatal: reason}
}

// IsSucceed reports whether the Machine finished without error or revert.
func (e ExitReason) IsSucceed() bool { return e.Kind == ExitKindSucceed }

// IsError reports a Machine-detected execution error.
func (e ExitReason) IsError() bool { return e.Kind == ExitKindError }

// IsRevert reports an explicit REVERT.
func (e ExitReason) IsRevert() bool { return e.Kind == ExitKindRevert }

// IsFatal reports a driver-level failure that should abort the whole call
// stack rather than just the current frame.
func (e ExitReason) IsFatal() bool { return e.Kind == ExitKindFatal }

func (e ExitReason) String() string {
	switch e.Kind {
	case ExitKindSucceed:
		return fmt.Sprintf("succeed: %s", e.Succeed)
	case ExitKindError:
		if e.Error == ErrOther {
			return fmt.Sprintf("error: %s", e.OtherMsg)
		}
		return fmt.Sprintf("error: %s", e.Error)
	case ExitKindRevert:
		return "revert"
	case ExitKindFatal:
		return fmt.Sprintf("fatal: %s", e.Fatal)
	default:
		return "unknown exit reason"
	}
}

// Trap identifies the opcode a Machine suspended on because it needs a Host
// to resolve it (CALL, CREATE, SLOAD, LOG, SELFDESTRUCT, and friends). The
// Machine carries no further payload: the opcode's arguments are already on
// the Stack and in Memory, exactly where the resuming Runtime expects them.
type Trap = OpCode

// Capture is the terminal result of driving a Machine to completion: either
// it Exited with a reason, or it hit a Trap that the caller must resolve
// before calling Step/Run again.
type Capture struct {
	Trapped bool
	Exit    ExitReason
	Trap    Trap
}

// CaptureExit wraps a finished ExitReason.
func CaptureExit(reason ExitReason) Capture {
	return Capture{Exit: reason}
}

// CaptureTrap wraps a suspending Trap.
func CaptureTrap(trap Trap) Capture {
	return Capture{Trapped: true, Trap: trap}
}
