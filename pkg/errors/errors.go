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

// Package errors defines common error types used throughout the N42 codebase.
// This package provides a centralized location for error definitions to ensure
// consistency and avoid duplication across modules.
package errors

import (
	"errors"
	"fmt"
)

// =====================
// Configuration Errors
// =====================

var (
	// ErrStackLimitTooLow is returned when a Config's stack limit cannot hold
	// even a single word.
	ErrStackLimitTooLow = errors.New("stack limit too low")

	// ErrMemoryLimitTooLow is returned when a Config's memory limit is smaller
	// than a single word.
	ErrMemoryLimitTooLow = errors.New("memory limit too low")

	// ErrCallStackLimitTooLow is returned when a Config's call stack limit
	// does not allow any nested calls.
	ErrCallStackLimitTooLow = errors.New("call stack limit too low")
)

// =====================
// Host Contract Errors
// =====================

var (
	// ErrHostUnavailable is returned when a Host query is issued outside of
	// a running machine's lifetime.
	ErrHostUnavailable = errors.New("host unavailable")

	// ErrUnresolvedTrap is returned when a Trap is observed without ever
	// being resolved by the driving loop.
	ErrUnresolvedTrap = errors.New("trap left unresolved")
)

// =====================
// Helper Functions
// =====================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, a ...interface{}) error {
	return fmt.Errorf(format, a...)
}

