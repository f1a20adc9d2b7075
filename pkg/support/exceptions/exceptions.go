// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package exceptions provides helper functions to leverage Go's `panic`, `recover` and `defer`
// as an "exceptions" system, used throughout this module to report implementation-fatal
// invariant violations without threading an error return through every pass method.
package exceptions

import "fmt"

// Try calls fn and returns any exception (`panic`) that may have occurred.
// If no panic happened, it returns nil.
func Try(fn func()) (exception any) {
	defer func() {
		exception = recover()
	}()
	fn()
	return
}

// TryCatch calls fn and recovers from any panic, converting it to a value of type E.
// If the panicked value is already of type E it is returned as-is; otherwise it is
// formatted into E via fmt (E is expected to be `error` in virtually all uses here).
func TryCatch[E any](fn func()) (caught E) {
	defer func() {
		exception := recover()
		if exception == nil {
			return
		}
		if e, ok := exception.(E); ok {
			caught = e
			return
		}
		if err, ok := any(exception).(error); ok {
			if asE, ok := any(err).(E); ok {
				caught = asE
				return
			}
		}
		// Convert to an error value wrapping the panic, and hope E is (or accepts) error.
		wrapped := fmt.Errorf("%v", exception)
		if asE, ok := any(wrapped).(E); ok {
			caught = asE
			return
		}
		panic(exception)
	}()
	fn()
	return
}

// Panicf panics with a formatted error message. Used for implementation-fatal
// invariant errors: the caller is expected to recover with TryCatch[error] at
// the pipeline boundary.
func Panicf(format string, args ...any) {
	panic(fmt.Errorf(format, args...))
}
