// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pgerr defines typed errors with categories for the PostgreSQL binding.
// Every failure surfaced by the binding carries a machine-readable Kind and a
// human-friendly diagnostic message. Callers are expected to branch on the Kind,
// never on the message text.
//
// The package supports wrapping underlying driver errors while preserving the
// kind information, so transport details stay inspectable without leaking into
// the error contract.
package pgerr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// MissingParameter indicates a required connect parameter was not supplied.
	MissingParameter Kind = "missing_parameter"
	// InvalidParameter indicates a connect or bind parameter was rejected.
	InvalidParameter Kind = "invalid_parameter"
	// InvalidDsn indicates the connection string could not be parsed.
	InvalidDsn Kind = "invalid_dsn"
	// ConnectionFailed indicates the handshake with the server failed.
	ConnectionFailed Kind = "connection_failed"
	// RuntimeFailed indicates the background execution context is unavailable.
	RuntimeFailed Kind = "runtime_failed"
	// ExecutionError indicates the server rejected a prepare or execute.
	ExecutionError Kind = "execution_error"
	// UnsupportedType indicates a host argument or result column type outside
	// the supported set.
	UnsupportedType Kind = "unsupported_type"
	// DataError indicates a result value could not be converted to a host value.
	DataError Kind = "data_error"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf creates an error with a formatted message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or "" when err carries no category.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err belongs to the given category.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }
