// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// eAPI JSON-RPC error codes
//
// These codes are returned by the device in the "error" member of a failed
// response. Codes outside this list are command-specific and carry a
// per-command error detail.
const (
	// CodeGeneralError indicates a general eAPI failure
	CodeGeneralError = 1000

	// CodeInternalError indicates an internal eAPI failure
	CodeInternalError = 1001

	// CodeInvalidCommand indicates the request itself was malformed
	CodeInvalidCommand = 1002

	// CodeTextEncodingOnly indicates a command whose output cannot be
	// rendered in the requested encoding; re-running with text encoding
	// succeeds. Enable falls back automatically unless strict mode is set.
	CodeTextEncodingOnly = 1003

	// CodeIncompleteRequest indicates a truncated or incomplete request
	CodeIncompleteRequest = 1004
)

// ErrSectionNotFound is returned by Section and SectionFromConfig when no
// section header matches the pattern. Callers that treat a feature's absence
// as a normal outcome should test for it with errors.Is and return an empty
// result instead of propagating.
var ErrSectionNotFound = errors.New("eapi: config section not found")

// ErrNoSession is returned by session operations (Diff, Commit, Abort) when
// no configuration session is open.
var ErrNoSession = errors.New("eapi: not currently in a config session")

// CommandError represents a command failure reported by the device
//
// It carries the eAPI error code and message, the per-command error text of
// the command that failed, the full sequence of commands that was in flight,
// and the raw per-command output array from the failure response so a caller
// can see how many leading commands already succeeded.
type CommandError struct {
	// Code is the eAPI error code from the failure response
	Code int

	// Message is the error message from the failure response
	Message string

	// Detail is the error text of the command that generated the failure
	// (empty for request-level errors)
	Detail string

	// Commands is the ordered command sequence that was in flight,
	// including any automatically prepended commands
	Commands []string

	// Output contains the raw per-command output entries from the failure
	// response, in submission order
	Output []gjson.Result
}

// Error implements the error interface
//
// Request-level error codes omit the per-command detail.
func (e *CommandError) Error() string {
	switch e.Code {
	case CodeGeneralError, CodeInternalError, CodeInvalidCommand, CodeIncompleteRequest:
		return fmt.Sprintf("eapi: error [%d]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("eapi: error [%d]: %s [%s]", e.Code, e.Message, e.Detail)
}

// Succeeded returns the number of leading commands in the submitted sequence
// that completed before the failing one
//
// The count is derived from the failure response's per-command output: the
// first entry carrying errors (or a traceback) is the failing command.
//
// Example:
//
//	_, err := client.Config(ctx, []any{"vlan 100", "bad command"})
//	var cmdErr *eapi.CommandError
//	if errors.As(err, &cmdErr) {
//	    fmt.Printf("%d commands applied before failure\n", cmdErr.Succeeded())
//	}
func (e *CommandError) Succeeded() int {
	for i, out := range e.Output {
		if out.Get("errors").Exists() || out.Get("traceback").Exists() {
			return i
		}
	}
	return len(e.Output)
}

// ConnectionError represents a transport-level failure (connectivity loss,
// timeout, authentication rejection, or an undecodable response)
//
// Connection errors are never retried by the variant resolver or the
// encoding fallback; they always propagate immediately.
type ConnectionError struct {
	// Transport names the transport that failed (http, https, socket, ...)
	Transport string

	// Message is a human-readable description of the failure
	Message string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eapi: connection error (%s): %s: %s", e.Transport, e.Message, e.Err)
	}
	return fmt.Sprintf("eapi: connection error (%s): %s", e.Transport, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
