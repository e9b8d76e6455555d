// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

// TestCommandErrorFormat tests error string construction per error code
func TestCommandErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "request-level code omits detail",
			err: &CommandError{
				Code:    CodeInvalidCommand,
				Message: "CLI command 1 of 1 'shw' failed: invalid command",
				Detail:  "should not appear",
			},
			want: "eapi: error [1002]: CLI command 1 of 1 'shw' failed: invalid command",
		},
		{
			name: "general error omits detail",
			err: &CommandError{
				Code:    CodeGeneralError,
				Message: "could not run command",
			},
			want: "eapi: error [1000]: could not run command",
		},
		{
			name: "command-specific code carries detail",
			err: &CommandError{
				Code:    CodeTextEncodingOnly,
				Message: "CLI command 1 of 1 'show banner' failed: unconverted command",
				Detail:  "errors: [\"unconverted\"]",
			},
			want: "eapi: error [1003]: CLI command 1 of 1 'show banner' failed: unconverted command [errors: [\"unconverted\"]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

// TestCommandErrorSucceeded tests counting of completed leading commands
func TestCommandErrorSucceeded(t *testing.T) {
	parse := func(raws ...string) []gjson.Result {
		results := make([]gjson.Result, len(raws))
		for i, raw := range raws {
			results[i] = gjson.Parse(raw)
		}
		return results
	}

	tests := []struct {
		name   string
		output []gjson.Result
		want   int
	}{
		{
			name:   "no output",
			output: nil,
			want:   0,
		},
		{
			name:   "failure on second command",
			output: parse("{}", `{"errors":["Invalid input"]}`, "{}"),
			want:   1,
		},
		{
			name:   "traceback counts as failure",
			output: parse("{}", `{"traceback":"..."}`),
			want:   1,
		},
		{
			name:   "all entries clean",
			output: parse("{}", "{}"),
			want:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &CommandError{Output: tt.output}
			assert.Equal(t, tt.want, err.Succeeded())
		})
	}
}

// TestConnectionErrorFormat tests transport error string construction
func TestConnectionErrorFormat(t *testing.T) {
	err := &ConnectionError{Transport: "https", Message: "unable to connect to eAPI"}
	assert.Equal(t, "eapi: connection error (https): unable to connect to eAPI", err.Error())

	underlying := fmt.Errorf("dial tcp: connection refused")
	err = &ConnectionError{Transport: "http", Message: "unable to connect to eAPI", Err: underlying}
	assert.Contains(t, err.Error(), "connection refused")
}

// TestConnectionErrorUnwrap tests errors.Is through the wrapped cause
func TestConnectionErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := &ConnectionError{Transport: "socket", Message: "send failed", Err: cause}
	assert.True(t, errors.Is(err, cause))

	assert.Nil(t, (&ConnectionError{}).Unwrap())
}

// TestErrorsAsTarget tests that both error types survive wrapping
func TestErrorsAsTarget(t *testing.T) {
	wrapped := fmt.Errorf("config: %w", &CommandError{Code: CodeGeneralError, Message: "failed"})

	var cmdErr *CommandError
	assert.True(t, errors.As(wrapped, &cmdErr))
	assert.Equal(t, CodeGeneralError, cmdErr.Code)
}
