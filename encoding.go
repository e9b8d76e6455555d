// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import "fmt"

// Encoding constants for eAPI command output
const (
	// EncodingJSON requests structured JSON output (default)
	EncodingJSON = "json"

	// EncodingText requests plain CLI text output
	// Some commands (e.g. "show session-config diffs") only support text
	EncodingText = "text"
)

// ValidEncodings contains the list of valid encoding values
var ValidEncodings = []string{
	EncodingJSON,
	EncodingText,
}

// ValidateEncoding checks if the encoding is valid
//
// Returns an error if the encoding is not one of the supported values.
//
// Example:
//
//	if err := eapi.ValidateEncoding("json"); err != nil {
//	    log.Fatal(err)
//	}
func ValidateEncoding(enc string) error {
	for _, valid := range ValidEncodings {
		if enc == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid encoding: %s (valid values: json, text)", enc)
}
