// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// unsupportedKeywordRE matches the device's complaint about a request
// parameter it does not know; the message is augmented with a version hint.
var unsupportedKeywordRE = regexp.MustCompile(`unexpected keyword argument '(.*)'`)

// CommandResult is the outcome of one submitted command
type CommandResult struct {
	// Command is the command as submitted by the caller
	Command string

	// Result is the structured output for the command. For text encoding
	// the CLI output is carried in the "output" member.
	Result gjson.Result

	// Encoding is the encoding the result was actually returned in; it
	// differs from the requested encoding after a text fallback
	Encoding string
}

// GetValue retrieves a value from the command output using a gjson path
//
// Example:
//
//	res, err := client.Enable(ctx, []string{"show version"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	version := res[0].GetValue("version").String()
//	serial := res[0].GetValue("serialNumber").String()
func (r CommandResult) GetValue(path string) gjson.Result {
	return r.Result.Get(path)
}

// Output returns the plain CLI output of a text-encoded result
func (r CommandResult) Output() string {
	return r.Result.Get("output").String()
}

// JSON returns the raw JSON of the command output
func (r CommandResult) JSON() string {
	return r.Result.Raw
}

// parseResponse decodes a raw eAPI response body into per-command results
//
// eAPI responds with either a success object whose "result" array carries one
// entry per submitted command in submission order, or a failure object with a
// structured "error" member. A failure decodes into *CommandError; a body
// that is not valid JSON decodes into *ConnectionError.
func parseResponse(raw []byte, commands []Command, endpoint string) ([]gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &ConnectionError{
			Transport: endpoint,
			Message:   "unable to decode eAPI response",
		}
	}
	root := gjson.ParseBytes(raw)

	if root.Get("error").Exists() {
		return nil, parseErrorResponse(root, commands)
	}

	results := root.Get("result").Array()
	if len(results) != len(commands) {
		return nil, &ConnectionError{
			Transport: endpoint,
			Message: fmt.Sprintf("eAPI returned %d results for %d commands",
				len(results), len(commands)),
		}
	}
	return results, nil
}

// parseErrorResponse builds a CommandError from an eAPI failure response
//
// The error's "data" array carries one output entry per attempted command;
// the error text of the failing command (the last one that ran) becomes the
// Detail. Messages about unsupported request keywords are augmented with a
// hint that the parameter is not available on this EOS version.
func parseErrorResponse(root gjson.Result, commands []Command) *CommandError {
	code := int(root.Get("error.code").Int())
	message := root.Get("error.message").String()

	if m := unsupportedKeywordRE.FindStringSubmatch(message); m != nil {
		message = fmt.Sprintf("%s. %s parameter is not supported in this version of EOS.",
			message, m[1])
	}

	var detail string
	var output []gjson.Result
	if data := root.Get("error.data"); data.Exists() {
		output = data.Array()
		var parts []string
		for _, entry := range output {
			entry.ForEach(func(key, value gjson.Result) bool {
				parts = append(parts, fmt.Sprintf("%s: %s", key.String(), value.Raw))
				return true
			})
		}
		detail = strings.Join(parts, ", ")
	}

	names := make([]string, len(commands))
	for i, cmd := range commands {
		names[i] = cmd.Cmd
	}

	return &CommandError{
		Code:     code,
		Message:  message,
		Detail:   detail,
		Commands: names,
		Output:   output,
	}
}
