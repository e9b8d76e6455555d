// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MultilineMarker separates a command line from its multi-line input body
//
// A command string containing the marker is split into the primary command
// and an input body submitted as ancillary input alongside it. This is a
// client-side convention, not a device protocol feature; it lets callers read
// a configuration from a file and submit it line by line without special
// handling for banner-style commands:
//
//	banner login MULTILINE:Authorized access only.\nViolators will be logged.
const MultilineMarker = "MULTILINE:"

// Command is a single eAPI command plus optional ancillary input
//
// Ancillary input answers a secondary prompt, such as the enable password or
// a banner body. A Command with empty Input is sent as a plain string on the
// wire; with Input set it is sent as a {cmd, input} object.
type Command struct {
	// Cmd is the command line
	Cmd string

	// Input is the ancillary input submitted with the command, if any
	Input string
}

// splitMultiline converts a command string into a Command, honoring the
// MULTILINE convention. The input body is trimmed and newline-terminated.
func splitMultiline(cmd string) Command {
	primary, body, found := strings.Cut(cmd, MultilineMarker)
	if !found {
		return Command{Cmd: cmd}
	}
	return Command{
		Cmd:   strings.TrimSpace(primary),
		Input: strings.TrimSpace(body) + "\n",
	}
}

// Req carries request-specific options applied via functional modifiers
//
// Operation parameters (the commands themselves) are passed directly to
// methods.
//
// Example:
//
//	res, err := client.RunCommands(ctx, commands,
//	    eapi.Encoding("text"),
//	    eapi.RequestTimeout(30*time.Second))
type Req struct {
	// Encoding selects the command output encoding (json or text)
	Encoding string

	// Timeout is the request-specific timeout
	// Overrides the client default timeout if set
	Timeout time.Duration

	// SendEnable controls whether the enable command is prepended
	// automatically (default true)
	SendEnable bool

	// Strict disables the text-encoding fallback in Enable
	Strict bool

	// APIVersion overrides the eAPI request version (default 1)
	APIVersion int

	// AutoComplete asks the device to expand abbreviated commands
	// (included in the request only when set)
	AutoComplete bool

	// ExpandAliases asks the device to expand command aliases
	// (included in the request only when set)
	ExpandAliases bool

	// Streaming marks the request for streaming delivery
	Streaming bool
}

// newReq returns a Req with the executor defaults applied.
func newReq() *Req {
	return &Req{
		Encoding:   EncodingJSON,
		SendEnable: true,
	}
}

// requestID generates an opaque JSON-RPC request identifier.
func requestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; a
		// timestamp keeps request IDs unique enough for correlation.
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b[:])
}

// buildRequest serializes commands into an eAPI runCmds request body
//
// eAPI request object:
//
//	{
//	    "jsonrpc": "2.0",
//	    "method": "runCmds",
//	    "params": {
//	        "version": 1,
//	        "cmds": [<commands>],
//	        "format": "json" | "text"
//	    },
//	    "id": <reqid>,
//	    "streaming": false
//	}
func buildRequest(commands []Command, req *Req, reqid string) (string, error) {
	wire := make([]any, len(commands))
	for i, cmd := range commands {
		if cmd.Input == "" {
			wire[i] = cmd.Cmd
		} else {
			wire[i] = map[string]string{"cmd": cmd.Cmd, "input": cmd.Input}
		}
	}

	version := req.APIVersion
	if version == 0 {
		version = 1
	}

	body := ""
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		body, err = sjson.Set(body, path, value)
	}

	set("jsonrpc", "2.0")
	set("method", "runCmds")
	set("params.version", version)
	set("params.cmds", wire)
	set("params.format", req.Encoding)
	if req.AutoComplete {
		set("params.autoComplete", true)
	}
	if req.ExpandAliases {
		set("params.expandAliases", true)
	}
	set("id", reqid)
	set("streaming", req.Streaming)

	if err != nil {
		return "", fmt.Errorf("building request failed: %w", err)
	}
	return body, nil
}

// redactRequest removes user-sensitive ancillary input from a request body
// before it is logged. Only the enable command carries a secret as input.
func redactRequest(body string) string {
	out := body
	for i, cmd := range gjson.Get(body, "params.cmds").Array() {
		if cmd.Get("cmd").String() == "enable" && cmd.Get("input").Exists() {
			redacted, err := sjson.Set(out, fmt.Sprintf("params.cmds.%d.input", i), "<removed>")
			if err != nil {
				continue
			}
			out = redacted
		}
	}
	return out
}
