// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// RunCommands executes a list of commands on the device
//
// Commands run in submission order within a single request; the device stops
// at the first failing command, and the returned *CommandError reports which
// commands ran via Succeeded. Unless disabled with SendEnable(false), an
// enable command is prepended (with the configured enable secret as input)
// and its result removed before results are returned, so results align with
// the caller's command list.
//
// A command may carry ancillary input separated by the MULTILINE marker:
//
//	res, err := client.RunCommands(ctx, []string{
//	    "show version",
//	    "copy running-config startup-config MULTILINE:y",
//	})
func (c *Client) RunCommands(ctx context.Context, commands []string, mods ...func(*Req)) ([]CommandResult, error) {
	req := newReq()
	for _, mod := range mods {
		mod(req)
	}

	if len(commands) == 0 {
		return nil, fmt.Errorf("run commands: command list cannot be empty")
	}
	for i, cmd := range commands {
		if strings.TrimSpace(cmd) == "" {
			return nil, fmt.Errorf("run commands: command at index %d is blank", i)
		}
	}
	if err := ValidateEncoding(req.Encoding); err != nil {
		return nil, fmt.Errorf("run commands: %w", err)
	}

	cmds := make([]Command, 0, len(commands)+1)
	if req.SendEnable {
		cmds = append(cmds, Command{Cmd: "enable", Input: c.enableSecret})
	}
	for _, cmd := range commands {
		cmds = append(cmds, splitMultiline(cmd))
	}

	results, err := c.execute(ctx, cmds, req)
	if err != nil {
		return nil, err
	}

	if req.SendEnable {
		results = results[1:]
	}

	wrapped := make([]CommandResult, len(results))
	for i, result := range results {
		wrapped[i] = CommandResult{
			Command:  commands[i],
			Result:   result,
			Encoding: req.Encoding,
		}
	}
	return wrapped, nil
}

// execute builds the request envelope, submits it over the transport, and
// decodes the response.
func (c *Client) execute(ctx context.Context, cmds []Command, req *Req) ([]gjson.Result, error) {
	reqid := requestID()
	body, err := buildRequest(cmds, req, reqid)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("eAPI request",
		"endpoint", c.conn.String(),
		"id", reqid,
		"commands", len(cmds),
		"body", redactRequest(body))

	ctx, cancel := c.requestContext(ctx, req)
	defer cancel()

	raw, err := c.conn.Send(ctx, []byte(body))
	if err != nil {
		c.logger.Error("eAPI request failed",
			"endpoint", c.conn.String(),
			"id", reqid,
			"error", err.Error())
		var connErr *ConnectionError
		if errors.As(err, &connErr) {
			return nil, err
		}
		return nil, &ConnectionError{
			Transport: c.transport,
			Message:   "request failed",
			Err:       err,
		}
	}

	results, err := parseResponse(raw, cmds, c.conn.String())
	if err != nil {
		c.logger.Error("eAPI command failed",
			"endpoint", c.conn.String(),
			"id", reqid,
			"error", err.Error())
		return nil, err
	}

	c.logger.Debug("eAPI response",
		"id", reqid,
		"results", len(results))
	return results, nil
}

// requestContext derives the context bounding one request. An explicit
// per-request timeout wins; otherwise a caller-supplied deadline is honored;
// otherwise the client timeout applies.
func (c *Client) requestContext(ctx context.Context, req *Req) (context.Context, context.CancelFunc) {
	if req.Timeout > 0 {
		return context.WithTimeout(ctx, req.Timeout)
	}
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// Enable executes commands in enable (executive) mode
//
// By default each command is sent individually and a command rejected with
// the text-encoding-only code is retried transparently with text encoding;
// the affected result carries Encoding "text". With Strict(true) all
// commands go out as one batch and no fallback is attempted.
//
// Configuration mode commands are rejected; use Config instead.
func (c *Client) Enable(ctx context.Context, commands []string, mods ...func(*Req)) ([]CommandResult, error) {
	for _, cmd := range commands {
		if cmd == "configure" || cmd == "configure terminal" {
			return nil, fmt.Errorf("enable: config mode commands are not supported, use Config")
		}
	}

	probe := newReq()
	for _, mod := range mods {
		mod(probe)
	}
	if probe.Strict {
		return c.RunCommands(ctx, commands, mods...)
	}

	results := make([]CommandResult, 0, len(commands))
	for _, cmd := range commands {
		res, err := c.RunCommands(ctx, []string{cmd}, mods...)
		if err != nil {
			var cmdErr *CommandError
			if !errors.As(err, &cmdErr) || cmdErr.Code != CodeTextEncodingOnly {
				return nil, err
			}
			c.logger.Debug("falling back to text encoding",
				"command", cmd)
			textMods := make([]func(*Req), 0, len(mods)+1)
			textMods = append(textMods, mods...)
			textMods = append(textMods, Encoding(EncodingText))
			res, err = c.RunCommands(ctx, []string{cmd}, textMods...)
			if err != nil {
				return nil, err
			}
		}
		results = append(results, res...)
	}
	return results, nil
}

// Config applies configuration commands to the device
//
// Entries are strings, except that at most one entry may be a CliVariants
// value declaring alternative command fragments; the resulting candidate
// sequences are tried in declared order until the device accepts one. A
// candidate rejected by the device moves on to the next; when every
// candidate is rejected the last rejection is returned. Transport failures
// abort immediately without trying further candidates.
//
// Commands apply to the open configuration session when one exists
// (ConfigureSession), otherwise directly via configure terminal. The result
// of the prepended configure command is removed, so results align with the
// expanded candidate's commands.
func (c *Client) Config(ctx context.Context, commands []any, mods ...func(*Req)) ([]CommandResult, error) {
	candidates, err := expandVariants(commands)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var lastErr error
	for _, candidate := range candidates {
		results, err := c.configure(ctx, candidate, mods...)
		if err == nil {
			return results, nil
		}
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			return nil, err
		}
		lastErr = err
		if len(candidates) > 1 {
			c.logger.Debug("config candidate rejected",
				"error", err.Error())
		}
	}
	return nil, lastErr
}

// configure dispatches a concrete command sequence to the open session or to
// configure terminal.
func (c *Client) configure(ctx context.Context, commands []string, mods ...func(*Req)) ([]CommandResult, error) {
	c.mu.Lock()
	session := c.sessionName
	c.mu.Unlock()

	if session != "" {
		return c.configureSession(ctx, commands, mods...)
	}
	return c.configureTerminal(ctx, commands, mods...)
}

// configureTerminal applies commands directly to the running configuration.
func (c *Client) configureTerminal(ctx context.Context, commands []string, mods ...func(*Req)) ([]CommandResult, error) {
	all := make([]string, 0, len(commands)+1)
	all = append(all, "configure terminal")
	all = append(all, commands...)

	results, err := c.RunCommands(ctx, all, mods...)

	// A partially applied batch still changed device state, so cached
	// section trees are dropped even on failure.
	c.invalidateSections()
	if err != nil {
		return nil, err
	}

	if c.AutoRefresh {
		c.Refresh()
	}
	return results[1:], nil
}

// configureSession applies commands within the open config session. Session
// changes are staged, not live, so the cached running configuration is left
// alone until Commit.
func (c *Client) configureSession(ctx context.Context, commands []string, mods ...func(*Req)) ([]CommandResult, error) {
	c.mu.Lock()
	session := c.sessionName
	c.mu.Unlock()
	if session == "" {
		return nil, ErrNoSession
	}

	all := make([]string, 0, len(commands)+1)
	all = append(all, "configure session "+session)
	all = append(all, commands...)

	results, err := c.RunCommands(ctx, all, mods...)
	c.invalidateSections()
	if err != nil {
		return nil, err
	}
	return results[1:], nil
}
