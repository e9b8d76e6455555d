// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

// Package eapi provides a simple, fluent API for managing Arista EOS devices
// through eAPI, the JSON-RPC command API exposed over HTTP, HTTPS, or a local
// unix domain socket.
//
// The library covers command execution in enable mode, configuration changes
// (direct or through named config sessions with diff/commit/abort), and a
// cached, queryable view of the device's indentation-structured configuration
// text.
//
// # Quick Start
//
// Create a client and run commands:
//
//	client, err := eapi.NewClient(
//	    "192.168.1.1",
//	    eapi.Username("admin"),
//	    eapi.Password("secret"),
//	    eapi.Transport("https"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ctx := context.Background()
//	res, err := client.Enable(ctx, []string{"show version"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Parse results using gjson paths
//	version := res[0].GetValue("version").String()
//	fmt.Println("EOS version:", version)
//
// # Configuration
//
// Config sends commands in configuration mode. Alternative command spellings
// for different EOS versions can be declared with CliVariants; each variant
// is tried in order until one succeeds:
//
//	_, err = client.Config(ctx, []any{
//	    "interface Ethernet1",
//	    eapi.Variants(
//	        []string{"switchport trunk allowed vlan add 100"},
//	        []string{"switchport trunk allowed vlan 100"},
//	    ),
//	})
//
// Configuration sessions provide transactional semantics:
//
//	client.ConfigureSession()
//	_, err = client.Config(ctx, []any{"hostname lab-sw01"})
//	diff, err := client.Diff(ctx)
//	err = client.Commit(ctx) // or client.Abort(ctx)
//
// # Reading Configuration
//
// Section returns the first block of the running configuration whose header
// matches a regular expression, including all nested content:
//
//	block, err := client.Section(ctx, `^interface Ethernet1$`)
//	if errors.Is(err, eapi.ErrSectionNotFound) {
//	    // feature is not configured
//	}
//
// Parsed section trees are cached per configuration text and invalidated
// automatically after any accepted configuration change.
//
// # Error Handling
//
// Command failures reported by the device are returned as *CommandError with
// the eAPI error code, the device's error text, and the full command sequence
// that was in flight. Transport failures are returned as *ConnectionError and
// are never retried. In non-strict mode, Enable transparently falls back to
// text encoding when the device reports that a command's output cannot be
// rendered as JSON (error code 1003).
package eapi
