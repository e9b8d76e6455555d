// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import "context"

// ConfigureSession opens a named configuration session and returns its name
//
// While a session is open, Config stages changes in the session instead of
// applying them to the running configuration; the staged changes become
// visible to the device only on Commit. Calling ConfigureSession while a
// session is already open returns the existing name.
//
// Example:
//
//	client.ConfigureSession()
//	client.Config(ctx, []any{"hostname lab-sw1"})
//	diff, _ := client.Diff(ctx)
//	fmt.Println(diff)
//	client.Commit(ctx)
func (c *Client) ConfigureSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionName == "" {
		c.sessionName = "go-eapi-" + requestID()
		c.logger.Info("config session opened", "session", c.sessionName)
	}
	return c.sessionName
}

// SessionName returns the name of the open configuration session, or "" when
// none is open
func (c *Client) SessionName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionName
}

// Diff returns the pending changes of the open configuration session as a
// unified diff against the running configuration
//
// Returns ErrNoSession when no session is open.
func (c *Client) Diff(ctx context.Context) (string, error) {
	// The diff command only supports text output.
	results, err := c.configureSession(ctx,
		[]string{"show session-config diffs"}, Encoding(EncodingText))
	if err != nil {
		return "", err
	}
	return results[0].Output(), nil
}

// Commit applies the staged changes of the open configuration session to the
// running configuration and closes the session
//
// The session name is cleared only when the device accepts the commit; on
// failure the session stays open so the caller can inspect, retry, or Abort.
// Returns ErrNoSession when no session is open.
func (c *Client) Commit(ctx context.Context) error {
	_, err := c.configureSession(ctx, []string{"commit"})
	if err != nil {
		return err
	}
	if c.AutoRefresh {
		c.Refresh()
	}
	c.closeSession("committed")
	return nil
}

// Abort discards the staged changes of the open configuration session and
// closes the session
//
// Returns ErrNoSession when no session is open.
func (c *Client) Abort(ctx context.Context) error {
	_, err := c.configureSession(ctx, []string{"abort"})
	if err != nil {
		return err
	}
	c.closeSession("aborted")
	return nil
}

func (c *Client) closeSession(reason string) {
	c.mu.Lock()
	name := c.sessionName
	c.sessionName = ""
	c.mu.Unlock()
	c.logger.Info("config session closed", "session", name, "reason", reason)
}
