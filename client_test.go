// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// fakeConn captures request bodies and plays back canned replies in order.
type fakeConn struct {
	bodies  []string
	replies []fakeReply
	calls   int
	closed  bool
}

type fakeReply struct {
	body []byte
	err  error
}

func reply(body []byte) fakeReply {
	return fakeReply{body: body}
}

func replyErr(err error) fakeReply {
	return fakeReply{err: err}
}

func (f *fakeConn) Send(_ context.Context, body []byte) ([]byte, error) {
	f.bodies = append(f.bodies, string(body))
	if f.calls >= len(f.replies) {
		return nil, fmt.Errorf("unexpected request %d", f.calls)
	}
	r := f.replies[f.calls]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.body, nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) String() string {
	return "https(https://device:443/command-api)"
}

// request parses the n-th captured request body.
func (f *fakeConn) request(n int) gjson.Result {
	return gjson.Parse(f.bodies[n])
}

func newTestClient(t *testing.T, conn *fakeConn, opts ...func(*Client)) *Client {
	t.Helper()
	options := append([]func(*Client){WithConn(conn)}, opts...)
	client, err := NewClient("device", options...)
	require.NoError(t, err)
	return client
}

// jsonResults builds a success response carrying one raw JSON result per
// submitted command.
func jsonResults(t *testing.T, raws ...string) []byte {
	t.Helper()
	body, err := sjson.SetRaw(`{"jsonrpc":"2.0","id":"1"}`, "result", "[]")
	require.NoError(t, err)
	for i, raw := range raws {
		body, err = sjson.SetRaw(body, fmt.Sprintf("result.%d", i), raw)
		require.NoError(t, err)
	}
	return []byte(body)
}

// textResults builds a success response wrapping each output string in the
// text-encoding result shape.
func textResults(t *testing.T, outputs ...string) []byte {
	t.Helper()
	raws := make([]string, len(outputs))
	for i, out := range outputs {
		raw, err := sjson.Set("{}", "output", out)
		require.NoError(t, err)
		raws[i] = raw
	}
	return jsonResults(t, raws...)
}

// errorResponse builds a failure response; data entries are raw JSON
// per-command outputs.
func errorResponse(t *testing.T, code int, message string, data ...string) []byte {
	t.Helper()
	body, err := sjson.Set(`{"jsonrpc":"2.0","id":"1"}`, "error.code", code)
	require.NoError(t, err)
	body, err = sjson.Set(body, "error.message", message)
	require.NoError(t, err)
	for i, raw := range data {
		body, err = sjson.SetRaw(body, fmt.Sprintf("error.data.%d", i), raw)
		require.NoError(t, err)
	}
	return []byte(body)
}

// TestNewClientValidation tests client configuration validation
func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		opts       []func(*Client)
		wantErrMsg string
	}{
		{
			name:       "invalid transport",
			host:       "192.168.1.1",
			opts:       []func(*Client){Transport("telnet")},
			wantErrMsg: "invalid transport specified: telnet",
		},
		{
			name:       "empty host",
			host:       "",
			opts:       nil,
			wantErrMsg: "host cannot be empty",
		},
		{
			name:       "whitespace host",
			host:       "   ",
			opts:       nil,
			wantErrMsg: "host cannot be empty",
		},
		{
			name:       "port too high",
			host:       "192.168.1.1",
			opts:       []func(*Client){Port(65536)},
			wantErrMsg: "invalid port: 65536",
		},
		{
			name:       "negative port",
			host:       "192.168.1.1",
			opts:       []func(*Client){Port(-1)},
			wantErrMsg: "invalid port: -1",
		},
		{
			name:       "zero timeout",
			host:       "192.168.1.1",
			opts:       []func(*Client){Timeout(0)},
			wantErrMsg: "timeout must be positive",
		},
		{
			name:       "https_certs without cert files",
			host:       "192.168.1.1",
			opts:       []func(*Client){Transport(TransportHTTPSCerts)},
			wantErrMsg: "requires both KeyFile and CertFile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.host, append(tt.opts, WithConn(&fakeConn{}))...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
		})
	}
}

// TestNewClientLocalTransports tests that on-device transports need no host
func TestNewClientLocalTransports(t *testing.T) {
	for _, transport := range []string{TransportSocket, TransportHTTPLocal} {
		t.Run(transport, func(t *testing.T) {
			client, err := NewClient("", Transport(transport), WithConn(&fakeConn{}))
			require.NoError(t, err)
			assert.Equal(t, transport, client.transport)
		})
	}
}

// TestNewClientDefaults tests default configuration values
func TestNewClientDefaults(t *testing.T) {
	client := newTestClient(t, &fakeConn{})

	assert.Equal(t, TransportHTTPS, client.transport)
	assert.Equal(t, DefaultUsername, client.username)
	assert.Equal(t, DefaultTimeout, client.Timeout)
	assert.True(t, client.AutoRefresh)
	assert.True(t, client.ConfigDefaults)
	assert.False(t, client.VerifyCertificate)
	assert.Empty(t, client.SessionName())
}

// TestClientClose tests that Close releases the transport
func TestClientClose(t *testing.T) {
	conn := &fakeConn{}
	client := newTestClient(t, conn)
	require.NoError(t, client.Close())
	assert.True(t, conn.closed)
}

// TestEnableAuthentication tests enable secret handling
func TestEnableAuthentication(t *testing.T) {
	client := newTestClient(t, &fakeConn{})
	client.EnableAuthentication("  s3cret  ")
	assert.Equal(t, "s3cret", client.enableSecret)
}

// TestGetConfigValidation tests that only known config views are accepted
func TestGetConfigValidation(t *testing.T) {
	client := newTestClient(t, &fakeConn{})
	_, err := client.GetConfig(context.Background(), "boot-config", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config name specified: boot-config")
}

// TestRunningConfigCaching tests lazy loading and Refresh behavior
func TestRunningConfigCaching(t *testing.T) {
	conn := &fakeConn{replies: []fakeReply{
		reply(textResults(t, "", "hostname sw1\n")),
	}}
	client := newTestClient(t, conn)
	ctx := context.Background()

	config, err := client.RunningConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hostname sw1", config)

	req := conn.request(0)
	assert.Equal(t, "text", req.Get("params.format").String())
	assert.Equal(t, "show running-config all", req.Get("params.cmds.1").String())

	// Second read is served from cache
	config, err = client.RunningConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hostname sw1", config)
	assert.Equal(t, 1, conn.calls)

	// Refresh drops the cache
	client.Refresh()
	conn.replies = append(conn.replies, reply(textResults(t, "", "hostname sw2\n")))
	config, err = client.RunningConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hostname sw2", config)
	assert.Equal(t, 2, conn.calls)
}

// TestRunningConfigWithoutDefaults tests the ConfigDefaults option
func TestRunningConfigWithoutDefaults(t *testing.T) {
	conn := &fakeConn{replies: []fakeReply{
		reply(textResults(t, "", "hostname sw1\n")),
	}}
	client := newTestClient(t, conn, ConfigDefaults(false))

	_, err := client.RunningConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "show running-config", conn.request(0).Get("params.cmds.1").String())
}

// TestStartupConfig tests the startup configuration view
func TestStartupConfig(t *testing.T) {
	conn := &fakeConn{replies: []fakeReply{
		reply(textResults(t, "", "hostname saved\n")),
	}}
	client := newTestClient(t, conn)
	ctx := context.Background()

	config, err := client.StartupConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hostname saved", config)
	assert.Equal(t, "show startup-config", conn.request(0).Get("params.cmds.1").String())

	_, err = client.StartupConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, conn.calls)
}

// TestVersionProperties tests parsing of the show version output
func TestVersionProperties(t *testing.T) {
	showVersion := `{"version":"4.30.1F","modelName":"DCS-7280SR-48C6-R","serialNumber":"ABC123"}`
	conn := &fakeConn{replies: []fakeReply{
		reply(jsonResults(t, "{}", showVersion)),
	}}
	client := newTestClient(t, conn)
	ctx := context.Background()

	version, err := client.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4.30.1F", version)

	number, err := client.VersionNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4.30.1", number)

	model, err := client.Model(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7280", model)

	// All three properties come from a single device call
	assert.Equal(t, 1, conn.calls)
}

// TestVersionPropertiesFallback tests unparseable version and model strings
func TestVersionPropertiesFallback(t *testing.T) {
	showVersion := `{"version":"special-build","modelName":"vEOS"}`
	conn := &fakeConn{replies: []fakeReply{
		reply(jsonResults(t, "{}", showVersion)),
	}}
	client := newTestClient(t, conn)
	ctx := context.Background()

	number, err := client.VersionNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "special-build", number)

	model, err := client.Model(ctx)
	require.NoError(t, err)
	assert.Equal(t, "vEOS", model)
}

// TestClientString tests the endpoint description
func TestClientString(t *testing.T) {
	conn := &fakeConn{}
	client := newTestClient(t, conn)
	assert.Contains(t, client.String(), conn.String())
}

// TestRequestContext tests timeout precedence
func TestRequestContext(t *testing.T) {
	client := newTestClient(t, &fakeConn{}, Timeout(5*time.Second))

	// Per-request timeout wins over everything
	ctx, cancel := client.requestContext(context.Background(), &Req{Timeout: time.Minute})
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.Greater(t, time.Until(deadline), 30*time.Second)
	cancel()

	// Caller deadline is preserved when no per-request timeout is set
	parent, parentCancel := context.WithTimeout(context.Background(), time.Hour)
	defer parentCancel()
	ctx, cancel = client.requestContext(parent, &Req{})
	deadline, ok = ctx.Deadline()
	require.True(t, ok)
	assert.Greater(t, time.Until(deadline), 30*time.Minute)
	cancel()

	// Client timeout applies otherwise
	ctx, cancel = client.requestContext(context.Background(), &Req{})
	deadline, ok = ctx.Deadline()
	require.True(t, ok)
	assert.LessOrEqual(t, time.Until(deadline), 5*time.Second)
	cancel()
}
