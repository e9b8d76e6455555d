// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
)

// Transport names accepted by the Transport client option
const (
	// TransportHTTP connects over plain HTTP
	TransportHTTP = "http"

	// TransportHTTPLocal connects over HTTP to localhost (on-device use)
	TransportHTTPLocal = "http_local"

	// TransportHTTPS connects over HTTPS (default)
	TransportHTTPS = "https"

	// TransportHTTPSCerts connects over HTTPS with client certificates
	TransportHTTPSCerts = "https_certs"

	// TransportSocket connects through the local eAPI unix domain socket
	TransportSocket = "socket"
)

// ValidTransports contains the list of valid transport names
var ValidTransports = []string{
	TransportHTTP,
	TransportHTTPLocal,
	TransportHTTPS,
	TransportHTTPSCerts,
	TransportSocket,
}

// Default endpoint values per transport
const (
	DefaultHTTPPort      = 80
	DefaultHTTPSPort     = 443
	DefaultHTTPLocalPort = 8080
	DefaultHTTPPath      = "/command-api"
	DefaultUnixSocket    = "/var/run/command-api.sock"
)

// Conn delivers a serialized eAPI request body to the device and returns the
// raw response body
//
// The core does not know or care whether the underlying transport is HTTP,
// HTTPS, or a local socket. Send must return a *ConnectionError for any
// connectivity, timeout, or authentication failure. Implementations provided
// by this package are created through NewClient; a custom Conn can be
// injected with the WithConn option.
type Conn interface {
	// Send posts the request body and returns the response body
	Send(ctx context.Context, body []byte) ([]byte, error)

	// Close releases any held connections
	Close() error

	// String describes the endpoint for logs and error messages
	String() string
}

// httpConn implements Conn over net/http for all supported transports.
// The unix-socket transport reuses it with a custom dialer.
type httpConn struct {
	transport string
	url       string
	auth      string // precomputed Authorization header value, "" if none
	client    *http.Client
}

func (t *httpConn) Send(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, &ConnectionError{Transport: t.transport, Message: "building request failed", Err: err}
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	if t.auth != "" {
		req.Header.Set("Authorization", t.auth)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Transport: t.transport, Message: "unable to connect to eAPI", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Transport: t.transport, Message: "reading response failed", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &ConnectionError{
			Transport: t.transport,
			Message:   fmt.Sprintf("authentication failed: %s", resp.Status),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &ConnectionError{
			Transport: t.transport,
			Message:   fmt.Sprintf("unexpected HTTP status: %s", resp.Status),
		}
	}

	return data, nil
}

func (t *httpConn) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func (t *httpConn) String() string {
	return fmt.Sprintf("%s(%s)", t.transport, t.url)
}

// basicAuth returns the Authorization header value for the credentials, or
// "" when no username is configured.
func basicAuth(username, password string) string {
	if username == "" {
		return ""
	}
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + token
}

// newConn builds the Conn for the client's transport configuration.
//
// PRECONDITION: configuration must be validated via validateConfig.
func newConn(c *Client) (Conn, error) {
	path := c.Path
	if path == "" {
		path = DefaultHTTPPath
	}

	switch c.transport {
	case TransportHTTP:
		port := c.Port
		if port == 0 {
			port = DefaultHTTPPort
		}
		return &httpConn{
			transport: c.transport,
			url:       fmt.Sprintf("http://%s:%d%s", c.Host, port, path),
			auth:      basicAuth(c.username, c.password),
			client:    &http.Client{},
		}, nil

	case TransportHTTPLocal:
		port := c.Port
		if port == 0 {
			port = DefaultHTTPLocalPort
		}
		return &httpConn{
			transport: c.transport,
			url:       fmt.Sprintf("http://localhost:%d%s", port, path),
			client:    &http.Client{},
		}, nil

	case TransportHTTPS:
		port := c.Port
		if port == 0 {
			port = DefaultHTTPSPort
		}
		// Self-signed certificates generated on EOS fail validation
		// unless explicitly imported, so verification is opt-in.
		tlsConfig := &tls.Config{
			InsecureSkipVerify: !c.VerifyCertificate, //nolint:gosec // G402: opt-in via VerifyCertificate
		}
		return &httpConn{
			transport: c.transport,
			url:       fmt.Sprintf("https://%s:%d%s", c.Host, port, path),
			auth:      basicAuth(c.username, c.password),
			client:    &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}},
		}, nil

	case TransportHTTPSCerts:
		port := c.Port
		if port == 0 {
			port = DefaultHTTPSPort
		}
		cert, err := tls.LoadX509KeyPair(c.certFile, c.keyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate failed: %w", err)
		}
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
		if c.caFile != "" {
			caData, err := os.ReadFile(c.caFile)
			if err != nil {
				return nil, fmt.Errorf("loading CA certificate failed: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caData) {
				return nil, fmt.Errorf("CA certificate file %s contains no certificates", c.caFile)
			}
			tlsConfig.RootCAs = pool
		} else {
			tlsConfig.InsecureSkipVerify = true //nolint:gosec // G402: no CA provided
		}
		return &httpConn{
			transport: c.transport,
			url:       fmt.Sprintf("https://%s:%d%s", c.Host, port, path),
			client:    &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}},
		}, nil

	case TransportSocket:
		socket := c.Path
		if socket == "" {
			socket = DefaultUnixSocket
		}
		dialer := &net.Dialer{}
		httpTransport := &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, "unix", socket)
			},
		}
		// The host in the URL is ignored; the dialer always hits the socket.
		return &httpConn{
			transport: c.transport,
			url:       "http://localhost" + DefaultHTTPPath, // socket path carried by the dialer
			client:    &http.Client{Transport: httpTransport},
		}, nil
	}

	return nil, fmt.Errorf("invalid transport specified: %s", c.transport)
}
