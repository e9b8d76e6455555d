// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"strings"
	"time"
)

// Client configuration options using the functional options pattern

// Username sets the username for eAPI authentication (default: admin)
func Username(username string) func(*Client) {
	return func(c *Client) {
		c.username = username
	}
}

// Password sets the password for eAPI authentication
func Password(password string) func(*Client) {
	return func(c *Client) {
		c.password = password
	}
}

// EnableSecret sets the enable mode password, submitted as ancillary input
// with the automatically prepended enable command
func EnableSecret(secret string) func(*Client) {
	return func(c *Client) {
		c.enableSecret = strings.TrimSpace(secret)
	}
}

// Transport selects the connection transport (default: https)
//
// Valid values: http, http_local, https, https_certs, socket
func Transport(name string) func(*Client) {
	return func(c *Client) {
		c.transport = name
	}
}

// Port sets the TCP port of the eAPI endpoint
//
// When not specified, the default is determined by the transport type
// (http=80, https=443, http_local=8080).
func Port(port int) func(*Client) {
	return func(c *Client) {
		c.Port = port
	}
}

// Path overrides the endpoint path (default: /command-api). For the socket
// transport it names the unix domain socket instead.
func Path(path string) func(*Client) {
	return func(c *Client) {
		c.Path = path
	}
}

// KeyFile sets the private key file path for the https_certs transport
func KeyFile(keyPath string) func(*Client) {
	return func(c *Client) {
		c.keyFile = keyPath
	}
}

// CertFile sets the PEM certificate file path for the https_certs transport
func CertFile(certPath string) func(*Client) {
	return func(c *Client) {
		c.certFile = certPath
	}
}

// CAFile sets the CA certificate file path for server verification with the
// https_certs transport
func CAFile(caPath string) func(*Client) {
	return func(c *Client) {
		c.caFile = caPath
	}
}

// VerifyCertificate enables TLS certificate verification (default: false)
//
// Verification is off by default because self-signed certificates generated
// on EOS fail validation unless explicitly imported. Enable it whenever the
// device certificate chains to a trusted CA.
func VerifyCertificate(verify bool) func(*Client) {
	return func(c *Client) {
		c.VerifyCertificate = verify
	}
}

// Timeout sets the per-request timeout (default: 60s)
func Timeout(duration time.Duration) func(*Client) {
	return func(c *Client) {
		c.Timeout = duration
	}
}

// AutoRefresh controls whether cached running/startup configuration is
// dropped after configuration changes (default: true)
func AutoRefresh(enabled bool) func(*Client) {
	return func(c *Client) {
		c.AutoRefresh = enabled
	}
}

// ConfigDefaults controls whether default values are included when fetching
// the running configuration (default: true)
func ConfigDefaults(enabled bool) func(*Client) {
	return func(c *Client) {
		c.ConfigDefaults = enabled
	}
}

// WithLogger configures a custom logger for the client
//
// By default, the client uses NoOpLogger which discards all log messages.
// Request bodies logged at Debug level have the enable secret redacted.
//
// Example:
//
//	logger := eapi.NewDefaultLogger(eapi.LogLevelInfo)
//	client, _ := eapi.NewClient("192.168.1.1",
//	    eapi.Username("admin"),
//	    eapi.Password("secret"),
//	    eapi.WithLogger(logger))
func WithLogger(logger Logger) func(*Client) {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConn injects a custom transport, bypassing the built-in transport
// construction. Intended for tests and for embedding the client behind
// nonstandard transports.
func WithConn(conn Conn) func(*Client) {
	return func(c *Client) {
		c.conn = conn
	}
}

// Request modifiers for individual operations

// Encoding returns a request modifier that sets the command output encoding
//
// Valid encodings: json (default), text. Note that some commands only
// support text output; in non-strict mode Enable falls back automatically.
//
// Example:
//
//	res, err := client.RunCommands(ctx, []string{"show running-config"},
//	    eapi.Encoding("text"))
func Encoding(encoding string) func(*Req) {
	return func(req *Req) {
		req.Encoding = encoding
	}
}

// RequestTimeout returns a request modifier that sets a custom timeout for
// the operation, taking precedence over the client's Timeout
func RequestTimeout(duration time.Duration) func(*Req) {
	return func(req *Req) {
		req.Timeout = duration
	}
}

// SendEnable returns a request modifier controlling whether the enable
// command is prepended automatically (default: true)
//
// The result of the prepended command is removed before results are returned
// to the caller.
func SendEnable(enabled bool) func(*Req) {
	return func(req *Req) {
		req.SendEnable = enabled
	}
}

// Strict returns a request modifier that disables the text-encoding fallback
// in Enable; commands are sent as a single batch and an encoding error
// surfaces to the caller
func Strict(strict bool) func(*Req) {
	return func(req *Req) {
		req.Strict = strict
	}
}

// APIVersion returns a request modifier overriding the eAPI request version
// (default: 1)
func APIVersion(version int) func(*Req) {
	return func(req *Req) {
		req.APIVersion = version
	}
}

// AutoComplete returns a request modifier asking the device to expand
// abbreviated commands. Not supported by all EOS versions; unsupported
// parameters surface as a command error with a version hint.
func AutoComplete(enabled bool) func(*Req) {
	return func(req *Req) {
		req.AutoComplete = enabled
	}
}

// ExpandAliases returns a request modifier asking the device to expand
// command aliases before execution
func ExpandAliases(enabled bool) func(*Req) {
	return func(req *Req) {
		req.ExpandAliases = enabled
	}
}

// Streaming returns a request modifier marking the request for streaming
// delivery
func Streaming(enabled bool) func(*Req) {
	return func(req *Req) {
		req.Streaming = enabled
	}
}
