// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Default client configuration values
const (
	DefaultTransport = TransportHTTPS
	DefaultUsername  = "admin"
	DefaultTimeout   = 60 * time.Second
)

var (
	// versionNumberRE extracts the leading numeric version from a full
	// EOS version string (e.g. "4.30.1F" -> "4.30.1")
	versionNumberRE = regexp.MustCompile(`^[\d.]+`)

	// modelNumberRE extracts the four-digit platform number from a model
	// name (e.g. "DCS-7280SR-48C6-R" -> "7280")
	modelNumberRE = regexp.MustCompile(`\d{4}`)
)

// Client represents a single EOS device reachable over eAPI
//
// The client owns the transport, the lazily loaded running/startup
// configuration, and the cache of parsed section trees. It is designed for
// one logical caller at a time; drive each device from its own client rather
// than sharing one across concurrent flows.
type Client struct {
	// conn is the underlying transport
	conn Conn

	// mu guards session name, cached configuration, and the section cache
	mu sync.Mutex

	// Connection parameters
	Host      string
	Port      int    // 0 selects the transport's default port
	Path      string // endpoint path, or socket path for the socket transport
	transport string
	username  string // unexported for security
	password  string // unexported for security

	// enableSecret is submitted as ancillary input with the enable command
	enableSecret string

	// Client certificate configuration for the https_certs transport
	keyFile  string // unexported for security
	certFile string // unexported for security
	caFile   string // unexported for security

	// VerifyCertificate enables TLS certificate verification. Off by
	// default because self-signed certificates generated on EOS fail
	// validation unless explicitly imported.
	VerifyCertificate bool

	// Timeout bounds each individual request
	Timeout time.Duration

	// AutoRefresh drops the cached running/startup configuration after
	// configuration changes so the next read refetches it
	AutoRefresh bool

	// ConfigDefaults includes default values in the running configuration
	// ("show running-config all")
	ConfigDefaults bool

	// sessionName is the open config session, "" when none
	sessionName string

	// Lazily loaded configuration views
	runningConfig string
	runningValid  bool
	startupConfig string
	startupValid  bool

	// Version properties parsed from "show version"
	version       string
	versionNumber string
	model         string

	// sections caches parsed section trees keyed by (text, indent)
	sections map[sectionKey]*SectionTree

	// parses counts actual parser invocations (cache misses)
	parses int

	logger Logger
}

// NewClient creates a new eAPI client for the specified host
//
// The client validates its configuration and builds the transport, but does
// not contact the device; the first operation does. All settings are
// optional except the host (not required for the socket and http_local
// transports, which always target the local device).
//
// Example:
//
//	client, err := eapi.NewClient(
//	    "192.168.1.1",
//	    eapi.Username("admin"),
//	    eapi.Password("secret"),
//	    eapi.Transport("https"),
//	    eapi.Timeout(30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// Returns a configured Client or an error if configuration validation fails.
func NewClient(host string, opts ...func(*Client)) (*Client, error) {
	client := &Client{
		Host:           host,
		transport:      DefaultTransport,
		username:       DefaultUsername,
		Timeout:        DefaultTimeout,
		AutoRefresh:    true,
		ConfigDefaults: true,
		sections:       make(map[sectionKey]*SectionTree),
		logger:         &NoOpLogger{},
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := client.validateConfig(); err != nil {
		return nil, err
	}

	if client.conn == nil {
		conn, err := newConn(client)
		if err != nil {
			return nil, err
		}
		client.conn = conn
	}

	client.logger.Info("eAPI client created",
		"host", client.Host,
		"transport", client.transport)

	return client, nil
}

// String describes the client's endpoint
func (c *Client) String() string {
	return fmt.Sprintf("Client(connection=%s)", c.conn.String())
}

// Close releases the underlying transport. The client cannot be reused
// afterwards.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.logger.Info("eAPI client closed", "host", c.Host)
	return err
}

// EnableAuthentication configures the enable mode password
//
// EOS supports an additional password for sessions switching to executive
// (enable) mode. When set, the secret is submitted as ancillary input with
// every automatically prepended enable command.
func (c *Client) EnableAuthentication(secret string) {
	c.enableSecret = strings.TrimSpace(secret)
}

// validateConfig validates client configuration before the transport is built
//
// Programming/contract errors fail here, before any network interaction.
func (c *Client) validateConfig() error {
	valid := false
	for _, t := range ValidTransports {
		if c.transport == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid transport specified: %s (valid values: %s)",
			c.transport, strings.Join(ValidTransports, ", "))
	}

	local := c.transport == TransportHTTPLocal || c.transport == TransportSocket
	if !local && strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host cannot be empty for transport %s", c.transport)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535, or 0 for the transport default)", c.Port)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	if c.transport == TransportHTTPSCerts && (c.keyFile == "" || c.certFile == "") {
		return fmt.Errorf("transport %s requires both KeyFile and CertFile (a CAFile is also recommended)",
			TransportHTTPSCerts)
	}

	if c.transport == TransportHTTPS && !c.VerifyCertificate {
		c.logger.Warn("TLS certificate verification disabled",
			"host", c.Host,
			"recommendation", "import the device certificate and enable VerifyCertificate")
	}

	if c.transport == TransportHTTP {
		c.logger.Warn("plain HTTP transport - credentials transmitted in clear text",
			"host", c.Host,
			"recommendation", "use the https transport for production")
	}

	return nil
}

// RunningConfig returns the device's running configuration as text
//
// The configuration is fetched on first use and cached; Refresh (called
// automatically after configuration changes when AutoRefresh is on) clears
// the cache. With ConfigDefaults set, default values are included.
func (c *Client) RunningConfig(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.runningValid {
		defer c.mu.Unlock()
		return c.runningConfig, nil
	}
	c.mu.Unlock()

	params := ""
	if c.ConfigDefaults {
		params = "all"
	}
	config, err := c.GetConfig(ctx, "running-config", params)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.runningConfig = config
	c.runningValid = true
	c.mu.Unlock()
	return config, nil
}

// StartupConfig returns the device's startup configuration as text, fetched
// on first use and cached until Refresh
func (c *Client) StartupConfig(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.startupValid {
		defer c.mu.Unlock()
		return c.startupConfig, nil
	}
	c.mu.Unlock()

	config, err := c.GetConfig(ctx, "startup-config", "")
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.startupConfig = config
	c.startupValid = true
	c.mu.Unlock()
	return config, nil
}

// GetConfig retrieves a configuration view from the device as text
//
// The config argument must be "running-config" or "startup-config"; params
// carries extra keywords appended to the show command (e.g. "all").
func (c *Client) GetConfig(ctx context.Context, config, params string) (string, error) {
	if config != "running-config" && config != "startup-config" {
		return "", fmt.Errorf("invalid config name specified: %s", config)
	}

	command := "show " + config
	if params != "" {
		command += " " + params
	}

	results, err := c.RunCommands(ctx, []string{command}, Encoding(EncodingText))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(results[0].Output()), nil
}

// Refresh clears the cached running and startup configuration
//
// The views are lazily loaded, so the next read repopulates them from the
// device.
func (c *Client) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runningValid = false
	c.runningConfig = ""
	c.startupValid = false
	c.startupConfig = ""
}

// Version returns the full EOS version string, fetched once from
// "show version" and cached for the client's lifetime
func (c *Client) Version(ctx context.Context) (string, error) {
	if c.version != "" {
		return c.version, nil
	}
	if err := c.fetchVersionProperties(ctx); err != nil {
		return "", err
	}
	return c.version, nil
}

// VersionNumber returns the numeric portion of the EOS version string
// (e.g. "4.30.1" for "4.30.1F")
func (c *Client) VersionNumber(ctx context.Context) (string, error) {
	if c.versionNumber != "" {
		return c.versionNumber, nil
	}
	if err := c.fetchVersionProperties(ctx); err != nil {
		return "", err
	}
	return c.versionNumber, nil
}

// Model returns the four-digit platform number parsed from the model name,
// or the full model name if no number is present
func (c *Client) Model(ctx context.Context) (string, error) {
	if c.model != "" {
		return c.model, nil
	}
	if err := c.fetchVersionProperties(ctx); err != nil {
		return "", err
	}
	return c.model, nil
}

// fetchVersionProperties populates the version properties from a single
// "show version" call.
func (c *Client) fetchVersionProperties(ctx context.Context) error {
	results, err := c.Enable(ctx, []string{"show version"})
	if err != nil {
		return err
	}

	version := results[0].GetValue("version").String()
	c.version = version
	if m := versionNumberRE.FindString(version); m != "" {
		c.versionNumber = m
	} else {
		c.versionNumber = version
	}

	modelName := results[0].GetValue("modelName").String()
	if m := modelNumberRE.FindString(modelName); m != "" {
		c.model = m
	} else {
		c.model = modelName
	}

	return nil
}
