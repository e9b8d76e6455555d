// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// EnvConfFile is the environment variable pointing to an eapi.conf file,
// taking precedence over the default search locations
const EnvConfFile = "EAPI_CONF"

// connectionPrefix namespaces connection profiles in the config file:
// [connection:veos01]
const connectionPrefix = "connection:"

// Profile holds the connection settings of one named entry in an eapi.conf
// file
//
// Keys missing from the profile section fall back to the file's default
// section; a missing host falls back to the profile name itself, so a
// resolvable hostname needs no host key at all.
type Profile struct {
	Name         string
	Host         string
	Username     string
	Password     string
	EnableSecret string
	Transport    string
	Port         int
}

// Config is a parsed eapi.conf file
//
// The file uses INI syntax with one section per device:
//
//	[connection:veos01]
//	host: 192.168.1.16
//	username: eapi
//	password: password
//	transport: https
//
// Settings in the file's default section apply to every profile that does
// not override them.
type Config struct {
	v *viper.Viper
}

// LoadConfig reads and parses an eapi.conf file
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

// FindConfigFile locates an eapi.conf file
//
// The search order is the EAPI_CONF environment variable, ~/.eapi.conf, and
// /mnt/flash/eapi.conf (for scripts running on the device itself).
func FindConfigFile() (string, error) {
	var candidates []string
	if env := os.Getenv(EnvConfFile); env != "" {
		candidates = append(candidates, env)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".eapi.conf"))
	}
	candidates = append(candidates, "/mnt/flash/eapi.conf")

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no eapi.conf found (searched: %s)", strings.Join(candidates, ", "))
}

// Profiles returns the names of all connection profiles in the file, sorted
func (c *Config) Profiles() []string {
	seen := make(map[string]bool)
	var names []string
	for _, key := range c.v.AllKeys() {
		if !strings.HasPrefix(key, connectionPrefix) {
			continue
		}
		name, _, ok := strings.Cut(strings.TrimPrefix(key, connectionPrefix), ".")
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile resolves one connection profile by name, applying default-section
// fallbacks and filling unset values with the client defaults
//
// Profile names are case-insensitive.
func (c *Config) Profile(name string) (Profile, error) {
	name = strings.ToLower(name)
	section := connectionPrefix + name

	found := false
	for _, key := range c.v.AllKeys() {
		if strings.HasPrefix(key, section+".") {
			found = true
			break
		}
	}
	if !found {
		return Profile{}, fmt.Errorf("connection profile not found: %s", name)
	}

	get := func(key string) string {
		if val := c.v.GetString(section + "." + key); val != "" {
			return val
		}
		return c.v.GetString("default." + key)
	}

	profile := Profile{
		Name:         name,
		Host:         get("host"),
		Username:     get("username"),
		Password:     get("password"),
		EnableSecret: get("enablepwd"),
		Transport:    get("transport"),
		Port:         c.v.GetInt(section + ".port"),
	}
	if profile.Port == 0 {
		profile.Port = c.v.GetInt("default.port")
	}
	if profile.Host == "" {
		profile.Host = name
	}
	if profile.Username == "" {
		profile.Username = DefaultUsername
	}
	if profile.Transport == "" {
		profile.Transport = DefaultTransport
	}
	return profile, nil
}

// Connect creates a client from a connection profile
//
// Options passed by the caller are applied after the profile's settings and
// therefore override them.
func (c *Config) Connect(name string, opts ...func(*Client)) (*Client, error) {
	profile, err := c.Profile(name)
	if err != nil {
		return nil, err
	}

	options := []func(*Client){
		Transport(profile.Transport),
		Username(profile.Username),
		Password(profile.Password),
		EnableSecret(profile.EnableSecret),
	}
	if profile.Port != 0 {
		options = append(options, Port(profile.Port))
	}
	options = append(options, opts...)

	return NewClient(profile.Host, options...)
}

// ConnectTo creates a client from a named profile in the first eapi.conf
// file found via FindConfigFile
//
// Example:
//
//	client, err := eapi.ConnectTo("veos01")
func ConnectTo(name string, opts ...func(*Client)) (*Client, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return config.Connect(name, opts...)
}
