// Package config loads client configuration from YAML documents.
//
// It provides a declarative alternative to constructing a client from
// functional options directly, intended for applications that read their
// endpoint settings from a file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dogmatiq/talaria"
	"gopkg.in/yaml.v3"
)

// Header is a single HTTP header to send with every request.
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Config describes how a client reaches a remote endpoint.
type Config struct {
	// Host is the hostname or address of the remote server.
	Host string `yaml:"host"`

	// Port is the TCP port of the remote server.
	//
	// If it is zero, the port is derived from the TLS setting.
	Port int `yaml:"port"`

	// TLS controls whether requests are sent over HTTPS.
	TLS bool `yaml:"tls"`

	// BasePath is prefixed to the path of every request.
	BasePath string `yaml:"base_path"`

	// Headers are sent with every request, in order.
	Headers []Header `yaml:"headers"`

	// Username and Password are the basic authentication credentials.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Token is the token credential. It is ignored when basic authentication
	// credentials are present.
	Token string `yaml:"token"`

	// Timeout is the per-call deadline. Zero means no deadline.
	Timeout Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration that is used when no values are
// provided.
func DefaultConfig() Config {
	return Config{
		Host: "localhost",
	}
}

// Load reads a YAML configuration from r.
//
// Values that are absent from the document retain their defaults. Unknown
// keys cause an error.
func Load(r io.Reader) (Config, error) {
	c := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty document yields the defaults.
			return c, nil
		}

		return Config{}, fmt.Errorf("unable to load configuration: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// LoadFile reads a YAML configuration from the file at the given path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to load configuration: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate returns an error if the configuration is invalid.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("configuration is invalid: host must not be empty")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("configuration is invalid: port %d is out of range", c.Port)
	}

	if c.Timeout < 0 {
		return errors.New("configuration is invalid: timeout must not be negative")
	}

	for _, h := range c.Headers {
		if h.Name == "" {
			return errors.New("configuration is invalid: header names must not be empty")
		}
	}

	return nil
}

// Options returns the client options described by the configuration.
//
// The result is passed directly to talaria.New().
func (c Config) Options() []talaria.Option {
	options := []talaria.Option{
		talaria.WithHost(c.Host),
		talaria.WithTLS(c.TLS),
		talaria.WithBasePath(c.BasePath),
	}

	if c.Port != 0 {
		options = append(options, talaria.WithPort(c.Port))
	}

	for _, h := range c.Headers {
		options = append(options, talaria.WithHeader(h.Name, h.Value))
	}

	if c.Username != "" || c.Password != "" {
		options = append(options, talaria.WithBasicAuth(c.Username, c.Password))
	}

	if c.Token != "" {
		options = append(options, talaria.WithToken(c.Token))
	}

	if c.Timeout > 0 {
		options = append(options, talaria.WithTimeout(time.Duration(c.Timeout)))
	}

	return options
}
