// Package config loads haloctl settings from a YAML file, the environment and
// command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yaroslav/haloclient/sdk"
)

// DefaultFileName is the config file looked up in the home directory.
const DefaultFileName = ".haloctl.yaml"

// Output formats accepted by --output.
var OutputFormats = []string{"table", "json", "yaml", "name"}

// Environment variables overriding the config file.
const (
	EnvServer   = "HALO_SERVER"
	EnvToken    = "HALO_TOKEN"
	EnvUsername = "HALO_USERNAME"
	EnvPassword = "HALO_PASSWORD"
)

// Config is the haloctl configuration file.
//
// Example:
//
//	currentContext: local
//	output: table
//	contexts:
//	  - name: local
//	    server: http://localhost:8090
//	    username: admin
//	    password: secret
type Config struct {
	// CurrentContext selects the entry of Contexts to use.
	// Optional when there is exactly one context.
	CurrentContext string `yaml:"currentContext"`

	// Contexts lists the known servers.
	Contexts []Context `yaml:"contexts"`

	// Output is the default output format.
	Output string `yaml:"output"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is the number of retries for failed requests.
	Retries int `yaml:"retries"`
}

// Context is one server and its credentials.
type Context struct {
	Name     string `yaml:"name"`
	Server   string `yaml:"server"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// DefaultPath returns ~/.haloctl.yaml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultFileName)
}

// Load reads and validates the config file at path. A missing file yields an
// empty config unless required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config file contents.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Output, validation.In(toInterfaces(OutputFormats)...)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.Contexts),
	)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Contexts))
	for i, ctx := range c.Contexts {
		if seen[ctx.Name] {
			return fmt.Errorf("contexts[%d]: duplicate name %q", i, ctx.Name)
		}
		seen[ctx.Name] = true
	}

	if c.CurrentContext != "" && !seen[c.CurrentContext] {
		return fmt.Errorf("currentContext %q is not defined", c.CurrentContext)
	}

	return nil
}

// Validate checks one context entry.
func (c Context) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Server, validation.Required, validation.By(serverURL)),
		validation.Field(&c.Password, validation.When(c.Username != "", validation.Required)),
	)
}

// Current returns the selected context, or nil when none is configured.
func (c *Config) Current() *Context {
	if c.CurrentContext == "" {
		if len(c.Contexts) == 1 {
			return &c.Contexts[0]
		}
		return nil
	}

	for i := range c.Contexts {
		if c.Contexts[i].Name == c.CurrentContext {
			return &c.Contexts[i]
		}
	}
	return nil
}

// Settings are the effective values after merging file, environment and
// flags.
type Settings struct {
	Server   string
	Username string
	Password string
	Token    string
	Timeout  time.Duration
	Retries  int
	Output   string
}

// Settings returns the values of the current context.
func (c *Config) Settings() Settings {
	s := Settings{
		Output:  c.Output,
		Timeout: c.Timeout,
		Retries: c.Retries,
	}
	if ctx := c.Current(); ctx != nil {
		s.Server = ctx.Server
		s.Username = ctx.Username
		s.Password = ctx.Password
		s.Token = ctx.Token
	}
	if s.Output == "" {
		s.Output = "table"
	}
	return s
}

// ApplyEnv overrides settings with the HALO_* variables found by lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvServer); ok && v != "" {
		s.Server = v
	}
	if v, ok := lookup(EnvToken); ok && v != "" {
		s.Token = v
	}
	if v, ok := lookup(EnvUsername); ok && v != "" {
		s.Username = v
	}
	if v, ok := lookup(EnvPassword); ok && v != "" {
		s.Password = v
	}
}

// Validate checks the merged settings before a client is built.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Server, validation.Required.Error("is required (use --server, "+EnvServer+" or a config file)"), validation.By(serverURL)),
		validation.Field(&s.Password, validation.When(s.Username != "", validation.Required)),
		validation.Field(&s.Output, validation.Required, validation.In(toInterfaces(OutputFormats)...)),
		validation.Field(&s.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&s.Timeout, validation.Min(time.Duration(0))),
	)
}

// ClientConfig converts the settings to an SDK configuration.
func (s *Settings) ClientConfig(logger *zap.Logger) sdk.ClientConfig {
	return sdk.ClientConfig{
		BaseURL:       s.Server,
		Username:      s.Username,
		Password:      s.Password,
		Token:         s.Token,
		Timeout:       s.Timeout,
		RetryAttempts: s.Retries,
		UserAgent:     "haloctl",
		Logger:        logger,
	}
}

func serverURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http:// or https:// URL")
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
