package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "haloctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
currentContext: prod
output: json
timeout: 5s
retries: 2
contexts:
  - name: local
    server: http://localhost:8090
  - name: prod
    server: https://blog.example.com
    token: pat_abc
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	require.Len(t, cfg.Contexts, 2)

	s := cfg.Settings()
	assert.Equal(t, "https://blog.example.com", s.Server)
	assert.Equal(t, "pat_abc", s.Token)
	assert.Equal(t, "json", s.Output)
	assert.Equal(t, 2, s.Retries)
}

func TestLoad_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, false)
	require.NoError(t, err)
	assert.Empty(t, cfg.Contexts)
	assert.Equal(t, "table", cfg.Settings().Output)

	_, err = Load(missing, true)
	assert.Error(t, err)

	cfg, err = Load("", true)
	require.NoError(t, err)
	assert.Nil(t, cfg.Current())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"malformed yaml", "contexts: [", "failed to parse"},
		{"bad output", "output: xml", "output"},
		{"bad retries", "retries: 20", "retries"},
		{"missing server", "contexts:\n  - name: a\n", "server"},
		{"bad server", "contexts:\n  - name: a\n    server: ftp://x\n", "http"},
		{"username without password", "contexts:\n  - name: a\n    server: http://x\n    username: u\n", "password"},
		{"duplicate context", "contexts:\n  - name: a\n    server: http://x\n  - name: a\n    server: http://y\n", "duplicate"},
		{"unknown current context", "currentContext: b\ncontexts:\n  - name: a\n    server: http://x\n", "not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), true)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), tt.errMsg)
		})
	}
}

func TestConfig_Current(t *testing.T) {
	single := &Config{Contexts: []Context{{Name: "a", Server: "http://a"}}}
	require.NotNil(t, single.Current())
	assert.Equal(t, "a", single.Current().Name)

	several := &Config{Contexts: []Context{{Name: "a"}, {Name: "b"}}}
	assert.Nil(t, several.Current())

	several.CurrentContext = "b"
	assert.Equal(t, "b", several.Current().Name)
}

func TestSettings_ApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvServer:   "http://env:8090",
		EnvUsername: "admin",
		EnvPassword: "pw",
		EnvToken:    "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	s := Settings{Server: "http://file", Token: "from-file"}
	s.ApplyEnv(lookup)

	assert.Equal(t, "http://env:8090", s.Server)
	assert.Equal(t, "admin", s.Username)
	assert.Equal(t, "pw", s.Password)
	assert.Equal(t, "from-file", s.Token, "empty variables do not override")
}

func TestSettings_Validate(t *testing.T) {
	valid := Settings{Server: "http://localhost:8090", Output: "table"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"missing server", func(s *Settings) { s.Server = "" }},
		{"bad server", func(s *Settings) { s.Server = "localhost" }},
		{"bad output", func(s *Settings) { s.Output = "xml" }},
		{"negative retries", func(s *Settings) { s.Retries = -1 }},
		{"username without password", func(s *Settings) { s.Username = "u" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestSettings_ClientConfig(t *testing.T) {
	s := Settings{Server: "http://x", Username: "u", Password: "p", Token: "t", Timeout: time.Second, Retries: 3}
	cfg := s.ClientConfig(nil)

	assert.Equal(t, "http://x", cfg.BaseURL)
	assert.Equal(t, "u", cfg.Username)
	assert.Equal(t, "p", cfg.Password)
	assert.Equal(t, "t", cfg.Token)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, "haloctl", cfg.UserAgent)
}
