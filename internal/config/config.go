// Package config loads enso-settings configuration from ENSO_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIURL is where the Enso background process serves its local API.
const DefaultAPIURL = "http://127.0.0.1:31751"

// Settings are the process-wide knobs. CLI flags override whatever the
// environment provides.
type Settings struct {
	APIURL    string `env:"ENSO_API_URL" envDefault:"http://127.0.0.1:31751"`
	Token     string `env:"ENSO_TOKEN"`
	TokenPage string `env:"ENSO_TOKEN_PAGE"`

	StateDir string `env:"ENSO_STATE_DIR"`

	HTTPTimeout time.Duration `env:"ENSO_HTTP_TIMEOUT" envDefault:"10s"`
	HTTPRetries int           `env:"ENSO_HTTP_RETRIES" envDefault:"0"`

	LogLevel string `env:"ENSO_LOG_LEVEL" envDefault:"info"`

	InstallAddr string `env:"ENSO_INSTALL_ADDR" envDefault:"localhost:31750"`
	ScriptsDir  string `env:"ENSO_SCRIPTS_DIR"`
}

// Load parses the environment and fills derived defaults.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	s.Normalize()
	return s, nil
}

// Normalize trims values and fills derived defaults. Call it again after
// overriding fields.
func (s *Settings) Normalize() {
	s.APIURL = strings.TrimRight(strings.TrimSpace(s.APIURL), "/")
	if s.APIURL == "" {
		s.APIURL = DefaultAPIURL
	}
	s.Token = strings.TrimSpace(s.Token)
	s.TokenPage = strings.TrimSpace(s.TokenPage)
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if s.HTTPRetries < 0 {
		s.HTTPRetries = 0
	}
	if strings.TrimSpace(s.StateDir) == "" {
		s.StateDir = defaultStateDir()
	}
	if strings.TrimSpace(s.ScriptsDir) == "" && s.StateDir != "" {
		s.ScriptsDir = filepath.Join(s.StateDir, "commands")
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".enso-settings")
}
