// Package config owns the process-wide connection settings for the sync
// daemon's control API and optional user preferences. Settings are
// loaded once at startup and written back only on an explicit save.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// settingsDirPerm is the permission mode for ~/.syncmend/. The
	// directory holds the API key, so group and other get nothing.
	settingsDirPerm = fs.FileMode(0o700)

	// settingsFilePerm is the permission mode for the settings file.
	settingsFilePerm = fs.FileMode(0o600)

	defaultProtocol = "http"
	defaultAddress  = "127.0.0.1"
	defaultPort     = 8384
)

// mobileRuntime reports whether the process runs on a mobile network
// stack, where the symbolic loopback name may not resolve. Overridable
// in tests.
var mobileRuntime = func() bool {
	return runtime.GOOS == "android" || runtime.GOOS == "ios"
}

// URL describes where the daemon's control API listens.
type URL struct {
	Protocol  string `json:"protocol" env:"SYNCMEND_PROTOCOL"`
	IPAddress string `json:"ip_address" env:"SYNCMEND_ADDRESS"`
	Port      int    `json:"port" env:"SYNCMEND_PORT"`
}

// ConnectionSettings holds everything needed to reach the daemon.
// Loaded once at startup; every client request reads it; mutated only
// through an explicit save, never concurrently with an in-flight
// request.
type ConnectionSettings struct {
	APIKey string `json:"api_key" env:"SYNCMEND_API_KEY"`
	URL    URL    `json:"url"`

	// path is the file the settings were loaded from, kept for Save.
	path string
}

// DefaultDir returns the syncmend state directory ~/.syncmend/.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".syncmend"), nil
}

// Load reads connection settings from the given file, falling back to
// defaults when the file does not exist, then applies environment
// variable overrides (a .env file is honoured if present).
func Load(path string) (*ConnectionSettings, error) {
	settings := &ConnectionSettings{
		URL: URL{
			Protocol:  defaultProtocol,
			IPAddress: defaultAddress,
			Port:      defaultPort,
		},
		path: path,
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from DefaultDir or an explicit flag
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run. Defaults stand until the user saves.
	case err != nil:
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("decoding settings file %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	if err := env.Parse(settings); err != nil {
		return nil, fmt.Errorf("parsing settings overrides from environment: %w", err)
	}

	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}

	return settings, nil
}

func (s *ConnectionSettings) validate() error {
	if s.URL.Protocol != "http" && s.URL.Protocol != "https" {
		return fmt.Errorf("protocol must be http or https, got %q", s.URL.Protocol)
	}

	if s.URL.IPAddress == "" {
		return fmt.Errorf("ip_address must not be empty")
	}

	if s.URL.Port < 1 || s.URL.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.URL.Port)
	}

	return nil
}

// BaseURL builds the control API base URL. When running on a mobile
// network stack, the symbolic loopback name is replaced with the
// numeric loopback address because those stacks may not resolve
// "localhost".
func (s *ConnectionSettings) BaseURL() string {
	host := s.URL.IPAddress
	if host == "localhost" && mobileRuntime() {
		host = "127.0.0.1"
	}

	return s.URL.Protocol + "://" + net.JoinHostPort(host, strconv.Itoa(s.URL.Port))
}

// Save writes the settings back to the file they were loaded from,
// creating the parent directory if needed.
func (s *ConnectionSettings) Save() error {
	if s.path == "" {
		return fmt.Errorf("settings have no backing file")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), settingsDirPerm); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.WriteFile(s.path, append(data, '\n'), settingsFilePerm); err != nil {
		return fmt.Errorf("writing settings file %s: %w", s.path, err)
	}

	return nil
}
