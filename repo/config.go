// Package repo owns the on-disk layout and configuration of a StateScope
// install: a folder under the user's home with a config.yml and an
// optional hooks.lua.
package repo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Provider kinds accepted in config.yml.
const (
	ProviderRetroArch = "retroarch"
	ProviderStateSock = "statesock"
	ProviderStateFile = "statefile"
)

type Config struct {
	Provider string `yaml:"provider"`

	// retroarch
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// statesock
	SocketURL string `yaml:"socket_url"`

	// statefile
	StateDir string `yaml:"state_dir"`

	PollIntervalMS int64  `yaml:"poll_interval_ms"`
	CacheTTLMS     int64  `yaml:"cache_ttl_ms"`
	SinkURL        string `yaml:"sink_url"`
	HooksFile      string `yaml:"hooks_file"`
}

func defaults() *Config {
	return &Config{
		Provider:       ProviderRetroArch,
		Host:           "localhost",
		Port:           "55355",
		PollIntervalMS: 250,
		CacheTTLMS:     500,
		SinkURL:        "http://localhost:8000/gamestate",
	}
}

// SetupPaths creates the StateScope home folder and returns its path.
func SetupPaths() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	folder := filepath.Join(home, "StateScope")
	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return "", err
	}
	return folder, nil
}

// Load parses config.yml content, applying defaults for anything unset.
func Load(r io.Reader) (*Config, error) {
	cfg := defaults()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderRetroArch, ProviderStateSock, ProviderStateFile:
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.PollIntervalMS <= 0 {
		return nil, fmt.Errorf("poll_interval_ms must be positive, got %d", cfg.PollIntervalMS)
	}
	return cfg, nil
}

// LoadFile reads the config at path. A missing file is not an error; the
// defaults stand.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	return cfg, nil
}
