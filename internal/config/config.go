package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultUpstream = "p4/master"
	DefaultLogLevel = "warn"

	configDirEnvKey = "P4GIT_CONFIG_DIR"
	journalEnvKey   = "P4GIT_JOURNAL"

	// ClientEnvKey and UserEnvKey are p4's own identity variables. The
	// command layer reads them directly when ranking identity sources.
	ClientEnvKey = "P4CLIENT"
	UserEnvKey   = "P4USER"

	configFileName = ".p4git.toml"
)

// Config defines runtime configuration for p4git. Client and User are the
// lowest-precedence identity sources; flags, environment, and git config
// override them at the command layer.
type Config struct {
	Client      string `toml:"client"`
	User        string `toml:"user"`
	Upstream    string `toml:"upstream"`
	JournalPath string `toml:"journal_path"`
	LogLevel    string `toml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		Upstream: DefaultUpstream,
		LogLevel: DefaultLogLevel,
	}
}

var allowedKeys = []string{
	"client",
	"user",
	"upstream",
	"journal_path",
	"log_level",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "client":
		return c.Client, nil
	case "user":
		return c.User, nil
	case "upstream":
		return c.Upstream, nil
	case "journal_path":
		return c.JournalPath, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Path returns the location of the config file.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	data[key] = strings.TrimSpace(value)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads the config file and applies environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if client := strings.TrimSpace(os.Getenv(ClientEnvKey)); client != "" {
		cfg.Client = client
	}
	if user := strings.TrimSpace(os.Getenv(UserEnvKey)); user != "" {
		cfg.User = user
	}
	if journal := strings.TrimSpace(os.Getenv(journalEnvKey)); journal != "" {
		cfg.JournalPath = journal
	}

	if strings.TrimSpace(cfg.Upstream) == "" {
		cfg.Upstream = DefaultUpstream
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
