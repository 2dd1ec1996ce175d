package config

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultServerURL      = "https://127.0.0.1:9392"
	DefaultTimeoutSeconds = 30
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Behavior BehaviorConfig `toml:"behavior"`
	Advanced AdvancedConfig `toml:"advanced"`
}

type ServerConfig struct {
	URL                string `toml:"url"`
	Username           string `toml:"username"`
	Password           string `toml:"password"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

type BehaviorConfig struct {
	BackupBeforeCommit bool `toml:"backup_before_commit"`
	IdleTimeoutSeconds int  `toml:"idle_timeout_seconds"`
}

type AdvancedConfig struct {
	LogLevel string `toml:"log_level"`
}

func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (b BehaviorConfig) IdleTimeout() time.Duration {
	return time.Duration(b.IdleTimeoutSeconds) * time.Second
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:            DefaultServerURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Behavior: BehaviorConfig{
			BackupBeforeCommit: true,
			IdleTimeoutSeconds: 0,
		},
		Advanced: AdvancedConfig{
			LogLevel: "",
		},
	}
}

func ResolvePath() (string, error) {
	if env := os.Getenv("LAZYPORTLIST_CONFIG"); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lazyportlist", "config.toml"), nil
}

// Load reads the first config file found. It returns the config, warnings
// about ignored or adjusted values, the path read and whether a file was
// found at all.
func Load() (Config, []string, string, bool, error) {
	paths, err := candidatePaths()
	if err != nil {
		return withEnv(Default()), nil, "", false, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return withEnv(Default()), nil, "", false, err
		}
		cfg, warnings, err := parse(data)
		if err != nil {
			return withEnv(Default()), nil, "", false, fmt.Errorf("parse %s: %w", path, err)
		}
		warnings = append(warnings, normalizeConfig(&cfg)...)
		return withEnv(cfg), warnings, path, true, nil
	}
	return withEnv(Default()), nil, "", false, nil
}

func parse(data []byte) (Config, []string, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), nil, err
	}
	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown key %q", key.String()))
	}
	return cfg, warnings, nil
}

func withEnv(cfg Config) Config {
	if password := os.Getenv("LAZYPORTLIST_PASSWORD"); password != "" {
		cfg.Server.Password = password
	}
	return cfg
}

func normalizeConfig(cfg *Config) []string {
	warnings := make([]string, 0)
	if strings.TrimSpace(cfg.Server.URL) == "" {
		warnings = append(warnings, fmt.Sprintf("server.url is empty; using %s", DefaultServerURL))
		cfg.Server.URL = DefaultServerURL
	} else if u, err := url.Parse(cfg.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		warnings = append(warnings, fmt.Sprintf("server.url %q is not an absolute URL; using %s", cfg.Server.URL, DefaultServerURL))
		cfg.Server.URL = DefaultServerURL
	}
	cfg.Server.URL = strings.TrimRight(cfg.Server.URL, "/")
	if cfg.Server.TimeoutSeconds <= 0 {
		warnings = append(warnings, fmt.Sprintf("server.timeout_seconds must be > 0; using %d", DefaultTimeoutSeconds))
		cfg.Server.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Behavior.IdleTimeoutSeconds < 0 {
		warnings = append(warnings, "behavior.idle_timeout_seconds must be >= 0; idle logout disabled")
		cfg.Behavior.IdleTimeoutSeconds = 0
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Advanced.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		warnings = append(warnings, fmt.Sprintf("advanced.log_level %q is not supported; using info", cfg.Advanced.LogLevel))
		cfg.Advanced.LogLevel = ""
	}
	return warnings
}

func candidatePaths() ([]string, error) {
	if env := os.Getenv("LAZYPORTLIST_CONFIG"); env != "" {
		return []string{env}, nil
	}
	primary, err := ResolvePath()
	if err != nil {
		return nil, err
	}
	paths := []string{primary}
	if sudoPath, ok := sudoConfigPath(primary); ok {
		paths = append(paths, sudoPath)
	}
	return paths, nil
}

func sudoConfigPath(primary string) (string, bool) {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" {
		return "", false
	}
	current := os.Getenv("USER")
	if current == sudoUser {
		return "", false
	}
	u, err := user.Lookup(sudoUser)
	if err != nil || u.HomeDir == "" {
		return "", false
	}
	path := filepath.Join(u.HomeDir, ".config", "lazyportlist", "config.toml")
	if path == primary {
		return "", false
	}
	return path, true
}
