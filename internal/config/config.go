// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Remote  RemoteConfig
	Server  ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
	File  string // Optional rotating log file
}

// StorageConfig holds local persistence configuration.
type StorageConfig struct {
	// DataPath is the base directory for every on-disk store.
	DataPath string
	// LocalQuotaBytes caps the serialized document in the local slot (default: 5 MiB).
	LocalQuotaBytes int64
}

// DocumentPath is the bbolt file holding the local document slot.
func (s StorageConfig) DocumentPath() string {
	return filepath.Join(s.DataPath, "desk.db")
}

// MediaPath is the badger directory holding media blobs.
func (s StorageConfig) MediaPath() string {
	return filepath.Join(s.DataPath, "media")
}

// RemoteDBPath is the SQLite file holding the server's singleton document.
func (s StorageConfig) RemoteDBPath() string {
	return filepath.Join(s.DataPath, "remote.sqlite")
}

// RemoteConfig holds the desk's view of the sync server.
type RemoteConfig struct {
	URL     string        // Base URL of the sync server, e.g. http://localhost:3001
	Timeout time.Duration // Per-request timeout (default: 10s)
	// WriteThrough pushes local mutations to the server while the desk is in server mode.
	// Off by default: a push replaces the server's document as a whole.
	WriteThrough bool
}

// ServerConfig holds sync server configuration.
type ServerConfig struct {
	Port          string        // Server port (default: 3001)
	ReadTimeout   time.Duration // HTTP read timeout (default: 60s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 120s)
	MaxBodyBytes  int64         // Largest accepted document (default: 50 MiB)
	CORSOrigins   []string      // Allowed origins (default: *)
	PushPerMinute int           // POST /api/data rate per client IP (default: 60)
}

// Flags carries raw command-line values. Empty fields fall through to the environment.
type Flags struct {
	EnvFile       string
	Env           string
	LogLevel      string
	LogFile       string
	DataPath      string
	LocalQuota    string
	RemoteURL     string
	RemoteTimeout string
	WriteThrough  string
	Port          string
	ReadTimeout   string
	WriteTimeout  string
	IdleTimeout   string
	MaxBodyBytes  string
	CORSOrigins   string
	PushPerMinute string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	var f Flags
	flag.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.LogFile, "log-file", "", "Rotating log file (default: stdout)")
	flag.StringVar(&f.DataPath, "data-path", "", "Base path for on-disk stores")
	flag.StringVar(&f.Port, "port", "", "Server port (default: 3001)")
	flag.StringVar(&f.ReadTimeout, "read-timeout", "", "HTTP read timeout (default: 60s)")
	flag.StringVar(&f.WriteTimeout, "write-timeout", "", "HTTP write timeout (default: 60s)")
	flag.StringVar(&f.IdleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 120s)")
	flag.StringVar(&f.MaxBodyBytes, "max-body-bytes", "", "Largest accepted document in bytes (default: 52428800)")
	flag.StringVar(&f.CORSOrigins, "cors-origins", "", "Comma-separated allowed origins (default: *)")
	flag.StringVar(&f.PushPerMinute, "push-per-minute", "", "Document pushes allowed per client IP per minute (default: 60)")
	flag.StringVar(&f.EnvFile, "env-file", ".env", "Path to .env file")

	flag.Parse()

	return Build(f)
}

// Build resolves flags against the environment, the .env file and defaults.
// The desk CLI fills Flags from its own command-line parser and calls Build directly.
func Build(f Flags) (*Config, error) {
	envFile := f.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(f.LogLevel, "LOG_LEVEL", "info"),
			File:  getConfigValue(f.LogFile, "LOG_FILE", ""),
		},
		Storage: StorageConfig{
			DataPath:        getConfigValue(f.DataPath, "DATA_PATH", ""),
			LocalQuotaBytes: getInt64ConfigValue(f.LocalQuota, "LOCAL_QUOTA_BYTES", 5<<20),
		},
		Remote: RemoteConfig{
			URL:          strings.TrimRight(getConfigValue(f.RemoteURL, "REMOTE_URL", ""), "/"),
			WriteThrough: getBoolConfigValue(f.WriteThrough, "SYNC_WRITE_THROUGH", false),
		},
		Server: ServerConfig{
			Port:          getConfigValue(f.Port, "SERVER_PORT", "3001"),
			MaxBodyBytes:  getInt64ConfigValue(f.MaxBodyBytes, "MAX_BODY_BYTES", 50<<20),
			CORSOrigins:   splitList(getConfigValue(f.CORSOrigins, "CORS_ORIGINS", "*")),
			PushPerMinute: int(getInt64ConfigValue(f.PushPerMinute, "PUSH_PER_MINUTE", 60)),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		dest                   *time.Duration
	}{
		{f.RemoteTimeout, "REMOTE_TIMEOUT", "10s", &cfg.Remote.Timeout},
		{f.ReadTimeout, "SERVER_READ_TIMEOUT", "60s", &cfg.Server.ReadTimeout},
		{f.WriteTimeout, "SERVER_WRITE_TIMEOUT", "60s", &cfg.Server.WriteTimeout},
		{f.IdleTimeout, "SERVER_IDLE_TIMEOUT", "120s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Storage.LocalQuotaBytes < 0 {
		return errors.New("LOCAL_QUOTA_BYTES cannot be negative")
	}
	if c.Remote.Timeout <= 0 {
		return errors.New("REMOTE_TIMEOUT must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	if c.Server.PushPerMinute <= 0 {
		return errors.New("PUSH_PER_MINUTE must be positive")
	}

	// Remote.URL can be empty: the desk then always runs in local mode.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/EditorialDesk.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "EditorialDesk"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int64
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
