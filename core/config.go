package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the API process.
type Config struct {
	Port              string   // HTTP listen port (e.g., "8080")
	GinMode           string   // gin mode: debug/release/test
	LogDir            string   // Directory to write application logs
	LogToFile         bool     // whether to tee logs into LogDir in addition to stdout
	RedisURL          string   // Redis URL (redis://host:port/db) for pending tokens and sessions
	DatabaseURL       string   // PostgreSQL DSN for admin settings; empty -> settings endpoints unavailable
	AdminUsername     string   // the single admin principal
	AdminPasswordHash string   // legacy SHA-1 hex or bcrypt hash; empty -> login unavailable
	TOTPSecret        string   // base32 shared secret; empty -> second factor unavailable
	AllowedOrigins    []string // allowed origins for CORS
	TrustedProxies    []string // proxies whose forwarding headers are trusted for client IP
}

// fileConfig mirrors Config for the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	Port     string `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogDir   string `yaml:"log_dir"`
	RedisURL string `yaml:"redis_url"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Admin struct {
		Username     string `yaml:"username"`
		PasswordHash string `yaml:"password_hash"`
		TOTPSecret   string `yaml:"totp_secret"`
	} `yaml:"admin"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Load populates Config from environment variables, then fills the gaps from the YAML
// file named by CONFIG_FILE (if any), then applies defaults.
func Load() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		fc = loaded
	}

	passwordHash, err := secretFromEnv("ADMIN_PASSWORD_HASH")
	if err != nil {
		return Config{}, err
	}
	totpSecret, err := secretFromEnv("TOTP_SECRET")
	if err != nil {
		return Config{}, err
	}

	allowed := parseCSV(os.Getenv("ALLOWED_ORIGINS"))
	if len(allowed) == 0 {
		allowed = fc.AllowedOrigins
	}
	proxies := parseCSV(os.Getenv("TRUSTED_PROXIES"))
	if len(proxies) == 0 {
		proxies = fc.TrustedProxies
	}

	return Config{
		Port:              firstNonEmpty(os.Getenv("PORT"), fc.Port, "8080"),
		GinMode:           firstNonEmpty(os.Getenv("GIN_MODE"), fc.GinMode, "release"),
		LogDir:            firstNonEmpty(os.Getenv("LOG_DIR"), fc.LogDir, "/var/log/riverdash"),
		LogToFile:         boolFromEnv("LOG_TO_FILE", true),
		RedisURL:          firstNonEmpty(os.Getenv("REDIS_URL"), fc.RedisURL, "redis://localhost:6379/0"),
		DatabaseURL:       firstNonEmpty(os.Getenv("DATABASE_URL"), fc.Database.URL),
		AdminUsername:     firstNonEmpty(os.Getenv("ADMIN_USERNAME"), fc.Admin.Username, DefaultAdminUsername),
		AdminPasswordHash: strings.TrimSpace(firstNonEmpty(passwordHash, fc.Admin.PasswordHash)),
		TOTPSecret:        strings.TrimSpace(firstNonEmpty(totpSecret, fc.Admin.TOTPSecret)),
		AllowedOrigins:    allowed,
		TrustedProxies:    proxies,
	}, nil
}

func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// secretFromEnv reads name, falling back to the contents of the file named by name_FILE.
func secretFromEnv(name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	path := os.Getenv(name + "_FILE")
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s_FILE %s: %w", name, path, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// boolFromEnv reads a boolean from env var name, falling back to defaultVal when empty or invalid.
func boolFromEnv(name string, defaultVal bool) bool {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// parseCSV splits comma-separated list and trims spaces; empty entries are skipped.
func parseCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
