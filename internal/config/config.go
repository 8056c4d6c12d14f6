package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultSettingsPath is where the settings document is looked up when the
// COFI_SETTINGS environment variable is not set.
const DefaultSettingsPath = "conf/settings.json"

// Default merchant exclusion set for the donut filter.
var defaultDonutMerchants = []string{"KRISPY KREME DONUTS", "DUNKIN #336784"}

// Settings is the persisted settings document: the base API URL, the default
// application token, and fallback credentials used by integration tests and
// the sync worker. Its absence is fatal at startup.
type Settings struct {
	URL   string `json:"url"`
	Token string `json:"token"`
	User  string `json:"user,omitempty"`
	Pass  string `json:"pass,omitempty"`
}

type Config struct {
	Settings Settings

	// DonutMerchants is the exclusion set applied when a report is run with
	// the donut filter.
	DonutMerchants []string

	// Backend selects the transaction source: api, cache, or memory.
	Backend string

	// UID scopes the offline backends to one user's cached data. The api
	// backend ignores it and uses the uid returned by login.
	UID int64

	// HTTPTimeout bounds each upstream API call.
	HTTPTimeout time.Duration

	// CredentialTTL bounds how long a cached session survives between logins.
	CredentialTTL time.Duration

	// SQLiteDBPath locates the local transaction cache.
	SQLiteDBPath string

	// AMQP (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional; empty spreadsheet ID disables it)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Sync worker
	SyncInterval time.Duration
}

// Load reads the settings document and applies environment overrides.
// A missing or unparseable settings file is an error; callers treat it as
// fatal and abort startup.
func Load(settingsPath string) (*Config, error) {
	if settingsPath == "" {
		settingsPath = getEnv("COFI_SETTINGS", DefaultSettingsPath)
	}

	raw, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings %s: %w", settingsPath, err)
	}
	var settings Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", settingsPath, err)
	}

	cfg := &Config{
		Settings: settings,

		DonutMerchants: getEnvList("COFI_DONUT_MERCHANTS", defaultDonutMerchants),
		Backend:        getEnv("COFI_BACKEND", "api"),
		UID:            getEnvInt64("COFI_UID", 1),
		HTTPTimeout:    getEnvDuration("COFI_HTTP_TIMEOUT", 30*time.Second),
		CredentialTTL:  getEnvDuration("COFI_CREDENTIAL_TTL", 15*time.Minute),
		SQLiteDBPath:   getEnv("COFI_DB_PATH", "./data/cofi.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "cofi"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "cofi_reports"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Reports"),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 30*time.Minute),
	}

	return cfg, nil
}

// Validate checks the configuration and returns all problems as one error.
func (c *Config) Validate() error {
	var problems []string

	if c.Settings.URL == "" {
		problems = append(problems, "settings: url is required")
	} else if u, err := url.Parse(c.Settings.URL); err != nil {
		problems = append(problems, fmt.Sprintf("settings: invalid url %q: %v", c.Settings.URL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("settings: invalid url scheme %q: must be http or https", u.Scheme))
	}
	if c.Settings.Token == "" {
		problems = append(problems, "settings: token is required")
	}

	switch c.Backend {
	case "api", "cache", "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid backend %q: must be one of api, cache, memory", c.Backend))
	}

	if len(c.DonutMerchants) == 0 {
		problems = append(problems, "donut merchant set cannot be empty")
	}

	if c.Backend == "cache" {
		if c.SQLiteDBPath == "" {
			problems = append(problems, "database path cannot be empty when using the cache backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create database directory %q: %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when an AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when an AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		problems = append(problems, "sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if c.HTTPTimeout < time.Second || c.HTTPTimeout > 5*time.Minute {
		problems = append(problems, fmt.Sprintf("invalid HTTP timeout %v: must be between 1s and 5m", c.HTTPTimeout))
	}
	if c.SyncInterval < time.Second || c.SyncInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be between 1s and 24h", c.SyncInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
