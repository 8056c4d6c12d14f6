package backend

import (
	"fmt"
	"time"

	"github.com/blueshirts/cofi/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// API specific
	APIBaseURL    string
	AppToken      string
	HTTPTimeout   time.Duration
	CredentialTTL time.Duration

	// Cache specific
	SQLiteDBPath string

	// UID scopes the cache and memory backends to one user's data.
	UID int64
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.Backend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.Backend)
	}

	return Config{
		Type: backendType,

		APIBaseURL:    appConfig.Settings.URL,
		AppToken:      appConfig.Settings.Token,
		HTTPTimeout:   appConfig.HTTPTimeout,
		CredentialTTL: appConfig.CredentialTTL,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		UID:          appConfig.UID,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case APIBackend:
		if c.APIBaseURL == "" {
			return fmt.Errorf("API base URL is required for api backend")
		}
		if c.AppToken == "" {
			return fmt.Errorf("application token is required for api backend")
		}

	case CacheBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for cache backend")
		}
		if c.UID == 0 {
			return fmt.Errorf("uid is required for cache backend")
		}

	case MemoryBackend:
		// Memory backend doesn't require additional configuration
	}

	return nil
}
