package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/blueshirts/cofi/internal/config"
	"github.com/blueshirts/cofi/internal/source"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Error("unknown backend type should be invalid")
	}
}

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		Settings:      config.Settings{URL: "https://api.example.com", Token: "app-token"},
		Backend:       "api",
		UID:           7,
		HTTPTimeout:   30 * time.Second,
		CredentialTTL: 15 * time.Minute,
		SQLiteDBPath:  "/tmp/cofi.db",
	}

	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != APIBackend {
		t.Errorf("Type = %s, want api", cfg.Type)
	}
	if cfg.APIBaseURL != "https://api.example.com" || cfg.AppToken != "app-token" {
		t.Errorf("API settings not carried over: %+v", cfg)
	}
	if cfg.UID != 7 {
		t.Errorf("UID = %d, want 7", cfg.UID)
	}
}

func TestFromAppConfig_Invalid(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}
	if _, err := FromAppConfig(&config.Config{Backend: "postgres"}); err == nil {
		t.Error("FromAppConfig() should reject unknown backend types")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid api",
			cfg:  Config{Type: APIBackend, APIBaseURL: "https://api.example.com", AppToken: "t"},
		},
		{
			name:    "api without url",
			cfg:     Config{Type: APIBackend, AppToken: "t"},
			wantErr: true,
		},
		{
			name:    "api without token",
			cfg:     Config{Type: APIBackend, APIBaseURL: "https://api.example.com"},
			wantErr: true,
		},
		{
			name: "valid cache",
			cfg:  Config{Type: CacheBackend, SQLiteDBPath: "/tmp/x.db", UID: 1},
		},
		{
			name:    "cache without path",
			cfg:     Config{Type: CacheBackend, UID: 1},
			wantErr: true,
		},
		{
			name:    "cache without uid",
			cfg:     Config{Type: CacheBackend, SQLiteDBPath: "/tmp/x.db"},
			wantErr: true,
		},
		{
			name: "memory needs nothing",
			cfg:  Config{Type: MemoryBackend},
		},
		{
			name:    "unknown type",
			cfg:     Config{Type: "postgres"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	factory := NewFactory(nil)
	ctx := context.Background()

	result, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}

	creds, err := result.Backend.Login(ctx, "demo", "demo", "token")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	transactions, err := result.Backend.Transactions(ctx, creds)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(transactions) == 0 {
		t.Error("memory backend should serve the fixture history")
	}
}

func TestCreateBackend_Cache(t *testing.T) {
	factory := NewFactory(nil)
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cofi.db")

	result, err := factory.CreateBackend(ctx, Config{Type: CacheBackend, SQLiteDBPath: dbPath, UID: 9})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer result.Cleanup()

	creds, err := result.Backend.Login(ctx, "demo", "demo", "token")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if creds.UID != 9 {
		t.Errorf("cache login UID = %d, want the configured uid", creds.UID)
	}

	transactions, err := result.Backend.Transactions(ctx, creds)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("fresh cache should be empty, got %d transactions", len(transactions))
	}
}

func TestLocalAuthenticator_MissingCredentials(t *testing.T) {
	auth := localAuthenticator{uid: 1}

	_, err := auth.Login(context.Background(), "", "", "token")
	if !errors.Is(err, source.ErrMissingCredentials) {
		t.Errorf("Login() error = %v, want ErrMissingCredentials", err)
	}
}
