package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blueshirts/cofi/internal/core"
	"github.com/blueshirts/cofi/internal/source"
	"github.com/blueshirts/cofi/internal/source/api"
	"github.com/blueshirts/cofi/internal/source/memory"
	"github.com/blueshirts/cofi/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case APIBackend:
		return f.createAPIBackend(config)
	case CacheBackend:
		return f.createCacheBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createAPIBackend(config Config) (*BackendResult, error) {
	client := api.NewClient(config.APIBaseURL, config.AppToken, config.HTTPTimeout, config.CredentialTTL)

	f.logger.Info("Initialized API backend",
		"base_url", config.APIBaseURL,
		"http_timeout", config.HTTPTimeout)

	return &BackendResult{
		Backend: client,
		Cleanup: nil, // No cleanup needed for the HTTP client
	}, nil
}

func (f *DefaultFactory) createCacheBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite cache: %w", err)
	}

	f.logger.Info("Initialized cache backend",
		"db_path", config.SQLiteDBPath,
		"uid", config.UID)

	return &BackendResult{
		Backend: &cacheBackend{
			localAuthenticator: localAuthenticator{uid: config.UID},
			Repository:         repo,
		},
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.New(fixtureTransactions(), fixtureAccounts())

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Backend: store,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

// cacheBackend pairs the SQLite mirror with a network-free login step.
type cacheBackend struct {
	localAuthenticator
	*storage.Repository
}

// localAuthenticator issues a session for the configured uid without touching
// the upstream API. Credentials are still required so the cache backend keeps
// the same calling convention as the live one.
type localAuthenticator struct {
	uid int64
}

func (a localAuthenticator) Login(_ context.Context, user, pass, appToken string) (source.Credentials, error) {
	if user == "" || pass == "" {
		return source.Credentials{}, source.ErrMissingCredentials
	}
	return source.Credentials{UID: a.uid, Token: "local-session", APIToken: appToken}, nil
}

// fixtureTransactions is the built-in history served by the memory backend.
func fixtureTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: "1415212800000-a1", Merchant: "Whole Foods", Amount: -8764, Time: "2014-10-01T12:00:00.000Z"},
		{ID: "1415212800000-a2", Merchant: "Krispy Kreme Donuts", Amount: -1053, Time: "2014-10-03T09:30:00.000Z"},
		{ID: "1415212800000-a3", Merchant: "CREDIT CARD PAYMENT", Amount: -30000, Time: "2014-10-05T10:00:00.000Z"},
		{ID: "1415212800000-a4", Merchant: "CC PAYMENT RECEIVED", Amount: 30000, Time: "2014-10-05T18:00:00.000Z"},
		{ID: "1415212800000-a5", Merchant: "Employer Payroll", Amount: 250000, Time: "2014-10-15T08:00:00.000Z"},
		{ID: "1415212800000-a6", Merchant: "DUNKIN #336784", Amount: -430, Time: "2014-11-02T08:15:00.000Z"},
		{ID: "1415212800000-a7", Merchant: "Blue Bottle Coffee", Amount: -525, Time: "2014-11-10T14:45:00.000Z"},
		{ID: "1415212800000-a8", Merchant: "Employer Payroll", Amount: 250000, Time: "2014-11-14T08:00:00.000Z"},
	}
}

func fixtureAccounts() []core.Account {
	return []core.Account{
		{ID: "nonce:comfy-cc/hdhehe", Name: "Credit Card", Balance: -30000},
		{ID: "nonce:comfy-checking/hdhehe", Name: "Checking", Balance: 481234},
	}
}
