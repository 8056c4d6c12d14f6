package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/blueshirts/cofi/internal/amqp"
	"github.com/blueshirts/cofi/internal/core"
	applog "github.com/blueshirts/cofi/internal/log"
	"github.com/blueshirts/cofi/internal/source"
)

// SyncPublisher announces completed cache refreshes. Satisfied by *amqp.Client.
type SyncPublisher interface {
	PublishSync(ctx context.Context, msg *amqp.SyncMessage) error
}

// CacheStore is the write side of the offline transaction cache. Satisfied by
// *storage.Repository.
type CacheStore interface {
	ReplaceTransactions(ctx context.Context, uid int64, transactions []core.Transaction) error
	ReplaceAccounts(ctx context.Context, uid int64, accounts []core.Account) error
}

// SyncServiceConfig holds configuration for the sync service.
type SyncServiceConfig struct {
	// User, Pass, AppToken authenticate against the upstream API each cycle.
	User     string
	Pass     string
	AppToken string

	// Interval is how often to refresh the cache (default: 1h).
	Interval time.Duration
}

// DefaultSyncServiceConfig returns sensible defaults
func DefaultSyncServiceConfig() SyncServiceConfig {
	return SyncServiceConfig{Interval: time.Hour}
}

// SyncService periodically mirrors the upstream transaction history into the
// local cache so reports can run offline.
type SyncService struct {
	auth     source.Authenticator
	txns     source.TransactionSource
	accounts source.AccountSource
	store    CacheStore

	publisher SyncPublisher
	config    SyncServiceConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncService(
	auth source.Authenticator,
	txns source.TransactionSource,
	accounts source.AccountSource,
	store CacheStore,
	config SyncServiceConfig,
) *SyncService {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &SyncService{
		auth:     auth,
		txns:     txns,
		accounts: accounts,
		store:    store,
		config:   config,
	}
}

// WithPublisher attaches a refresh announcer.
func (s *SyncService) WithPublisher(p SyncPublisher) *SyncService {
	s.publisher = p
	return s
}

// Start begins the refresh loop. Returns an error if already running.
func (s *SyncService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sync service is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Sync service started",
		"interval", s.config.Interval,
		"user", s.config.User)

	return nil
}

// Stop gracefully stops the service and waits for completion.
func (s *SyncService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.doneCh:
		slog.InfoContext(ctx, "Sync service stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync service stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	return nil
}

// IsRunning returns whether the service is currently running
func (s *SyncService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *SyncService) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Refresh immediately on startup
	if err := s.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Cache refresh failed", "error", err)
	}

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Cache refresh failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single refresh cycle: authenticate, fetch accounts and
// transactions concurrently, then replace the cached copies.
func (s *SyncService) RunOnce(ctx context.Context) error {
	creds, err := s.auth.Login(ctx, s.config.User, s.config.Pass, s.config.AppToken)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var (
		transactions []core.Transaction
		accounts     []core.Account
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.txns.Transactions(gctx, creds)
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.Accounts(gctx, creds)
		if err != nil {
			return fmt.Errorf("fetch accounts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.store.ReplaceTransactions(ctx, creds.UID, transactions); err != nil {
		return fmt.Errorf("replace cached transactions: %w", err)
	}
	if err := s.store.ReplaceAccounts(ctx, creds.UID, accounts); err != nil {
		return fmt.Errorf("replace cached accounts: %w", err)
	}

	slog.InfoContext(ctx, "Cache refreshed",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldUID, creds.UID,
		applog.FieldTxnCount, len(transactions),
		applog.FieldAccounts, len(accounts))

	if s.publisher != nil {
		msg := amqp.NewSyncMessage(creds.UID, len(transactions), len(accounts), uuid.NewString())
		if err := s.publisher.PublishSync(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				applog.FieldOperation, applog.OpPublish,
				applog.FieldUID, creds.UID,
				applog.FieldError, err)
			// Don't fail the cycle - the cache refresh succeeded
		}
	}

	return nil
}
