// Package memory provides a deterministic in-memory transaction source.
// It backs unit tests and the "memory" backend for running reports without
// network access.
package memory

import (
	"context"
	"sync"

	"github.com/blueshirts/cofi/internal/core"
	"github.com/blueshirts/cofi/internal/source"
)

type Store struct {
	mu           sync.Mutex
	creds        source.Credentials
	transactions []core.Transaction
	accounts     []core.Account
}

// Ensure interface conformance
var (
	_ source.Authenticator     = (*Store)(nil)
	_ source.TransactionSource = (*Store)(nil)
	_ source.AccountSource     = (*Store)(nil)
)

// New creates a store serving the given fixtures. The transactions are
// assumed to be in ascending transaction-time order, same as the upstream
// API contract.
func New(transactions []core.Transaction, accounts []core.Account) *Store {
	return &Store{
		creds:        source.Credentials{UID: 1, Token: "memory-token", APIToken: "memory-api-token"},
		transactions: transactions,
		accounts:     accounts,
	}
}

// Login accepts any non-empty credential pair and returns a fixed session.
func (s *Store) Login(_ context.Context, user, pass, _ string) (source.Credentials, error) {
	if user == "" || pass == "" {
		return source.Credentials{}, source.ErrMissingCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

// Transactions returns a copy of the fixture history.
func (s *Store) Transactions(_ context.Context, _ source.Credentials) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

// Accounts returns a copy of the fixture accounts.
func (s *Store) Accounts(_ context.Context, _ source.Credentials) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

// SetTransactions replaces the fixture history.
func (s *Store) SetTransactions(transactions []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]core.Transaction(nil), transactions...)
}
