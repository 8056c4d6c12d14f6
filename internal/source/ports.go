// Package source defines the inbound ports for transaction data. The
// aggregation engine consumes these interfaces; implementations live in the
// api (HTTP), memory (fake), and storage (offline cache) packages.
package source

import (
	"context"
	"errors"

	"github.com/blueshirts/cofi/internal/core"
)

var (
	// ErrMissingCredentials reports a login attempted without user or pass.
	// Surfaced immediately; no I/O is attempted.
	ErrMissingCredentials = errors.New("user and pass are required")

	// ErrAuthRejected reports that the upstream rejected the credentials.
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrUpstream reports a transport failure, a non-2xx response, or an
	// application-level error code from the upstream API.
	ErrUpstream = errors.New("upstream error")
)

// Credentials are the common args attached to every authenticated call.
type Credentials struct {
	UID      int64  `json:"uid"`
	Token    string `json:"token"`
	APIToken string `json:"api-token"`
}

// Ports for transaction data providers.
type (
	// Authenticator obtains a fresh session for a user. Required before any
	// data fetch.
	Authenticator interface {
		Login(ctx context.Context, user, pass, appToken string) (Credentials, error)
	}

	// TransactionSource supplies a user's complete transaction history,
	// ascending by transaction time. The ordering is assumed by the
	// aggregation engine, not verified here.
	TransactionSource interface {
		Transactions(ctx context.Context, creds Credentials) ([]core.Transaction, error)
	}

	// AccountSource supplies the user's account list.
	AccountSource interface {
		Accounts(ctx context.Context, creds Credentials) ([]core.Account, error)
	}
)
