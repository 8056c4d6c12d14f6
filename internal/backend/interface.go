package backend

import (
	"context"

	"github.com/blueshirts/cofi/internal/source"
)

// Backend bundles the source ports a report run needs: a login step plus
// transaction and account access.
type Backend interface {
	source.Authenticator
	source.TransactionSource
	source.AccountSource
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	// APIBackend fetches live data from the upstream HTTP API.
	APIBackend BackendType = "api"

	// CacheBackend reads the local SQLite mirror maintained by the sync
	// worker. No network access.
	CacheBackend BackendType = "cache"

	// MemoryBackend serves a built-in fixture history. Demos and tests.
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case APIBackend, CacheBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{APIBackend, CacheBackend, MemoryBackend}
}
