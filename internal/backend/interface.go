package backend

import (
	"context"

	"casalgastos/internal/core"
)

// ProfileReader resolves an identity to its profile.
type ProfileReader interface {
	// GetProfile returns core.ErrNotFound when the identity has no profile yet.
	GetProfile(ctx context.Context, userID string) (core.Profile, error)
}

// CategoryReader lists a family's categories ordered by name.
type CategoryReader interface {
	ListCategories(ctx context.Context, familyID string) ([]core.Category, error)
}

// TransactionReader lists a family's transactions in a month window, newest first.
type TransactionReader interface {
	ListTransactions(ctx context.Context, familyID string, w core.MonthWindow) ([]core.Transaction, error)
}

// TransactionWriter inserts and deletes transactions scoped to a family.
type TransactionWriter interface {
	// InsertTransaction returns the stored row with ID and CreatedAt set.
	// It fails with core.ErrAccessDenied when the category belongs to another family.
	InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	// DeleteTransaction fails with core.ErrNotFound when no row matched.
	DeleteTransaction(ctx context.Context, familyID, id string) error
}

// Provisioner creates the profile and family of a new identity.
type Provisioner interface {
	EnsureProfileAndFamily(ctx context.Context, userID string) error
}

// Backend represents a unified backend interface that provides all necessary operations
type Backend interface {
	ProfileReader
	CategoryReader
	TransactionReader
	TransactionWriter
	Provisioner
	Ping(ctx context.Context) error
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

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
