package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrLimitReached is returned by CreateNoteWithinLimit when the tenant is
	// at its active-note cap.
	ErrLimitReached = errors.New("store: note limit reached")

	// ErrConflict is returned when a conditional update matched nothing.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, mongo)
// implement this. Sub-repositories are exposed as methods so a Tx hands out
// the same repos bound to the transaction.
type Store interface {
	Tenants() Tenants
	Users() Users
	Notes() Notes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Tenants interface {
	// CreateTenant inserts a tenant. A taken slug yields ErrAlreadyExists.
	CreateTenant(ctx context.Context, t domain.Tenant) error

	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (domain.Tenant, error)

	// UpgradeToPro moves a Free tenant to Pro with unlimited notes and
	// returns the updated record. A tenant that is not on Free yields
	// ErrConflict, a missing one ErrNotFound.
	UpgradeToPro(ctx context.Context, id string) (domain.Tenant, error)

	// DeleteTenant removes a tenant that has no users yet. It undoes a
	// registration whose admin could not be created. A tenant with users
	// yields ErrConflict, a missing one ErrNotFound.
	DeleteTenant(ctx context.Context, id string) error

	// IsEmpty returns true if there are no tenants.
	IsEmpty(ctx context.Context) (bool, error)
}

type Users interface {
	// CreateUser inserts a user. A taken email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up a normalized email address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUsersByIDs returns the users of tenantID among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, tenantID string, ids []string) (map[string]domain.User, error)

	// ListActiveUsers returns the active users of a tenant, oldest first.
	ListActiveUsers(ctx context.Context, tenantID string) ([]domain.User, error)

	// DeactivateUser sets is_active false for a user of tenantID.
	DeactivateUser(ctx context.Context, tenantID, userID string) error
}

type Notes interface {
	// CreateNoteWithinLimit inserts n unless its tenant is at its cap of
	// non-archived notes, in which case it returns ErrLimitReached.
	CreateNoteWithinLimit(ctx context.Context, n domain.Note) error

	// GetNote fetches a note by id inside a tenant.
	GetNote(ctx context.Context, tenantID, id string) (domain.Note, error)

	// ListNotes returns one page of matches, newest first, and the total
	// number of matches.
	ListNotes(ctx context.Context, f domain.NoteFilter) ([]domain.Note, int, error)

	// UpdateNote replaces the mutable fields of n (title, content, tags,
	// priority, archived, updated_at).
	UpdateNote(ctx context.Context, n domain.Note) error

	// RestoreNoteWithinLimit un-archives a note, subject to the same cap as
	// CreateNoteWithinLimit, and applies the other mutable fields of n.
	RestoreNoteWithinLimit(ctx context.Context, n domain.Note) error

	DeleteNote(ctx context.Context, tenantID, id string) error

	// CountActiveNotes counts the non-archived notes of a tenant.
	CountActiveNotes(ctx context.Context, tenantID string) (int, error)
}
