package ports

import (
	"context"
	"time"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// RoleRepository defines persistence for role records, keyed by remote id.
// The repository is the only writer of the role table.
type RoleRepository interface {
	// FindByRemoteID returns the record for a remote identity, or
	// domain.ErrNotFound when none exists.
	FindByRemoteID(ctx context.Context, remoteID int) (*domain.RoleRecord, error)

	// Count returns the number of role records in the store.
	Count(ctx context.Context) (int64, error)

	// Create inserts a new record. The remote id is unique.
	Create(ctx context.Context, rec *domain.RoleRecord) error

	// UpdateLogin refreshes last_login and the custom-field snapshot,
	// leaving role and conversion count untouched.
	UpdateLogin(ctx context.Context, remoteID int, lastLogin time.Time, customFields map[string]string) error

	// UpdateRole sets the local role. Returns domain.ErrNotFound when the
	// identity has no record.
	UpdateRole(ctx context.Context, remoteID int, role string) error

	// IncrementConversions bumps conversion_count by one.
	IncrementConversions(ctx context.Context, remoteID int) error

	// List returns all role records, most recently created first.
	List(ctx context.Context) ([]*domain.RoleRecord, error)
}

// AuditRepository appends entries to the authentication audit trail.
// Failures are non-fatal to the operation being audited.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}
