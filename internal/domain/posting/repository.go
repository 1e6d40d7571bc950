package posting

import (
	"context"
	"time"

	"pgcledger/internal/core/id"
)

// JournalFilter selects entries for the journal report.
type JournalFilter struct {
	From       *time.Time
	To         *time.Time
	Kind       EntryKind
	SourceType SourceType
	SourceID   *id.ID
}

// Repository persists journal entries. Entries are append-only.
type Repository interface {
	// FindBySource returns NotFound when the event has no entry.
	FindBySource(ctx context.Context, tenantID id.ID, key Key) (*Entry, error)

	// Create writes the header and all lines atomically; a second entry
	// for the same key fails with Duplicate.
	Create(ctx context.Context, e *Entry) error

	GetByID(ctx context.Context, tenantID, entryID id.ID) (*Entry, error)

	// List returns entries with their lines, ordered by date then number.
	List(ctx context.Context, tenantID id.ID, filter JournalFilter) ([]*Entry, error)
}

// Auditor records an immutable snapshot of each posted entry.
type Auditor interface {
	LogPosting(ctx context.Context, e *Entry) error
}
