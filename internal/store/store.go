package store

import (
	"context"

	"github.com/pulseboard/pulseboard/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (mongo, postgres).
type Store interface {
	Members() Members
	Identifiers() Identifiers
	Activities() Activities
}

type Members interface {
	Create(ctx context.Context, m *model.Member) (*model.Member, error)
	Get(ctx context.Context, memberID string) (*model.Member, error)
	List(ctx context.Context) ([]*model.Member, error)
	// Rename updates the member's display name and propagates it to every
	// identifier row owned by the member, keeping the denormalized
	// member_name in sync.
	Rename(ctx context.Context, memberID, name string) (*model.Member, error)
	// Delete removes the member and cascades to its identifier rows.
	Delete(ctx context.Context, memberID string) error
}

type Identifiers interface {
	// List is the full scan the mapping index is built from. Expected
	// cardinality is low thousands; it runs once per cache rebuild.
	List(ctx context.Context) ([]*model.Identifier, error)
	ListByMember(ctx context.Context, memberID string) ([]*model.Identifier, error)
	Create(ctx context.Context, id *model.Identifier) (*model.Identifier, error)
	// Upsert replaces the row matching (member_id, source, type) in place,
	// or inserts when none exists.
	Upsert(ctx context.Context, id *model.Identifier) (*model.Identifier, error)
	Delete(ctx context.Context, identifierID string) error
}

type Activities interface {
	// Insert is used by collectors; the service itself never writes activity.
	Insert(ctx context.Context, rec *model.RawActivity) error
	// ListBySource returns raw documents matching the filter, sorted by the
	// source's native timestamp descending. limit <= 0 means the backend's
	// own cap.
	ListBySource(ctx context.Context, src model.Source, f model.ActivityFilter, limit int) ([]*model.RawActivity, error)
}
