package listingmock

import (
	"context"

	domain "chitfund-backend/internal/domain/listing"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	UpsertFn              func(ctx context.Context, l *domain.Listing) error
	GetBySchemeRefIDFn    func(ctx context.Context, schemeRefID uint64) (*domain.Listing, error)
	ListPublicFn          func(ctx context.Context, limit, offset int) ([]domain.Listing, error)
	DeleteBySchemeRefIDFn func(ctx context.Context, schemeRefID uint64) error
}

func (m *Repo) Upsert(ctx context.Context, l *domain.Listing) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetBySchemeRefID(ctx context.Context, schemeRefID uint64) (*domain.Listing, error) {
	if m.GetBySchemeRefIDFn != nil {
		return m.GetBySchemeRefIDFn(ctx, schemeRefID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListPublic(ctx context.Context, limit, offset int) ([]domain.Listing, error) {
	if m.ListPublicFn != nil {
		return m.ListPublicFn(ctx, limit, offset)
	}
	return nil, context.Canceled
}

func (m *Repo) DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error {
	if m.DeleteBySchemeRefIDFn != nil {
		return m.DeleteBySchemeRefIDFn(ctx, schemeRefID)
	}
	return nil
}
