package subscribermock

import (
	"context"

	domain "chitfund-backend/internal/domain/subscriber"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateBatchFn         func(ctx context.Context, subs []domain.Subscriber) error
	ListBySchemeRefIDFn   func(ctx context.Context, schemeRefID uint64) ([]domain.Subscriber, error)
	DeleteBySchemeRefIDFn func(ctx context.Context, schemeRefID uint64) error
}

func (m *Repo) CreateBatch(ctx context.Context, subs []domain.Subscriber) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, subs)
	}
	return nil
}

// ListBySchemeRefID defaults to an empty list so DTO assembly works without setup.
func (m *Repo) ListBySchemeRefID(ctx context.Context, schemeRefID uint64) ([]domain.Subscriber, error) {
	if m.ListBySchemeRefIDFn != nil {
		return m.ListBySchemeRefIDFn(ctx, schemeRefID)
	}
	return nil, nil
}

func (m *Repo) DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error {
	if m.DeleteBySchemeRefIDFn != nil {
		return m.DeleteBySchemeRefIDFn(ctx, schemeRefID)
	}
	return nil
}
