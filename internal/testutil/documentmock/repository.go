package documentmock

import (
	"context"

	domain "chitfund-backend/internal/domain/document"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn              func(ctx context.Context, d *domain.Document) error
	ListBySchemeRefIDFn   func(ctx context.Context, schemeRefID uint64) ([]domain.Document, error)
	DeleteBySchemeRefIDFn func(ctx context.Context, schemeRefID uint64) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListBySchemeRefID(ctx context.Context, schemeRefID uint64) ([]domain.Document, error) {
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
