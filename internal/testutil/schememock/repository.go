package schememock

import (
	"context"

	domain "chitfund-backend/internal/domain/scheme"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-ops; reads default to context.Canceled.
type Repo struct {
	CreateFn                 func(ctx context.Context, s *domain.Scheme) error
	GetBySchemeIDFn          func(ctx context.Context, schemeID string) (*domain.Scheme, error)
	GetBySchemeIDForUpdateFn func(ctx context.Context, schemeID string) (*domain.Scheme, error)
	ListFn                   func(ctx context.Context, f domain.ListFilter) ([]domain.Scheme, error)
	CountByStatusFn          func(ctx context.Context, createdBy string) (map[domain.Status]int64, error)
	SaveFn                   func(ctx context.Context, s *domain.Scheme) error
	DeleteFn                 func(ctx context.Context, s *domain.Scheme) error
}

func (m *Repo) Create(ctx context.Context, s *domain.Scheme) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetBySchemeID(ctx context.Context, schemeID string) (*domain.Scheme, error) {
	if m.GetBySchemeIDFn != nil {
		return m.GetBySchemeIDFn(ctx, schemeID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetBySchemeIDForUpdate(ctx context.Context, schemeID string) (*domain.Scheme, error) {
	if m.GetBySchemeIDForUpdateFn != nil {
		return m.GetBySchemeIDForUpdateFn(ctx, schemeID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Scheme, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) CountByStatus(ctx context.Context, createdBy string) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, createdBy)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, s *domain.Scheme) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, s)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, s *domain.Scheme) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, s)
	}
	return nil
}
