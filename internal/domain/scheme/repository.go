package scheme

import "context"

// ListFilter narrows List; zero values mean "any".
type ListFilter struct {
	Status    Status
	CreatedBy string
	Limit     int
	Offset    int
}

type Repository interface {
	Create(ctx context.Context, s *Scheme) error
	GetBySchemeID(ctx context.Context, schemeID string) (*Scheme, error)
	// Lock the row for the rest of the surrounding transaction.
	GetBySchemeIDForUpdate(ctx context.Context, schemeID string) (*Scheme, error)
	List(ctx context.Context, f ListFilter) ([]Scheme, error)
	CountByStatus(ctx context.Context, createdBy string) (map[Status]int64, error)
	// Save persists s only if its stored version still matches; bumps s.Version.
	Save(ctx context.Context, s *Scheme) error
	Delete(ctx context.Context, s *Scheme) error
}
