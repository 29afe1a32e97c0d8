package document

import "context"

type Repository interface {
	Create(ctx context.Context, d *Document) error
	ListBySchemeRefID(ctx context.Context, schemeRefID uint64) ([]Document, error)
	DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error
}
