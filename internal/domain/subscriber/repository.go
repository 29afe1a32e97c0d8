package subscriber

import "context"

type Repository interface {
	// CreateBatch inserts all rows or none (DB uniqueness guards scheme+ticket).
	CreateBatch(ctx context.Context, subs []Subscriber) error
	ListBySchemeRefID(ctx context.Context, schemeRefID uint64) ([]Subscriber, error)
	DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error
}
