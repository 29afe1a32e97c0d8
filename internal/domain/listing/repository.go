package listing

import "context"

type Repository interface {
	// Upsert replaces the listing for l.SchemeRefID, keeping its ListingID.
	Upsert(ctx context.Context, l *Listing) error
	GetBySchemeRefID(ctx context.Context, schemeRefID uint64) (*Listing, error)
	ListPublic(ctx context.Context, limit, offset int) ([]Listing, error)
	DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error
}
