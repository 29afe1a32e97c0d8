package uow

import (
	"context"

	"chitfund-backend/internal/domain/document"
	"chitfund-backend/internal/domain/listing"
	"chitfund-backend/internal/domain/scheme"
	"chitfund-backend/internal/domain/subscriber"
)

type Repos struct {
	Schemes     scheme.Repository
	Subscribers subscriber.Repository
	Documents   document.Repository
	Listings    listing.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock scheme row first, then pass it in
	WithinSchemeTx(ctx context.Context, schemeID string, fn func(r Repos, s *scheme.Scheme) error) error
}
