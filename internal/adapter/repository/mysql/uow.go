package mysql

import (
	"context"

	"chitfund-backend/internal/domain/scheme"
	"chitfund-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Schemes:     &SchemeRepository{db: tx},
		Subscribers: &SubscriberRepository{db: tx},
		Documents:   &DocumentRepository{db: tx},
		Listings:    &ListingRepository{db: tx},
	}
}

// NewRepos binds every repository to db, for reads outside a transaction.
func NewRepos(db *gorm.DB) uow.Repos { return reposFor(db) }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinSchemeTx(ctx context.Context, schemeID string, fn func(r uow.Repos, s *scheme.Scheme) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the scheme row up-front to prevent races
		s, err := r.Schemes.GetBySchemeIDForUpdate(ctx, schemeID)
		if err != nil {
			return err
		}
		return fn(r, s)
	})
}
