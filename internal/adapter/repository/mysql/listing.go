package mysql

import (
	"context"
	"errors"

	listingDomain "chitfund-backend/internal/domain/listing"

	"gorm.io/gorm"
)

type ListingRepository struct{ db *gorm.DB }

func NewListingRepository(db *gorm.DB) *ListingRepository { return &ListingRepository{db: db} }

func (r *ListingRepository) Upsert(ctx context.Context, l *listingDomain.Listing) error {
	existing, err := r.GetBySchemeRefID(ctx, l.SchemeRefID)
	switch {
	case err == nil:
		l.ID = existing.ID
		l.ListingID = existing.ListingID
		return r.db.WithContext(ctx).Save(l).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(l).Error
	default:
		return err
	}
}

func (r *ListingRepository) GetBySchemeRefID(ctx context.Context, schemeRefID uint64) (*listingDomain.Listing, error) {
	var out listingDomain.Listing
	res := r.db.WithContext(ctx).Where("scheme_ref_id = ?", schemeRefID).First(&out)
	return &out, res.Error
}

func (r *ListingRepository) ListPublic(ctx context.Context, limit, offset int) ([]listingDomain.Listing, error) {
	q := r.db.WithContext(ctx).Where("is_public = ?", true).Order("published_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []listingDomain.Listing
	return out, q.Find(&out).Error
}

func (r *ListingRepository) DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error {
	return r.db.WithContext(ctx).
		Where("scheme_ref_id = ?", schemeRefID).
		Delete(&listingDomain.Listing{}).Error
}
