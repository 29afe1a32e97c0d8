package mysql

import (
	"context"

	subscriberDomain "chitfund-backend/internal/domain/subscriber"

	"gorm.io/gorm"
)

type SubscriberRepository struct{ db *gorm.DB }

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) CreateBatch(ctx context.Context, subs []subscriberDomain.Subscriber) error {
	if len(subs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&subs).Error
}

func (r *SubscriberRepository) ListBySchemeRefID(ctx context.Context, schemeRefID uint64) ([]subscriberDomain.Subscriber, error) {
	var out []subscriberDomain.Subscriber
	err := r.db.WithContext(ctx).
		Where("scheme_ref_id = ?", schemeRefID).
		Order("ticket_number ASC").
		Find(&out).Error
	return out, err
}

func (r *SubscriberRepository) DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error {
	return r.db.WithContext(ctx).
		Where("scheme_ref_id = ?", schemeRefID).
		Delete(&subscriberDomain.Subscriber{}).Error
}
