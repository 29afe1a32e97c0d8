package mysql

import (
	"context"

	documentDomain "chitfund-backend/internal/domain/document"

	"gorm.io/gorm"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *documentDomain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) ListBySchemeRefID(ctx context.Context, schemeRefID uint64) ([]documentDomain.Document, error) {
	var out []documentDomain.Document
	err := r.db.WithContext(ctx).
		Where("scheme_ref_id = ?", schemeRefID).
		Order("uploaded_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *DocumentRepository) DeleteBySchemeRefID(ctx context.Context, schemeRefID uint64) error {
	return r.db.WithContext(ctx).
		Where("scheme_ref_id = ?", schemeRefID).
		Delete(&documentDomain.Document{}).Error
}
