package mysql

import (
	"context"

	schemeDomain "chitfund-backend/internal/domain/scheme"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SchemeRepository struct{ db *gorm.DB }

func NewSchemeRepository(db *gorm.DB) *SchemeRepository { return &SchemeRepository{db: db} }

func (r *SchemeRepository) Create(ctx context.Context, s *schemeDomain.Scheme) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Save writes every column, guarded by the version the caller loaded.
func (r *SchemeRepository) Save(ctx context.Context, s *schemeDomain.Scheme) error {
	prev := s.Version
	s.Version = prev + 1
	res := r.db.WithContext(ctx).
		Model(s).
		Where("version = ?", prev).
		Select("*").
		Omit("id", "created_at").
		Updates(s)
	if res.Error != nil {
		s.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		s.Version = prev
		return schemeDomain.ErrConcurrentUpdate
	}
	return nil
}

func (r *SchemeRepository) Delete(ctx context.Context, s *schemeDomain.Scheme) error {
	res := r.db.WithContext(ctx).
		Where("version = ?", s.Version).
		Delete(&schemeDomain.Scheme{}, s.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return schemeDomain.ErrConcurrentUpdate
	}
	return nil
}

func (r *SchemeRepository) GetBySchemeID(ctx context.Context, schemeID string) (*schemeDomain.Scheme, error) {
	var out schemeDomain.Scheme
	res := r.db.WithContext(ctx).Where("scheme_id = ?", schemeID).First(&out)
	return &out, res.Error
}

func (r *SchemeRepository) GetBySchemeIDForUpdate(ctx context.Context, schemeID string) (*schemeDomain.Scheme, error) {
	var out schemeDomain.Scheme
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scheme_id = ?", schemeID).
		First(&out)
	return &out, res.Error
}

func (r *SchemeRepository) List(ctx context.Context, f schemeDomain.ListFilter) ([]schemeDomain.Scheme, error) {
	q := r.db.WithContext(ctx).Model(&schemeDomain.Scheme{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CreatedBy != "" {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []schemeDomain.Scheme
	err := q.Order("last_updated DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *SchemeRepository) CountByStatus(ctx context.Context, createdBy string) (map[schemeDomain.Status]int64, error) {
	type row struct {
		Status schemeDomain.Status
		Total  int64
	}
	q := r.db.WithContext(ctx).Model(&schemeDomain.Scheme{}).Select("status, COUNT(*) AS total")
	if createdBy != "" {
		q = q.Where("created_by = ?", createdBy)
	}
	var rows []row
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[schemeDomain.Status]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Total
	}
	return out, nil
}
