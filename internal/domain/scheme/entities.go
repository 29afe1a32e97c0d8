package scheme

import (
	"time"
)

// Table: schemes
type Scheme struct {
	ID       uint64 `gorm:"primaryKey;column:id"`
	SchemeID string `gorm:"size:32;not null;uniqueIndex:ux_schemes_scheme_id"`
	// Foreman who created the scheme; the only actor allowed to edit it.
	CreatedBy  string `gorm:"size:64;not null;index:idx_schemes_created_by"`
	SchemeName string `gorm:"size:255"`

	ChitValue           int64     `gorm:"not null"`
	ChitDuration        int       `gorm:"not null"`
	NumberOfSubscribers int       `gorm:"not null"`
	MonthlyPremium      int64     `gorm:"not null"`
	MinimumBid          int64     `gorm:"not null"`
	MaximumBid          int64     `gorm:"not null"`
	ChitStartDate       time.Time `gorm:"type:date;not null"`
	ChitEndDate         time.Time `gorm:"type:date;not null"`

	Status Status `gorm:"type:varchar(32);not null;default:'draft';index:idx_schemes_status"`

	PSONumber             *string    `gorm:"size:64"`
	PSOGeneratedDate      *time.Time
	StepsApprovalComments *string `gorm:"type:text"`
	ApprovalComments      *string `gorm:"type:text"`
	RejectionReason       *string `gorm:"type:text"`
	TerminationReason     *string `gorm:"type:text"`

	SubmittedAt     *time.Time
	StepsApprovedAt *time.Time
	PSORequestedAt  *time.Time
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	LiveDate        *time.Time
	TerminatedAt    *time.Time
	CompletedAt     *time.Time
	CompletedMonths int `gorm:"not null;default:0"`

	// Optimistic lock; bumped on every save.
	Version     int64     `gorm:"not null;default:0"`
	LastUpdated time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Scheme) TableName() string { return "schemes" }

// Terms holds the foreman-controlled inputs every derived field is computed from.
type Terms struct {
	ChitValue     int64
	ChitDuration  int
	ChitStartDate time.Time
}

// ApplyTerms sets the inputs and recomputes all derived fields so they never drift.
func (s *Scheme) ApplyTerms(t Terms) {
	d := Derive(t)
	s.ChitValue = t.ChitValue
	s.ChitDuration = t.ChitDuration
	s.ChitStartDate = d.StartDate
	s.NumberOfSubscribers = d.NumberOfSubscribers
	s.MonthlyPremium = d.MonthlyPremium
	s.ChitEndDate = d.EndDate
	s.MinimumBid = d.MinimumBid
	s.MaximumBid = d.MaximumBid
}

func (s *Scheme) Terms() Terms {
	return Terms{ChitValue: s.ChitValue, ChitDuration: s.ChitDuration, ChitStartDate: s.ChitStartDate}
}

// Clone returns a deep copy, used to keep the stored state intact on failure.
func (s *Scheme) Clone() *Scheme {
	c := *s
	c.PSONumber = cloneStr(s.PSONumber)
	c.StepsApprovalComments = cloneStr(s.StepsApprovalComments)
	c.ApprovalComments = cloneStr(s.ApprovalComments)
	c.RejectionReason = cloneStr(s.RejectionReason)
	c.TerminationReason = cloneStr(s.TerminationReason)
	c.PSOGeneratedDate = cloneTime(s.PSOGeneratedDate)
	c.SubmittedAt = cloneTime(s.SubmittedAt)
	c.StepsApprovedAt = cloneTime(s.StepsApprovedAt)
	c.PSORequestedAt = cloneTime(s.PSORequestedAt)
	c.ApprovedAt = cloneTime(s.ApprovedAt)
	c.RejectedAt = cloneTime(s.RejectedAt)
	c.LiveDate = cloneTime(s.LiveDate)
	c.TerminatedAt = cloneTime(s.TerminatedAt)
	c.CompletedAt = cloneTime(s.CompletedAt)
	return &c
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
