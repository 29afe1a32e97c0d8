package subscriber

import "time"

// Table: scheme_subscribers. One row per enrolled ticket.
type Subscriber struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// FK to schemes.id (numeric)
	SchemeRefID  uint64    `gorm:"column:scheme_ref_id;not null;uniqueIndex:ux_subscribers_scheme_ticket"`
	TicketNumber int       `gorm:"column:ticket_number;not null;uniqueIndex:ux_subscribers_scheme_ticket"`
	Name         string    `gorm:"column:name;size:255;not null"`
	Mobile       string    `gorm:"column:mobile;size:20;not null"`
	UCFSIN       string    `gorm:"column:ucfsin;size:64;not null"`
	Address      string    `gorm:"column:address;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Subscriber) TableName() string { return "scheme_subscribers" }
