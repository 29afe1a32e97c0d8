package listing

import (
	"time"

	"gorm.io/datatypes"
)

// Table: published_schemes. At most one listing per scheme; republishing overwrites it.
type Listing struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ListingID   string `gorm:"column:listing_id;size:36;not null;uniqueIndex:ux_listings_listing_id"`
	SchemeRefID uint64 `gorm:"column:scheme_ref_id;not null;uniqueIndex:ux_listings_scheme"`
	SchemeID    string `gorm:"column:scheme_id;size:32;not null"`
	Title       string `gorm:"column:title;size:255;not null"`
	Description string `gorm:"column:description;type:text"`

	IsPublic            bool `gorm:"column:is_public;not null"`
	ShowSubscriberCount bool `gorm:"column:show_subscriber_count;not null"`
	AcceptEnquiries     bool `gorm:"column:accept_enquiries;not null"`
	// Free-form highlights shown on the listing card.
	Highlights datatypes.JSON `gorm:"column:highlights"`

	PublishedBy string    `gorm:"column:published_by;size:64;not null"`
	PublishedAt time.Time `gorm:"column:published_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Listing) TableName() string { return "published_schemes" }
