package document

import (
	"time"

	"gorm.io/datatypes"
)

type Kind string

const (
	KindFinalAgreement          Kind = "final_agreement"
	KindCommencementCertificate Kind = "commencement_certificate"
)

// Table: scheme_documents. Metadata only; file contents are never stored.
type Document struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	DocumentID  string `gorm:"column:document_id;type:char(32);not null;uniqueIndex:ux_documents_document_id"`
	SchemeRefID uint64 `gorm:"column:scheme_ref_id;not null;index:idx_documents_scheme"`
	Kind        Kind   `gorm:"column:kind;type:varchar(32);not null"`
	Name        string `gorm:"column:name;size:255;not null"`
	Size        int64  `gorm:"column:size;not null"`
	ContentType string `gorm:"column:content_type;size:128"`
	// Certificate or agreement number printed on the document, if any.
	Reference  string         `gorm:"column:reference;size:128"`
	Attributes datatypes.JSON `gorm:"column:attributes"`
	UploadedBy string         `gorm:"column:uploaded_by;size:64;not null"`
	UploadedAt time.Time      `gorm:"column:uploaded_at;not null"`
}

func (Document) TableName() string { return "scheme_documents" }
