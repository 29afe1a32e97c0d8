package scheme

import (
	"time"
)

type Role string

const (
	RoleForeman Role = "foreman"
	RoleAdmin   Role = "admin"
	// Background jobs such as the maturity sweep.
	RoleSystem Role = "system"
)

func (r Role) IsValid() bool {
	return r == RoleForeman || r == RoleAdmin || r == RoleSystem
}

// Actor identifies who triggers an operation.
type Actor struct {
	ID   string
	Role Role
}

var SystemActor = Actor{ID: "maturity-sweep", Role: RoleSystem}

type CreateDraftInput struct {
	SchemeName    string
	ChitValue     int64
	ChitDuration  int
	ChitStartDate time.Time
}

// UpdateDraftInput carries partial edits; nil fields are left unchanged.
type UpdateDraftInput struct {
	SchemeName    *string
	ChitValue     *int64
	ChitDuration  *int
	ChitStartDate *time.Time
}

type SubscriberInput struct {
	TicketNumber int
	Name         string
	Mobile       string
	UCFSIN       string
	Address      string
}

type DocumentInput struct {
	Name        string
	Size        int64
	ContentType string
	Reference   string
	Attributes  map[string]any
}

type CommencementCertificateInput struct {
	CertificateNumber string
	Document          DocumentInput
}

type PublishSettings struct {
	Title               string
	Description         string
	IsPublic            bool
	ShowSubscriberCount bool
	AcceptEnquiries     bool
	Highlights          []string
}

type SubscriberDTO struct {
	TicketNumber int    `json:"ticketNumber"`
	Name         string `json:"name"`
	Mobile       string `json:"mobile"`
	UCFSIN       string `json:"ucfsin"`
	Address      string `json:"address"`
}

type DocumentDTO struct {
	DocumentID  string         `json:"documentId"`
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Size        int64          `json:"size"`
	ContentType string         `json:"contentType,omitempty"`
	Reference   string         `json:"reference,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	UploadedBy  string         `json:"uploadedBy"`
	UploadedAt  time.Time      `json:"uploadedAt"`
}

// SchemeDTO is the persisted/exchanged scheme record shape.
type SchemeDTO struct {
	SchemeID            string `json:"schemeId"`
	SchemeName          string `json:"schemeName,omitempty"`
	CreatedBy           string `json:"createdBy"`
	ChitValue           int64  `json:"chitValue"`
	ChitDuration        int    `json:"chitDuration"`
	NumberOfSubscribers int    `json:"numberOfSubscribers"`
	MonthlyPremium      int64  `json:"monthlyPremium"`
	MinimumBid          int64  `json:"minimumBid"`
	MaximumBid          int64  `json:"maximumBid"`
	ChitStartDate       string `json:"chitStartDate"`
	ChitEndDate         string `json:"chitEndDate"`
	SchemeStatus        string `json:"schemeStatus"`

	PSONumber             *string    `json:"psoNumber,omitempty"`
	PSOGeneratedDate      *time.Time `json:"psoGeneratedDate,omitempty"`
	StepsApprovalComments *string    `json:"stepsApprovalComments,omitempty"`
	ApprovalComments      *string    `json:"approvalComments,omitempty"`
	RejectionReason       *string    `json:"rejectionReason,omitempty"`
	TerminationReason     *string    `json:"terminationReason,omitempty"`

	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	StepsApprovedAt *time.Time `json:"stepsApprovedAt,omitempty"`
	PSORequestedAt  *time.Time `json:"psoRequestedAt,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	LiveDate        *time.Time `json:"liveDate,omitempty"`
	TerminatedAt    *time.Time `json:"terminatedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CompletedMonths int        `json:"completedMonths"`

	Subscribers      []SubscriberDTO `json:"subscribers"`
	Documents        []DocumentDTO   `json:"documents,omitempty"`
	AvailableActions []string        `json:"availableActions"`
	Version          int64           `json:"version"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

type PublishedSchemeDTO struct {
	ListingID           string    `json:"listingId"`
	SchemeID            string    `json:"schemeId"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	IsPublic            bool      `json:"isPublic"`
	ShowSubscriberCount bool      `json:"showSubscriberCount"`
	AcceptEnquiries     bool      `json:"acceptEnquiries"`
	Highlights          []string  `json:"highlights,omitempty"`
	PublishedBy         string    `json:"publishedBy"`
	PublishedAt         time.Time `json:"publishedAt"`
}

type SweepResult struct {
	Checked    int `json:"checked"`
	Progressed int `json:"progressed"`
	Completed  int `json:"completed"`
}
