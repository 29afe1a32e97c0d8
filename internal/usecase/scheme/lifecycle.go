package scheme

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	domainDocument "chitfund-backend/internal/domain/document"
	domainListing "chitfund-backend/internal/domain/listing"
	domain "chitfund-backend/internal/domain/scheme"
	domainSubscriber "chitfund-backend/internal/domain/subscriber"
	"chitfund-backend/internal/domain/uow"
	"chitfund-backend/pkg/id"
)

// roles lists who may run each op. ownerOnly ops also require the foreman to
// be the scheme's creator.
var (
	roles = map[domain.Op][]Role{
		domain.OpUpdateDraft:     {RoleForeman},
		domain.OpSubmit:          {RoleForeman},
		domain.OpRequestPSO:      {RoleForeman},
		domain.OpAddSubscribers:  {RoleForeman},
		domain.OpUploadAgreement: {RoleForeman},
		domain.OpPublish:         {RoleForeman},
		domain.OpDelete:          {RoleForeman},
		domain.OpApproveSteps:    {RoleAdmin},
		domain.OpApprovePSO:      {RoleAdmin},
		domain.OpReject:          {RoleAdmin},
		domain.OpActivate:        {RoleAdmin},
		domain.OpTerminate:       {RoleAdmin},
		domain.OpComplete:        {RoleAdmin, RoleSystem},
		domain.OpRecordProgress:  {RoleSystem, RoleAdmin},
	}
	ownerOnly = map[domain.Op]bool{
		domain.OpUpdateDraft:     true,
		domain.OpSubmit:          true,
		domain.OpRequestPSO:      true,
		domain.OpAddSubscribers:  true,
		domain.OpUploadAgreement: true,
		domain.OpPublish:         true,
		domain.OpDelete:          true,
	}
)

func authorize(actor Actor, op domain.Op, s *domain.Scheme) error {
	for _, r := range roles[op] {
		if r != actor.Role {
			continue
		}
		if ownerOnly[op] && actor.ID != s.CreatedBy {
			return domain.ErrForbidden
		}
		return nil
	}
	return domain.ErrForbidden
}

func (u *Usecase) SubmitForReview(ctx context.Context, actor Actor, schemeID string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpSubmit, schemeID, "Scheme submitted for review",
		func(_ uow.Repos, s *domain.Scheme) error {
			now := u.clock()
			s.Status = domain.StatusSubmitted
			s.RejectionReason = nil
			s.SubmittedAt = &now
			return nil
		})
}

func (u *Usecase) ApproveSteps1To4(ctx context.Context, actor Actor, schemeID, comments string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpApproveSteps, schemeID, "Steps 1-4 approved",
		func(_ uow.Repos, s *domain.Scheme) error {
			now := u.clock()
			s.Status = domain.StatusSteps1To4Approved
			s.StepsApprovalComments = optional(comments)
			s.StepsApprovedAt = &now
			return nil
		})
}

func (u *Usecase) RequestPSO(ctx context.Context, actor Actor, schemeID string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpRequestPSO, schemeID, "PSO requested",
		func(_ uow.Repos, s *domain.Scheme) error {
			now := u.clock()
			s.Status = domain.StatusPSORequested
			s.PSORequestedAt = &now
			return nil
		})
}

// ApprovePSO issues the PSO number that unlocks subscriber enrollment.
func (u *Usecase) ApprovePSO(ctx context.Context, actor Actor, schemeID, comments string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpApprovePSO, schemeID, "PSO approved",
		func(_ uow.Repos, s *domain.Scheme) error {
			now := u.clock()
			pso := id.NewPSONumber(now, s.SchemeID)
			s.Status = domain.StatusPSOApproved
			s.PSONumber = &pso
			s.PSOGeneratedDate = &now
			s.ApprovalComments = optional(comments)
			s.ApprovedAt = &now
			return nil
		})
}

// RejectScheme sends the scheme back to its foreman. Any PSO already issued is revoked.
func (u *Usecase) RejectScheme(ctx context.Context, actor Actor, schemeID, reason string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpReject, schemeID, "Scheme rejected",
		func(_ uow.Repos, s *domain.Scheme) error {
			reason = strings.TrimSpace(reason)
			if reason == "" {
				verr := &domain.ValidationError{}
				verr.Add("reason", reason, "is required")
				return verr
			}
			now := u.clock()
			s.Status = domain.StatusRejected
			s.RejectionReason = &reason
			s.RejectedAt = &now
			s.PSONumber = nil
			s.PSOGeneratedDate = nil
			return nil
		})
}

// AddSubscribers enrolls the given tickets. The whole batch is refused when
// any entry is invalid or collides with an existing ticket.
func (u *Usecase) AddSubscribers(ctx context.Context, actor Actor, schemeID string, subs []SubscriberInput) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpAddSubscribers, schemeID, "Subscribers added",
		func(r uow.Repos, s *domain.Scheme) error {
			existing, err := r.Subscribers.ListBySchemeRefID(ctx, s.ID)
			if err != nil {
				return err
			}
			verr := &domain.ValidationError{}
			if len(subs) == 0 {
				verr.Add("subscribers", 0, "at least one subscriber is required")
			}
			if total := len(existing) + len(subs); total > s.NumberOfSubscribers {
				verr.Add("subscribers", total, "must not exceed numberOfSubscribers")
			}
			for i, in := range subs {
				field := "subscribers[" + strconv.Itoa(i) + "]"
				if in.TicketNumber < 1 || in.TicketNumber > s.NumberOfSubscribers {
					verr.Add(field+".ticketNumber", in.TicketNumber, "must be between 1 and numberOfSubscribers")
				}
				if strings.TrimSpace(in.Name) == "" {
					verr.Add(field+".name", in.Name, "is required")
				}
				if strings.TrimSpace(in.Mobile) == "" {
					verr.Add(field+".mobile", in.Mobile, "is required")
				}
				if strings.TrimSpace(in.UCFSIN) == "" {
					verr.Add(field+".ucfsin", in.UCFSIN, "is required")
				}
			}
			if err := verr.OrNil(); err != nil {
				return err
			}

			taken := make(map[int]bool, len(existing)+len(subs))
			for _, e := range existing {
				taken[e.TicketNumber] = true
			}
			rows := make([]domainSubscriber.Subscriber, 0, len(subs))
			now := u.clock()
			for _, in := range subs {
				if taken[in.TicketNumber] {
					return &domain.DuplicateTicketError{SchemeID: s.SchemeID, TicketNumber: in.TicketNumber}
				}
				taken[in.TicketNumber] = true
				rows = append(rows, domainSubscriber.Subscriber{
					SchemeRefID:  s.ID,
					TicketNumber: in.TicketNumber,
					Name:         strings.TrimSpace(in.Name),
					Mobile:       strings.TrimSpace(in.Mobile),
					UCFSIN:       strings.TrimSpace(in.UCFSIN),
					Address:      strings.TrimSpace(in.Address),
					CreatedAt:    now,
				})
			}
			if err := r.Subscribers.CreateBatch(ctx, rows); err != nil {
				return err
			}
			s.Status = domain.StatusSubscribersAdded
			return nil
		})
}

func (u *Usecase) UploadFinalAgreement(ctx context.Context, actor Actor, schemeID string, doc DocumentInput) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpUploadAgreement, schemeID, "Final agreement uploaded",
		func(r uow.Repos, s *domain.Scheme) error {
			if err := u.storeDocument(ctx, r, s, actor, domainDocument.KindFinalAgreement, doc, "document"); err != nil {
				return err
			}
			s.Status = domain.StatusFinalAgreementUploaded
			return nil
		})
}

// ActivateScheme records the commencement certificate (Form 7) and takes the scheme live.
func (u *Usecase) ActivateScheme(ctx context.Context, actor Actor, schemeID string, cert CommencementCertificateInput) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpActivate, schemeID, "Scheme is live",
		func(r uow.Repos, s *domain.Scheme) error {
			number := strings.TrimSpace(cert.CertificateNumber)
			if number == "" {
				verr := &domain.ValidationError{}
				verr.Add("certificateNumber", cert.CertificateNumber, "is required")
				return verr
			}
			doc := cert.Document
			if doc.Reference == "" {
				doc.Reference = number
			}
			if doc.Name == "" {
				doc.Name = "Form 7 " + number
			}
			if err := u.storeDocument(ctx, r, s, actor, domainDocument.KindCommencementCertificate, doc, "commencementCertificate"); err != nil {
				return err
			}
			now := u.clock()
			s.Status = domain.StatusLive
			s.LiveDate = &now
			return nil
		})
}

func (u *Usecase) storeDocument(ctx context.Context, r uow.Repos, s *domain.Scheme, actor Actor,
	kind domainDocument.Kind, in DocumentInput, field string) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add(field+".name", in.Name, "is required")
	}
	if in.Size < 0 {
		verr.Add(field+".size", in.Size, "must not be negative")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	d := &domainDocument.Document{
		DocumentID:  id.NewID32(),
		SchemeRefID: s.ID,
		Kind:        kind,
		Name:        strings.TrimSpace(in.Name),
		Size:        in.Size,
		ContentType: in.ContentType,
		Reference:   in.Reference,
		UploadedBy:  actor.ID,
		UploadedAt:  u.clock(),
	}
	if len(in.Attributes) > 0 {
		raw, err := json.Marshal(in.Attributes)
		if err != nil {
			return err
		}
		d.Attributes = datatypes.JSON(raw)
	}
	return r.Documents.Create(ctx, d)
}

// PublishScheme creates or overwrites the public listing of a live scheme.
// The scheme record itself is not modified.
func (u *Usecase) PublishScheme(ctx context.Context, actor Actor, schemeID string, in PublishSettings) (*PublishedSchemeDTO, error) {
	var out PublishedSchemeDTO
	from, err := u.withScheme(ctx, actor, domain.OpPublish, schemeID, func(r uow.Repos, s *domain.Scheme) error {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = s.SchemeName
		}
		if title == "" {
			title = s.SchemeID
		}
		now := u.clock()
		l := &domainListing.Listing{
			ListingID:           uuid.NewString(),
			SchemeRefID:         s.ID,
			SchemeID:            s.SchemeID,
			Title:               title,
			Description:         strings.TrimSpace(in.Description),
			IsPublic:            in.IsPublic,
			ShowSubscriberCount: in.ShowSubscriberCount,
			AcceptEnquiries:     in.AcceptEnquiries,
			PublishedBy:         actor.ID,
			PublishedAt:         now,
			UpdatedAt:           now,
		}
		if len(in.Highlights) > 0 {
			raw, err := json.Marshal(in.Highlights)
			if err != nil {
				return err
			}
			l.Highlights = datatypes.JSON(raw)
		}
		if err := r.Listings.Upsert(ctx, l); err != nil {
			return err
		}
		out = u.toListingDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.metrics.ObserveTransition(string(domain.OpPublish), string(from), string(from))
	u.notify(ctx, actor, domain.OpPublish, schemeID, from, from, "Scheme published")
	return &out, nil
}

func (u *Usecase) TerminateScheme(ctx context.Context, actor Actor, schemeID, reason string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpTerminate, schemeID, "Scheme terminated",
		func(_ uow.Repos, s *domain.Scheme) error {
			reason = strings.TrimSpace(reason)
			if reason == "" {
				verr := &domain.ValidationError{}
				verr.Add("reason", reason, "is required")
				return verr
			}
			now := u.clock()
			s.Status = domain.StatusTerminated
			s.TerminationReason = &reason
			s.TerminatedAt = &now
			return nil
		})
}

// CompleteScheme closes a live scheme once every instalment month has elapsed.
func (u *Usecase) CompleteScheme(ctx context.Context, actor Actor, schemeID string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpComplete, schemeID, "Scheme completed",
		func(_ uow.Repos, s *domain.Scheme) error {
			now := u.clock()
			s.CompletedMonths = domain.MonthsElapsed(s.ChitStartDate, now, s.ChitDuration)
			if s.CompletedMonths != s.ChitDuration {
				return &domain.InvalidTransitionError{
					SchemeID: s.SchemeID,
					Op:       domain.OpComplete,
					From:     s.Status,
					Reason:   "only " + strconv.Itoa(s.CompletedMonths) + " of " + strconv.Itoa(s.ChitDuration) + " months completed",
				}
			}
			s.Status = domain.StatusCompleted
			s.CompletedAt = &now
			return nil
		})
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
