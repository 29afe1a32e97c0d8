package scheme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domainDocument "chitfund-backend/internal/domain/document"
	domainListing "chitfund-backend/internal/domain/listing"
	"chitfund-backend/internal/domain/notification"
	domain "chitfund-backend/internal/domain/scheme"
	domainSubscriber "chitfund-backend/internal/domain/subscriber"
	"chitfund-backend/internal/domain/uow"
	"chitfund-backend/pkg/id"
)

// Recorder receives lifecycle metrics.
type Recorder interface {
	ObserveTransition(op, from, to string)
	ObserveFailure(op, kind string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, string, string) {}
func (nopRecorder) ObserveFailure(string, string)            {}

type Options struct {
	Clock    func() time.Time
	Notifier notification.Notifier
	Logger   *zap.Logger
	Metrics  Recorder
	// Permit approvePso straight from submitted.
	AllowDirectPSOApproval bool
}

// Usecase is the scheme lifecycle engine. Reads go through repos; every
// mutation runs inside a UnitOfWork transaction holding the scheme row lock.
type Usecase struct {
	repos    uow.Repos
	uow      uow.UnitOfWork
	sm       *domain.StateMachine
	now      func() time.Time
	notifier notification.Notifier
	log      *zap.Logger
	metrics  Recorder
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, opts Options) *Usecase {
	u := &Usecase{
		repos:    repos,
		uow:      tx,
		sm:       domain.NewStateMachine(opts.AllowDirectPSOApproval),
		now:      opts.Clock,
		notifier: opts.Notifier,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
	if u.now == nil {
		u.now = time.Now
	}
	if u.notifier == nil {
		u.notifier = notification.Nop{}
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	if u.metrics == nil {
		u.metrics = nopRecorder{}
	}
	return u
}

var errNoUnitOfWork = errors.New("scheme usecase: no unit of work configured")

func (u *Usecase) clock() time.Time { return u.now().UTC() }

// CreateDraft opens a new scheme owned by the calling foreman.
func (u *Usecase) CreateDraft(ctx context.Context, actor Actor, in CreateDraftInput) (*SchemeDTO, error) {
	if actor.Role != RoleForeman {
		u.metrics.ObserveFailure("create_draft", errorKind(domain.ErrForbidden))
		return nil, domain.ErrForbidden
	}
	if u.uow == nil {
		return nil, errNoUnitOfWork
	}
	now := u.clock()
	terms := domain.Terms{ChitValue: in.ChitValue, ChitDuration: in.ChitDuration, ChitStartDate: in.ChitStartDate}

	verr := &domain.ValidationError{}
	if strings.TrimSpace(actor.ID) == "" {
		verr.Add("createdBy", actor.ID, "is required")
	}
	if err := domain.ValidateTerms(terms, now); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			verr.Fields = append(verr.Fields, ve.Fields...)
		}
	}
	if err := verr.OrNil(); err != nil {
		u.metrics.ObserveFailure("create_draft", errorKind(err))
		return nil, err
	}

	s := &domain.Scheme{
		SchemeID:    id.NewSchemeID(now),
		CreatedBy:   actor.ID,
		SchemeName:  strings.TrimSpace(in.SchemeName),
		Status:      domain.StatusDraft,
		LastUpdated: now,
	}
	s.ApplyTerms(terms)

	var dto *SchemeDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Schemes.Create(ctx, s); err != nil {
			return err
		}
		dto = u.toDTO(s, nil, nil)
		return nil
	})
	if err != nil {
		u.metrics.ObserveFailure("create_draft", errorKind(err))
		return nil, err
	}
	u.committed(ctx, actor, "create_draft", "", dto, "Scheme draft created")
	return dto, nil
}

// UpdateDraft edits foreman-owned fields while the scheme is draft or rejected.
func (u *Usecase) UpdateDraft(ctx context.Context, actor Actor, schemeID string, in UpdateDraftInput) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpUpdateDraft, schemeID, "Scheme details updated",
		func(r uow.Repos, s *domain.Scheme) error {
			terms := s.Terms()
			if in.ChitValue != nil {
				terms.ChitValue = *in.ChitValue
			}
			if in.ChitDuration != nil {
				terms.ChitDuration = *in.ChitDuration
			}
			if in.ChitStartDate != nil {
				terms.ChitStartDate = *in.ChitStartDate
			}
			verr := &domain.ValidationError{}
			if terms.ChitValue <= 0 {
				verr.Add("chitValue", terms.ChitValue, "must be greater than 0")
			}
			if terms.ChitDuration <= 0 {
				verr.Add("chitDuration", terms.ChitDuration, "must be greater than 0")
			}
			// an untouched start date may have slipped into the past; only new dates are checked
			if in.ChitStartDate != nil && domain.DateOnly(*in.ChitStartDate).Before(domain.DateOnly(u.clock())) {
				verr.Add("chitStartDate", in.ChitStartDate.Format(domain.DateLayout), "must be today or later")
			}
			if err := verr.OrNil(); err != nil {
				return err
			}
			if in.SchemeName != nil {
				s.SchemeName = strings.TrimSpace(*in.SchemeName)
			}
			s.ApplyTerms(terms)
			return nil
		})
}

// DeleteScheme physically removes a draft or rejected scheme and its children.
func (u *Usecase) DeleteScheme(ctx context.Context, actor Actor, schemeID string) error {
	var gone *SchemeDTO
	from, err := u.withScheme(ctx, actor, domain.OpDelete, schemeID, func(r uow.Repos, s *domain.Scheme) error {
		if err := r.Subscribers.DeleteBySchemeRefID(ctx, s.ID); err != nil {
			return err
		}
		if err := r.Documents.DeleteBySchemeRefID(ctx, s.ID); err != nil {
			return err
		}
		if err := r.Listings.DeleteBySchemeRefID(ctx, s.ID); err != nil {
			return err
		}
		if err := r.Schemes.Delete(ctx, s); err != nil {
			return err
		}
		gone = u.toDTO(s, nil, nil)
		gone.SchemeStatus = "deleted"
		gone.AvailableActions = []string{}
		return nil
	})
	if err != nil {
		return err
	}
	u.committed(ctx, actor, domain.OpDelete, from, gone, "Scheme deleted")
	return nil
}

func (u *Usecase) Get(ctx context.Context, schemeID string) (*SchemeDTO, error) {
	s, err := u.repos.Schemes.GetBySchemeID(ctx, schemeID)
	if err != nil {
		return nil, notFound(err, schemeID)
	}
	return u.loadDTO(ctx, u.repos, s)
}

type ListInput struct {
	Status    string
	CreatedBy string
	Limit     int
	Offset    int
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]SchemeDTO, error) {
	f := domain.ListFilter{
		Status:    domain.Status(in.Status),
		CreatedBy: in.CreatedBy,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if f.Status != "" && !f.Status.IsValid() {
		verr := &domain.ValidationError{}
		verr.Add("status", in.Status, "is not a known scheme status")
		return nil, verr
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	rows, err := u.repos.Schemes.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]SchemeDTO, 0, len(rows))
	for i := range rows {
		dto, err := u.loadDTO(ctx, u.repos, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

// Summary counts schemes per status, every status present, for dashboards.
func (u *Usecase) Summary(ctx context.Context, createdBy string) (map[string]int64, error) {
	counts, err := u.repos.Schemes.CountByStatus(ctx, createdBy)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(domain.Statuses))
	for _, st := range domain.Statuses {
		out[string(st)] = counts[st]
	}
	return out, nil
}

func (u *Usecase) ListPublished(ctx context.Context, limit, offset int) ([]PublishedSchemeDTO, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := u.repos.Listings.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]PublishedSchemeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, u.toListingDTO(&rows[i]))
	}
	return out, nil
}

// ---- engine plumbing ----

// withScheme locks the scheme, checks actor and status against op, then runs fn.
func (u *Usecase) withScheme(ctx context.Context, actor Actor, op domain.Op, schemeID string,
	fn func(r uow.Repos, s *domain.Scheme) error) (from domain.Status, err error) {
	defer func() {
		if err != nil {
			u.metrics.ObserveFailure(string(op), errorKind(err))
		}
	}()
	if u.uow == nil {
		return "", errNoUnitOfWork
	}
	err = u.uow.WithinSchemeTx(ctx, schemeID, func(r uow.Repos, s *domain.Scheme) error {
		from = s.Status
		if err := authorize(actor, op, s); err != nil {
			return err
		}
		if !u.sm.CanApply(op, s.Status) {
			return &domain.InvalidTransitionError{SchemeID: s.SchemeID, Op: op, From: s.Status}
		}
		return fn(r, s)
	})
	return from, notFound(err, schemeID)
}

// transition applies fn to a copy of the locked scheme, re-checks the record
// invariants and saves it. Nothing is written when any step fails.
func (u *Usecase) transition(ctx context.Context, actor Actor, op domain.Op, schemeID, message string,
	fn func(r uow.Repos, s *domain.Scheme) error) (*SchemeDTO, error) {
	var dto *SchemeDTO
	from, err := u.withScheme(ctx, actor, op, schemeID, func(r uow.Repos, s *domain.Scheme) error {
		next := s.Clone()
		if err := fn(r, next); err != nil {
			return err
		}
		if err := checkInvariants(next); err != nil {
			return err
		}
		next.LastUpdated = u.clock()
		if err := r.Schemes.Save(ctx, next); err != nil {
			return err
		}
		d, err := u.loadDTO(ctx, r, next)
		if err != nil {
			return err
		}
		dto = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.committed(ctx, actor, op, from, dto, message)
	return dto, nil
}

// committed runs post-commit side effects; none of them can undo the change.
func (u *Usecase) committed(ctx context.Context, actor Actor, op domain.Op, from domain.Status, dto *SchemeDTO, message string) {
	u.metrics.ObserveTransition(string(op), string(from), dto.SchemeStatus)
	u.log.Info("scheme_transition",
		zap.String("scheme_id", dto.SchemeID),
		zap.String("op", string(op)),
		zap.String("from", string(from)),
		zap.String("to", dto.SchemeStatus),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)
	u.notify(ctx, actor, op, dto.SchemeID, from, domain.Status(dto.SchemeStatus), message)
}

// notify delivers an event; failures are logged since the change is already committed.
func (u *Usecase) notify(ctx context.Context, actor Actor, op domain.Op, schemeID string, from, to domain.Status, message string) {
	ev := notification.Event{
		SchemeID:   schemeID,
		Type:       string(op),
		From:       string(from),
		To:         string(to),
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Message:    message,
		OccurredAt: u.clock(),
	}
	if err := u.notifier.Notify(ctx, ev); err != nil {
		u.log.Warn("scheme_notification_failed", zap.String("scheme_id", schemeID), zap.Error(err))
	}
}

func (u *Usecase) loadDTO(ctx context.Context, r uow.Repos, s *domain.Scheme) (*SchemeDTO, error) {
	subs, err := r.Subscribers.ListBySchemeRefID(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	docs, err := r.Documents.ListBySchemeRefID(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return u.toDTO(s, subs, docs), nil
}

// checkInvariants guards the record rules every transition must preserve.
func checkInvariants(s *domain.Scheme) error {
	d := domain.Derive(s.Terms())
	if s.NumberOfSubscribers != s.ChitDuration ||
		s.MonthlyPremium != d.MonthlyPremium ||
		!s.ChitEndDate.Equal(d.EndDate) ||
		s.MinimumBid != d.MinimumBid || s.MaximumBid != d.MaximumBid {
		return fmt.Errorf("scheme %s: derived fields out of sync with terms", s.SchemeID)
	}
	if (s.PSONumber != nil) != s.Status.HasPSO() {
		return fmt.Errorf("scheme %s: psoNumber presence does not match status %s", s.SchemeID, s.Status)
	}
	if (s.RejectionReason != nil) != (s.Status == domain.StatusRejected) {
		return fmt.Errorf("scheme %s: rejectionReason presence does not match status %s", s.SchemeID, s.Status)
	}
	return nil
}

func notFound(err error, schemeID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.NotFoundError{SchemeID: schemeID}
	}
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrDuplicateTicket):
		return "duplicate_ticket"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return "conflict"
	default:
		return "internal"
	}
}

func (u *Usecase) toDTO(s *domain.Scheme, subs []domainSubscriber.Subscriber, docs []domainDocument.Document) *SchemeDTO {
	dto := &SchemeDTO{
		SchemeID:              s.SchemeID,
		SchemeName:            s.SchemeName,
		CreatedBy:             s.CreatedBy,
		ChitValue:             s.ChitValue,
		ChitDuration:          s.ChitDuration,
		NumberOfSubscribers:   s.NumberOfSubscribers,
		MonthlyPremium:        s.MonthlyPremium,
		MinimumBid:            s.MinimumBid,
		MaximumBid:            s.MaximumBid,
		ChitStartDate:         s.ChitStartDate.Format(domain.DateLayout),
		ChitEndDate:           s.ChitEndDate.Format(domain.DateLayout),
		SchemeStatus:          string(s.Status),
		PSONumber:             s.PSONumber,
		PSOGeneratedDate:      s.PSOGeneratedDate,
		StepsApprovalComments: s.StepsApprovalComments,
		ApprovalComments:      s.ApprovalComments,
		RejectionReason:       s.RejectionReason,
		TerminationReason:     s.TerminationReason,
		SubmittedAt:           s.SubmittedAt,
		StepsApprovedAt:       s.StepsApprovedAt,
		PSORequestedAt:        s.PSORequestedAt,
		ApprovedAt:            s.ApprovedAt,
		RejectedAt:            s.RejectedAt,
		LiveDate:              s.LiveDate,
		TerminatedAt:          s.TerminatedAt,
		CompletedAt:           s.CompletedAt,
		CompletedMonths:       s.CompletedMonths,
		Subscribers:           make([]SubscriberDTO, 0, len(subs)),
		Version:               s.Version,
		LastUpdated:           s.LastUpdated,
	}
	for _, sub := range subs {
		dto.Subscribers = append(dto.Subscribers, SubscriberDTO{
			TicketNumber: sub.TicketNumber,
			Name:         sub.Name,
			Mobile:       sub.Mobile,
			UCFSIN:       sub.UCFSIN,
			Address:      sub.Address,
		})
	}
	for _, d := range docs {
		dd := DocumentDTO{
			DocumentID:  d.DocumentID,
			Kind:        string(d.Kind),
			Name:        d.Name,
			Size:        d.Size,
			ContentType: d.ContentType,
			Reference:   d.Reference,
			UploadedBy:  d.UploadedBy,
			UploadedAt:  d.UploadedAt,
		}
		if len(d.Attributes) > 0 {
			if err := json.Unmarshal(d.Attributes, &dd.Attributes); err != nil {
				u.log.Warn("document_attributes_corrupt",
					zap.String("scheme_id", s.SchemeID), zap.String("document_id", d.DocumentID), zap.Error(err))
				dd.Attributes = nil
			}
		}
		dto.Documents = append(dto.Documents, dd)
	}
	ops := u.sm.AvailableOps(s.Status)
	dto.AvailableActions = make([]string, 0, len(ops))
	for _, op := range ops {
		dto.AvailableActions = append(dto.AvailableActions, string(op))
	}
	return dto
}

func (u *Usecase) toListingDTO(l *domainListing.Listing) PublishedSchemeDTO {
	out := PublishedSchemeDTO{
		ListingID:           l.ListingID,
		SchemeID:            l.SchemeID,
		Title:               l.Title,
		Description:         l.Description,
		IsPublic:            l.IsPublic,
		ShowSubscriberCount: l.ShowSubscriberCount,
		AcceptEnquiries:     l.AcceptEnquiries,
		PublishedBy:         l.PublishedBy,
		PublishedAt:         l.PublishedAt,
	}
	if len(l.Highlights) > 0 {
		if err := json.Unmarshal(l.Highlights, &out.Highlights); err != nil {
			u.log.Warn("listing_highlights_corrupt",
				zap.String("scheme_id", l.SchemeID), zap.String("listing_id", l.ListingID), zap.Error(err))
			out.Highlights = nil
		}
	}
	return out
}
