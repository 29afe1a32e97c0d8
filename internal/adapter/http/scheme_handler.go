package http

import (
	"context"
	"net/http"
	"time"

	domain "chitfund-backend/internal/domain/scheme"
	ucScheme "chitfund-backend/internal/usecase/scheme"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CertificateRenderer produces the printable PSO certificate of a scheme.
type CertificateRenderer interface {
	RenderPSO(ctx context.Context, s *ucScheme.SchemeDTO) ([]byte, error)
}

type SchemeHandler struct {
	uc   *ucScheme.Usecase
	cert CertificateRenderer
	log  *zap.Logger
}

func NewSchemeHandler(uc *ucScheme.Usecase, cert CertificateRenderer, log *zap.Logger) *SchemeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SchemeHandler{uc: uc, cert: cert, log: log}
}

// ---- request payloads ----

type createSchemeReq struct {
	SchemeName    string `json:"schemeName"    validate:"max=255"`
	ChitValue     int64  `json:"chitValue"`
	ChitDuration  int    `json:"chitDuration"  validate:"lte=600"`
	ChitStartDate string `json:"chitStartDate" validate:"required,isodate"`
}

type updateSchemeReq struct {
	SchemeName    *string `json:"schemeName"    validate:"omitempty,max=255"`
	ChitValue     *int64  `json:"chitValue"`
	ChitDuration  *int    `json:"chitDuration"  validate:"omitempty,lte=600"`
	ChitStartDate *string `json:"chitStartDate" validate:"omitempty,isodate"`
}

type commentsReq struct {
	Comments string `json:"comments" validate:"max=2000"`
}

type reasonReq struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type subscriberReq struct {
	TicketNumber int    `json:"ticketNumber" validate:"required"`
	Name         string `json:"name"         validate:"required,max=255"`
	Mobile       string `json:"mobile"       validate:"required,mobile"`
	UCFSIN       string `json:"ucfsin"       validate:"required,ucfsin"`
	Address      string `json:"address"      validate:"max=1000"`
}

type addSubscribersReq struct {
	Subscribers []subscriberReq `json:"subscribers" validate:"required,dive"`
}

type documentReq struct {
	Name        string         `json:"name"        validate:"required,max=255"`
	Size        int64          `json:"size"        validate:"gte=0"`
	ContentType string         `json:"contentType" validate:"max=128"`
	Reference   string         `json:"reference"   validate:"max=128"`
	Attributes  map[string]any `json:"attributes"`
}

type activateReq struct {
	CertificateNumber string       `json:"certificateNumber" validate:"required,max=128"`
	Document          *documentReq `json:"document"          validate:"omitempty"`
}

type publishReq struct {
	Title               string   `json:"title"               validate:"max=255"`
	Description         string   `json:"description"         validate:"max=5000"`
	IsPublic            bool     `json:"isPublic"`
	ShowSubscriberCount bool     `json:"showSubscriberCount"`
	AcceptEnquiries     bool     `json:"acceptEnquiries"`
	Highlights          []string `json:"highlights"          validate:"max=10,dive,max=120"`
}

func (d documentReq) toInput() ucScheme.DocumentInput {
	return ucScheme.DocumentInput{
		Name:        d.Name,
		Size:        d.Size,
		ContentType: d.ContentType,
		Reference:   d.Reference,
		Attributes:  d.Attributes,
	}
}

// bindValid binds the body into req and validates it, writing the error
// response itself. ok is false when the handler should stop.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// prelude resolves the actor and the scheme_id path param.
func prelude(c echo.Context) (ucScheme.Actor, string, error) {
	actor, err := actorFrom(c)
	if err != nil {
		return actor, "", c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	schemeID := c.Param("scheme_id")
	if schemeID == "" {
		return actor, "", c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing scheme_id path param"})
	}
	return actor, schemeID, nil
}

// respond writes dto with code, or maps err.
func (h *SchemeHandler) respond(c echo.Context, code int, dto any, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(code, dto)
}

// ---- handlers ----

func (h *SchemeHandler) CreateScheme(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req createSchemeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	start, _ := time.Parse(domain.DateLayout, req.ChitStartDate)
	dto, err := h.uc.CreateDraft(c.Request().Context(), actor, ucScheme.CreateDraftInput{
		SchemeName:    req.SchemeName,
		ChitValue:     req.ChitValue,
		ChitDuration:  req.ChitDuration,
		ChitStartDate: start,
	})
	return h.respond(c, http.StatusCreated, dto, err)
}

func (h *SchemeHandler) UpdateScheme(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req updateSchemeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := ucScheme.UpdateDraftInput{
		SchemeName:   req.SchemeName,
		ChitValue:    req.ChitValue,
		ChitDuration: req.ChitDuration,
	}
	if req.ChitStartDate != nil {
		start, _ := time.Parse(domain.DateLayout, *req.ChitStartDate)
		in.ChitStartDate = &start
	}
	dto, err := h.uc.UpdateDraft(c.Request().Context(), actor, schemeID, in)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) GetScheme(c echo.Context) error {
	schemeID := c.Param("scheme_id")
	if schemeID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing scheme_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), schemeID)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) ListSchemes(c echo.Context) error {
	var in ucScheme.ListInput
	err := echo.QueryParamsBinder(c).
		String("status", &in.Status).
		String("createdBy", &in.CreatedBy).
		Int("limit", &in.Limit).
		Int("offset", &in.Offset).
		BindError()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
	}
	list, err := h.uc.List(c.Request().Context(), in)
	return h.respond(c, http.StatusOK, map[string]any{"schemes": list}, err)
}

func (h *SchemeHandler) Summary(c echo.Context) error {
	sum, err := h.uc.Summary(c.Request().Context(), c.QueryParam("createdBy"))
	return h.respond(c, http.StatusOK, sum, err)
}

func (h *SchemeHandler) DeleteScheme(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	if err := h.uc.DeleteScheme(c.Request().Context(), actor, schemeID); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SchemeHandler) Submit(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	dto, err := h.uc.SubmitForReview(c.Request().Context(), actor, schemeID)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) ApproveSteps(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req commentsReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ApproveSteps1To4(c.Request().Context(), actor, schemeID, req.Comments)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) RequestPSO(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	dto, err := h.uc.RequestPSO(c.Request().Context(), actor, schemeID)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) ApprovePSO(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req commentsReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ApprovePSO(c.Request().Context(), actor, schemeID, req.Comments)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) Reject(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req reasonReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RejectScheme(c.Request().Context(), actor, schemeID, req.Reason)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) AddSubscribers(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req addSubscribersReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := make([]ucScheme.SubscriberInput, 0, len(req.Subscribers))
	for _, s := range req.Subscribers {
		in = append(in, ucScheme.SubscriberInput(s))
	}
	dto, err := h.uc.AddSubscribers(c.Request().Context(), actor, schemeID, in)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) UploadFinalAgreement(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req documentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UploadFinalAgreement(c.Request().Context(), actor, schemeID, req.toInput())
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) Activate(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req activateReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := ucScheme.CommencementCertificateInput{CertificateNumber: req.CertificateNumber}
	if req.Document != nil {
		in.Document = req.Document.toInput()
	}
	dto, err := h.uc.ActivateScheme(c.Request().Context(), actor, schemeID, in)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) Publish(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req publishReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.PublishScheme(c.Request().Context(), actor, schemeID, ucScheme.PublishSettings(req))
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) Terminate(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	var req reasonReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.TerminateScheme(c.Request().Context(), actor, schemeID, req.Reason)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) Complete(c echo.Context) error {
	actor, schemeID, err := prelude(c)
	if schemeID == "" {
		return err
	}
	dto, err := h.uc.CompleteScheme(c.Request().Context(), actor, schemeID)
	return h.respond(c, http.StatusOK, dto, err)
}

func (h *SchemeHandler) ListPublished(c echo.Context) error {
	var limit, offset int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
	}
	list, err := h.uc.ListPublished(c.Request().Context(), limit, offset)
	return h.respond(c, http.StatusOK, map[string]any{"listings": list}, err)
}

// PSOCertificate streams the PDF certificate of a scheme holding a PSO number.
func (h *SchemeHandler) PSOCertificate(c echo.Context) error {
	schemeID := c.Param("scheme_id")
	if schemeID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing scheme_id path param"})
	}
	ctx := c.Request().Context()
	dto, err := h.uc.Get(ctx, schemeID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if dto.PSONumber == nil {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "scheme has no PSO number"})
	}
	pdf, err := h.cert.RenderPSO(ctx, dto)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+*dto.PSONumber+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
