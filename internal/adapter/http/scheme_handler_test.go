package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"chitfund-backend/internal/adapter/repository/mysql"
	domain "chitfund-backend/internal/domain/scheme"
	"chitfund-backend/internal/testutil/sqlitetest"
	ucScheme "chitfund-backend/internal/usecase/scheme"

	"github.com/labstack/echo/v4"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

type stubRenderer struct{ err error }

func (s stubRenderer) RenderPSO(context.Context, *ucScheme.SchemeDTO) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.3 stub"), nil
}

// newTestAPI mounts every route on an echo backed by in-memory sqlite.
func newTestAPI(t *testing.T) *echo.Echo {
	t.Helper()
	db := sqlitetest.Open(t)
	uc := ucScheme.NewUsecase(mysql.NewRepos(db), mysql.NewGormUoW(db), ucScheme.Options{
		Clock: func() time.Time { return time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC) },
	})
	e := newEchoWithValidator()
	RegisterRoutes(e, NewHandler(), NewSchemeHandler(uc, stubRenderer{}, nil), nil)
	return e
}

type call struct {
	method string
	path   string
	role   string
	actor  string
	body   any
}

func (c call) do(t *testing.T, e *echo.Echo) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		body = mustJSON(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.role != "" {
		req.Header.Set(HeaderActorRole, c.role)
		req.Header.Set(HeaderActorID, c.actor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func foremanCall(method, path string, body any) call {
	return call{method: method, path: path, role: "foreman", actor: "FM-1", body: body}
}

func adminCall(method, path string, body any) call {
	return call{method: method, path: path, role: "admin", actor: "ADM-1", body: body}
}

func decodeScheme(t *testing.T, rec *httptest.ResponseRecorder) ucScheme.SchemeDTO {
	t.Helper()
	var dto ucScheme.SchemeDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return dto
}

var draftBody = map[string]any{
	"schemeName":    "Gold 20",
	"chitValue":     1000000,
	"chitDuration":  20,
	"chitStartDate": "2025-01-01",
}

func createScheme(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := foremanCall(stdhttp.MethodPost, "/schemes", draftBody).do(t, e)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create status = %d, body=%s", rec.Code, rec.Body.String())
	}
	return decodeScheme(t, rec).SchemeID
}

func TestCreateScheme_Success(t *testing.T) {
	e := newTestAPI(t)

	rec := foremanCall(stdhttp.MethodPost, "/schemes", draftBody).do(t, e)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}

	// wire shape uses camelCase keys and literal status tokens
	var raw map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &raw)
	for _, k := range []string{"schemeId", "chitValue", "chitDuration", "numberOfSubscribers", "monthlyPremium", "chitStartDate", "chitEndDate", "schemeStatus"} {
		if _, ok := raw[k]; !ok {
			t.Fatalf("response missing key %q: %s", k, rec.Body.String())
		}
	}
	if raw["schemeStatus"] != "draft" || raw["chitEndDate"] != "2026-09-01" || raw["monthlyPremium"].(float64) != 50000 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateScheme_MissingActor(t *testing.T) {
	e := newTestAPI(t)

	rec := call{method: stdhttp.MethodPost, path: "/schemes", body: draftBody}.do(t, e)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "missing Ax-Actor-Id" {
		t.Fatalf("error = %q", er.Error)
	}

	rec = call{method: stdhttp.MethodPost, path: "/schemes", role: "system", actor: "cron", body: draftBody}.do(t, e)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("system role over http: status = %d, want 400", rec.Code)
	}
}

func TestCreateScheme_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewSchemeHandler(nil, nil, nil)

	req := httptest.NewRequest(stdhttp.MethodPost, "/schemes", strings.NewReader(`{"chitValue":`)) // broken JSON
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, "FM-1")
	req.Header.Set(HeaderActorRole, "foreman")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateScheme(c); err != nil {
		t.Fatalf("CreateScheme error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestCreateScheme_ValidationDetails(t *testing.T) {
	e := newTestAPI(t)

	// format problems are caught before the engine
	rec := foremanCall(stdhttp.MethodPost, "/schemes", map[string]any{"chitValue": 1000, "chitDuration": 10, "chitStartDate": "01/01/2025"}).do(t, e)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !containsFieldMsg(er.Details, "chitStartDate", "YYYY-MM-DD") {
		t.Fatalf("details: %+v", er.Details)
	}

	// engine rules report every violated field
	rec = foremanCall(stdhttp.MethodPost, "/schemes", map[string]any{"chitValue": 0, "chitDuration": 0, "chitStartDate": "2024-01-01"}).do(t, e)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	er = ErrorResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	for _, f := range []string{"chitValue", "chitDuration", "chitStartDate"} {
		if !containsFieldMsg(er.Details, f, "") {
			t.Fatalf("missing detail for %s: %+v", f, er.Details)
		}
	}
}

func TestLifecycleOverHTTP(t *testing.T) {
	e := newTestAPI(t)
	id := createScheme(t, e)
	base := "/schemes/" + id

	steps := []struct {
		c    call
		want string
	}{
		{foremanCall(stdhttp.MethodPost, base+"/submit", nil), "submitted"},
		{adminCall(stdhttp.MethodPost, base+"/approve-steps", map[string]any{"comments": "fine"}), "steps_1_4_approved"},
		{foremanCall(stdhttp.MethodPost, base+"/request-pso", nil), "pso_requested"},
		{adminCall(stdhttp.MethodPost, base+"/approve-pso", map[string]any{"comments": "ok"}), "pso_approved"},
		{foremanCall(stdhttp.MethodPost, base+"/subscribers", map[string]any{"subscribers": []map[string]any{
			{"ticketNumber": 1, "name": "Asha", "mobile": "9876543210", "ucfsin": "UCF-0001"},
			{"ticketNumber": 2, "name": "Ravi", "mobile": "+919876543211", "ucfsin": "UCF-0002"},
		}}), "subscribers_added"},
		{foremanCall(stdhttp.MethodPost, base+"/final-agreement", map[string]any{"name": "agreement.pdf", "size": 2048, "contentType": "application/pdf"}), "final_agreement_uploaded"},
		{adminCall(stdhttp.MethodPost, base+"/activate", map[string]any{"certificateNumber": "F7-001"}), "live"},
	}
	for _, st := range steps {
		rec := st.c.do(t, e)
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("%s %s: status = %d, body=%s", st.c.method, st.c.path, rec.Code, rec.Body.String())
		}
		if got := decodeScheme(t, rec).SchemeStatus; got != st.want {
			t.Fatalf("%s: status %s, want %s", st.c.path, got, st.want)
		}
	}

	rec := call{method: stdhttp.MethodGet, path: base}.do(t, e)
	dto := decodeScheme(t, rec)
	if dto.PSONumber == nil || !regexp.MustCompile(`^PSO-\d+-[A-Za-z0-9]{4}$`).MatchString(*dto.PSONumber) {
		t.Fatalf("psoNumber: %v", dto.PSONumber)
	}
	if len(dto.Subscribers) != 2 || dto.LiveDate == nil {
		t.Fatalf("live scheme: %+v", dto)
	}

	rec = foremanCall(stdhttp.MethodPost, base+"/publish", map[string]any{"title": "Gold", "isPublic": true}).do(t, e)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("publish: status = %d, body=%s", rec.Code, rec.Body.String())
	}
	rec = call{method: stdhttp.MethodGet, path: "/listings"}.do(t, e)
	var listings struct {
		Listings []ucScheme.PublishedSchemeDTO `json:"listings"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &listings)
	if len(listings.Listings) != 1 || listings.Listings[0].SchemeID != id {
		t.Fatalf("listings: %s", rec.Body.String())
	}

	rec = call{method: stdhttp.MethodGet, path: base + "/pso-certificate"}.do(t, e)
	if rec.Code != stdhttp.StatusOK || rec.Header().Get(echo.HeaderContentType) != "application/pdf" {
		t.Fatalf("certificate: status = %d ct=%q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}

	rec = adminCall(stdhttp.MethodPost, base+"/terminate", map[string]any{"reason": "licence revoked"}).do(t, e)
	if rec.Code != stdhttp.StatusOK || decodeScheme(t, rec).SchemeStatus != "terminated" {
		t.Fatalf("terminate: status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	e := newTestAPI(t)
	id := createScheme(t, e)
	base := "/schemes/" + id

	tests := []struct {
		name string
		c    call
		want int
	}{
		{"unknown scheme", foremanCall(stdhttp.MethodPost, "/schemes/SCH-NOPE/submit", nil), stdhttp.StatusNotFound},
		{"wrong role", adminCall(stdhttp.MethodPost, base+"/submit", nil), stdhttp.StatusForbidden},
		{"wrong owner", call{method: stdhttp.MethodPost, path: base + "/submit", role: "foreman", actor: "FM-2"}, stdhttp.StatusForbidden},
		{"invalid transition", adminCall(stdhttp.MethodPost, base+"/approve-pso", map[string]any{}), stdhttp.StatusConflict},
		{"reject without reason", adminCall(stdhttp.MethodPost, base+"/reject", map[string]any{}), stdhttp.StatusUnprocessableEntity},
		{"certificate before pso", call{method: stdhttp.MethodGet, path: base + "/pso-certificate"}, stdhttp.StatusConflict},
		{"bad list status", call{method: stdhttp.MethodGet, path: "/schemes?status=psoApproved"}, stdhttp.StatusUnprocessableEntity},
		{"bad list limit", call{method: stdhttp.MethodGet, path: "/schemes?limit=abc"}, stdhttp.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.c.do(t, e)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAddSubscribers_TooManyAndDuplicate(t *testing.T) {
	e := newTestAPI(t)
	id := createScheme(t, e)
	base := "/schemes/" + id
	for _, c := range []call{
		foremanCall(stdhttp.MethodPost, base+"/submit", nil),
		adminCall(stdhttp.MethodPost, base+"/approve-steps", map[string]any{}),
		foremanCall(stdhttp.MethodPost, base+"/request-pso", nil),
		adminCall(stdhttp.MethodPost, base+"/approve-pso", map[string]any{}),
	} {
		if rec := c.do(t, e); rec.Code != stdhttp.StatusOK {
			t.Fatalf("%s: status = %d body=%s", c.path, rec.Code, rec.Body.String())
		}
	}

	subs := make([]map[string]any, 0, 21)
	for i := 1; i <= 21; i++ {
		subs = append(subs, map[string]any{"ticketNumber": i, "name": "S", "mobile": "9876543210", "ucfsin": "UCF-0001"})
	}
	rec := foremanCall(stdhttp.MethodPost, base+"/subscribers", map[string]any{"subscribers": subs}).do(t, e)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("21 subscribers: status = %d, want 422; body=%s", rec.Code, rec.Body.String())
	}

	rec = foremanCall(stdhttp.MethodPost, base+"/subscribers", map[string]any{"subscribers": subs[:1:1]}).do(t, e)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("first batch: status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestDeleteScheme(t *testing.T) {
	e := newTestAPI(t)
	id := createScheme(t, e)

	rec := foremanCall(stdhttp.MethodDelete, "/schemes/"+id, nil).do(t, e)
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("delete: status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = call{method: stdhttp.MethodGet, path: "/schemes/" + id}.do(t, e)
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("get after delete: status = %d", rec.Code)
	}
}

func TestUpdateAndSummary(t *testing.T) {
	e := newTestAPI(t)
	id := createScheme(t, e)
	createScheme(t, e)

	rec := foremanCall(stdhttp.MethodPatch, "/schemes/"+id, map[string]any{"chitDuration": 10}).do(t, e)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("patch: status = %d body=%s", rec.Code, rec.Body.String())
	}
	dto := decodeScheme(t, rec)
	if dto.NumberOfSubscribers != 10 || dto.MonthlyPremium != 100_000 || dto.ChitEndDate != "2025-11-01" {
		t.Fatalf("patched scheme: %+v", dto)
	}

	rec = call{method: stdhttp.MethodGet, path: "/schemes/summary?createdBy=FM-1"}.do(t, e)
	var sum map[string]int64
	_ = json.Unmarshal(rec.Body.Bytes(), &sum)
	if sum["draft"] != 2 || sum["live"] != 0 || len(sum) != len(domain.Statuses) {
		t.Fatalf("summary: %s", rec.Body.String())
	}

	rec = call{method: stdhttp.MethodGet, path: "/schemes?createdBy=FM-1&status=draft&limit=1"}.do(t, e)
	var list struct {
		Schemes []ucScheme.SchemeDTO `json:"schemes"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if rec.Code != stdhttp.StatusOK || len(list.Schemes) != 1 {
		t.Fatalf("list: status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(stdhttp.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewSchemeHandler(nil, nil, nil)
	if err := writeError(c, h.log, errors.New("dial tcp: connection refused")); err != nil {
		t.Fatalf("writeError: %v", err)
	}
	if rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "dial tcp") {
		t.Fatalf("internal cause leaked: %s", rec.Body.String())
	}
}
