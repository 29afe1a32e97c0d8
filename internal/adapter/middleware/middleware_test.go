package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct{ got []observation }

func (f *fakeObserver) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, observation{method, route, status})
}

func Test_Metrics_UsesRouteTemplate(t *testing.T) {
	obs := &fakeObserver{}
	e := echo.New()
	e.Use(Metrics(obs))
	e.GET("/schemes/:scheme_id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "scheme not found"})
	})

	rec := doReq(t, e, http.MethodGet, "/schemes/SCH1", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(obs.got) != 1 {
		t.Fatalf("observations = %d, want 1", len(obs.got))
	}
	want := observation{http.MethodGet, "/schemes/:scheme_id", http.StatusNotFound}
	if obs.got[0] != want {
		t.Fatalf("observation = %+v, want %+v", obs.got[0], want)
	}
}

func Test_Metrics_HandlerErrorIsRendered(t *testing.T) {
	obs := &fakeObserver{}
	e := echo.New()
	e.Use(Metrics(obs))
	e.POST("/schemes", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := doReq(t, e, http.MethodPost, "/schemes", nil, nil)
	if rec.Code != http.StatusTeapot || len(obs.got) != 1 || obs.got[0].status != http.StatusTeapot {
		t.Fatalf("code=%d obs=%+v", rec.Code, obs.got)
	}
}

func Test_Metrics_NilObserver(t *testing.T) {
	e := echo.New()
	e.Use(Metrics(nil))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if rec := doReq(t, e, http.MethodGet, "/health", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func Test_RequestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.POST("/schemes/:scheme_id/submit", func(c echo.Context) error {
		return c.JSON(http.StatusConflict, map[string]string{"error": "invalid transition"})
	})

	rec := doReq(t, e, http.MethodPost, "/schemes/SCH1/submit", nil, map[string]string{
		HeaderRequestID: testReqID,
		HeaderActorID:   testActor,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/schemes/SCH1/submit" || fields["status"] != int64(http.StatusConflict) {
		t.Fatalf("fields = %+v", fields)
	}
	if fields["request_id"] != testReqID || fields["actor_id"] != testActor {
		t.Fatalf("fields = %+v", fields)
	}
}
