package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the scheme API on e. mutating middleware (idempotency)
// wraps only the routes that change state.
func RegisterRoutes(e *echo.Echo, h *Handler, s *SchemeHandler, metrics http.Handler, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	e.GET("/listings", s.ListPublished)
	e.GET("/schemes", s.ListSchemes)
	e.GET("/schemes/summary", s.Summary)
	e.GET("/schemes/:scheme_id", s.GetScheme)
	e.GET("/schemes/:scheme_id/pso-certificate", s.PSOCertificate)

	g := e.Group("/schemes", mutating...)
	g.POST("", s.CreateScheme)
	g.PATCH("/:scheme_id", s.UpdateScheme)
	g.DELETE("/:scheme_id", s.DeleteScheme)
	g.POST("/:scheme_id/submit", s.Submit)
	g.POST("/:scheme_id/approve-steps", s.ApproveSteps)
	g.POST("/:scheme_id/request-pso", s.RequestPSO)
	g.POST("/:scheme_id/approve-pso", s.ApprovePSO)
	g.POST("/:scheme_id/reject", s.Reject)
	g.POST("/:scheme_id/subscribers", s.AddSubscribers)
	g.POST("/:scheme_id/final-agreement", s.UploadFinalAgreement)
	g.POST("/:scheme_id/activate", s.Activate)
	g.POST("/:scheme_id/publish", s.Publish)
	g.POST("/:scheme_id/terminate", s.Terminate)
	g.POST("/:scheme_id/complete", s.Complete)
}
