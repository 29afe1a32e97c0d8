package http

import (
	"errors"
	"net/http"

	domain "chitfund-backend/internal/domain/scheme"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateTicket),
		errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, log *zap.Logger, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("request_failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}

	resp := ErrorResponse{Error: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Details = fromDomainFields(verr.Fields)
	}
	var dup *domain.DuplicateTicketError
	if errors.As(err, &dup) {
		resp.Details = []FieldError{{Field: "ticketNumber", Value: dup.TicketNumber, Message: "is already taken"}}
	}
	return c.JSON(code, resp)
}
