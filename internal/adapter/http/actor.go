package http

import (
	"errors"
	"strings"

	ucScheme "chitfund-backend/internal/usecase/scheme"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID   = "Ax-Actor-Id"
	HeaderActorRole = "Ax-Actor-Role"
)

// actorFrom reads the caller identity set by the upstream gateway.
// The system role is reserved for background jobs.
func actorFrom(c echo.Context) (ucScheme.Actor, error) {
	h := c.Request().Header
	id := strings.TrimSpace(h.Get(HeaderActorID))
	if id == "" {
		return ucScheme.Actor{}, errors.New("missing " + HeaderActorID)
	}
	if !reActorID.MatchString(id) {
		return ucScheme.Actor{}, errors.New("invalid " + HeaderActorID)
	}
	role := ucScheme.Role(strings.ToLower(strings.TrimSpace(h.Get(HeaderActorRole))))
	if role != ucScheme.RoleForeman && role != ucScheme.RoleAdmin {
		return ucScheme.Actor{}, errors.New("invalid " + HeaderActorRole)
	}
	return ucScheme.Actor{ID: id, Role: role}, nil
}
