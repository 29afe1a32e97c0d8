package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderActorID   = "Ax-Actor-Id"
	// Set on responses served from the store instead of the handler.
	HeaderReplayed = "Ax-Idempotent-Replay"
)

const (
	// How long a request may hold the in-progress marker before another attempt can take over.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for Ax-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// idempEntry is what the store keeps per key, first as a marker, then as the final response.
type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	ActorID     string    `json:"actor_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// replayable reports a finished response; an empty body (204) still counts.
func (e idempEntry) replayable() bool {
	return !e.InProgress && e.Code != 0
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func idempError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// IdempotencyMiddleware makes lifecycle calls safe to retry. The key is
// method + route + actor id + Ax-Request-Id; a repeat with the same body gets
// the stored response, a repeat with another body gets 409. Server errors are
// not stored so the caller can retry them.
// Ax-Request-At **must** be epoch (seconds or ms) OR RFC3339/RFC3339Nano **with** timezone (Z or ±HH:MM).
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	store := &idempStore{rdb: rdb, prefix: keyPrefix}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return idempError(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validReqID(reqID) {
				return idempError(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseAxRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return idempError(c, http.StatusBadRequest, err.Error())
			}
			if now := nowUTC(); reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
				return idempError(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			actorID := strings.TrimSpace(req.Header.Get(HeaderActorID))
			if actorID == "" {
				return idempError(c, http.StatusBadRequest, "missing "+HeaderActorID)
			}
			if !reActorID.MatchString(actorID) {
				return idempError(c, http.StatusBadRequest, "invalid "+HeaderActorID)
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))

			key := store.key(req.Method, c.Path(), actorID, reqID)
			entry := idempEntry{
				InProgress:  true,
				BodySHA256:  bodyHash(body),
				RequestID:   reqID,
				ActorID:     actorID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			ok, err := store.reserve(ctx, key, entry)
			if err != nil {
				log.Warn("idempotency_store_unavailable", zap.String("key", key), zap.Error(err))
				return idempError(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				cur, err := store.load(ctx, key)
				if err != nil {
					log.Warn("idempotency_load_failed", zap.String("key", key), zap.Error(err))
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != entry.BodySHA256 {
					return idempError(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				}
				if cur.replayable() {
					c.Response().Header().Set(HeaderReplayed, "true")
					if len(cur.Body) == 0 {
						return c.NoContent(cur.Code)
					}
					ct := cur.ContentType
					if ct == "" {
						ct = echo.MIMEApplicationJSON
					}
					return c.Blob(cur.Code, ct, cur.Body)
				}
				return idempError(c, http.StatusConflict, "request is already in progress")
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// detached: the request context may already be cancelled
			bg, bgCancel := context.WithTimeout(context.Background(), storeTimeout)
			defer bgCancel()
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn("idempotency_release_failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			entry.InProgress = false
			entry.Code = rec.code
			entry.ContentType = rec.Header().Get(echo.HeaderContentType)
			entry.Body = rec.buf.Bytes()
			entry.CreatedAt = nowUTC()
			if err := store.finish(bg, key, entry, ttl); err != nil {
				log.Warn("idempotency_save_failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
