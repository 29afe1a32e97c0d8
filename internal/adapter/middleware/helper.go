package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idemp:chit:"

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

var (
	reUUID    = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32   = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reActorID = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)
)

// validReqID accepts a lowercase UUID (v1-v5) or 32 lowercase hex chars.
func validReqID(id string) bool {
	id = strings.TrimSpace(id)
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseAxRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339(Nano)
// with an explicit zone. Naive local timestamps are rejected.
func parseAxRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	// RFC3339Nano also parses values without fractional seconds
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// ---- redis store ----

type idempStore struct {
	rdb    *redis.Client
	prefix string
}

func (s *idempStore) key(method, route, actorID, requestID string) string {
	return s.prefix + strings.ToLower(method) + ":" + route + ":" + actorID + ":" + requestID
}

// reserve writes the in-progress marker; false means the key already exists.
func (s *idempStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, _ := json.Marshal(e)
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s *idempStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

func (s *idempStore) finish(ctx context.Context, key string, e idempEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(e)
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

func (s *idempStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
