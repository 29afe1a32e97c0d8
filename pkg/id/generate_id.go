package id

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
	"time"
)

const (
	schemePrefix = "SCH"
	psoPrefix    = "PSO"
	suffixLen    = 6
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewSchemeID returns "SCH" + unix millis + 6 uppercase alphanumerics,
// e.g. SCH1736123456789K3F9QZ.
func NewSchemeID(now time.Time) string {
	return schemePrefix + strconv.FormatInt(now.UnixMilli(), 10) + randomSuffix(suffixLen)
}

// NewPSONumber builds PSO-<unix millis>-<last 4 chars of schemeID>.
func NewPSONumber(now time.Time, schemeID string) string {
	tail := schemeID
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return psoPrefix + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + tail
}

func randomSuffix(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = alphabet[i%len(alphabet)]
			continue
		}
		out[i] = alphabet[v.Int64()]
	}
	return string(out)
}
