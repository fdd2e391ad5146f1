package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Loan application ids look like LA2026080001: "LA" + year + month + a
// 4-digit sequence that resets monthly.
const appIDPrefix = "LA"

// ApplicationIDPrefix returns the "LA<yyyy><mm>" prefix for t's month.
func ApplicationIDPrefix(t time.Time) string {
	return fmt.Sprintf("%s%04d%02d", appIDPrefix, t.Year(), int(t.Month()))
}

// FormatApplicationID builds the full id for a month prefix and sequence.
func FormatApplicationID(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// NextApplicationID returns the id following highest within the same month;
// an empty highest starts the month at sequence 1. A malformed highest is an
// error rather than a silently restarted sequence.
func NextApplicationID(prefix, highest string) (string, error) {
	if highest == "" {
		return FormatApplicationID(prefix, 1), nil
	}
	if len(highest) != len(prefix)+4 || highest[:len(prefix)] != prefix {
		return "", fmt.Errorf("application id %q does not match month prefix %q", highest, prefix)
	}
	seq, err := strconv.Atoi(highest[len(prefix):])
	if err != nil {
		return "", fmt.Errorf("application id %q has a non-numeric sequence", highest)
	}
	return FormatApplicationID(prefix, seq+1), nil
}
