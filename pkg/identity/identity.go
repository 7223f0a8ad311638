// Package identity validates, normalizes, and generates VPN Sentinel
// client identifiers.
package identity

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// Unknown is the sentinel client ID used when a supplied ID can't be
// normalized into anything meaningful.
const Unknown = "unknown"

var validIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)

var collapsePattern = regexp.MustCompile(`[^a-z0-9._-]+`)

// Valid reports whether id matches the canonical client-id grammar
// [A-Za-z0-9._-]{1,100}.
func Valid(id string) bool {
	return validIDPattern.MatchString(id)
}

// Normalize lowercases id, collapses runs of characters outside
// [a-z0-9._-] into a single "-", and trims leading/trailing "-". An empty
// result normalizes to Unknown.
func Normalize(id string) string {
	lowered := strings.ToLower(strings.TrimSpace(id))
	collapsed := collapsePattern.ReplaceAllString(lowered, "-")
	trimmed := strings.Trim(collapsed, "-")
	if trimmed == "" {
		return Unknown
	}
	return trimmed
}

// Generate produces a client ID of the form
// vpn-client-<last-7-digits-of-epoch><6-random-digits>.
func Generate(now time.Time) (string, error) {
	epoch := now.Unix()
	epochStr := fmt.Sprintf("%d", epoch)
	if len(epochStr) > 7 {
		epochStr = epochStr[len(epochStr)-7:]
	}

	suffix, err := randomDigits(6)
	if err != nil {
		return "", fmt.Errorf("generating random client id suffix: %w", err)
	}

	return fmt.Sprintf("vpn-client-%s%s", epochStr, suffix), nil
}

func randomDigits(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteString(d.String())
	}
	return sb.String(), nil
}
