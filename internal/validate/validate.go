// Package validate implements the pure, side-effect-free field coercions
// applied to every ingested keepalive field before it reaches the state
// store. Validation never rejects a request — it substitutes a sentinel
// value. These functions do not log, and the ingestion handler does not
// log which fields were substituted.
//
// This deliberately does not use github.com/go-playground/validator: that
// library's model is reject-the-request-on-first-tag-failure, but the spec
// requires silently substituting a sentinel value per field and always
// accepting the request. A hand-written coercion function expresses that
// substitution semantics directly.
package validate

import (
	"net"
	"regexp"
	"strings"

	"github.com/agigante80/vpnsentinel/pkg/identity"
)

// UnknownLocation is the sentinel returned for rejected location strings.
const UnknownLocation = "Unknown"

var locationPattern = regexp.MustCompile(`^[A-Za-z0-9\s.,'"-]+$`)
var timezonePattern = regexp.MustCompile(`^[A-Za-z0-9\s.,'"/_-]+$`)

// ClientID trims and validates a client id. Invalid input rejects to
// identity.Unknown, like every other field in this file — it does not
// attempt to repair the id into a valid one.
func ClientID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return identity.Unknown
	}
	if identity.Valid(trimmed) {
		return trimmed
	}
	return identity.Unknown
}

// PublicIP trims and validates an IPv4/IPv6 literal. Invalid input
// rejects to "unknown".
func PublicIP(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "unknown"
	}
	if net.ParseIP(trimmed) == nil {
		return "unknown"
	}
	return trimmed
}

// LocationField trims and validates a generic location string (country,
// city, region, org). Invalid input rejects to UnknownLocation.
func LocationField(raw string) string {
	return locationField(raw, locationPattern)
}

// TimezoneField trims and validates a timezone string, which additionally
// allows "/" and "_" (e.g. "Europe/London").
func TimezoneField(raw string) string {
	return locationField(raw, timezonePattern)
}

func locationField(raw string, pattern *regexp.Regexp) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return UnknownLocation
	}
	if len(trimmed) > 100 {
		return UnknownLocation
	}
	if !pattern.MatchString(trimmed) {
		return UnknownLocation
	}
	return trimmed
}
