package geo

import (
	"context"
	"net/http"
	"time"
)

// Resolve queries the provider chain and returns a canonical Record, or an
// empty Record if every attempt fails.
//
// service selects the strategy: "auto" tries every provider in fixed
// priority order (ipinfo, ip-api, ipwhois) until one succeeds; a specific
// provider name queries only that provider; an unknown name returns an
// empty Record immediately.
func Resolve(ctx context.Context, service string, timeout time.Duration) Record {
	client := &http.Client{Timeout: timeout}

	if service == "" || service == "auto" {
		for _, p := range providers {
			qctx, cancel := context.WithTimeout(ctx, timeout)
			rec, err := p.query(qctx, client)
			cancel()
			if err == nil {
				return rec
			}
		}
		return Record{}
	}

	p, ok := byName(service)
	if !ok {
		return Record{}
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	rec, err := p.query(qctx, client)
	if err != nil {
		return Record{}
	}
	return rec
}
