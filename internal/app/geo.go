package app

import (
	"context"
	"time"

	"github.com/agigante80/vpnsentinel/pkg/geo"
)

// geoResolver adapts pkg/geo's free function to the ingest.GeoResolver
// interface so the ingestion handler can lazily resolve the server's own
// public IP without calling pkg/geo's network chain itself.
type geoResolver struct {
	service string
	timeout time.Duration
}

func (g geoResolver) Resolve() geo.Record {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	return geo.Resolve(ctx, g.service, g.timeout)
}
