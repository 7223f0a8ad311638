package keepalive

import (
	"time"

	"github.com/agigante80/vpnsentinel/pkg/dnsprobe"
	"github.com/agigante80/vpnsentinel/pkg/geo"
)

// Build assembles the canonical outbound keepalive payload from the
// supervisor's last-known geo and DNS probe results. timestamp uses the
// local wall clock with its timezone offset, per the spec.
func Build(clientID string, geoRec geo.Record, dnsRes dnsprobe.Result, clientVersion string, now time.Time) NestedPayload {
	return NestedPayload{
		ClientID:  clientID,
		Timestamp: now.Format(time.RFC3339),
		PublicIP:  geoRec.IP,
		Status:    "alive",
		Location: Location{
			Country:  geoRec.Country,
			City:     geoRec.City,
			Region:   geoRec.Region,
			Org:      geoRec.Org,
			Timezone: geoRec.Timezone,
		},
		DNSTest: DNSTest{
			Location: dnsRes.Loc,
			Colo:     dnsRes.Colo,
		},
		ClientVersion: clientVersion,
	}
}
