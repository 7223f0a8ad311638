// Package classify computes the three-color (plus one) health status for a
// client state entry: secure, dns-leak, dns-undetectable, or vpn-bypass.
package classify

import "github.com/agigante80/vpnsentinel/internal/geoname"

// Status is a client's derived health classification.
type Status string

const (
	Secure           Status = "secure"
	DNSLeak          Status = "dns-leak"
	DNSUndetectable  Status = "dns-undetectable"
	VPNBypass        Status = "vpn-bypass"
)

// Classify evaluates the first-match-wins rule table against a client's
// observed public IP, its geolocated country, its DNS egress location,
// and the server's own cached public IP.
func Classify(clientIP, country, dnsLoc, serverIP string) Status {
	if clientIP == serverIP || clientIP == "unknown" || clientIP == "Unknown" {
		return VPNBypass
	}

	if dnsLoc != geoname.Unknown && country != geoname.Unknown && !geoname.Equal(country, dnsLoc) {
		return DNSLeak
	}

	if dnsLoc == geoname.Unknown {
		return DNSUndetectable
	}

	return Secure
}
