// Package keepalive defines the canonical keepalive record and the parser
// that accepts either wire shape (nested or flat) the spec allows and
// converts it to that single canonical shape at the parser boundary. No
// other package branches on wire shape again.
package keepalive

// Record is the canonical, already-shape-normalized keepalive payload.
// Timestamp is kept as the raw ISO-8601 string the client sent and is not
// parsed; the server stamps last_seen with its own clock at ingestion.
type Record struct {
	ClientID      string
	Timestamp     string
	PublicIP      string
	Status        string
	Country       string
	City          string
	Region        string
	Org           string
	Timezone      string
	DNSLoc        string
	DNSColo       string
	ClientVersion string
}

// Location groups the location sub-object used by the nested wire shape
// and by the client-side payload builder.
type Location struct {
	Country  string `json:"country"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Org      string `json:"org"`
	Timezone string `json:"timezone"`
}

// DNSTest groups the dns_test sub-object used by the nested wire shape.
type DNSTest struct {
	Location string `json:"location"`
	Colo     string `json:"colo"`
}

// NestedPayload is the canonical outbound wire shape clients send.
type NestedPayload struct {
	ClientID      string    `json:"client_id"`
	Timestamp     string    `json:"timestamp"`
	PublicIP      string    `json:"public_ip"`
	Status        string    `json:"status"`
	Location      Location  `json:"location"`
	DNSTest       DNSTest   `json:"dns_test"`
	ClientVersion string    `json:"client_version,omitempty"`
}
