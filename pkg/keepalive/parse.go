package keepalive

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse accepts a raw keepalive JSON body in either the nested shape
// (location.country, dns_test.location) or the flat shape (country,
// dns_loc), converting to the canonical Record. Nested wins over flat
// whenever the nested sub-object is present AND contains the expected
// key. Parse rejects non-object bodies and bodies missing client_id.
func Parse(data []byte) (Record, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return Record{}, fmt.Errorf("parsing keepalive payload: %w", err)
	}
	if obj == nil {
		return Record{}, fmt.Errorf("keepalive payload is not a JSON object")
	}

	clientID, _ := obj["client_id"].(string)
	if strings.TrimSpace(clientID) == "" {
		return Record{}, fmt.Errorf("keepalive payload missing client_id")
	}

	rec := Record{
		ClientID:      clientID,
		Timestamp:     asString(obj["timestamp"]),
		PublicIP:      asString(obj["public_ip"]),
		Status:        defaultString(asString(obj["status"]), "alive"),
		ClientVersion: asString(obj["client_version"]),
	}

	rec.Country = pick(obj, "location", "country", "country")
	rec.City = pick(obj, "location", "city", "city")
	rec.Region = pick(obj, "location", "region", "region")
	rec.Org = pick(obj, "location", "org", "org")
	rec.Timezone = pick(obj, "location", "timezone", "timezone")

	rec.DNSLoc = pick(obj, "dns_test", "location", "dns_loc")
	rec.DNSColo = pick(obj, "dns_test", "colo", "dns_colo")

	return rec, nil
}

// pick resolves a field's value per the nested-wins-if-present rule: if
// obj[nestedKey] is an object AND contains nestedField, that value wins;
// otherwise obj[flatField] (if any) is used.
func pick(obj map[string]any, nestedKey, nestedField, flatField string) string {
	if nested, ok := obj[nestedKey].(map[string]any); ok {
		if v, present := nested[nestedField]; present {
			return asString(v)
		}
	}
	return asString(obj[flatField])
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
