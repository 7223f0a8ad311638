package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// provider resolves a Record by querying one external geolocation API.
type provider struct {
	name string
	url  string
	// mapFields converts the raw provider JSON document into a Record.
	mapFields func(raw map[string]any) Record
}

// providers lists every supported geolocation provider in fixed priority
// order: ipinfo.io, ip-api.com, ipwhois.app.
var providers = []provider{
	{
		name: "ipinfo",
		url:  "https://ipinfo.io/json",
		mapFields: func(raw map[string]any) Record {
			return Record{
				IP:       str(raw, "ip"),
				Country:  str(raw, "country"),
				City:     str(raw, "city"),
				Region:   str(raw, "region"),
				Org:      str(raw, "org"),
				Timezone: str(raw, "timezone"),
				Source:   "ipinfo",
			}
		},
	},
	{
		name: "ip-api",
		url:  "http://ip-api.com/json",
		mapFields: func(raw map[string]any) Record {
			ip := str(raw, "query")
			if ip == "" {
				ip = str(raw, "ip")
			}
			region := str(raw, "regionName")
			if region == "" {
				region = str(raw, "region")
			}
			org := str(raw, "isp")
			if org == "" {
				org = str(raw, "org")
			}
			return Record{
				IP:       ip,
				Country:  str(raw, "country"),
				City:     str(raw, "city"),
				Region:   region,
				Org:      org,
				Timezone: str(raw, "timezone"),
				Source:   "ip-api",
			}
		},
	},
	{
		name: "ipwhois",
		url:  "https://ipwhois.app/json/",
		mapFields: func(raw map[string]any) Record {
			org := str(raw, "org")
			if org == "" {
				if asn, ok := raw["asn"].(map[string]any); ok {
					org = str(asn, "name")
				}
			}
			return Record{
				IP:       str(raw, "ip"),
				Country:  str(raw, "country"),
				City:     str(raw, "city"),
				Region:   str(raw, "region"),
				Org:      org,
				Timezone: str(raw, "timezone"),
				Source:   "ipwhois",
			}
		},
	},
}

func str(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// byName returns the provider with the given name, or false if unknown.
func byName(name string) (provider, bool) {
	for _, p := range providers {
		if p.name == name {
			return p, true
		}
	}
	return provider{}, false
}

// query issues one GET request against the provider's URL, accepting only
// HTTP 200 and a successfully parsed record with a non-empty IP.
func (p provider) query(ctx context.Context, client *http.Client) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Record{}, fmt.Errorf("building request for %s: %w", p.name, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("querying %s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("%s returned status %d", p.name, resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Record{}, fmt.Errorf("decoding %s response: %w", p.name, err)
	}

	rec := p.mapFields(raw)
	if rec.IP == "" {
		return Record{}, fmt.Errorf("%s returned no public ip", p.name)
	}
	return rec, nil
}
