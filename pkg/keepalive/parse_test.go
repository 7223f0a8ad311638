package keepalive

import "testing"

func TestParse_Nested(t *testing.T) {
	body := []byte(`{
		"client_id": "office-vpn",
		"timestamp": "2026-07-31T10:00:00+00:00",
		"public_ip": "91.203.5.146",
		"status": "alive",
		"location": {"country":"GB","city":"London","region":"England","org":"M247","timezone":"Europe/London"},
		"dns_test": {"location":"GB","colo":"LHR"}
	}`)

	rec, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Country != "GB" || rec.DNSLoc != "GB" || rec.DNSColo != "LHR" {
		t.Errorf("Parse() = %+v", rec)
	}
}

func TestParse_Flat(t *testing.T) {
	body := []byte(`{
		"client_id": "office-vpn",
		"public_ip": "91.203.5.146",
		"country": "DE",
		"dns_loc": "DE",
		"dns_colo": "FRA"
	}`)

	rec, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Country != "DE" || rec.DNSLoc != "DE" || rec.DNSColo != "FRA" {
		t.Errorf("Parse() = %+v", rec)
	}
}

func TestParse_NestedWinsOverFlat(t *testing.T) {
	body := []byte(`{
		"client_id": "x",
		"country": "US",
		"location": {"country": "DE"}
	}`)

	rec, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Country != "DE" {
		t.Errorf("Country = %q, want DE (nested should win)", rec.Country)
	}
}

func TestParse_NestedAbsentFallsBackToFlat(t *testing.T) {
	body := []byte(`{"client_id": "x", "country": "US"}`)

	rec, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Country != "US" {
		t.Errorf("Country = %q, want US", rec.Country)
	}
}

func TestParse_MissingClientID(t *testing.T) {
	if _, err := Parse([]byte(`{"public_ip":"1.2.3.4"}`)); err == nil {
		t.Error("Parse() error = nil, want error for missing client_id")
	}
}

func TestParse_NonObject(t *testing.T) {
	if _, err := Parse([]byte(`"just a string"`)); err == nil {
		t.Error("Parse() error = nil, want error for non-object body")
	}
	if _, err := Parse([]byte(`[1,2,3]`)); err == nil {
		t.Error("Parse() error = nil, want error for array body")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Error("Parse() error = nil, want error for malformed JSON")
	}
}
