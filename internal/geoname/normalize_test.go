package geoname

import "testing"

func TestNormalize_FullNameAndCodeAgree(t *testing.T) {
	if Normalize("Romania") != "RO" {
		t.Fatalf("Normalize(Romania) = %q, want RO", Normalize("Romania"))
	}
	if Normalize("RO") != "RO" {
		t.Fatalf("Normalize(RO) = %q, want RO", Normalize("RO"))
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Romania", "RO", "united kingdom", "GB", "Unknown", "", "Nonsense Country"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize_UnknownSentinel(t *testing.T) {
	for _, in := range []string{"", "   ", "unknown", "Unknown", "UNKNOWN"} {
		if got := Normalize(in); got != Unknown {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, Unknown)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("Romania", "RO") {
		t.Error("Equal(Romania, RO) = false, want true")
	}
	if Equal("GB", "US") {
		t.Error("Equal(GB, US) = true, want false")
	}
	if Equal("Unknown", "Unknown") {
		t.Error("Equal(Unknown, Unknown) = true, want false (sentinel never equal)")
	}
}
