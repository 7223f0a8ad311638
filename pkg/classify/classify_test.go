package classify

import "testing"

const serverIP = "79.116.8.43"

func TestClassify_ExhaustiveTable(t *testing.T) {
	tests := []struct {
		name     string
		clientIP string
		country  string
		dnsLoc   string
		want     Status
	}{
		{"client ip equals server ip", "79.116.8.43", "GB", "GB", VPNBypass},
		{"client ip unknown", "unknown", "GB", "GB", VPNBypass},
		{"matching country and dns", "91.203.5.146", "GB", "GB", Secure},
		{"mismatched country and dns", "91.203.5.146", "GB", "US", DNSLeak},
		{"full-name country normalizes to match", "91.203.5.146", "Romania", "RO", Secure},
		{"dns undetectable", "91.203.5.146", "GB", "Unknown", DNSUndetectable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.clientIP, tt.country, tt.dnsLoc, serverIP)
			if got != tt.want {
				t.Errorf("Classify(%q,%q,%q,%q) = %q, want %q",
					tt.clientIP, tt.country, tt.dnsLoc, serverIP, got, tt.want)
			}
		})
	}
}

func TestClassify_CapitalizedUnknownIP(t *testing.T) {
	if got := Classify("Unknown", "GB", "GB", serverIP); got != VPNBypass {
		t.Errorf("Classify with capitalized Unknown ip = %q, want vpn-bypass", got)
	}
}
