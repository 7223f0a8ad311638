package dnsprobe

import (
	"fmt"
	"testing"
)

func TestParse_NewlineSeparated(t *testing.T) {
	body := "fl=123f1\nh=1.1.1.1\nip=203.0.113.5\nts=1700000000.123\nvisit_scheme=https\nloc=GB\ncolo=LHR\n"
	got := Parse(body)
	want := Result{Loc: "GB", Colo: "LHR"}
	if got != want {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParse_WhitespaceSeparated(t *testing.T) {
	body := `loc=US colo="SJC" extra=ignored`
	got := Parse(body)
	want := Result{Loc: "US", Colo: "SJC"}
	if got != want {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParse_LastOccurrenceWins(t *testing.T) {
	body := "loc=GB\nloc=FR\ncolo=LHR\ncolo=CDG\n"
	got := Parse(body)
	want := Result{Loc: "FR", Colo: "CDG"}
	if got != want {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParse_Missing(t *testing.T) {
	got := Parse("fl=123f1\nh=1.1.1.1\n")
	want := Result{}
	if got != want {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParse_Idempotent(t *testing.T) {
	inputs := []string{
		"loc=gb\ncolo=lhr\n",
		`loc="US" colo='SJC'`,
		"fl=1\nloc=DE colo=FRA extra=1",
		"",
	}
	for _, in := range inputs {
		r1 := Parse(in)
		reformatted := fmt.Sprintf("loc=%s\ncolo=%s\n", r1.Loc, r1.Colo)
		r2 := Parse(reformatted)
		if r1 != r2 {
			t.Errorf("Parse not idempotent for %q: %+v != %+v", in, r1, r2)
		}
	}
}
