package enrichment

import (
	"testing"
	"time"
)

func TestBaselineFromRow_NameJoining(t *testing.T) {
	cases := []struct {
		name        string
		first, last *string
		want        *string
	}{
		{"both parts", sp("James"), sp("Rodriguez"), sp("James Rodriguez")},
		{"first only", sp("James"), nil, sp("James")},
		{"last only", nil, sp("Rodriguez"), sp("Rodriguez")},
		{"empty strings count as absent", sp(""), sp("Rodriguez"), sp("Rodriguez")},
		{"neither", nil, nil, nil},
		{"both empty", sp(""), sp(""), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := BaselineFromRow(DatasetCiviliansShot, IncidentRow{CivilianFirst: tc.first, CivilianLast: tc.last})
			if (b.CivilianName == nil) != (tc.want == nil) {
				t.Fatalf("nilness: got %v want %v", b.CivilianName, tc.want)
			}
			if tc.want != nil && *b.CivilianName != *tc.want {
				t.Fatalf("got %q want %q", *b.CivilianName, *tc.want)
			}
		})
	}
}

func TestBaselineFromRow_LocationPrefersCity(t *testing.T) {
	b := BaselineFromRow(DatasetCiviliansShot, IncidentRow{City: sp("Houston"), County: sp("Harris")})
	if b.Location == nil || *b.Location != "Houston" {
		t.Fatalf("want city, got %v", b.Location)
	}

	b = BaselineFromRow(DatasetCiviliansShot, IncidentRow{County: sp("Harris")})
	if b.Location == nil || *b.Location != "Harris" {
		t.Fatalf("want county fallback, got %v", b.Location)
	}

	b = BaselineFromRow(DatasetCiviliansShot, IncidentRow{City: sp(""), County: sp("Harris")})
	if b.Location == nil || *b.Location != "Harris" {
		t.Fatalf("empty city should fall back to county, got %v", b.Location)
	}

	b = BaselineFromRow(DatasetCiviliansShot, IncidentRow{})
	if b.Location != nil {
		t.Fatalf("no location columns means nil, got %q", *b.Location)
	}
}

func TestBaselineFromRow_SeverityCivilians(t *testing.T) {
	died := true
	b := BaselineFromRow(DatasetCiviliansShot, IncidentRow{CivilianDied: &died})
	if b.Severity != SeverityFatal {
		t.Fatalf("died=true should be fatal, got %q", b.Severity)
	}
	died = false
	b = BaselineFromRow(DatasetCiviliansShot, IncidentRow{CivilianDied: &died})
	if b.Severity != SeverityNonFatal {
		t.Fatalf("died=false should be non-fatal, got %q", b.Severity)
	}
	b = BaselineFromRow(DatasetCiviliansShot, IncidentRow{})
	if b.Severity != SeverityUnknown {
		t.Fatalf("missing flag should be unknown, got %q", b.Severity)
	}
}

func TestBaselineFromRow_SeverityOfficers(t *testing.T) {
	cases := []struct {
		harm *string
		want string
	}{
		{sp("DEATH"), SeverityFatal},
		{sp("INJURY"), SeverityNonFatal},
		{sp("MIRACLE"), SeverityUnknown},
		{nil, SeverityUnknown},
	}
	for _, tc := range cases {
		b := BaselineFromRow(DatasetOfficersShot, IncidentRow{OfficerHarm: tc.harm})
		if b.Severity != tc.want {
			t.Fatalf("harm=%v: got %q want %q", tc.harm, b.Severity, tc.want)
		}
	}
}

func TestApplyBaseline_CopiesEverything(t *testing.T) {
	s := NewState("i", DatasetOfficersShot)
	when := time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC)
	s.ApplyBaseline(Baseline{
		OfficerName:  sp("Dana Cole"),
		CivilianName: sp("Lee Ng"),
		IncidentDate: &when,
		Location:     sp("Austin"),
		Severity:     SeverityNonFatal,
	})
	if s.OfficerName == nil || *s.OfficerName != "Dana Cole" {
		t.Fatalf("officer not applied")
	}
	if s.CivilianName == nil || *s.CivilianName != "Lee Ng" {
		t.Fatalf("civilian not applied")
	}
	if s.IncidentDate == nil || !s.IncidentDate.Equal(when) {
		t.Fatalf("date not applied")
	}
	if s.Location == nil || *s.Location != "Austin" {
		t.Fatalf("location not applied")
	}
	if s.Severity != SeverityNonFatal {
		t.Fatalf("severity not applied")
	}
}
