package enrichment

import (
	"strings"
	"time"
)

// IncidentRow carries the raw columns fetched for one incident. Which of the
// trailing fields is populated depends on the dataset: civilians_shot rows
// carry CivilianDied, officers_shot rows carry OfficerHarm. AgencyName is the
// primary agency, fetched for reviewer context and not part of the baseline
type IncidentRow struct {
	IncidentDate  *time.Time
	City          *string
	County        *string
	OfficerFirst  *string
	OfficerLast   *string
	CivilianFirst *string
	CivilianLast  *string
	CivilianDied  *bool
	OfficerHarm   *string
	AgencyName    *string
}

// Baseline is the ground-truth slice of an incident used to anchor search
// and validation
type Baseline struct {
	OfficerName  *string
	CivilianName *string
	IncidentDate *time.Time
	Location     *string
	Severity     string
}

// BaselineFromRow maps a fetched row into baseline fields. Names join
// non-empty parts with a single space, location prefers city over county,
// and severity is derived per dataset
func BaselineFromRow(dataset DatasetType, row IncidentRow) Baseline {
	b := Baseline{
		OfficerName:  joinName(row.OfficerFirst, row.OfficerLast),
		CivilianName: joinName(row.CivilianFirst, row.CivilianLast),
		IncidentDate: row.IncidentDate,
		Location:     pickLocation(row.City, row.County),
	}
	switch dataset {
	case DatasetCiviliansShot:
		b.Severity = severityFromDied(row.CivilianDied)
	case DatasetOfficersShot:
		b.Severity = severityFromHarm(row.OfficerHarm)
	default:
		b.Severity = SeverityUnknown
	}
	return b
}

// ApplyBaseline copies the fetched baseline onto the state
func (s *State) ApplyBaseline(b Baseline) {
	s.OfficerName = b.OfficerName
	s.CivilianName = b.CivilianName
	s.IncidentDate = b.IncidentDate
	s.Location = b.Location
	s.Severity = b.Severity
}

// joinName builds "First Last" from whichever parts are present. Both parts
// empty yields nil, never an empty string
func joinName(first, last *string) *string {
	parts := make([]string, 0, 2)
	for _, p := range []*string{first, last} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, " ")
	return &joined
}

// pickLocation prefers the city and falls back to the county. Empty strings
// count as absent
func pickLocation(city, county *string) *string {
	if city != nil && *city != "" {
		return city
	}
	if county != nil && *county != "" {
		return county
	}
	return nil
}

func severityFromDied(died *bool) string {
	if died == nil {
		return SeverityUnknown
	}
	if *died {
		return SeverityFatal
	}
	return SeverityNonFatal
}

func severityFromHarm(harm *string) string {
	if harm == nil {
		return SeverityUnknown
	}
	switch *harm {
	case "DEATH":
		return SeverityFatal
	case "INJURY":
		return SeverityNonFatal
	}
	return SeverityUnknown
}
