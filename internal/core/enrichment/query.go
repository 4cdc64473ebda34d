package enrichment

import "strings"

// Query date layouts. Exact match pins the calendar day, broader strategies
// widen to the month
const (
	queryDayLayout   = "2006-01-02"
	queryMonthLayout = "January 2006"
)

const queryContext = "Texas police shooting"

// BuildQuery assembles the search query for one strategy in fixed token
// order: location, domain context, date, names, severity. Strategy controls
// two tokens only: the date granularity and whether names appear at all.
// Severity is appended only when fatal, non-fatal and unknown incidents do
// not gain a token
func BuildQuery(s *State, strategy Strategy) string {
	parts := make([]string, 0, 6)

	if s.Location != nil && *s.Location != "" {
		parts = append(parts, *s.Location)
	}
	parts = append(parts, queryContext)

	if s.IncidentDate != nil {
		layout := queryMonthLayout
		if strategy == StrategyExactMatch {
			layout = queryDayLayout
		}
		parts = append(parts, s.IncidentDate.Format(layout))
	}

	if strategy != StrategyEntityDropped {
		if s.OfficerName != nil && *s.OfficerName != "" {
			parts = append(parts, *s.OfficerName)
		}
		if s.CivilianName != nil && *s.CivilianName != "" {
			parts = append(parts, *s.CivilianName)
		}
	}

	if s.Severity == SeverityFatal {
		parts = append(parts, s.Severity)
	}

	return strings.Join(parts, " ")
}
