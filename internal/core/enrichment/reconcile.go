package enrichment

import fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

// ReconcileRatioThreshold is the minimum plain fuzzy ratio for two distinct
// extracted values to count as the same fact spelled differently, and for a
// converged value to match its baseline reference
const ReconcileRatioThreshold = 80

// Verdict is the outcome of reconciling one field across articles
type Verdict int

// Reconcile verdicts. Skip means no article extracted a value, which is not
// a conflict
const (
	VerdictSkip Verdict = iota
	VerdictAdmit
	VerdictConflict
)

// Extractions maps field name to the extraction one article produced
type Extractions map[Field]FieldExtraction

// ReconcileField converges one field's extractions across articles. Null
// values drop first, then: nothing left is a skip, a single survivor admits
// at medium, unanimous values admit at high, a plurality winner that every
// dissenting value fuzzy-matches admits at medium, anything else conflicts.
// Value comparison is exact and case sensitive, only the plurality fallback
// is fuzzy
func ReconcileField(extractions []FieldExtraction) (FieldExtraction, Verdict) {
	nonNull := make([]FieldExtraction, 0, len(extractions))
	for _, x := range extractions {
		if x.Value != nil {
			nonNull = append(nonNull, x)
		}
	}
	if len(nonNull) == 0 {
		return FieldExtraction{}, VerdictSkip
	}
	if len(nonNull) == 1 {
		winner := nonNull[0]
		winner.Confidence = ConfidenceMedium
		return winner, VerdictAdmit
	}

	counts := make(map[string]int, len(nonNull))
	order := make([]string, 0, len(nonNull))
	for _, x := range nonNull {
		v := *x.Value
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	if len(order) == 1 {
		winner := nonNull[0]
		winner.Confidence = ConfidenceHigh
		return winner, VerdictAdmit
	}

	// Plurality winner, first seen wins ties
	top := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[top] {
			top = v
		}
	}
	for _, v := range order {
		if v == top {
			continue
		}
		if fuzzy.Ratio(top, v) < ReconcileRatioThreshold {
			return FieldExtraction{}, VerdictConflict
		}
	}
	for _, x := range nonNull {
		if *x.Value == top {
			winner := x
			winner.Confidence = ConfidenceMedium
			return winner, VerdictAdmit
		}
	}
	// Unreachable, top came from nonNull
	return FieldExtraction{}, VerdictConflict
}

// CheckReference compares a converged extraction against the baseline value.
// A nil baseline accepts the extraction untouched. A fuzzy match overwrites
// the extracted value with the baseline spelling, the database is
// authoritative for how a name is written. A mismatch returns ok=false with
// the extraction unchanged so the caller can flag and still admit it
func CheckReference(x FieldExtraction, reference *string) (FieldExtraction, bool) {
	if reference == nil {
		return x, true
	}
	val := ""
	if x.Value != nil {
		val = *x.Value
	}
	if fuzzy.Ratio(*reference, val) < ReconcileRatioThreshold {
		return x, false
	}
	ref := *reference
	x.Value = &ref
	return x, true
}

// MergeExtractions reconciles per-article extraction maps into the state's
// converged fields. Fields walk in canonical order so output ordering is
// deterministic. Officer and civilian names additionally cross-check against
// the baseline; a baseline mismatch flags the field and still admits the
// converged extraction so reviewers see both spellings
func MergeExtractions(s *State, perArticle []Extractions) {
	byField := make(map[Field][]FieldExtraction, len(Fields()))
	for _, m := range perArticle {
		for f, x := range m {
			byField[f] = append(byField[f], x)
		}
	}

	s.ExtractedFields = make([]FieldExtraction, 0, len(Fields()))
	s.ConflictingFields = []Field{}

	for _, f := range Fields() {
		xs := byField[f]
		if len(xs) == 0 {
			continue
		}
		winner, verdict := ReconcileField(xs)
		switch verdict {
		case VerdictSkip:
			continue
		case VerdictConflict:
			s.ConflictingFields = append(s.ConflictingFields, f)
		case VerdictAdmit:
			if ref, ok := s.BaselineValue(f); ok {
				checked, matched := CheckReference(winner, ref)
				if !matched {
					s.ConflictingFields = append(s.ConflictingFields, f)
				}
				winner = checked
			}
			s.ExtractedFields = append(s.ExtractedFields, winner)
		}
	}
}
