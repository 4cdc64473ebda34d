// Package repo provides postgres access for the enrich pipeline: the
// read-only incident lookup and the enrichment_runs outcome store
package repo

import (
	"context"
	"strconv"

	"newshound/internal/core/enrichment"
	"newshound/internal/modkit/repokit"
	perr "newshound/internal/platform/errors"
	"newshound/internal/services/enrich/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG hands out the postgres binder, stateless like its review twin
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind pins the repo to q, pool or open transaction alike
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the persistence surface the enrich service needs. Review-queue
// reads and the reviewed stamp belong to the api review repo, not here
type Storage interface {
	// FetchIncident returns the raw baseline row for one incident.
	// A missing incident is a NotFound coded error, recoverable upstream
	FetchIncident(ctx context.Context, incidentID string, dataset enrichment.DatasetType) (enrichment.IncidentRow, error)

	// InsertRun persists one terminal outcome row
	InsertRun(ctx context.Context, o domain.Outcome) error
}

// Incident rows join the per-dataset incident table to its first-sequence
// officer, first-sequence civilian and primary agency. The two datasets
// invert who is victim and who is shooter, so the victim/junction tables
// differ while the projected columns stay identical
const civiliansShotSQL = `
SELECT
	i.date_incident,
	i.incident_city,
	i.incident_county,
	o.name_first  AS officer_first,
	o.name_last   AS officer_last,
	c.name_first  AS civilian_first,
	c.name_last   AS civilian_last,
	v.civilian_died,
	NULL::text    AS officer_harm,
	a.name        AS agency_name
FROM incidents_civilians_shot i
LEFT JOIN incident_civilians_shot_officers_involved oi
	ON i.incident_id = oi.incident_id AND oi.officer_sequence = 1
LEFT JOIN officers o ON oi.officer_id = o.officer_id
LEFT JOIN incident_civilians_shot_victims v
	ON i.incident_id = v.incident_id
LEFT JOIN civilians c ON v.civilian_id = c.civilian_id
LEFT JOIN incident_civilians_shot_agencies ia
	ON i.incident_id = ia.incident_id AND ia.agency_sequence = 1
LEFT JOIN agencies a ON ia.agency_id = a.agency_id
WHERE i.incident_id = $1
LIMIT 1
`

const officersShotSQL = `
SELECT
	i.date_incident::date,
	i.incident_city,
	i.incident_county,
	o.name_first  AS officer_first,
	o.name_last   AS officer_last,
	c.name_first  AS civilian_first,
	c.name_last   AS civilian_last,
	NULL::boolean AS civilian_died,
	v.officer_harm,
	a.name        AS agency_name
FROM incidents_officers_shot i
LEFT JOIN incident_officers_shot_victims v
	ON i.incident_id = v.incident_id
LEFT JOIN officers o ON v.officer_id = o.officer_id
LEFT JOIN incident_officers_shot_shooters sh
	ON i.incident_id = sh.incident_id AND sh.civilian_sequence = 1
LEFT JOIN civilians c ON sh.civilian_id = c.civilian_id
LEFT JOIN incident_officers_shot_agencies ia
	ON i.incident_id = ia.incident_id AND ia.agency_sequence = 1
LEFT JOIN agencies a ON ia.agency_id = a.agency_id
WHERE i.incident_id = $1
LIMIT 1
`

// FetchIncident implements Storage
func (s *pg) FetchIncident(
	ctx context.Context,
	incidentID string,
	dataset enrichment.DatasetType,
) (enrichment.IncidentRow, error) {
	var row enrichment.IncidentRow

	id, err := strconv.ParseInt(incidentID, 10, 64)
	if err != nil {
		return row, perr.InvalidArgf("incident id %q is not numeric", incidentID)
	}

	sql := civiliansShotSQL
	if dataset == enrichment.DatasetOfficersShot {
		sql = officersShotSQL
	}

	row, err = repokit.One(ctx, s.q, scanIncident, sql, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return row, perr.NotFoundf("incident %s not found in %s", incidentID, dataset)
		}
		return row, perr.FromPostgres(err, "fetch incident")
	}
	return row, nil
}

func scanIncident(r repokit.Row) (enrichment.IncidentRow, error) {
	var row enrichment.IncidentRow
	return row, r.Scan(
		&row.IncidentDate,
		&row.City,
		&row.County,
		&row.OfficerFirst,
		&row.OfficerLast,
		&row.CivilianFirst,
		&row.CivilianLast,
		&row.CivilianDied,
		&row.OfficerHarm,
		&row.AgencyName,
	)
}
