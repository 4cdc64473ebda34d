package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"newshound/internal/core/enrichment"
	perr "newshound/internal/platform/errors"
	"newshound/internal/services/enrich/domain"
)

func sp(s string) *string { return &s }

func tp(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// fakeClock returns a deterministic clock that advances one second per call
func fakeClock() func() time.Time {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	var n int64
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

type fakeIncidents struct {
	mu    sync.Mutex
	rows  map[string]enrichment.IncidentRow
	errs  map[string]error
	calls int
}

func (f *fakeIncidents) FetchIncident(
	_ context.Context, id string, _ enrichment.DatasetType,
) (enrichment.IncidentRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[id]; ok {
		return enrichment.IncidentRow{}, err
	}
	if row, ok := f.rows[id]; ok {
		return row, nil
	}
	return enrichment.IncidentRow{}, perr.NotFoundf("incident %s not found", id)
}

type searchCall struct {
	results []domain.SearchResult
	err     error
}

// fakeSearcher replays a script of calls; past the end it repeats the last
type fakeSearcher struct {
	mu      sync.Mutex
	script  []searchCall
	queries []string
	n       int
}

func (f *fakeSearcher) Search(_ context.Context, q string, _ int) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	i := f.n
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	f.n++
	c := f.script[i]
	return c.results, c.err
}

type fakeExtractor struct {
	mu      sync.Mutex
	byURL   map[string]enrichment.Extractions
	errURL  map[string]error
	usage   domain.TokenUsage
	panicOn bool
	calls   []string
}

func (f *fakeExtractor) ExtractFields(
	_ context.Context, a enrichment.Article,
) (enrichment.Extractions, domain.TokenUsage, error) {
	if f.panicOn {
		panic("extractor blew up")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, a.URL)
	if err, ok := f.errURL[a.URL]; ok {
		return nil, f.usage, err
	}
	return f.byURL[a.URL], f.usage, nil
}

type fakeOutcomes struct {
	mu     sync.Mutex
	rows   []domain.Outcome
	errFor map[string]error
}

func (f *fakeOutcomes) InsertRun(_ context.Context, o domain.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errFor[o.IncidentID]; ok {
		return err
	}
	f.rows = append(f.rows, o)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	batches [][]domain.StageEvent
	err     error
}

func (f *fakeAudit) RecordHops(_ context.Context, events []domain.StageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, events)
	return nil
}

var (
	_ domain.IncidentReaderPort = (*fakeIncidents)(nil)
	_ domain.SearcherPort       = (*fakeSearcher)(nil)
	_ domain.ExtractorPort      = (*fakeExtractor)(nil)
	_ domain.OutcomeWriterPort  = (*fakeOutcomes)(nil)
	_ domain.AuditPort          = (*fakeAudit)(nil)
)

// houstonRow is the canonical civilians_shot fixture: fatal incident in
// Houston on 2018-03-15, officer James Rodriguez, civilian John Doe
func houstonRow() enrichment.IncidentRow {
	died := true
	return enrichment.IncidentRow{
		IncidentDate:  tp(2018, time.March, 15),
		City:          sp("Houston"),
		OfficerFirst:  sp("James"),
		OfficerLast:   sp("Rodriguez"),
		CivilianFirst: sp("John"),
		CivilianLast:  sp("Doe"),
		CivilianDied:  &died,
		AgencyName:    sp("Houston Police Department"),
	}
}

// hit builds a provider result whose content passes the Houston anchors
func hit(url string, score float64, published *time.Time) domain.SearchResult {
	return domain.SearchResult{
		URL:           url,
		Title:         "Police shooting in Houston",
		Content:       "Houston police said an officer shot John Doe on a Friday night near downtown.",
		Score:         score,
		PublishedDate: published,
	}
}

// ext builds a per-article extraction map the way the parser would
func ext(url string, kv map[enrichment.Field]string) enrichment.Extractions {
	out := make(enrichment.Extractions, len(kv))
	for f, v := range kv {
		val := v
		out[f] = enrichment.FieldExtraction{
			FieldName:        f,
			Value:            &val,
			Confidence:       enrichment.ConfidencePending,
			Sources:          []string{url},
			ExtractionMethod: "llm",
		}
	}
	return out
}

func newTestService(ports domain.Ports, cfg Config) *Service {
	svc := New(ports, cfg)
	svc.now = fakeClock()
	return svc
}

func fieldMap(xs []enrichment.FieldExtraction) map[enrichment.Field]enrichment.FieldExtraction {
	out := make(map[enrichment.Field]enrichment.FieldExtraction, len(xs))
	for _, x := range xs {
		out[x.FieldName] = x
	}
	return out
}

func hasField(fs []enrichment.Field, f enrichment.Field) bool {
	for _, v := range fs {
		if v == f {
			return true
		}
	}
	return false
}

func TestRunIncident_HappyPathSingleSearch(t *testing.T) {
	a1 := hit("https://news.example/a1", 0.8, tp(2018, time.March, 16))
	a2 := hit("https://news.example/a2", 0.8, tp(2018, time.March, 14))

	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"142": houstonRow()}}
	searcher := &fakeSearcher{script: []searchCall{{results: []domain.SearchResult{a1, a2}}}}
	extractor := &fakeExtractor{byURL: map[string]enrichment.Extractions{
		a1.URL: ext(a1.URL, map[enrichment.Field]string{
			enrichment.FieldOfficerName:  "James Rodriquez",
			enrichment.FieldCivilianName: "John Doe",
			enrichment.FieldCivilianAge:  "34",
			enrichment.FieldWeapon:       "handgun",
		}),
		a2.URL: ext(a2.URL, map[enrichment.Field]string{
			enrichment.FieldOfficerName:  "James Rodriquez",
			enrichment.FieldCivilianName: "John Doe",
			enrichment.FieldCivilianAge:  "34",
			enrichment.FieldWeapon:       "handgun",
		}),
	}}
	outcomes := &fakeOutcomes{}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: extractor,
		Outcomes:  outcomes,
	}, Config{})

	st, err := svc.RunIncident(context.Background(), "142", enrichment.DatasetCiviliansShot)
	if err != nil {
		t.Fatalf("RunIncident: %v", err)
	}

	if st.CurrentStage != enrichment.StageComplete {
		t.Fatalf("stage = %s want complete (err=%v)", st.CurrentStage, st.ErrorMessage)
	}
	if st.RequiresHumanReview {
		t.Fatalf("complete run must not require review")
	}
	if st.RetryCount != 0 {
		t.Fatalf("retry_count = %d want 0", st.RetryCount)
	}
	if len(st.SearchAttempts) != 1 {
		t.Fatalf("search attempts = %d want 1", len(st.SearchAttempts))
	}
	if st.SearchAttempts[0].Strategy != enrichment.StrategyExactMatch {
		t.Fatalf("attempt strategy = %s want exact_match", st.SearchAttempts[0].Strategy)
	}
	wantQuery := "Houston Texas police shooting 2018-03-15 James Rodriguez John Doe fatal"
	if st.SearchAttempts[0].Query != wantQuery {
		t.Fatalf("query = %q want %q", st.SearchAttempts[0].Query, wantQuery)
	}

	got := fieldMap(st.ExtractedFields)
	officer, ok := got[enrichment.FieldOfficerName]
	if !ok || officer.Value == nil || *officer.Value != "James Rodriguez" {
		t.Fatalf("officer_name not overwritten to baseline spelling: %+v", officer)
	}
	if officer.Confidence != enrichment.ConfidenceHigh {
		t.Fatalf("officer_name confidence = %s want high", officer.Confidence)
	}
	for _, f := range []enrichment.Field{enrichment.FieldCivilianAge, enrichment.FieldWeapon} {
		x, ok := got[f]
		if !ok {
			t.Fatalf("missing admitted field %s", f)
		}
		if x.Confidence != enrichment.ConfidenceHigh {
			t.Fatalf("%s confidence = %s want high", f, x.Confidence)
		}
	}
	if len(st.ConflictingFields) != 0 {
		t.Fatalf("conflicting_fields = %v want none", st.ConflictingFields)
	}

	if st.ReasoningSummary == nil || *st.ReasoningSummary != enrichment.PendingPlaceholder {
		t.Fatalf("state reasoning_summary should keep the pending placeholder")
	}

	if len(outcomes.rows) != 1 {
		t.Fatalf("outcome rows = %d want 1", len(outcomes.rows))
	}
	o := outcomes.rows[0]
	if o.Status != domain.RunComplete {
		t.Fatalf("outcome status = %s want complete", o.Status)
	}
	if o.AgencyName == nil || *o.AgencyName != "Houston Police Department" {
		t.Fatalf("outcome agency = %v want Houston Police Department", o.AgencyName)
	}
	if o.FinalStrategy != enrichment.StrategyExactMatch {
		t.Fatalf("outcome final strategy = %s want exact_match", o.FinalStrategy)
	}
	if o.ReasoningSummary == "" || o.ReasoningSummary == enrichment.PendingPlaceholder {
		t.Fatalf("outcome summary not rendered: %q", o.ReasoningSummary)
	}
	if o.CreatedAt.IsZero() {
		t.Fatalf("outcome created_at not set")
	}
}

func TestRunIncident_RetryThenSucceed(t *testing.T) {
	weak := hit("https://news.example/weak", 0.1, tp(2018, time.March, 16))
	good1 := hit("https://news.example/g1", 0.7, tp(2018, time.March, 16))
	good2 := hit("https://news.example/g2", 0.7, tp(2018, time.March, 13))

	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"7": houstonRow()}}
	searcher := &fakeSearcher{script: []searchCall{
		{results: []domain.SearchResult{weak}},
		{results: []domain.SearchResult{good1, good2}},
	}}
	extractor := &fakeExtractor{byURL: map[string]enrichment.Extractions{
		good1.URL: ext(good1.URL, map[enrichment.Field]string{enrichment.FieldWeapon: "handgun"}),
		good2.URL: ext(good2.URL, map[enrichment.Field]string{enrichment.FieldWeapon: "handgun"}),
	}}
	outcomes := &fakeOutcomes{}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: extractor,
		Outcomes:  outcomes,
	}, Config{})

	st, err := svc.RunIncident(context.Background(), "7", enrichment.DatasetCiviliansShot)
	if err != nil {
		t.Fatalf("RunIncident: %v", err)
	}

	if st.CurrentStage != enrichment.StageComplete {
		t.Fatalf("stage = %s want complete", st.CurrentStage)
	}
	if st.RetryCount != 1 {
		t.Fatalf("retry_count = %d want 1", st.RetryCount)
	}
	if len(st.SearchAttempts) != 2 {
		t.Fatalf("search attempts = %d want 2", len(st.SearchAttempts))
	}
	if st.SearchAttempts[0].Strategy != enrichment.StrategyExactMatch ||
		st.SearchAttempts[1].Strategy != enrichment.StrategyTemporalExpanded {
		t.Fatalf("strategies = %s,%s want exact_match,temporal_expanded",
			st.SearchAttempts[0].Strategy, st.SearchAttempts[1].Strategy)
	}
	if st.NextStrategy != enrichment.StrategyTemporalExpanded {
		t.Fatalf("next_strategy = %s want temporal_expanded", st.NextStrategy)
	}
	if len(searcher.queries) != 2 {
		t.Fatalf("search calls = %d want 2", len(searcher.queries))
	}
	// Broader rung widens the date token to the month
	if searcher.queries[0] == searcher.queries[1] {
		t.Fatalf("retry must rebuild the query, got identical %q", searcher.queries[0])
	}
	if want := "Houston Texas police shooting March 2018 James Rodriguez John Doe fatal"; searcher.queries[1] != want {
		t.Fatalf("second query = %q want %q", searcher.queries[1], want)
	}
	// Retry cleared the weak batch before the second search replaced it
	if len(st.RetrievedArticles) != 2 {
		t.Fatalf("retrieved = %d want the 2 articles of the second batch", len(st.RetrievedArticles))
	}
	if outcomes.rows[0].FinalStrategy != enrichment.StrategyTemporalExpanded {
		t.Fatalf("outcome final strategy = %s want temporal_expanded", outcomes.rows[0].FinalStrategy)
	}
}

func TestRunIncident_ExhaustedRetries(t *testing.T) {
	weak := hit("https://news.example/weak", 0.1, tp(2018, time.March, 16))

	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"9": houstonRow()}}
	searcher := &fakeSearcher{script: []searchCall{{results: []domain.SearchResult{weak}}}}
	outcomes := &fakeOutcomes{}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: &fakeExtractor{},
		Outcomes:  outcomes,
	}, Config{})

	st, err := svc.RunIncident(context.Background(), "9", enrichment.DatasetCiviliansShot)
	if err != nil {
		t.Fatalf("RunIncident: %v", err)
	}

	if st.CurrentStage != enrichment.StageEscalate {
		t.Fatalf("stage = %s want escalate", st.CurrentStage)
	}
	if st.EscalationReason == nil || *st.EscalationReason != enrichment.ReasonMaxRetries {
		t.Fatalf("reason = %v want max_retries", st.EscalationReason)
	}
	if len(st.SearchAttempts) != 3 {
		t.Fatalf("search attempts = %d want 3", len(st.SearchAttempts))
	}
	// The strategy sequence is a prefix of the ladder, here the whole ladder
	for i, want := range enrichment.StrategyOrder {
		if st.SearchAttempts[i].Strategy != want {
			t.Fatalf("attempt %d strategy = %s want %s", i, st.SearchAttempts[i].Strategy, want)
		}
	}
	if !st.RequiresHumanReview {
		t.Fatalf("escalation must require review")
	}
}

func TestRunIncident_InterArticleConflict(t *testing.T) {
	a1 := hit("https://news.example/a1", 0.9, tp(2018, time.March, 15))
	a2 := hit("https://news.example/a2", 0.9, tp(2018, time.March, 15))

	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"11": houstonRow()}}
	searcher := &fakeSearcher{script: []searchCall{{results: []domain.SearchResult{a1, a2}}}}
	extractor := &fakeExtractor{byURL: map[string]enrichment.Extractions{
		a1.URL: ext(a1.URL, map[enrichment.Field]string{enrichment.FieldWeapon: "handgun"}),
		a2.URL: ext(a2.URL, map[enrichment.Field]string{enrichment.FieldWeapon: "rifle"}),
	}}
	outcomes := &fakeOutcomes{}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: extractor,
		Outcomes:  outcomes,
	}, Config{})

	st, err := svc.RunIncident(context.Background(), "11", enrichment.DatasetCiviliansShot)
	if err != nil {
		t.Fatalf("RunIncident: %v", err)
	}

	if st.CurrentStage != enrichment.StageEscalate {
		t.Fatalf("stage = %s want escalate", st.CurrentStage)
	}
	if st.EscalationReason == nil || *st.EscalationReason != enrichment.ReasonConflict {
		t.Fatalf("reason = %v want conflict", st.EscalationReason)
	}
	if !hasField(st.ConflictingFields, enrichment.FieldWeapon) {
		t.Fatalf("conflicting_fields = %v want weapon", st.ConflictingFields)
	}
	if _, ok := fieldMap(st.ExtractedFields)[enrichment.FieldWeapon]; ok {
		t.Fatalf("conflicted weapon must not be admitted")
	}
}

func TestRunIncident_ReferenceConflict(t *testing.T) {
	a1 := hit("https://news.example/a1", 0.9, tp(2018, time.March, 15))
	a2 := hit("https://news.example/a2", 0.9, tp(2018, time.March, 15))

	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"13": houstonRow()}}
	searcher := &fakeSearcher{script: []searchCall{{results: []domain.SearchResult{a1, a2}}}}
	extractor := &fakeExtractor{byURL: map[string]enrichment.Extractions{
		a1.URL: ext(a1.URL, map[enrichment.Field]string{enrichment.FieldOfficerName: "Mike Thompson"}),
		a2.URL: ext(a2.URL, map[enrichment.Field]string{enrichment.FieldOfficerName: "Mike Thompson"}),
	}}
	outcomes := &fakeOutcomes{}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: extractor,
		Outcomes:  outcomes,
	}, Config{})

	st, err := svc.RunIncident(context.Background(), "13", enrichment.DatasetCiviliansShot)
	if err != nil {
		t.Fatalf("RunIncident: %v", err)
	}

	if st.CurrentStage != enrichment.StageEscalate {
		t.Fatalf("stage = %s want escalate", st.CurrentStage)
	}
	if st.EscalationReason == nil || *st.EscalationReason != enrichment.ReasonConflict {
		t.Fatalf("reason = %v want conflict", st.EscalationReason)
	}
	if !hasField(st.ConflictingFields, enrichment.FieldOfficerName) {
		t.Fatalf("conflicting_fields = %v want officer_name", st.ConflictingFields)
	}
	officer, ok := fieldMap(st.ExtractedFields)[enrichment.FieldOfficerName]
	if !ok {
		t.Fatalf("reference mismatch must still admit the extraction")
	}
	if officer.Value == nil || *officer.Value != "Mike Thompson" {
		t.Fatalf("admitted value = %v, baseline must not overwrite on mismatch", officer.Value)
	}
}

func TestRunIncident_BaselineAbsent(t *testing.T) {
	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"17": {}}}
	searcher := &fakeSearcher{script: []searchCall{{}}}
	outcomes := &fakeOutcomes{}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: &fakeExtractor{},
		Outcomes:  outcomes,
	}, Config{})

	st, err := svc.RunIncident(context.Background(), "17", enrichment.DatasetCiviliansShot)
	if err != nil {
		t.Fatalf("RunIncident: %v", err)
	}

	if st.CurrentStage != enrichment.StageEscalate {
		t.Fatalf("stage = %s want escalate", st.CurrentStage)
	}
	if st.EscalationReason == nil || *st.EscalationReason != enrichment.ReasonInsufficientSources {
		t.Fatalf("reason = %v want insufficient_sources", st.EscalationReason)
	}
	if searcher.n != 0 {
		t.Fatalf("no search may run without a baseline, got %d calls", searcher.n)
	}
	if len(st.SearchAttempts) != 0 {
		t.Fatalf("search attempts = %d want 0", len(st.SearchAttempts))
	}
}

func TestRunIncident_DryRunSkipsPersistence(t *testing.T) {
	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"21": {}}}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  &fakeSearcher{script: []searchCall{{}}},
		Extractor: &fakeExtractor{},
	}, Config{DryRun: true})

	st, err := svc.RunIncident(context.Background(), "21", enrichment.DatasetCiviliansShot)
	if err != nil {
		t.Fatalf("dry run must not need an outcome writer: %v", err)
	}
	if !st.Terminal() {
		t.Fatalf("state must still reach a terminal stage")
	}
}

func TestRunIncident_PersistFailureSurfaces(t *testing.T) {
	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"23": {}}}
	outcomes := &fakeOutcomes{errFor: map[string]error{"23": errors.New("pg down")}}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  &fakeSearcher{script: []searchCall{{}}},
		Extractor: &fakeExtractor{},
		Outcomes:  outcomes,
	}, Config{})

	st, err := svc.RunIncident(context.Background(), "23", enrichment.DatasetCiviliansShot)
	if err == nil {
		t.Fatalf("expected the insert failure to surface")
	}
	if !st.Terminal() {
		t.Fatalf("traversal result must be returned alongside the error")
	}
}

func TestRunIncident_UnknownDataset(t *testing.T) {
	svc := newTestService(domain.Ports{}, Config{})
	_, err := svc.RunIncident(context.Background(), "1", enrichment.DatasetType("pets_shot"))
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v want invalid argument", err)
	}
}

func TestRunIncident_AuditTrail(t *testing.T) {
	a1 := hit("https://news.example/a1", 0.8, tp(2018, time.March, 16))

	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"31": houstonRow()}}
	searcher := &fakeSearcher{script: []searchCall{{results: []domain.SearchResult{a1}}}}
	extractor := &fakeExtractor{byURL: map[string]enrichment.Extractions{
		a1.URL: ext(a1.URL, map[enrichment.Field]string{enrichment.FieldWeapon: "handgun"}),
	}}
	outcomes := &fakeOutcomes{}
	audit := &fakeAudit{}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: extractor,
		Outcomes:  outcomes,
		Audit:     audit,
	}, Config{})

	if _, err := svc.RunIncident(context.Background(), "31", enrichment.DatasetCiviliansShot); err != nil {
		t.Fatalf("RunIncident: %v", err)
	}

	if len(audit.batches) != 1 {
		t.Fatalf("audit batches = %d want 1", len(audit.batches))
	}
	events := audit.batches[0]
	// extract, search, validate, merge verdicts plus the terminal event
	if len(events) != 5 {
		t.Fatalf("events = %d want 5", len(events))
	}
	if events[0].Stage != enrichment.StageExtract || events[0].NextStage != enrichment.StageSearch {
		t.Fatalf("first hop = %s->%s want extract->search", events[0].Stage, events[0].NextStage)
	}
	last := events[len(events)-1]
	if last.Stage != enrichment.StageComplete {
		t.Fatalf("terminal event stage = %s want complete", last.Stage)
	}
	for _, e := range events {
		if e.RunID != events[0].RunID {
			t.Fatalf("events must share one run id")
		}
		if e.IncidentID != "31" {
			t.Fatalf("event incident = %s want 31", e.IncidentID)
		}
	}
	if last.Duration <= 0 {
		t.Fatalf("terminal duration must span the traversal, got %v", last.Duration)
	}
}

func TestRunIncident_AuditFailureDoesNotFailRun(t *testing.T) {
	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{"37": {}}}
	audit := &fakeAudit{err: errors.New("clickhouse down")}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  &fakeSearcher{script: []searchCall{{}}},
		Extractor: &fakeExtractor{},
		Outcomes:  &fakeOutcomes{},
		Audit:     audit,
	}, Config{})

	if _, err := svc.RunIncident(context.Background(), "37", enrichment.DatasetCiviliansShot); err != nil {
		t.Fatalf("audit failure must stay best effort: %v", err)
	}
}

// TestRunIncident_RandomizedTraversals hammers the runner with seeded chaos,
// failing searches, weak batches, off-window dates, flaky and disagreeing
// extractors. Whatever terminal a run reaches, the structural guarantees
// must hold
func TestRunIncident_RandomizedTraversals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 80; i++ {
		var script []searchCall
		byURL := map[string]enrichment.Extractions{}
		errURL := map[string]error{}

		for leg := 0; leg < 3; leg++ {
			switch rng.Intn(5) {
			case 0:
				script = append(script, searchCall{err: errors.New("provider down")})
				continue
			case 1:
				u := fmt.Sprintf("https://news.example/run%d/weak%d", i, leg)
				script = append(script, searchCall{results: []domain.SearchResult{
					hit(u, 0.1, tp(2018, time.March, 16)),
				}})
				continue
			}

			batch := make([]domain.SearchResult, 0, 2)
			for j := 0; j < 2; j++ {
				u := fmt.Sprintf("https://news.example/run%d/leg%d/a%d", i, leg, j)
				pub := tp(2018, time.March, 16)
				if rng.Intn(3) == 0 {
					pub = tp(2019, time.January, 1) // off window, validation rejects
				}
				batch = append(batch, hit(u, 0.8, pub))

				switch rng.Intn(6) {
				case 0:
					errURL[u] = errors.New("llm flaked")
				case 1:
					// this article yields nothing
				case 2:
					byURL[u] = ext(u, map[enrichment.Field]string{
						enrichment.FieldWeapon:      "rifle",
						enrichment.FieldOfficerName: "Mike Thompson",
					})
				default:
					byURL[u] = ext(u, map[enrichment.Field]string{
						enrichment.FieldWeapon:      "handgun",
						enrichment.FieldOfficerName: "James Rodriguez",
					})
				}
			}
			script = append(script, searchCall{results: batch})
		}

		id := fmt.Sprintf("rnd-%d", i)
		incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{id: houstonRow()}}
		searcher := &fakeSearcher{script: script}
		audit := &fakeAudit{}

		svc := newTestService(domain.Ports{
			Incidents: incidents,
			Searcher:  searcher,
			Extractor: &fakeExtractor{byURL: byURL, errURL: errURL},
			Outcomes:  &fakeOutcomes{},
			Audit:     audit,
		}, Config{})

		st, err := svc.RunIncident(context.Background(), id, enrichment.DatasetCiviliansShot)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}

		if !st.Terminal() {
			t.Fatalf("run %d ended on %s, not a terminal", i, st.CurrentStage)
		}
		if st.CurrentStage == enrichment.StageEscalate && st.EscalationReason == nil {
			t.Fatalf("run %d escalated without a reason", i)
		}
		if st.RequiresHumanReview && st.EscalationReason == nil {
			t.Fatalf("run %d requires review without a reason", i)
		}

		// one attempt record per outbound call, walking the ladder from the top
		if len(st.SearchAttempts) != searcher.n {
			t.Fatalf("run %d: %d attempts for %d calls", i, len(st.SearchAttempts), searcher.n)
		}
		for j, a := range st.SearchAttempts {
			if a.Strategy != enrichment.StrategyOrder[j] {
				t.Fatalf("run %d attempt %d used %s, ladder says %s",
					i, j, a.Strategy, enrichment.StrategyOrder[j])
			}
		}
		if st.RetryCount > st.MaxRetries {
			t.Fatalf("run %d retry_count %d exceeded budget %d", i, st.RetryCount, st.MaxRetries)
		}

		// admitted fields carry a decided confidence; only the reference check
		// may leave a field in both lists, and it only sees the name fields
		for _, f := range st.ExtractedFields {
			if f.Confidence != enrichment.ConfidenceHigh && f.Confidence != enrichment.ConfidenceMedium {
				t.Fatalf("run %d admitted %s with confidence %s", i, f.FieldName, f.Confidence)
			}
			if hasField(st.ConflictingFields, f.FieldName) &&
				f.FieldName != enrichment.FieldOfficerName &&
				f.FieldName != enrichment.FieldCivilianName {
				t.Fatalf("run %d: %s admitted and conflicted", i, f.FieldName)
			}
		}

		// the audit stream never shows the retry counter moving backwards
		events := audit.batches[len(audit.batches)-1]
		for k := 1; k < len(events); k++ {
			if events[k].RetryCount < events[k-1].RetryCount {
				t.Fatalf("run %d: retry counter regressed at hop %d", i, k)
			}
		}
	}
}

func TestRunBatch_MixedOutcomes(t *testing.T) {
	a1 := hit("https://news.example/a1", 0.8, tp(2018, time.March, 16))

	incidents := &fakeIncidents{rows: map[string]enrichment.IncidentRow{
		"1": houstonRow(),
		"2": {}, // baseline absent, escalates
		"3": houstonRow(),
	}}
	searcher := &fakeSearcher{script: []searchCall{{results: []domain.SearchResult{a1}}}}
	extractor := &fakeExtractor{byURL: map[string]enrichment.Extractions{
		a1.URL: ext(a1.URL, map[enrichment.Field]string{enrichment.FieldWeapon: "handgun"}),
	}}
	outcomes := &fakeOutcomes{errFor: map[string]error{"3": errors.New("pg down")}}

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  searcher,
		Extractor: extractor,
		Outcomes:  outcomes,
	}, Config{Workers: 2})

	rep, err := svc.RunBatch(context.Background(), domain.BatchInput{
		Dataset:     enrichment.DatasetCiviliansShot,
		IncidentIDs: []string{"1", "2", "3"},
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if rep.Total != 3 || rep.Completed != 1 || rep.Escalated != 1 || rep.Failed != 1 {
		t.Fatalf("report = %+v want total 3, completed 1, escalated 1, failed 1", rep)
	}
}

func TestRunBatch_RangeEnumeration(t *testing.T) {
	incidents := &fakeIncidents{} // every id missing, every run escalates

	svc := newTestService(domain.Ports{
		Incidents: incidents,
		Searcher:  &fakeSearcher{script: []searchCall{{}}},
		Extractor: &fakeExtractor{},
		Outcomes:  &fakeOutcomes{},
	}, Config{Workers: 3})

	rep, err := svc.RunBatch(context.Background(), domain.BatchInput{
		Dataset: enrichment.DatasetOfficersShot,
		FromID:  5,
		ToID:    9,
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if rep.Total != 5 || rep.Escalated != 5 {
		t.Fatalf("report = %+v want 5 escalated of 5", rep)
	}
	if incidents.calls != 5 {
		t.Fatalf("lookups = %d want 5", incidents.calls)
	}
}

func TestRunBatch_InvalidInput(t *testing.T) {
	svc := newTestService(domain.Ports{}, Config{})

	if _, err := svc.RunBatch(context.Background(), domain.BatchInput{
		Dataset: enrichment.DatasetType("nope"),
	}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad dataset: err = %v want invalid argument", err)
	}

	if _, err := svc.RunBatch(context.Background(), domain.BatchInput{
		Dataset: enrichment.DatasetCiviliansShot,
	}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty worklist: err = %v want invalid argument", err)
	}
}
