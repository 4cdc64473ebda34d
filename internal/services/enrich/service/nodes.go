package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newshound/internal/core/enrichment"
	"newshound/internal/services/enrich/domain"
)

// stamp writes a stage failure onto the state with its load-bearing prefix.
// The coordinator substring-matches these markers, so the prefix must reach
// the state verbatim
func stamp(st *enrichment.State, marker string, err error) {
	msg := marker + ": " + err.Error()
	st.ErrorMessage = &msg
}

// extractNode fetches the baseline row and maps it onto the state. The raw
// row is returned so the runner can keep columns that are not part of the
// baseline, the agency name in particular
func (s *Service) extractNode(ctx context.Context, st *enrichment.State) enrichment.IncidentRow {
	st.CurrentStage = enrichment.StageExtract
	row, err := s.Ports.Incidents.FetchIncident(ctx, st.IncidentID, st.Dataset)
	if err != nil {
		stamp(st, enrichment.ErrExtractFailed, err)
		return enrichment.IncidentRow{}
	}
	st.ApplyBaseline(enrichment.BaselineFromRow(st.Dataset, row))
	return row
}

// searchNode runs one outbound search with the coordinator-chosen strategy.
// One invocation = one call; retrying is the coordinator walking the ladder.
// An attempt is appended even when the call fails so the trace shows it
func (s *Service) searchNode(ctx context.Context, st *enrichment.State) {
	st.CurrentStage = enrichment.StageSearch
	strategy := st.NextStrategy
	query := enrichment.BuildQuery(st, strategy)

	attempt := enrichment.SearchAttempt{
		Query:     query,
		Strategy:  strategy,
		Timestamp: s.now().UTC(),
	}

	results, err := s.Ports.Searcher.Search(ctx, query, s.Cfg.SearchMaxResults)
	if err != nil {
		stamp(st, enrichment.ErrSearchFailed, err)
		st.RetrievedArticles = []enrichment.Article{}
		st.SearchAttempts = append(st.SearchAttempts, attempt)
		return
	}

	st.CostUSD += s.Cfg.CostSearchUSD

	articles := make([]enrichment.Article, 0, len(results))
	var total float64
	for _, r := range results {
		articles = append(articles, articleFrom(r))
		total += r.Score
	}
	st.RetrievedArticles = articles

	attempt.NumResults = len(articles)
	if len(articles) > 0 {
		avg := total / float64(len(articles))
		attempt.AvgRelevanceScore = &avg
	}
	st.SearchAttempts = append(st.SearchAttempts, attempt)

	// A stale failure stamp from an earlier rung would keep the coordinator
	// retrying past good results, so success clears its own marker
	if st.ErrorMessage != nil && strings.Contains(*st.ErrorMessage, enrichment.ErrSearchFailed) {
		st.ErrorMessage = nil
	}
}

// validateNode scores every retrieved article against the incident anchors.
// Pure over the state; a panic out of the scoring loop becomes the
// documented failure shape, empty results plus the validation stamp
func (s *Service) validateNode(st *enrichment.State) {
	st.CurrentStage = enrichment.StageValidate
	defer func() {
		if r := recover(); r != nil {
			st.ValidationResults = []enrichment.ValidationResult{}
			stamp(st, enrichment.ErrValidateFailed, fmt.Errorf("%v", r))
		}
	}()
	st.ValidationResults = enrichment.ValidateArticles(st)
}

// mergeNode extracts fields from every retrieved article and reconciles
// them. A per-article extractor failure drops that article's contribution;
// context cancellation and panics around the loop fail the merge itself
func (s *Service) mergeNode(ctx context.Context, st *enrichment.State) {
	st.CurrentStage = enrichment.StageMerge
	defer func() {
		if r := recover(); r != nil {
			mergeFailed(st, fmt.Errorf("%v", r))
		}
	}()

	perArticle := make([]enrichment.Extractions, 0, len(st.RetrievedArticles))
	for _, a := range st.RetrievedArticles {
		if a.Content == nil {
			s.log.Warn().Str("incident_id", st.IncidentID).Str("url", a.URL).
				Msg("article has no content, skipping extraction")
			continue
		}
		ext, usage, err := s.Ports.Extractor.ExtractFields(ctx, a)
		st.CostUSD += s.tokenCost(usage)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				mergeFailed(st, err)
				return
			}
			s.log.Warn().Str("incident_id", st.IncidentID).Str("url", a.URL).Err(err).
				Msg("article extraction failed, dropping")
			continue
		}
		perArticle = append(perArticle, ext)
	}

	enrichment.MergeExtractions(st, perArticle)
}

// mergeFailed resets merge output to the documented failure shape: no
// extractions and a nil conflict list, which the coordinator reads as a
// merge-level failure rather than a clean empty merge
func mergeFailed(st *enrichment.State, err error) {
	st.ExtractedFields = []enrichment.FieldExtraction{}
	st.ConflictingFields = nil
	stamp(st, enrichment.ErrMergeFailed, err)
}

// snippetLen bounds the article snippet in characters
const snippetLen = 500

// articleFrom converts one provider hit into the article shape the core
// validates and merges
func articleFrom(r domain.SearchResult) enrichment.Article {
	content := r.Content
	return enrichment.Article{
		URL:            r.URL,
		Title:          r.Title,
		Snippet:        snippetOf(content),
		Content:        &content,
		PublishedDate:  r.PublishedDate,
		RelevanceScore: r.Score,
	}
}

// snippetOf keeps the leading snippetLen characters of content
func snippetOf(content string) string {
	n := 0
	for i := range content {
		if n == snippetLen {
			return content[:i]
		}
		n++
	}
	return content
}

// tokenCost prices one extraction call. Unset rates price to zero
func (s *Service) tokenCost(u domain.TokenUsage) float64 {
	const mtok = 1_000_000
	return float64(u.InputTokens)*s.Cfg.CostInputMTokUSD/mtok +
		float64(u.OutputTokens)*s.Cfg.CostOutputMTokUSD/mtok
}
