package enrichment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// fieldDefinitions are the natural-language field briefs embedded in the
// extraction prompt. The wording is part of the model contract, changing it
// changes what comes back
var fieldDefinitions = map[Field]string{
	FieldOfficerName:    "Name of the police officer involved in the shooting. This person can be the shooter or the victim.",
	FieldCivilianName:   "Name of the civilian (non-officer) involved in the shooting. This person can be the shooter or the victim.",
	FieldCivilianAge:    "Age of the civilian in integers",
	FieldCivilianRace:   "Race/ethnicity of the civilian",
	FieldWeapon:         "Weapon involved in the incident, including type (e.g., handgun, rifle, knife, vehicle). Note which party possessed or used it if mentioned.",
	FieldLocationDetail: "Detailed location information such as street/business/landmark names",
	FieldTimeOfDay:      "Time of day when the incident occurred, as described in the article",
	FieldOutcome:        "Fatal or non-fatal outcome of the victim (police officer or the civilian)",
	FieldCircumstance:   "Any context or background regarding the incident such as the cause, complications",
}

// FieldDefinition returns the prompt brief for f
func FieldDefinition(f Field) string { return fieldDefinitions[f] }

// ExtractionPrompt builds the single-article structured extraction prompt.
// One call extracts all nine fields at once
func ExtractionPrompt(a Article) string {
	var b strings.Builder
	b.WriteString("You are extracting structured information from a police shooting incident article.\n")
	b.WriteString("For each of the following fields, extract the value from the article:\n\n")
	for _, f := range Fields() {
		fmt.Fprintf(&b, "- %q: %s\n", string(f), fieldDefinitions[f])
	}
	b.WriteString("\nInstructions:\n")
	b.WriteString("- Use the exact field names shown above. (example: use \"weapon\" not \"Weapon used\")\n")
	b.WriteString("- Quote the relevant sentence verbatim as \"source_quotes\".\n")
	b.WriteString("- Explain your rationale as \"llm_reasoning\".\n")
	b.WriteString("- If a field is not mentioned in the article, set value to null.\n")
	b.WriteString("- Respond with ONLY a JSON object of the shape\n")
	b.WriteString(`  {"extractions": [{"field_name": "...", "value": "... or null", "source_quotes": ["..."], "llm_reasoning": "..."}]}`)
	b.WriteString("\n  with one entry per field. No markdown fences, no commentary.\n")

	published := "unknown"
	if a.PublishedDate != nil {
		published = a.PublishedDate.Format("2006-01-02")
	}
	content := ""
	if a.Content != nil {
		content = *a.Content
	}
	fmt.Fprintf(&b, "\nArticle title: %s\nPublished: %s\nContent:\n---\n%s\n---\n", a.Title, published, content)
	return b.String()
}

type extractionResponse struct {
	Extractions []extractionItem `json:"extractions"`
}

type extractionItem struct {
	FieldName    string          `json:"field_name"`
	Value        json.RawMessage `json:"value"`
	SourceQuotes []string        `json:"source_quotes"`
	LLMReasoning *string         `json:"llm_reasoning"`
}

// ParseExtractionResponse decodes a model response for one article into an
// extraction map. Markdown fences are tolerated and stripped. Unknown field
// names are dropped, a duplicate field keeps the last entry. Every surviving
// extraction is stamped with the article URL as its source and pending
// confidence, reconciliation assigns the real level
func ParseExtractionResponse(raw, sourceURL string) (Extractions, error) {
	var resp extractionResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	out := make(Extractions, len(resp.Extractions))
	for _, item := range resp.Extractions {
		f := Field(item.FieldName)
		if !f.Valid() {
			continue
		}
		out[f] = FieldExtraction{
			FieldName:        f,
			Value:            coerceScalar(item.Value),
			Confidence:       ConfidencePending,
			Sources:          []string{sourceURL},
			SourceQuotes:     item.SourceQuotes,
			ExtractionMethod: "llm",
			LLMReasoning:     item.LLMReasoning,
		}
	}
	return out, nil
}

// stripFences removes a wrapping markdown code fence if the model added one
// despite instructions
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// coerceScalar folds a JSON scalar into the string value model. Models
// sometimes return ages as numbers; nil stays nil
func coerceScalar(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return &t
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	}
	s := string(raw)
	return &s
}
