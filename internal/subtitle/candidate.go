package subtitle

// Candidate is one subtitle offer returned by the catalog, normalized from a
// loosely typed search record.
type Candidate struct {
	URL    string
	Score  float64
	Lang   string
	Format string
}

// Field names and defaults of the catalog's search records.
const (
	fieldDownloadLink = "SubDownloadLink"
	fieldLanguageID   = "SubLanguageID"
	fieldScore        = "Score"
	fieldFormat       = "SubFormat"

	defaultLang   = "nolang"
	defaultFormat = "srt"
)

// CandidateFromRecord normalizes one raw search record. The download link is
// the only mandatory field: records without it (or with a non-string value)
// yield no candidate at all and are dropped silently, because malformed hits
// are an expected part of the catalog's responses. Every other field has a
// documented default. A present-but-garbage URL still passes; it fails at
// download time instead.
func CandidateFromRecord(record map[string]any) (Candidate, bool) {
	url, ok := record[fieldDownloadLink].(string)
	if !ok {
		return Candidate{}, false
	}

	candidate := Candidate{
		URL:    url,
		Lang:   defaultLang,
		Format: defaultFormat,
	}
	if lang, ok := record[fieldLanguageID].(string); ok {
		candidate.Lang = lang
	}
	switch score := record[fieldScore].(type) {
	case float64:
		candidate.Score = score
	case int64:
		candidate.Score = float64(score)
	}
	if format, ok := record[fieldFormat].(string); ok {
		candidate.Format = format
	}
	return candidate, true
}

// CandidatesFromRecords normalizes a whole search response, keeping input
// order. Dropped records are not errors.
func CandidatesFromRecords(records []map[string]any) []Candidate {
	candidates := make([]Candidate, 0, len(records))
	for _, record := range records {
		if candidate, ok := CandidateFromRecord(record); ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}
