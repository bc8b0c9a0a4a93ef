package livescore

import (
	"github.com/rohmanhakim/cricket-api/internal/extractor"
)

// EnrichedMatch is a match-list entry completed with the lightweight
// details scraped from the match's own page. Enrichment is best effort:
// when the match page cannot be read the extra fields stay empty.
type EnrichedMatch struct {
	Summary    extractor.MatchSummary
	StartTime  string
	StatusText string
}

// ScoreRecord bundles everything scraped from one match page visit. The
// Detail record is Sentinel-padded; Extra degrades to empty fields.
type ScoreRecord struct {
	Detail extractor.ScoreDetail
	Extra  extractor.MatchExtra
}
