package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rohmanhakim/cricket-api/internal/extractor"
	"github.com/rohmanhakim/cricket-api/internal/fetcher"
	"github.com/rohmanhakim/cricket-api/internal/livescore"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

// API error codes, kept stable for clients.
const (
	codeServiceUnavailable = "SERVICE_UNAVAILABLE"
	codeMatchNotFound      = "MATCH_NOT_FOUND"
	codeScraperFailed      = "SCRAPER_FAILED"
	codeMissingParameter   = "MISSING_PARAMETER"
)

// mapError translates a classified lookup failure into the HTTP status,
// API error code and client message. matchID is only used to phrase
// not-found messages and may be empty for list lookups.
func mapError(err failure.ClassifiedError, matchID string) (int, string, string) {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.Cause {
		case fetcher.ErrCauseTimeout:
			return http.StatusServiceUnavailable, codeServiceUnavailable, "Cricbuzz is not responding"
		case fetcher.ErrCauseNetworkFailure:
			return http.StatusServiceUnavailable, codeServiceUnavailable, "Cannot connect to Cricbuzz"
		}
		return http.StatusInternalServerError, codeScraperFailed, "Failed to scrape data from Cricbuzz"
	}

	var serviceErr *livescore.ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Cause {
		case livescore.ErrCauseMatchNotFound, livescore.ErrCauseInvalidMatchID:
			return http.StatusNotFound, codeMatchNotFound, fmt.Sprintf("No match found with id %s", matchID)
		}
		return http.StatusInternalServerError, codeScraperFailed, "Failed to scrape data from Cricbuzz"
	}

	var parseErr *extractor.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusInternalServerError, codeScraperFailed, "Failed to extract data from Cricbuzz"
	}

	return http.StatusInternalServerError, codeScraperFailed, "Failed to scrape data from Cricbuzz"
}

// isScrapeDegradable reports whether a legacy endpoint should degrade to
// its empty shape instead of surfacing err. Upstream availability
// problems stay visible even on legacy routes.
func isScrapeDegradable(err failure.ClassifiedError) bool {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.Cause {
		case fetcher.ErrCauseTimeout, fetcher.ErrCauseNetworkFailure:
			return false
		}
		return true
	}
	return true
}
