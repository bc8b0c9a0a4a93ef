package livescore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/cricket-api/internal/cache"
	"github.com/rohmanhakim/cricket-api/internal/extractor"
	"github.com/rohmanhakim/cricket-api/internal/fetcher"
	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/internal/storage"
	"github.com/rohmanhakim/cricket-api/pkg/cachekey"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
	"github.com/rohmanhakim/cricket-api/pkg/urlutil"
	"golang.org/x/sync/errgroup"
)

/*
Responsibilities
- Resolve live-match and score lookups through the read-through cache
- Fetch upstream pages and hand them to the extractor
- Enrich list entries with per-match details, bounded fan-out
- Translate upstream 404s and empty match pages into a not-found error
- Preserve pages the extractor rejects, when a snapshot sink is wired

Caching
- The match list is cached as one enriched snapshot
- Each match score is cached under its own key
- Per-match extras carry a longer TTL; start times rarely move
- Errors are never cached
*/

const (
	DefaultListTTL  = 15 * time.Second
	DefaultScoreTTL = 5 * time.Second
	DefaultExtraTTL = 5 * time.Minute

	defaultEnrichWorkers = 5

	matchPagePrefix = "live-cricket-scores"
)

type ServiceParam struct {
	Fetcher       fetcher.Fetcher
	Extractor     *extractor.PageExtractor
	Cache         *cache.Cache
	MetadataSink  metadata.MetadataSink
	Snapshots     storage.Sink // optional; nil disables failure snapshots
	BaseURL       url.URL
	ListTTL       time.Duration
	ScoreTTL      time.Duration
	ExtraTTL      time.Duration
	EnrichWorkers int
}

type Service struct {
	fetcher       fetcher.Fetcher
	extractor     *extractor.PageExtractor
	cache         *cache.Cache
	metadataSink  metadata.MetadataSink
	snapshots     storage.Sink
	baseURL       url.URL
	listTTL       time.Duration
	scoreTTL      time.Duration
	extraTTL      time.Duration
	enrichWorkers int
}

func NewService(param ServiceParam) *Service {
	if param.ListTTL <= 0 {
		param.ListTTL = DefaultListTTL
	}
	if param.ScoreTTL <= 0 {
		param.ScoreTTL = DefaultScoreTTL
	}
	if param.ExtraTTL <= 0 {
		param.ExtraTTL = DefaultExtraTTL
	}
	if param.EnrichWorkers <= 0 {
		param.EnrichWorkers = defaultEnrichWorkers
	}
	return &Service{
		fetcher:       param.Fetcher,
		extractor:     param.Extractor,
		cache:         param.Cache,
		metadataSink:  param.MetadataSink,
		snapshots:     param.Snapshots,
		baseURL:       urlutil.Canonicalize(param.BaseURL),
		listTTL:       param.ListTTL,
		scoreTTL:      param.ScoreTTL,
		extraTTL:      param.ExtraTTL,
		enrichWorkers: param.EnrichWorkers,
	}
}

// LiveMatches returns the enriched match-list snapshot, served from cache
// while fresh. Concurrent callers share one upstream visit.
func (s *Service) LiveMatches(ctx context.Context) ([]EnrichedMatch, failure.ClassifiedError) {
	key := cachekey.Build("live-matches", nil)
	matches, err := cache.Fetch(ctx, s.cache, key, s.listTTL, func(ctx context.Context) ([]EnrichedMatch, error) {
		return s.loadLiveMatches(ctx)
	})
	if err != nil {
		return nil, s.classify("Service.LiveMatches", err)
	}
	return matches, nil
}

// MatchScore returns the scorecard snapshot for one match. Ids must be
// decimal; anything else is rejected before touching the upstream.
func (s *Service) MatchScore(ctx context.Context, matchID string) (ScoreRecord, failure.ClassifiedError) {
	if !validMatchID(matchID) {
		serr := &ServiceError{
			Message: fmt.Sprintf("match id %q is not a number", matchID),
			Cause:   ErrCauseInvalidMatchID,
		}
		s.recordError("Service.MatchScore", serr, metadata.NewAttr(metadata.AttrMatchID, matchID))
		return ScoreRecord{}, serr
	}

	key := cachekey.Build("match-score", map[string]string{"id": matchID})
	record, err := cache.Fetch(ctx, s.cache, key, s.scoreTTL, func(ctx context.Context) (ScoreRecord, error) {
		return s.loadMatchScore(ctx, matchID)
	})
	if err != nil {
		return ScoreRecord{}, s.classify("Service.MatchScore", err)
	}
	return record, nil
}

func (s *Service) loadLiveMatches(ctx context.Context) ([]EnrichedMatch, error) {
	result, ferr := s.fetcher.Fetch(ctx, fetcher.NewFetchParam(s.baseURL))
	if ferr != nil {
		return nil, ferr
	}
	summaries, perr := s.extractor.ExtractMatchList(result.Body())
	if perr != nil {
		s.snapshot(s.baseURL, result.Body())
		return nil, perr
	}
	return s.enrich(ctx, summaries), nil
}

func (s *Service) loadMatchScore(ctx context.Context, matchID string) (ScoreRecord, error) {
	result, ferr := s.fetcher.Fetch(ctx, fetcher.NewFetchParam(s.matchURL(matchID)))
	if ferr != nil {
		return ScoreRecord{}, translateNotFound(ferr, matchID)
	}
	detail, perr := s.extractor.ExtractScoreDetail(result.Body())
	if perr != nil {
		s.snapshot(s.matchURL(matchID), result.Body())
		return ScoreRecord{}, translateNotFound(perr, matchID)
	}
	extra, xerr := s.extractor.ExtractMatchExtra(result.Body())
	if xerr != nil {
		extra = extractor.MatchExtra{}
	}
	return ScoreRecord{Detail: detail, Extra: extra}, nil
}

// enrich completes every summary with its match-page details, visiting at
// most enrichWorkers pages at a time. A page that cannot be read leaves
// its entry unenriched; the list itself never fails here.
func (s *Service) enrich(ctx context.Context, summaries []extractor.MatchSummary) []EnrichedMatch {
	enriched := make([]EnrichedMatch, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichWorkers)
	for i, summary := range summaries {
		i, summary := i, summary
		g.Go(func() error {
			summary.Link = s.absoluteLink(summary.Link)
			extra := s.matchExtra(gctx, summary.ID)
			enriched[i] = EnrichedMatch{
				Summary:    summary,
				StartTime:  extra.StartTime,
				StatusText: extra.StatusText,
			}
			return nil
		})
	}
	_ = g.Wait()
	return enriched
}

func (s *Service) matchExtra(ctx context.Context, matchID string) extractor.MatchExtra {
	key := cachekey.Build("match-extra", map[string]string{"id": matchID})
	extra, err := cache.Fetch(ctx, s.cache, key, s.extraTTL, func(ctx context.Context) (extractor.MatchExtra, error) {
		result, ferr := s.fetcher.Fetch(ctx, fetcher.NewFetchParam(s.matchURL(matchID)))
		if ferr != nil {
			return extractor.MatchExtra{}, ferr
		}
		return s.extractor.ExtractMatchExtra(result.Body())
	})
	if err != nil {
		return extractor.MatchExtra{}
	}
	return extra
}

func (s *Service) matchURL(matchID string) url.URL {
	return urlutil.Join(s.baseURL, matchPagePrefix, matchID)
}

// snapshot preserves markup the extractor rejected. The sink records its
// own failures; a snapshot never alters the lookup outcome.
func (s *Service) snapshot(pageURL url.URL, markup []byte) {
	if s.snapshots == nil {
		return
	}
	_, _ = s.snapshots.Write(pageURL.String(), markup)
}

// absoluteLink resolves a scraped href against the upstream base URL so
// clients receive links they can follow directly.
func (s *Service) absoluteLink(href string) string {
	if href == "" || strings.Contains(href, "://") {
		return href
	}
	u := s.baseURL
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	u.Path = href
	return u.String()
}

// classify brings errors crossing the cache boundary back to the
// classified world. Upstream errors are already classified and recorded
// at their source; only failures born here are recorded again.
func (s *Service) classify(action string, err error) failure.ClassifiedError {
	var classified failure.ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}
	serr := &ServiceError{
		Message: err.Error(),
		Cause:   ErrCauseAborted,
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		serr.Message = "request ended before the lookup completed"
	}
	s.recordError(action, serr)
	return serr
}

// translateNotFound converts the two upstream shapes of a missing match,
// an HTTP 404 and a match page without scorecard structures, into
// ErrCauseMatchNotFound. Everything else passes through unchanged.
func translateNotFound(err failure.ClassifiedError, matchID string) failure.ClassifiedError {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) &&
		fetchErr.Cause == fetcher.ErrCauseHTTPStatus &&
		fetchErr.StatusCode == http.StatusNotFound {
		return &ServiceError{
			Message: fmt.Sprintf("no match with id %s", matchID),
			Cause:   ErrCauseMatchNotFound,
		}
	}
	var parseErr *extractor.ParseError
	if errors.As(err, &parseErr) && parseErr.Cause == extractor.ErrCauseNoContainer {
		return &ServiceError{
			Message: fmt.Sprintf("no match with id %s", matchID),
			Cause:   ErrCauseMatchNotFound,
		}
	}
	return err
}

func (s *Service) recordError(action string, serr *ServiceError, attrs ...metadata.Attribute) {
	s.metadataSink.RecordError(
		time.Now(),
		"livescore",
		action,
		mapServiceErrorToMetadataCause(serr),
		serr.Error(),
		attrs,
	)
}

func validMatchID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
