package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

// matchIDPattern captures the numeric match id from a match page link,
// e.g. /live-cricket-scores/139252/ind-vs-aus-3rd-test.
var matchIDPattern = regexp.MustCompile(`/live-cricket-scores/(\d+)`)

// ExtractMatchList scrapes every match card from homepage markup. Cards
// are returned in document order, deduplicated by match id. A page with
// no recognizable cards at all is a ParseError; a card missing its
// status is kept with StatusUnknown.
func (e *PageExtractor) ExtractMatchList(markup []byte) ([]MatchSummary, failure.ClassifiedError) {
	doc, perr := parseDocument(markup)
	if perr != nil {
		e.recordError("PageExtractor.ExtractMatchList", perr)
		return nil, perr
	}

	cards := query(doc.Selection, fieldMatchCard)
	seen := make(map[string]bool)
	var matches []MatchSummary
	cards.Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Attr("href")
		if !ok {
			return
		}
		id := matchIDFromLink(href)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		matches = append(matches, MatchSummary{
			ID:     id,
			Title:  cardTitle(card),
			Status: ClassifyStatus(cardStatusText(card)),
			Link:   href,
		})
	})

	if len(matches) == 0 {
		perr := &ParseError{
			Message:   "no match cards found on page",
			Retryable: false,
			Cause:     ErrCauseNoContainer,
		}
		e.recordError("PageExtractor.ExtractMatchList", perr)
		return nil, perr
	}
	return matches, nil
}

func matchIDFromLink(href string) string {
	groups := matchIDPattern.FindStringSubmatch(href)
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}

// cardTitle prefers the anchor's title attribute, which carries the full
// match name, over the anchor text, which mixes in score fragments.
func cardTitle(card *goquery.Selection) string {
	if title := strings.TrimSpace(card.AttrOr("title", "")); title != "" {
		return title
	}
	return strings.Join(strings.Fields(card.Text()), " ")
}

// cardStatusText returns the raw status text inside a match card, or ""
// when the card carries none.
func cardStatusText(card *goquery.Selection) string {
	nodes := query(card, fieldMatchCardStatus)
	text := ""
	nodes.EachWithBreak(func(_ int, n *goquery.Selection) bool {
		if candidate := strings.TrimSpace(n.Text()); candidate != "" {
			text = candidate
			return false
		}
		return true
	})
	return text
}
