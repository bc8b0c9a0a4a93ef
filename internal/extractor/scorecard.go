package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

// maxStatusLength filters out large containers that merely inherit a
// status class; real status lines are short.
const maxStatusLength = 50

// clockPattern recognizes display times such as "07:30 PM" when the page
// carries no labelled start time.
var clockPattern = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(AM|PM)`)

// ExtractScoreDetail scrapes the flat scorecard record from match page
// markup. Fields that cannot be located keep the Sentinel; only a page
// with none of the scorecard structures at all is a ParseError.
func (e *PageExtractor) ExtractScoreDetail(markup []byte) (ScoreDetail, failure.ClassifiedError) {
	doc, perr := parseDocument(markup)
	if perr != nil {
		e.recordError("PageExtractor.ExtractScoreDetail", perr)
		return NewScoreDetail(), perr
	}

	detail := NewScoreDetail()
	anchors := 0

	if title := extractTitle(doc); title != "" {
		detail.Title = title
		anchors++
	}
	if update := extractStatusText(doc); update != "" {
		detail.Update = update
		anchors++
	}
	if score := extractScore(doc); score != "" {
		detail.Score = score
		anchors++
	}
	setField(&detail.RunRate, extractRunRate(doc))

	batters, bowlers := playerRows(doc)
	if len(batters) > 0 || len(bowlers) > 0 {
		anchors++
	}
	if len(batters) > 0 {
		b := batters[0]
		setField(&detail.BatterOneName, b.name)
		setField(&detail.BatterOneRuns, statAt(b.stats, 0))
		setField(&detail.BatterOneBalls, statAt(b.stats, 1))
		setField(&detail.BatterOneStrikeRate, statAt(b.stats, 4))
	}
	if len(batters) > 1 {
		b := batters[1]
		setField(&detail.BatterTwoName, b.name)
		setField(&detail.BatterTwoRuns, statAt(b.stats, 0))
		setField(&detail.BatterTwoBalls, statAt(b.stats, 1))
		setField(&detail.BatterTwoStrikeRate, statAt(b.stats, 4))
	}
	if len(bowlers) > 0 {
		b := bowlers[0]
		setField(&detail.BowlerOneName, b.name)
		setField(&detail.BowlerOneOvers, statAt(b.stats, 0))
		setField(&detail.BowlerOneRuns, statAt(b.stats, 2))
		setField(&detail.BowlerOneWickets, statAt(b.stats, 3))
		setField(&detail.BowlerOneEconomy, statAt(b.stats, 4))
	}
	if len(bowlers) > 1 {
		b := bowlers[1]
		setField(&detail.BowlerTwoName, b.name)
		setField(&detail.BowlerTwoOvers, statAt(b.stats, 0))
		setField(&detail.BowlerTwoRuns, statAt(b.stats, 2))
		setField(&detail.BowlerTwoWickets, statAt(b.stats, 3))
		setField(&detail.BowlerTwoEconomy, statAt(b.stats, 4))
	}

	if anchors == 0 {
		perr := &ParseError{
			Message:   "page carries no scorecard structures",
			Retryable: false,
			Cause:     ErrCauseNoContainer,
		}
		e.recordError("PageExtractor.ExtractScoreDetail", perr)
		return NewScoreDetail(), perr
	}
	return detail, nil
}

// ExtractMatchExtra scrapes the enrichment details from match page
// markup. Missing details degrade to empty fields; only unparseable
// markup is an error.
func (e *PageExtractor) ExtractMatchExtra(markup []byte) (MatchExtra, failure.ClassifiedError) {
	doc, perr := parseDocument(markup)
	if perr != nil {
		e.recordError("PageExtractor.ExtractMatchExtra", perr)
		return MatchExtra{}, perr
	}
	return MatchExtra{
		StartTime:  extractStartTime(doc),
		StatusText: extractStatusText(doc),
	}, nil
}

// setField overwrites a Sentinel-initialized field only when the scraped
// value is non-empty.
func setField(field *string, value string) {
	if value != "" {
		*field = value
	}
}

func statAt(stats []string, idx int) string {
	if idx < len(stats) {
		return stats[idx]
	}
	return ""
}

func extractTitle(doc *goquery.Document) string {
	heading := query(doc.Selection, fieldTitle).First()
	if heading.Length() == 0 {
		return ""
	}
	title := strings.TrimSpace(heading.Text())
	title = strings.ReplaceAll(title, ", Commentary", "")
	return strings.TrimSpace(title)
}

// extractStatusText returns the short status line of a match page, e.g.
// "Live" or "Australia won by 5 wickets". A live badge with no status
// line still reads as live.
func extractStatusText(doc *goquery.Document) string {
	nodes := query(doc.Selection, fieldStatusNode)
	text := ""
	nodes.EachWithBreak(func(_ int, n *goquery.Selection) bool {
		candidate := strings.TrimSpace(n.Text())
		if candidate != "" && len(candidate) <= maxStatusLength {
			text = candidate
			return false
		}
		return true
	})
	if text != "" {
		return text
	}
	if badge := query(doc.Selection, fieldLiveBadge); badge.Length() > 0 {
		return "Live"
	}
	return ""
}

// extractScore composes the headline score line, "TEAM 186/4 (18.2)",
// from the team label and the two value spans of the score block.
func extractScore(doc *goquery.Document) string {
	block := query(doc.Selection, fieldScoreBlock).First()
	if block.Length() == 0 {
		return ""
	}
	values := query(block, fieldScoreBlockValue)
	if values.Length() < 2 {
		return ""
	}
	team := strings.TrimSpace(query(block, fieldScoreBlockTeam).First().Text())
	runsWickets := strings.TrimSpace(values.Eq(0).Text())
	overs := strings.Trim(strings.TrimSpace(values.Eq(1).Text()), "()")
	return strings.TrimSpace(fmt.Sprintf("%s %s (%s)", team, runsWickets, overs))
}

// extractRunRate reads the value next to the CRR label. The value is
// usually the label's sibling span, sometimes the last span of the
// label's parent, and occasionally glued into the label node itself.
func extractRunRate(doc *goquery.Document) string {
	label := query(doc.Selection, fieldRunRateLabel).First()
	if label.Length() == 0 {
		return ""
	}
	if value := label.NextFiltered("span"); value.Length() > 0 {
		return strings.TrimSpace(value.Text())
	}
	if spans := label.Parent().Find("span"); spans.Length() > 1 {
		return strings.TrimSpace(spans.Last().Text())
	}
	value := strings.ReplaceAll(label.Text(), "CRR", "")
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), ":"))
}

func extractStartTime(doc *goquery.Document) string {
	label := query(doc.Selection, fieldStartTimeLabel).First()
	if label.Length() > 0 {
		text := strings.ReplaceAll(label.Parent().Text(), "Date & Time:", "")
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return clockPattern.FindString(doc.Text())
}

type playerRow struct {
	name  string
	stats []string
}

// playerRows splits the scorecard's player rows into batting and bowling
// sides. Rows that follow the bowler header belong to the bowling side;
// everything else is batting. Rows without a profile link are decoration
// and are skipped.
func playerRows(doc *goquery.Document) (batters, bowlers []playerRow) {
	rows := query(doc.Selection, fieldPlayerRow)
	if rows.Length() == 0 {
		return nil, nil
	}
	bowlerRows := doc.Selection.Find("")
	if header := query(doc.Selection, fieldBowlerHeader).First(); header.Length() > 0 {
		bowlerRows = filterByField(header.Parent().NextAll(), fieldPlayerRow)
	}
	batterRows := rows.NotSelection(bowlerRows)
	return collectRows(batterRows), collectRows(bowlerRows)
}

func collectRows(rows *goquery.Selection) []playerRow {
	var players []playerRow
	rows.Each(func(_ int, row *goquery.Selection) {
		link := query(row, fieldPlayerName).First()
		if link.Length() == 0 {
			return
		}
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return
		}
		var stats []string
		query(row, fieldPlayerStat).Each(func(_ int, cell *goquery.Selection) {
			stats = append(stats, strings.TrimSpace(cell.Text()))
		})
		players = append(players, playerRow{name: name, stats: stats})
	})
	return players
}
