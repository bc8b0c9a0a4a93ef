package extractor

import "github.com/PuerkitoBio/goquery"

// Field keys into knownSelectors. Every structural lookup the extractor
// performs goes through one of these.
const (
	fieldMatchCard       = "matchCard"
	fieldMatchCardStatus = "matchCardStatus"
	fieldTitle           = "title"
	fieldStatusNode      = "statusNode"
	fieldLiveBadge       = "liveBadge"
	fieldScoreBlock      = "scoreBlock"
	fieldScoreBlockTeam  = "scoreBlockTeam"
	fieldScoreBlockValue = "scoreBlockValue"
	fieldRunRateLabel    = "runRateLabel"
	fieldPlayerRow       = "playerRow"
	fieldPlayerName      = "playerName"
	fieldPlayerStat      = "playerStat"
	fieldBowlerHeader    = "bowlerHeader"
	fieldStartTimeLabel  = "startTimeLabel"
)

// knownSelectors holds every selector the extractor queries, keyed by the
// field it locates. The first selector in each list is the primary one,
// the rest are fallbacks tried in order when the primary finds nothing.
// When the upstream markup changes, this table is the only place that
// needs editing.
var knownSelectors = map[string][]string{
	fieldMatchCard: {
		"a[href*='/live-cricket-scores/']",
	},
	fieldMatchCardStatus: {
		"[class*='cb-text-']",
		"[class*='cb-match-status']",
	},
	fieldTitle: {
		"h1.cb-nav-hdr",
		"h1",
	},
	fieldStatusNode: {
		"[class*='cb-text-']",
		"[class*='cb-min-stts']",
	},
	fieldLiveBadge: {
		"span[class*='cb-plus-live-tag']",
		"span[class*='cb-live-tag']",
	},
	fieldScoreBlock: {
		"div.font-bold.text-xl.flex",
		"div.cb-font-20.text-bold",
	},
	fieldScoreBlockTeam: {
		"div.mr-2",
	},
	fieldScoreBlockValue: {
		"span.mr-2",
	},
	fieldRunRateLabel: {
		"span:containsOwn('CRR')",
		"div:containsOwn('CRR')",
	},
	fieldPlayerRow: {
		"div.scorecard-bat-grid.grid",
		"div[class*='scorecard-bat-grid']",
	},
	fieldPlayerName: {
		"a[href*='/profiles/']",
	},
	fieldPlayerStat: {
		"div.flex.justify-center.items-center",
	},
	fieldBowlerHeader: {
		"div:containsOwn('Bowler')",
	},
	fieldStartTimeLabel: {
		"span:containsOwn('Date & Time:')",
		"div:containsOwn('Date & Time:')",
	},
}

// query runs the field's selector chain against root and returns the
// matches of the first selector that finds anything. The returned
// selection is empty when every selector in the chain missed.
func query(root *goquery.Selection, field string) *goquery.Selection {
	last := root.Find("")
	for _, selector := range knownSelectors[field] {
		last = root.Find(selector)
		if last.Length() > 0 {
			return last
		}
	}
	return last
}

// filterByField keeps only the nodes of sel that match the field's
// selector chain, preserving document order.
func filterByField(sel *goquery.Selection, field string) *goquery.Selection {
	last := sel.Filter("")
	for _, selector := range knownSelectors[field] {
		last = sel.Filter(selector)
		if last.Length() > 0 {
			return last
		}
	}
	return last
}
