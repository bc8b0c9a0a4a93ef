package extractor

import "strings"

// Sentinel is substituted for every scorecard field that could not be
// located in the markup. Consumers never see an empty string and never
// need presence checks: a field either carries a scraped value or this
// exact text.
const Sentinel = "Data Not Found"

// MatchStatus classifies the lifecycle phase of a match as advertised by
// its status text.
type MatchStatus int

const (
	// StatusUnknown means the page carried no status text for the match.
	StatusUnknown MatchStatus = iota
	// StatusLive means play is in progress.
	StatusLive
	// StatusUpcoming means the match has not started yet.
	StatusUpcoming
	// StatusCompleted means the match has finished.
	StatusCompleted
)

func (s MatchStatus) String() string {
	switch s {
	case StatusLive:
		return "Live"
	case StatusUpcoming:
		return "Upcoming"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ClassifyStatus maps raw status text to a MatchStatus using
// case-insensitive substring rules. Empty or whitespace-only text means
// the source carried no status at all, which is reported as
// StatusUnknown rather than guessed.
func ClassifyStatus(text string) MatchStatus {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return StatusUnknown
	}
	lowered := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lowered, "live"):
		return StatusLive
	case strings.Contains(lowered, "complete"), strings.Contains(lowered, "result"):
		return StatusCompleted
	default:
		return StatusUpcoming
	}
}

// MatchSummary is one entry of the match-list snapshot scraped from the
// homepage.
type MatchSummary struct {
	ID     string
	Title  string
	Status MatchStatus
	Link   string
}

// ScoreDetail is the flat scorecard record scraped from a match page.
// Every field is always populated: extraction starts from an
// all-Sentinel record and overwrites only the fields it finds.
type ScoreDetail struct {
	Title   string
	Update  string
	Score   string
	RunRate string

	BatterOneName       string
	BatterOneRuns       string
	BatterOneBalls      string
	BatterOneStrikeRate string

	BatterTwoName       string
	BatterTwoRuns       string
	BatterTwoBalls      string
	BatterTwoStrikeRate string

	BowlerOneName    string
	BowlerOneOvers   string
	BowlerOneRuns    string
	BowlerOneWickets string
	BowlerOneEconomy string

	BowlerTwoName    string
	BowlerTwoOvers   string
	BowlerTwoRuns    string
	BowlerTwoWickets string
	BowlerTwoEconomy string
}

// NewScoreDetail returns a record with every field set to the Sentinel.
func NewScoreDetail() ScoreDetail {
	return ScoreDetail{
		Title:   Sentinel,
		Update:  Sentinel,
		Score:   Sentinel,
		RunRate: Sentinel,

		BatterOneName:       Sentinel,
		BatterOneRuns:       Sentinel,
		BatterOneBalls:      Sentinel,
		BatterOneStrikeRate: Sentinel,

		BatterTwoName:       Sentinel,
		BatterTwoRuns:       Sentinel,
		BatterTwoBalls:      Sentinel,
		BatterTwoStrikeRate: Sentinel,

		BowlerOneName:    Sentinel,
		BowlerOneOvers:   Sentinel,
		BowlerOneRuns:    Sentinel,
		BowlerOneWickets: Sentinel,
		BowlerOneEconomy: Sentinel,

		BowlerTwoName:    Sentinel,
		BowlerTwoOvers:   Sentinel,
		BowlerTwoWickets: Sentinel,
		BowlerTwoRuns:    Sentinel,
		BowlerTwoEconomy: Sentinel,
	}
}

// MatchExtra carries the lightweight details scraped from a match page to
// enrich a list entry. Unlike ScoreDetail it is not Sentinel-padded;
// an empty field simply means the page did not advertise it.
type MatchExtra struct {
	StartTime  string
	StatusText string
}
