package server

import (
	"github.com/rohmanhakim/cricket-api/internal/extractor"
	"github.com/rohmanhakim/cricket-api/internal/livescore"
)

// successEnvelope wraps versioned API responses.
type successEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// errorEnvelope is the error shape of the versioned API.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// matchResponse is one match-list entry as served to clients.
type matchResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Link       string `json:"link"`
	StartTime  string `json:"start_time,omitempty"`
	StatusText string `json:"status_text,omitempty"`
}

// scoreResponse is the flat scorecard shape. The key spelling, wickers
// included, is kept exactly as clients of the original API expect it.
type scoreResponse struct {
	Title            string `json:"title"`
	Update           string `json:"update"`
	LiveScore        string `json:"livescore"`
	RunRate          string `json:"runrate"`
	BatterOne        string `json:"batterone"`
	BatsmanOneRun    string `json:"batsmanonerun"`
	BatsmanOneBall   string `json:"batsmanoneball"`
	BatsmanOneSR     string `json:"batsmanonesr"`
	BatterTwo        string `json:"battertwo"`
	BatsmanTwoRun    string `json:"batsmantworun"`
	BatsmanTwoBall   string `json:"batsmantwoball"`
	BatsmanTwoSR     string `json:"batsmantwosr"`
	BowlerOne        string `json:"bowlerone"`
	BowlerOneOver    string `json:"bowleroneover"`
	BowlerOneRun     string `json:"bowleronerun"`
	BowlerOneWickers string `json:"bowleronewickers"`
	BowlerOneEconomy string `json:"bowleroneeconomy"`
	BowlerTwo        string `json:"bowlertwo"`
	BowlerTwoOver    string `json:"bowlertwoover"`
	BowlerTwoRun     string `json:"bowlertworun"`
	BowlerTwoWickers string `json:"bowlertwowickers"`
	BowlerTwoEconomy string `json:"bowlertwoeconomy"`
}

// liveScoreResponse is the condensed live view derived from the flat
// scorecard by renaming keys. Values are copied verbatim.
type liveScoreResponse struct {
	Title               string `json:"title"`
	Update              string `json:"update"`
	Current             string `json:"current"`
	RunRate             string `json:"runrate"`
	Batsman             string `json:"batsman"`
	BatsmanRun          string `json:"batsmanrun"`
	BallsFaced          string `json:"ballsfaced"`
	SR                  string `json:"sr"`
	BatsmanTwo          string `json:"batsmantwo"`
	BatsmanTwoRun       string `json:"batsmantworun"`
	BatsmanTwoBallFaced string `json:"batsmantwoballfaced"`
	BatsmanTwoSR        string `json:"batsmantwosr"`
	Bowler              string `json:"bowler"`
	BowlerOver          string `json:"bowlerover"`
	BowlerRuns          string `json:"bowlerruns"`
	BowlerWickets       string `json:"bowlerwickets"`
	BowlerEconomy       string `json:"bowlereconomy"`
	BowlerTwo           string `json:"bowlertwo"`
	BowlerTwoOver       string `json:"bowlertwoover"`
	BowlerTwoRuns       string `json:"bowlertworuns"`
	BowlerTwoWickets    string `json:"bowlertwowickets"`
	BowlerTwoEconomy    string `json:"bowlertwoeconomy"`
}

// nestedScoreResponse carries the live view together with a success flag.
// A lookup without a record answers success false and an empty livescore
// object, never null.
type nestedScoreResponse struct {
	Success   bool `json:"success"`
	LiveScore any  `json:"livescore"`
}

func toMatchResponse(m livescore.EnrichedMatch) matchResponse {
	return matchResponse{
		ID:         m.Summary.ID,
		Title:      m.Summary.Title,
		Status:     m.Summary.Status.String(),
		Link:       m.Summary.Link,
		StartTime:  m.StartTime,
		StatusText: m.StatusText,
	}
}

func toScoreResponse(detail extractor.ScoreDetail) scoreResponse {
	return scoreResponse{
		Title:            detail.Title,
		Update:           detail.Update,
		LiveScore:        detail.Score,
		RunRate:          detail.RunRate,
		BatterOne:        detail.BatterOneName,
		BatsmanOneRun:    detail.BatterOneRuns,
		BatsmanOneBall:   detail.BatterOneBalls,
		BatsmanOneSR:     detail.BatterOneStrikeRate,
		BatterTwo:        detail.BatterTwoName,
		BatsmanTwoRun:    detail.BatterTwoRuns,
		BatsmanTwoBall:   detail.BatterTwoBalls,
		BatsmanTwoSR:     detail.BatterTwoStrikeRate,
		BowlerOne:        detail.BowlerOneName,
		BowlerOneOver:    detail.BowlerOneOvers,
		BowlerOneRun:     detail.BowlerOneRuns,
		BowlerOneWickers: detail.BowlerOneWickets,
		BowlerOneEconomy: detail.BowlerOneEconomy,
		BowlerTwo:        detail.BowlerTwoName,
		BowlerTwoOver:    detail.BowlerTwoOvers,
		BowlerTwoRun:     detail.BowlerTwoRuns,
		BowlerTwoWickers: detail.BowlerTwoWickets,
		BowlerTwoEconomy: detail.BowlerTwoEconomy,
	}
}

func toLiveScoreResponse(detail extractor.ScoreDetail) liveScoreResponse {
	return liveScoreResponse{
		Title:               detail.Title,
		Update:              detail.Update,
		Current:             detail.Score,
		RunRate:             detail.RunRate,
		Batsman:             detail.BatterOneName,
		BatsmanRun:          detail.BatterOneRuns,
		BallsFaced:          detail.BatterOneBalls,
		SR:                  detail.BatterOneStrikeRate,
		BatsmanTwo:          detail.BatterTwoName,
		BatsmanTwoRun:       detail.BatterTwoRuns,
		BatsmanTwoBallFaced: detail.BatterTwoBalls,
		BatsmanTwoSR:        detail.BatterTwoStrikeRate,
		Bowler:              detail.BowlerOneName,
		BowlerOver:          detail.BowlerOneOvers,
		BowlerRuns:          detail.BowlerOneRuns,
		BowlerWickets:       detail.BowlerOneWickets,
		BowlerEconomy:       detail.BowlerOneEconomy,
		BowlerTwo:           detail.BowlerTwoName,
		BowlerTwoOver:       detail.BowlerTwoOvers,
		BowlerTwoRuns:       detail.BowlerTwoRuns,
		BowlerTwoWickets:    detail.BowlerTwoWickets,
		BowlerTwoEconomy:    detail.BowlerTwoEconomy,
	}
}

// toNestedResponse builds the live view envelope. A nil record means no
// match data exists; an all-Sentinel record is still a real record and
// reads as success.
func toNestedResponse(record *livescore.ScoreRecord) nestedScoreResponse {
	if record == nil {
		return nestedScoreResponse{Success: false, LiveScore: struct{}{}}
	}
	return nestedScoreResponse{Success: true, LiveScore: toLiveScoreResponse(record.Detail)}
}
