package poll

import (
	"sort"
	"time"

	"pollboard-backend/models"
)

// TallyEntry is one option with its current vote count and percentage.
type TallyEntry struct {
	OptionID   string  `json:"id"`
	OptionText string  `json:"option_text"`
	Position   int     `json:"position"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// ResultEntry is a TallyEntry in results order, with the leading flag set
// on the top entry when it actually has votes.
type ResultEntry struct {
	TallyEntry
	Leading bool `json:"leading"`
}

// ComputeTally counts votes and computes percentages for every option of
// a poll. Options absent from counts default to zero, so a fresh poll
// tallies to all zeros rather than missing rows. Output keeps the
// options' original order.
func ComputeTally(options []models.Option, counts map[string]int64) []TallyEntry {
	var total int64
	for _, opt := range options {
		total += counts[opt.ID]
	}

	tally := make([]TallyEntry, len(options))
	for i, opt := range options {
		votes := counts[opt.ID]
		percentage := 0.0
		if total > 0 {
			percentage = float64(votes) / float64(total) * 100
		}
		tally[i] = TallyEntry{
			OptionID:   opt.ID,
			OptionText: opt.OptionText,
			Position:   opt.Position,
			Votes:      votes,
			Percentage: percentage,
		}
	}
	return tally
}

// TotalVotes sums the counts of a tally.
func TotalVotes(tally []TallyEntry) int64 {
	var total int64
	for _, entry := range tally {
		total += entry.Votes
	}
	return total
}

// SortedResults orders a tally by vote count descending. Ties keep the
// original option order (stable sort). The first entry is flagged as
// leading only when it has at least one vote.
func SortedResults(tally []TallyEntry) []ResultEntry {
	results := make([]ResultEntry, len(tally))
	for i, entry := range tally {
		results[i] = ResultEntry{TallyEntry: entry}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Votes > results[j].Votes
	})

	if len(results) > 0 && results[0].Votes > 0 {
		results[0].Leading = true
	}
	return results
}

// IsExpired reports whether the poll's expiration date is set and
// strictly in the past. A poll without an expiration date never expires.
func IsExpired(p *models.Poll, now time.Time) bool {
	return p.ExpirationDate != nil && p.ExpirationDate.Before(now)
}

// IsCreator reports whether userID created the poll.
func IsCreator(p *models.Poll, userID string) bool {
	return p.CreatedBy == userID
}

// DetailView decides what the poll detail screen renders: the aggregated
// results for the creator or anyone who already voted, the selectable
// ballot for everyone else.
type DetailView string

const (
	ViewResults DetailView = "results"
	ViewBallot  DetailView = "ballot"
)

// DecideDetailView applies the detail-view rule for one viewer.
func DecideDetailView(isCreator, hasVoted bool) DetailView {
	if isCreator || hasVoted {
		return ViewResults
	}
	return ViewBallot
}
