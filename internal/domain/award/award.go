package award

import (
	"bytes"
	"sort"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

// Candidate pairs an evaluation with the participation it scores.
type Candidate struct {
	Evaluation    *bidding.Evaluation
	Participation *bidding.Participation
}

// Result is the outcome of a selection round.
type Result struct {
	Winner Candidate
	// Ranked holds every eligible candidate, best first.
	Ranked []Candidate
}

// Candidates joins evaluations to their participations, dropping evaluations
// of withdrawn or unknown participations.
func Candidates(evaluations []*bidding.Evaluation, participations []*bidding.Participation) []Candidate {
	byID := make(map[uuid.UUID]*bidding.Participation, len(participations))
	for _, p := range participations {
		byID[p.ID] = p
	}

	candidates := make([]Candidate, 0, len(evaluations))
	for _, e := range evaluations {
		p, ok := byID[e.ParticipationID]
		if !ok || !p.Active() {
			continue
		}
		candidates = append(candidates, Candidate{Evaluation: e, Participation: p})
	}
	return candidates
}

// Less orders candidates best first: highest total score, then earliest
// participation submission, then earliest evaluation, then lowest
// evaluation id.
func Less(a, b Candidate) bool {
	if a.Evaluation.TotalScore != b.Evaluation.TotalScore {
		return a.Evaluation.TotalScore > b.Evaluation.TotalScore
	}
	if !a.Participation.SubmittedAt.Equal(b.Participation.SubmittedAt) {
		return a.Participation.SubmittedAt.Before(b.Participation.SubmittedAt)
	}
	if !a.Evaluation.CreatedAt.Equal(b.Evaluation.CreatedAt) {
		return a.Evaluation.CreatedAt.Before(b.Evaluation.CreatedAt)
	}
	return bytes.Compare(a.Evaluation.ID[:], b.Evaluation.ID[:]) < 0
}

// Select picks the winning candidate. It is deterministic for a given
// evaluation set so repeated calls agree.
func Select(evaluations []*bidding.Evaluation, participations []*bidding.Participation) (Result, error) {
	ranked := Candidates(evaluations, participations)
	if len(ranked) == 0 {
		return Result{}, shared.ErrNoEvaluations
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})

	return Result{Winner: ranked[0], Ranked: ranked}, nil
}
