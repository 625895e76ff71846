package bidding

import (
	"time"

	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Scores are the four evaluation criteria.
type Scores struct {
	Price       int `json:"price"`
	Quality     int `json:"quality"`
	Delivery    int `json:"delivery"`
	Reliability int `json:"reliability"`
}

// Validate checks every sub-score against the allowed bounds.
func (s Scores) Validate() error {
	criteria := []struct {
		name  string
		value int
	}{
		{"price", s.Price},
		{"quality", s.Quality},
		{"delivery", s.Delivery},
		{"reliability", s.Reliability},
	}
	for _, c := range criteria {
		if c.value < MinScore || c.value > MaxScore {
			return shared.Validation("%s score %d is outside %d..%d", c.name, c.value, MinScore, MaxScore)
		}
	}
	return nil
}

// Total is the integer-truncated arithmetic mean.
func (s Scores) Total() int {
	return (s.Price + s.Quality + s.Delivery + s.Reliability) / 4
}

// Evaluation is one evaluator's scoring of one participation
type Evaluation struct {
	ID              uuid.UUID  `json:"id"`
	BiddingID       uuid.UUID  `json:"bidding_id"`
	ParticipationID uuid.UUID  `json:"participation_id"`
	EvaluatorID     uuid.UUID  `json:"evaluator_id"`
	Scores          Scores     `json:"scores"`
	TotalScore      int        `json:"total_score"`
	Comment         string     `json:"comment,omitempty"`
	Selected        bool       `json:"selected"`
	SelectedAt      *time.Time `json:"selected_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewEvaluation scores a participation of a closed bidding.
func NewEvaluation(b *Bidding, p *Participation, evaluatorID uuid.UUID, scores Scores, comment string, now time.Time) (*Evaluation, error) {
	if b.Status != StatusClosed {
		return nil, shared.State("bidding %s must be CLOSED to evaluate, is %s", b.BidNumber, b.Status)
	}
	if p.BiddingID != b.ID {
		return nil, shared.Validation("participation %s does not belong to bidding %s", p.ID, b.ID)
	}
	if p.Withdrawn {
		return nil, shared.ErrParticipationWithdrawn
	}
	if err := scores.Validate(); err != nil {
		return nil, err
	}

	return &Evaluation{
		ID:              uuid.New(),
		BiddingID:       b.ID,
		ParticipationID: p.ID,
		EvaluatorID:     evaluatorID,
		Scores:          scores,
		TotalScore:      scores.Total(),
		Comment:         comment,
		CreatedAt:       now,
	}, nil
}

// MarkEvaluated records the latest total on the participation.
func (p *Participation) MarkEvaluated(total int) {
	score := total
	p.Evaluated = true
	p.Score = &score
}
