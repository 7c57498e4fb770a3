package brackets

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/intramural-draws/models"
)

var (
	ErrInsufficientParticipants = errors.New("not enough approved participants to generate a draw")
	ErrDuplicateParticipant     = errors.New("participant appears more than once in the draw pool")
	ErrKindMismatch             = errors.New("participant kind does not match sport kind")
	ErrInvalidSlotDuration      = errors.New("slot duration must be positive")
	ErrInvalidRound             = errors.New("round number must be positive")
)

type DrawParams struct {
	SportID      int
	SportKind    models.SportKind
	Participants []models.Participant
	RoundNo      int
	Venue        string
	StartTime    time.Time
	SlotDuration time.Duration
}

// MatchCandidate - ещё не сохранённый матч. Participant2 == nil означает bye.
type MatchCandidate struct {
	SportID      int
	RoundNo      int
	Venue        string
	Participant1 models.Participant
	Participant2 models.Participant
	ScheduledAt  time.Time
}

func (c MatchCandidate) IsBye() bool {
	return c.Participant2 == nil
}

// UserIDs returns the owners to notify about this match.
func (c MatchCandidate) UserIDs() []int {
	ids := []int{c.Participant1.OwnerUserID()}
	if c.Participant2 != nil {
		ids = append(ids, c.Participant2.OwnerUserID())
	}
	return ids
}

// ToMatch converts the candidate into a row ready for the match repository.
func (c MatchCandidate) ToMatch() *models.Match {
	m := &models.Match{
		SportID:      c.SportID,
		RoundNo:      c.RoundNo,
		Venue:        c.Venue,
		Participant1: c.Participant1.Ref(),
		ScheduledAt:  c.ScheduledAt,
	}
	if c.Participant2 != nil {
		ref := c.Participant2.Ref()
		m.Participant2 = &ref
	}
	return m
}

type DrawGenerator interface {
	GenerateDraw(ctx context.Context, params DrawParams) ([]MatchCandidate, error)

	GetName() string
}
