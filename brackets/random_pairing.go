package brackets

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Dosada05/intramural-draws/models"
)

// Shuffler is satisfied by *rand.Rand; tests inject a seeded one.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// RandomPairingGenerator shuffles the pool and pairs neighbours into a single round.
type RandomPairingGenerator struct {
	rng Shuffler
}

func NewRandomPairingGenerator(rng Shuffler) DrawGenerator {
	if rng == nil {
		rng = globalShuffler{}
	}
	return &RandomPairingGenerator{rng: rng}
}

func (g *RandomPairingGenerator) GetName() string {
	return "RandomPairing"
}

func (g *RandomPairingGenerator) GenerateDraw(ctx context.Context, params DrawParams) ([]MatchCandidate, error) {
	if err := validateDrawParams(params); err != nil {
		return nil, err
	}

	pool := make([]models.Participant, len(params.Participants))
	copy(pool, params.Participants)

	// rand.Shuffle - это Фишер-Йейтс, все перестановки равновероятны.
	g.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	candidates := make([]MatchCandidate, 0, (len(pool)+1)/2)
	for i := 0; i < len(pool); i += 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slot := len(candidates)
		c := MatchCandidate{
			SportID:      params.SportID,
			RoundNo:      params.RoundNo,
			Venue:        params.Venue,
			Participant1: pool[i],
			ScheduledAt:  params.StartTime.Add(time.Duration(slot) * params.SlotDuration),
		}
		if i+1 < len(pool) {
			c.Participant2 = pool[i+1]
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

func validateDrawParams(params DrawParams) error {
	if len(params.Participants) < 2 {
		return fmt.Errorf("%w (minimum 2 required, found %d)", ErrInsufficientParticipants, len(params.Participants))
	}
	if params.RoundNo <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRound, params.RoundNo)
	}
	if params.SlotDuration <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidSlotDuration, params.SlotDuration)
	}

	expectedKind := params.SportKind.ParticipantKind()
	seen := make(map[models.ParticipantRef]struct{}, len(params.Participants))
	for _, p := range params.Participants {
		if p == nil {
			return fmt.Errorf("nil participant in draw pool")
		}
		if params.SportKind != "" && p.Kind() != expectedKind {
			return fmt.Errorf("%w: participant %d is %s, sport expects %s", ErrKindMismatch, p.ParticipantID(), p.Kind(), expectedKind)
		}
		ref := p.Ref()
		if _, dup := seen[ref]; dup {
			return fmt.Errorf("%w: %s %d", ErrDuplicateParticipant, ref.Kind, ref.ID)
		}
		seen[ref] = struct{}{}
	}
	return nil
}
