package brackets

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Dosada05/intramural-draws/models"
)

func makeIndividuals(n int) []models.Participant {
	out := make([]models.Participant, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Individual{
			ID:             i + 1,
			SportIDValue:   7,
			UserID:         100 + i + 1,
			ApprovalStatus: models.ApprovalApproved,
		}
	}
	return out
}

func baseParams(participants []models.Participant) DrawParams {
	return DrawParams{
		SportID:      7,
		SportKind:    models.SportKindIndividual,
		Participants: participants,
		RoundNo:      1,
		Venue:        "Main Arena",
		StartTime:    time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		SlotDuration: 30 * time.Minute,
	}
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestGenerateDraw_PairingCompleteness(t *testing.T) {
	gen := NewRandomPairingGenerator(seeded(42))

	for n := 2; n <= 17; n++ {
		candidates, err := gen.GenerateDraw(context.Background(), baseParams(makeIndividuals(n)))
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}

		if want := (n + 1) / 2; len(candidates) != want {
			t.Fatalf("n=%d: got %d matches, want %d", n, len(candidates), want)
		}

		byes := 0
		seen := make(map[int]int)
		for _, c := range candidates {
			seen[c.Participant1.ParticipantID()]++
			if c.IsBye() {
				byes++
				continue
			}
			if c.Participant1.ParticipantID() == c.Participant2.ParticipantID() {
				t.Fatalf("n=%d: self-pairing for participant %d", n, c.Participant1.ParticipantID())
			}
			seen[c.Participant2.ParticipantID()]++
		}

		wantByes := n % 2
		if byes != wantByes {
			t.Errorf("n=%d: got %d byes, want %d", n, byes, wantByes)
		}
		if wantByes == 1 && !candidates[len(candidates)-1].IsBye() {
			t.Errorf("n=%d: bye must be the last match", n)
		}
		if len(seen) != n {
			t.Errorf("n=%d: %d distinct participants placed, want %d", n, len(seen), n)
		}
		for id, count := range seen {
			if count != 1 {
				t.Errorf("n=%d: participant %d appears %d times", n, id, count)
			}
		}
	}
}

func TestGenerateDraw_TimeSlotting(t *testing.T) {
	gen := NewRandomPairingGenerator(seeded(1))

	candidates, err := gen.GenerateDraw(context.Background(), baseParams(makeIndividuals(10)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00"}
	if len(candidates) != len(want) {
		t.Fatalf("got %d matches, want %d", len(candidates), len(want))
	}
	for i, c := range candidates {
		if got := c.ScheduledAt.Format("15:04"); got != want[i] {
			t.Errorf("match %d scheduled at %s, want %s", i, got, want[i])
		}
		if c.RoundNo != 1 || c.Venue != "Main Arena" || c.SportID != 7 {
			t.Errorf("match %d has round=%d venue=%q sport=%d", i, c.RoundNo, c.Venue, c.SportID)
		}
	}
}

func TestGenerateDraw_Rejections(t *testing.T) {
	gen := NewRandomPairingGenerator(seeded(1))

	team := &models.Team{ID: 9, SportIDValue: 7, OwnerID: 5}
	dup := makeIndividuals(3)
	dup[2] = dup[0]

	tests := []struct {
		name    string
		mutate  func(p *DrawParams)
		wantErr error
	}{
		{"no participants", func(p *DrawParams) { p.Participants = nil }, ErrInsufficientParticipants},
		{"one participant", func(p *DrawParams) { p.Participants = makeIndividuals(1) }, ErrInsufficientParticipants},
		{"zero slot", func(p *DrawParams) { p.SlotDuration = 0 }, ErrInvalidSlotDuration},
		{"zero round", func(p *DrawParams) { p.RoundNo = 0 }, ErrInvalidRound},
		{"duplicate participant", func(p *DrawParams) { p.Participants = dup }, ErrDuplicateParticipant},
		{"kind mismatch", func(p *DrawParams) { p.Participants = append(makeIndividuals(2), team) }, ErrKindMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := baseParams(makeIndividuals(4))
			tt.mutate(&params)
			candidates, err := gen.GenerateDraw(context.Background(), params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if candidates != nil {
				t.Errorf("expected no candidates, got %d", len(candidates))
			}
		})
	}
}

func TestGenerateDraw_DoesNotMutateInput(t *testing.T) {
	pool := makeIndividuals(6)
	before := make([]int, len(pool))
	for i, p := range pool {
		before[i] = p.ParticipantID()
	}

	if _, err := NewRandomPairingGenerator(seeded(3)).GenerateDraw(context.Background(), baseParams(pool)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range pool {
		if p.ParticipantID() != before[i] {
			t.Fatalf("input order changed at %d", i)
		}
	}
}

func TestGenerateDraw_DeterministicWithSeed(t *testing.T) {
	a, _ := NewRandomPairingGenerator(seeded(99)).GenerateDraw(context.Background(), baseParams(makeIndividuals(8)))
	b, _ := NewRandomPairingGenerator(seeded(99)).GenerateDraw(context.Background(), baseParams(makeIndividuals(8)))
	for i := range a {
		if a[i].Participant1.ParticipantID() != b[i].Participant1.ParticipantID() ||
			a[i].Participant2.ParticipantID() != b[i].Participant2.ParticipantID() {
			t.Fatalf("same seed produced different draws at match %d", i)
		}
	}
}

// With four participants there are three possible pairings, identified by
// who participant 1 plays. An unbiased shuffle gives each a third of the draws.
func TestGenerateDraw_UniformPairings(t *testing.T) {
	const trials = 30000
	gen := NewRandomPairingGenerator(seeded(2025))
	counts := make(map[int]int)

	for i := 0; i < trials; i++ {
		candidates, err := gen.GenerateDraw(context.Background(), baseParams(makeIndividuals(4)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, c := range candidates {
			p1, p2 := c.Participant1.ParticipantID(), c.Participant2.ParticipantID()
			if p1 == 1 {
				counts[p2]++
			} else if p2 == 1 {
				counts[p1]++
			}
		}
	}

	if len(counts) != 3 {
		t.Fatalf("expected 3 distinct pairings, got %v", counts)
	}

	expected := float64(trials) / 3
	chiSquare := 0.0
	for _, observed := range counts {
		diff := float64(observed) - expected
		chiSquare += diff * diff / expected
	}
	// df=2, p=0.001
	if chiSquare > 13.82 {
		t.Errorf("pairing distribution looks biased: chi-square=%.2f counts=%v", chiSquare, counts)
	}
}

func TestMatchCandidate_ToMatch(t *testing.T) {
	pool := makeIndividuals(3)
	c := MatchCandidate{SportID: 7, RoundNo: 2, Venue: "Court 1", Participant1: pool[2]}

	m := c.ToMatch()
	if !m.IsBye() {
		t.Fatal("expected bye match")
	}
	if m.Participant1.ID != 3 || m.Participant1.Kind != models.ParticipantKindSingle {
		t.Errorf("unexpected participant1 ref %+v", m.Participant1)
	}
	if ids := c.UserIDs(); len(ids) != 1 || ids[0] != 103 {
		t.Errorf("UserIDs() = %v, want [103]", ids)
	}
}
