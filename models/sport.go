package models

import "time"

// SportKind определяет, кто участвует в жеребьёвке: команды или одиночные участники.
type SportKind string

const (
	SportKindTeam       SportKind = "team"
	SportKindIndividual SportKind = "individual"
)

func (k SportKind) Valid() bool {
	return k == SportKindTeam || k == SportKindIndividual
}

// ParticipantKind returns the kind of participant a draw for this sport is made of.
func (k SportKind) ParticipantKind() ParticipantKind {
	if k == SportKindTeam {
		return ParticipantKindTeam
	}
	return ParticipantKindSingle
}

type Sport struct {
	ID               int       `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Kind             SportKind `json:"type" db:"type"`
	MaxRosterSize    int       `json:"max_players" db:"max_players"`
	RegistrationOpen bool      `json:"registration_open" db:"registration_open"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
