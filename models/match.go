package models

import "time"

type Match struct {
	ID           int             `json:"id" db:"id"`
	SportID      int             `json:"sport_id" db:"sport_id"`
	RoundNo      int             `json:"round_no" db:"round_no"`
	Participant1 ParticipantRef  `json:"participant1"`
	Participant2 *ParticipantRef `json:"participant2"` // nil - bye
	ScheduledAt  time.Time       `json:"match_datetime" db:"match_datetime"`
	Venue        string          `json:"venue" db:"venue"`
	Published    bool            `json:"published" db:"published"`
	SoftDeleted  bool            `json:"-" db:"is_deleted"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	SportName string `json:"sport_name,omitempty" db:"-"`
}

func (m *Match) IsBye() bool {
	return m.Participant2 == nil
}
