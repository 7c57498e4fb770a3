package models

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ParticipantKind хранится в matches.participantN_type.
type ParticipantKind string

const (
	ParticipantKindTeam   ParticipantKind = "team"
	ParticipantKindSingle ParticipantKind = "single"
	ParticipantKindBye    ParticipantKind = "bye"
)

// Participant is either a *Team or an *Individual registration.
// The interface is sealed: only types in this package implement it.
type Participant interface {
	ParticipantID() int
	OwnerUserID() int
	SportID() int
	Kind() ParticipantKind
	Name() string
	Status() ApprovalStatus
	Ref() ParticipantRef

	participant()
}

// Team - командная заявка; владелец команды получает уведомления о матчах.
type Team struct {
	ID             int            `json:"id" db:"id"`
	SportIDValue   int            `json:"sport_id" db:"sport_id"`
	OwnerID        int            `json:"owner_user_id" db:"owner_user_id"`
	TeamName       string         `json:"name" db:"name"`
	ApprovalStatus ApprovalStatus `json:"approved_status" db:"approved_status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

func (t *Team) ParticipantID() int     { return t.ID }
func (t *Team) OwnerUserID() int       { return t.OwnerID }
func (t *Team) SportID() int           { return t.SportIDValue }
func (t *Team) Kind() ParticipantKind  { return ParticipantKindTeam }
func (t *Team) Name() string           { return t.TeamName }
func (t *Team) Status() ApprovalStatus { return t.ApprovalStatus }
func (t *Team) Ref() ParticipantRef    { return ParticipantRef{ID: t.ID, Kind: ParticipantKindTeam} }
func (t *Team) participant()           {}

// Individual - одиночная регистрация пользователя на вид спорта.
type Individual struct {
	ID             int            `json:"id" db:"id"`
	SportIDValue   int            `json:"sport_id" db:"sport_id"`
	UserID         int            `json:"user_id" db:"user_id"`
	FullName       string         `json:"name" db:"name"`
	ApprovalStatus ApprovalStatus `json:"approved_status" db:"approved_status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

func (i *Individual) ParticipantID() int     { return i.ID }
func (i *Individual) OwnerUserID() int       { return i.UserID }
func (i *Individual) SportID() int           { return i.SportIDValue }
func (i *Individual) Kind() ParticipantKind  { return ParticipantKindSingle }
func (i *Individual) Name() string           { return i.FullName }
func (i *Individual) Status() ApprovalStatus { return i.ApprovalStatus }
func (i *Individual) Ref() ParticipantRef {
	return ParticipantRef{ID: i.ID, Kind: ParticipantKindSingle}
}
func (i *Individual) participant() {}

// ParticipantRef ссылается на участника матча без загрузки всей заявки.
type ParticipantRef struct {
	ID   int             `json:"id"`
	Kind ParticipantKind `json:"type"`
}
