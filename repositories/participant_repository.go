package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/intramural-draws/models"
)

var (
	ErrParticipantNotFound    = errors.New("participant registration not found")
	ErrUnknownParticipantKind = errors.New("unknown participant kind")
)

// ParticipantRepository reads team and single registrations. Each kind has its own
// fixed queries, so no table names are assembled at runtime.
type ParticipantRepository interface {
	FindApproved(ctx context.Context, sportID int, kind models.SportKind) ([]models.Participant, error)
	ListBySport(ctx context.Context, sportID int, kind models.SportKind, status *models.ApprovalStatus) ([]models.Participant, error)
	UpdateApprovalStatus(ctx context.Context, kind models.ParticipantKind, id int, status models.ApprovalStatus) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const (
	selectTeamsSQL = `
		SELECT t.id, t.sport_id, t.owner_user_id, t.name, t.approved_status, t.created_at
		FROM teams t
		WHERE t.sport_id = $1 AND ($2::text IS NULL OR t.approved_status = $2::text)
		ORDER BY t.created_at ASC, t.id ASC`

	selectSinglesSQL = `
		SELECT sr.id, sr.sport_id, sr.user_id, COALESCE(u.name, ''), sr.approved_status, sr.created_at
		FROM single_registrations sr
		LEFT JOIN users u ON u.id = sr.user_id
		WHERE sr.sport_id = $1 AND ($2::text IS NULL OR sr.approved_status = $2::text)
		ORDER BY sr.created_at ASC, sr.id ASC`

	updateTeamStatusSQL   = `UPDATE teams SET approved_status = $1 WHERE id = $2`
	updateSingleStatusSQL = `UPDATE single_registrations SET approved_status = $1 WHERE id = $2`
)

func (r *postgresParticipantRepository) FindApproved(ctx context.Context, sportID int, kind models.SportKind) ([]models.Participant, error) {
	approved := models.ApprovalApproved
	return r.ListBySport(ctx, sportID, kind, &approved)
}

func (r *postgresParticipantRepository) ListBySport(ctx context.Context, sportID int, kind models.SportKind, status *models.ApprovalStatus) ([]models.Participant, error) {
	var statusArg sql.NullString
	if status != nil {
		statusArg = sql.NullString{String: string(*status), Valid: true}
	}

	switch kind {
	case models.SportKindTeam:
		return r.listTeams(ctx, sportID, statusArg)
	case models.SportKindIndividual:
		return r.listSingles(ctx, sportID, statusArg)
	default:
		return nil, fmt.Errorf("%w: sport kind %q", ErrUnknownParticipantKind, kind)
	}
}

func (r *postgresParticipantRepository) listTeams(ctx context.Context, sportID int, status sql.NullString) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, selectTeamsSQL, sportID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for sport %d: %w", sportID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		t := &models.Team{}
		if err := rows.Scan(&t.ID, &t.SportIDValue, &t.OwnerID, &t.TeamName, &t.ApprovalStatus, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		participants = append(participants, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) listSingles(ctx context.Context, sportID int, status sql.NullString) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, selectSinglesSQL, sportID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query single registrations for sport %d: %w", sportID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		i := &models.Individual{}
		if err := rows.Scan(&i.ID, &i.SportIDValue, &i.UserID, &i.FullName, &i.ApprovalStatus, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan single registration row: %w", err)
		}
		participants = append(participants, i)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating single registration rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) UpdateApprovalStatus(ctx context.Context, kind models.ParticipantKind, id int, status models.ApprovalStatus) error {
	var query string
	switch kind {
	case models.ParticipantKindTeam:
		query = updateTeamStatusSQL
	case models.ParticipantKindSingle:
		query = updateSingleStatusSQL
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParticipantKind, kind)
	}

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update %s registration %d status: %w", kind, id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
