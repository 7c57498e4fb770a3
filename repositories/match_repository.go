package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchSportInvalid = errors.New("match sport conflict or invalid")
)

// BatchInsertError reports a failed bulk insert. Rows before FailedIndex were written.
type BatchInsertError struct {
	CreatedIDs  []int
	FailedIndex int
	Err         error
}

func (e *BatchInsertError) Error() string {
	return fmt.Sprintf("match batch insert failed at row %d (%d created): %v", e.FailedIndex, len(e.CreatedIDs), e.Err)
}

func (e *BatchInsertError) Unwrap() error {
	return e.Err
}

type MatchFilter struct {
	SportID        *int
	RoundNo        *int
	PublishedOnly  bool
	IncludeDeleted bool
}

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) ([]int, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	UpdatePublished(ctx context.Context, id int, published bool) error
	SoftDelete(ctx context.Context, id int) error
	CountActiveForRound(ctx context.Context, sportID, roundNo int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

// CreateBatch inserts the matches one by one and returns their IDs in input order.
// The batch is not atomic: on failure the already inserted rows stay and are reported
// through *BatchInsertError.
func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) ([]int, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO matches
			(sport_id, round_no, participant1_type, participant1_id, participant2_type, participant2_id,
			 match_datetime, venue, published, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		RETURNING id, created_at`

	ids := make([]int, 0, len(matches))
	for i, m := range matches {
		p2Type := models.ParticipantKindBye
		var p2ID sql.NullInt64
		if m.Participant2 != nil {
			p2Type = m.Participant2.Kind
			p2ID = sql.NullInt64{Int64: int64(m.Participant2.ID), Valid: true}
		}

		err := exec.QueryRowContext(ctx, query,
			m.SportID,
			m.RoundNo,
			m.Participant1.Kind,
			m.Participant1.ID,
			p2Type,
			p2ID,
			m.ScheduledAt,
			m.Venue,
			m.Published,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return ids, &BatchInsertError{CreatedIDs: ids, FailedIndex: i, Err: handleMatchError(err)}
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}

const selectMatchSQL = `
	SELECT m.id, m.sport_id, m.round_no, m.participant1_type, m.participant1_id,
	       m.participant2_type, m.participant2_id, m.match_datetime, m.venue,
	       m.published, m.is_deleted, m.created_at, COALESCE(s.name, '')
	FROM matches m
	LEFT JOIN sports s ON s.id = m.sport_id`

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m      models.Match
		p2Type sql.NullString
		p2ID   sql.NullInt64
	)
	err := row.Scan(
		&m.ID,
		&m.SportID,
		&m.RoundNo,
		&m.Participant1.Kind,
		&m.Participant1.ID,
		&p2Type,
		&p2ID,
		&m.ScheduledAt,
		&m.Venue,
		&m.Published,
		&m.SoftDeleted,
		&m.CreatedAt,
		&m.SportName,
	)
	if err != nil {
		return nil, err
	}
	if p2ID.Valid && models.ParticipantKind(p2Type.String) != models.ParticipantKindBye {
		m.Participant2 = &models.ParticipantRef{ID: int(p2ID.Int64), Kind: models.ParticipantKind(p2Type.String)}
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, selectMatchSQL+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(selectMatchSQL)

	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 2)

	if !filter.IncludeDeleted {
		conditions = append(conditions, "m.is_deleted = FALSE")
	}
	if filter.PublishedOnly {
		conditions = append(conditions, "m.published = TRUE")
	}
	if filter.SportID != nil {
		args = append(args, *filter.SportID)
		conditions = append(conditions, fmt.Sprintf("m.sport_id = $%d", len(args)))
	}
	if filter.RoundNo != nil {
		args = append(args, *filter.RoundNo)
		conditions = append(conditions, fmt.Sprintf("m.round_no = $%d", len(args)))
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY m.match_datetime ASC, m.id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdatePublished(ctx context.Context, id int, published bool) error {
	query := `UPDATE matches SET published = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, published, id)
	if err != nil {
		return fmt.Errorf("failed to update match %d visibility: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SoftDelete(ctx context.Context, id int) error {
	query := `UPDATE matches SET is_deleted = TRUE, published = FALSE WHERE id = $1 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountActiveForRound(ctx context.Context, sportID, roundNo int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE sport_id = $1 AND round_no = $2 AND is_deleted = FALSE`
	var count int
	if err := r.db.QueryRowContext(ctx, query, sportID, roundNo).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for sport %d round %d: %w", sportID, roundNo, err)
	}
	return count, nil
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		if pqErr.Code == "23503" && pqErr.Constraint == "matches_sport_id_fkey" {
			return fmt.Errorf("%w: %v", ErrMatchSportInvalid, err)
		}
	}
	return err
}
