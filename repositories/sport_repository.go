package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/intramural-draws/models"
)

var ErrSportNotFound = errors.New("sport not found")

type SportRepository interface {
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	GetAll(ctx context.Context) ([]models.Sport, error)
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

const sportColumns = `id, name, type, max_players, registration_open, created_at`

func scanSport(row rowScanner, s *models.Sport) error {
	return row.Scan(&s.ID, &s.Name, &s.Kind, &s.MaxRosterSize, &s.RegistrationOpen, &s.CreatedAt)
}

func (r *postgresSportRepository) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	query := `SELECT ` + sportColumns + ` FROM sports WHERE id = $1`

	var sport models.Sport
	if err := scanSport(r.db.QueryRowContext(ctx, query, id), &sport); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport %d: %w", id, err)
	}
	return &sport, nil
}

func (r *postgresSportRepository) GetAll(ctx context.Context) ([]models.Sport, error) {
	query := `SELECT ` + sportColumns + ` FROM sports ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sports: %w", err)
	}
	defer rows.Close()

	sports := make([]models.Sport, 0)
	for rows.Next() {
		var sport models.Sport
		if err := scanSport(rows, &sport); err != nil {
			return nil, fmt.Errorf("failed to scan sport row: %w", err)
		}
		sports = append(sports, sport)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sport rows: %w", err)
	}
	return sports, nil
}
