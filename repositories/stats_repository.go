package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// StatsRepository serves the admin dashboard counters.
type StatsRepository interface {
	CountParticipantUsers(ctx context.Context) (int, error)
	CountSports(ctx context.Context) (int, error)
	CountRegistrations(ctx context.Context) (int, error)
	CountActiveMatches(ctx context.Context) (int, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) count(ctx context.Context, what, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func (r *postgresStatsRepository) CountParticipantUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "users", `SELECT COUNT(*) FROM users WHERE role = 'participant'`)
}

func (r *postgresStatsRepository) CountSports(ctx context.Context) (int, error) {
	return r.count(ctx, "sports", `SELECT COUNT(*) FROM sports`)
}

func (r *postgresStatsRepository) CountRegistrations(ctx context.Context) (int, error) {
	return r.count(ctx, "registrations", `SELECT (SELECT COUNT(*) FROM teams) + (SELECT COUNT(*) FROM single_registrations)`)
}

func (r *postgresStatsRepository) CountActiveMatches(ctx context.Context) (int, error) {
	return r.count(ctx, "matches", `SELECT COUNT(*) FROM matches WHERE is_deleted = FALSE`)
}
