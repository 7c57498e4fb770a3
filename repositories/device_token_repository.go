package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/lib/pq"
)

type DeviceTokenRepository interface {
	Upsert(ctx context.Context, token *models.DeviceToken) error
	ListTokensByUsers(ctx context.Context, userIDs []int) ([]string, error)
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
}

type postgresDeviceTokenRepository struct {
	db *sql.DB
}

func NewPostgresDeviceTokenRepository(db *sql.DB) DeviceTokenRepository {
	return &postgresDeviceTokenRepository{db: db}
}

func (r *postgresDeviceTokenRepository) Upsert(ctx context.Context, token *models.DeviceToken) error {
	query := `
		INSERT INTO fcm_tokens (user_id, token, platform, last_seen_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, last_seen_at = NOW()
		RETURNING id, last_seen_at`

	if err := r.db.QueryRowContext(ctx, query, token.UserID, token.Token, token.Platform).
		Scan(&token.ID, &token.LastSeenAt); err != nil {
		return fmt.Errorf("failed to upsert device token for user %d: %w", token.UserID, err)
	}
	return nil
}

func (r *postgresDeviceTokenRepository) ListTokensByUsers(ctx context.Context, userIDs []int) ([]string, error) {
	if len(userIDs) == 0 {
		return []string{}, nil
	}
	ids := make([]int64, len(userIDs))
	for i, id := range userIDs {
		ids[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT token FROM fcm_tokens WHERE user_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device token rows: %w", err)
	}
	return tokens, nil
}

func (r *postgresDeviceTokenRepository) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM fcm_tokens WHERE token = ANY($1)`, pq.Array(tokens))
	if err != nil {
		return 0, fmt.Errorf("failed to delete device tokens: %w", err)
	}
	return result.RowsAffected()
}
