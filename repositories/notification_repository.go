package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/lib/pq"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListDue returns unsent notifications with scheduled_for <= now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error)
	// ClaimSent flips sent to true only if it is still false and reports whether
	// this caller won the row.
	ClaimSent(ctx context.Context, id int, sentAt time.Time) (bool, error)
	ListSentByUser(ctx context.Context, userID int, limit int) ([]*models.Notification, error)
	CountPending(ctx context.Context) (int, error)
}

var ErrNotificationUserInvalid = errors.New("notification user conflict or invalid")

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

const notificationColumns = `id, user_id, title, message, match_id, scheduled_for, sent, sent_at, created_at`

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n       models.Notification
		matchID sql.NullInt64
		sentAt  sql.NullTime
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &matchID, &n.ScheduledFor, &n.Sent, &sentAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	if matchID.Valid {
		id := int(matchID.Int64)
		n.MatchID = &id
	}
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}
	return &n, nil
}

func (r *postgresNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, match_id, scheduled_for, sent)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Title, n.Message, n.MatchID, n.ScheduledFor).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" && pqErr.Constraint == "notifications_user_id_fkey" {
			return fmt.Errorf("%w: user %d", ErrNotificationUserInvalid, n.UserID)
		}
		return fmt.Errorf("failed to create notification for user %d: %w", n.UserID, err)
	}
	n.Sent = false
	return nil
}

func (r *postgresNotificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE sent = FALSE AND scheduled_for <= $1
		ORDER BY scheduled_for ASC, id ASC
		LIMIT $2`
	return r.list(ctx, query, now, limit)
}

func (r *postgresNotificationRepository) ClaimSent(ctx context.Context, id int, sentAt time.Time) (bool, error) {
	query := `UPDATE notifications SET sent = TRUE, sent_at = $1 WHERE id = $2 AND sent = FALSE`
	result, err := r.db.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim notification %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresNotificationRepository) ListSentByUser(ctx context.Context, userID int, limit int) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND sent = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

func (r *postgresNotificationRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE sent = FALSE`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending notifications: %w", err)
	}
	return count, nil
}

func (r *postgresNotificationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}
