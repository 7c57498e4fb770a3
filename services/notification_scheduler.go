package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/repositories"
	"github.com/Dosada05/intramural-draws/utils"
	"golang.org/x/sync/errgroup"
)

// ReminderOffset - за сколько до начала матча отправляется напоминание.
const ReminderOffset = 24 * time.Hour

const defaultFanOutLimit = 8

// ScheduleReport is the outcome of one fan-out. FailedUsers is sorted.
type ScheduleReport struct {
	Users       int   `json:"users"`
	Created     int   `json:"created"`
	FailedUsers []int `json:"failed_users,omitempty"`
}

type NotificationScheduler interface {
	// ScheduleMatchNotifications writes the "scheduled" and "reminder" notifications for
	// every distinct user. It is not idempotent; call it once per created match.
	ScheduleMatchNotifications(ctx context.Context, matchID int, userIDs []int, kickoff time.Time) (ScheduleReport, error)
}

type notificationScheduler struct {
	notificationRepo repositories.NotificationRepository
	clock            utils.Clock
	location         *time.Location
	fanOutLimit      int
	logger           *slog.Logger
}

func NewNotificationScheduler(
	notificationRepo repositories.NotificationRepository,
	clock utils.Clock,
	location *time.Location,
	logger *slog.Logger,
) NotificationScheduler {
	if clock == nil {
		clock = utils.SystemClock()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationScheduler{
		notificationRepo: notificationRepo,
		clock:            clock,
		location:         location,
		fanOutLimit:      defaultFanOutLimit,
		logger:           logger,
	}
}

func (s *notificationScheduler) ScheduleMatchNotifications(ctx context.Context, matchID int, userIDs []int, kickoff time.Time) (ScheduleReport, error) {
	users := distinctUserIDs(userIDs)
	report := ScheduleReport{Users: len(users)}
	if len(users) == 0 {
		return report, nil
	}

	now := s.clock.Now()
	immediate, reminder := s.buildNotifications(matchID, kickoff, now)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.fanOutLimit)

	for _, userID := range users {
		g.Go(func() error {
			created, err := s.scheduleForUser(ctx, userID, immediate, reminder)

			mu.Lock()
			defer mu.Unlock()
			report.Created += created
			if err != nil {
				report.FailedUsers = append(report.FailedUsers, userID)
				s.logger.ErrorContext(ctx, "failed to schedule match notifications for user",
					slog.Int("match_id", matchID),
					slog.Int("user_id", userID),
					slog.Any("error", err),
				)
			}
			// Ошибка одного пользователя не должна останавливать остальных.
			return nil
		})
	}
	_ = g.Wait()

	if len(report.FailedUsers) > 0 {
		slices.Sort(report.FailedUsers)
		return report, fmt.Errorf("%w: match %d, %d of %d users failed", ErrNotificationsIncomplete, matchID, len(report.FailedUsers), len(users))
	}
	return report, nil
}

func (s *notificationScheduler) scheduleForUser(ctx context.Context, userID int, immediate, reminder models.Notification) (int, error) {
	created := 0
	for _, tmpl := range []models.Notification{immediate, reminder} {
		n := tmpl
		n.UserID = userID
		if err := s.notificationRepo.Create(ctx, &n); err != nil {
			return created, fmt.Errorf("%q notification: %w", n.Title, err)
		}
		created++
	}
	return created, nil
}

// buildNotifications returns the immediate and reminder templates for a match.
// A reminder whose time has already passed keeps its computed time, so the next
// dispatcher tick sends it straight away.
func (s *notificationScheduler) buildNotifications(matchID int, kickoff, now time.Time) (models.Notification, models.Notification) {
	when := utils.FormatKickoff(kickoff, s.location)
	remindAt := kickoff.Add(-ReminderOffset)

	effectiveSend := remindAt
	if now.After(effectiveSend) {
		effectiveSend = now
	}
	hours := utils.HoursUntil(effectiveSend, kickoff)

	id := matchID
	immediate := models.Notification{
		Title:        models.NotificationTitleScheduled,
		Message:      fmt.Sprintf("Your match is scheduled for %s", when),
		MatchID:      &id,
		ScheduledFor: now,
	}
	reminder := models.Notification{
		Title:        models.NotificationTitleReminder,
		Message:      fmt.Sprintf("Your match starts in %s at %s", utils.PluralHours(hours), when),
		MatchID:      &id,
		ScheduledFor: remindAt,
	}
	return immediate, reminder
}

func distinctUserIDs(userIDs []int) []int {
	seen := make(map[int]struct{}, len(userIDs))
	out := make([]int, 0, len(userIDs))
	for _, id := range userIDs {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
