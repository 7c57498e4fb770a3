package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/push"
	"github.com/Dosada05/intramural-draws/repositories"
	"github.com/Dosada05/intramural-draws/utils"
	"github.com/robfig/cron/v3"
)

const (
	DefaultSchedule  = "@every 60s"
	DefaultBatchSize = 200
)

type DispatcherConfig struct {
	Schedule  string // cron spec or descriptor, e.g. "@every 60s"
	BatchSize int
}

// TickReport - итог одного прохода диспетчера.
type TickReport struct {
	Due       int `json:"due"`
	Claimed   int `json:"claimed"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// NotificationDispatcher periodically sends due notifications.
// A row is marked sent before delivery, so each notification goes out at most once.
type NotificationDispatcher struct {
	notificationRepo repositories.NotificationRepository
	sender           push.Sender
	clock            utils.Clock
	logger           *slog.Logger
	config           DispatcherConfig

	mu      sync.Mutex
	c       *cron.Cron
	cancel  context.CancelFunc
	initial sync.WaitGroup // тик, запущенный из Start
}

func NewNotificationDispatcher(
	notificationRepo repositories.NotificationRepository,
	sender push.Sender,
	clock utils.Clock,
	logger *slog.Logger,
	cfg DispatcherConfig,
) *NotificationDispatcher {
	if clock == nil {
		clock = utils.SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &NotificationDispatcher{
		notificationRepo: notificationRepo,
		sender:           sender,
		clock:            clock,
		logger:           logger.With(slog.String("component", "dispatcher")),
		config:           cfg,
	}
}

// Tick sends every notification due at the clock's current time.
// Delivery failures are counted per notification and never re-queued.
func (d *NotificationDispatcher) Tick(ctx context.Context) (TickReport, error) {
	var report TickReport
	now := d.clock.Now()

	due, err := d.notificationRepo.ListDue(ctx, now, d.config.BatchSize)
	if err != nil {
		return report, fmt.Errorf("failed to list due notifications: %w", err)
	}
	report.Due = len(due)

	for _, n := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		claimed, err := d.notificationRepo.ClaimSent(ctx, n.ID, now)
		if err != nil {
			report.Failed++
			d.logger.ErrorContext(ctx, "failed to claim notification", slog.Int("notification_id", n.ID), slog.Any("error", err))
			continue
		}
		if !claimed {
			// Уже отправлено другим проходом.
			report.Skipped++
			continue
		}
		report.Claimed++

		if err := d.deliver(ctx, n); err != nil {
			report.Failed++
			d.logger.WarnContext(ctx, "notification delivery failed",
				slog.Int("notification_id", n.ID),
				slog.Int("user_id", n.UserID),
				slog.Bool("delivery_error", errors.Is(err, push.ErrDelivery)),
				slog.Any("error", err),
			)
			continue
		}
		report.Delivered++
	}

	return report, nil
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n *models.Notification) error {
	if d.sender == nil {
		return nil
	}
	result, err := d.sender.Send(ctx, []int{n.UserID}, n.Title, n.Message)
	if err != nil {
		return err
	}
	if result != nil && len(result.FailedTokens) > 0 {
		d.logger.InfoContext(ctx, "pruned device tokens", slog.Int("user_id", n.UserID), slog.Int("count", len(result.FailedTokens)))
	}
	return nil
}

// Start runs one tick straight away and then follows the configured schedule.
func (d *NotificationDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.c != nil {
		return errors.New("dispatcher already started")
	}

	cronLogger := cronSlogLogger{logger: d.logger}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	job := func() { d.runTick(ctx) }
	if _, err := c.AddFunc(d.config.Schedule, job); err != nil {
		cancel()
		return fmt.Errorf("invalid dispatch schedule %q: %w", d.config.Schedule, err)
	}

	d.logger.Info("starting notification dispatcher",
		slog.String("schedule", d.config.Schedule),
		slog.Int("batch_size", d.config.BatchSize),
	)
	d.c = c
	d.cancel = cancel
	c.Start()

	d.initial.Add(1)
	go func() {
		defer d.initial.Done()
		d.runTick(ctx)
	}()
	return nil
}

// Stop halts the schedule and waits for running ticks, including the
// initial one, until ctx expires.
func (d *NotificationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	c, cancel := d.c, d.cancel
	d.c, d.cancel = nil, nil
	d.mu.Unlock()

	if c == nil {
		return nil
	}
	defer cancel()

	cronDone := c.Stop()
	initialDone := make(chan struct{})
	go func() {
		d.initial.Wait()
		close(initialDone)
	}()

	for _, done := range []<-chan struct{}{cronDone.Done(), initialDone} {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d.logger.Info("notification dispatcher stopped")
	return nil
}

func (d *NotificationDispatcher) runTick(ctx context.Context) {
	report, err := d.Tick(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "dispatcher tick failed", slog.Any("error", err))
		return
	}
	if report.Due > 0 {
		d.logger.InfoContext(ctx, "dispatcher tick",
			slog.Int("due", report.Due),
			slog.Int("claimed", report.Claimed),
			slog.Int("delivered", report.Delivered),
			slog.Int("failed", report.Failed),
			slog.Int("skipped", report.Skipped),
		)
	}
}

// cronSlogLogger adapts slog to cron.Logger.
type cronSlogLogger struct {
	logger *slog.Logger
}

func (l cronSlogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronSlogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
