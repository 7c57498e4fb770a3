package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrDelivery = errors.New("push delivery failed")

// SendResult lists device tokens the provider rejected. They have already been pruned.
type SendResult struct {
	Sent         int
	FailedTokens []string
}

// Sender delivers a push message to every registered device of the given users.
type Sender interface {
	Send(ctx context.Context, userIDs []int, title, body string) (*SendResult, error)
}

// DeliveryError is returned when a message could not be handed to any device.
type DeliveryError struct {
	UserIDs []int
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("push delivery to users %v failed: %v", e.UserIDs, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

// LogSender only logs messages. Used when Firebase credentials are not configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, userIDs []int, title, body string) (*SendResult, error) {
	s.logger.InfoContext(ctx, "push notification (log only)",
		slog.Any("user_ids", userIDs),
		slog.String("title", title),
		slog.String("body", body),
	)
	return &SendResult{}, nil
}
