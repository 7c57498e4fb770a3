package push

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/Dosada05/intramural-draws/repositories"
)

// FCM принимает не более 500 токенов за один multicast-запрос.
const maxMulticastTokens = 500

// multicastClient is the part of *messaging.Client the sender uses.
type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type FCMSender struct {
	client multicastClient
	tokens repositories.DeviceTokenRepository
	logger *slog.Logger
}

// NewFCMSender initialises the Firebase app from a service account file.
func NewFCMSender(ctx context.Context, credentialsFile string, tokens repositories.DeviceTokenRepository, logger *slog.Logger) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}
	return newFCMSender(client, tokens, logger), nil
}

func newFCMSender(client multicastClient, tokens repositories.DeviceTokenRepository, logger *slog.Logger) *FCMSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &FCMSender{client: client, tokens: tokens, logger: logger}
}

// Send delivers to every token of userIDs and prunes the tokens FCM rejected.
// Users without tokens are a no-op, not an error.
func (s *FCMSender) Send(ctx context.Context, userIDs []int, title, body string) (*SendResult, error) {
	tokens, err := s.tokens.ListTokensByUsers(ctx, userIDs)
	if err != nil {
		return nil, &DeliveryError{UserIDs: userIDs, Err: err}
	}
	result := &SendResult{FailedTokens: make([]string, 0)}
	if len(tokens) == 0 {
		return result, nil
	}

	var lastErr error
	for start := 0; start < len(tokens); start += maxMulticastTokens {
		end := min(start+maxMulticastTokens, len(tokens))
		chunk := tokens[start:end]

		resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       chunk,
			Notification: &messaging.Notification{Title: title, Body: body},
		})
		if err != nil {
			lastErr = err
			continue
		}
		result.Sent += resp.SuccessCount
		if resp.FailureCount == 0 {
			continue
		}
		for idx, r := range resp.Responses {
			if r != nil && !r.Success && idx < len(chunk) {
				result.FailedTokens = append(result.FailedTokens, chunk[idx])
			}
		}
	}

	if len(result.FailedTokens) > 0 {
		removed, err := s.tokens.DeleteTokens(ctx, result.FailedTokens)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to prune invalid device tokens", slog.Int("tokens", len(result.FailedTokens)), slog.Any("error", err))
		} else {
			s.logger.InfoContext(ctx, "pruned invalid device tokens", slog.Int64("removed", removed))
		}
	}

	if result.Sent == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("all %d device tokens were rejected", len(tokens))
		}
		return result, &DeliveryError{UserIDs: userIDs, Err: lastErr}
	}
	return result, nil
}
