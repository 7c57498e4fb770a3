package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/repositories"
)

const (
	defaultNotificationLimit = 50
	defaultTokenPlatform     = "web"
)

type RegisterTokenInput struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// NotificationService serves the participant-facing notification inbox.
type NotificationService interface {
	ListForUser(ctx context.Context, userID int) ([]*models.Notification, error)
	RegisterDeviceToken(ctx context.Context, userID int, input RegisterTokenInput) (*models.DeviceToken, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	tokenRepo        repositories.DeviceTokenRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, tokenRepo repositories.DeviceTokenRepository) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		tokenRepo:        tokenRepo,
	}
}

func (s *notificationService) ListForUser(ctx context.Context, userID int) ([]*models.Notification, error) {
	notifications, err := s.notificationRepo.ListSentByUser(ctx, userID, defaultNotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

func (s *notificationService) RegisterDeviceToken(ctx context.Context, userID int, input RegisterTokenInput) (*models.DeviceToken, error) {
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, validationError("token is required")
	}
	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if platform == "" {
		platform = defaultTokenPlatform
	}

	dt := &models.DeviceToken{UserID: userID, Token: token, Platform: platform}
	if err := s.tokenRepo.Upsert(ctx, dt); err != nil {
		return nil, fmt.Errorf("failed to register device token: %w", err)
	}
	return dt, nil
}
