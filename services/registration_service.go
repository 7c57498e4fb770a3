package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/repositories"
)

type RegistrationService interface {
	ListBySport(ctx context.Context, sportID int, status *models.ApprovalStatus) ([]models.Participant, error)
	UpdateStatus(ctx context.Context, kind models.ParticipantKind, id int, status models.ApprovalStatus) error
}

type registrationService struct {
	sportRepo       repositories.SportRepository
	participantRepo repositories.ParticipantRepository
}

func NewRegistrationService(sportRepo repositories.SportRepository, participantRepo repositories.ParticipantRepository) RegistrationService {
	return &registrationService{
		sportRepo:       sportRepo,
		participantRepo: participantRepo,
	}
}

func (s *registrationService) ListBySport(ctx context.Context, sportID int, status *models.ApprovalStatus) ([]models.Participant, error) {
	if status != nil && !status.Valid() {
		return nil, validationError("unknown approval status %q", *status)
	}
	sport, err := s.sportRepo.GetByID(ctx, sportID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to load sport %d: %w", sportID, err)
	}
	participants, err := s.participantRepo.ListBySport(ctx, sport.ID, sport.Kind, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for sport %d: %w", sportID, err)
	}
	return participants, nil
}

func (s *registrationService) UpdateStatus(ctx context.Context, kind models.ParticipantKind, id int, status models.ApprovalStatus) error {
	if kind != models.ParticipantKindTeam && kind != models.ParticipantKindSingle {
		return validationError("registration type must be team or single, got %q", kind)
	}
	if !status.Valid() {
		return validationError("unknown approval status %q", status)
	}
	if err := s.participantRepo.UpdateApprovalStatus(ctx, kind, id, status); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to update %s registration %d: %w", kind, id, err)
	}
	return nil
}
