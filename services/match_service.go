package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/intramural-draws/brackets"
	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/repositories"
)

type MatchService interface {
	ListPublished(ctx context.Context, sportID *int) ([]*models.Match, error)
	ListAll(ctx context.Context, sportID *int, roundNo *int) ([]*models.Match, error)
	SetVisibility(ctx context.Context, matchID int, published bool) (*models.Match, error)
	Delete(ctx context.Context, matchID int) error
}

type matchService struct {
	matchRepo repositories.MatchRepository
	hub       brackets.Broadcaster
	archive   TieSheetArchiver
	logger    *slog.Logger
}

func NewMatchService(matchRepo repositories.MatchRepository, hub brackets.Broadcaster, archive TieSheetArchiver, logger *slog.Logger) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		matchRepo: matchRepo,
		hub:       hub,
		archive:   archive,
		logger:    logger,
	}
}

func (s *matchService) ListPublished(ctx context.Context, sportID *int) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, repositories.MatchFilter{SportID: sportID, PublishedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list published matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) ListAll(ctx context.Context, sportID *int, roundNo *int) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, repositories.MatchFilter{SportID: sportID, RoundNo: roundNo})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// SetVisibility publishes or hides a match on the public tie sheet.
func (s *matchService) SetVisibility(ctx context.Context, matchID int, published bool) (*models.Match, error) {
	if err := s.matchRepo.UpdatePublished(ctx, matchID, published); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d visibility: %w", matchID, err)
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to reload match %d: %w", matchID, err)
	}

	s.broadcast(match)
	return match, nil
}

func (s *matchService) Delete(ctx context.Context, matchID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if err := s.matchRepo.SoftDelete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %d: %w", matchID, err)
	}
	match.SoftDeleted = true
	match.Published = false
	s.broadcast(match)
	s.dropEmptyRoundArchive(ctx, match.SportID, match.RoundNo)
	return nil
}

// dropEmptyRoundArchive убирает снимок сетки, когда в раунде не осталось матчей.
// Ошибки только логируются: матч уже удалён.
func (s *matchService) dropEmptyRoundArchive(ctx context.Context, sportID, roundNo int) {
	if s.archive == nil {
		return
	}
	remaining, err := s.matchRepo.CountActiveForRound(ctx, sportID, roundNo)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to count remaining matches", slog.Int("sport_id", sportID), slog.Int("round_no", roundNo), slog.Any("error", err))
		return
	}
	if remaining > 0 {
		return
	}
	if err := s.archive.Remove(ctx, sportID, roundNo); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove archived tie sheet", slog.Int("sport_id", sportID), slog.Int("round_no", roundNo), slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "archived tie sheet removed", slog.Int("sport_id", sportID), slog.Int("round_no", roundNo))
}

func (s *matchService) broadcast(match *models.Match) {
	if s.hub == nil {
		return
	}
	room := brackets.SportRoom(match.SportID)
	s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    brackets.MessageMatchUpdated,
		Payload: match,
		RoomID:  room,
	})
}
