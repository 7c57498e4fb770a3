package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/intramural-draws/brackets"
	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/repositories"
	"github.com/Dosada05/intramural-draws/utils"
	"github.com/google/uuid"
)

const DrawSuccessMessage = "Tie sheet generated and notifications scheduled"

const (
	// Принятая жеребьёвка доводится до конца независимо от клиента.
	drawCompletionTimeout  = 2 * time.Minute
	maxSlotDurationMinutes = 24 * 60
)

var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

type DrawRequest struct {
	SportID             int    `json:"sport_id"`
	RoundNo             int    `json:"round_no"`
	Venue               string `json:"venue"`
	StartDateTime       string `json:"start_datetime"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
}

type DrawResult struct {
	Message              string          `json:"message"`
	DrawID               string          `json:"draw_id"`
	GeneratedAt          time.Time       `json:"generated_at"`
	SportID              int             `json:"sport_id"`
	RoundNo              int             `json:"round_no"`
	Matches              []*models.Match `json:"matches"`
	NotificationsCreated int             `json:"notifications_created"`
	NotificationFailures int             `json:"notification_failures"`
	ArchiveURL           string          `json:"archive_url,omitempty"`
}

// TieSheetArchiver is implemented by *storage.TieSheetArchive.
// One snapshot is kept per (sport, round); Save overwrites it.
type TieSheetArchiver interface {
	Save(ctx context.Context, sportID, roundNo int, snapshot interface{}) (string, error)
	Remove(ctx context.Context, sportID, roundNo int) error
}

type DrawService interface {
	GenerateTieSheet(ctx context.Context, req DrawRequest) (*DrawResult, error)
}

type drawKey struct {
	sportID int
	roundNo int
}

type drawService struct {
	sportRepo       repositories.SportRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	scheduler       NotificationScheduler
	generator       brackets.DrawGenerator
	hub             brackets.Broadcaster
	archive         TieSheetArchiver
	clock           utils.Clock
	location        *time.Location
	logger          *slog.Logger

	mu       sync.Mutex
	inFlight map[drawKey]struct{}
}

func NewDrawService(
	sportRepo repositories.SportRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	scheduler NotificationScheduler,
	generator brackets.DrawGenerator,
	hub brackets.Broadcaster,
	archive TieSheetArchiver,
	clock utils.Clock,
	location *time.Location,
	logger *slog.Logger,
) DrawService {
	if generator == nil {
		generator = brackets.NewRandomPairingGenerator(nil)
	}
	if clock == nil {
		clock = utils.SystemClock()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &drawService{
		sportRepo:       sportRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		scheduler:       scheduler,
		generator:       generator,
		hub:             hub,
		archive:         archive,
		clock:           clock,
		location:        location,
		logger:          logger,
		inFlight:        make(map[drawKey]struct{}),
	}
}

func (s *drawService) GenerateTieSheet(ctx context.Context, req DrawRequest) (*DrawResult, error) {
	startTime, err := s.validateRequest(&req)
	if err != nil {
		return nil, err
	}

	sport, err := s.sportRepo.GetByID(ctx, req.SportID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to load sport %d: %w", req.SportID, err)
	}

	key := drawKey{sportID: sport.ID, roundNo: req.RoundNo}
	if !s.acquire(key) {
		return nil, ErrDrawInProgress
	}
	defer s.release(key)

	// Дальше запись в БД: отмена запроса не должна оставить сетку без уведомлений.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drawCompletionTimeout)
	defer cancel()

	existing, err := s.matchRepo.CountActiveForRound(ctx, sport.ID, req.RoundNo)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing matches: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: sport %d round %d has %d matches", ErrRoundAlreadyDrawn, sport.ID, req.RoundNo, existing)
	}

	participants, err := s.participantRepo.FindApproved(ctx, sport.ID, sport.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved participants for sport %d: %w", sport.ID, err)
	}

	candidates, err := s.generator.GenerateDraw(ctx, brackets.DrawParams{
		SportID:      sport.ID,
		SportKind:    sport.Kind,
		Participants: participants,
		RoundNo:      req.RoundNo,
		Venue:        req.Venue,
		StartTime:    startTime,
		SlotDuration: time.Duration(req.SlotDurationMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate draw for sport %d: %w", sport.ID, err)
	}

	s.logger.InfoContext(ctx, "draw generated",
		slog.Int("sport_id", sport.ID),
		slog.Int("round_no", req.RoundNo),
		slog.String("generator", s.generator.GetName()),
		slog.Int("participants", len(participants)),
		slog.Int("matches", len(candidates)),
	)

	matches := make([]*models.Match, len(candidates))
	for i, c := range candidates {
		matches[i] = c.ToMatch()
	}

	ids, batchErr := s.matchRepo.CreateBatch(ctx, nil, matches)
	created := matches[:len(ids)]

	result := &DrawResult{
		Message:     DrawSuccessMessage,
		DrawID:      uuid.NewString(),
		GeneratedAt: s.clock.Now(),
		SportID:     sport.ID,
		RoundNo:     req.RoundNo,
		Matches:     created,
	}

	// Уведомления создаются и для частично сохранённой сетки: эти матчи уже существуют.
	for i, m := range created {
		report, err := s.scheduler.ScheduleMatchNotifications(ctx, m.ID, candidates[i].UserIDs(), m.ScheduledAt)
		result.NotificationsCreated += report.Created
		result.NotificationFailures += len(report.FailedUsers)
		if err != nil {
			s.logger.WarnContext(ctx, "match notifications incomplete",
				slog.Int("match_id", m.ID),
				slog.Any("failed_users", report.FailedUsers),
				slog.Any("error", err),
			)
		}
	}

	if batchErr != nil {
		s.logger.ErrorContext(ctx, "match batch insert failed",
			slog.String("draw_id", result.DrawID),
			slog.Int("sport_id", sport.ID),
			slog.Int("round_no", req.RoundNo),
			slog.Any("created_match_ids", ids),
			slog.Any("error", batchErr),
		)
		return nil, &PersistenceError{CreatedMatchIDs: ids, Err: batchErr}
	}

	s.announce(ctx, result)
	return result, nil
}

func (s *drawService) announce(ctx context.Context, result *DrawResult) {
	if s.hub != nil {
		room := brackets.SportRoom(result.SportID)
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type:    brackets.MessageDrawGenerated,
			Payload: result,
			RoomID:  room,
		})
	}

	if s.archive != nil {
		url, err := s.archive.Save(ctx, result.SportID, result.RoundNo, result)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to archive tie sheet", slog.Int("sport_id", result.SportID), slog.Any("error", err))
			return
		}
		result.ArchiveURL = url
	}
}

func (s *drawService) validateRequest(req *DrawRequest) (time.Time, error) {
	req.Venue = strings.TrimSpace(req.Venue)
	switch {
	case req.SportID <= 0:
		return time.Time{}, validationError("sport_id must be a positive integer")
	case req.RoundNo <= 0:
		return time.Time{}, validationError("round_no must be a positive integer")
	case req.Venue == "":
		return time.Time{}, validationError("venue is required")
	case req.SlotDurationMinutes <= 0:
		return time.Time{}, validationError("slot_duration_minutes must be a positive integer")
	case req.SlotDurationMinutes > maxSlotDurationMinutes:
		return time.Time{}, validationError("slot_duration_minutes must not exceed %d", maxSlotDurationMinutes)
	}
	return parseStartTime(req.StartDateTime, s.location)
}

// parseStartTime accepts ISO-8601 with or without offset; times without an offset are in loc.
func parseStartTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, validationError("start_datetime is required")
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationError("start_datetime %q is not a valid ISO-8601 timestamp", value)
}

func (s *drawService) acquire(key drawKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *drawService) release(key drawKey) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}
