package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/repositories"
)

type fakeSportRepo struct {
	sports map[int]*models.Sport
}

func (r *fakeSportRepo) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	s, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSportRepo) GetAll(ctx context.Context) ([]models.Sport, error) {
	out := make([]models.Sport, 0, len(r.sports))
	for _, s := range r.sports {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeParticipantRepo struct {
	approved map[int][]models.Participant
	calls    int
	updated  map[models.ParticipantRef]models.ApprovalStatus
}

func (r *fakeParticipantRepo) FindApproved(ctx context.Context, sportID int, kind models.SportKind) ([]models.Participant, error) {
	r.calls++
	return r.approved[sportID], nil
}

func (r *fakeParticipantRepo) ListBySport(ctx context.Context, sportID int, kind models.SportKind, status *models.ApprovalStatus) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range r.approved[sportID] {
		if status == nil || p.Status() == *status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) UpdateApprovalStatus(ctx context.Context, kind models.ParticipantKind, id int, status models.ApprovalStatus) error {
	for _, list := range r.approved {
		for _, p := range list {
			if p.Kind() == kind && p.ParticipantID() == id {
				if r.updated == nil {
					r.updated = make(map[models.ParticipantRef]models.ApprovalStatus)
				}
				r.updated[p.Ref()] = status
				return nil
			}
		}
	}
	return repositories.ErrParticipantNotFound
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int
	matches map[int]*models.Match
	// failAt >= 0 makes CreateBatch fail on that row.
	failAt int
	// afterCreate runs once the whole batch is written.
	afterCreate func()
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: make(map[int]*models.Match), failAt: -1}
}

func (r *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(matches))
	for i, m := range matches {
		if i == r.failAt {
			return ids, &repositories.BatchInsertError{CreatedIDs: ids, FailedIndex: i, Err: errors.New("connection reset")}
		}
		m.ID = r.nextID
		r.nextID++
		cp := *m
		r.matches[m.ID] = &cp
		ids = append(ids, m.ID)
	}
	if r.afterCreate != nil {
		r.afterCreate()
	}
	return ids, nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || m.SoftDeleted {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		switch {
		case m.SoftDeleted && !filter.IncludeDeleted:
			continue
		case filter.PublishedOnly && !m.Published:
			continue
		case filter.SportID != nil && m.SportID != *filter.SportID:
			continue
		case filter.RoundNo != nil && m.RoundNo != *filter.RoundNo:
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) UpdatePublished(ctx context.Context, id int, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || m.SoftDeleted {
		return repositories.ErrMatchNotFound
	}
	m.Published = published
	return nil
}

func (r *fakeMatchRepo) SoftDelete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || m.SoftDeleted {
		return repositories.ErrMatchNotFound
	}
	m.SoftDeleted = true
	m.Published = false
	return nil
}

func (r *fakeMatchRepo) CountActiveForRound(ctx context.Context, sportID, roundNo int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.matches {
		if m.SportID == sportID && m.RoundNo == roundNo && !m.SoftDeleted {
			n++
		}
	}
	return n, nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	nextID    int
	rows      []*models.Notification
	failUsers map[int]bool
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	// Как database/sql: отменённый контекст не даёт выполнить запрос.
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUsers[n.UserID] {
		return repositories.ErrNotificationUserInvalid
	}
	r.nextID++
	n.ID = r.nextID
	cp := *n
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeNotificationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.rows {
		if n.Due(now) && len(out) < limit {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) ClaimSent(ctx context.Context, id int, sentAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id && !n.Sent {
			n.Sent = true
			n.SentAt = &sentAt
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) ListSentByUser(ctx context.Context, userID int, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.rows {
		if n.UserID == userID && n.Sent && len(out) < limit {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountPending(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if !row.Sent {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) forUser(userID int) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type recordingHub struct {
	mu       sync.Mutex
	messages map[string][]interface{}
}

func (h *recordingHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.messages == nil {
		h.messages = make(map[string][]interface{})
	}
	h.messages[roomID] = append(h.messages[roomID], message)
}

type fakeArchive struct {
	saved   int
	removed []int
	err     error
}

func (a *fakeArchive) Save(ctx context.Context, sportID, roundNo int, snapshot interface{}) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.saved++
	return "https://cdn.example.com/tie-sheets/sport-7/round-1.json", nil
}

func (a *fakeArchive) Remove(ctx context.Context, sportID, roundNo int) error {
	a.removed = append(a.removed, roundNo)
	return a.err
}
