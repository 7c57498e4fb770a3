package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/services"
	"github.com/go-chi/chi/v5"
)

type stubDrawService struct {
	got    services.DrawRequest
	result *services.DrawResult
	err    error
}

func (s *stubDrawService) GenerateTieSheet(ctx context.Context, req services.DrawRequest) (*services.DrawResult, error) {
	s.got = req
	return s.result, s.err
}

func postDraw(t *testing.T, svc services.DrawService, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewDrawHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/admin/draw", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.GenerateDraw(rec, req)
	return rec
}

const drawBody = `{"sport_id":7,"round_no":1,"venue":"Main Arena","start_datetime":"2025-03-01T09:00","slot_duration_minutes":20}`

func TestGenerateDraw_Created(t *testing.T) {
	svc := &stubDrawService{result: &services.DrawResult{
		Message: services.DrawSuccessMessage,
		SportID: 7,
		RoundNo: 1,
		Matches: []*models.Match{{ID: 1, SportID: 7, RoundNo: 1, Venue: "Main Arena"}},
	}}

	rec := postDraw(t, svc, drawBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.got.SportID != 7 || svc.got.SlotDurationMinutes != 20 || svc.got.StartDateTime != "2025-03-01T09:00" {
		t.Errorf("request decoded as %+v", svc.got)
	}

	var body struct {
		Message string          `json:"message"`
		Matches []*models.Match `json:"matches"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != services.DrawSuccessMessage || len(body.Matches) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestGenerateDraw_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"sport not found", services.ErrSportNotFound, http.StatusNotFound},
		{"insufficient", fmt.Errorf("draw: %w", services.ErrInsufficientParticipants), http.StatusBadRequest},
		{"validation", fmt.Errorf("%w: venue is required", services.ErrValidationFailed), http.StatusBadRequest},
		{"in progress", services.ErrDrawInProgress, http.StatusConflict},
		{"already drawn", fmt.Errorf("%w: round 1", services.ErrRoundAlreadyDrawn), http.StatusConflict},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postDraw(t, &stubDrawService{err: tt.err}, drawBody)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body map[string]interface{}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := body["message"]; !ok {
				t.Errorf("error body has no message: %v", body)
			}
		})
	}
}

func TestGenerateDraw_PersistenceErrorListsCreatedMatches(t *testing.T) {
	perr := &services.PersistenceError{CreatedMatchIDs: []int{11, 12}, Err: fmt.Errorf("connection reset")}
	rec := postDraw(t, &stubDrawService{err: perr}, drawBody)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Message         string `json:"message"`
		CreatedMatchIDs []int  `json:"created_match_ids"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.CreatedMatchIDs) != 2 || body.CreatedMatchIDs[0] != 11 {
		t.Errorf("created_match_ids = %v", body.CreatedMatchIDs)
	}
}

func TestGenerateDraw_BadJSON(t *testing.T) {
	svc := &stubDrawService{}
	for _, body := range []string{``, `{"sport_id":"seven"}`, `{"sport":7}`, `{} {}`} {
		rec := postDraw(t, svc, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", body, rec.Code)
		}
	}
}

type stubMatchService struct {
	services.MatchService
	published bool
	err       error
}

func (s *stubMatchService) SetVisibility(ctx context.Context, matchID int, published bool) (*models.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.published = published
	return &models.Match{ID: matchID, Published: published}, nil
}

func TestSetVisibility(t *testing.T) {
	svc := &stubMatchService{}
	r := chi.NewRouter()
	r.Put("/admin/matches/{matchID}/visibility", NewMatchHandler(svc).SetVisibility)

	tests := []struct {
		path string
		body string
		want int
	}{
		{"/admin/matches/5/visibility", `{"published":true}`, http.StatusOK},
		{"/admin/matches/5/visibility", `{}`, http.StatusBadRequest},
		{"/admin/matches/abc/visibility", `{"published":true}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body)))
		if rec.Code != tt.want {
			t.Errorf("%s %s: status = %d, want %d", tt.path, tt.body, rec.Code, tt.want)
		}
	}
	if !svc.published {
		t.Error("match should have been published")
	}

	svc.err = services.ErrMatchNotFound
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/matches/9/visibility", strings.NewReader(`{"published":false}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing match: status = %d, want 404", rec.Code)
	}
}
