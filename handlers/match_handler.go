package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
	}
}

type visibilityInput struct {
	Published *bool `json:"published"`
}

// ListPublished отдаёт публичную турнирную таблицу.
func (h *MatchHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	sportID, err := optionalIntQuery(r, "sport_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListPublished(r.Context(), sportID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMatches(w, r, matches)
}

func (h *MatchHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	sportID, err := optionalIntQuery(r, "sport_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundNo, err := optionalIntQuery(r, "round_no")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListAll(r.Context(), sportID, roundNo)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeMatches(w, r, matches)
}

func (h *MatchHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input visibilityInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Published == nil {
		badRequestResponse(w, r, errors.New("published is required"))
		return
	}

	match, err := h.matchService.SetVisibility(r.Context(), matchID, *input.Published)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeMatches(w http.ResponseWriter, r *http.Request, matches []*models.Match) {
	if matches == nil {
		matches = []*models.Match{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
