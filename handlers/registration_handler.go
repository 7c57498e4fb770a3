package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/services"
	"github.com/go-chi/chi/v5"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(rs services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: rs,
	}
}

type approvalInput struct {
	Status models.ApprovalStatus `json:"status"`
}

// List - GET /admin/registrations?sport_id=&status=
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	sportID, err := optionalIntQuery(r, "sport_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if sportID == nil {
		badRequestResponse(w, r, errors.New("sport_id is required"))
		return
	}

	var status *models.ApprovalStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.ApprovalStatus(raw)
		status = &s
	}

	participants, err := h.registrationService.ListBySport(r.Context(), *sportID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if participants == nil {
		participants = []models.Participant{}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatus - PUT /admin/registrations/{kind}/{id}
func (h *RegistrationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	kind := models.ParticipantKind(chi.URLParam(r, "kind"))
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input approvalInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.UpdateStatus(r.Context(), kind, id, input.Status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "registration status updated", "status": input.Status}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
