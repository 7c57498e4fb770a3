package handlers

import (
	"net/http"

	"github.com/Dosada05/intramural-draws/services"
)

type DrawHandler struct {
	drawService services.DrawService
}

func NewDrawHandler(ds services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: ds,
	}
}

// GenerateDraw - POST /admin/draw
func (h *DrawHandler) GenerateDraw(w http.ResponseWriter, r *http.Request) {
	var input services.DrawRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.GenerateTieSheet(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
