package handlers

import (
	"net/http"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/services"
)

type InningHandler struct {
	inningService services.InningService
}

func NewInningHandler(is services.InningService) *InningHandler {
	return &InningHandler{inningService: is}
}

func (h *InningHandler) StartInning(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.StartInningInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inning, err := h.inningService.StartInning(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"inning": inning})
}

func (h *InningHandler) ListMatchInnings(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	innings, err := h.inningService.ListMatchInnings(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"innings": innings})
}

func (h *InningHandler) GetCurrentInning(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inning, err := h.inningService.GetCurrentInning(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"inning": inning})
}

func (h *InningHandler) GetInning(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inning, err := h.inningService.GetInning(r.Context(), inningID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"inning": inning})
}

func (h *InningHandler) CompleteInning(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.inningService.CompleteInning(r.Context(), inningID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res)
}
