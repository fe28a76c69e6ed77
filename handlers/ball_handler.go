package handlers

import (
	"fmt"
	"net/http"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/services"
)

type BallHandler struct {
	scoringService services.ScoringService
}

func NewBallHandler(ss services.ScoringService) *BallHandler {
	return &BallHandler{scoringService: ss}
}

func (h *BallHandler) RecordBall(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordBallInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.scoringService.RecordBall(r.Context(), inningID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, res)
}

func (h *BallHandler) UndoLastBall(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.scoringService.UndoLastBall(r.Context(), inningID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res)
}

func (h *BallHandler) ListBalls(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var query services.BallListQuery
	if query.Page, err = queryIntDefault(r, "page", 1); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if query.Limit, err = queryIntDefault(r, "limit", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	switch order := r.URL.Query().Get("order"); order {
	case "", "asc":
	case "desc":
		query.Descending = true
	default:
		badRequestResponse(w, r, fmt.Errorf("order must be asc or desc, got %q", order))
		return
	}
	switch group := r.URL.Query().Get("group"); group {
	case "":
	case "over":
		query.GroupByOver = true
	default:
		badRequestResponse(w, r, fmt.Errorf("unsupported group %q", group))
		return
	}

	list, err := h.scoringService.ListBalls(r.Context(), inningID, query)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, list)
}

func (h *BallHandler) GetCurrentOver(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scoringService.GetCurrentOver(r.Context(), inningID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, view)
}

func (h *BallHandler) GetBattingPartners(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scoringService.GetBattingPartners(r.Context(), inningID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, view)
}

func (h *BallHandler) GetCommentary(w http.ResponseWriter, r *http.Request) {
	inningID, err := getIDFromURL(r, "inningID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fromOver, err := queryInt(r, "from_over")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	toOver, err := queryInt(r, "to_over")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lines, err := h.scoringService.GetCommentary(r.Context(), inningID, fromOver, toOver)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"commentary": lines})
}
