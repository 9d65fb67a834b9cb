package api

import (
	"errors"
	"net/http"

	"ms-raffle/internal/draw"
	"ms-raffle/internal/raffle"
	"ms-raffle/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	DrawService *draw.Service
}

// RunDraw executes the draw for an open raffle and returns the winners in
// draw order.
func (h *Handler) RunDraw(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")

	winners, err := h.DrawService.ExecuteDraw(r.Context(), raffleID)
	if err != nil {
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not run draw", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Draw completed", map[string]interface{}{
		"raffle_id": raffleID,
		"winners":   winners,
	}))
}

func (h *Handler) GetWinners(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")

	winners, err := h.DrawService.GetWinners(r.Context(), raffleID)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Winners not found", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Winners", winners))
}

// GetWheel returns the entry/range table plus the renderable segment table.
// The client needs nothing else to draw the wheel or stop it on any ticket.
func (h *Handler) GetWheel(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")

	wheel, err := h.DrawService.GetWheel(r.Context(), raffleID)
	if err != nil {
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not build wheel", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Wheel", wheel))
}

// GetReplay returns the persisted winners of a past draw joined with their
// stop angles, in reveal order.
func (h *Handler) GetReplay(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")

	replay, err := h.DrawService.ReplayDraw(r.Context(), raffleID)
	if err != nil {
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not replay draw", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Replay", replay))
}

// VerifyDraw re-runs the draw from the stored seed and reports whether it
// reproduces the persisted winners.
func (h *Handler) VerifyDraw(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")

	result, err := h.DrawService.VerifyDraw(r.Context(), raffleID)
	if err != nil {
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not verify draw", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Verification result", result))
}

// statusForError maps the draw error taxonomy onto HTTP codes: malformed
// raffle data is a 400, state conflicts are 409, unsatisfiable draws are 422,
// broken invariants stay 500.
func statusForError(err error) int {
	var invalidEntry *raffle.InvalidEntryError
	var insufficient *raffle.InsufficientEntriesError
	var exhausted *raffle.DrawExhaustedError

	switch {
	case errors.Is(err, raffle.ErrEmptyPool),
		errors.Is(err, raffle.ErrTicketOverflow),
		errors.As(err, &invalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, draw.ErrRaffleNotOpen),
		errors.Is(err, draw.ErrDrawInProgress),
		errors.Is(err, draw.ErrRaffleNotDrawn):
		return http.StatusConflict
	case errors.As(err, &insufficient), errors.As(err, &exhausted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
