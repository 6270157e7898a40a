package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vogiaan1904/playgram-matchroom/internal/service"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
)

type Handler struct {
	svc       service.MatchroomService
	l         logger.Logger
	validator *validator.Validate
}

func NewHandler(svc service.MatchroomService, l logger.Logger) *Handler {
	return &Handler{
		svc:       svc,
		l:         l,
		validator: validator.New(),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "playgram-matchroom",
	})
}

func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	var in service.JoinQueueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(in); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	out, err := h.svc.JoinQueue(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, out)
}

func (h *Handler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	var in service.LeaveQueueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(in); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	out, err := h.svc.LeaveQueue(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	gameType := chi.URLParam(r, "gameType")

	out, err := h.svc.QueueStatus(r.Context(), gameType)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, out)
}

type playerRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if err := h.svc.Claim(r.Context(), matchID, req.PlayerID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"claimed": true})
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	if err := h.svc.Start(r.Context(), matchID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"started": true})
}

func (h *Handler) SubmitMove(w http.ResponseWriter, r *http.Request) {
	var in service.SubmitMoveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.MatchID = chi.URLParam(r, "matchID")

	if err := h.validator.Struct(in); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if err := h.svc.SubmitMove(r.Context(), in); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	var in service.EndMatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.MatchID = chi.URLParam(r, "matchID")

	if err := h.svc.End(r.Context(), in); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"ended": true})
}

func (h *Handler) Forfeit(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if err := h.svc.Forfeit(r.Context(), matchID, req.PlayerID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"forfeited": true})
}

func (h *Handler) Rejoin(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if err := h.svc.Rejoin(r.Context(), matchID, req.PlayerID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"rejoined": true})
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	snap, ok := h.svc.Snapshot(r.Context(), matchID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "Match not found")
		return
	}

	h.respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) MatchByPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	snap, ok := h.svc.FindByPlayer(r.Context(), playerID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "No live match for player")
		return
	}

	h.respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if httpErr := mapHTTPError(err); httpErr != nil {
		h.respondJSON(w, httpErr.StatusCode, map[string]any{
			"error_code": httpErr.Code,
			"message":    httpErr.Message,
		})
		return
	}

	h.l.Errorf(r.Context(), "delivery.http.Handler: unexpected error: %v", err)
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]any{"message": message})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
