package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the control surface. The websocket bridge registers itself
// under /ws via wsHandler.
func NewRouter(h *Handler, wsHandler http.HandlerFunc) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/queue", func(r chi.Router) {
			r.Post("/join", h.JoinQueue)
			r.Post("/leave", h.LeaveQueue)
			r.Get("/{gameType}", h.QueueStatus)
		})

		r.Get("/matches/by-player/{playerID}", h.MatchByPlayer)

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", h.Snapshot)
			r.Post("/claim", h.Claim)
			r.Post("/start", h.Start)
			r.Post("/moves", h.SubmitMove)
			r.Post("/end", h.End)
			r.Post("/forfeit", h.Forfeit)
			r.Post("/rejoin", h.Rejoin)
		})
	})

	r.Get("/ws/{playerID}", wsHandler)

	return r
}
