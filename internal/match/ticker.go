package match

import (
	"context"
	"time"

	"github.com/vogiaan1904/playgram-matchroom/internal/events"
)

// RunTicker emits an advisory countdown event per active match at a fixed
// interval, for client-side timer display. It is telemetry only and never
// drives a state transition. Returns when the context is cancelled.
func (r *Registry) RunTicker(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Registry) tick() {
	r.mu.RLock()
	live := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		live = append(live, m)
	}
	r.mu.RUnlock()

	now := time.Now()
	for _, m := range live {
		m.mu.Lock()
		if m.Status != StatusActive {
			m.mu.Unlock()
			continue
		}

		current := m.currentPlayer()
		remaining := current.deadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}

		r.emitToPlayers(m, events.TypeTimerTick, TimerTickPayload{
			MatchID:     m.ID,
			PlayerID:    current.ID,
			RemainingMS: remaining.Milliseconds(),
		})
		m.mu.Unlock()
	}
}
