package queue

import (
	"context"
	"sync"

	"github.com/vogiaan1904/playgram-matchroom/config"
	appErrors "github.com/vogiaan1904/playgram-matchroom/internal/errors"
	"github.com/vogiaan1904/playgram-matchroom/internal/match"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
)

// Manager owns the per-game-type waiting lists. Queues are in-memory and
// insertion-ordered; a player appears at most once per game type. Formation
// pops fixed-size groups from the front, so the earliest joiners are grouped
// first and no player waits behind a formable group.
type Manager struct {
	mu     sync.Mutex
	queues map[string][]string

	registry *match.Registry
	cfg      config.MatchroomConfig
	l        logger.Logger
}

func NewManager(registry *match.Registry, cfg config.MatchroomConfig, l logger.Logger) *Manager {
	return &Manager{
		queues:   make(map[string][]string),
		registry: registry,
		cfg:      cfg,
		l:        l,
	}
}

// Join appends the player to the named queue and immediately attempts match
// formation. Re-joining while already queued is a no-op that reports the
// current position. Returns the player's 1-based position after formation
// has run; 0 means the join completed a group and the player is already in a
// match.
func (m *Manager) Join(ctx context.Context, playerID, gameType string) (int, error) {
	if playerID == "" || gameType == "" {
		return 0, appErrors.ErrInvalidArgument
	}

	m.mu.Lock()

	q := m.queues[gameType]
	if indexOf(q, playerID) == -1 {
		q = append(q, playerID)
	}

	// Pop formable groups while holding the queue lock; create the matches
	// after releasing it so formation never runs under the lock.
	var groups [][]string
	for len(q) >= m.cfg.MatchSize {
		group := make([]string, m.cfg.MatchSize)
		copy(group, q[:m.cfg.MatchSize])
		q = q[m.cfg.MatchSize:]
		groups = append(groups, group)
	}
	m.queues[gameType] = q
	pos := indexOf(q, playerID) + 1

	m.mu.Unlock()

	for _, group := range groups {
		m.registry.Create(ctx, gameType, group)
	}

	m.l.Debugf(ctx, "Player %s joined %s queue at position %d", playerID, gameType, pos)

	return pos, nil
}

// Leave removes the player from the named queue if present. Matches already
// formed are unaffected.
func (m *Manager) Leave(ctx context.Context, playerID, gameType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[gameType]
	idx := indexOf(q, playerID)
	if idx == -1 {
		return false
	}

	m.queues[gameType] = append(q[:idx], q[idx+1:]...)

	m.l.Debugf(ctx, "Player %s left %s queue", playerID, gameType)

	return true
}

// Len reports the number of players currently waiting for the game type.
func (m *Manager) Len(ctx context.Context, gameType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.queues[gameType])
}

func indexOf(q []string, playerID string) int {
	for i, id := range q {
		if id == playerID {
			return i
		}
	}
	return -1
}
