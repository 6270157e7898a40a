package match

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vogiaan1904/playgram-matchroom/config"
	kafka "github.com/vogiaan1904/playgram-matchroom/internal/delivery/kafka"
	"github.com/vogiaan1904/playgram-matchroom/internal/delivery/kafka/producer"
	appErrors "github.com/vogiaan1904/playgram-matchroom/internal/errors"
	"github.com/vogiaan1904/playgram-matchroom/internal/events"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
	"github.com/vogiaan1904/playgram-matchroom/pkg/token"
)

// Registry owns the live-match table. Each match carries its own lock, so
// operations on distinct matches proceed in parallel; the registry lock only
// guards the table itself. A match is removed from the table the moment it
// ends, so every lookup of an ended match reports not-found.
type Registry struct {
	mu      sync.RWMutex
	matches map[string]*Match

	bus    *events.Bus
	prod   producer.Producer // nil when Kafka is disabled
	signer *token.Signer
	cfg    config.MatchroomConfig
	l      logger.Logger
}

func NewRegistry(
	bus *events.Bus,
	prod producer.Producer,
	signer *token.Signer,
	cfg config.MatchroomConfig,
	l logger.Logger,
) *Registry {
	return &Registry{
		matches: make(map[string]*Match),
		bus:     bus,
		prod:    prod,
		signer:  signer,
		cfg:     cfg,
		l:       l,
	}
}

// Create forms a match from an ordered player group. Player order fixes turn
// order.
func (r *Registry) Create(ctx context.Context, gameType string, playerIDs []string) *Match {
	players := make([]*Participant, len(playerIDs))
	for i, id := range playerIDs {
		players[i] = &Participant{ID: id}
	}

	m := &Match{
		ID:       uuid.NewString(),
		GameType: gameType,
		Status:   StatusFormed,
		Players:  players,
		FormedAt: time.Now(),
	}

	r.mu.Lock()
	r.matches[m.ID] = m
	r.mu.Unlock()

	r.emitToPlayers(m, events.TypeMatchReady, MatchReadyPayload{
		MatchID:   m.ID,
		GameType:  m.GameType,
		PlayerIDs: playerIDs,
	})

	if r.prod != nil {
		if err := r.prod.PublishMatchReady(ctx, kafka.MatchReadyEvent{
			MatchID:   m.ID,
			GameType:  m.GameType,
			PlayerIDs: playerIDs,
			FormedAt:  m.FormedAt,
		}); err != nil {
			r.l.Errorf(ctx, "match.Registry.Create: failed to publish match ready event: %v", err)
		}
	}

	r.l.Infof(ctx, "Match %s formed: game_type=%s players=%v", m.ID, m.GameType, playerIDs)

	return m
}

func (r *Registry) get(matchID string) *Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matches[matchID]
}

// Claim marks a participant ready. Once every participant has claimed, the
// match activates and inactivity deadlines are armed for all players.
func (r *Registry) Claim(ctx context.Context, matchID, playerID string) error {
	m := r.get(matchID)
	if m == nil {
		return appErrors.ErrMatchNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.Status {
	case StatusEnded:
		return appErrors.ErrMatchNotFound
	case StatusActive:
		return appErrors.ErrInvalidState
	}

	p := m.participant(playerID)
	if p == nil {
		return appErrors.ErrPlayerNotInMatch
	}

	p.Claimed = true

	if m.allClaimed() {
		r.activateLocked(ctx, m)
	}

	return nil
}

// Start force-activates a fully claimed match.
func (r *Registry) Start(ctx context.Context, matchID string) error {
	m := r.get(matchID)
	if m == nil {
		return appErrors.ErrMatchNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status != StatusFormed || !m.allClaimed() {
		return appErrors.ErrInvalidState
	}

	r.activateLocked(ctx, m)
	return nil
}

func (r *Registry) activateLocked(ctx context.Context, m *Match) {
	m.Status = StatusActive
	m.Turn = 0
	m.StartedAt = time.Now()

	for _, p := range m.Players {
		r.rearmLocked(m, p)
	}

	r.emitToPlayers(m, events.TypeMatchStarted, MatchStartedPayload{
		MatchID: m.ID,
		Turn:    m.Turn,
	})

	if r.prod != nil {
		if err := r.prod.PublishMatchStarted(ctx, kafka.MatchStartedEvent{
			MatchID:   m.ID,
			GameType:  m.GameType,
			PlayerIDs: m.playerIDs(),
			StartedAt: m.StartedAt,
		}); err != nil {
			r.l.Errorf(ctx, "match.Registry.activateLocked: failed to publish match started event: %v", err)
		}
	}

	r.l.Infof(ctx, "Match %s started: game_type=%s", m.ID, m.GameType)
}

// SubmitMove appends an opaque move for the participant whose turn it is,
// advances the turn cursor and rearms every participant's deadline. A move is
// evidence the session is alive, so all clocks reset, not just the mover's.
func (r *Registry) SubmitMove(ctx context.Context, matchID, playerID string, payload json.RawMessage) error {
	m := r.get(matchID)
	if m == nil {
		return appErrors.ErrMatchNotActive
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status != StatusActive {
		return appErrors.ErrMatchNotActive
	}

	if m.currentPlayer().ID != playerID {
		return appErrors.ErrNotYourTurn
	}

	m.Moves = append(m.Moves, Move{
		PlayerID: playerID,
		Payload:  payload,
		PlayedAt: time.Now(),
	})
	m.Turn = (m.Turn + 1) % len(m.Players)

	for _, p := range m.Players {
		r.rearmLocked(m, p)
	}

	r.emitToPlayers(m, events.TypeState, StatePayload{
		MatchID:  m.ID,
		Turn:     m.Turn,
		PlayerID: playerID,
		LastMove: payload,
	})

	return nil
}

// End finalizes a match from Formed or Active. Ended matches are reaped, so a
// second End observes not-found rather than a double transition.
func (r *Registry) End(ctx context.Context, matchID, winnerID, reason string) error {
	m := r.get(matchID)
	if m == nil {
		return appErrors.ErrMatchNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status == StatusEnded {
		return appErrors.ErrMatchNotFound
	}

	var winners []string
	if winnerID != "" {
		winners = []string{winnerID}
	}

	r.endLocked(ctx, m, winnerID, winners, reason)
	return nil
}

// Forfeit ends an active match against the given participant. All remaining
// participants are recorded as co-winners; with two players this is exactly
// "the other player wins". Timer expiry shares forfeitLocked but adds a
// deadline check first.
func (r *Registry) Forfeit(ctx context.Context, matchID, playerID string) error {
	m := r.get(matchID)
	if m == nil {
		return appErrors.ErrMatchNotActive
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status != StatusActive {
		return appErrors.ErrMatchNotActive
	}

	r.forfeitLocked(ctx, m, playerID)
	return nil
}

func (r *Registry) forfeitLocked(ctx context.Context, m *Match, playerID string) {
	var winners []string
	for _, p := range m.Players {
		if p.ID != playerID {
			winners = append(winners, p.ID)
		}
	}

	winnerID := ""
	if len(winners) == 1 {
		winnerID = winners[0]
	}

	r.endLocked(ctx, m, winnerID, winners, "forfeit")
}

// Rejoin signals reconnection: it rearms the participant's inactivity deadline
// without consuming a turn. On a match that has not started yet there is no
// deadline to rearm and the call is a no-op.
func (r *Registry) Rejoin(ctx context.Context, matchID, playerID string) error {
	m := r.get(matchID)
	if m == nil {
		return appErrors.ErrMatchNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status == StatusEnded {
		return appErrors.ErrMatchNotFound
	}

	p := m.participant(playerID)
	if p == nil {
		return appErrors.ErrPlayerNotInMatch
	}

	if m.Status == StatusActive {
		r.rearmLocked(m, p)
	}

	r.l.Debugf(ctx, "Player %s rejoined match %s", playerID, matchID)

	return nil
}

// Snapshot returns a read-only projection, or false when the match is absent.
// Absence is not an error: the match may simply have ended and been reaped.
func (r *Registry) Snapshot(ctx context.Context, matchID string) (*Snapshot, bool) {
	m := r.get(matchID)
	if m == nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status == StatusEnded {
		return nil, false
	}

	return m.snapshotLocked(), true
}

// FindByPlayer returns the snapshot of the live match the player belongs to,
// if any. The table lock is released before taking any match lock.
func (r *Registry) FindByPlayer(ctx context.Context, playerID string) (*Snapshot, bool) {
	r.mu.RLock()
	candidates := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		candidates = append(candidates, m)
	}
	r.mu.RUnlock()

	for _, m := range candidates {
		m.mu.Lock()
		if m.Status != StatusEnded && m.participant(playerID) != nil {
			snap := m.snapshotLocked()
			m.mu.Unlock()
			return snap, true
		}
		m.mu.Unlock()
	}

	return nil, false
}

func (r *Registry) endLocked(ctx context.Context, m *Match, winnerID string, winners []string, reason string) {
	m.Status = StatusEnded
	m.WinnerID = winnerID
	m.Winners = winners
	m.EndReason = reason
	m.EndedAt = time.Now()

	r.stopTimersLocked(m)

	r.emitToPlayers(m, events.TypeMatchEnd, MatchEndPayload{
		MatchID: m.ID,
		Winner:  winnerID,
		Winners: winners,
		Reason:  reason,
	})

	if r.prod != nil {
		moves := make([]kafka.MoveRecord, len(m.Moves))
		for i, mv := range m.Moves {
			moves[i] = kafka.MoveRecord{
				PlayerID: mv.PlayerID,
				Move:     mv.Payload,
				PlayedAt: mv.PlayedAt,
			}
		}

		resultToken, err := r.signer.SignMatchResult(m.ID, m.GameType, winnerID, winners, reason, m.EndedAt)
		if err != nil {
			r.l.Errorf(ctx, "match.Registry.endLocked: failed to sign match result: %v", err)
		}

		if err := r.prod.PublishMatchEnded(ctx, kafka.MatchEndedEvent{
			MatchID:     m.ID,
			GameType:    m.GameType,
			WinnerID:    winnerID,
			Winners:     winners,
			Reason:      reason,
			Moves:       moves,
			ResultToken: resultToken,
			EndedAt:     m.EndedAt,
		}); err != nil {
			r.l.Errorf(ctx, "match.Registry.endLocked: failed to publish match ended event: %v", err)
		}
	}

	r.mu.Lock()
	delete(r.matches, m.ID)
	r.mu.Unlock()

	r.l.Infof(ctx, "Match %s ended: game_type=%s winner=%q reason=%s", m.ID, m.GameType, winnerID, reason)
}

// rearmLocked resets the participant's inactivity deadline from zero. The
// armed deadline is captured in the expiry closure so a stale callback can be
// recognized: Stop alone is not enough, the old timer may already have fired
// and be waiting on the match lock behind the very operation that rearmed it.
func (r *Registry) rearmLocked(m *Match, p *Participant) {
	if p.afkTimer != nil {
		p.afkTimer.Stop()
	}

	matchID, playerID := m.ID, p.ID
	deadline := time.Now().Add(r.cfg.AfkTimeout)
	p.deadline = deadline
	p.afkTimer = time.AfterFunc(r.cfg.AfkTimeout, func() {
		r.expire(matchID, playerID, deadline)
	})
}

func (r *Registry) stopTimersLocked(m *Match) {
	for _, p := range m.Players {
		if p.afkTimer != nil {
			p.afkTimer.Stop()
			p.afkTimer = nil
		}
		p.deadline = time.Time{}
	}
}

// expire revalidates under the match lock before forfeiting: the match must
// still be active and the participant's current deadline must be the one this
// timer was armed with. A rearm that raced the callback replaced the deadline,
// so the stale expiry is dropped.
func (r *Registry) expire(matchID, playerID string, armed time.Time) {
	ctx := context.Background()

	m := r.get(matchID)
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status != StatusActive {
		r.l.Debugf(ctx, "match.Registry.expire: match %s no longer active, dropping timer for player %s", matchID, playerID)
		return
	}

	p := m.participant(playerID)
	if p == nil {
		return
	}

	if !p.deadline.Equal(armed) {
		r.l.Debugf(ctx, "match.Registry.expire: deadline for player %s in match %s was rearmed, dropping stale timer", playerID, matchID)
		return
	}

	r.forfeitLocked(ctx, m, playerID)

	r.l.Infof(ctx, "Player %s forfeited match %s on inactivity", playerID, matchID)
}

func (r *Registry) emitToPlayers(m *Match, eventType string, payload any) {
	e := events.Event{
		Type:    eventType,
		MatchID: m.ID,
		Payload: payload,
	}
	for _, p := range m.Players {
		r.bus.Publish(events.PlayerTopic(p.ID), e)
	}
}
