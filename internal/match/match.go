package match

import (
	"encoding/json"
	"sync"
	"time"
)

type Status string

const (
	StatusFormed Status = "formed"
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Participant is owned exclusively by its Match. The inactivity deadline and
// timer are mutated only under the match lock.
type Participant struct {
	ID      string
	Claimed bool

	deadline time.Time
	afkTimer *time.Timer
}

type Move struct {
	PlayerID string          `json:"player_id"`
	Payload  json.RawMessage `json:"move"`
	PlayedAt time.Time       `json:"played_at"`
}

// Match is the central entity. Player order is fixed at formation time and
// determines turn order; it is never reordered afterwards.
type Match struct {
	mu sync.Mutex

	ID       string
	GameType string
	Status   Status
	Players  []*Participant
	Turn     int
	Moves    []Move

	WinnerID  string
	Winners   []string
	EndReason string

	FormedAt  time.Time
	StartedAt time.Time
	EndedAt   time.Time
}

func (m *Match) participant(playerID string) *Participant {
	for _, p := range m.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (m *Match) currentPlayer() *Participant {
	return m.Players[m.Turn%len(m.Players)]
}

func (m *Match) allClaimed() bool {
	for _, p := range m.Players {
		if !p.Claimed {
			return false
		}
	}
	return true
}

func (m *Match) playerIDs() []string {
	ids := make([]string, len(m.Players))
	for i, p := range m.Players {
		ids[i] = p.ID
	}
	return ids
}

// Snapshot is a read-only projection of match state. Timers and deadlines are
// internal and never exposed.
type Snapshot struct {
	ID        string   `json:"id"`
	GameType  string   `json:"game_type"`
	Status    Status   `json:"status"`
	Turn      int      `json:"turn"`
	Moves     []Move   `json:"moves"`
	PlayerIDs []string `json:"player_ids"`
}

func (m *Match) snapshotLocked() *Snapshot {
	moves := make([]Move, len(m.Moves))
	copy(moves, m.Moves)

	return &Snapshot{
		ID:        m.ID,
		GameType:  m.GameType,
		Status:    m.Status,
		Turn:      m.Turn,
		Moves:     moves,
		PlayerIDs: m.playerIDs(),
	}
}
