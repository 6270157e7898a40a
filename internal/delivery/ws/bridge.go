package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/vogiaan1904/playgram-matchroom/internal/events"
	repository "github.com/vogiaan1904/playgram-matchroom/internal/repository/redis"
	"github.com/vogiaan1904/playgram-matchroom/internal/service"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
)

// Bridge translates between per-player websocket channels and the
// orchestrator: outbound it forwards bus events for that player only, inbound
// it accepts move submissions and rejoin signals.
type Bridge struct {
	bus      *events.Bus
	svc      service.MatchroomService
	presence repository.PresenceRepository
	l        logger.Logger
	upgrader websocket.Upgrader
}

func NewBridge(
	bus *events.Bus,
	svc service.MatchroomService,
	presence repository.PresenceRepository,
	l logger.Logger,
) *Bridge {
	return &Bridge{
		bus:      bus,
		svc:      svc,
		presence: presence,
		l:        l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (b *Bridge) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		http.Error(w, "player id is required", http.StatusBadRequest)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.l.Errorf(ctx, "delivery.ws.Bridge.ServeWS: upgrade failed: %v", err)
		return
	}

	c := &client{
		bridge:   b,
		conn:     conn,
		playerID: playerID,
		send:     make(chan []byte, 64),
		sub:      b.bus.Subscribe(events.PlayerTopic(playerID)),
	}

	if err := b.presence.SetOnline(ctx, playerID); err != nil {
		b.l.Warnf(ctx, "delivery.ws.Bridge.ServeWS: presence set online failed for %s: %v", playerID, err)
	}

	b.l.Infof(ctx, "Player channel connected: %s", playerID)

	go c.writePump()
	go b.forwardEvents(c)
	go c.readPump(context.WithoutCancel(ctx))
}

// forwardEvents drains the player's bus subscription into the websocket send
// buffer. A full send buffer drops the frame rather than blocking the bus.
// It owns the send channel: the channel closes only after the subscription is
// gone, so no late event can hit a closed channel.
func (b *Bridge) forwardEvents(c *client) {
	defer close(c.send)

	for e := range c.sub {
		raw, err := json.Marshal(e)
		if err != nil {
			b.l.Errorf(context.Background(), "delivery.ws.Bridge.forwardEvents: %v", err)
			continue
		}

		select {
		case c.send <- raw:
		default:
			b.l.Warnf(context.Background(), "delivery.ws.Bridge.forwardEvents: dropped %s frame for player %s", e.Type, c.playerID)
		}
	}
}

func (b *Bridge) handleMessage(ctx context.Context, c *client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		b.l.Warnf(ctx, "delivery.ws.Bridge.handleMessage: malformed message from %s: %v", c.playerID, err)
		return
	}

	switch msg.Type {
	case MsgTypeMove:
		err := b.svc.SubmitMove(ctx, service.SubmitMoveInput{
			MatchID:  msg.MatchID,
			PlayerID: c.playerID,
			Move:     msg.Move,
		})

		ack := AckMessage{Type: MsgTypeMoveAccepted, MatchID: msg.MatchID}
		if err != nil {
			ack.Type = MsgTypeMoveRejected
			ack.Error = err.Error()
		}
		b.unicast(c, ack)

	case MsgTypeRejoin:
		if err := b.svc.Rejoin(ctx, msg.MatchID, c.playerID); err != nil {
			b.l.Debugf(ctx, "delivery.ws.Bridge.handleMessage: rejoin rejected for %s: %v", c.playerID, err)
		}

	default:
		b.l.Warnf(ctx, "delivery.ws.Bridge.handleMessage: unknown message type %q from %s", msg.Type, c.playerID)
	}
}

func (b *Bridge) unicast(c *client, msg AckMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case c.send <- raw:
	default:
	}
}

func (b *Bridge) disconnect(ctx context.Context, c *client) {
	b.bus.Unsubscribe(events.PlayerTopic(c.playerID), c.sub)
	_ = c.conn.Close()

	if err := b.presence.SetOffline(ctx, c.playerID); err != nil {
		b.l.Warnf(ctx, "delivery.ws.Bridge.disconnect: presence set offline failed for %s: %v", c.playerID, err)
	}

	b.l.Infof(ctx, "Player channel disconnected: %s", c.playerID)
}
