package service

import (
	"context"
	"encoding/json"

	"github.com/vogiaan1904/playgram-matchroom/internal/match"
	"github.com/vogiaan1904/playgram-matchroom/internal/queue"
	pkgLog "github.com/vogiaan1904/playgram-matchroom/pkg/logger"
)

// MatchroomService is the synchronous control surface. Every operation maps
// one-to-one onto a queue or match transition and returns a structured error;
// it is usable by callers that do not hold a live channel.
type MatchroomService interface {
	JoinQueue(ctx context.Context, in JoinQueueInput) (*JoinQueueOutput, error)
	LeaveQueue(ctx context.Context, in LeaveQueueInput) (*LeaveQueueOutput, error)
	QueueStatus(ctx context.Context, gameType string) (*QueueStatusOutput, error)

	Claim(ctx context.Context, matchID, playerID string) error
	Start(ctx context.Context, matchID string) error
	SubmitMove(ctx context.Context, in SubmitMoveInput) error
	End(ctx context.Context, in EndMatchInput) error
	Forfeit(ctx context.Context, matchID, playerID string) error
	Rejoin(ctx context.Context, matchID, playerID string) error
	Snapshot(ctx context.Context, matchID string) (*match.Snapshot, bool)
	FindByPlayer(ctx context.Context, playerID string) (*match.Snapshot, bool)
}

type matchroomService struct {
	qm       *queue.Manager
	registry *match.Registry
	l        pkgLog.Logger
}

func NewMatchroomService(qm *queue.Manager, registry *match.Registry, l pkgLog.Logger) MatchroomService {
	return &matchroomService{
		qm:       qm,
		registry: registry,
		l:        l,
	}
}

func (s *matchroomService) JoinQueue(ctx context.Context, in JoinQueueInput) (*JoinQueueOutput, error) {
	pos, err := s.qm.Join(ctx, in.PlayerID, in.GameType)
	if err != nil {
		s.l.Warnf(ctx, "service.matchroomService.JoinQueue: %v", err)
		return nil, err
	}

	return &JoinQueueOutput{
		Position:    pos,
		QueueLength: s.qm.Len(ctx, in.GameType),
	}, nil
}

func (s *matchroomService) LeaveQueue(ctx context.Context, in LeaveQueueInput) (*LeaveQueueOutput, error) {
	if in.PlayerID == "" || in.GameType == "" {
		return nil, ErrInvalidArgument
	}

	removed := s.qm.Leave(ctx, in.PlayerID, in.GameType)
	return &LeaveQueueOutput{Removed: removed}, nil
}

func (s *matchroomService) QueueStatus(ctx context.Context, gameType string) (*QueueStatusOutput, error) {
	if gameType == "" {
		return nil, ErrInvalidArgument
	}

	return &QueueStatusOutput{
		GameType: gameType,
		Length:   s.qm.Len(ctx, gameType),
	}, nil
}

func (s *matchroomService) Claim(ctx context.Context, matchID, playerID string) error {
	return s.registry.Claim(ctx, matchID, playerID)
}

func (s *matchroomService) Start(ctx context.Context, matchID string) error {
	return s.registry.Start(ctx, matchID)
}

func (s *matchroomService) SubmitMove(ctx context.Context, in SubmitMoveInput) error {
	return s.registry.SubmitMove(ctx, in.MatchID, in.PlayerID, json.RawMessage(in.Move))
}

func (s *matchroomService) End(ctx context.Context, in EndMatchInput) error {
	reason := in.Reason
	if reason == "" {
		reason = "completed"
	}

	return s.registry.End(ctx, in.MatchID, in.WinnerID, reason)
}

func (s *matchroomService) Forfeit(ctx context.Context, matchID, playerID string) error {
	return s.registry.Forfeit(ctx, matchID, playerID)
}

func (s *matchroomService) Rejoin(ctx context.Context, matchID, playerID string) error {
	return s.registry.Rejoin(ctx, matchID, playerID)
}

func (s *matchroomService) Snapshot(ctx context.Context, matchID string) (*match.Snapshot, bool) {
	return s.registry.Snapshot(ctx, matchID)
}

func (s *matchroomService) FindByPlayer(ctx context.Context, playerID string) (*match.Snapshot, bool) {
	return s.registry.FindByPlayer(ctx, playerID)
}
