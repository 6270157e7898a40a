package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vogiaan1904/playgram-matchroom/config"
)

var (
	ErrTokenEmpty               = errors.New("token is empty")
	ErrTokenInvalid             = errors.New("token is invalid")
	ErrTokenUnexpectedSignature = errors.New("unexpected token signing method")
)

// Signer issues HS256 attestations over terminal match results so downstream
// consumers (history, rewards) can verify the record came from the orchestrator.
type Signer struct {
	secret []byte
	expiry time.Duration
}

func NewSigner(cfg config.JWTConfig) *Signer {
	return &Signer{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
	}
}

func (s *Signer) SignMatchResult(matchID, gameType, winnerID string, winners []string, reason string, endedAt time.Time) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"match_id":  matchID,
		"game_type": gameType,
		"winner":    winnerID,
		"winners":   winners,
		"reason":    reason,
		"ended_at":  endedAt.Unix(),
		"iat":       now.Unix(),
		"exp":       now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign match result: %w", err)
	}

	return signed, nil
}

func (s *Signer) Verify(tokenStr string) (jwt.MapClaims, error) {
	if tokenStr == "" {
		return nil, ErrTokenEmpty
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnexpectedSignature
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
