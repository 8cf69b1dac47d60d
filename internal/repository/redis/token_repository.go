package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"swiftcart/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionData is what we keep server-side for an issued token, so logout can
// invalidate a session before the JWT itself expires.
type SessionData struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{
		client: client,
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (r *TokenRepository) StoreToken(ctx context.Context, token string, data SessionData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(token), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// ValidateToken returns the user id bound to token, or ErrUnauthorized when
// the session was never stored or has been invalidated.
func (r *TokenRepository) ValidateToken(ctx context.Context, token string) (string, error) {
	raw, err := r.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return data.UserID, nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
