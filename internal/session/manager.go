package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/layali-lounge/qrmenu-backend/pkg/config"
	redisclient "github.com/layali-lounge/qrmenu-backend/pkg/redis"
)

type visitStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type visitKeyer interface {
	VisitKey(sessionID string) string
}

// Manager loads and persists visitor sessions in Redis. A missing or corrupt
// entry degrades to a fresh visit rather than an error: a visitor with a
// stale cookie just starts over with an empty cart.
type Manager struct {
	store visitStore
	keyer visitKeyer
	ttl   time.Duration
}

// NewManager constructs a visit manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
	}, nil
}

// Load fetches the visit for the session id, returning a fresh visit when
// nothing is stored. Found entries get their TTL extended so an active table
// never expires mid-sitting.
func (m *Manager) Load(ctx context.Context, sessionID string) (*Visit, error) {
	if strings.TrimSpace(sessionID) == "" {
		return NewVisit(), nil
	}

	key := m.keyer.VisitKey(sessionID)
	raw, err := m.store.Get(ctx, key)
	if errors.Is(err, redisclient.Nil) {
		return NewVisit(), nil
	}
	if err != nil {
		return nil, err
	}

	visit := NewVisit()
	if err := json.Unmarshal([]byte(raw), visit); err != nil {
		return NewVisit(), nil
	}
	if err := m.store.Expire(ctx, key, m.ttl); err != nil {
		return nil, err
	}
	return visit, nil
}

// Save writes the visit back when it changed. Clean visits are a no-op so
// read-heavy menu browsing never touches Redis writes.
func (m *Manager) Save(ctx context.Context, sessionID string, visit *Visit) error {
	if visit == nil || !visit.Dirty() {
		return nil
	}
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	payload, err := json.Marshal(visit)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.keyer.VisitKey(sessionID), string(payload), m.ttl); err != nil {
		return err
	}
	visit.dirty = false
	return nil
}

// Delete removes the stored visit.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.VisitKey(sessionID))
}
