package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"qualiobra/internal/model"
)

// SessionCache holds live diagnostic sessions between requests
type SessionCache interface {
	Set(ctx context.Context, session *model.DiagnosticSession) error
	Get(ctx context.Context, id string) (*model.DiagnosticSession, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session cache. Sessions expire ttl
// after their last write.
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("diagnostic:session:%s", id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.DiagnosticSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.DiagnosticSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.DiagnosticSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

// NewMemorySessionStore is an in-process SessionCache for tests and single-node runs
func NewMemorySessionStore() SessionCache {
	return &memorySessionStore{sessions: make(map[string][]byte)}
}

func (m *memorySessionStore) Set(ctx context.Context, session *model.DiagnosticSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = data
	return nil
}

func (m *memorySessionStore) Get(ctx context.Context, id string) (*model.DiagnosticSession, error) {
	m.mu.Lock()
	data, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var session model.DiagnosticSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
