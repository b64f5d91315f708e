package practice

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store holds in-flight practice sessions. Sessions expire after the
// configured TTL; an abandoned browser tab should not pin memory.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// clone deep-copies a session so callers never share mutable state
// with the store. Mutate the copy, then Save — the same discipline the
// Redis store forces by serializing.
func (s *Session) clone() *Session {
	c := *s
	c.Cards = append([]Card(nil), s.Cards...)
	c.Outcomes = make(map[uint]Outcome, len(s.Outcomes))
	for id, outcome := range s.Outcomes {
		c.Outcomes[id] = outcome
	}
	return &c
}

// MemoryStore is the default single-process store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
	}
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{session: s.clone(), expiresAt: time.Now().Add(m.ttl)}
	m.sweepLocked()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, exists := m.sessions[id]
	if !exists || time.Now().After(entry.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return entry.session.clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// sweepLocked drops expired entries. Called on writes so the map never
// grows past the working set by more than one TTL window.
func (m *MemoryStore) sweepLocked() {
	now := time.Now()
	for id, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

// RedisStore keeps sessions in Redis so practice can survive a restart
// or be shared across replicas. Selected when app.redis_addr is set.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return "practice:" + id
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(s.ID), data, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
