package cache

import (
	"context"
	"sync"
	"time"
)

var _ IdempotencyStore = (*MemoryIdempotencyStore)(nil)

// MemoryIdempotencyStore alternativa de un solo proceso cuando no hay Redis configurado.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // clave -> vencimiento
	now     func() time.Time
}

// NewMemoryIdempotencyStore crea el store vacío.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]time.Time), now: time.Now}
}

// Reserve registra la clave si no existe o si venció. Las claves vencidas se purgan de paso.
func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

// Release elimina la clave.
func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
