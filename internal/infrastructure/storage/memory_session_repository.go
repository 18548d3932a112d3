package storage

import (
	"context"
	"log"
	"sync"
	"time"

	"xray-insights/internal/domain/entity"
	"xray-insights/internal/domain/port"
)

type sessionEntry struct {
	session *entity.Session
	touched time.Time
}

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

// Get возвращает копию сессии. Неизвестный ID даёт новую сессию,
// которая попадает в хранилище только после Save.
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	entry, exists := r.sessions[id]
	r.mu.RUnlock()

	if exists {
		return entry.session.Clone(), nil
	}

	return entity.NewSession(id), nil
}

// Save сохраняет состояние сессии
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	r.sessions[session.ID] = sessionEntry{session: session.Clone(), touched: r.now()}
	r.mu.Unlock()

	return nil
}

// Delete удаляет сессию
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	return nil
}

// Expire удаляет сессии, не сохранявшиеся дольше ttl, и возвращает их число.
// Сессии с выполняющимся запросом не трогаем.
func (r *MemorySessionRepository) Expire(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		if entry.session.Phase == entity.PhaseSubmitting || entry.touched.After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// RunJanitor периодически вызывает Expire до отмены ctx.
func (r *MemorySessionRepository) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Expire(ttl); n > 0 {
				log.Printf("Expired %d idle sessions", n)
			}
		}
	}
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
