package storage

import "time"

func (r *MemorySessionRepository) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *MemorySessionRepository) setClock(now func() time.Time) {
	r.now = now
}
