// Package session keeps per-user conversational state in memory. Sessions
// are volatile: they are created on first inbound message, reset after
// terminal transitions and evicted after an idle timeout, never persisted.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

type entry struct {
	mu      sync.Mutex
	session *models.Session
}

// Store maps user identity to its Session and serializes access per
// identity: Acquire holds the identity's lock until Release, so at most one
// state transition is in flight per user while different users proceed in
// parallel.
type Store struct {
	mu          sync.Mutex
	entries     map[string]*entry
	defaultLang string
	idleTimeout time.Duration
}

func NewStore(defaultLang string, idleTimeout time.Duration) *Store {
	return &Store{
		entries:     make(map[string]*entry),
		defaultLang: defaultLang,
		idleTimeout: idleTimeout,
	}
}

// Acquire returns the identity's session with its lock held, creating the
// session in MAIN_MENU on first contact. Callers must Release when the
// transition is done.
func (s *Store) Acquire(telegramID string) *models.Session {
	for {
		s.mu.Lock()
		e, ok := s.entries[telegramID]
		if !ok {
			e = &entry{session: &models.Session{
				TelegramID: telegramID,
				State:      models.StateMainMenu,
				Language:   s.defaultLang,
				UpdatedAt:  time.Now(),
			}}
			s.entries[telegramID] = e
		}
		s.mu.Unlock()

		e.mu.Lock()

		// The janitor may have evicted e between the map lookup and the
		// lock. Holding a stale entry would let a second transition for the
		// same identity run on a fresh one, so re-check and retry. Once the
		// live entry's lock is held, Evict skips it until Release.
		s.mu.Lock()
		if s.entries[telegramID] == e {
			s.mu.Unlock()
			return e.session
		}
		s.mu.Unlock()
		e.mu.Unlock()
	}
}

// Release marks the session touched and releases its lock.
func (s *Store) Release(telegramID string) {
	s.mu.Lock()
	e, ok := s.entries[telegramID]
	s.mu.Unlock()
	if !ok {
		return
	}
	e.session.UpdatedAt = time.Now()
	e.mu.Unlock()
}

// Evict drops sessions idle longer than the store's timeout. Sessions with a
// transition in flight are skipped and retried on the next sweep.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := now.Sub(e.session.UpdatedAt) > s.idleTimeout
		e.mu.Unlock()
		if idle {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunJanitor sweeps idle sessions until the context is cancelled.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Evict(now); n > 0 {
				log.Printf("Evicted %d idle sessions", n)
			}
		}
	}
}
