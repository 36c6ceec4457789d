package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

func TestAcquireCreatesInitialSession(t *testing.T) {
	store := NewStore("kaz", time.Hour)

	sess := store.Acquire("100")
	defer store.Release("100")

	if sess.State != models.StateMainMenu {
		t.Fatalf("expected MAIN_MENU, got %s", sess.State)
	}
	if sess.Language != "kaz" {
		t.Fatalf("expected default language kaz, got %s", sess.Language)
	}
	if sess.TelegramID != "100" {
		t.Fatalf("expected identity 100, got %s", sess.TelegramID)
	}
}

func TestAcquireSerializesSameIdentity(t *testing.T) {
	store := NewStore("kaz", time.Hour)

	first := store.Acquire("100")
	first.State = models.StatePickupAddress

	acquired := make(chan models.SessionState)
	go func() {
		sess := store.Acquire("100")
		acquired <- sess.State
		store.Release("100")
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire completed while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	store.Release("100")

	select {
	case state := <-acquired:
		if state != models.StatePickupAddress {
			t.Fatalf("second Acquire saw stale state %s", state)
		}
	case <-time.After(time.Second):
		t.Fatal("second Acquire never completed")
	}
}

func TestDifferentIdentitiesDoNotBlock(t *testing.T) {
	store := NewStore("kaz", time.Hour)

	store.Acquire("100")
	defer store.Release("100")

	done := make(chan struct{})
	go func() {
		store.Acquire("200")
		store.Release("200")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent identity blocked")
	}
}

func TestEvictDropsIdleSessions(t *testing.T) {
	store := NewStore("kaz", time.Minute)

	store.Acquire("100")
	store.Release("100")
	store.Acquire("200")
	store.Release("200")

	if n := store.Evict(time.Now()); n != 0 {
		t.Fatalf("expected no evictions yet, got %d", n)
	}
	if n := store.Evict(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Fatalf("expected 2 evictions, got %d", n)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d sessions", store.Len())
	}
}

func TestEvictSkipsInFlightSessions(t *testing.T) {
	store := NewStore("kaz", time.Minute)

	store.Acquire("100")
	defer store.Release("100")

	if n := store.Evict(time.Now().Add(2 * time.Minute)); n != 0 {
		t.Fatalf("expected in-flight session to survive, got %d evictions", n)
	}
}

func TestAcquireUnderConcurrentEviction(t *testing.T) {
	store := NewStore("kaz", time.Nanosecond)

	stop := make(chan struct{})
	evictorDone := make(chan struct{})

	// A janitor evicting as aggressively as possible: every released
	// session is immediately idle.
	go func() {
		defer close(evictorDone)
		for {
			select {
			case <-stop:
				return
			default:
				store.Evict(time.Now().Add(time.Hour))
			}
		}
	}()

	// Several workers fighting over one identity. The in-flight counter is
	// only safe if Acquire really serializes per identity, even when the
	// entry is evicted between lookup and lock.
	var inFlight int32
	var workers sync.WaitGroup
	for i := 0; i < 4; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for j := 0; j < 500; j++ {
				store.Acquire("100")
				if n := atomic.AddInt32(&inFlight, 1); n != 1 {
					t.Errorf("%d transitions in flight for one identity", n)
				}
				atomic.AddInt32(&inFlight, -1)
				store.Release("100")
			}
		}()
	}

	workersDone := make(chan struct{})
	go func() {
		workers.Wait()
		close(workersDone)
	}()

	select {
	case <-workersDone:
	case <-time.After(10 * time.Second):
		t.Fatal("acquire/evict churn deadlocked")
	}
	close(stop)
	<-evictorDone
}
