package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	m "github.com/example/payment-portal/pkg/metrics"
)

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry owns the stores of all open page sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry

	newStore func() *Store
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewRegistry(log *slog.Logger, newStore func() *Store, ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		newStore: newStore,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Open creates a session and starts loading it with p. The channel closes
// when the recipient lookup has settled.
func (r *Registry) Open(ctx context.Context, p Params) (string, *Store, <-chan struct{}) {
	id := uuid.NewString()
	s := r.newStore()

	r.mu.Lock()
	r.sessions[id] = &entry{store: s, lastSeen: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()
	m.SetSessions(n)

	done := s.Load(ctx, p)
	r.log.Info("session opened", "session_id", id)
	return id, s, done
}

// Get returns the store for id and marks it as recently used.
func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.store, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and reports how many went.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	evicted := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
			evicted++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	m.SetSessions(n)
	if evicted > 0 {
		r.log.Info("sessions evicted", "count", evicted, "remaining", n)
	}
	return evicted
}

func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("session sweeper stopping")
			return
		case <-t.C:
			r.Sweep(r.now())
		}
	}
}
