package boarding

import (
	"context"
	"sync"
	"time"

	"github.com/portal-dev/portal/shared/logger"
)

// Registry keeps one card per key and forgets cards nobody has looked at for a while.
type Registry struct {
	mu    sync.Mutex
	opts  Options
	idle  time.Duration
	cards map[string]*entry
}

type entry struct {
	card     *Card
	lastSeen time.Time
}

func NewRegistry(opts Options, idle time.Duration) *Registry {
	return &Registry{
		opts:  opts.withDefaults(),
		idle:  idle,
		cards: make(map[string]*entry),
	}
}

// Card returns the card of id, creating it on first use.
func (r *Registry) Card(id string) *Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cards[id]
	if !ok {
		e = &entry{card: NewCard(r.opts)}
		r.cards[id] = e
	}
	e.lastSeen = r.opts.Clock.Now()
	return e.card
}

// Drop resets and forgets the card of id. A countdown still running on it stops.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	e, ok := r.cards[id]
	delete(r.cards, id)
	r.mu.Unlock()
	if ok {
		e.card.Reset()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

// Sweep drops idle cards and returns how many were dropped.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.opts.Clock.Now()
	dropped := 0
	for id, e := range r.cards {
		if now.Sub(e.lastSeen) >= r.idle {
			delete(r.cards, id)
			dropped++
		}
	}
	return dropped
}

// Janitor sweeps every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	if r.idle <= 0 {
		return
	}
	if interval <= 0 {
		interval = r.idle / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Log.Debug("dropped idle boarding cards", "count", n)
			}
		}
	}
}
