package gameserver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TickManager steps every registered battle once per interval on a single
// ticker goroutine.
//
// Invariant: each battle is stepped at most once per tick interval, and
// battles are stepped sequentially.
type TickManager struct {
	interval time.Duration
	mu       sync.Mutex
	battles  map[uuid.UUID]*Battle
}

// NewTickManager returns a manager that steps battles every interval.
//
// Precondition: interval must be > 0.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("gameserver.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		battles:  make(map[uuid.UUID]*Battle),
	}
}

// Register adds b. Replaces any battle with the same ID.
func (m *TickManager) Register(b *Battle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.battles[b.ID] = b
}

// Unregister removes the battle with id.
func (m *TickManager) Unregister(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.battles, id)
}

// Len returns the number of registered battles.
func (m *TickManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.battles)
}

// Run steps registered battles every interval until ctx is cancelled.
//
// Postcondition: returns ctx.Err() once cancelled.
func (m *TickManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.mu.Lock()
			battles := make([]*Battle, 0, len(m.battles))
			for _, b := range m.battles {
				battles = append(battles, b)
			}
			m.mu.Unlock()
			for _, b := range battles {
				b.Step(ctx)
			}
		}
	}
}
