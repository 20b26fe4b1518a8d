package ban

import (
	"context"
	"sync"
	"time"
)

type strikeWindow struct {
	count int
	start time.Time
}

// MemoryTracker keeps strikes and bans in process memory. It is used when no
// Redis server is configured.
type MemoryTracker struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	strikes map[string]*strikeWindow
	bans    map[string]time.Time
	log     []BanLogEntry
}

func NewMemoryTracker(policy Policy) *MemoryTracker {
	return &MemoryTracker{
		policy:  policy,
		now:     time.Now,
		strikes: make(map[string]*strikeWindow),
		bans:    make(map[string]time.Time),
	}
}

func (m *MemoryTracker) IsBanned(_ context.Context, target string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.bans[target]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.bans, target)
		return false, nil
	}
	return true, nil
}

func (m *MemoryTracker) AddStrike(_ context.Context, target, route string) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.strikes[target]
	if !ok || now.Sub(w.start) >= m.policy.StrikeWindow {
		w = &strikeWindow{start: now}
		m.strikes[target] = w
	}
	w.count++

	if w.count < m.policy.MaxStrikes {
		return false, w.count, nil
	}

	strikes := w.count
	delete(m.strikes, target)
	m.bans[target] = now.Add(m.policy.BanDuration)
	m.log = append(m.log, BanLogEntry{Target: target, Route: route, Strikes: strikes, Time: now})
	return true, strikes, nil
}

func (m *MemoryTracker) DrainLog(_ context.Context) ([]BanLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.log
	m.log = nil
	return entries, nil
}

// Cleanup forgets expired bans and strike windows.
func (m *MemoryTracker) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for target, until := range m.bans {
		if !now.Before(until) {
			delete(m.bans, target)
		}
	}
	for target, w := range m.strikes {
		if now.Sub(w.start) >= m.policy.StrikeWindow {
			delete(m.strikes, target)
		}
	}
}
