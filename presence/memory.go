package presence

import (
	"context"
	"sort"
	"sync"

	"fintrack/domain"
)

// MemoryDirectory is a process-local Directory. It backs tests and the
// degraded single-process mode used when the shared store is unreachable at
// startup; cross-process delivery does not work through it.
type MemoryDirectory struct {
	mu      sync.RWMutex
	entries map[string]domain.PresenceEntry
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{entries: make(map[string]domain.PresenceEntry)}
}

func (d *MemoryDirectory) Register(_ context.Context, entry domain.PresenceEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[entry.UserID] = entry
	return nil
}

func (d *MemoryDirectory) Lookup(_ context.Context, userID string) (domain.PresenceEntry, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[userID]
	return entry, ok, nil
}

func (d *MemoryDirectory) Remove(_ context.Context, connID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for userID, entry := range d.entries {
		if entry.ConnID == connID {
			delete(d.entries, userID)
			return true, nil
		}
	}
	return false, nil
}

func (d *MemoryDirectory) ListAll(_ context.Context) ([]domain.PresenceEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries := make([]domain.PresenceEntry, 0, len(d.entries))
	for _, entry := range d.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}
