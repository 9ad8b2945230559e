// Package calendar is the scheduling collaborator. The core only needs to
// list upcoming entries for prompt context and create entries from the
// schedule action.
package calendar

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultDuration is used when the model supplies only a start time.
const DefaultDuration = time.Hour

type Entry struct {
	Title    string
	Start    time.Time
	Duration time.Duration
}

type Calendar interface {
	ListUpcoming(ctx context.Context, limit int) ([]Entry, error)
	Create(ctx context.Context, title string, start time.Time, duration time.Duration) error
}

// MemoryCalendar keeps entries in memory, ordered by start time. It stands in
// for a hosted calendar service, whose internals are out of scope here.
type MemoryCalendar struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{now: time.Now}
}

var _ Calendar = (*MemoryCalendar)(nil)

func (c *MemoryCalendar) ListUpcoming(_ context.Context, limit int) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	upcoming := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Start.Before(now) {
			continue
		}
		upcoming = append(upcoming, e)
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Start.Before(upcoming[j].Start) })
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func (c *MemoryCalendar) Create(_ context.Context, title string, start time.Time, duration time.Duration) error {
	if duration <= 0 {
		duration = DefaultDuration
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Title: title, Start: start, Duration: duration})
	return nil
}
