package domain

import (
	"sync"
	"time"
)

// IsPlaceholderID reports whether id was generated locally for an
// offline-created record. Server ids are always positive, so the two ranges
// can never collide.
func IsPlaceholderID(id int64) bool {
	return id < 0
}

// PlaceholderIDs hands out negative ids for records created while offline.
// Ids are derived from the current epoch millis and strictly decrease, so two
// creates in the same millisecond still get distinct ids.
type PlaceholderIDs struct {
	now  func() time.Time
	mu   sync.Mutex
	last int64
}

func NewPlaceholderIDs(now func() time.Time) *PlaceholderIDs {
	if now == nil {
		now = time.Now
	}
	return &PlaceholderIDs{now: now}
}

func (g *PlaceholderIDs) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := -g.now().UnixMilli()
	if id >= g.last {
		id = g.last - 1
	}
	g.last = id
	return id
}
