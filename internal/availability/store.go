package availability

import "sync"

// Store owns the authoritative day -> source mapping for one property.
// A day present in the map is unavailable; removing it makes the day
// available again.
//
// All methods are safe for concurrent use. Feed syncs and the interactive
// gesture are last-write-wins at day granularity, so each mutation holds
// the lock for its whole batch and two concurrent merges never interleave
// partial writes.
type Store struct {
	mu   sync.RWMutex
	days map[Day]SourceTag
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{days: make(map[Day]SourceTag)}
}

// IsBlocked reports whether the day is unavailable.
func (s *Store) IsBlocked(day Day) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.days[day]
	return ok
}

// SourceOf returns the day's tag, if the day is blocked.
func (s *Store) SourceOf(day Day) (SourceTag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tag, ok := s.days[day]
	return tag, ok
}

// SetManual blocks a single day with the manual tag. A day already blocked
// keeps its existing tag.
func (s *Store) SetManual(day Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.days[day]; !ok {
		s.days[day] = ManualTag()
	}
}

// UnsetManual unblocks a day only if its tag is manual. Feed-sourced days
// are left untouched; the single-click path must not erase them.
func (s *Store) UnsetManual(day Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag, ok := s.days[day]; ok && tag.IsManual() {
		delete(s.days, day)
	}
}

// OverwriteWithManual unconditionally sets the manual tag on every given
// day, clobbering feed-sourced entries. This is the multi-day drag path.
func (s *Store) OverwriteWithManual(days []Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range days {
		s.days[d] = ManualTag()
	}
}

// MergeFeedDates sets the feed's tag on every given day, overwriting
// whatever tag was previously present, including manual edits. This is how
// a sync asserts authority over its own days.
func (s *Store) MergeFeedDates(feedID string, days []Day) {
	tag := FeedTag(feedID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range days {
		s.days[d] = tag
	}
}

// ClearFeedDates unblocks the given days where they carry the feed's tag.
// Days owned by another source are left alone.
func (s *Store) ClearFeedDates(feedID string, days []Day) {
	tag := FeedTag(feedID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range days {
		if s.days[d] == tag {
			delete(s.days, d)
		}
	}
}

// RemoveAllForFeed unblocks every day tagged by the feed. Used when a feed
// is deregistered with cascade, or disabled with clear-on-disable set.
func (s *Store) RemoveAllForFeed(feedID string) int {
	tag := FeedTag(feedID)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for d, t := range s.days {
		if t == tag {
			delete(s.days, d)
			removed++
		}
	}
	return removed
}

// DaysForFeed returns every day currently tagged by the feed.
func (s *Store) DaysForFeed(feedID string) []Day {
	tag := FeedTag(feedID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var days []Day
	for d, t := range s.days {
		if t == tag {
			days = append(days, d)
		}
	}
	return days
}

// ClearAll empties the map.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = make(map[Day]SourceTag)
}

// Seed replaces the store contents with the expansion of the given ranges.
// Used to hydrate a session from persisted storage.
func (s *Store) Seed(ranges []BlockedRange) {
	m := Expand(ranges)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = m
}

// Snapshot returns a copy of the current day map.
func (s *Store) Snapshot() map[Day]SourceTag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := make(map[Day]SourceTag, len(s.days))
	for d, t := range s.days {
		m[d] = t
	}
	return m
}

// ToRanges returns the compressed view of the current map.
func (s *Store) ToRanges() []BlockedRange {
	return Compress(s.Snapshot())
}

// Len returns the number of blocked days.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.days)
}
