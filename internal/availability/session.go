package availability

import (
	"context"
	"fmt"
	"sync"
)

// RangeStore persists compressed blocked ranges per property. Implemented
// by the storage layer.
type RangeStore interface {
	ListForProperty(ctx context.Context, propertyID string) ([]BlockedRange, error)
	ReplaceForProperty(ctx context.Context, propertyID string, ranges []BlockedRange) error
}

// Session is one property's in-memory editing state: the authoritative day
// map plus the gesture machine that edits it.
type Session struct {
	PropertyID string
	Store      *Store
	Gesture    *Gesture
}

// SessionManager hands out per-property sessions, seeding each from
// persisted ranges on first access and flushing back on save.
type SessionManager struct {
	repo RangeStore

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager backed by the given range
// store.
func NewSessionManager(repo RangeStore) *SessionManager {
	return &SessionManager{
		repo:     repo,
		sessions: make(map[string]*Session),
	}
}

// Get returns the property's session, creating and seeding it if needed.
func (m *SessionManager) Get(ctx context.Context, propertyID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[propertyID]; ok {
		return sess, nil
	}

	ranges, err := m.repo.ListForProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("seeding session for property %s: %w", propertyID, err)
	}

	store := NewStore()
	store.Seed(ranges)
	sess := &Session{
		PropertyID: propertyID,
		Store:      store,
		Gesture:    NewGesture(store),
	}
	m.sessions[propertyID] = sess
	return sess, nil
}

// StoreFor returns the property's store, creating the session if needed.
// This is the resolver used by feed synchronization.
func (m *SessionManager) StoreFor(ctx context.Context, propertyID string) (*Store, error) {
	sess, err := m.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return sess.Store, nil
}

// Save flushes the property's current map to persistent storage as
// compressed ranges.
func (m *SessionManager) Save(ctx context.Context, propertyID string) error {
	sess, err := m.Get(ctx, propertyID)
	if err != nil {
		return err
	}
	if err := m.repo.ReplaceForProperty(ctx, propertyID, sess.Store.ToRanges()); err != nil {
		return fmt.Errorf("saving ranges for property %s: %w", propertyID, err)
	}
	return nil
}

// Discard drops the in-memory session without saving. The next Get reseeds
// from storage.
func (m *SessionManager) Discard(propertyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, propertyID)
}
