package tokenstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrTokenNotFound = errors.New("reset token not found or expired")

// Entry is what a reset token resolves to.
type Entry struct {
	SubjectID int64
	Email     string
	Type      string
	ExpiresAt time.Time
}

// Store holds single-use tokens that expire after a fixed TTL. Safe for concurrent use.
type Store struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]Entry
}

func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
}

// WithClock replaces the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Issue creates a random token for the subject.
func (s *Store) Issue(subjectID int64, email, tokenType string) (string, Entry) {
	token := uuid.NewString()
	entry := Entry{
		SubjectID: subjectID,
		Email:     email,
		Type:      tokenType,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.entries[token] = entry
	s.mu.Unlock()

	return token, entry
}

// Consume removes the token and returns its entry. A token can be consumed at most once.
func (s *Store) Consume(token string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return Entry{}, ErrTokenNotFound
	}
	delete(s.entries, token)

	if !s.now().Before(entry.ExpiresAt) {
		return Entry{}, ErrTokenNotFound
	}
	return entry, nil
}

// Restore puts a consumed entry back, used when the follow-up write failed.
func (s *Store) Restore(token string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now().Before(entry.ExpiresAt) {
		s.entries[token] = entry
	}
}

// Sweep drops expired tokens and reports how many were removed.
func (s *Store) Sweep(_ context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, entry := range s.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
