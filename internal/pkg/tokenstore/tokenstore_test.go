package tokenstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
	return New(ttl).WithClock(clock.Now), clock
}

func TestIssueAndConsume(t *testing.T) {
	store, _ := newTestStore(30 * time.Minute)

	token, issued := store.Issue(7, "jane@example.com", "employee")
	require.NotEmpty(t, token)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC), issued.ExpiresAt)

	entry, err := store.Consume(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.SubjectID)
	assert.Equal(t, "employee", entry.Type)

	_, err = store.Consume(token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConsume_Expired(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	token, _ := store.Issue(1, "a@example.com", "employee")
	clock.Advance(time.Minute)

	_, err := store.Consume(token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestConsume_Unknown(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	_, err := store.Consume("does-not-exist")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRestore(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	token, _ := store.Issue(1, "a@example.com", "employee")
	entry, err := store.Consume(token)
	require.NoError(t, err)

	store.Restore(token, entry)
	assert.Equal(t, 1, store.Len())

	_, err = store.Consume(token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	store.Restore(token, entry)
	assert.Equal(t, 0, store.Len())
}

func TestSweep(t *testing.T) {
	store, clock := newTestStore(10 * time.Minute)

	store.Issue(1, "a@example.com", "employee")
	clock.Advance(5 * time.Minute)
	fresh, _ := store.Issue(2, "b@example.com", "employee")
	clock.Advance(6 * time.Minute)

	removed, err := store.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, err = store.Consume(fresh)
	assert.NoError(t, err)
}

func TestConsume_Concurrent(t *testing.T) {
	store, _ := newTestStore(time.Minute)
	token, _ := store.Issue(1, "a@example.com", "employee")

	var successes int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Consume(token); err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes)
}
