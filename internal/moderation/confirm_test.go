package moderation_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/internal/moderation"
	"go.uber.org/zap"
)

const (
	invokerID = 1001
	guildID   = 2002
	otherID   = 3003
)

func newSession(
	t *testing.T, registry *moderation.Registry, onExpire func(*moderation.Session),
) *moderation.Session {
	t.Helper()

	return registry.Create(
		invokerID, guildID,
		types.ActionKick,
		moderation.Target{ID: 4004, Name: "target#1"},
		"spam",
		onExpire,
	)
}

func TestResolveConfirm(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(time.Minute, zap.NewNop())
	session := newSession(t, registry, nil)

	require.Equal(t, moderation.StatePending, session.State())
	require.NoError(t, registry.Resolve(session, invokerID, true))
	assert.Equal(t, moderation.StateConfirmed, session.State())

	// Resolved sessions leave the registry
	assert.Nil(t, registry.Get(session.ID))
}

func TestResolveCancel(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(time.Minute, zap.NewNop())
	session := newSession(t, registry, nil)

	require.NoError(t, registry.Resolve(session, invokerID, false))
	assert.Equal(t, moderation.StateCancelled, session.State())
}

func TestResolveRejectsNonInvoker(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(time.Minute, zap.NewNop())
	session := newSession(t, registry, nil)

	err := registry.Resolve(session, otherID, true)
	assert.ErrorIs(t, err, moderation.ErrNotInvoker)
	assert.Equal(t, moderation.StatePending, session.State(), "state unchanged")
	assert.NotNil(t, registry.Get(session.ID), "session still live")
}

func TestRepeatResolutionIsNoOp(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(time.Minute, zap.NewNop())
	session := newSession(t, registry, nil)

	require.NoError(t, registry.Resolve(session, invokerID, true))

	err := registry.Resolve(session, invokerID, true)
	assert.ErrorIs(t, err, moderation.ErrResolved)
	assert.Equal(t, moderation.StateConfirmed, session.State())

	// Cancelling after a confirm must not flip the state either
	err = registry.Resolve(session, invokerID, false)
	assert.ErrorIs(t, err, moderation.ErrResolved)
	assert.Equal(t, moderation.StateConfirmed, session.State())
}

func TestAtMostOnceUnderConcurrentPresses(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(time.Minute, zap.NewNop())
	session := newSession(t, registry, nil)

	var (
		wg      sync.WaitGroup
		actions atomic.Int64
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if registry.Resolve(session, invokerID, true) == nil {
				// Only a successful resolution triggers the action attempt
				actions.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), actions.Load(), "destructive action attempted exactly once")
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(30*time.Millisecond, zap.NewNop())

	expired := make(chan *moderation.Session, 1)
	session := newSession(t, registry, func(s *moderation.Session) {
		expired <- s
	})

	select {
	case s := <-expired:
		assert.Equal(t, session.ID, s.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}

	assert.Equal(t, moderation.StateExpired, session.State())
	assert.Nil(t, registry.Get(session.ID))

	// Post-expiry presses are no-ops
	err := registry.Resolve(session, invokerID, true)
	assert.ErrorIs(t, err, moderation.ErrResolved)
}

func TestResolveStopsExpiry(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(30*time.Millisecond, zap.NewNop())

	var expiries atomic.Int64
	session := newSession(t, registry, func(*moderation.Session) {
		expiries.Add(1)
	})

	require.NoError(t, registry.Resolve(session, invokerID, false))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), expiries.Load(), "resolved session must not expire")
	assert.Equal(t, moderation.StateCancelled, session.State())
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()

	registry := moderation.NewRegistry(time.Minute, zap.NewNop())
	first := newSession(t, registry, nil)
	second := newSession(t, registry, nil)

	require.NotEqual(t, first.ID, second.ID)
	require.NoError(t, registry.Resolve(first, invokerID, true))

	assert.Equal(t, moderation.StatePending, second.State())
	assert.NotNil(t, registry.Get(second.ID))
}
