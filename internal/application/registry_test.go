package application

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/fishbowl/internal/domain"
	"github.com/bnema/fishbowl/internal/ports/mocks"
)

var t0 = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t *testing.T) *mocks.MockClock {
	t.Helper()

	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(t0).Maybe()
	return clock
}

func TestRegistryStartAssignsLowestFreeID(t *testing.T) {
	t.Parallel()

	r := NewRegistry(3, domain.DefaultLimits(), fixedClock(t))

	for i, user := range []domain.UserID{"a", "b", "c"} {
		summary, err := r.Start(user, "table")
		require.NoError(t, err)
		assert.Equal(t, domain.SessionID(i), summary.ID)
	}

	tx, err := r.acquire("b")
	require.NoError(t, err)
	tx.end()
	tx.release()

	summary, err := r.Start("d", "table")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionID(1), summary.ID)
	require.NoError(t, r.CheckIntegrity())
}

func TestRegistryStartCapacityAndSeating(t *testing.T) {
	t.Parallel()

	r := NewRegistry(1, domain.DefaultLimits(), fixedClock(t))
	_, err := r.Start("a", "table")
	require.NoError(t, err)

	_, err = r.Start("b", "table")
	assert.ErrorIs(t, err, domain.ErrRegistryFull)

	r = NewRegistry(2, domain.DefaultLimits(), fixedClock(t))
	_, err = r.Start("a", "table")
	require.NoError(t, err)
	_, err = r.Start("a", "table")
	assert.ErrorIs(t, err, domain.ErrAlreadySeated)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryJoin(t *testing.T) {
	t.Parallel()

	r := NewRegistry(5, domain.DefaultLimits(), fixedClock(t))
	summary, err := r.Start("a", "table")
	require.NoError(t, err)

	_, err = r.Join("b", 4)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, ok := r.SessionOf("b")
	assert.False(t, ok)

	joined, err := r.Join("b", summary.ID)
	require.NoError(t, err)
	assert.Len(t, joined.Players, 2)

	_, err = r.Join("b", summary.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadySeated)
	require.NoError(t, r.CheckIntegrity())
}

func TestRegistryFailedJoinDropsReservation(t *testing.T) {
	t.Parallel()

	r := NewRegistry(5, domain.DefaultLimits(), fixedClock(t))
	summary, err := r.Start("a", "table")
	require.NoError(t, err)

	tx, err := r.acquire("a")
	require.NoError(t, err)
	_, err = tx.session.Ban("a", "b", "bot")
	require.NoError(t, err)
	tx.release()

	_, err = r.Join("b", summary.ID)
	require.ErrorIs(t, err, domain.ErrBanned)
	_, ok := r.SessionOf("b")
	assert.False(t, ok)
	require.NoError(t, r.CheckIntegrity())
}

func TestRegistrySweepEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	now := t0
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().RunAndReturn(func() time.Time { return now }).Maybe()
	r := NewRegistry(5, domain.DefaultLimits(), clock)

	_, err := r.Start("idle", "table")
	require.NoError(t, err)
	now = t0.Add(30 * time.Minute)
	busy, err := r.Start("busy", "table")
	require.NoError(t, err)
	_, err = r.Join("guest", busy.ID)
	require.NoError(t, err)

	now = t0.Add(61 * time.Minute)
	evicted := r.Sweep(now, time.Hour)
	require.Len(t, evicted, 1)
	assert.Equal(t, domain.UserID("idle"), evicted[0].Creator)

	_, ok := r.SessionOf("idle")
	assert.False(t, ok)
	_, ok = r.SessionOf("guest")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
	require.NoError(t, r.CheckIntegrity())
}

func TestRegistryAcquireRefreshesActivity(t *testing.T) {
	t.Parallel()

	now := t0
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().RunAndReturn(func() time.Time { return now }).Maybe()
	r := NewRegistry(5, domain.DefaultLimits(), clock)

	_, err := r.Start("a", "table")
	require.NoError(t, err)

	now = t0.Add(50 * time.Minute)
	tx, err := r.acquire("a")
	require.NoError(t, err)
	tx.release()

	assert.Empty(t, r.Sweep(t0.Add(70*time.Minute), time.Hour))
}

func TestRegistryConcurrentJoinLeaveKeepsIntegrity(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10, domain.DefaultLimits(), fixedClock(t))
	host, err := r.Start("host", "table")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		user := domain.UserID(fmt.Sprintf("p%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 20; round++ {
				if _, err := r.Join(user, host.ID); err != nil {
					continue
				}
				tx, err := r.acquire(user)
				if err != nil {
					continue
				}
				if _, err := tx.session.Leave(user, "", constRand{}); err == nil {
					tx.detach(user)
				}
				tx.release()
			}
		}()
	}
	wg.Wait()

	require.NoError(t, r.CheckIntegrity())
	list := r.List()
	require.Len(t, list, 1)
	assert.Len(t, list[0].Players, 1)
}

type constRand struct{}

func (constRand) IntN(int) int { return 0 }
