package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/corhyn/internal/store"
)

// ============================================================
// Start / Stop
// ============================================================

func TestStartStopRecordsElapsedMinutes(t *testing.T) {
	s := newTestStore(t)
	clock := NewFakeClock(baseTime)
	tr := NewTracker(s, testOpts(s, clock)...)
	id := newTask(t, s, "Write report", store.PriorityHigh)

	sess, err := tr.Start(id)
	require.NoError(t, err)
	assert.Equal(t, id, sess.TaskID)
	assert.True(t, sess.StartTime.Equal(baseTime))

	clock.Advance(42 * time.Minute)
	entry, err := tr.Stop()
	require.NoError(t, err)
	assert.Equal(t, int64(42), entry.DurationMinutes)
	assert.Equal(t, store.KindTracked, entry.Kind)
	assert.NotZero(t, entry.ID)
	assert.Nil(t, tr.Current())

	stored, err := s.GetEntry(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.DurationMinutes)
	require.NotNil(t, stored.TaskID)
	assert.Equal(t, id, *stored.TaskID)
	assert.True(t, stored.StartTime.Equal(baseTime))
	assert.True(t, stored.EndTime.Equal(baseTime.Add(42*time.Minute)))
}

func TestStopRoundsToNearestMinute(t *testing.T) {
	s := newTestStore(t)
	clock := NewFakeClock(baseTime)
	tr := NewTracker(s, testOpts(s, clock)...)
	id := newTask(t, s, "Short", "")

	_, err := tr.Start(id)
	require.NoError(t, err)
	clock.Advance(20 * time.Second)
	entry, err := tr.Stop()
	require.NoError(t, err)
	assert.Equal(t, int64(0), entry.DurationMinutes)

	_, err = tr.Start(id)
	require.NoError(t, err)
	clock.Advance(90 * time.Second)
	entry, err = tr.Stop()
	require.NoError(t, err)
	assert.Equal(t, int64(2), entry.DurationMinutes)
}

func TestStartWhileActiveConflicts(t *testing.T) {
	s := newTestStore(t)
	clock := NewFakeClock(baseTime)
	tr := NewTracker(s, testOpts(s, clock)...)
	a := newTask(t, s, "A", "")
	b := newTask(t, s, "B", "")

	_, err := tr.Start(a)
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)

	_, err = tr.Start(b)
	assert.ErrorIs(t, err, ErrConflict)

	cur := tr.Current()
	require.NotNil(t, cur)
	assert.Equal(t, a, cur.TaskID)
	assert.True(t, cur.StartTime.Equal(baseTime))
}

func TestStopWithoutSession(t *testing.T) {
	s := newTestStore(t)
	tr := NewTracker(s, testOpts(s, NewFakeClock(baseTime))...)

	_, err := tr.Stop()
	assert.ErrorIs(t, err, ErrNoActiveSession)

	entries, err := s.AllEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStartUnknownTask(t *testing.T) {
	s := newTestStore(t)
	tr := NewTracker(s, testOpts(s, NewFakeClock(baseTime))...)

	_, err := tr.Start(999)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, tr.Current())
}

func TestStopStoreFailureKeepsSession(t *testing.T) {
	clock := NewFakeClock(baseTime)
	tr := NewTracker(failingEntries{}, WithClock(clock))

	_, err := tr.Start(1)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	_, err = tr.Stop()
	assert.ErrorIs(t, err, errDiskFull)
	assert.NotNil(t, tr.Current(), "session must survive a failed write")
}

func TestSessionElapsed(t *testing.T) {
	sess := Session{TaskID: 1, StartTime: baseTime}
	assert.Equal(t, 3*time.Minute, sess.Elapsed(baseTime.Add(3*time.Minute)))
	assert.Zero(t, sess.Elapsed(baseTime.Add(-time.Minute)))
}

// ============================================================
// Journal
// ============================================================

func TestRestoreFromJournal(t *testing.T) {
	s := newTestStore(t)
	clock := NewFakeClock(baseTime)
	id := newTask(t, s, "Persisted", "")

	first := NewTracker(s, append(testOpts(s, clock), WithJournal(s))...)
	_, err := first.Start(id)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	second := NewTracker(s, append(testOpts(s, clock), WithJournal(s))...)
	require.NoError(t, second.Restore())

	cur := second.Current()
	require.NotNil(t, cur)
	assert.Equal(t, id, cur.TaskID)
	assert.True(t, cur.StartTime.Equal(baseTime))

	entry, err := second.Stop()
	require.NoError(t, err)
	assert.Equal(t, int64(30), entry.DurationMinutes)

	live, err := s.LoadActiveSession()
	require.NoError(t, err)
	assert.Nil(t, live, "journal is cleared on stop")
}

func TestRestoreWithoutJournal(t *testing.T) {
	tr := NewTracker(newTestStore(t))
	assert.NoError(t, tr.Restore())
	assert.Nil(t, tr.Current())
}

// ============================================================
// Manual entries
// ============================================================

func TestAddManual(t *testing.T) {
	s := newTestStore(t)
	clock := NewFakeClock(baseTime)
	tr := NewTracker(s, testOpts(s, clock)...)
	id := newTask(t, s, "Review", store.PriorityLow)

	for _, minutes := range []int64{1, 15, 240} {
		entry, err := tr.AddManual(id, minutes, "catch-up")
		require.NoError(t, err)
		assert.Equal(t, minutes, entry.DurationMinutes)
		assert.Equal(t, store.KindManual, entry.Kind)
		assert.True(t, entry.EndTime.Equal(baseTime))
		assert.True(t, entry.StartTime.Equal(baseTime.Add(-time.Duration(minutes)*time.Minute)))
	}

	entries, err := s.ListEntries(store.EntryFilter{Kind: store.KindManual})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "catch-up", entries[0].Notes)
}

func TestAddManualRejectsNonPositive(t *testing.T) {
	s := newTestStore(t)
	tr := NewTracker(s, testOpts(s, NewFakeClock(baseTime))...)
	id := newTask(t, s, "X", "")

	for _, minutes := range []int64{0, -10, maxManualMinutes + 1, 200_000_000} {
		_, err := tr.AddManual(id, minutes, "")
		assert.ErrorIs(t, err, ErrValidation)
	}
	entries, _ := s.AllEntries()
	assert.Empty(t, entries)
}

func TestAddManualLongestDuration(t *testing.T) {
	s := newTestStore(t)
	tr := NewTracker(s, testOpts(s, NewFakeClock(baseTime))...)
	id := newTask(t, s, "X", "")

	entry, err := tr.AddManual(id, maxManualMinutes, "")
	require.NoError(t, err)
	assert.False(t, entry.StartTime.After(entry.EndTime), "start must not be after end")
}

func TestAddManualDoesNotTouchActiveSession(t *testing.T) {
	s := newTestStore(t)
	tr := NewTracker(s, testOpts(s, NewFakeClock(baseTime))...)
	id := newTask(t, s, "X", "")

	_, err := tr.Start(id)
	require.NoError(t, err)
	_, err = tr.AddManual(id, 20, "")
	require.NoError(t, err)
	assert.NotNil(t, tr.Current())
}
