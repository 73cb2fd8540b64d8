package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	path string
	rows []ExportRow
	err  error
}

func (c *captureSink) WriteRows(path string, rows []ExportRow) error {
	c.path, c.rows = path, rows
	return c.err
}

func TestExportEntries(t *testing.T) {
	s := newTestStore(t)
	agg := NewAggregator(s, testOpts(s, NewFakeClock(baseTime))...)
	a := newTask(t, s, "Design", "")

	insertAt(t, s, &a, at(2, 9, 0), 30)
	insertAt(t, s, nil, at(1, 9, 0), 10)
	insertAt(t, s, &a, at(20, 9, 0), 50)

	sink := &captureSink{}
	n, err := agg.ExportEntries("out.csv", sink, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "out.csv", sink.path)
	require.Len(t, sink.rows, 3)
	assert.Equal(t, "(no task)", sink.rows[0].TaskTitle, "oldest first")
	assert.Equal(t, "Design", sink.rows[1].TaskTitle)
	assert.Equal(t, int64(30), sink.rows[1].DurationMinutes)
}

func TestExportEntriesFiltered(t *testing.T) {
	s := newTestStore(t)
	agg := NewAggregator(s, testOpts(s, NewFakeClock(baseTime))...)
	a := newTask(t, s, "Design", "")

	insertAt(t, s, &a, at(2, 9, 0), 30)
	insertAt(t, s, &a, at(20, 9, 0), 50)

	week, err := ResolveBucket(PeriodWeek, baseTime)
	require.NoError(t, err)
	rows, err := agg.ExportRows(&week)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(30), rows[0].DurationMinutes)
}

func TestExportEntriesSinkFailure(t *testing.T) {
	s := newTestStore(t)
	agg := NewAggregator(s, testOpts(s, NewFakeClock(baseTime))...)
	insertAt(t, s, nil, at(2, 9, 0), 30)

	boom := errors.New("permission denied")
	n, err := agg.ExportEntries("/nope/out.csv", &captureSink{err: boom}, nil)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, boom)
}

func TestExportEntriesStoreFailure(t *testing.T) {
	agg := NewAggregator(failingEntries{})
	_, err := agg.ExportEntries("out.csv", &captureSink{}, nil)
	assert.ErrorIs(t, err, errDiskFull)
}
