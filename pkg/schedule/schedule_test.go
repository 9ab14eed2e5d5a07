package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalTaskRunsWhenDue(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Every(time.Hour).Name("purge").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.RunDue(context.Background(), base)
	s.Wait()
	s.RunDue(context.Background(), base.Add(30*time.Minute))
	s.Wait()
	s.RunDue(context.Background(), base.Add(time.Hour))
	s.Wait()

	assert.Equal(t, int32(2), runs.Load())
}

func TestCronFiresOncePerMinute(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Cron("*/15 * * * *").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	at := time.Date(2026, 1, 1, 10, 15, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.RunDue(context.Background(), at.Add(time.Duration(i)*time.Second))
		s.Wait()
	}
	s.RunDue(context.Background(), at.Add(time.Minute))
	s.Wait()

	assert.Equal(t, int32(1), runs.Load())
}

func TestRunRejectsBadDefinitions(t *testing.T) {
	s := New()
	noop := func(context.Context) error { return nil }
	assert.Error(t, s.Cron("* * *").Run(noop))
	assert.Error(t, s.Every(0).Run(noop))
	assert.Empty(t, s.List())
}

func TestRunAllSurvivesFailuresAndPanics(t *testing.T) {
	s := New()
	var ok atomic.Bool
	require.NoError(t, s.Every(time.Minute).Name("fails").Run(func(context.Context) error { return errors.New("x") }))
	require.NoError(t, s.Every(time.Minute).Name("panics").Run(func(context.Context) error { panic("boom") }))
	require.NoError(t, s.Every(time.Minute).Name("works").Run(func(context.Context) error {
		ok.Store(true)
		return nil
	}))

	s.RunAll(context.Background())
	assert.True(t, ok.Load())
	assert.Len(t, s.List(), 3)
}

func TestMatchField(t *testing.T) {
	cases := []struct {
		field string
		val   int
		want  bool
	}{
		{"*", 7, true},
		{"*/5", 10, true},
		{"*/5", 11, false},
		{"1-5", 3, true},
		{"1-5", 6, false},
		{"3", 3, true},
		{"1,3,5", 5, true},
		{"1,3,5", 4, false},
		{"x", 1, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchField(c.field, c.val), c.field)
	}
}
