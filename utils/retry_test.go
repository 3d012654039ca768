package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryEventuallySucceeds(t *testing.T) {
	var delays []time.Duration
	r := &RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   10 * time.Millisecond,
		Logger:      NewNopLogger(),
		sleep:       func(d time.Duration) { delays = append(delays, d) },
	}

	calls := 0
	err := r.Do("ping", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, delays)
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, Logger: NewNopLogger(), sleep: func(time.Duration) {}}
	boom := errors.New("boom")

	err := r.Do("ping", func() error { return boom })

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestRetryPermanentStopsImmediately(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, Logger: NewNopLogger(), sleep: func(time.Duration) {}}
	auth := errors.New("password authentication failed")

	calls := 0
	err := r.Do("ping", func() error {
		calls++
		return Permanent(auth)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, auth)
}

func TestRetryMaxDelayCap(t *testing.T) {
	var delays []time.Duration
	r := &RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    1500 * time.Millisecond,
		sleep:       func(d time.Duration) { delays = append(delays, d) },
	}

	_ = r.Do("ping", func() error { return errors.New("down") })

	assert.Equal(t, []time.Duration{time.Second, 1500 * time.Millisecond, 1500 * time.Millisecond}, delays)
}
