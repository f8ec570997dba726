package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLocked(t *testing.T) {
	now := time.Now()

	t.Run("nil lock is unlocked", func(t *testing.T) {
		assert.False(t, IsLocked(nil, now))
	})

	t.Run("future lock is locked", func(t *testing.T) {
		until := now.Add(time.Hour)
		assert.True(t, IsLocked(&until, now))
	})

	t.Run("expired lock is unlocked", func(t *testing.T) {
		until := now.Add(-time.Minute)
		assert.False(t, IsLocked(&until, now))
	})
}

func TestNextFailedAttempt(t *testing.T) {
	now := time.Now()

	t.Run("increments below the threshold", func(t *testing.T) {
		attempts, lockUntil := NextFailedAttempt(2, nil, now)
		assert.Equal(t, 3, attempts)
		assert.Nil(t, lockUntil)
	})

	t.Run("fifth failure locks for two hours", func(t *testing.T) {
		attempts, lockUntil := NextFailedAttempt(4, nil, now)
		assert.Equal(t, 5, attempts)
		if assert.NotNil(t, lockUntil) {
			assert.Equal(t, now.Add(LockDuration), *lockUntil)
		}
	})

	t.Run("expired lock restarts the counter at 1", func(t *testing.T) {
		expired := now.Add(-time.Minute)
		attempts, lockUntil := NextFailedAttempt(5, &expired, now)
		assert.Equal(t, 1, attempts)
		assert.Nil(t, lockUntil)
	})

	t.Run("active lock keeps counting without re-locking", func(t *testing.T) {
		active := now.Add(time.Hour)
		attempts, lockUntil := NextFailedAttempt(5, &active, now)
		assert.Equal(t, 6, attempts)
		if assert.NotNil(t, lockUntil) {
			assert.Equal(t, active, *lockUntil)
		}
	})
}
