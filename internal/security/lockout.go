package security

import "time"

const (
	// MaxLoginAttempts is the failed-attempt count at which an email
	// account locks.
	MaxLoginAttempts = 5

	// LockDuration is how long a locked account rejects logins. There is
	// no background expiry; lock state is evaluated lazily per attempt.
	LockDuration = 2 * time.Hour
)

// IsLocked reports whether an account is locked at the given instant.
// A lockUntil in the past is equivalent to unlocked.
func IsLocked(lockUntil *time.Time, now time.Time) bool {
	return lockUntil != nil && lockUntil.After(now)
}

// NextFailedAttempt computes the lockout transition after a failed login.
// If a previous lock has expired the counter restarts at 1 and the lock is
// cleared; otherwise the counter increments, and crossing MaxLoginAttempts
// while unlocked sets a fresh lock of LockDuration.
func NextFailedAttempt(attempts int, lockUntil *time.Time, now time.Time) (int, *time.Time) {
	if lockUntil != nil && lockUntil.Before(now) {
		return 1, nil
	}

	attempts++
	if attempts >= MaxLoginAttempts && !IsLocked(lockUntil, now) {
		until := now.Add(LockDuration)
		return attempts, &until
	}

	return attempts, lockUntil
}
