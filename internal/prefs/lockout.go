package prefs

import "time"

// Login throttle limits, matching the product's browser behavior.
const (
	MaxLoginAttempts = 5
	LockoutDuration  = 15 * time.Minute
)

// Lockout is an advisory client-side login throttle backed by the prefs
// file. It is trivially bypassable and is not a security boundary; real
// throttling belongs to the remote auth service.
type Lockout struct {
	prefs *Prefs
}

// NewLockout wraps the prefs file in throttle bookkeeping.
func NewLockout(p *Prefs) *Lockout {
	return &Lockout{prefs: p}
}

// Blocked reports whether logins are currently throttled and, if so, for how
// much longer.
func (l *Lockout) Blocked(now time.Time) (time.Duration, bool) {
	if l == nil || l.prefs == nil {
		return 0, false
	}
	deadline := l.prefs.LoginLockout()
	if deadline == 0 {
		return 0, false
	}
	until := time.UnixMilli(deadline)
	if now.Before(until) {
		return until.Sub(now), true
	}
	return 0, false
}

// Remaining returns how many attempts are left before the throttle engages.
func (l *Lockout) Remaining() int {
	if l == nil || l.prefs == nil {
		return MaxLoginAttempts
	}
	left := MaxLoginAttempts - l.prefs.LoginAttempts()
	if left < 0 {
		return 0
	}
	return left
}

// RegisterFailure counts a failed login and engages the lockout once the
// attempt limit is reached.
func (l *Lockout) RegisterFailure(now time.Time) error {
	if l == nil || l.prefs == nil {
		return nil
	}
	attempts := l.prefs.LoginAttempts() + 1
	var deadline int64
	if attempts >= MaxLoginAttempts {
		deadline = now.Add(LockoutDuration).UnixMilli()
	}
	return l.prefs.SetLoginState(attempts, deadline)
}

// Reset clears the counters after a successful login.
func (l *Lockout) Reset() error {
	if l == nil || l.prefs == nil {
		return nil
	}
	return l.prefs.SetLoginState(0, 0)
}
