package service

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

// Attempt evaluates one credential. It reports whether the credential was
// accepted. A non-nil error means the credential could not be evaluated at
// all, and the guard then records neither success nor failure.
type Attempt func(ctx context.Context) (bool, error)

// Guard is the authoritative brute-force gate. Every store mutation is a
// single atomic statement. On top of that, calls for the same key are
// serialized inside this process, and across processes when the counters
// backend is a store.AttemptKeyLocker, so check, attempt and outcome
// recording observe a consistent counter.
type Guard struct {
	Counters store.AttemptCounters
	Policy   LockoutPolicy
	Events   *EventLog
	Metrics  *Metrics
	Now      func() time.Time

	locks keyLocks
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}

// CheckAttempt reports whether a verification for (identifier, action) may
// proceed. A counter at or above the threshold is locked here.
func (g *Guard) CheckAttempt(ctx context.Context, identifier string, action domain.Action) (domain.AttemptDecision, error) {
	identifier, err := guardKey(identifier, action)
	if err != nil {
		return domain.AttemptDecision{}, err
	}

	release, err := g.acquire(ctx, identifier, action)
	if err != nil {
		return domain.AttemptDecision{}, err
	}
	defer release()
	return g.check(ctx, identifier, action)
}

// RecordFailure counts one failed verification. The returned decision tells
// the caller whether this failure tripped a lockout.
func (g *Guard) RecordFailure(ctx context.Context, identifier string, action domain.Action) (domain.AttemptDecision, error) {
	identifier, err := guardKey(identifier, action)
	if err != nil {
		return domain.AttemptDecision{}, err
	}

	release, err := g.acquire(ctx, identifier, action)
	if err != nil {
		return domain.AttemptDecision{}, err
	}
	defer release()
	return g.recordFailure(ctx, identifier, action)
}

// RecordSuccess clears the counter, its lockout and its escalation level.
func (g *Guard) RecordSuccess(ctx context.Context, identifier string, action domain.Action) error {
	identifier, err := guardKey(identifier, action)
	if err != nil {
		return err
	}

	release, err := g.acquire(ctx, identifier, action)
	if err != nil {
		return err
	}
	defer release()
	return g.recordSuccess(ctx, identifier, action)
}

// Protect runs attempt behind the guard: check first, then record exactly one
// of success or failure. A locked key returns a *LockedError without running
// attempt. attempt must not call back into the guard for the same key.
func (g *Guard) Protect(ctx context.Context, identifier string, action domain.Action, attempt Attempt) (bool, error) {
	identifier, err := guardKey(identifier, action)
	if err != nil {
		return false, err
	}

	release, err := g.acquire(ctx, identifier, action)
	if err != nil {
		return false, err
	}
	defer release()

	decision, err := g.check(ctx, identifier, action)
	if err != nil {
		return false, err
	}
	if !decision.Allowed {
		return false, lockedError(decision)
	}

	ok, err := attempt(ctx)
	if err != nil {
		return false, err
	}

	if ok {
		if err := g.recordSuccess(ctx, identifier, action); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err := g.recordFailure(ctx, identifier, action); err != nil {
		return false, err
	}
	return false, nil
}

func (g *Guard) check(ctx context.Context, identifier string, action domain.Action) (domain.AttemptDecision, error) {
	ap := g.Policy.For(action)
	now := g.now()

	// 1. No counter yet means no failures.
	c, err := g.Counters.GetAttemptCounter(ctx, identifier, action)
	if errors.Is(err, store.ErrNotFound) {
		g.Metrics.guardDecision(ctx, action, "allowed")
		return allowed(ap.Threshold), nil
	}
	if err != nil {
		return domain.AttemptDecision{}, unavailable("get attempt counter", err)
	}

	// 2. Active lockout.
	if c.LockedAt(now) {
		g.Metrics.guardDecision(ctx, action, "locked")
		return denied(*c.LockoutUntil, now), nil
	}

	// 3. Elapsed lockout: start over with a full allowance.
	if c.LockoutUntil != nil {
		cleared, err := g.Counters.ClearElapsedLockout(ctx, identifier, action, now)
		if err != nil {
			return domain.AttemptDecision{}, unavailable("clear lockout", err)
		}
		if cleared {
			g.Events.Record(ctx, domain.EventLockoutExpired, identifier, domain.RiskLow, map[string]string{
				"action": string(action),
			})
		}
		g.Metrics.guardDecision(ctx, action, "allowed")
		return allowed(ap.Threshold), nil
	}

	// 4. Failures from an elapsed window no longer count.
	count := c.Count
	if c.WindowExpired(now, ap.Window) {
		count = 0
	}

	// 5. At or over the threshold: lock now.
	if count >= ap.Threshold {
		decision, err := g.lock(ctx, c, ap, now)
		if err != nil {
			return domain.AttemptDecision{}, err
		}
		g.Metrics.guardDecision(ctx, action, "locked")
		return decision, nil
	}

	g.Metrics.guardDecision(ctx, action, "allowed")
	return allowed(ap.Threshold - count), nil
}

func (g *Guard) recordFailure(ctx context.Context, identifier string, action domain.Action) (domain.AttemptDecision, error) {
	ap := g.Policy.For(action)
	now := g.now()

	c, err := g.Counters.IncrementAttemptCounter(ctx, identifier, action, now, ap.Window)
	if err != nil {
		return domain.AttemptDecision{}, unavailable("increment attempt counter", err)
	}

	slogx.FromContext(ctx).Debug("verification failure recorded",
		slog.String("action", string(action)),
		slog.Int("count", c.Count),
	)

	if c.LockedAt(now) {
		return denied(*c.LockoutUntil, now), nil
	}
	if c.Count >= ap.Threshold {
		return g.lock(ctx, c, ap, now)
	}
	return allowed(ap.Threshold - c.Count), nil
}

func (g *Guard) recordSuccess(ctx context.Context, identifier string, action domain.Action) error {
	changed, err := g.Counters.ResetAttemptCounter(ctx, identifier, action, g.now())
	if err != nil {
		return unavailable("reset attempt counter", err)
	}
	if changed {
		g.Events.Record(ctx, domain.EventAttemptsReset, identifier, domain.RiskLow, map[string]string{
			"action": string(action),
		})
	}
	return nil
}

// lock starts a lockout whose length depends on how many lockouts preceded
// it recently.
func (g *Guard) lock(ctx context.Context, c domain.AttemptCounter, ap ActionPolicy, now time.Time) (domain.AttemptDecision, error) {
	level := 0
	if c.LastLockoutAt != nil && now.Sub(*c.LastLockoutAt) < g.Policy.escalationReset() {
		level = c.Lockouts
	}
	until := now.Add(ap.LockoutDuration(level))

	applied, err := g.Counters.LockAttemptCounter(ctx, c.Identifier, c.Action, ap.Threshold, now, until, level+1)
	if err != nil {
		return domain.AttemptDecision{}, unavailable("lock attempt counter", err)
	}

	if !applied {
		// Another process got there first; report its lockout.
		current, err := g.Counters.GetAttemptCounter(ctx, c.Identifier, c.Action)
		if err != nil {
			return domain.AttemptDecision{}, unavailable("get attempt counter", err)
		}
		if current.LockedAt(now) {
			return denied(*current.LockoutUntil, now), nil
		}
		return denied(until, now), nil
	}

	decision := denied(until, now)
	g.Events.Record(ctx, domain.EventLockoutStarted, c.Identifier, domain.RiskMedium, map[string]string{
		"action":          string(c.Action),
		"lockout_minutes": strconv.Itoa(*decision.LockoutMinutes),
		"level":           strconv.Itoa(level + 1),
	})
	g.Metrics.lockout(ctx, c.Action)
	return decision, nil
}

func allowed(remaining int) domain.AttemptDecision {
	if remaining < 0 {
		remaining = 0
	}
	return domain.AttemptDecision{Allowed: true, RemainingAttempts: remaining}
}

func denied(until, now time.Time) domain.AttemptDecision {
	minutes := int(math.Ceil(until.Sub(now).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return domain.AttemptDecision{
		Allowed:        false,
		LockoutMinutes: &minutes,
		LockoutUntil:   &until,
	}
}

func lockedError(d domain.AttemptDecision) *LockedError {
	e := &LockedError{Minutes: 1}
	if d.LockoutMinutes != nil {
		e.Minutes = *d.LockoutMinutes
	}
	if d.LockoutUntil != nil {
		e.Until = *d.LockoutUntil
	}
	return e
}

// LockedFromDecision converts a denied decision into the error handed to
// callers.
func LockedFromDecision(d domain.AttemptDecision) error {
	if d.Allowed {
		return nil
	}
	return lockedError(d)
}

func guardKey(identifier string, action domain.Action) (string, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return "", validationError("identifier is required")
	}
	if len(identifier) > 320 {
		return "", validationError("identifier is too long")
	}
	if !action.Valid() {
		return "", validationError("%v: %q", domain.ErrUnknownAction, action)
	}
	return identifier, nil
}

// Lease bounds for shared counters. The lease outlives any sane attempt; the
// wait gives up before a request would time out anyway.
const (
	sharedLeaseTTL  = 10 * time.Second
	sharedLeaseWait = 5 * time.Second
)

// acquire serializes the caller with every other guard call for the key and
// returns the matching release.
func (g *Guard) acquire(ctx context.Context, identifier string, action domain.Action) (func(), error) {
	unlock := g.locks.lock(identifier, action)

	locker, ok := g.Counters.(store.AttemptKeyLocker)
	if !ok {
		return unlock, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, sharedLeaseWait)
	defer cancel()
	release, err := locker.LockAttemptKey(waitCtx, identifier, action, sharedLeaseTTL)
	if err != nil {
		unlock()
		return nil, unavailable("lease attempt counter", err)
	}
	return func() {
		release()
		unlock()
	}, nil
}

const lockStripes = 64

// keyLocks serializes guard calls per key with a fixed set of mutexes.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyLocks) lock(identifier string, action domain.Action) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(action))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(identifier))

	m := &k.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
