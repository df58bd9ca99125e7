package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this
// and expose sub-repositories so a transaction can hand out the same repos
// bound to the transaction.
type Store interface {
	AttemptCounters() AttemptCounters
	OTPChallenges() OTPChallenges
	AccessCodes() AccessCodes
	SecurityEvents() SecurityEvents
	Profiles() Profiles
	Documents() Documents
	LoginLocations() LoginLocations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// the transaction back, otherwise it is committed.
	//
	// Only use the tx passed to fn inside the callback. The sqlite driver
	// holds a single connection, so touching the outer Store from within fn
	// blocks forever.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// AttemptCounters persists brute-force guard state. Every mutation is a
// single atomic statement (or script) so callers on different processes
// never lose an update.
type AttemptCounters interface {
	// GetAttemptCounter returns the counter for (identifier, action) or ErrNotFound.
	GetAttemptCounter(ctx context.Context, identifier string, action domain.Action) (domain.AttemptCounter, error)

	// IncrementAttemptCounter records one failure, creating the counter on
	// first use. When the counter is empty or its window has elapsed a new
	// window starts at now with count=1.
	IncrementAttemptCounter(ctx context.Context, identifier string, action domain.Action, now time.Time, window time.Duration) (domain.AttemptCounter, error)

	// LockAttemptCounter sets lockoutUntil and the escalation level, but only
	// if count >= threshold and the counter is not already locked at now.
	// The returned bool reports whether this call applied the lock.
	LockAttemptCounter(ctx context.Context, identifier string, action domain.Action, threshold int, now, until time.Time, lockouts int) (bool, error)

	// ClearElapsedLockout zeroes the count and clears lockoutUntil when it is
	// at or before now. The escalation level is kept.
	ClearElapsedLockout(ctx context.Context, identifier string, action domain.Action, now time.Time) (bool, error)

	// ResetAttemptCounter zeroes the count and clears the lockout and the
	// escalation level. It reports whether anything was cleared.
	ResetAttemptCounter(ctx context.Context, identifier string, action domain.Action, now time.Time) (bool, error)

	// DeleteStaleAttemptCounters removes counters untouched since before that
	// are not locked at now.
	DeleteStaleAttemptCounters(ctx context.Context, before, now time.Time) (int64, error)
}

// AttemptKeyLocker is implemented by AttemptCounters backends that several
// processes share. LockAttemptKey blocks until the caller holds an exclusive
// lease on (identifier, action) or ctx ends. The lease lapses after ttl even
// if unlock is never called.
type AttemptKeyLocker interface {
	LockAttemptKey(ctx context.Context, identifier string, action domain.Action, ttl time.Duration) (unlock func(), err error)
}

type OTPChallenges interface {
	// CreateOTPChallenge inserts a challenge. At most one non-superseded
	// challenge may exist per (target, purpose); a second insert without
	// superseding first returns ErrAlreadyExists.
	CreateOTPChallenge(ctx context.Context, c domain.OTPChallenge) error

	// SupersedeOTPChallenges retires the current challenge for (target, purpose).
	SupersedeOTPChallenges(ctx context.Context, target, purpose string) (int64, error)

	// GetCurrentOTPChallenge returns the non-superseded challenge for
	// (target, purpose), whatever its consumed/expired state.
	GetCurrentOTPChallenge(ctx context.Context, target, purpose string) (domain.OTPChallenge, error)

	// DecrementOTPChallengeAttempts takes one attempt from an unconsumed
	// challenge that still has attempts left. ErrNotFound when no attempt
	// could be taken.
	DecrementOTPChallengeAttempts(ctx context.Context, id string) (domain.OTPChallenge, error)

	// ConsumeOTPChallenge marks a live challenge consumed. It reports false if
	// the challenge was consumed, superseded, exhausted or expired meanwhile.
	ConsumeOTPChallenge(ctx context.Context, id string, now time.Time) (bool, error)

	MarkOTPChallengeDelivered(ctx context.Context, id string) error

	// DeleteExpiredOTPChallenges is housekeeping.
	DeleteExpiredOTPChallenges(ctx context.Context, before time.Time) (int64, error)
}

type AccessCodes interface {
	// CreateAccessCode returns ErrAlreadyExists if the code hash collides.
	CreateAccessCode(ctx context.Context, c domain.AccessCode) error

	GetAccessCodeByHash(ctx context.Context, hash string) (domain.AccessCode, error)
	GetAccessCodeByID(ctx context.Context, id string) (domain.AccessCode, error)

	// ListAccessCodesByOwner returns every code of the owner, newest first.
	ListAccessCodesByOwner(ctx context.Context, ownerID string) ([]domain.AccessCode, error)

	// ExtendAccessCode sets expires_at = max(expires_at, now) + by on a
	// non-revoked code. The bool is false when the code is revoked or missing.
	ExtendAccessCode(ctx context.Context, id string, now time.Time, by time.Duration) (domain.AccessCode, bool, error)

	// RevokeAccessCode flips revoked on. The bool reports whether this call
	// performed the transition.
	RevokeAccessCode(ctx context.Context, id string, now time.Time) (bool, error)
}

// SecurityEvents is append-only. There is deliberately no update or delete.
type SecurityEvents interface {
	AppendSecurityEvent(ctx context.Context, e domain.SecurityEvent) error

	// ListSecurityEvents returns events newest first.
	ListSecurityEvents(ctx context.Context, f domain.SecurityEventFilter) ([]domain.SecurityEvent, error)
}

type Profiles interface {
	GetProfile(ctx context.Context, ownerID string) (domain.Profile, error)
	UpsertProfile(ctx context.Context, p domain.Profile) error
}

type Documents interface {
	GetDocument(ctx context.Context, id string) (domain.Document, error)
	ListDocumentsByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
	UpsertDocument(ctx context.Context, d domain.Document) error
	DeleteDocument(ctx context.Context, id string) error
}

type LoginLocations interface {
	// ListRecentLoginLocations returns up to limit locations, most recently seen first.
	ListRecentLoginLocations(ctx context.Context, identifier string, limit int) ([]domain.LoginLocation, error)

	// RecordLoginLocation inserts the location or bumps its last-seen time.
	RecordLoginLocation(ctx context.Context, identifier, locationKey string, now time.Time) error

	DeleteLoginLocationsBefore(ctx context.Context, before time.Time) (int64, error)
}
