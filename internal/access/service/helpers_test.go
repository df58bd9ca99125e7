package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingSender remembers the last message per target.
type recordingSender struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (s *recordingSender) Send(_ context.Context, target string, _ domain.Channel, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.sent == nil {
		s.sent = make(map[string]string)
	}
	s.sent[target] = message
	return nil
}

// lastCode extracts the code from the last message sent to target.
func (s *recordingSender) lastCode(t *testing.T, target string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.sent[target]
	require.True(t, ok, "nothing sent to %s", target)
	i := strings.LastIndex(msg, " ")
	return msg[i+1:]
}

type harness struct {
	store   *sqlite.Store
	clock   *fakeClock
	events  *EventLog
	guard   *Guard
	otp     *OTPService
	codes   *AccessCodeService
	sender  *recordingSender
	anomaly *AnomalyDetector
	dir     *DirectoryService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	clock := newFakeClock()
	events := &EventLog{Store: s, Now: clock.Now}
	guard := &Guard{
		Counters: s.AttemptCounters(),
		Policy:   DefaultLockoutPolicy(),
		Events:   events,
		Now:      clock.Now,
	}
	sender := &recordingSender{}

	return &harness{
		store:  s,
		clock:  clock,
		events: events,
		guard:  guard,
		sender: sender,
		otp: &OTPService{
			Store:  s,
			Guard:  guard,
			Sender: sender,
			Events: events,
			Now:    clock.Now,
		},
		codes: &AccessCodeService{
			Store:  s,
			Guard:  guard,
			Events: events,
			Now:    clock.Now,
			Issuer: "careshare-access",
		},
		anomaly: &AnomalyDetector{
			Store:  s,
			Events: events,
			Now:    clock.Now,
		},
		dir: &DirectoryService{Store: s, Now: clock.Now},
	}
}

// eventTypes lists the recorded event types, oldest first.
func (h *harness) eventTypes(t *testing.T, actorID string) []string {
	t.Helper()
	events, err := h.store.SecurityEvents().ListSecurityEvents(context.Background(), domain.SecurityEventFilter{
		ActorID: actorID,
		Limit:   500,
	})
	require.NoError(t, err)

	types := make([]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		types = append(types, events[i].EventType)
	}
	return types
}

func (h *harness) seedOwner(t *testing.T, ownerID string, docIDs ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.dir.PutProfile(ctx, domain.Profile{
		OwnerID:   ownerID,
		FirstName: "Margaret",
		LastName:  "Nguyen",
		BirthDate: time.Date(1948, 7, 14, 0, 0, 0, 0, time.UTC),
	}))
	for _, id := range docIDs {
		require.NoError(t, h.dir.PutDocument(ctx, domain.Document{
			ID:      id,
			OwnerID: ownerID,
			Title:   "Directive " + id,
			Kind:    "advance_directive",
		}))
	}
}

var ownerClaim = domain.IdentityClaim{
	FirstName: "margaret",
	LastName:  "NGUYEN",
	BirthDate: time.Date(1948, 7, 14, 0, 0, 0, 0, time.UTC),
}

var errBoom = errors.New("boom")
