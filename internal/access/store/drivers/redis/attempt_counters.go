// Package redis implements store.AttemptCounters on Redis so several
// service instances share one brute-force guard state.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/idx"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultRetention is how long an untouched counter survives. Redis expires
// keys on its own, so there is no sweep for this backend.
const DefaultRetention = 7 * 24 * time.Hour

// Every mutation is one Lua script so the read-compare-write runs atomically
// on the server. Timestamps travel as unix milliseconds.
var (
	incrementScript = goredis.NewScript(`
local count = tonumber(redis.call("HGET", KEYS[1], "count") or "0")
local start = redis.call("HGET", KEYS[1], "window_start")
if count == 0 or not start or tonumber(start) + tonumber(ARGV[2]) <= tonumber(ARGV[1]) then
  count = 1
  start = ARGV[1]
else
  count = count + 1
end
redis.call("HSET", KEYS[1], "count", count, "window_start", start, "updated_at", ARGV[1])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return redis.call("HGETALL", KEYS[1])
`)

	lockScript = goredis.NewScript(`
local count = tonumber(redis.call("HGET", KEYS[1], "count") or "0")
if count < tonumber(ARGV[1]) then
  return 0
end
local lu = redis.call("HGET", KEYS[1], "lockout_until")
if lu and tonumber(lu) > tonumber(ARGV[2]) then
  return 0
end
redis.call("HSET", KEYS[1], "lockout_until", ARGV[3], "lockouts", ARGV[4], "last_lockout_at", ARGV[2], "updated_at", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

	clearElapsedScript = goredis.NewScript(`
local lu = redis.call("HGET", KEYS[1], "lockout_until")
if not lu or tonumber(lu) > tonumber(ARGV[1]) then
  return 0
end
redis.call("HSET", KEYS[1], "count", 0, "window_start", ARGV[1], "updated_at", ARGV[1])
redis.call("HDEL", KEYS[1], "lockout_until")
return 1
`)

	// releaseScript deletes a lease only while it still holds our token, so
	// a lease that lapsed and was taken by another process is left alone.
	releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

	resetScript = goredis.NewScript(`
local count = tonumber(redis.call("HGET", KEYS[1], "count") or "0")
local lockouts = tonumber(redis.call("HGET", KEYS[1], "lockouts") or "0")
local lu = redis.call("HGET", KEYS[1], "lockout_until")
if count == 0 and lockouts == 0 and not lu then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)
)

// AttemptCounters is the Redis backed store.AttemptCounters.
type AttemptCounters struct {
	Client goredis.UniversalClient

	// Prefix namespaces the keys, default "careshare:attempts".
	Prefix string

	// Retention is the idle TTL of a counter, default DefaultRetention.
	Retention time.Duration
}

var (
	_ store.AttemptCounters  = (*AttemptCounters)(nil)
	_ store.AttemptKeyLocker = (*AttemptCounters)(nil)
)

// Polling bounds while waiting for a held lease.
const (
	minLeasePoll = 5 * time.Millisecond
	maxLeasePoll = 100 * time.Millisecond
)

// NewAttemptCounters connects to addr and verifies the connection.
func NewAttemptCounters(ctx context.Context, addr, password string, db int) (*AttemptCounters, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &AttemptCounters{Client: client}, nil
}

// Ping verifies the connection is still alive.
func (c *AttemptCounters) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close releases the client.
func (c *AttemptCounters) Close() error {
	return c.Client.Close()
}

func (c *AttemptCounters) key(identifier string, action domain.Action) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "careshare:attempts"
	}
	return prefix + ":" + string(action) + ":" + identifier
}

func (c *AttemptCounters) retention() time.Duration {
	if c.Retention > 0 {
		return c.Retention
	}
	return DefaultRetention
}

func (c *AttemptCounters) GetAttemptCounter(ctx context.Context, identifier string, action domain.Action) (domain.AttemptCounter, error) {
	fields, err := c.Client.HGetAll(ctx, c.key(identifier, action)).Result()
	if err != nil {
		return domain.AttemptCounter{}, err
	}
	if len(fields) == 0 {
		return domain.AttemptCounter{}, store.ErrNotFound
	}
	return parseCounter(identifier, action, fields)
}

func (c *AttemptCounters) IncrementAttemptCounter(
	ctx context.Context,
	identifier string,
	action domain.Action,
	now time.Time,
	window time.Duration,
) (domain.AttemptCounter, error) {
	raw, err := incrementScript.Run(ctx, c.Client,
		[]string{c.key(identifier, action)},
		now.UnixMilli(), window.Milliseconds(), c.retention().Milliseconds(),
	).StringSlice()
	if err != nil {
		return domain.AttemptCounter{}, err
	}
	return parseCounter(identifier, action, pairs(raw))
}

func (c *AttemptCounters) LockAttemptCounter(
	ctx context.Context,
	identifier string,
	action domain.Action,
	threshold int,
	now, until time.Time,
	lockouts int,
) (bool, error) {
	ttl := c.retention() + until.Sub(now)
	n, err := lockScript.Run(ctx, c.Client,
		[]string{c.key(identifier, action)},
		threshold, now.UnixMilli(), until.UnixMilli(), lockouts, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *AttemptCounters) ClearElapsedLockout(ctx context.Context, identifier string, action domain.Action, now time.Time) (bool, error) {
	n, err := clearElapsedScript.Run(ctx, c.Client,
		[]string{c.key(identifier, action)},
		now.UnixMilli(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *AttemptCounters) ResetAttemptCounter(ctx context.Context, identifier string, action domain.Action, _ time.Time) (bool, error) {
	n, err := resetScript.Run(ctx, c.Client, []string{c.key(identifier, action)}).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// LockAttemptKey takes a SET NX lease on the counter key, polling until it
// is free or ctx ends.
func (c *AttemptCounters) LockAttemptKey(ctx context.Context, identifier string, action domain.Action, ttl time.Duration) (func(), error) {
	key := c.key(identifier, action) + ":lease"
	token := idx.New().String()

	poll := minLeasePoll
	for {
		ok, err := c.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			release := context.WithoutCancel(ctx)
			return func() {
				_ = releaseScript.Run(release, c.Client, []string{key}, token).Err()
			}, nil
		}

		t := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("redis lease %s: %w", key, ctx.Err())
		case <-t.C:
		}
		poll = min(poll*2, maxLeasePoll)
	}
}

// DeleteStaleAttemptCounters is a no-op: keys carry their own TTL.
func (c *AttemptCounters) DeleteStaleAttemptCounters(context.Context, time.Time, time.Time) (int64, error) {
	return 0, nil
}

var errMalformedCounter = errors.New("redis: malformed attempt counter")

// pairs turns an HGETALL reply into a map.
func pairs(raw []string) map[string]string {
	out := make(map[string]string, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		out[raw[i]] = raw[i+1]
	}
	return out
}

func parseCounter(identifier string, action domain.Action, fields map[string]string) (domain.AttemptCounter, error) {
	c := domain.AttemptCounter{Identifier: identifier, Action: action}

	var err error
	if c.Count, err = intField(fields, "count"); err != nil {
		return c, err
	}
	if c.Lockouts, err = intField(fields, "lockouts"); err != nil {
		return c, err
	}
	if c.WindowStart, err = timeField(fields, "window_start"); err != nil {
		return c, err
	}
	if c.UpdatedAt, err = timeField(fields, "updated_at"); err != nil {
		return c, err
	}
	if c.LockoutUntil, err = optionalTimeField(fields, "lockout_until"); err != nil {
		return c, err
	}
	if c.LastLockoutAt, err = optionalTimeField(fields, "last_lockout_at"); err != nil {
		return c, err
	}
	return c, nil
}

func intField(fields map[string]string, name string) (int, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", errMalformedCounter, name, err)
	}
	return n, nil
}

func timeField(fields map[string]string, name string) (time.Time, error) {
	t, err := optionalTimeField(fields, name)
	if err != nil || t == nil {
		return time.Time{}, err
	}
	return *t, nil
}

func optionalTimeField(fields map[string]string, name string) (*time.Time, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errMalformedCounter, name, err)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}
