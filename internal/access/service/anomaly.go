package service

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

// DefaultLocationHistory is how many recent locations count as familiar.
const DefaultLocationHistory = 5

var ErrLocationUnavailable = errors.New("location unavailable")

// LocationResolver turns a login context into a coarse location.
type LocationResolver interface {
	Resolve(ctx context.Context, lc domain.LoginContext) (domain.Location, error)
}

// NetworkResolver locates a login by the edge supplied country and the
// masked client network (IPv4 /16, IPv6 /32). It never stores full addresses.
type NetworkResolver struct{}

func (NetworkResolver) Resolve(_ context.Context, lc domain.LoginContext) (domain.Location, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(lc.IP))
	if err != nil {
		return domain.Location{}, ErrLocationUnavailable
	}
	addr = addr.Unmap()

	bits := 32
	if addr.Is4() {
		bits = 16
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return domain.Location{}, ErrLocationUnavailable
	}

	country := strings.ToUpper(strings.TrimSpace(lc.Country))
	if country == "" {
		country = "ZZ"
	}
	network := prefix.String()

	return domain.Location{
		Key:     country + "|" + network,
		Country: country,
		Network: network,
	}, nil
}

// AnomalyDetector flags logins from places the identifier has not used
// recently. It fails open: any error yields "not suspicious".
type AnomalyDetector struct {
	Store    store.Store
	Resolver LocationResolver
	Events   *EventLog
	Metrics  *Metrics
	Now      func() time.Time

	// History is how many recent locations are compared against.
	History int
}

func (d *AnomalyDetector) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d *AnomalyDetector) history() int {
	if d.History > 0 {
		return d.History
	}
	return DefaultLocationHistory
}

func (d *AnomalyDetector) resolver() LocationResolver {
	if d.Resolver != nil {
		return d.Resolver
	}
	return NetworkResolver{}
}

// IsSuspiciousLocation reports whether the login comes from a location not
// among the identifier's recent ones. An identifier without history is never
// suspicious.
func (d *AnomalyDetector) IsSuspiciousLocation(ctx context.Context, identifier string, lc domain.LoginContext) bool {
	log := slogx.FromContext(ctx)
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	loc, err := d.resolver().Resolve(ctx, lc)
	if err != nil {
		d.Events.Record(ctx, domain.EventLocationUnresolved, identifier, domain.RiskLow, map[string]string{
			"error": err.Error(),
		})
		return false
	}

	recent, err := d.Store.LoginLocations().ListRecentLoginLocations(ctx, identifier, d.history())
	if err != nil {
		log.Warn("login location history unavailable", slog.Any("error", err))
		d.Events.Record(ctx, domain.EventLocationUnresolved, identifier, domain.RiskLow, map[string]string{
			"error": "history unavailable",
		})
		return false
	}
	if len(recent) == 0 {
		return false
	}

	known := slices.ContainsFunc(recent, func(l domain.LoginLocation) bool {
		return l.LocationKey == loc.Key
	})
	if known {
		return false
	}

	d.Events.Record(ctx, domain.EventSuspiciousLocation, identifier, domain.RiskMedium, map[string]string{
		"country": loc.Country,
		"network": loc.Network,
	})
	d.Metrics.suspiciousLogin(ctx)
	return true
}

// RecordLogin remembers the location of a successful login. Failures are
// logged only.
func (d *AnomalyDetector) RecordLogin(ctx context.Context, identifier string, lc domain.LoginContext) {
	log := slogx.FromContext(ctx)
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	loc, err := d.resolver().Resolve(ctx, lc)
	if err != nil {
		return
	}
	if err := d.Store.LoginLocations().RecordLoginLocation(ctx, identifier, loc.Key, d.now()); err != nil {
		log.Warn("failed to record login location", slog.Any("error", err))
	}
}
