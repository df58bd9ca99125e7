package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var ErrNilMeter = errors.New("nil meter")

// Metrics holds the access layer counters. A nil *Metrics records nothing,
// so services can run without a meter.
type Metrics struct {
	guardDecisions   metric.Int64Counter
	lockouts         metric.Int64Counter
	otpIssued        metric.Int64Counter
	otpVerifications metric.Int64Counter
	codeRedemptions  metric.Int64Counter
	suspiciousLogins metric.Int64Counter
}

// NewMetrics creates every instrument once from meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	m := &Metrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		help string
	}{
		{&m.guardDecisions, "access_guard_decisions_total", "Brute-force guard decisions by action and outcome."},
		{&m.lockouts, "access_lockouts_total", "Lockouts started by action."},
		{&m.otpIssued, "access_otp_issued_total", "OTP challenges issued by channel."},
		{&m.otpVerifications, "access_otp_verifications_total", "OTP verifications by reason."},
		{&m.codeRedemptions, "access_code_redemptions_total", "Access code redemptions by reason."},
		{&m.suspiciousLogins, "access_suspicious_logins_total", "Logins flagged as coming from a new location."},
	}
	for _, c := range counters {
		ins, err := meter.Int64Counter(c.name, metric.WithDescription(c.help))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
		*c.dst = ins
	}
	return m, nil
}

func (m *Metrics) guardDecision(ctx context.Context, action domain.Action, outcome string) {
	if m == nil {
		return
	}
	m.guardDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(action)),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) lockout(ctx context.Context, action domain.Action) {
	if m == nil {
		return
	}
	m.lockouts.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action))))
}

func (m *Metrics) otpIssue(ctx context.Context, channel domain.Channel) {
	if m == nil {
		return
	}
	m.otpIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", string(channel))))
}

func (m *Metrics) otpVerification(ctx context.Context, reason domain.Reason) {
	if m == nil {
		return
	}
	m.otpVerifications.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reasonLabel(reason))))
}

func (m *Metrics) codeRedemption(ctx context.Context, reason domain.Reason) {
	if m == nil {
		return
	}
	m.codeRedemptions.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reasonLabel(reason))))
}

func (m *Metrics) suspiciousLogin(ctx context.Context) {
	if m == nil {
		return
	}
	m.suspiciousLogins.Add(ctx, 1)
}

func reasonLabel(r domain.Reason) string {
	if r == domain.ReasonNone {
		return "ok"
	}
	return string(r)
}
