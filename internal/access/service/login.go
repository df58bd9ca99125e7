package service

import (
	"context"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
)

// LoginAssessment is what the external auth service needs before checking a
// password.
type LoginAssessment struct {
	Allowed           bool
	RemainingAttempts int
	LockoutMinutes    *int
	OTPRequired       bool
}

// LoginService combines the guard and the anomaly detector for password
// logins performed elsewhere.
type LoginService struct {
	Guard   *Guard
	Anomaly *AnomalyDetector
}

// Assess checks the guard and, when allowed, whether the login location is
// unusual enough to require an OTP challenge.
func (s *LoginService) Assess(ctx context.Context, identifier string, lc domain.LoginContext) (LoginAssessment, error) {
	decision, err := s.Guard.CheckAttempt(ctx, identifier, domain.ActionLogin)
	if err != nil {
		return LoginAssessment{}, err
	}
	if !decision.Allowed {
		return LoginAssessment{
			Allowed:        false,
			LockoutMinutes: decision.LockoutMinutes,
		}, nil
	}

	return LoginAssessment{
		Allowed:           true,
		RemainingAttempts: decision.RemainingAttempts,
		OTPRequired:       s.Anomaly.IsSuspiciousLocation(ctx, identifier, lc),
	}, nil
}

// Complete records the outcome of the password check. A successful login
// also becomes part of the location history.
func (s *LoginService) Complete(ctx context.Context, identifier string, lc domain.LoginContext, success bool) error {
	if !success {
		_, err := s.Guard.RecordFailure(ctx, identifier, domain.ActionLogin)
		return err
	}

	if err := s.Guard.RecordSuccess(ctx, identifier, domain.ActionLogin); err != nil {
		return err
	}
	s.Anomaly.RecordLogin(ctx, identifier, lc)
	return nil
}
