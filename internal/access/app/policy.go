package app

import (
	"fmt"
	"os"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"gopkg.in/yaml.v3"
)

// PolicyFile is the YAML form of the lockout policy. Fields left out keep
// their default.
//
//	escalation_reset_after: 24h
//	actions:
//	  access_code_redemption:
//	    threshold: 3
//	    base_lockout: 30m
type PolicyFile struct {
	EscalationResetAfter time.Duration                `yaml:"escalation_reset_after"`
	Actions              map[string]ActionPolicyEntry `yaml:"actions"`
}

type ActionPolicyEntry struct {
	Threshold   int           `yaml:"threshold"`
	Window      time.Duration `yaml:"window"`
	BaseLockout time.Duration `yaml:"base_lockout"`
	Multiplier  int           `yaml:"multiplier"`
	MaxLockout  time.Duration `yaml:"max_lockout"`
}

// LoadPolicy reads a lockout policy from path. An empty path yields the
// default policy.
func LoadPolicy(path string) (service.LockoutPolicy, error) {
	policy := service.DefaultLockoutPolicy()
	if path == "" {
		return policy, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return service.LockoutPolicy{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(b)
}

// ParsePolicy overlays a YAML document on the default policy.
func ParsePolicy(b []byte) (service.LockoutPolicy, error) {
	policy := service.DefaultLockoutPolicy()

	var f PolicyFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return service.LockoutPolicy{}, fmt.Errorf("parse policy file: %w", err)
	}

	if f.EscalationResetAfter > 0 {
		policy.EscalationResetAfter = f.EscalationResetAfter
	}
	for name, entry := range f.Actions {
		action, err := domain.ParseAction(name)
		if err != nil {
			return service.LockoutPolicy{}, fmt.Errorf("policy file: %w: %q", err, name)
		}
		policy.Actions[action] = entry.apply(policy.For(action))
	}

	if err := policy.Validate(); err != nil {
		return service.LockoutPolicy{}, err
	}
	return policy, nil
}

func (e ActionPolicyEntry) apply(ap service.ActionPolicy) service.ActionPolicy {
	if e.Threshold != 0 {
		ap.Threshold = e.Threshold
	}
	if e.Window != 0 {
		ap.Window = e.Window
	}
	if e.BaseLockout != 0 {
		ap.BaseLockout = e.BaseLockout
	}
	if e.Multiplier != 0 {
		ap.Multiplier = e.Multiplier
	}
	if e.MaxLockout != 0 {
		ap.MaxLockout = e.MaxLockout
	}
	return ap
}
