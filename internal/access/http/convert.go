package http

import (
	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
)

func toAccessCodeResponse(c domain.AccessCode, plaintext string) accesssdk.AccessCodeResponse {
	return accesssdk.AccessCodeResponse{
		ID:               c.ID,
		Code:             plaintext,
		CodePrefix:       c.CodePrefix,
		Scope:            string(c.Scope),
		TargetDocumentID: c.TargetDocumentID,
		CreatedAt:        c.CreatedAt,
		ExpiresAt:        c.ExpiresAt,
		Revoked:          c.Revoked,
		RevokedAt:        c.RevokedAt,
		Supersedes:       c.Supersedes,
	}
}

func toSharedDocument(d domain.Document) accesssdk.SharedDocument {
	return accesssdk.SharedDocument{
		ID:        d.ID,
		Title:     d.Title,
		Kind:      d.Kind,
		UpdatedAt: d.UpdatedAt,
	}
}

func toSecurityEventResponse(e domain.SecurityEvent) accesssdk.SecurityEventResponse {
	return accesssdk.SecurityEventResponse{
		ID:        e.ID,
		EventType: e.EventType,
		ActorID:   e.ActorID,
		RiskLevel: string(e.RiskLevel),
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}

func toGuardDecisionResponse(d domain.AttemptDecision) accesssdk.GuardDecisionResponse {
	return accesssdk.GuardDecisionResponse{
		Allowed:           d.Allowed,
		RemainingAttempts: d.RemainingAttempts,
		LockoutMinutes:    d.LockoutMinutes,
		LockoutUntil:      d.LockoutUntil,
	}
}
