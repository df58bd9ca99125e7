package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/cryptox"
	"github.com/aussiebroadwan/careshare/pkg/idx"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

const (
	DefaultAccessCodeTTLDays = 30
	MaxAccessCodeTTLDays     = 365

	// maxCodeAttempts bounds retries on an 80-bit code collision, which in
	// practice never happens twice.
	maxCodeAttempts = 5
)

var (
	// ErrOutOfScope is returned when a grant does not cover a document.
	ErrOutOfScope = errors.New("document outside grant scope")

	errCodeAlreadyRevoked = errors.New("access code already revoked")
)

// AccessCodeService manages sharing codes and enforces their scope. It is
// the single place that decides which documents a grant may read.
type AccessCodeService struct {
	Store   store.Store
	Guard   *Guard
	Events  *EventLog
	Metrics *Metrics
	Now     func() time.Time

	// Grants signs viewer grant tokens after a successful redemption.
	Grants   *jwtx.KeyManager
	Issuer   string
	GrantTTL time.Duration
}

func (s *AccessCodeService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue creates a new code for ownerID. The plaintext is only available in
// the returned value.
func (s *AccessCodeService) Issue(
	ctx context.Context,
	ownerID string,
	scope domain.Scope,
	targetDocumentID string,
	ttlDays int,
) (domain.IssuedAccessCode, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the request.
	if strings.TrimSpace(ownerID) == "" {
		return domain.IssuedAccessCode{}, validationError("owner is required")
	}
	if err := validateTTLDays(ttlDays); err != nil {
		return domain.IssuedAccessCode{}, err
	}
	if err := s.validateScope(ctx, ownerID, scope, targetDocumentID); err != nil {
		return domain.IssuedAccessCode{}, err
	}

	// 2. Generate and store, retrying on a hash collision.
	now := s.now()
	var issued domain.IssuedAccessCode
	for attempt := 0; ; attempt++ {
		candidate, err := newAccessCode(ownerID, scope, targetDocumentID, ttlDays, now)
		if err != nil {
			return domain.IssuedAccessCode{}, err
		}

		err = s.Store.AccessCodes().CreateAccessCode(ctx, candidate.AccessCode)
		if err == nil {
			issued = candidate
			break
		}
		if errors.Is(err, store.ErrAlreadyExists) && attempt+1 < maxCodeAttempts {
			log.Warn("access code collision, retrying", slog.Int("attempt", attempt+1))
			continue
		}
		log.Error("failed to create access code", slog.Any("error", err))
		return domain.IssuedAccessCode{}, unavailable("create access code", err)
	}

	s.Events.Record(ctx, domain.EventAccessCodeIssued, ownerID, domain.RiskLow, codeDetails(issued.AccessCode))
	return issued, nil
}

// Verify redeems a code with an identity claim. Every call goes through the
// guard keyed by the code prefix. Failures carry a reason for logs only.
func (s *AccessCodeService) Verify(ctx context.Context, code string, claim domain.IdentityClaim) (domain.Grant, error) {
	// 1. Reject malformed input before touching the guard.
	normalized, err := cryptox.NormalizeAccessCode(code)
	if err != nil {
		return domain.Grant{}, validationError("malformed access code")
	}
	if err := validateClaim(claim); err != nil {
		return domain.Grant{}, err
	}
	prefix := cryptox.AccessCodePrefix(normalized)

	// Once started, a redemption commits or fails as a whole.
	ctx = context.WithoutCancel(ctx)

	// 2. Guarded verification.
	var (
		grant   domain.Grant
		ownerID string
	)
	_, err = s.Guard.Protect(ctx, prefix, domain.ActionAccessCodeRedemption, func(ctx context.Context) (bool, error) {
		var err error
		grant, ownerID, err = s.verify(ctx, normalized, claim)
		if err != nil {
			return false, err
		}
		return grant.Granted, nil
	})
	if err != nil {
		return domain.Grant{}, err
	}

	// 3. Audit.
	details := map[string]string{"code_prefix": prefix}
	if grant.Granted {
		details["code_id"] = grant.CodeID
		details["scope"] = string(grant.Scope)
		s.Events.Record(ctx, domain.EventAccessCodeRedeemed, ownerID, domain.RiskLow, details)
	} else {
		details["reason"] = string(grant.Reason)
		s.Events.Record(ctx, domain.EventAccessCodeRedemptionFailed, ownerID, domain.RiskMedium, details)
	}
	s.Metrics.codeRedemption(ctx, grant.Reason)

	return grant, nil
}

func (s *AccessCodeService) verify(ctx context.Context, normalized string, claim domain.IdentityClaim) (domain.Grant, string, error) {
	now := s.now()

	c, err := s.Store.AccessCodes().GetAccessCodeByHash(ctx, cryptox.FingerprintToken(normalized))
	if errors.Is(err, store.ErrNotFound) {
		return denyGrant(domain.ReasonInvalidOrExpired), "", nil
	}
	if err != nil {
		return domain.Grant{}, "", unavailable("get access code", err)
	}

	if !c.ActiveAt(now) {
		return denyGrant(domain.ReasonInvalidOrExpired), c.OwnerID, nil
	}

	profile, err := s.Store.Profiles().GetProfile(ctx, c.OwnerID)
	if errors.Is(err, store.ErrNotFound) {
		return denyGrant(domain.ReasonIdentityMismatch), c.OwnerID, nil
	}
	if err != nil {
		return domain.Grant{}, "", unavailable("get profile", err)
	}
	if !profile.Matches(claim) {
		return denyGrant(domain.ReasonIdentityMismatch), c.OwnerID, nil
	}

	return domain.Grant{
		Granted:          true,
		Scope:            c.Scope,
		TargetDocumentID: c.TargetDocumentID,
		OwnerID:          c.OwnerID,
		CodeID:           c.ID,
	}, c.OwnerID, nil
}

// Extend pushes the expiry of a non-revoked code to
// max(expiresAt, now) + additionalDays. It reports false when the code is
// revoked or not one of the owner's codes.
func (s *AccessCodeService) Extend(ctx context.Context, ownerID, code string, additionalDays int) (domain.AccessCode, bool, error) {
	if err := validateTTLDays(additionalDays); err != nil {
		return domain.AccessCode{}, false, err
	}
	c, err := s.ownedCode(ctx, ownerID, code)
	if errors.Is(err, ErrNotFound) {
		return domain.AccessCode{}, false, nil
	}
	if err != nil {
		return domain.AccessCode{}, false, err
	}

	updated, ok, err := s.Store.AccessCodes().ExtendAccessCode(ctx, c.ID, s.now(), time.Duration(additionalDays)*24*time.Hour)
	if err != nil {
		return domain.AccessCode{}, false, unavailable("extend access code", err)
	}
	if !ok {
		return domain.AccessCode{}, false, nil
	}

	details := codeDetails(updated)
	details["expires_at"] = updated.ExpiresAt.Format(time.RFC3339)
	s.Events.Record(ctx, domain.EventAccessCodeExtended, ownerID, domain.RiskLow, details)
	return updated, true, nil
}

// Regenerate revokes code and issues a replacement with the same scope in
// one transaction. The old code stops verifying as soon as this returns.
func (s *AccessCodeService) Regenerate(ctx context.Context, ownerID, code string, ttlDays int) (domain.IssuedAccessCode, error) {
	log := slogx.FromContext(ctx)

	if err := validateTTLDays(ttlDays); err != nil {
		return domain.IssuedAccessCode{}, err
	}
	old, err := s.ownedCode(ctx, ownerID, code)
	if err != nil {
		return domain.IssuedAccessCode{}, err
	}
	if old.Revoked {
		return domain.IssuedAccessCode{}, ErrNotFound
	}

	now := s.now()
	var issued domain.IssuedAccessCode
	for attempt := 0; ; attempt++ {
		candidate, err := newAccessCode(ownerID, old.Scope, old.TargetDocumentID, ttlDays, now)
		if err != nil {
			return domain.IssuedAccessCode{}, err
		}
		candidate.Supersedes = old.ID

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			revoked, err := tx.AccessCodes().RevokeAccessCode(ctx, old.ID, now)
			if err != nil {
				return err
			}
			if !revoked {
				return errCodeAlreadyRevoked
			}
			return tx.AccessCodes().CreateAccessCode(ctx, candidate.AccessCode)
		})
		if err == nil {
			issued = candidate
			break
		}
		if errors.Is(err, errCodeAlreadyRevoked) {
			return domain.IssuedAccessCode{}, ErrNotFound
		}
		if errors.Is(err, store.ErrAlreadyExists) && attempt+1 < maxCodeAttempts {
			log.Warn("access code collision, retrying", slog.Int("attempt", attempt+1))
			continue
		}
		log.Error("failed to regenerate access code", slog.Any("error", err))
		return domain.IssuedAccessCode{}, unavailable("regenerate access code", err)
	}

	details := codeDetails(issued.AccessCode)
	details["old_code_prefix"] = old.CodePrefix
	details["supersedes"] = old.ID
	s.Events.Record(ctx, domain.EventAccessCodeRegenerated, ownerID, domain.RiskLow, details)
	return issued, nil
}

// Revoke is idempotent. It reports whether the code exists for the owner.
func (s *AccessCodeService) Revoke(ctx context.Context, ownerID, code string) (bool, error) {
	c, err := s.ownedCode(ctx, ownerID, code)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	changed, err := s.Store.AccessCodes().RevokeAccessCode(ctx, c.ID, s.now())
	if err != nil {
		return false, unavailable("revoke access code", err)
	}
	if changed {
		s.Events.Record(ctx, domain.EventAccessCodeRevoked, ownerID, domain.RiskLow, codeDetails(c))
	}
	return true, nil
}

// List returns the owner's codes, newest first.
func (s *AccessCodeService) List(ctx context.Context, ownerID string) ([]domain.AccessCode, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, validationError("owner is required")
	}
	codes, err := s.Store.AccessCodes().ListAccessCodesByOwner(ctx, ownerID)
	if err != nil {
		return nil, unavailable("list access codes", err)
	}
	return codes, nil
}

// ResolveAccessibleDocuments lists exactly the documents a grant covers.
func (s *AccessCodeService) ResolveAccessibleDocuments(ctx context.Context, grant domain.Grant) ([]domain.Document, error) {
	if !grant.Granted {
		return nil, ErrOutOfScope
	}

	switch grant.Scope {
	case domain.ScopeFull:
		docs, err := s.Store.Documents().ListDocumentsByOwner(ctx, grant.OwnerID)
		if err != nil {
			return nil, unavailable("list documents", err)
		}
		return docs, nil

	case domain.ScopeSingleDocument:
		doc, err := s.Store.Documents().GetDocument(ctx, grant.TargetDocumentID)
		if errors.Is(err, store.ErrNotFound) {
			return []domain.Document{}, nil
		}
		if err != nil {
			return nil, unavailable("get document", err)
		}
		if !grant.Permits(doc) {
			return []domain.Document{}, nil
		}
		return []domain.Document{doc}, nil
	}

	return nil, ErrOutOfScope
}

// AuthorizeDocument returns the document when the grant covers it. Missing
// documents and documents outside the grant both yield ErrOutOfScope so the
// caller cannot probe for other owners' documents.
func (s *AccessCodeService) AuthorizeDocument(ctx context.Context, grant domain.Grant, documentID string) (domain.Document, error) {
	doc, err := s.Store.Documents().GetDocument(ctx, documentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.Document{}, unavailable("get document", err)
	}

	if err != nil || !grant.Permits(doc) {
		s.Events.Record(ctx, domain.EventDocumentAccessDenied, grant.OwnerID, domain.RiskMedium, map[string]string{
			"document_id": documentID,
			"code_id":     grant.CodeID,
			"reason":      string(domain.ReasonOutOfScope),
		})
		return domain.Document{}, ErrOutOfScope
	}
	return doc, nil
}

// MintGrantToken signs a short-lived viewer token for a granted redemption.
func (s *AccessCodeService) MintGrantToken(grant domain.Grant) (string, time.Duration, error) {
	if !grant.Granted {
		return "", 0, ErrOutOfScope
	}
	if s.Grants == nil {
		return "", 0, errors.New("grant signer not configured")
	}

	ttl := s.GrantTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultGrantTTL
	}

	claims := jwtx.NewGrantClaims(grant.OwnerID, grant.CodeID, string(grant.Scope), grant.TargetDocumentID, ttl, s.Issuer, s.now())
	token, err := s.Grants.GetSigner().Sign(claims)
	if err != nil {
		return "", 0, fmt.Errorf("sign grant: %w", err)
	}
	return token, ttl, nil
}

// GrantFromClaims rebuilds a grant from a verified viewer token and checks
// that its code has not been revoked or expired since the token was minted.
func (s *AccessCodeService) GrantFromClaims(ctx context.Context, claims jwtx.Claims) (domain.Grant, error) {
	if !claims.IsGrant() {
		return domain.Grant{}, ErrOutOfScope
	}

	c, err := s.Store.AccessCodes().GetAccessCodeByID(ctx, claims.CodeID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Grant{}, ErrExpired
	}
	if err != nil {
		return domain.Grant{}, unavailable("get access code", err)
	}
	if !c.ActiveAt(s.now()) || c.OwnerID != claims.Subject {
		return domain.Grant{}, ErrExpired
	}

	return domain.Grant{
		Granted:          true,
		Scope:            c.Scope,
		TargetDocumentID: c.TargetDocumentID,
		OwnerID:          c.OwnerID,
		CodeID:           c.ID,
	}, nil
}

// ownedCode looks up a code by its plaintext and hides codes of other owners.
func (s *AccessCodeService) ownedCode(ctx context.Context, ownerID, code string) (domain.AccessCode, error) {
	if strings.TrimSpace(ownerID) == "" {
		return domain.AccessCode{}, validationError("owner is required")
	}
	normalized, err := cryptox.NormalizeAccessCode(code)
	if err != nil {
		return domain.AccessCode{}, validationError("malformed access code")
	}

	c, err := s.Store.AccessCodes().GetAccessCodeByHash(ctx, cryptox.FingerprintToken(normalized))
	if errors.Is(err, store.ErrNotFound) {
		return domain.AccessCode{}, ErrNotFound
	}
	if err != nil {
		return domain.AccessCode{}, unavailable("get access code", err)
	}
	if c.OwnerID != ownerID {
		return domain.AccessCode{}, ErrNotFound
	}
	return c, nil
}

func (s *AccessCodeService) validateScope(ctx context.Context, ownerID string, scope domain.Scope, targetDocumentID string) error {
	switch scope {
	case domain.ScopeFull:
		if targetDocumentID != "" {
			return validationError("target document must be empty for full scope")
		}
		return nil

	case domain.ScopeSingleDocument:
		if targetDocumentID == "" {
			return validationError("target document is required for single document scope")
		}
		doc, err := s.Store.Documents().GetDocument(ctx, targetDocumentID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && doc.OwnerID != ownerID) {
			return validationError("target document not found")
		}
		if err != nil {
			return unavailable("get document", err)
		}
		return nil
	}
	return validationError("%v: %q", domain.ErrUnknownScope, scope)
}

func newAccessCode(ownerID string, scope domain.Scope, targetDocumentID string, ttlDays int, now time.Time) (domain.IssuedAccessCode, error) {
	code, err := cryptox.GenerateAccessCode()
	if err != nil {
		return domain.IssuedAccessCode{}, fmt.Errorf("generate access code: %w", err)
	}
	return domain.IssuedAccessCode{
		AccessCode: domain.AccessCode{
			ID:               idx.NewAt(now).String(),
			CodeHash:         cryptox.FingerprintToken(code),
			CodePrefix:       cryptox.AccessCodePrefix(code),
			OwnerID:          ownerID,
			Scope:            scope,
			TargetDocumentID: targetDocumentID,
			CreatedAt:        now,
			ExpiresAt:        now.Add(time.Duration(ttlDays) * 24 * time.Hour),
		},
		Code: code,
	}, nil
}

func validateTTLDays(days int) error {
	if days < 1 || days > MaxAccessCodeTTLDays {
		return validationError("days must be between 1 and %d", MaxAccessCodeTTLDays)
	}
	return nil
}

func validateClaim(c domain.IdentityClaim) error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return validationError("first and last name are required")
	}
	if c.BirthDate.IsZero() {
		return validationError("birth date is required")
	}
	return nil
}

func denyGrant(reason domain.Reason) domain.Grant {
	return domain.Grant{Granted: false, Reason: reason}
}

func codeDetails(c domain.AccessCode) map[string]string {
	d := map[string]string{
		"code_id":     c.ID,
		"code_prefix": c.CodePrefix,
		"scope":       string(c.Scope),
	}
	if c.TargetDocumentID != "" {
		d["target_document_id"] = c.TargetDocumentID
	}
	return d
}
