package accesssdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// OwnerClient performs operations on behalf of a document owner.
type OwnerClient struct {
	c     *Client
	token string
}

// IssueAccessCode creates a new code. The plaintext is only returned here.
func (o *OwnerClient) IssueAccessCode(ctx context.Context, req IssueAccessCodeRequest) (*AccessCodeResponse, error) {
	var out AccessCodeResponse
	if err := o.c.call(ctx, http.MethodPost, "/v1/access-codes", o.token, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAccessCodes returns the owner's codes, newest first.
func (o *OwnerClient) ListAccessCodes(ctx context.Context) (*ListAccessCodesResponse, error) {
	var out ListAccessCodesResponse
	if err := o.c.call(ctx, http.MethodGet, "/v1/access-codes", o.token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtendAccessCode pushes a code's expiry forward.
func (o *OwnerClient) ExtendAccessCode(ctx context.Context, req ExtendAccessCodeRequest) (*ExtendAccessCodeResponse, error) {
	var out ExtendAccessCodeResponse
	if err := o.c.call(ctx, http.MethodPost, "/v1/access-codes/extend", o.token, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegenerateAccessCode revokes a code and issues its replacement.
func (o *OwnerClient) RegenerateAccessCode(ctx context.Context, req RegenerateAccessCodeRequest) (*AccessCodeResponse, error) {
	var out AccessCodeResponse
	if err := o.c.call(ctx, http.MethodPost, "/v1/access-codes/regenerate", o.token, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeAccessCode revokes a code. Revoking twice is fine.
func (o *OwnerClient) RevokeAccessCode(ctx context.Context, code string) (*RevokeAccessCodeResponse, error) {
	var out RevokeAccessCodeResponse
	req := RevokeAccessCodeRequest{Code: code}
	if err := o.c.call(ctx, http.MethodPost, "/v1/access-codes/revoke", o.token, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSecurityEvents reads the audit feed.
// Requires: audit:read scope
func (o *OwnerClient) ListSecurityEvents(ctx context.Context, q SecurityEventsQuery) (*SecurityEventsResponse, error) {
	params := url.Values{}
	if q.ActorID != "" {
		params.Set("actor", q.ActorID)
	}
	if q.MinRisk != "" {
		params.Set("min_risk", q.MinRisk)
	}
	if q.Since != nil {
		params.Set("since", q.Since.UTC().Format(time.RFC3339))
	}
	if q.Before != "" {
		params.Set("before", q.Before)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/v1/security-events"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out SecurityEventsResponse
	if err := o.c.call(ctx, http.MethodGet, path, o.token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
