package accesssdk

import (
	"context"
	"net/http"
	"net/url"
)

// InternalClient is used by sibling services holding the internal token.
type InternalClient struct {
	c     *Client
	token string
}

// CheckAttempt asks the guard whether an attempt may proceed.
func (i *InternalClient) CheckAttempt(ctx context.Context, req GuardRequest) (*GuardDecisionResponse, error) {
	var out GuardDecisionResponse
	if err := i.c.call(ctx, http.MethodPost, "/v1/internal/guard/check", i.token, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordSuccess clears the guard counter after a successful verification.
func (i *InternalClient) RecordSuccess(ctx context.Context, req GuardRequest) error {
	return i.c.call(ctx, http.MethodPost, "/v1/internal/guard/success", i.token, req, nil, http.StatusNoContent)
}

// RecordFailure counts a failed verification.
func (i *InternalClient) RecordFailure(ctx context.Context, req GuardRequest) error {
	return i.c.call(ctx, http.MethodPost, "/v1/internal/guard/failure", i.token, req, nil, http.StatusNoContent)
}

// AssessLogin combines the guard check with the location heuristic.
func (i *InternalClient) AssessLogin(ctx context.Context, req LoginAssessRequest) (*LoginAssessResponse, error) {
	var out LoginAssessResponse
	if err := i.c.call(ctx, http.MethodPost, "/v1/internal/login/assess", i.token, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteLogin reports the password check outcome.
func (i *InternalClient) CompleteLogin(ctx context.Context, req LoginCompleteRequest) error {
	return i.c.call(ctx, http.MethodPost, "/v1/internal/login/complete", i.token, req, nil, http.StatusNoContent)
}

// PutProfile syncs an owner's identity fields.
func (i *InternalClient) PutProfile(ctx context.Context, ownerID string, req ProfileRequest) error {
	path := "/v1/internal/profiles/" + url.PathEscape(ownerID)
	return i.c.call(ctx, http.MethodPut, path, i.token, req, nil, http.StatusNoContent)
}

// PutDocument syncs a document's metadata.
func (i *InternalClient) PutDocument(ctx context.Context, documentID string, req DocumentRequest) error {
	path := "/v1/internal/documents/" + url.PathEscape(documentID)
	return i.c.call(ctx, http.MethodPut, path, i.token, req, nil, http.StatusNoContent)
}

// DeleteDocument removes a document from the index.
func (i *InternalClient) DeleteDocument(ctx context.Context, documentID string) error {
	path := "/v1/internal/documents/" + url.PathEscape(documentID)
	return i.c.call(ctx, http.MethodDelete, path, i.token, nil, nil, http.StatusNoContent)
}
