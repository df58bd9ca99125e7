package accesssdk

import (
	"context"
	"net/http"
	"net/url"
)

// ViewerClient browses shared documents with a grant token.
type ViewerClient struct {
	c     *Client
	token string
}

// ListSharedDocuments lists every document the grant covers.
func (v *ViewerClient) ListSharedDocuments(ctx context.Context) (*SharedDocumentsResponse, error) {
	var out SharedDocumentsResponse
	if err := v.c.call(ctx, http.MethodGet, "/v1/shared/documents", v.token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSharedDocument returns one document, or ErrAccessDenied when the grant
// does not cover it.
func (v *ViewerClient) GetSharedDocument(ctx context.Context, documentID string) (*SharedDocument, error) {
	var out SharedDocument
	path := "/v1/shared/documents/" + url.PathEscape(documentID)
	if err := v.c.call(ctx, http.MethodGet, path, v.token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
