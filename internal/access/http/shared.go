package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
)

// SharedDocumentsHandler serves grant holders. The grant is rebuilt from
// the current state of its access code on every request.
type SharedDocumentsHandler struct {
	AccessCodeService *service.AccessCodeService
}

func (h *SharedDocumentsHandler) grant(w http.ResponseWriter, r *http.Request) (domain.Grant, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		accesssdk.ErrInvalidToken.WriteError(w)
		return domain.Grant{}, false
	}

	grant, err := h.AccessCodeService.GrantFromClaims(r.Context(), claims)
	switch {
	case err == nil:
		return grant, true
	case errors.Is(err, service.ErrExpired), errors.Is(err, service.ErrOutOfScope):
		accesssdk.ErrInvalidToken.WriteError(w)
	default:
		writeServiceError(w, r, err, "failed to load grant")
	}
	return domain.Grant{}, false
}

// HandleList godoc
//
//	@Summary		List Shared Documents
//	@Description	Lists exactly the documents the grant token covers.
//	@Tags			Shared Documents
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accesssdk.SharedDocumentsResponse	"owner_id, documents"
//	@Failure		401	{object}	accesssdk.APIError					"invalid_token"
//	@Failure		502	{object}	accesssdk.APIError					"store unavailable"
//	@Router			/v1/shared/documents [get].
func (h *SharedDocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	grant, ok := h.grant(w, r)
	if !ok {
		return
	}

	docs, err := h.AccessCodeService.ResolveAccessibleDocuments(r.Context(), grant)
	if err != nil {
		writeServiceError(w, r, err, "failed to resolve shared documents")
		return
	}

	out := accesssdk.SharedDocumentsResponse{
		OwnerID:   grant.OwnerID,
		Documents: make([]accesssdk.SharedDocument, 0, len(docs)),
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, toSharedDocument(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get Shared Document
//	@Description	Returns the metadata of one document if the grant token covers it.
//	@Tags			Shared Documents
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string						true	"Document ID"
//	@Success		200	{object}	accesssdk.SharedDocument	"document metadata"
//	@Failure		401	{object}	accesssdk.APIError			"invalid_token"
//	@Failure		403	{object}	accesssdk.APIError			"access_denied"
//	@Router			/v1/shared/documents/{id} [get].
func (h *SharedDocumentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	grant, ok := h.grant(w, r)
	if !ok {
		return
	}

	doc, err := h.AccessCodeService.AuthorizeDocument(r.Context(), grant, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to authorize document")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSharedDocument(doc))
}
