package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
)

// DirectoryHandler receives profile and document index updates from the
// main application.
type DirectoryHandler struct {
	DirectoryService *service.DirectoryService
}

// HandlePutProfile godoc
//
//	@Summary		Sync Profile
//	@Description	Stores the identity fields access code redemptions are compared with.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Accept			json
//	@Param			owner_id	path	string						true	"Owner ID"
//	@Param			request		body	accesssdk.ProfileRequest	true	"first_name, last_name, birth_date"
//	@Success		204
//	@Failure		400	{object}	accesssdk.APIError	"error, error_description"
//	@Router			/v1/internal/profiles/{owner_id} [put].
func (h *DirectoryHandler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req accesssdk.ProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	birthDate, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.BirthDate))
	if err != nil {
		accesssdk.NewValidationError("birth_date must be YYYY-MM-DD").WriteError(w)
		return
	}

	err = h.DirectoryService.PutProfile(r.Context(), domain.Profile{
		OwnerID:   r.PathValue("owner_id"),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to store profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePutDocument godoc
//
//	@Summary		Sync Document
//	@Description	Indexes a document under its owner. A document cannot move to another owner.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Accept			json
//	@Param			id		path	string						true	"Document ID"
//	@Param			request	body	accesssdk.DocumentRequest	true	"owner_id, title, kind"
//	@Success		204
//	@Failure		400	{object}	accesssdk.APIError	"error, error_description"
//	@Router			/v1/internal/documents/{id} [put].
func (h *DirectoryHandler) HandlePutDocument(w http.ResponseWriter, r *http.Request) {
	var req accesssdk.DocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.DirectoryService.PutDocument(r.Context(), domain.Document{
		ID:      r.PathValue("id"),
		OwnerID: req.OwnerID,
		Title:   req.Title,
		Kind:    req.Kind,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to store document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteDocument godoc
//
//	@Summary		Remove Document
//	@Description	Removes a document from the index so no grant can reach it.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Document ID"
//	@Success		204
//	@Failure		404	{object}	accesssdk.APIError	"not_found"
//	@Router			/v1/internal/documents/{id} [delete].
func (h *DirectoryHandler) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.DirectoryService.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
