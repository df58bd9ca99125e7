package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
)

// DirectoryService keeps the local read models of owner profiles and the
// document index in step with the main application.
type DirectoryService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *DirectoryService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// PutProfile stores the identity an access code redemption is compared with.
func (s *DirectoryService) PutProfile(ctx context.Context, p domain.Profile) error {
	p.OwnerID = strings.TrimSpace(p.OwnerID)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	if p.OwnerID == "" || p.FirstName == "" || p.LastName == "" {
		return validationError("owner, first name and last name are required")
	}
	if p.BirthDate.IsZero() {
		return validationError("birth date is required")
	}
	p.UpdatedAt = s.now()

	if err := s.Store.Profiles().UpsertProfile(ctx, p); err != nil {
		return unavailable("upsert profile", err)
	}
	return nil
}

// PutDocument indexes a document under its owner.
func (s *DirectoryService) PutDocument(ctx context.Context, d domain.Document) error {
	d.ID = strings.TrimSpace(d.ID)
	d.OwnerID = strings.TrimSpace(d.OwnerID)
	if d.ID == "" || d.OwnerID == "" {
		return validationError("document id and owner are required")
	}

	existing, err := s.Store.Documents().GetDocument(ctx, d.ID)
	switch {
	case err == nil && existing.OwnerID != d.OwnerID:
		return validationError("document belongs to another owner")
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return unavailable("get document", err)
	}

	d.UpdatedAt = s.now()
	if err := s.Store.Documents().UpsertDocument(ctx, d); err != nil {
		return unavailable("upsert document", err)
	}
	return nil
}

// DeleteDocument removes a document from the index.
func (s *DirectoryService) DeleteDocument(ctx context.Context, id string) error {
	err := s.Store.Documents().DeleteDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return unavailable("delete document", err)
	}
	return nil
}
