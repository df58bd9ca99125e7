package sqlite

import (
	"context"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

type documentsRepo struct {
	q *gen.Queries
}

func (r *documentsRepo) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	row, err := r.q.GetDocument(ctx, id)
	if err != nil {
		return domain.Document{}, mapNotFound(err)
	}
	return mapDocument(row), nil
}

func (r *documentsRepo) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := r.q.ListDocumentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, mapDocument(row))
	}
	return docs, nil
}

func (r *documentsRepo) UpsertDocument(ctx context.Context, d domain.Document) error {
	return r.q.UpsertDocument(ctx, gen.UpsertDocumentParams{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Kind:      d.Kind,
		UpdatedAt: toMillis(d.UpdatedAt),
	})
}

func (r *documentsRepo) DeleteDocument(ctx context.Context, id string) error {
	n, err := r.q.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapDocument(row gen.Document) domain.Document {
	return domain.Document{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Title:     row.Title,
		Kind:      row.Kind,
		UpdatedAt: fromMillis(row.UpdatedAt),
	}
}
