package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{
		tx: tx,
		q:  gen.New(tx),
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) AttemptCounters() store.AttemptCounters { return &attemptCountersRepo{q: t.q} }
func (t *txStore) OTPChallenges() store.OTPChallenges     { return &otpChallengesRepo{q: t.q} }
func (t *txStore) AccessCodes() store.AccessCodes         { return &accessCodesRepo{q: t.q} }
func (t *txStore) SecurityEvents() store.SecurityEvents   { return &securityEventsRepo{q: t.q} }
func (t *txStore) Profiles() store.Profiles               { return &profilesRepo{q: t.q} }
func (t *txStore) Documents() store.Documents             { return &documentsRepo{q: t.q} }
func (t *txStore) LoginLocations() store.LoginLocations   { return &loginLocationsRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
