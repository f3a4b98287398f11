// Package postgres implements the storage contracts against PostgreSQL
// using pgx. Targets are stored as JSONB arrays so target filtering and the
// object-privacy rule map onto JSONB containment.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// Storage is a storage.Provider backed by a pgx connection pool.
type Storage struct {
	db *pgxpool.Pool
}

// New wraps an existing pool.
func New(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Programs() storage.ProgramRepository           { return &programStore{db: s.db} }
func (s *Storage) Events() storage.EventRepository               { return &eventStore{db: s.db} }
func (s *Storage) Reports() storage.ReportRepository             { return &reportStore{db: s.db} }
func (s *Storage) Vens() storage.VenRepository                   { return &venStore{db: s.db} }
func (s *Storage) Resources() storage.ResourceRepository         { return &resourceStore{db: s.db} }
func (s *Storage) Subscriptions() storage.SubscriptionRepository { return &subscriptionStore{db: s.db} }
func (s *Storage) VenPrivacy() storage.VenPrivacy                { return &privacyStore{db: s.db} }
func (s *Storage) Credentials() storage.CredentialStore          { return &credentialStore{db: s.db} }

// ConnectionActive reports whether the pool can still reach the database.
func (s *Storage) ConnectionActive() bool {
	return s.db.Ping(context.Background()) == nil
}

// Migrate applies the schema. Idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	log.Info().Msg("database schema up to date")
	return nil
}

// mapError translates driver errors into the application taxonomy.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return apperr.Conflict("conflict: %s", pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return apperr.Conflict("conflict: %s", pgErr.ConstraintName)
		}
	}
	return apperr.Storage(err)
}

// jsonColumn marshals v for a JSONB parameter. Nil Targets become an empty
// array and an untyped nil becomes SQL NULL; any other nil slice or pointer
// is marshalled to the JSON value null.
func jsonColumn(v any) (any, error) {
	switch t := v.(type) {
	case wire.Targets:
		if t == nil {
			return []byte("[]"), nil
		}
	case nil:
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return raw, nil
}

// scanJSON decodes a JSONB column into out; NULL leaves out untouched.
func scanJSON(raw []byte, out any) error {
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Error().Err(err).Msg("stored JSON no longer decodes")
		return apperr.Internal(err)
	}
	return nil
}

// privacyEnvelope resolves the caller's privacy target set as a JSONB
// parameter. Unrestricted permissions return nil, disabling the filter. A
// restricted caller without a VEN gets the empty envelope, which leaves
// only untargeted objects visible.
func privacyEnvelope(ctx context.Context, db *pgxpool.Pool, perm storage.Permission) (any, error) {
	if !perm.Restricted {
		return nil, nil
	}
	targets, _, err := (&privacyStore{db: db}).TargetsByClientID(ctx, perm.ClientID)
	if err != nil {
		return nil, err
	}
	if targets == nil {
		targets = wire.Targets{}
	}
	raw, err := json.Marshal(targets)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return raw, nil
}

func clampPagination(p storage.Pagination) (skip, limit int64) {
	skip = p.Skip
	if skip < 0 {
		skip = 0
	}
	limit = p.Limit
	if limit <= 0 || limit > storage.DefaultLimit {
		limit = storage.DefaultLimit
	}
	return skip, limit
}

const schema = `
CREATE TABLE IF NOT EXISTS program (
    id                     text PRIMARY KEY,
    created_date_time      timestamptz NOT NULL,
    modification_date_time timestamptz NOT NULL,
    program_name           text NOT NULL UNIQUE,
    interval_period        jsonb,
    program_descriptions   jsonb,
    payload_descriptors    jsonb,
    attributes             jsonb,
    targets                jsonb NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS event (
    id                     text PRIMARY KEY,
    created_date_time      timestamptz NOT NULL,
    modification_date_time timestamptz NOT NULL,
    program_id             text NOT NULL REFERENCES program (id),
    event_name             text,
    priority               bigint,
    targets                jsonb NOT NULL DEFAULT '[]',
    report_descriptors     jsonb,
    payload_descriptors    jsonb,
    interval_period        jsonb,
    intervals              jsonb NOT NULL
);

CREATE TABLE IF NOT EXISTS report (
    id                     text PRIMARY KEY,
    created_date_time      timestamptz NOT NULL,
    modification_date_time timestamptz NOT NULL,
    program_id             text,
    event_id               text NOT NULL REFERENCES event (id),
    client_id              text NOT NULL,
    client_name            text NOT NULL,
    report_name            text,
    payload_descriptors    jsonb,
    resources              jsonb NOT NULL
);

CREATE TABLE IF NOT EXISTS ven (
    id                     text PRIMARY KEY,
    created_date_time      timestamptz NOT NULL,
    modification_date_time timestamptz NOT NULL,
    client_id              text NOT NULL UNIQUE,
    ven_name               text NOT NULL UNIQUE,
    attributes             jsonb,
    targets                jsonb NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS resource (
    id                     text PRIMARY KEY,
    created_date_time      timestamptz NOT NULL,
    modification_date_time timestamptz NOT NULL,
    ven_id                 text NOT NULL REFERENCES ven (id) ON DELETE RESTRICT,
    resource_name          text NOT NULL,
    attributes             jsonb,
    targets                jsonb NOT NULL DEFAULT '[]',
    UNIQUE (ven_id, resource_name)
);

CREATE TABLE IF NOT EXISTS subscription (
    id                     text PRIMARY KEY,
    created_date_time      timestamptz NOT NULL,
    modification_date_time timestamptz NOT NULL,
    client_id              text NOT NULL,
    client_name            text NOT NULL,
    program_id             text,
    object_operations      jsonb NOT NULL
);

CREATE TABLE IF NOT EXISTS client_credential (
    client_id     text PRIMARY KEY,
    secret_hash   text NOT NULL,
    scopes        text NOT NULL DEFAULT ''
);
`
