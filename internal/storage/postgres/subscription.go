package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

type subscriptionStore struct {
	db *pgxpool.Pool
}

const subscriptionColumns = `
	id, created_date_time, modification_date_time, client_name, program_id,
	object_operations`

func scanSubscription(row pgx.Row) (wire.Subscription, error) {
	var (
		sub       wire.Subscription
		programID *string
		ops       []byte
	)
	err := row.Scan(&sub.ID, &sub.CreatedDateTime, &sub.ModificationDateTime, &sub.ClientName,
		&programID, &ops)
	if errors.Is(err, pgx.ErrNoRows) {
		return wire.Subscription{}, apperr.NotFound()
	}
	if err != nil {
		return wire.Subscription{}, mapError(err)
	}
	if programID != nil {
		sub.ProgramID = wire.Identifier(*programID)
	}
	if err := scanJSON(ops, &sub.ObjectOperations); err != nil {
		return wire.Subscription{}, err
	}
	return sub, nil
}

func (s *subscriptionStore) Create(ctx context.Context, new storage.NewSubscription, _ storage.Permission) (wire.Subscription, error) {
	ops, err := jsonColumn(new.ObjectOperations)
	if err != nil {
		return wire.Subscription{}, err
	}
	if ops == nil {
		ops = []byte("[]")
	}
	now := time.Now().UTC()

	row := s.db.QueryRow(ctx, `
		INSERT INTO subscription (id, created_date_time, modification_date_time, client_id,
		                          client_name, program_id, object_operations)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+subscriptionColumns,
		uuid.NewString(), now, now, new.ClientID, new.ClientName,
		nullable(string(new.ProgramID)), ops)
	return scanSubscription(row)
}

func (s *subscriptionStore) Retrieve(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Subscription, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscription
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)`,
		id, ownerFilter(perm))
	return scanSubscription(row)
}

func (s *subscriptionStore) RetrieveAll(ctx context.Context, filter storage.SubscriptionFilter, perm storage.Permission) ([]wire.Subscription, error) {
	skip, limit := clampPagination(filter.Pagination)
	rows, err := s.db.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscription
		WHERE ($1::text IS NULL OR client_id = $1)
		  AND ($2::text IS NULL OR program_id = $2)
		ORDER BY created_date_time DESC
		OFFSET $3 LIMIT $4`,
		ownerFilter(perm), nullable(string(filter.ProgramID)), skip, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []wire.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *subscriptionStore) Update(ctx context.Context, id wire.Identifier, new storage.NewSubscription, perm storage.Permission) (wire.Subscription, error) {
	ops, err := jsonColumn(new.ObjectOperations)
	if err != nil {
		return wire.Subscription{}, err
	}
	if ops == nil {
		ops = []byte("[]")
	}

	row := s.db.QueryRow(ctx, `
		UPDATE subscription
		SET modification_date_time = $3,
		    client_name = $4,
		    program_id = $5,
		    object_operations = $6
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)
		RETURNING `+subscriptionColumns,
		id, ownerFilter(perm), time.Now().UTC(), new.ClientName,
		nullable(string(new.ProgramID)), ops)
	return scanSubscription(row)
}

func (s *subscriptionStore) Delete(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Subscription, error) {
	row := s.db.QueryRow(ctx, `
		DELETE FROM subscription
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)
		RETURNING `+subscriptionColumns,
		id, ownerFilter(perm))
	return scanSubscription(row)
}

// RetrieveByOwner feeds the notifier fan-out.
func (s *subscriptionStore) RetrieveByOwner(ctx context.Context) (map[wire.Identifier][]wire.Subscription, error) {
	rows, err := s.db.Query(ctx, `
		SELECT client_id, `+subscriptionColumns+`
		FROM subscription
		ORDER BY created_date_time DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make(map[wire.Identifier][]wire.Subscription)
	for rows.Next() {
		var (
			owner     wire.Identifier
			sub       wire.Subscription
			programID *string
			ops       []byte
		)
		if err := rows.Scan(&owner, &sub.ID, &sub.CreatedDateTime, &sub.ModificationDateTime,
			&sub.ClientName, &programID, &ops); err != nil {
			return nil, mapError(err)
		}
		if programID != nil {
			sub.ProgramID = wire.Identifier(*programID)
		}
		if err := scanJSON(ops, &sub.ObjectOperations); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], sub)
	}
	return out, rows.Err()
}
