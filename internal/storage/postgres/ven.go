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

type venStore struct {
	db *pgxpool.Pool
}

const venColumns = `
	id, created_date_time, modification_date_time, client_id, ven_name,
	attributes, targets`

func scanVen(row pgx.Row) (wire.Ven, error) {
	var (
		v           wire.Ven
		attrs, tgts []byte
	)
	err := row.Scan(&v.ID, &v.CreatedDateTime, &v.ModificationDateTime, &v.ClientID, &v.VenName,
		&attrs, &tgts)
	if errors.Is(err, pgx.ErrNoRows) {
		return wire.Ven{}, apperr.NotFound()
	}
	if err != nil {
		return wire.Ven{}, mapError(err)
	}
	if err := scanJSON(attrs, &v.Attributes); err != nil {
		return wire.Ven{}, err
	}
	if err := scanJSON(tgts, &v.Targets); err != nil {
		return wire.Ven{}, err
	}
	return v, nil
}

func (s *venStore) Create(ctx context.Context, new storage.NewVen, _ storage.Permission) (wire.Ven, error) {
	attrs, err := jsonColumn(new.Attributes)
	if err != nil {
		return wire.Ven{}, err
	}
	tgts, err := jsonColumn(new.Targets)
	if err != nil {
		return wire.Ven{}, err
	}
	now := time.Now().UTC()

	row := s.db.QueryRow(ctx, `
		INSERT INTO ven (`+venColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, coalesce($7, '[]'))
		RETURNING `+venColumns,
		uuid.NewString(), now, now, new.ClientID, new.VenName, attrs, tgts)
	return scanVen(row)
}

func (s *venStore) Retrieve(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Ven, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+venColumns+`
		FROM ven
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)`,
		id, ownerFilter(perm))
	return scanVen(row)
}

func (s *venStore) RetrieveAll(ctx context.Context, filter storage.VenFilter, perm storage.Permission) ([]wire.Ven, error) {
	filterTargets, err := jsonColumn(filter.Targets)
	if err != nil {
		return nil, err
	}
	skip, limit := clampPagination(filter.Pagination)

	rows, err := s.db.Query(ctx, `
		SELECT `+venColumns+`
		FROM ven
		WHERE ($1::text IS NULL OR client_id = $1)
		  AND ($2::text IS NULL OR ven_name = $2)
		  AND targets @> $3
		ORDER BY created_date_time DESC
		OFFSET $4 LIMIT $5`,
		ownerFilter(perm), nullable(filter.VenName), filterTargets, skip, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []wire.Ven
	for rows.Next() {
		v, err := scanVen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *venStore) Update(ctx context.Context, id wire.Identifier, new storage.NewVen, perm storage.Permission) (wire.Ven, error) {
	attrs, err := jsonColumn(new.Attributes)
	if err != nil {
		return wire.Ven{}, err
	}
	tgts, err := jsonColumn(new.Targets)
	if err != nil {
		return wire.Ven{}, err
	}

	// client_id is immutable after enrollment, so it is never in the SET.
	row := s.db.QueryRow(ctx, `
		UPDATE ven
		SET modification_date_time = $3,
		    ven_name = $4,
		    attributes = $5,
		    targets = coalesce($6, '[]')
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)
		RETURNING `+venColumns,
		id, ownerFilter(perm), time.Now().UTC(), new.VenName, attrs, tgts)
	return scanVen(row)
}

func (s *venStore) Delete(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Ven, error) {
	// The resource FK is ON DELETE RESTRICT, so deleting a VEN with
	// resources attached surfaces as a Conflict.
	row := s.db.QueryRow(ctx, `
		DELETE FROM ven
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)
		RETURNING `+venColumns,
		id, ownerFilter(perm))
	return scanVen(row)
}

// privacyStore implements the VEN object-privacy lookup with two queries:
// one for the VEN's targets, one for the targets of its resources.
type privacyStore struct {
	db *pgxpool.Pool
}

func (s *privacyStore) TargetsByClientID(ctx context.Context, clientID wire.Identifier) (wire.Targets, bool, error) {
	var (
		venTargets []byte
		resTargets [][]byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT targets FROM ven WHERE client_id = $1`, clientID).Scan(&venTargets)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapError(err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.targets
		FROM resource r
		JOIN ven v ON v.id = r.ven_id
		WHERE v.client_id = $1`, clientID)
	if err != nil {
		return nil, false, mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, false, mapError(err)
		}
		resTargets = append(resTargets, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, false, mapError(err)
	}

	var union wire.Targets
	if err := scanJSON(venTargets, &union); err != nil {
		return nil, false, err
	}
	for _, raw := range resTargets {
		var targets wire.Targets
		if err := scanJSON(raw, &targets); err != nil {
			return nil, false, err
		}
		union = union.Union(targets)
	}
	return union, true, nil
}
