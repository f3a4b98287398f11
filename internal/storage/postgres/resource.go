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

type resourceStore struct {
	db *pgxpool.Pool
}

const resourceColumns = `
	r.id, r.created_date_time, r.modification_date_time, r.ven_id,
	r.resource_name, r.attributes, r.targets`

func scanResource(row pgx.Row) (wire.Resource, error) {
	var (
		r           wire.Resource
		attrs, tgts []byte
	)
	err := row.Scan(&r.ID, &r.CreatedDateTime, &r.ModificationDateTime, &r.VenID, &r.ResourceName,
		&attrs, &tgts)
	if errors.Is(err, pgx.ErrNoRows) {
		return wire.Resource{}, apperr.NotFound()
	}
	if err != nil {
		return wire.Resource{}, mapError(err)
	}
	if err := scanJSON(attrs, &r.Attributes); err != nil {
		return wire.Resource{}, err
	}
	if err := scanJSON(tgts, &r.Targets); err != nil {
		return wire.Resource{}, err
	}
	return r, nil
}

func (s *resourceStore) Create(ctx context.Context, new storage.NewResource, perm storage.Permission) (wire.Resource, error) {
	attrs, err := jsonColumn(new.Attributes)
	if err != nil {
		return wire.Resource{}, err
	}
	tgts, err := jsonColumn(new.Targets)
	if err != nil {
		return wire.Resource{}, err
	}
	now := time.Now().UTC()

	// A restricted caller may only attach resources to their own VEN; the
	// ownership subquery makes the insert fail with NotFound otherwise.
	row := s.db.QueryRow(ctx, `
		INSERT INTO resource (id, created_date_time, modification_date_time, ven_id,
		                      resource_name, attributes, targets)
		SELECT $1, $2, $3, v.id, $5, $6, coalesce($7, '[]')
		FROM ven v
		WHERE v.id = $4
		  AND ($8::text IS NULL OR v.client_id = $8)
		RETURNING id, created_date_time, modification_date_time, ven_id,
		          resource_name, attributes, targets`,
		uuid.NewString(), now, now, new.VenID, new.ResourceName, attrs, tgts, ownerFilter(perm))
	return scanResource(row)
}

func (s *resourceStore) Retrieve(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Resource, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+resourceColumns+`
		FROM resource r
		JOIN ven v ON v.id = r.ven_id
		WHERE r.id = $1
		  AND ($2::text IS NULL OR v.client_id = $2)`,
		id, ownerFilter(perm))
	return scanResource(row)
}

func (s *resourceStore) RetrieveAll(ctx context.Context, filter storage.ResourceFilter, perm storage.Permission) ([]wire.Resource, error) {
	filterTargets, err := jsonColumn(filter.Targets)
	if err != nil {
		return nil, err
	}
	skip, limit := clampPagination(filter.Pagination)

	rows, err := s.db.Query(ctx, `
		SELECT `+resourceColumns+`
		FROM resource r
		JOIN ven v ON v.id = r.ven_id
		WHERE ($1::text IS NULL OR r.ven_id = $1)
		  AND ($2::text IS NULL OR v.client_id = $2)
		  AND ($3::text IS NULL OR r.resource_name = $3)
		  AND r.targets @> $4
		ORDER BY r.created_date_time DESC
		OFFSET $5 LIMIT $6`,
		nullable(string(filter.VenID)), ownerFilter(perm), nullable(filter.ResourceName),
		filterTargets, skip, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []wire.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *resourceStore) Update(ctx context.Context, id wire.Identifier, new storage.NewResource, perm storage.Permission) (wire.Resource, error) {
	attrs, err := jsonColumn(new.Attributes)
	if err != nil {
		return wire.Resource{}, err
	}
	tgts, err := jsonColumn(new.Targets)
	if err != nil {
		return wire.Resource{}, err
	}

	// ven_id is immutable on update.
	row := s.db.QueryRow(ctx, `
		UPDATE resource r
		SET modification_date_time = $3,
		    resource_name = $4,
		    attributes = $5,
		    targets = coalesce($6, '[]')
		FROM ven v
		WHERE r.id = $1
		  AND v.id = r.ven_id
		  AND ($2::text IS NULL OR v.client_id = $2)
		RETURNING `+resourceColumns,
		id, ownerFilter(perm), time.Now().UTC(), new.ResourceName, attrs, tgts)
	return scanResource(row)
}

func (s *resourceStore) Delete(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Resource, error) {
	row := s.db.QueryRow(ctx, `
		DELETE FROM resource r
		USING ven v
		WHERE r.id = $1
		  AND v.id = r.ven_id
		  AND ($2::text IS NULL OR v.client_id = $2)
		RETURNING `+resourceColumns,
		id, ownerFilter(perm))
	return scanResource(row)
}

// RetrieveByVen lists every resource of one VEN, newest first, with no
// permission filter; not exposed over HTTP.
func (s *resourceStore) RetrieveByVen(ctx context.Context, venID wire.Identifier) ([]wire.Resource, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+resourceColumns+`
		FROM resource r
		WHERE r.ven_id = $1
		ORDER BY r.created_date_time DESC`,
		venID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []wire.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
