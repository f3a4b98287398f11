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

type programStore struct {
	db *pgxpool.Pool
}

const programColumns = `
	id, created_date_time, modification_date_time, program_name,
	interval_period, program_descriptions, payload_descriptors, attributes, targets`

func scanProgram(row pgx.Row) (wire.Program, error) {
	var (
		p                                                      wire.Program
		intervalPeriod, descriptions, descriptors, attrs, tgts []byte
	)
	err := row.Scan(&p.ID, &p.CreatedDateTime, &p.ModificationDateTime, &p.ProgramName,
		&intervalPeriod, &descriptions, &descriptors, &attrs, &tgts)
	if errors.Is(err, pgx.ErrNoRows) {
		return wire.Program{}, apperr.NotFound()
	}
	if err != nil {
		return wire.Program{}, mapError(err)
	}
	for _, col := range []struct {
		raw []byte
		out any
	}{
		{intervalPeriod, &p.IntervalPeriod},
		{descriptions, &p.ProgramDescriptions},
		{descriptors, &p.PayloadDescriptors},
		{attrs, &p.Attributes},
		{tgts, &p.Targets},
	} {
		if err := scanJSON(col.raw, col.out); err != nil {
			return wire.Program{}, err
		}
	}
	return p, nil
}

func programParams(new wire.ProgramRequest) ([]any, error) {
	var out []any
	for _, v := range []any{new.IntervalPeriod, new.ProgramDescriptions, new.PayloadDescriptors, new.Attributes, new.Targets} {
		col, err := jsonColumn(v)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

func (s *programStore) Create(ctx context.Context, new wire.ProgramRequest, _ storage.Permission) (wire.Program, error) {
	params, err := programParams(new)
	if err != nil {
		return wire.Program{}, err
	}
	now := time.Now().UTC()
	args := append([]any{uuid.NewString(), now, now, new.ProgramName}, params...)

	row := s.db.QueryRow(ctx, `
		INSERT INTO program (`+programColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, coalesce($9, '[]'))
		RETURNING `+programColumns,
		args...)
	return scanProgram(row)
}

func (s *programStore) Retrieve(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Program, error) {
	envelope, err := privacyEnvelope(ctx, s.db, perm)
	if err != nil {
		return wire.Program{}, err
	}
	row := s.db.QueryRow(ctx, `
		SELECT `+programColumns+`
		FROM program
		WHERE id = $1
		  AND ($2::jsonb IS NULL OR targets <@ $2)`,
		id, envelope)
	return scanProgram(row)
}

func (s *programStore) RetrieveAll(ctx context.Context, filter storage.ProgramFilter, perm storage.Permission) ([]wire.Program, error) {
	envelope, err := privacyEnvelope(ctx, s.db, perm)
	if err != nil {
		return nil, err
	}
	filterTargets, err := jsonColumn(filter.Targets)
	if err != nil {
		return nil, err
	}
	skip, limit := clampPagination(filter.Pagination)

	rows, err := s.db.Query(ctx, `
		SELECT `+programColumns+`
		FROM program
		WHERE targets @> $1
		  AND ($2::jsonb IS NULL OR targets <@ $2)
		ORDER BY created_date_time DESC
		OFFSET $3 LIMIT $4`,
		filterTargets, envelope, skip, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []wire.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *programStore) Update(ctx context.Context, id wire.Identifier, new wire.ProgramRequest, _ storage.Permission) (wire.Program, error) {
	params, err := programParams(new)
	if err != nil {
		return wire.Program{}, err
	}
	args := append([]any{id, time.Now().UTC(), new.ProgramName}, params...)

	row := s.db.QueryRow(ctx, `
		UPDATE program
		SET modification_date_time = $2,
		    program_name = $3,
		    interval_period = $4,
		    program_descriptions = $5,
		    payload_descriptors = $6,
		    attributes = $7,
		    targets = coalesce($8, '[]')
		WHERE id = $1
		RETURNING `+programColumns,
		args...)
	return scanProgram(row)
}

func (s *programStore) Delete(ctx context.Context, id wire.Identifier, _ storage.Permission) (wire.Program, error) {
	row := s.db.QueryRow(ctx, `
		DELETE FROM program
		WHERE id = $1
		RETURNING `+programColumns,
		id)
	return scanProgram(row)
}
