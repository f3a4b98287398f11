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

type eventStore struct {
	db *pgxpool.Pool
}

const eventColumns = `
	id, created_date_time, modification_date_time, program_id, event_name,
	priority, targets, report_descriptors, payload_descriptors,
	interval_period, intervals`

func scanEvent(row pgx.Row) (wire.Event, error) {
	var (
		e                                                         wire.Event
		eventName                                                 *string
		priority                                                  *int64
		tgts, reportDescs, payloadDescs, intervalPeriod, intervals []byte
	)
	err := row.Scan(&e.ID, &e.CreatedDateTime, &e.ModificationDateTime, &e.ProgramID,
		&eventName, &priority, &tgts, &reportDescs, &payloadDescs, &intervalPeriod, &intervals)
	if errors.Is(err, pgx.ErrNoRows) {
		return wire.Event{}, apperr.NotFound()
	}
	if err != nil {
		return wire.Event{}, mapError(err)
	}
	if eventName != nil {
		e.EventName = *eventName
	}
	if priority != nil && *priority >= 0 {
		e.Priority = wire.NewPriority(uint32(*priority))
	}
	for _, col := range []struct {
		raw []byte
		out any
	}{
		{tgts, &e.Targets},
		{reportDescs, &e.ReportDescriptors},
		{payloadDescs, &e.PayloadDescriptors},
		{intervalPeriod, &e.IntervalPeriod},
		{intervals, &e.Intervals},
	} {
		if err := scanJSON(col.raw, col.out); err != nil {
			return wire.Event{}, err
		}
	}
	return e, nil
}

func eventParams(new wire.EventRequest) ([]any, error) {
	var priority *int64
	if v, ok := new.Priority.Value(); ok {
		p := int64(v)
		priority = &p
	}
	out := []any{priority}
	for _, v := range []any{new.Targets, new.ReportDescriptors, new.PayloadDescriptors, new.IntervalPeriod, new.Intervals} {
		col, err := jsonColumn(v)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

func (s *eventStore) Create(ctx context.Context, new wire.EventRequest, _ storage.Permission) (wire.Event, error) {
	params, err := eventParams(new)
	if err != nil {
		return wire.Event{}, err
	}
	now := time.Now().UTC()
	args := append([]any{uuid.NewString(), now, now, new.ProgramID, nullable(new.EventName)}, params...)

	row := s.db.QueryRow(ctx, `
		INSERT INTO event (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, coalesce($7, '[]'), $8, $9, $10, $11)
		RETURNING `+eventColumns,
		args...)
	event, err := scanEvent(row)
	if apperr.IsKind(err, apperr.KindConflict) {
		// The only FK here is the program reference.
		return wire.Event{}, apperr.Validation("programID %q does not refer to an existing program", new.ProgramID)
	}
	return event, err
}

func (s *eventStore) Retrieve(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Event, error) {
	envelope, err := privacyEnvelope(ctx, s.db, perm)
	if err != nil {
		return wire.Event{}, err
	}
	row := s.db.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM event
		WHERE id = $1
		  AND ($2::jsonb IS NULL OR targets <@ $2)`,
		id, envelope)
	return scanEvent(row)
}

func (s *eventStore) RetrieveAll(ctx context.Context, filter storage.EventFilter, perm storage.Permission) ([]wire.Event, error) {
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
		SELECT `+eventColumns+`
		FROM event
		WHERE ($1::text IS NULL OR program_id = $1)
		  AND targets @> $2
		  AND ($3::jsonb IS NULL OR targets <@ $3)
		ORDER BY priority ASC NULLS LAST, created_date_time DESC
		OFFSET $4 LIMIT $5`,
		nullable(string(filter.ProgramID)), filterTargets, envelope, skip, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []wire.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *eventStore) Update(ctx context.Context, id wire.Identifier, new wire.EventRequest, _ storage.Permission) (wire.Event, error) {
	params, err := eventParams(new)
	if err != nil {
		return wire.Event{}, err
	}
	args := append([]any{id, time.Now().UTC(), new.ProgramID, nullable(new.EventName)}, params...)

	row := s.db.QueryRow(ctx, `
		UPDATE event
		SET modification_date_time = $2,
		    program_id = $3,
		    event_name = $4,
		    priority = $5,
		    targets = coalesce($6, '[]'),
		    report_descriptors = $7,
		    payload_descriptors = $8,
		    interval_period = $9,
		    intervals = $10
		WHERE id = $1
		RETURNING `+eventColumns,
		args...)
	event, err := scanEvent(row)
	if apperr.IsKind(err, apperr.KindConflict) {
		return wire.Event{}, apperr.Validation("programID %q does not refer to an existing program", new.ProgramID)
	}
	return event, err
}

func (s *eventStore) Delete(ctx context.Context, id wire.Identifier, _ storage.Permission) (wire.Event, error) {
	row := s.db.QueryRow(ctx, `
		DELETE FROM event
		WHERE id = $1
		RETURNING `+eventColumns,
		id)
	return scanEvent(row)
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
