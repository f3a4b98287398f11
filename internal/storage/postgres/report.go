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

type reportStore struct {
	db *pgxpool.Pool
}

const reportColumns = `
	id, created_date_time, modification_date_time, program_id, event_id,
	client_name, report_name, payload_descriptors, resources`

func scanReport(row pgx.Row) (wire.Report, error) {
	var (
		r                        wire.Report
		programID, reportName    *string
		payloadDescs, resources  []byte
	)
	err := row.Scan(&r.ID, &r.CreatedDateTime, &r.ModificationDateTime, &programID, &r.EventID,
		&r.ClientName, &reportName, &payloadDescs, &resources)
	if errors.Is(err, pgx.ErrNoRows) {
		return wire.Report{}, apperr.NotFound()
	}
	if err != nil {
		return wire.Report{}, mapError(err)
	}
	if programID != nil {
		r.ProgramID = wire.Identifier(*programID)
	}
	if reportName != nil {
		r.ReportName = *reportName
	}
	if err := scanJSON(payloadDescs, &r.PayloadDescriptors); err != nil {
		return wire.Report{}, err
	}
	if err := scanJSON(resources, &r.Resources); err != nil {
		return wire.Report{}, err
	}
	return r, nil
}

func (s *reportStore) Create(ctx context.Context, new storage.NewReport, _ storage.Permission) (wire.Report, error) {
	payloadDescs, err := jsonColumn(new.PayloadDescriptors)
	if err != nil {
		return wire.Report{}, err
	}
	resources, err := jsonColumn(new.Resources)
	if err != nil {
		return wire.Report{}, err
	}
	if resources == nil {
		resources = []byte("[]")
	}
	now := time.Now().UTC()

	row := s.db.QueryRow(ctx, `
		INSERT INTO report (id, created_date_time, modification_date_time, program_id,
		                    event_id, client_id, client_name, report_name,
		                    payload_descriptors, resources)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+reportColumns,
		uuid.NewString(), now, now, nullable(string(new.ProgramID)), new.EventID,
		new.ClientID, new.ClientName, nullable(new.ReportName), payloadDescs, resources)
	report, err := scanReport(row)
	if apperr.IsKind(err, apperr.KindConflict) {
		return wire.Report{}, apperr.Validation("eventID %q does not refer to an existing event", new.EventID)
	}
	return report, err
}

func (s *reportStore) Retrieve(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Report, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM report
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)`,
		id, ownerFilter(perm))
	return scanReport(row)
}

func (s *reportStore) RetrieveAll(ctx context.Context, filter storage.ReportFilter, perm storage.Permission) ([]wire.Report, error) {
	skip, limit := clampPagination(filter.Pagination)
	rows, err := s.db.Query(ctx, `
		SELECT `+reportColumns+`
		FROM report
		WHERE ($1::text IS NULL OR client_id = $1)
		  AND ($2::text IS NULL OR program_id = $2)
		  AND ($3::text IS NULL OR event_id = $3)
		  AND ($4::text IS NULL OR client_name = $4)
		ORDER BY created_date_time DESC
		OFFSET $5 LIMIT $6`,
		ownerFilter(perm), nullable(string(filter.ProgramID)), nullable(string(filter.EventID)),
		nullable(filter.ClientName), skip, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []wire.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *reportStore) Update(ctx context.Context, id wire.Identifier, new storage.NewReport, perm storage.Permission) (wire.Report, error) {
	payloadDescs, err := jsonColumn(new.PayloadDescriptors)
	if err != nil {
		return wire.Report{}, err
	}
	resources, err := jsonColumn(new.Resources)
	if err != nil {
		return wire.Report{}, err
	}
	if resources == nil {
		resources = []byte("[]")
	}

	// Non-owners fall out of the WHERE clause and get NotFound.
	row := s.db.QueryRow(ctx, `
		UPDATE report
		SET modification_date_time = $3,
		    program_id = $4,
		    event_id = $5,
		    client_name = $6,
		    report_name = $7,
		    payload_descriptors = $8,
		    resources = $9
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)
		RETURNING `+reportColumns,
		id, ownerFilter(perm), time.Now().UTC(), nullable(string(new.ProgramID)), new.EventID,
		new.ClientName, nullable(new.ReportName), payloadDescs, resources)
	return scanReport(row)
}

func (s *reportStore) Delete(ctx context.Context, id wire.Identifier, perm storage.Permission) (wire.Report, error) {
	row := s.db.QueryRow(ctx, `
		DELETE FROM report
		WHERE id = $1
		  AND ($2::text IS NULL OR client_id = $2)
		RETURNING `+reportColumns,
		id, ownerFilter(perm))
	return scanReport(row)
}

// ownerFilter maps a restricted permission to its client id parameter.
func ownerFilter(perm storage.Permission) *string {
	if !perm.Restricted {
		return nil
	}
	id := string(perm.ClientID)
	return &id
}
