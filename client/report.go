package client

import (
	"context"
	"net/url"

	"github.com/openleadr/openleadr-go/wire"
)

// ReportClient wraps one report.
type ReportClient struct {
	client *Client
	report wire.Report
}

// Report returns the wrapped wire object.
func (r *ReportClient) Report() wire.Report { return r.report }

// ID of the report.
func (r *ReportClient) ID() wire.Identifier { return r.report.ID }

// CreateReport submits a report to the VTN. The VTN records the caller as
// the owning client.
func (c *Client) CreateReport(ctx context.Context, req wire.ReportRequest) (*ReportClient, error) {
	var report wire.Report
	if err := c.post(ctx, "reports", req, &report); err != nil {
		return nil, err
	}
	return &ReportClient{client: c, report: report}, nil
}

// GetReport retrieves a report by id.
func (c *Client) GetReport(ctx context.Context, id wire.Identifier) (*ReportClient, error) {
	var report wire.Report
	if err := c.get(ctx, "reports/"+url.PathEscape(string(id)), nil, &report); err != nil {
		return nil, err
	}
	return &ReportClient{client: c, report: report}, nil
}

// ReportFilter restricts report list queries.
type ReportFilter struct {
	ProgramID  wire.Identifier
	EventID    wire.Identifier
	ClientName string
}

// GetReports returns one page of reports matching the filter.
func (c *Client) GetReports(ctx context.Context, filter ReportFilter, pagination Pagination) ([]*ReportClient, error) {
	query := pagination.query(nil)
	if filter.ProgramID != "" {
		query.Set("programID", string(filter.ProgramID))
	}
	if filter.EventID != "" {
		query.Set("eventID", string(filter.EventID))
	}
	if filter.ClientName != "" {
		query.Set("clientName", filter.ClientName)
	}

	var reports []wire.Report
	if err := c.get(ctx, "reports", query, &reports); err != nil {
		return nil, err
	}
	out := make([]*ReportClient, len(reports))
	for i, report := range reports {
		out[i] = &ReportClient{client: c, report: report}
	}
	return out, nil
}

// GetAllReports iterates every page of reports matching the filter.
func (c *Client) GetAllReports(ctx context.Context, filter ReportFilter) ([]*ReportClient, error) {
	return iteratePages(c.pageSize, func(skip, limit int) ([]*ReportClient, error) {
		return c.GetReports(ctx, filter, Pagination{Skip: skip, Limit: limit})
	})
}

// Update replaces the report content on the VTN and refreshes the local
// copy. Only the owning client may do this.
func (r *ReportClient) Update(ctx context.Context, req wire.ReportRequest) error {
	var report wire.Report
	if err := r.client.put(ctx, "reports/"+url.PathEscape(string(r.report.ID)), req, &report); err != nil {
		return err
	}
	r.report = report
	return nil
}

// Delete removes the report from the VTN.
func (r *ReportClient) Delete(ctx context.Context) error {
	return r.client.delete(ctx, "reports/"+url.PathEscape(string(r.report.ID)), nil)
}
