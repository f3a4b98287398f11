package client

import (
	"context"
	"net/url"

	"github.com/openleadr/openleadr-go/wire"
)

// EventClient wraps one event and scopes report operations to it.
type EventClient struct {
	client *Client
	event  wire.Event
}

// Event returns the wrapped wire object.
func (e *EventClient) Event() wire.Event { return e.event }

// ID of the event.
func (e *EventClient) ID() wire.Identifier { return e.event.ID }

// CreateEvent creates an event on the VTN.
func (c *Client) CreateEvent(ctx context.Context, req wire.EventRequest) (*EventClient, error) {
	var event wire.Event
	if err := c.post(ctx, "events", req, &event); err != nil {
		return nil, err
	}
	return &EventClient{client: c, event: event}, nil
}

// GetEvent retrieves an event by id.
func (c *Client) GetEvent(ctx context.Context, id wire.Identifier) (*EventClient, error) {
	var event wire.Event
	if err := c.get(ctx, "events/"+url.PathEscape(string(id)), nil, &event); err != nil {
		return nil, err
	}
	return &EventClient{client: c, event: event}, nil
}

func (c *Client) getEvents(ctx context.Context, programID wire.Identifier, filter Filter, pagination Pagination) ([]*EventClient, error) {
	query := filter.query(pagination.query(nil))
	if programID != "" {
		query.Set("programID", string(programID))
	}

	var events []wire.Event
	if err := c.get(ctx, "events", query, &events); err != nil {
		return nil, err
	}
	out := make([]*EventClient, len(events))
	for i, event := range events {
		out[i] = &EventClient{client: c, event: event}
	}
	return out, nil
}

// GetEvents returns one page of events across all programs.
func (c *Client) GetEvents(ctx context.Context, filter Filter, pagination Pagination) ([]*EventClient, error) {
	return c.getEvents(ctx, "", filter, pagination)
}

// GetAllEvents iterates every page of events matching the filter.
func (c *Client) GetAllEvents(ctx context.Context, filter Filter) ([]*EventClient, error) {
	return iteratePages(c.pageSize, func(skip, limit int) ([]*EventClient, error) {
		return c.GetEvents(ctx, filter, Pagination{Skip: skip, Limit: limit})
	})
}

// Update replaces the event content on the VTN and refreshes the local copy.
func (e *EventClient) Update(ctx context.Context, req wire.EventRequest) error {
	var event wire.Event
	if err := e.client.put(ctx, "events/"+url.PathEscape(string(e.event.ID)), req, &event); err != nil {
		return err
	}
	e.event = event
	return nil
}

// Delete removes the event from the VTN.
func (e *EventClient) Delete(ctx context.Context) error {
	return e.client.delete(ctx, "events/"+url.PathEscape(string(e.event.ID)), nil)
}

// NewReport prepares a report request tied to this event.
func (e *EventClient) NewReport(clientName string, resources []wire.ReportResource) wire.ReportRequest {
	return wire.ReportRequest{
		ProgramID:  e.event.ProgramID,
		EventID:    e.event.ID,
		ClientName: clientName,
		Resources:  resources,
	}
}

// CreateReport submits a report for this event.
func (e *EventClient) CreateReport(ctx context.Context, req wire.ReportRequest) (*ReportClient, error) {
	return e.client.CreateReport(ctx, req)
}
