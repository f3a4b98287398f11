package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/openleadr/openleadr-go/wire"
)

// ProgramClient wraps one program and scopes event operations to it.
type ProgramClient struct {
	client  *Client
	program wire.Program
}

// Program returns the wrapped wire object.
func (p *ProgramClient) Program() wire.Program { return p.program }

// ID of the program.
func (p *ProgramClient) ID() wire.Identifier { return p.program.ID }

// CreateProgram creates a new program on the VTN.
func (c *Client) CreateProgram(ctx context.Context, req wire.ProgramRequest) (*ProgramClient, error) {
	var program wire.Program
	if err := c.post(ctx, "programs", req, &program); err != nil {
		return nil, err
	}
	return &ProgramClient{client: c, program: program}, nil
}

// GetProgram retrieves a program by id.
func (c *Client) GetProgram(ctx context.Context, id wire.Identifier) (*ProgramClient, error) {
	var program wire.Program
	if err := c.get(ctx, "programs/"+url.PathEscape(string(id)), nil, &program); err != nil {
		return nil, err
	}
	return &ProgramClient{client: c, program: program}, nil
}

// GetPrograms returns one page of programs matching the filter.
func (c *Client) GetPrograms(ctx context.Context, filter Filter, pagination Pagination) ([]*ProgramClient, error) {
	query := filter.query(pagination.query(nil))

	var programs []wire.Program
	if err := c.get(ctx, "programs", query, &programs); err != nil {
		return nil, err
	}
	out := make([]*ProgramClient, len(programs))
	for i, program := range programs {
		out[i] = &ProgramClient{client: c, program: program}
	}
	return out, nil
}

// GetAllPrograms iterates every page of programs matching the filter.
func (c *Client) GetAllPrograms(ctx context.Context, filter Filter) ([]*ProgramClient, error) {
	return iteratePages(c.pageSize, func(skip, limit int) ([]*ProgramClient, error) {
		return c.GetPrograms(ctx, filter, Pagination{Skip: skip, Limit: limit})
	})
}

// GetProgramByName finds the program with the given unique name.
func (c *Client) GetProgramByName(ctx context.Context, name string) (*ProgramClient, error) {
	programs, err := c.GetAllPrograms(ctx, NoFilter)
	if err != nil {
		return nil, err
	}
	for _, p := range programs {
		if p.program.ProgramName == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no program with name %q found", name)
}

// Update replaces the program content on the VTN and refreshes the local
// copy.
func (p *ProgramClient) Update(ctx context.Context, req wire.ProgramRequest) error {
	var program wire.Program
	if err := p.client.put(ctx, "programs/"+url.PathEscape(string(p.program.ID)), req, &program); err != nil {
		return err
	}
	p.program = program
	return nil
}

// Delete removes the program from the VTN.
func (p *ProgramClient) Delete(ctx context.Context) error {
	return p.client.delete(ctx, "programs/"+url.PathEscape(string(p.program.ID)), nil)
}

// NewEvent prepares an event request belonging to this program.
func (p *ProgramClient) NewEvent(intervals []wire.Interval) wire.EventRequest {
	return wire.EventRequest{
		ProgramID: p.program.ID,
		Priority:  wire.UnspecifiedPriority,
		Intervals: intervals,
	}
}

// CreateEvent creates an event within this program.
func (p *ProgramClient) CreateEvent(ctx context.Context, req wire.EventRequest) (*EventClient, error) {
	if req.ProgramID != p.program.ID {
		return nil, fmt.Errorf("event request belongs to program %q, not %q", req.ProgramID, p.program.ID)
	}
	return p.client.CreateEvent(ctx, req)
}

// GetEvents returns one page of this program's events.
func (p *ProgramClient) GetEvents(ctx context.Context, filter Filter, pagination Pagination) ([]*EventClient, error) {
	return p.client.getEvents(ctx, p.program.ID, filter, pagination)
}

// GetAllEvents iterates every page of this program's events.
func (p *ProgramClient) GetAllEvents(ctx context.Context) ([]*EventClient, error) {
	return iteratePages(p.client.pageSize, func(skip, limit int) ([]*EventClient, error) {
		return p.GetEvents(ctx, NoFilter, Pagination{Skip: skip, Limit: limit})
	})
}

// Timeline assembles the priority-resolved timeline of this program from
// its current events.
func (p *ProgramClient) Timeline(ctx context.Context) (*Timeline, error) {
	events, err := p.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	contents := make([]wire.EventRequest, len(events))
	for i, e := range events {
		contents[i] = e.event.EventRequest
	}
	timeline, ok := NewTimeline(p.program, contents)
	if !ok {
		return nil, fmt.Errorf("program %q has an event interval without a resolvable period", p.program.ID)
	}
	return timeline, nil
}
