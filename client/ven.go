package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/openleadr/openleadr-go/wire"
)

// VenClient wraps one VEN and scopes resource operations to it.
type VenClient struct {
	client *Client
	ven    wire.Ven
}

// Ven returns the wrapped wire object.
func (v *VenClient) Ven() wire.Ven { return v.ven }

// ID of the VEN.
func (v *VenClient) ID() wire.Identifier { return v.ven.ID }

// CreateVen enrolls a VEN. BL callers pass a BL_VEN_REQUEST with an
// explicit clientID and targets; VEN callers pass a VEN_VEN_REQUEST and the
// VTN captures their client id from the token.
func (c *Client) CreateVen(ctx context.Context, req wire.VenRequest) (*VenClient, error) {
	var ven wire.Ven
	if err := c.post(ctx, "vens", req, &ven); err != nil {
		return nil, err
	}
	return &VenClient{client: c, ven: ven}, nil
}

// EnrollVen is the VEN-side convenience: it submits a VEN_VEN_REQUEST with
// just the name.
func (c *Client) EnrollVen(ctx context.Context, venName string) (*VenClient, error) {
	return c.CreateVen(ctx, wire.VenRequest{
		ObjectType: wire.ObjectTypeVenVenRequest,
		VenName:    venName,
	})
}

// GetVen retrieves a VEN by id.
func (c *Client) GetVen(ctx context.Context, id wire.Identifier) (*VenClient, error) {
	var ven wire.Ven
	if err := c.get(ctx, "vens/"+url.PathEscape(string(id)), nil, &ven); err != nil {
		return nil, err
	}
	return &VenClient{client: c, ven: ven}, nil
}

// GetVens returns one page of VENs matching the filter.
func (c *Client) GetVens(ctx context.Context, venName string, filter Filter, pagination Pagination) ([]*VenClient, error) {
	query := filter.query(pagination.query(nil))
	if venName != "" {
		query.Set("venName", venName)
	}

	var vens []wire.Ven
	if err := c.get(ctx, "vens", query, &vens); err != nil {
		return nil, err
	}
	out := make([]*VenClient, len(vens))
	for i, ven := range vens {
		out[i] = &VenClient{client: c, ven: ven}
	}
	return out, nil
}

// GetAllVens iterates every page of VENs.
func (c *Client) GetAllVens(ctx context.Context, filter Filter) ([]*VenClient, error) {
	return iteratePages(c.pageSize, func(skip, limit int) ([]*VenClient, error) {
		return c.GetVens(ctx, "", filter, Pagination{Skip: skip, Limit: limit})
	})
}

// GetVenByName finds the VEN with the given unique name.
func (c *Client) GetVenByName(ctx context.Context, name string) (*VenClient, error) {
	vens, err := c.GetVens(ctx, name, NoFilter, Pagination{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(vens) == 0 {
		return nil, fmt.Errorf("no VEN with name %q found", name)
	}
	return vens[0], nil
}

// Update replaces the VEN content on the VTN and refreshes the local copy.
func (v *VenClient) Update(ctx context.Context, req wire.VenRequest) error {
	var ven wire.Ven
	if err := v.client.put(ctx, "vens/"+url.PathEscape(string(v.ven.ID)), req, &ven); err != nil {
		return err
	}
	v.ven = ven
	return nil
}

// Delete removes the VEN. Fails with a conflict while resources are still
// attached.
func (v *VenClient) Delete(ctx context.Context) error {
	return v.client.delete(ctx, "vens/"+url.PathEscape(string(v.ven.ID)), nil)
}
