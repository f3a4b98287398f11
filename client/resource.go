package client

import (
	"context"
	"net/url"

	"github.com/openleadr/openleadr-go/wire"
)

// ResourceClient wraps one resource.
type ResourceClient struct {
	client   *Client
	resource wire.Resource
}

// Resource returns the wrapped wire object.
func (r *ResourceClient) Resource() wire.Resource { return r.resource }

// ID of the resource.
func (r *ResourceClient) ID() wire.Identifier { return r.resource.ID }

func (v *VenClient) resourcePath(id wire.Identifier) string {
	path := "vens/" + url.PathEscape(string(v.ven.ID)) + "/resources"
	if id != "" {
		path += "/" + url.PathEscape(string(id))
	}
	return path
}

// CreateResource attaches a resource to this VEN.
func (v *VenClient) CreateResource(ctx context.Context, req wire.ResourceRequest) (*ResourceClient, error) {
	var resource wire.Resource
	if err := v.client.post(ctx, v.resourcePath(""), req, &resource); err != nil {
		return nil, err
	}
	return &ResourceClient{client: v.client, resource: resource}, nil
}

// GetResource retrieves one resource of this VEN by id.
func (v *VenClient) GetResource(ctx context.Context, id wire.Identifier) (*ResourceClient, error) {
	var resource wire.Resource
	if err := v.client.get(ctx, v.resourcePath(id), nil, &resource); err != nil {
		return nil, err
	}
	return &ResourceClient{client: v.client, resource: resource}, nil
}

// GetResources returns one page of this VEN's resources.
func (v *VenClient) GetResources(ctx context.Context, resourceName string, filter Filter, pagination Pagination) ([]*ResourceClient, error) {
	query := filter.query(pagination.query(nil))
	if resourceName != "" {
		query.Set("resourceName", resourceName)
	}

	var resources []wire.Resource
	if err := v.client.get(ctx, v.resourcePath(""), query, &resources); err != nil {
		return nil, err
	}
	out := make([]*ResourceClient, len(resources))
	for i, resource := range resources {
		out[i] = &ResourceClient{client: v.client, resource: resource}
	}
	return out, nil
}

// GetAllResources iterates every page of this VEN's resources.
func (v *VenClient) GetAllResources(ctx context.Context) ([]*ResourceClient, error) {
	return iteratePages(v.client.pageSize, func(skip, limit int) ([]*ResourceClient, error) {
		return v.GetResources(ctx, "", NoFilter, Pagination{Skip: skip, Limit: limit})
	})
}

// UpdateResource replaces a resource of this VEN.
func (v *VenClient) UpdateResource(ctx context.Context, id wire.Identifier, req wire.ResourceRequest) (*ResourceClient, error) {
	var resource wire.Resource
	if err := v.client.put(ctx, v.resourcePath(id), req, &resource); err != nil {
		return nil, err
	}
	return &ResourceClient{client: v.client, resource: resource}, nil
}

// DeleteResource detaches a resource from this VEN.
func (v *VenClient) DeleteResource(ctx context.Context, id wire.Identifier) error {
	return v.client.delete(ctx, v.resourcePath(id), nil)
}
