package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andressep95/estate-admin/internal/domain"
)

// PropertyClient wraps the listing endpoints. Admin calls go through the
// authorized client; public calls use a plain one, like the browser did.
type PropertyClient struct {
	admin  *Client
	public *Client
}

func NewPropertyClient(admin, public *Client) *PropertyClient {
	return &PropertyClient{admin: admin, public: public}
}

// CreateProperty posts a new listing
// POST /api/admin/
func (c *PropertyClient) CreateProperty(ctx context.Context, property domain.Property) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.admin, http.MethodPost, "/api/admin/", nil, property)
}

// ListProperties returns one page of the admin listing
// GET /api/admin/properties
func (c *PropertyClient) ListProperties(ctx context.Context, filter domain.PropertyFilter) (*domain.PropertyPage, error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	setFilter(query, "status", filter.Status)
	setFilter(query, "purpose", filter.Purpose)
	setFilter(query, "city", filter.City)
	setFilter(query, "search", filter.Search)

	resp, err := c.envelope(ctx, c.admin, http.MethodGet, "/api/admin/properties", query, nil)
	if err != nil {
		return nil, err
	}

	var page domain.PropertyPage
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return &page, nil
}

// ApproveProperty marks a listing approved
// PUT /api/admin/properties/:id/approve
func (c *PropertyClient) ApproveProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.admin, http.MethodPut, "/api/admin/properties/"+url.PathEscape(id)+"/approve", nil, nil)
}

// RejectProperty marks a listing rejected
// PUT /api/admin/properties/:id/reject
func (c *PropertyClient) RejectProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.admin, http.MethodPut, "/api/admin/properties/"+url.PathEscape(id)+"/reject", nil, nil)
}

// DeleteProperty removes a listing
// DELETE /api/admin/properties/:id
func (c *PropertyClient) DeleteProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.admin, http.MethodDelete, "/api/admin/properties/"+url.PathEscape(id), nil, nil)
}

// CategorizeProperty toggles categories of one listing
// PATCH /api/admin/properties/:id/categorize
func (c *PropertyClient) CategorizeProperty(ctx context.Context, id string, update domain.CategoryUpdate) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.admin, http.MethodPatch, "/api/admin/properties/"+url.PathEscape(id)+"/categorize", nil, update)
}

// BulkCategorize toggles categories of several listings
// PATCH /api/admin/properties/bulk-categorize
func (c *PropertyClient) BulkCategorize(ctx context.Context, update domain.BulkCategoryUpdate) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.admin, http.MethodPatch, "/api/admin/properties/bulk-categorize", nil, update)
}

// AllLocations lists public properties from every location
// GET /api/properties/all-locations
func (c *PropertyClient) AllLocations(ctx context.Context, params url.Values) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.public, http.MethodGet, "/api/properties/all-locations", params, nil)
}

// ByLocation lists public properties of one location
// GET /api/properties/properties/:location
func (c *PropertyClient) ByLocation(ctx context.Context, location string, params url.Values) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.public, http.MethodGet, "/api/properties/properties/"+url.PathEscape(location), params, nil)
}

// GetProperty fetches one public listing
// GET /api/properties/property/:id
func (c *PropertyClient) GetProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.public, http.MethodGet, "/api/properties/property/"+url.PathEscape(id), nil, nil)
}

// Search runs a free-text public search
// GET /api/properties/search?query=
func (c *PropertyClient) Search(ctx context.Context, query string) (*domain.APIResponse, error) {
	return c.envelope(ctx, c.public, http.MethodGet, "/api/properties/search", url.Values{"query": {query}}, nil)
}

func (c *PropertyClient) envelope(ctx context.Context, api *Client, method, path string, query url.Values, body any) (*domain.APIResponse, error) {
	var resp domain.APIResponse
	if err := api.do(ctx, method, path, query, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func setFilter(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
