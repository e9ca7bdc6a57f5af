package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/andressep95/estate-admin/internal/client"
	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/andressep95/estate-admin/internal/navigation"
	"github.com/andressep95/estate-admin/pkg/validator"
)

// Custom errors
var (
	ErrSessionExpired  = errors.New("admin session expired")
	ErrPropertyIDEmpty = errors.New("property id is required")
)

// PropertyService is the admin console's moderation API. Privileged calls
// are preceded by an expiry check and skipped once the session is gone.
type PropertyService struct {
	properties     *client.PropertyClient
	sessions       *SessionManager
	navigator      navigation.Navigator
	validator      *validator.Validator
	adminLoginPath string
}

func NewPropertyService(
	properties *client.PropertyClient,
	sessions *SessionManager,
	navigator navigation.Navigator,
	validator *validator.Validator,
	adminLoginPath string,
) *PropertyService {
	if adminLoginPath == "" {
		adminLoginPath = navigation.AdminLoginPath
	}
	return &PropertyService{
		properties:     properties,
		sessions:       sessions,
		navigator:      navigator,
		validator:      validator,
		adminLoginPath: adminLoginPath,
	}
}

func (s *PropertyService) ensureSession(ctx context.Context) error {
	if s.sessions.CheckExpiration(ctx) {
		s.navigator.Navigate(s.adminLoginPath)
		return ErrSessionExpired
	}
	return nil
}

// CreateProperty validates and submits a new listing
func (s *PropertyService) CreateProperty(ctx context.Context, property domain.Property) (*domain.APIResponse, error) {
	if err := s.validator.Validate(property); err != nil {
		return nil, err
	}
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}

	resp, err := s.properties.CreateProperty(ctx, property)
	if err != nil {
		return nil, describe(err, "Failed to create property")
	}
	return resp, nil
}

// ListProperties returns one page of the admin listing
func (s *PropertyService) ListProperties(ctx context.Context, filter domain.PropertyFilter) (*domain.PropertyPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if err := s.validator.Validate(filter); err != nil {
		return nil, err
	}
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}

	page, err := s.properties.ListProperties(ctx, filter)
	if err != nil {
		return nil, describe(err, "Failed to fetch properties")
	}
	return page, nil
}

// ApproveProperty approves a pending listing
func (s *PropertyService) ApproveProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	return s.moderate(ctx, id, "Failed to approve property", s.properties.ApproveProperty)
}

// RejectProperty rejects a pending listing
func (s *PropertyService) RejectProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	return s.moderate(ctx, id, "Failed to reject property", s.properties.RejectProperty)
}

// DeleteProperty removes a listing
func (s *PropertyService) DeleteProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	return s.moderate(ctx, id, "Failed to delete property", s.properties.DeleteProperty)
}

// CategorizeProperty changes the category flags of one listing
func (s *PropertyService) CategorizeProperty(ctx context.Context, id string, update domain.CategoryUpdate) (*domain.APIResponse, error) {
	if id == "" {
		return nil, ErrPropertyIDEmpty
	}
	if err := s.validator.Validate(update); err != nil {
		return nil, err
	}
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}

	resp, err := s.properties.CategorizeProperty(ctx, id, update)
	if err != nil {
		return nil, describe(err, "Failed to update property")
	}
	return resp, nil
}

// BulkCategorize changes the category flags of several listings at once
func (s *PropertyService) BulkCategorize(ctx context.Context, update domain.BulkCategoryUpdate) (*domain.APIResponse, error) {
	if err := s.validator.Validate(update); err != nil {
		return nil, err
	}
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}

	resp, err := s.properties.BulkCategorize(ctx, update)
	if err != nil {
		return nil, describe(err, "Failed to update properties")
	}
	log.Printf("[PROPERTY_SERVICE] Categorized %d properties", len(update.PropertyIDs))
	return resp, nil
}

// GetProperty fetches a public listing; no session is needed
func (s *PropertyService) GetProperty(ctx context.Context, id string) (*domain.APIResponse, error) {
	if id == "" {
		return nil, ErrPropertyIDEmpty
	}
	resp, err := s.properties.GetProperty(ctx, id)
	if err != nil {
		return nil, describe(err, "Failed to fetch property")
	}
	return resp, nil
}

// Search runs a public search
func (s *PropertyService) Search(ctx context.Context, query string) (*domain.APIResponse, error) {
	resp, err := s.properties.Search(ctx, query)
	if err != nil {
		return nil, describe(err, "Search failed")
	}
	return resp, nil
}

// Locations lists public properties, optionally restricted to one location
func (s *PropertyService) Locations(ctx context.Context, location string, params url.Values) (*domain.APIResponse, error) {
	var (
		resp *domain.APIResponse
		err  error
	)
	if location == "" {
		resp, err = s.properties.AllLocations(ctx, params)
	} else {
		resp, err = s.properties.ByLocation(ctx, location, params)
	}
	if err != nil {
		return nil, describe(err, "Failed to fetch properties")
	}
	return resp, nil
}

func (s *PropertyService) moderate(
	ctx context.Context,
	id, fallback string,
	call func(context.Context, string) (*domain.APIResponse, error),
) (*domain.APIResponse, error) {
	if id == "" {
		return nil, ErrPropertyIDEmpty
	}
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}

	resp, err := call(ctx, id)
	if err != nil {
		return nil, describe(err, fallback)
	}
	return resp, nil
}

// describe keeps the backend's own wording when it gave one.
func describe(err error, fallback string) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Text() != "" {
		return fmt.Errorf("%s: %w", apiErr.Text(), err)
	}
	return fmt.Errorf("%s: %w", fallback, err)
}
