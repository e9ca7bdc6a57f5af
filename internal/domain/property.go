package domain

import "encoding/json"

type PropertyStatus string

const (
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusApproved PropertyStatus = "approved"
	PropertyStatusRejected PropertyStatus = "rejected"
)

// Property is a marketplace listing as the admin API returns it.
type Property struct {
	ID                   string         `json:"id,omitempty"`
	Purpose              string         `json:"purpose,omitempty"`
	PropertyType         string         `json:"propertyType,omitempty"`
	PropertySubType      string         `json:"propertySubType,omitempty"`
	City                 string         `json:"city,omitempty" validate:"required"`
	Locality             string         `json:"locality,omitempty"`
	SubLocality          string         `json:"subLocality,omitempty"`
	Apartment            string         `json:"apartment,omitempty"`
	Bedrooms             string         `json:"bedrooms,omitempty"`
	Bathrooms            string         `json:"bathrooms,omitempty"`
	PlotArea             string         `json:"plotArea,omitempty" validate:"required"`
	ExpectedPrice        string         `json:"expectedPrice,omitempty" validate:"required"`
	PricePerSqFt         string         `json:"pricePerSqFt,omitempty"`
	Description          string         `json:"description,omitempty"`
	Photos               []string       `json:"photos,omitempty"`
	Video                *string        `json:"video,omitempty"`
	Status               PropertyStatus `json:"status,omitempty"`
	IsFeatured           bool           `json:"isFeatured,omitempty"`
	IsTopPick            bool           `json:"isTopPick,omitempty"`
	IsHighlighted        bool           `json:"isHighlighted,omitempty"`
	IsInvestmentProperty bool           `json:"isInvestmentProperty,omitempty"`
	IsRecentlyAdded      bool           `json:"isRecentlyAdded,omitempty"`
}

// PropertyFilter is the query of the admin listing page.
type PropertyFilter struct {
	Page    int    `json:"page" validate:"gte=0"`
	Limit   int    `json:"limit" validate:"gte=0,lte=100"`
	Status  string `json:"status,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	City    string `json:"city,omitempty"`
	Search  string `json:"search,omitempty"`
}

// PropertyPage is the data block of the admin listing response.
type PropertyPage struct {
	Properties []Property `json:"properties"`
	TotalPages int        `json:"totalPages"`
	Total      int        `json:"total"`
}

// CategoryUpdate toggles listing categories; nil fields are left untouched.
type CategoryUpdate struct {
	IsFeatured           *bool `json:"isFeatured,omitempty"`
	IsTopPick            *bool `json:"isTopPick,omitempty"`
	IsHighlighted        *bool `json:"isHighlighted,omitempty"`
	IsInvestmentProperty *bool `json:"isInvestmentProperty,omitempty"`
	IsRecentlyAdded      *bool `json:"isRecentlyAdded,omitempty"`
}

// Empty reports whether no category is being changed.
func (u CategoryUpdate) Empty() bool {
	return u.IsFeatured == nil && u.IsTopPick == nil && u.IsHighlighted == nil &&
		u.IsInvestmentProperty == nil && u.IsRecentlyAdded == nil
}

type BulkCategoryUpdate struct {
	PropertyIDs []string `json:"propertyIds" validate:"required,min=1,dive,required"`
	CategoryUpdate
}

// APIResponse is the envelope every marketplace endpoint answers with.
type APIResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
