// File: internal/market/model.go
package market

import (
	"strings"
	"time"

	"krishipredict_backend/internal/common"

	"github.com/google/uuid"
)

// ListingStatus defines the possible statuses of a listing.
type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusSold    ListingStatus = "sold"
	StatusExpired ListingStatus = "expired"
)

// Defaults applied to optional listing fields.
const (
	DefaultVariety = "Standard"
	DefaultUnit    = "Quintal"
)

// Listing is a crop offered for sale in Kisan Bazaar.
type Listing struct {
	common.BaseModel
	SellerID      *uuid.UUID    `gorm:"type:uuid;index" json:"sellerId,omitempty"`
	SellerName    string        `gorm:"type:varchar(100);not null" json:"sellerName"`
	SellerPhone   string        `gorm:"type:varchar(15);not null;index" json:"sellerPhone"`
	District      string        `gorm:"type:varchar(100);not null;index" json:"district"`
	State         string        `gorm:"type:varchar(100);not null" json:"state"`
	Crop          string        `gorm:"type:varchar(100);not null;index" json:"crop"`
	Variety       string        `gorm:"type:varchar(100);not null" json:"variety"`
	Quantity      float64       `gorm:"not null" json:"quantity"`
	Unit          string        `gorm:"type:varchar(30);not null" json:"unit"`
	ExpectedPrice float64       `gorm:"not null" json:"expectedPrice"`
	Status        ListingStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Image         *string       `gorm:"type:text" json:"image,omitempty"`
}

// TableName specifies the table name for GORM.
func (Listing) TableName() string {
	return "market_listings"
}

// CreateListingRequest is the body of POST /market/sell.
type CreateListingRequest struct {
	SellerID      *uuid.UUID `json:"sellerId"`
	SellerName    string     `json:"sellerName" binding:"required,max=100"`
	SellerPhone   string     `json:"sellerPhone" binding:"required,phone"`
	District      string     `json:"district" binding:"required,max=100"`
	State         string     `json:"state" binding:"omitempty,max=100"`
	Crop          string     `json:"crop" binding:"required,max=100"`
	Variety       string     `json:"variety" binding:"omitempty,max=100"`
	Quantity      *float64   `json:"quantity" binding:"required,gt=0"`
	Unit          string     `json:"unit" binding:"omitempty,max=30"`
	ExpectedPrice *float64   `json:"expectedPrice" binding:"required,gt=0"`
	Image         *string    `json:"image"`
}

// ToListing applies the field defaults. An empty state is recorded as
// defaultState.
func (r CreateListingRequest) ToListing(defaultState string) *Listing {
	l := &Listing{
		SellerID:      r.SellerID,
		SellerName:    strings.TrimSpace(r.SellerName),
		SellerPhone:   strings.TrimSpace(r.SellerPhone),
		District:      strings.TrimSpace(r.District),
		State:         orDefault(r.State, defaultState),
		Crop:          strings.TrimSpace(r.Crop),
		Variety:       orDefault(r.Variety, DefaultVariety),
		Quantity:      *r.Quantity,
		Unit:          orDefault(r.Unit, DefaultUnit),
		ExpectedPrice: *r.ExpectedPrice,
		Status:        StatusActive,
	}
	if r.Image != nil && strings.TrimSpace(*r.Image) != "" {
		l.Image = r.Image
	}
	return l
}

// UpdateStatusRequest lets a seller mark their listing sold or expired.
type UpdateStatusRequest struct {
	SellerPhone string `json:"sellerPhone" binding:"required,phone"`
	Status      string `json:"status" binding:"required,oneof=active sold expired"`
}

// SearchQuery filters active listings.
type SearchQuery struct {
	Query    string `form:"q" binding:"max=100"`
	District string `form:"district" binding:"max=100"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CreatedResponse is returned after a listing is created.
type CreatedResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Listing *Listing `json:"listing"`
}

func orDefault(v, def string) string {
	if t := strings.TrimSpace(v); t != "" {
		return t
	}
	return def
}

// listingDocument is the search index representation of a listing.
type listingDocument struct {
	SellerName    string    `json:"seller_name"`
	District      string    `json:"district"`
	State         string    `json:"state"`
	Crop          string    `json:"crop"`
	Variety       string    `json:"variety"`
	Quantity      float64   `json:"quantity"`
	Unit          string    `json:"unit"`
	ExpectedPrice float64   `json:"expected_price"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toDocument(l *Listing) listingDocument {
	return listingDocument{
		SellerName:    l.SellerName,
		District:      l.District,
		State:         l.State,
		Crop:          l.Crop,
		Variety:       l.Variety,
		Quantity:      l.Quantity,
		Unit:          l.Unit,
		ExpectedPrice: l.ExpectedPrice,
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt,
	}
}
