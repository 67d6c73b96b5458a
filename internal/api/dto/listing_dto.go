package dto

import (
	"time"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/service"
)

// ListingRequest carries create and update fields. Nil fields are left untouched on update.
type ListingRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
}

// Input converts the request for the listing service.
func (r ListingRequest) Input() service.ListingInput {
	return service.ListingInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Price:       r.Price,
	}
}

// HostSummary identifies a listing's host. Email is only set on admin reads.
type HostSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ListingResponse is the API view of a listing.
type ListingResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Price       float64      `json:"price"`
	Images      []string     `json:"images"`
	HostID      string       `json:"hostId"`
	Host        *HostSummary `json:"host,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func NewListingResponse(l *domain.Listing) ListingResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Price:       l.Price,
		Images:      images,
		HostID:      l.HostID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func NewListingResponses(listings []domain.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, NewListingResponse(&listings[i]))
	}
	return out
}

// NewListingViewResponse renders a listing with its host summary.
func NewListingViewResponse(v service.ListingView, withEmail bool) ListingResponse {
	resp := NewListingResponse(&v.Listing)
	if v.Host != nil {
		resp.Host = &HostSummary{ID: v.Host.ID, Name: v.Host.Name}
		if withEmail {
			resp.Host.Email = v.Host.Email
		}
	}
	return resp
}

func NewListingViewResponses(views []service.ListingView, withEmail bool) []ListingResponse {
	out := make([]ListingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewListingViewResponse(v, withEmail))
	}
	return out
}
