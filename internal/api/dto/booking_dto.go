package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/service"
)

// BookingRequest payload. "listing" is accepted as an alias of "listingId".
type BookingRequest struct {
	ListingID string `json:"listingId" validate:"required_without=Listing"`
	Listing   string `json:"listing"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

// Input converts the request for the booking service.
func (r BookingRequest) Input() service.BookingInput {
	listingID := strings.TrimSpace(r.ListingID)
	if listingID == "" {
		listingID = strings.TrimSpace(r.Listing)
	}
	return service.BookingInput{ListingID: listingID, StartDate: r.StartDate, EndDate: r.EndDate}
}

// ListingSummary is the listing part of a booking read.
type ListingSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
}

// UserSummary is the guest part of an admin booking read.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingResponse is the API view of a booking. Listing is null once the
// listing was deleted.
type BookingResponse struct {
	ID        string          `json:"id"`
	ListingID string          `json:"listingId"`
	UserID    string          `json:"userId"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	CreatedAt time.Time       `json:"createdAt"`
	Listing   *ListingSummary `json:"listing"`
	User      *UserSummary    `json:"user,omitempty"`
}

func NewBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		ListingID: b.ListingID,
		UserID:    b.UserID,
		StartDate: b.StartDate.Format(domain.DateLayout),
		EndDate:   b.EndDate.Format(domain.DateLayout),
		CreatedAt: b.CreatedAt,
	}
}

// NewBookingViewResponses renders bookings with their summaries.
func NewBookingViewResponses(views []service.BookingView) []BookingResponse {
	out := make([]BookingResponse, 0, len(views))
	for _, v := range views {
		resp := NewBookingResponse(&v.Booking)
		if v.Listing != nil {
			images := v.Listing.Images
			if images == nil {
				images = []string{}
			}
			resp.Listing = &ListingSummary{
				ID:       v.Listing.ID,
				Title:    v.Listing.Title,
				Location: v.Listing.Location,
				Price:    v.Listing.Price,
				Images:   images,
			}
		}
		if v.User != nil {
			resp.User = &UserSummary{ID: v.User.ID, Name: v.User.Name, Email: v.User.Email}
		}
		out = append(out, resp)
	}
	return out
}
