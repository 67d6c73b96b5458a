package events

import (
	"time"

	"github.com/spec-kit/rental-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated EventType = "booking.created"
	EventListingCreated EventType = "listing.created"
	EventListingDeleted EventType = "listing.deleted"
	EventUserRegistered EventType = "user.registered"
	EventUserDeleted    EventType = "user.deleted"
	EventUserPromoted   EventType = "user.promoted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	ListingID string `json:"listing_id"`
	HostID    string `json:"host_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ListingCreatedPayload payload.
type ListingCreatedPayload struct {
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
}

// ListingDeletedPayload payload.
type ListingDeletedPayload struct {
	HostID        string `json:"host_id"`
	ImagesRemoved int    `json:"images_removed"`
	ImagesFailed  int    `json:"images_failed"`
}

// UserPayload payload, used for registrations and deletions.
type UserPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// UserRoleChangedPayload payload, used for promotions.
type UserRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}
