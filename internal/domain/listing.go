package domain

import (
	"strings"
	"time"
)

// MaxListingImages caps the number of images attached to a listing.
const MaxListingImages = 5

// Listing is a property offered by a host.
type Listing struct {
	ID          string
	Title       string
	Description string
	Location    string
	Price       float64
	Images      []string
	HostID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListingFilter narrows public listing searches.
type ListingFilter struct {
	Location *string
	MinPrice *float64
	MaxPrice *float64
	HostID   *string
}

// Matches reports whether the listing satisfies the filter.
func (f ListingFilter) Matches(l *Listing) bool {
	if f.HostID != nil && l.HostID != *f.HostID {
		return false
	}
	if f.Location != nil && !containsFold(l.Location, *f.Location) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
