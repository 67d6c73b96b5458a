package service

import (
	"context"
	"testing"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

func TestAdminPromoteAndDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", domain.RoleAdmin)
	guest := f.user(t, "guest", domain.RoleGuest)

	promoted, err := f.admin.PromoteToHost(ctx, admin, guest.ID)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != domain.RoleHost || promoted.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", promoted)
	}

	if _, err := f.admin.PromoteToHost(ctx, admin, "missing"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := f.admin.DeleteUser(ctx, admin, guest.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.admin.DeleteUser(ctx, admin, guest.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	got := f.dispatcher.types()
	want := []events.EventType{events.EventUserPromoted, events.EventUserDeleted}
	if len(got) != len(want) {
		t.Fatalf("unexpected events %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestAdminListsHideSecrets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.user(t, "host", domain.RoleHost)
	guest := f.user(t, "guest", domain.RoleGuest)
	listing := f.listing(t, host)
	if _, err := f.bookings.CreateBooking(ctx, guest, BookingInput{ListingID: listing.ID, StartDate: "2025-01-01", EndDate: "2025-01-02"}); err != nil {
		t.Fatalf("book: %v", err)
	}

	users, err := f.admin.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Fatalf("hash leaked for %s", u.Email)
		}
	}

	listings, err := f.admin.ListListings(ctx)
	if err != nil {
		t.Fatalf("list listings: %v", err)
	}
	if len(listings) != 1 || listings[0].Host == nil || listings[0].Host.Email != host.Email {
		t.Fatalf("unexpected listings %+v", listings)
	}

	bookings, err := f.admin.ListBookings(ctx)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(bookings) != 1 || bookings[0].User == nil || bookings[0].User.Name != "guest" || bookings[0].Listing == nil {
		t.Fatalf("unexpected bookings %+v", bookings)
	}
}

func TestAdminDeleteListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", domain.RoleAdmin)
	host := f.user(t, "host", domain.RoleHost)
	listing := f.listing(t, host, "https://res.cloudinary.com/demo/image/upload/v1/x.jpg")

	if err := f.admin.DeleteListing(ctx, admin, listing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.media.deleted) != 1 {
		t.Fatalf("expected media cascade, got %v", f.media.deleted)
	}
	if err := f.admin.DeleteListing(ctx, admin, listing.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
