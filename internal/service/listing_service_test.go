package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

func uploads(n int) []ImageUpload {
	files := make([]ImageUpload, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, ImageUpload{Filename: "img.jpg", Content: strings.NewReader("x")})
	}
	return files
}

func TestCreateListingUploadsImages(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "host", domain.RoleHost)

	listing, err := f.listings.CreateListing(context.Background(), host, ListingInput{
		Title:    strPtr(" Loft "),
		Location: strPtr("Berlin"),
		Price:    floatPtr(120),
	}, uploads(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if listing.HostID != host.ID || listing.Title != "Loft" {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if len(listing.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(listing.Images))
	}
	if got := f.dispatcher.types(); len(got) != 1 || got[0] != events.EventListingCreated {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestCreateListingValidation(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "host", domain.RoleHost)
	ctx := context.Background()
	valid := ListingInput{Title: strPtr("t"), Location: strPtr("l"), Price: floatPtr(10)}

	cases := map[string]struct {
		input ListingInput
		files int
	}{
		"missing title": {ListingInput{Location: strPtr("l"), Price: floatPtr(10)}, 0},
		"zero price":    {ListingInput{Title: strPtr("t"), Location: strPtr("l"), Price: floatPtr(0)}, 0},
		"no location":   {ListingInput{Title: strPtr("t"), Price: floatPtr(10)}, 0},
		"six images":    {valid, 6},
	}
	for name, tc := range cases {
		_, err := f.listings.CreateListing(ctx, host, tc.input, uploads(tc.files))
		if !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
	if f.media.uploads != 0 {
		t.Fatalf("nothing should be uploaded on invalid input, got %d", f.media.uploads)
	}
}

func TestCreateListingUploadFailure(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "host", domain.RoleHost)
	f.media.uploadErr = errors.New("cloud down")

	_, err := f.listings.CreateListing(context.Background(), host, ListingInput{
		Title: strPtr("t"), Location: strPtr("l"), Price: floatPtr(10),
	}, uploads(1))
	if !apperrors.HasCode(err, apperrors.CodeUpstreamFailure) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	all, _ := f.store.Listings.List(context.Background(), domain.ListingFilter{})
	if len(all) != 0 {
		t.Fatal("listing should not be stored")
	}
}

func TestUpdateListingOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.RoleHost)
	other := f.user(t, "other", domain.RoleHost)
	admin := f.user(t, "admin", domain.RoleAdmin)
	listing := f.listing(t, owner, "a", "b", "c", "d")

	_, err := f.listings.UpdateListing(ctx, other, listing.ID, ListingInput{Title: strPtr("Hijacked")}, nil)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = f.listings.UpdateListing(ctx, owner, listing.ID, ListingInput{}, uploads(2))
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected image cap error, got %v", err)
	}

	updated, err := f.listings.UpdateListing(ctx, owner, listing.ID, ListingInput{Price: floatPtr(99)}, uploads(1))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 99 || len(updated.Images) != 5 || updated.Images[0] != "a" {
		t.Fatalf("unexpected listing %+v", updated)
	}

	if _, err := f.listings.UpdateListing(ctx, admin, listing.ID, ListingInput{Description: strPtr("moderated")}, nil); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	stored, _ := f.store.Listings.GetByID(ctx, listing.ID)
	if stored.HostID != owner.ID || stored.Description != "moderated" || stored.Title != "Flat" {
		t.Fatalf("unexpected stored listing %+v", stored)
	}

	_, err = f.listings.UpdateListing(ctx, owner, "missing", ListingInput{}, nil)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteListingCascadesMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.RoleHost)
	stranger := f.user(t, "stranger", domain.RoleHost)
	listing := f.listing(t, owner, "https://res.cloudinary.com/demo/image/upload/v1/a.jpg", "https://res.cloudinary.com/demo/image/upload/v1/b.jpg")
	f.media.failOn = listing.Images[0]

	if err := f.listings.DeleteListing(ctx, stranger, listing.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(f.media.deleted) != 0 {
		t.Fatal("no media should be touched on forbidden delete")
	}

	if err := f.listings.DeleteListing(ctx, owner, listing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.media.deleted) != 2 {
		t.Fatalf("expected one delete call per image, got %v", f.media.deleted)
	}
	if _, err := f.listings.GetListing(ctx, listing.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected listing gone, got %v", err)
	}
}

func TestListListingsWithHosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.user(t, "host", domain.RoleHost)
	f.listing(t, host)

	views, err := f.listings.ListListings(ctx, domain.ListingFilter{Location: strPtr("lis")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Host == nil || views[0].Host.Name != "host" {
		t.Fatalf("unexpected views %+v", views)
	}
	if views[0].Host.PasswordHash != "" {
		t.Fatal("host hash leaked")
	}

	_, err = f.listings.ListListings(ctx, domain.ListingFilter{MinPrice: floatPtr(10), MaxPrice: floatPtr(5)})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateThenGetListingRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.user(t, "host", domain.RoleHost)

	created, err := f.listings.CreateListing(ctx, host, ListingInput{
		Title:       strPtr("Riverside flat"),
		Description: strPtr("Two rooms, balcony over the Tagus"),
		Location:    strPtr("Lisbon"),
		Price:       floatPtr(95.5),
	}, uploads(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := f.listings.GetListing(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID ||
		got.Title != created.Title ||
		got.Description != created.Description ||
		got.Location != created.Location ||
		got.Price != created.Price ||
		got.HostID != host.ID {
		t.Fatalf("round trip mismatch:\ncreated %+v\ngot     %+v", *created, got.Listing)
	}
	if len(got.Images) != 3 {
		t.Fatalf("expected 3 images, got %v", got.Images)
	}
	for i := range created.Images {
		if got.Images[i] != created.Images[i] {
			t.Fatalf("image %d: got %q want %q", i, got.Images[i], created.Images[i])
		}
	}
	if got.Host == nil || got.Host.ID != host.ID {
		t.Fatalf("expected host attached, got %+v", got.Host)
	}
}
