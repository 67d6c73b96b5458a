package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/media"
	"github.com/spec-kit/rental-service/internal/repository"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// ListingService coordinates listing reads, host mutations and media.
type ListingService struct {
	eventPublisher
	listings repository.ListingRepository
	users    repository.UserRepository
	media    media.Store
}

// ListingDependencies bundles collaborators for the listing service.
type ListingDependencies struct {
	ListingRepo repository.ListingRepository
	UserRepo    repository.UserRepository
	Media       media.Store
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ListingInput carries listing fields. Nil fields are left untouched on update.
type ListingInput struct {
	Title       *string
	Description *string
	Location    *string
	Price       *float64
}

// ImageUpload is one file to push to the media store.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// NewListingService constructs the service.
func NewListingService(deps ListingDependencies) *ListingService {
	store := deps.Media
	if store == nil {
		store = media.Disabled{}
	}
	return &ListingService{
		eventPublisher: eventPublisher{dispatcher: deps.Dispatcher, logger: nopIfNil(deps.Logger)},
		listings:       deps.ListingRepo,
		users:          deps.UserRepo,
		media:          store,
	}
}

// ListListings returns public listings matching filter, newest first.
func (s *ListingService) ListListings(ctx context.Context, filter domain.ListingFilter) ([]ListingView, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, apperrors.NewValidationError("min price exceeds max price", nil)
	}
	listings, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.withHosts(ctx, listings)
}

// GetListing loads one listing with its host.
func (s *ListingService) GetListing(ctx context.Context, id string) (*ListingView, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withHosts(ctx, []domain.Listing{*listing})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListHostListings returns the listings owned by hostID.
func (s *ListingService) ListHostListings(ctx context.Context, hostID string) ([]domain.Listing, error) {
	listings, err := s.listings.List(ctx, domain.ListingFilter{HostID: &hostID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return listings, nil
}

// CreateListing stores a listing owned by actor after uploading its images.
func (s *ListingService) CreateListing(ctx context.Context, actor *domain.User, input ListingInput, files []ImageUpload) (*domain.Listing, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	listing := &domain.Listing{HostID: actor.ID}
	applyListingInput(listing, input)
	if err := validateListing(listing); err != nil {
		return nil, err
	}
	if len(files) > domain.MaxListingImages {
		return nil, tooManyImages(len(files))
	}

	urls, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	listing.Images = urls

	if err := s.listings.Create(ctx, listing); err != nil {
		s.deleteImages(ctx, urls)
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventListingCreated,
		ResourceID: listing.ID,
		Actor:      actorOf(actor),
		Payload:    events.ListingCreatedPayload{Title: listing.Title, Location: listing.Location, Price: listing.Price},
	})
	return listing, nil
}

// UpdateListing applies a partial update. New images are appended.
func (s *ListingService) UpdateListing(ctx context.Context, actor *domain.User, id string, input ListingInput, files []ImageUpload) (*domain.Listing, error) {
	listing, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyListingInput(listing, input)
	if err := validateListing(listing); err != nil {
		return nil, err
	}
	if total := len(listing.Images) + len(files); total > domain.MaxListingImages {
		return nil, tooManyImages(total)
	}

	urls, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	listing.Images = append(listing.Images, urls...)

	if err := s.listings.Update(ctx, listing); err != nil {
		s.deleteImages(ctx, urls)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, listingNotFound(id)
		}
		return nil, apperrors.MapError(err)
	}
	return listing, nil
}

// DeleteListing removes a listing owned by actor together with its images.
func (s *ListingService) DeleteListing(ctx context.Context, actor *domain.User, id string) error {
	listing, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, actor, listing)
}

// remove runs the media cascade and deletes the record. Media failures are
// logged and do not block the delete.
func (s *ListingService) remove(ctx context.Context, actor *domain.User, listing *domain.Listing) error {
	removed, failed := s.deleteImages(ctx, listing.Images)
	if err := s.listings.Delete(ctx, listing.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return listingNotFound(listing.ID)
		}
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventListingDeleted,
		ResourceID: listing.ID,
		Actor:      actorOf(actor),
		Payload: events.ListingDeletedPayload{
			HostID:        listing.HostID,
			ImagesRemoved: removed,
			ImagesFailed:  failed,
		},
	})
	return nil
}

func (s *ListingService) load(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, listingNotFound(id)
		}
		return nil, apperrors.MapError(err)
	}
	return listing, nil
}

func (s *ListingService) loadOwned(ctx context.Context, actor *domain.User, id string) (*domain.Listing, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.IsOwnerOrHasRole(listing.HostID, actor, domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("not the listing owner")
	}
	return listing, nil
}

func (s *ListingService) withHosts(ctx context.Context, listings []domain.Listing) ([]ListingView, error) {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.HostID)
	}
	hosts, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		view := ListingView{Listing: l}
		if host, ok := hosts[l.HostID]; ok {
			view.Host = host.Public()
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ListingService) uploadAll(ctx context.Context, files []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.media.Upload(ctx, f.Filename, f.Content)
		if err != nil {
			s.deleteImages(ctx, urls)
			if errors.Is(err, media.ErrDisabled) {
				return nil, apperrors.NewValidationError("image uploads are not configured", nil)
			}
			return nil, apperrors.NewUpstreamFailure(err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *ListingService) deleteImages(ctx context.Context, urls []string) (removed, failed int) {
	for _, url := range urls {
		if err := s.media.Delete(ctx, url); err != nil {
			failed++
			s.logger.Warn("image delete failed", zap.String("url", url), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, failed
}

func applyListingInput(listing *domain.Listing, input ListingInput) {
	if input.Title != nil {
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		listing.Description = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		listing.Location = strings.TrimSpace(*input.Location)
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}
}

func validateListing(listing *domain.Listing) error {
	details := map[string]any{}
	if listing.Title == "" {
		details["title"] = "required"
	}
	if listing.Location == "" {
		details["location"] = "required"
	}
	if listing.Price <= 0 {
		details["price"] = "must be greater than 0"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid listing", details)
	}
	return nil
}

func tooManyImages(n int) error {
	return apperrors.NewValidationError("too many images", map[string]any{
		"max":   domain.MaxListingImages,
		"count": n,
	})
}

func listingNotFound(id string) error {
	return apperrors.NewNotFound("listing", map[string]any{"listing_id": id})
}
