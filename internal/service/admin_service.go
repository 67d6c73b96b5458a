package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/repository"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// AdminService exposes platform-wide reads and moderation.
type AdminService struct {
	eventPublisher
	users        repository.UserRepository
	listings     repository.ListingRepository
	bookings     repository.BookingRepository
	listingOwner *ListingService
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo       repository.UserRepository
	ListingRepo    repository.ListingRepository
	BookingRepo    repository.BookingRepository
	ListingService *ListingService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		eventPublisher: eventPublisher{dispatcher: deps.Dispatcher, logger: nopIfNil(deps.Logger)},
		users:          deps.UserRepo,
		listings:       deps.ListingRepo,
		bookings:       deps.BookingRepo,
		listingOwner:   deps.ListingService,
	}
}

// ListUsers returns every account without password hashes.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// ListListings returns every listing with its host.
func (s *AdminService) ListListings(ctx context.Context) ([]ListingView, error) {
	listings, err := s.listings.List(ctx, domain.ListingFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.listingOwner.withHosts(ctx, listings)
}

// ListBookings returns every booking with its guest and listing.
func (s *AdminService) ListBookings(ctx context.Context) ([]BookingView, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	userIDs := make([]string, 0, len(bookings))
	listingIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		userIDs = append(userIDs, b.UserID)
		listingIDs = append(listingIDs, b.ListingID)
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	listings, err := s.listings.GetByIDs(ctx, listingIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := BookingView{Booking: b, Listing: listings[b.ListingID]}
		if u, ok := users[b.UserID]; ok {
			view.User = u.Public()
		}
		views = append(views, view)
	}
	return views, nil
}

// DeleteUser removes an account. Its listings and bookings are kept.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return userNotFound(user.ID)
		}
		return apperrors.MapError(err)
	}
	// event ids are taken from the stored record; route params are only valid during the request
	s.publishEvent(ctx, events.Event{
		Type:       events.EventUserDeleted,
		ResourceID: user.ID,
		Actor:      actorOf(actor),
		Payload:    events.UserPayload{Email: user.Email, Role: user.Role},
	})
	return nil
}

// DeleteListing removes any listing with its images.
func (s *AdminService) DeleteListing(ctx context.Context, actor *domain.User, id string) error {
	listing, err := s.listingOwner.load(ctx, id)
	if err != nil {
		return err
	}
	return s.listingOwner.remove(ctx, actor, listing)
}

// PromoteToHost grants the host role.
func (s *AdminService) PromoteToHost(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	oldRole := user.Role
	user.Role = domain.RoleHost
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(user.ID)
		}
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventUserPromoted,
		ResourceID: user.ID,
		Actor:      actorOf(actor),
		Payload:    events.UserRoleChangedPayload{OldRole: oldRole, NewRole: user.Role},
	})
	return user.Public(), nil
}

func (s *AdminService) getUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func userNotFound(id string) error {
	return apperrors.NewNotFound("user", map[string]any{"user_id": id})
}
