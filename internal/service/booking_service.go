package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/config"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/persistence"
	"github.com/spec-kit/rental-service/internal/repository"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string, ttl, wait time.Duration) (release func(), err error)
}

// NoopLocker grants every lock immediately.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string, time.Duration, time.Duration) (func(), error) {
	return func() {}, nil
}

// BookingService creates reservations without overlapping date ranges.
type BookingService struct {
	eventPublisher
	bookings repository.BookingRepository
	listings repository.ListingRepository
	locker   Locker
	lockTTL  time.Duration
	lockWait time.Duration
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	BookingRepo repository.BookingRepository
	ListingRepo repository.ListingRepository
	Locker      Locker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// BookingInput is the raw reservation request.
type BookingInput struct {
	ListingID string
	StartDate string
	EndDate   string
}

// NewBookingService constructs the service.
func NewBookingService(cfg config.BookingConfig, deps BookingDependencies) *BookingService {
	locker := deps.Locker
	if locker == nil {
		locker = NoopLocker{}
	}
	return &BookingService{
		eventPublisher: eventPublisher{dispatcher: deps.Dispatcher, logger: nopIfNil(deps.Logger)},
		bookings:       deps.BookingRepo,
		listings:       deps.ListingRepo,
		locker:         locker,
		lockTTL:        cfg.LockTTL(),
		lockWait:       cfg.LockWait(),
	}
}

// CreateBooking reserves [start, end] on a listing for actor. Both bounds are
// inclusive, so a range touching an existing booking's last day conflicts.
func (s *BookingService) CreateBooking(ctx context.Context, actor *domain.User, input BookingInput) (*domain.Booking, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	listingID := strings.TrimSpace(input.ListingID)
	if listingID == "" || strings.TrimSpace(input.StartDate) == "" || strings.TrimSpace(input.EndDate) == "" {
		return nil, apperrors.NewValidationError("listingId, startDate and endDate are required", nil)
	}

	start, err := domain.ParseDate(input.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid startDate", map[string]any{"startDate": input.StartDate})
	}
	end, err := domain.ParseDate(input.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid endDate", map[string]any{"endDate": input.EndDate})
	}
	dates, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, apperrors.NewValidationError("startDate must be before endDate", nil)
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, listingNotFound(listingID)
		}
		return nil, apperrors.MapError(err)
	}

	release, err := s.locker.Lock(ctx, "booking:listing:"+listingID, s.lockTTL, s.lockWait)
	if err != nil {
		if errors.Is(err, persistence.ErrLockTimeout) {
			return nil, apperrors.NewConflict("listing is busy, retry the booking", map[string]any{"listing_id": listingID})
		}
		return nil, apperrors.NewUpstreamFailure(err)
	}
	defer release()

	existing, err := s.bookings.FindOverlapping(ctx, listingID, dates)
	switch {
	case err == nil:
		return nil, overlapConflict(listingID, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.MapError(err)
	}

	booking := &domain.Booking{
		ListingID: listing.ID,
		UserID:    actor.ID,
		StartDate: dates.Start,
		EndDate:   dates.End,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, overlapConflict(listingID, nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventBookingCreated,
		ResourceID: booking.ID,
		Actor:      actorOf(actor),
		Payload: events.BookingCreatedPayload{
			ListingID: listing.ID,
			HostID:    listing.HostID,
			StartDate: booking.StartDate.Format(domain.DateLayout),
			EndDate:   booking.EndDate.Format(domain.DateLayout),
		},
	})
	return booking, nil
}

// ListMyBookings returns userID's bookings, latest start first.
func (s *BookingService) ListMyBookings(ctx context.Context, userID string) ([]BookingView, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ListingID)
	}
	listings, err := s.listings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, BookingView{Booking: b, Listing: listings[b.ListingID]})
	}
	return views, nil
}

func overlapConflict(listingID string, existing *domain.Booking) error {
	details := map[string]any{"listing_id": listingID}
	if existing != nil {
		details["conflicting_start"] = existing.StartDate.Format(domain.DateLayout)
		details["conflicting_end"] = existing.EndDate.Format(domain.DateLayout)
	}
	return apperrors.NewConflict("listing already booked for these dates", details)
}
