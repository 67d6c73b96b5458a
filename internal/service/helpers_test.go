package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/rental-service/internal/config"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/repository"
)

type fakeMedia struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	failOn    string
	uploadErr error
}

func (f *fakeMedia) Upload(_ context.Context, filename string, _ io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/listings/%d-%s", f.uploads, filename), nil
}

func (f *fakeMedia) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	if f.failOn != "" && url == f.failOn {
		return errors.New("provider unavailable")
	}
	return nil
}

type fakeLocker struct {
	err   error
	keys  []string
	freed int
}

func (f *fakeLocker) Lock(_ context.Context, key string, _, _ time.Duration) (func(), error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return func() { f.freed++ }, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *repository.Store
	media      *fakeMedia
	locker     *fakeLocker
	dispatcher *recordingDispatcher
	auth       *AuthService
	listings   *ListingService
	bookings   *BookingService
	admin      *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{
		Auth:    config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
		Booking: config.BookingConfig{LockTTLSeconds: 5, LockWaitMillis: 10},
	}
	f := &fixture{
		store:      repository.NewMemoryStore(),
		media:      &fakeMedia{},
		locker:     &fakeLocker{},
		dispatcher: &recordingDispatcher{},
	}
	f.auth = NewAuthService(cfg, AuthDependencies{UserRepo: f.store.Users, Dispatcher: f.dispatcher})
	f.listings = NewListingService(ListingDependencies{
		ListingRepo: f.store.Listings,
		UserRepo:    f.store.Users,
		Media:       f.media,
		Dispatcher:  f.dispatcher,
	})
	f.bookings = NewBookingService(cfg.Booking, BookingDependencies{
		BookingRepo: f.store.Bookings,
		ListingRepo: f.store.Listings,
		Locker:      f.locker,
		Dispatcher:  f.dispatcher,
	})
	f.admin = NewAdminService(AdminDependencies{
		UserRepo:       f.store.Users,
		ListingRepo:    f.store.Listings,
		BookingRepo:    f.store.Bookings,
		ListingService: f.listings,
		Dispatcher:     f.dispatcher,
	})
	return f
}

func (f *fixture) user(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	if err := f.store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) listing(t *testing.T, host *domain.User, images ...string) *domain.Listing {
	t.Helper()
	l := &domain.Listing{Title: "Flat", Location: "Lisbon", Price: 80, HostID: host.ID, Images: images}
	if err := f.store.Listings.Create(context.Background(), l); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }
