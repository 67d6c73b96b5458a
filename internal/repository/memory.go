package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/rental-service/internal/domain"
)

// memoryDB holds every record behind one lock so booking check-and-insert is atomic.
type memoryDB struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	listings map[string]domain.Listing
	bookings map[string]domain.Booking
	now      func() time.Time
}

// NewMemoryStore returns a process-local store for development and tests.
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:    map[string]domain.User{},
		listings: map[string]domain.Listing{},
		bookings: map[string]domain.Booking{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	return &Store{
		Users:    &memoryUsers{db: db},
		Listings: &memoryListings{db: db},
		Bookings: &memoryBookings{db: db},
	}
}

type memoryUsers struct{ db *memoryDB }

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.db.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.db.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) Update(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range r.db.users {
		if id != user.ID && other.Email == user.Email {
			return ErrDuplicate
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.db.now()
	r.db.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	user, ok := r.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, user := range r.db.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) GetByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make(map[string]*domain.User, len(ids))
	for _, id := range uniqueIDs(ids) {
		if user, ok := r.db.users[id]; ok {
			u := user
			result[id] = &u
		}
	}
	return result, nil
}

func (r *memoryUsers) List(_ context.Context) ([]domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make([]domain.User, 0, len(r.db.users))
	for _, user := range r.db.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *memoryUsers) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.users, id)
	return nil
}

type memoryListings struct{ db *memoryDB }

func (r *memoryListings) Create(_ context.Context, listing *domain.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}
	now := r.db.now()
	listing.CreatedAt, listing.UpdatedAt = now, now
	r.db.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (r *memoryListings) Update(_ context.Context, listing *domain.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.listings[listing.ID]
	if !ok {
		return ErrNotFound
	}
	listing.HostID = existing.HostID
	listing.CreatedAt = existing.CreatedAt
	listing.UpdatedAt = r.db.now()
	r.db.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (r *memoryListings) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	listing, ok := r.db.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	l := cloneListing(listing)
	return &l, nil
}

func (r *memoryListings) GetByIDs(_ context.Context, ids []string) (map[string]*domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make(map[string]*domain.Listing, len(ids))
	for _, id := range uniqueIDs(ids) {
		if listing, ok := r.db.listings[id]; ok {
			l := cloneListing(listing)
			result[id] = &l
		}
	}
	return result, nil
}

func (r *memoryListings) List(_ context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make([]domain.Listing, 0, len(r.db.listings))
	for _, listing := range r.db.listings {
		if filter.Matches(&listing) {
			result = append(result, cloneListing(listing))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memoryListings) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.listings[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.listings, id)
	return nil
}

func cloneListing(l domain.Listing) domain.Listing {
	l.Images = append([]string{}, l.Images...)
	return l
}

type memoryBookings struct{ db *memoryDB }

// Create rejects overlaps under the write lock.
func (r *memoryBookings) Create(_ context.Context, booking *domain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.overlapping(booking.ListingID, booking.Range()) != nil {
		return ErrOverlap
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = r.db.now()
	r.db.bookings[booking.ID] = *booking
	return nil
}

func (r *memoryBookings) FindOverlapping(_ context.Context, listingID string, dates domain.DateRange) (*domain.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if b := r.overlapping(listingID, dates); b != nil {
		return b, nil
	}
	return nil, ErrNotFound
}

func (r *memoryBookings) overlapping(listingID string, dates domain.DateRange) *domain.Booking {
	for _, b := range r.db.bookings {
		if b.ListingID == listingID && b.Range().Overlaps(dates) {
			found := b
			return &found
		}
	}
	return nil
}

func (r *memoryBookings) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var result []domain.Booking
	for _, b := range r.db.bookings {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	sortByStartDesc(result)
	return result, nil
}

func (r *memoryBookings) List(_ context.Context) ([]domain.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make([]domain.Booking, 0, len(r.db.bookings))
	for _, b := range r.db.bookings {
		result = append(result, b)
	}
	sortByStartDesc(result)
	return result, nil
}

func sortByStartDesc(bookings []domain.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartDate.After(bookings[j].StartDate)
	})
}
