package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rental-service/internal/domain"
)

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository instantiates the Postgres repository. Overlaps are
// also rejected by the bookings_no_overlap exclusion constraint.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingColumns = `id, listing_id, user_id, start_date, end_date, created_at`

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (id, listing_id, user_id, start_date, end_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	return translatePgError(r.pool.QueryRow(ctx, query,
		booking.ID,
		booking.ListingID,
		booking.UserID,
		booking.StartDate,
		booking.EndDate,
	).Scan(&booking.CreatedAt))
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, listingID string, dates domain.DateRange) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
        WHERE listing_id=$1 AND start_date <= $2 AND end_date >= $3
        ORDER BY start_date ASC LIMIT 1`
	var booking domain.Booking
	err := r.pool.QueryRow(ctx, query, listingID, dates.End, dates.Start).Scan(
		&booking.ID,
		&booking.ListingID,
		&booking.UserID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, translatePgError(err)
	}
	normalizeBookingDates(&booking)
	return &booking, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var result []domain.Booking
	for rows.Next() {
		var booking domain.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.ListingID,
			&booking.UserID,
			&booking.StartDate,
			&booking.EndDate,
			&booking.CreatedAt,
		); err != nil {
			return nil, err
		}
		normalizeBookingDates(&booking)
		result = append(result, booking)
	}
	return result, rows.Err()
}

func normalizeBookingDates(b *domain.Booking) {
	b.StartDate = domain.TruncateDate(b.StartDate)
	b.EndDate = domain.TruncateDate(b.EndDate)
}
