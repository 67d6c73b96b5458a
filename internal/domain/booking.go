package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

// Booking reserves a listing for a date range.
type Booking struct {
	ID        string
	ListingID string
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

// Range returns the booked dates.
func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// DateRange is a pair of calendar dates. Both bounds count as booked.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates start < end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if !start.Before(end) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{Start: start, End: end}, nil
}

// Overlaps uses inclusive bounds on both ends: a range ending on the day
// another starts is a conflict.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and truncates to the UTC date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return TruncateDate(t), nil
}

// TruncateDate drops the time of day, in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
