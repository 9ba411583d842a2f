package availability

import (
	"sort"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/pkg/errs"
)

var (
	ErrOverlap   = errs.NewMarked("requested dates overlap an existing reservation", errs.ErrDatesUnavailable)
	ErrCorrupted = errs.NewMarked("stored reservation intervals overlap", errs.ErrInvariantViolation)
	ErrDuplicate = errs.NewMarked("booking already holds a reservation", errs.ErrInvariantViolation)
)

// Interval is a reservation held by a booking. Historical intervals belong to
// completed stays: they are kept for audit and no longer shown as blocking.
type Interval struct {
	BookingID  booking.ID
	Stay       booking.StayRange
	Historical bool
}

// Calendar is the reservation set of one listing, ordered by check-in.
// It is not safe for concurrent use; callers hold the listing's unit of work.
type Calendar struct {
	listingID listing.ID
	intervals []Interval
}

// NewCalendar rejects interval sets that already overlap.
func NewCalendar(listingID listing.ID, intervals []Interval) (*Calendar, error) {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Stay.CheckIn().Before(sorted[j].Stay.CheckIn())
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Stay.Overlaps(sorted[i].Stay) {
			return nil, errs.Wrapf(ErrCorrupted, "listing %d: bookings %d and %d",
				listingID, sorted[i-1].BookingID, sorted[i].BookingID)
		}
	}
	return &Calendar{listingID: listingID, intervals: sorted}, nil
}

func (c *Calendar) ListingID() listing.ID { return c.listingID }

// TryReserve never waits: it inserts the interval or fails with ErrOverlap
// leaving the calendar unchanged. Historical intervals still conflict.
func (c *Calendar) TryReserve(bookingID booking.ID, stay booking.StayRange) (Interval, error) {
	for _, iv := range c.intervals {
		if iv.BookingID == bookingID {
			return Interval{}, ErrDuplicate
		}
	}
	i := c.search(stay)
	if i > 0 && c.intervals[i-1].Stay.Overlaps(stay) {
		return Interval{}, ErrOverlap
	}
	if i < len(c.intervals) && c.intervals[i].Stay.Overlaps(stay) {
		return Interval{}, ErrOverlap
	}
	iv := Interval{BookingID: bookingID, Stay: stay}
	c.intervals = append(c.intervals, Interval{})
	copy(c.intervals[i+1:], c.intervals[i:])
	c.intervals[i] = iv
	return iv, nil
}

// Release reports whether an interval was removed.
func (c *Calendar) Release(bookingID booking.ID) bool {
	for i, iv := range c.intervals {
		if iv.BookingID == bookingID {
			c.intervals = append(c.intervals[:i], c.intervals[i+1:]...)
			return true
		}
	}
	return false
}

// Archive reports whether an interval was newly marked historical.
func (c *Calendar) Archive(bookingID booking.ID) bool {
	for i := range c.intervals {
		if c.intervals[i].BookingID == bookingID {
			if c.intervals[i].Historical {
				return false
			}
			c.intervals[i].Historical = true
			return true
		}
	}
	return false
}

func (c *Calendar) Holds(bookingID booking.ID) bool {
	for _, iv := range c.intervals {
		if iv.BookingID == bookingID {
			return true
		}
	}
	return false
}

// Blocking returns the non-historical intervals overlapping window.
func (c *Calendar) Blocking(window booking.StayRange) []Interval {
	var out []Interval
	for _, iv := range c.intervals {
		if !iv.Historical && iv.Stay.Overlaps(window) {
			out = append(out, iv)
		}
	}
	return out
}

func (c *Calendar) Intervals() []Interval {
	out := make([]Interval, len(c.intervals))
	copy(out, c.intervals)
	return out
}

// search returns the first index whose check-in is not before stay's check-in.
func (c *Calendar) search(stay booking.StayRange) int {
	return sort.Search(len(c.intervals), func(i int) bool {
		return !c.intervals[i].Stay.CheckIn().Before(stay.CheckIn())
	})
}
