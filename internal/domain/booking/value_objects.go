package booking

import (
	"strconv"
	"time"

	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/errs"
)

const (
	DateLayout = "2006-01-02"
	MaxNights  = 365
)

var (
	ErrInvalidStay = errs.NewMarked("check-out must be after check-in", errs.ErrInvalidInput)
	ErrStayTooLong = errs.NewMarked("stay exceeds the maximum number of nights", errs.ErrInvalidInput)
	ErrInvalidDate = errs.NewMarked("dates must use YYYY-MM-DD", errs.ErrInvalidInput)
)

type ID int64

func (id ID) Int64() int64   { return int64(id) }
func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, errs.Mark(errs.Newf("invalid booking id %q", s), errs.ErrInvalidInput)
	}
	return ID(v), nil
}

// StayRange is the half-open date range [checkIn, checkOut). A guest
// checking out on day N and another checking in on day N do not conflict.
type StayRange struct {
	checkIn  time.Time
	checkOut time.Time
}

func NewStayRange(checkIn, checkOut time.Time) (StayRange, error) {
	in, out := clock.DateOf(checkIn), clock.DateOf(checkOut)
	if !out.After(in) {
		return StayRange{}, ErrInvalidStay
	}
	s := StayRange{checkIn: in, checkOut: out}
	if s.Nights() > MaxNights {
		return StayRange{}, ErrStayTooLong
	}
	return s, nil
}

// ParseStayRange parses two YYYY-MM-DD dates.
func ParseStayRange(checkIn, checkOut string) (StayRange, error) {
	in, err := time.ParseInLocation(DateLayout, checkIn, time.UTC)
	if err != nil {
		return StayRange{}, ErrInvalidDate
	}
	out, err := time.ParseInLocation(DateLayout, checkOut, time.UTC)
	if err != nil {
		return StayRange{}, ErrInvalidDate
	}
	return NewStayRange(in, out)
}

// ReconstructStayRange trusts stored dates and skips the length cap, which
// may have changed since the stay was booked.
func ReconstructStayRange(checkIn, checkOut time.Time) StayRange {
	return StayRange{checkIn: clock.DateOf(checkIn), checkOut: clock.DateOf(checkOut)}
}

func (s StayRange) CheckIn() time.Time  { return s.checkIn }
func (s StayRange) CheckOut() time.Time { return s.checkOut }

// Nights counts calendar days; both bounds are UTC midnights so the
// division is exact.
func (s StayRange) Nights() int64 {
	return (s.checkOut.Unix() - s.checkIn.Unix()) / 86400
}

func (s StayRange) Overlaps(o StayRange) bool {
	return s.checkIn.Before(o.checkOut) && o.checkIn.Before(s.checkOut)
}

func (s StayRange) String() string {
	return "[" + s.checkIn.Format(DateLayout) + "," + s.checkOut.Format(DateLayout) + ")"
}

// Quote is the price of a stay, fixed at booking time.
type Quote struct {
	nights  int64
	gross   money.Amount
	fee     money.Amount
	net     money.Amount
	feeRate money.BasisPoints
}

func NewQuote(stay StayRange, pricePerNight money.Amount, rate money.BasisPoints) (Quote, error) {
	gross, err := pricePerNight.MulInt(stay.Nights())
	if err != nil {
		return Quote{}, err
	}
	fee, net := money.SplitFee(gross, rate)
	return Quote{
		nights:  stay.Nights(),
		gross:   gross,
		fee:     fee,
		net:     net,
		feeRate: rate,
	}, nil
}

func ReconstructQuote(nights int64, gross, fee, net money.Amount, rate money.BasisPoints) Quote {
	return Quote{nights: nights, gross: gross, fee: fee, net: net, feeRate: rate}
}

func (q Quote) Nights() int64              { return q.nights }
func (q Quote) Gross() money.Amount        { return q.gross }
func (q Quote) Fee() money.Amount          { return q.fee }
func (q Quote) NetToHost() money.Amount    { return q.net }
func (q Quote) FeeRate() money.BasisPoints { return q.feeRate }
