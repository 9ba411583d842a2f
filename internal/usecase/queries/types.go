package queries

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ListingView represents read-optimized listing data
type ListingView struct {
	ID                  int64     `json:"id"`
	Owner               string    `json:"owner"`
	PricePerNightMinor  int64     `json:"price_per_night_minor"`
	Name                string    `json:"name"`
	Location            string    `json:"location"`
	Description         string    `json:"description"`
	ImageURI            string    `json:"image_uri"`
	Active              bool      `json:"active"`
	TotalBookings       int64     `json:"total_bookings"`
	RatingSum           int64     `json:"rating_sum"`
	RatingCount         int64     `json:"rating_count"`
	AverageRatingScaled int64     `json:"average_rating_scaled"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// BookingView joins a booking with its escrow hold
type BookingView struct {
	ID                 int64     `json:"id"`
	ListingID          int64     `json:"listing_id"`
	Guest              string    `json:"guest"`
	CheckIn            time.Time `json:"check_in"`
	CheckOut           time.Time `json:"check_out"`
	Nights             int64     `json:"nights"`
	Status             string    `json:"status"`
	GrossAmountMinor   int64     `json:"gross_amount_minor"`
	FeeRateBasisPoints int64     `json:"fee_rate_basis_points"`
	FeeAmountMinor     int64     `json:"fee_amount_minor"`
	NetToHostMinor     int64     `json:"net_to_host_minor"`
	EscrowHeldMinor    int64     `json:"escrow_held_minor"`
	EscrowState        string    `json:"escrow_state"`
	RefundedMinor      int64     `json:"refunded_minor"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type IntervalView struct {
	BookingID int64     `json:"booking_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
}

// AvailabilityView lists the blocking reservations inside [From, To).
type AvailabilityView struct {
	ListingID int64          `json:"listing_id"`
	From      time.Time      `json:"from"`
	To        time.Time      `json:"to"`
	Available bool           `json:"available"`
	Blocked   []IntervalView `json:"blocked"`
}

type ReviewView struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	ListingID int64     `json:"listing_id"`
	Reviewer  string    `json:"reviewer"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewPage struct {
	Items     []ReviewView
	NextAfter *int64
}

type EventView struct {
	Seq        int64           `json:"seq"`
	ID         uuid.UUID       `json:"id"`
	Kind       string          `json:"kind"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Actor      string          `json:"actor"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type EventPage struct {
	Items     []EventView
	NextAfter *int64
}

// TreasuryView is the conservation check over the whole journal
type TreasuryView struct {
	AcceptedMinor     int64 `json:"accepted_minor"`
	HostPayoutsMinor  int64 `json:"host_payouts_minor"`
	PlatformFeesMinor int64 `json:"platform_fees_minor"`
	RefundsMinor      int64 `json:"refunds_minor"`
	WithdrawalsMinor  int64 `json:"withdrawals_minor"`
	HeldMinor         int64 `json:"held_minor"`
	Balanced          bool  `json:"balanced"`
}

type AccountView struct {
	Holder       string     `json:"holder"`
	BalanceMinor int64      `json:"balance_minor"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
