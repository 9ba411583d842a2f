package commands

// Event payloads. Dates use YYYY-MM-DD, amounts are minor units.

type listingCreatedPayload struct {
	Owner              string `json:"owner"`
	PricePerNightMinor int64  `json:"price_per_night_minor"`
	Name               string `json:"name"`
}

type listingPricePayload struct {
	OldPriceMinor int64 `json:"old_price_minor"`
	NewPriceMinor int64 `json:"new_price_minor"`
}

type bookingConfirmedPayload struct {
	ListingID          int64  `json:"listing_id"`
	Guest              string `json:"guest"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
	GrossMinor         int64  `json:"gross_minor"`
	FeeMinor           int64  `json:"fee_minor"`
	FeeRateBasisPoints int64  `json:"fee_rate_basis_points"`
}

type bookingClosedPayload struct {
	ListingID int64 `json:"listing_id"`
}

type escrowLockedPayload struct {
	BookingID   int64 `json:"booking_id"`
	AmountMinor int64 `json:"amount_minor"`
}

type escrowReleasedPayload struct {
	BookingID int64  `json:"booking_id"`
	Host      string `json:"host"`
	HostMinor int64  `json:"host_minor"`
	Platform  string `json:"platform"`
	FeeMinor  int64  `json:"fee_minor"`
}

type escrowRefundedPayload struct {
	BookingID   int64  `json:"booking_id"`
	Guest       string `json:"guest"`
	AmountMinor int64  `json:"amount_minor"`
}

type reviewSubmittedPayload struct {
	BookingID int64 `json:"booking_id"`
	ListingID int64 `json:"listing_id"`
	Rating    int   `json:"rating"`
}

type withdrawnPayload struct {
	AmountMinor  int64 `json:"amount_minor"`
	BalanceMinor int64 `json:"balance_minor"`
}
