package response

import (
	"stay-ledger/internal/usecase/queries"
)

type BookingResponse struct {
	ID                 int64  `json:"id"`
	ListingID          int64  `json:"listing_id"`
	Guest              string `json:"guest"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
	Nights             int64  `json:"nights"`
	Status             string `json:"status"`
	GrossAmountMinor   int64  `json:"gross_amount_minor"`
	FeeRateBasisPoints int64  `json:"fee_rate_basis_points"`
	FeeAmountMinor     int64  `json:"fee_amount_minor"`
	NetToHostMinor     int64  `json:"net_to_host_minor"`
	EscrowHeldMinor    int64  `json:"escrow_held_minor"`
	EscrowState        string `json:"escrow_state"`
	RefundedMinor      int64  `json:"refunded_minor"`
	CreatedAt          int64  `json:"created_at"`
	UpdatedAt          int64  `json:"updated_at"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	res := &BookingResponse{}
	mustCopy(res, v)
	return res
}
