package response

import (
	"stay-ledger/internal/usecase/queries"
)

type ListingResponse struct {
	ID                  int64  `json:"id"`
	Owner               string `json:"owner"`
	PricePerNightMinor  int64  `json:"price_per_night_minor"`
	Name                string `json:"name"`
	Location            string `json:"location"`
	Description         string `json:"description"`
	ImageURI            string `json:"image_uri"`
	Active              bool   `json:"active"`
	TotalBookings       int64  `json:"total_bookings"`
	RatingSum           int64  `json:"rating_sum"`
	RatingCount         int64  `json:"rating_count"`
	AverageRatingScaled int64  `json:"average_rating_scaled"`
	CreatedAt           int64  `json:"created_at"`
	UpdatedAt           int64  `json:"updated_at"`
}

func FromListingView(v *queries.ListingView) *ListingResponse {
	res := &ListingResponse{}
	mustCopy(res, v)
	return res
}

type IntervalResponse struct {
	BookingID int64  `json:"booking_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

type AvailabilityResponse struct {
	ListingID int64              `json:"listing_id"`
	From      string             `json:"from"`
	To        string             `json:"to"`
	Available bool               `json:"available"`
	Blocked   []IntervalResponse `json:"blocked"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	res := &AvailabilityResponse{}
	mustCopy(res, v)
	if res.Blocked == nil {
		res.Blocked = []IntervalResponse{}
	}
	return res
}
