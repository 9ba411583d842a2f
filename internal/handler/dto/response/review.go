package response

import (
	"stay-ledger/internal/usecase/queries"
)

type ReviewResponse struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"booking_id"`
	ListingID int64  `json:"listing_id"`
	Reviewer  string `json:"reviewer"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt int64  `json:"created_at"`
}

func FromReviewView(v *queries.ReviewView) *ReviewResponse {
	res := &ReviewResponse{}
	mustCopy(res, v)
	return res
}

type ReviewPageResponse struct {
	Items     []ReviewResponse `json:"items"`
	NextAfter *int64           `json:"next_after"`
}

func FromReviewPage(p *queries.ReviewPage) *ReviewPageResponse {
	res := &ReviewPageResponse{Items: make([]ReviewResponse, len(p.Items)), NextAfter: p.NextAfter}
	for i := range p.Items {
		mustCopy(&res.Items[i], &p.Items[i])
	}
	return res
}
