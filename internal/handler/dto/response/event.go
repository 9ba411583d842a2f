package response

import (
	"encoding/json"

	"stay-ledger/internal/usecase/queries"
)

type EventResponse struct {
	Seq        int64           `json:"seq"`
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Actor      string          `json:"actor"`
	Timestamp  int64           `json:"timestamp"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func FromEventView(v *queries.EventView) *EventResponse {
	res := &EventResponse{}
	mustCopy(res, v)
	return res
}

type EventPageResponse struct {
	Items     []EventResponse `json:"items"`
	NextAfter *int64          `json:"next_after"`
}

func FromEventPage(p *queries.EventPage) *EventPageResponse {
	res := &EventPageResponse{Items: make([]EventResponse, len(p.Items)), NextAfter: p.NextAfter}
	for i := range p.Items {
		mustCopy(&res.Items[i], &p.Items[i])
	}
	return res
}
