package event

import (
	"encoding/json"
	"time"

	"stay-ledger/internal/pkg/errs"

	"github.com/google/uuid"
)

type Kind string

const (
	KindListingCreated      Kind = "listing.created"
	KindListingDeactivated  Kind = "listing.deactivated"
	KindListingPriceUpdated Kind = "listing.price_updated"
	KindBookingConfirmed    Kind = "booking.confirmed"
	KindBookingCancelled    Kind = "booking.cancelled"
	KindBookingCompleted    Kind = "booking.completed"
	KindEscrowLocked        Kind = "escrow.locked"
	KindEscrowReleased      Kind = "escrow.released"
	KindEscrowRefunded      Kind = "escrow.refunded"
	KindReviewSubmitted     Kind = "review.submitted"
	KindFundsWithdrawn      Kind = "account.withdrawn"
)

type EntityType string

const (
	EntityListing EntityType = "listing"
	EntityBooking EntityType = "booking"
	EntityReview  EntityType = "review"
	EntityAccount EntityType = "account"
)

// Event is an immutable record of one committed transition. Seq is assigned
// by the store at commit and orders the log.
type Event struct {
	Seq        int64
	ID         uuid.UUID
	Kind       Kind
	EntityType EntityType
	EntityID   string
	Actor      string
	Timestamp  time.Time
	Payload    json.RawMessage
}

func New(kind Kind, entityType EntityType, entityID, actor string, at time.Time, payload any) (Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Event{}, errs.Wrap(err, "marshal event payload")
		}
		raw = b
	}
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Timestamp:  at,
		Payload:    raw,
	}, nil
}
