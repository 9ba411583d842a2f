package shared

import (
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/party"
)

type IdempotencyRecord struct {
	Key         string
	Caller      party.Identity
	RequestHash string
	BookingID   booking.ID
	CreatedAt   time.Time
}
