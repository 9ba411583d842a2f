package api

import "stay-ledger/internal/pkg/errs"

var (
	errUnauthenticated       = errs.New("caller is not authenticated")
	errIdempotencyKeyTooLong = errs.NewMarked("idempotency key exceeds 255 characters", errs.ErrInvalidInput)
)
