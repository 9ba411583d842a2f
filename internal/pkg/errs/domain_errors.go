package errs

// Error classes surfaced by the ledger. Every precise error a caller can
// observe is marked with exactly one of these.
var (
	ErrInvalidInput      = New("invalid input")
	ErrNotAuthorized     = New("not authorized")
	ErrNotFound          = New("not found")
	ErrDatesUnavailable  = New("dates unavailable")
	ErrTooLateToCancel   = New("too late to cancel")
	ErrNotYetEligible    = New("not yet eligible")
	ErrAlreadySettled    = New("already settled")
	ErrNotEligible       = New("not eligible")
	ErrInsufficientFunds = New("insufficient funds")

	// ErrEntityHalted is returned for every operation on a listing after an
	// invariant violation was detected on it.
	ErrEntityHalted = New("entity halted")

	// ErrInvariantViolation is a defect, never a caller mistake.
	ErrInvariantViolation = New("invariant violation")
)

var classes = []error{
	ErrInvariantViolation,
	ErrEntityHalted,
	ErrInvalidInput,
	ErrNotAuthorized,
	ErrNotFound,
	ErrDatesUnavailable,
	ErrTooLateToCancel,
	ErrNotYetEligible,
	ErrAlreadySettled,
	ErrNotEligible,
	ErrInsufficientFunds,
}

// ClassOf returns the class err is marked with, or nil for unclassified errors.
func ClassOf(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range classes {
		if Is(err, c) {
			return c
		}
	}
	return nil
}
