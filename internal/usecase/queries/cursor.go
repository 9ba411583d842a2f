package queries

import (
	"strconv"

	"stay-ledger/internal/pkg/errs"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// ValidateLimit clamps limit to [1, max]; zero or negative means the default.
func ValidateLimit(limit, limitMax int) int {
	if limitMax <= 0 || limitMax > MaxListLimit {
		limitMax = MaxListLimit
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > limitMax {
		return limitMax
	}
	return limit
}

// ParseAfter reads an "after" position. Empty means from the start.
func ParseAfter(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, errs.Mark(errs.Newf("invalid cursor %q", s), errs.ErrInvalidInput)
	}
	return v, nil
}

// nextAfter returns the position after the last item of a full page, or nil
// when the page was short and nothing follows.
func nextAfter(count, limit int, last int64) *int64 {
	if count < limit {
		return nil
	}
	return &last
}
