package money

import (
	"math"
	"strconv"

	"stay-ledger/internal/pkg/errs"
)

// MaxBasisPoints is 100%.
const MaxBasisPoints = 10000

var (
	ErrNegativeAmount = errs.NewMarked("amount must not be negative", errs.ErrInvalidInput)
	ErrOverflow       = errs.NewMarked("amount exceeds the representable range", errs.ErrInvalidInput)
	ErrInvalidRate    = errs.NewMarked("fee rate must be between 0 and 10000 basis points", errs.ErrInvalidInput)
)

// Amount is a non-negative quantity of minor units of the settlement asset.
// The zero value is zero.
type Amount struct {
	minor int64
}

func New(minor int64) (Amount, error) {
	if minor < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{minor: minor}, nil
}

func Zero() Amount { return Amount{} }

func (a Amount) Minor() int64   { return a.minor }
func (a Amount) IsZero() bool   { return a.minor == 0 }
func (a Amount) String() string { return strconv.FormatInt(a.minor, 10) }

func (a Amount) Equal(b Amount) bool { return a.minor == b.minor }

func (a Amount) Cmp(b Amount) int {
	switch {
	case a.minor < b.minor:
		return -1
	case a.minor > b.minor:
		return 1
	default:
		return 0
	}
}

func (a Amount) Add(b Amount) (Amount, error) {
	if a.minor > math.MaxInt64-b.minor {
		return Amount{}, ErrOverflow
	}
	return Amount{minor: a.minor + b.minor}, nil
}

// Sub fails instead of going below zero.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b.minor > a.minor {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{minor: a.minor - b.minor}, nil
}

func (a Amount) MulInt(n int64) (Amount, error) {
	if n < 0 {
		return Amount{}, ErrNegativeAmount
	}
	if n != 0 && a.minor > math.MaxInt64/n {
		return Amount{}, ErrOverflow
	}
	return Amount{minor: a.minor * n}, nil
}

func Sum(amounts ...Amount) (Amount, error) {
	total := Zero()
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

type BasisPoints struct {
	value int64
}

func NewBasisPoints(v int64) (BasisPoints, error) {
	if v < 0 || v > MaxBasisPoints {
		return BasisPoints{}, ErrInvalidRate
	}
	return BasisPoints{value: v}, nil
}

func (b BasisPoints) Value() int64 { return b.value }

// SplitFee returns fee = floor(gross * rate / 10000) and net = gross - fee.
// The split is exact for every int64 gross: gross is decomposed as
// q*10000 + r so the product never leaves int64.
func SplitFee(gross Amount, rate BasisPoints) (fee, net Amount) {
	q, r := gross.minor/MaxBasisPoints, gross.minor%MaxBasisPoints
	f := q*rate.value + r*rate.value/MaxBasisPoints
	return Amount{minor: f}, Amount{minor: gross.minor - f}
}
