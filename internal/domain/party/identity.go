package party

import (
	"strings"
	"unicode"

	"stay-ledger/internal/pkg/errs"
)

const MaxIdentityLength = 128

var ErrInvalidIdentity = errs.NewMarked("identity must be 1-128 characters without spaces", errs.ErrInvalidInput)

// Identity is the caller identity handed to the ledger by the authentication
// layer: a host, a guest, a reviewer or the platform account. The ledger
// compares identities and never interprets them.
type Identity struct {
	value string
}

func NewIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxIdentityLength {
		return Identity{}, ErrInvalidIdentity
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return Identity{}, ErrInvalidIdentity
		}
	}
	return Identity{value: s}, nil
}

// MustIdentity is for constants and tests.
func MustIdentity(s string) Identity {
	id, err := NewIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (i Identity) String() string { return i.value }
func (i Identity) IsZero() bool   { return i.value == "" }
