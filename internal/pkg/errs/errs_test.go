//go:build unit

package errs_test

import (
	"testing"

	"stay-ledger/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestNewMarked(t *testing.T) {
	first := errs.NewMarked("first thing missing", errs.ErrNotFound)
	second := errs.NewMarked("second thing missing", errs.ErrNotFound)

	assert.True(t, errs.Is(first, errs.ErrNotFound))
	assert.False(t, errs.Is(first, second))
	assert.False(t, errs.Is(first, errs.ErrInvalidInput))

	wrapped := errs.Wrapf(first, "listing %d", 7)
	assert.True(t, errs.Is(wrapped, first))
	assert.True(t, errs.Is(wrapped, errs.ErrNotFound))
	assert.False(t, errs.Is(wrapped, second))
	assert.Equal(t, "listing 7: first thing missing", wrapped.Error())
}

func TestClassOf(t *testing.T) {
	assert.Nil(t, errs.ClassOf(nil))
	assert.Nil(t, errs.ClassOf(errs.New("plain")))

	tooLate := errs.NewMarked("stay started", errs.ErrTooLateToCancel)
	assert.Equal(t, errs.ErrTooLateToCancel, errs.ClassOf(errs.Wrap(tooLate, "cancel")))

	parsed := errs.Mark(errs.New("bad id"), errs.ErrInvalidInput)
	assert.Equal(t, errs.ErrInvalidInput, errs.ClassOf(parsed))
}
