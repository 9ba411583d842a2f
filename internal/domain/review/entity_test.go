//go:build unit

package review_test

import (
	"strings"
	"testing"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.ReviewBuilder)
	errIs  error
}

func TestReview(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewReviewBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.Equal(t, review.ID(1), actual.ID())
		assert.Equal(t, booking.ID(1), actual.BookingID())
		assert.Equal(t, "guest-1", actual.Reviewer().String())
		assert.False(t, actual.CreatedAt().IsZero())
		assert.Equal(t, 5, actual.Rating().Value())
		assert.Equal(t, "Excellent stay!", actual.Comment().String())
	})

	t.Run("rating validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "below minimum rating",
				mutate: func(b *builder.ReviewBuilder) { b.Rating = 0 },
				errIs:  review.ErrInvalidRating,
			},
			{
				name:   "minimum valid rating",
				mutate: func(b *builder.ReviewBuilder) { b.Rating = 1 },
			},
			{
				name:   "maximum valid rating",
				mutate: func(b *builder.ReviewBuilder) { b.Rating = 5 },
			},
			{
				name:   "above maximum rating",
				mutate: func(b *builder.ReviewBuilder) { b.Rating = 6 },
				errIs:  review.ErrInvalidRating,
			},
			{
				name:   "negative rating",
				mutate: func(b *builder.ReviewBuilder) { b.Rating = -1 },
				errIs:  review.ErrInvalidRating,
			},
		})
	})

	t.Run("comment validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "minimum length comment",
				mutate: func(b *builder.ReviewBuilder) { b.Comment = "a" },
			},
			{
				name:   "maximum length comment counted in characters",
				mutate: func(b *builder.ReviewBuilder) { b.Comment = strings.Repeat("é", review.MaxCommentLength) },
			},
			{
				name:   "empty comment",
				mutate: func(b *builder.ReviewBuilder) { b.Comment = "" },
				errIs:  review.ErrEmptyComment,
			},
			{
				name:   "whitespace only comment",
				mutate: func(b *builder.ReviewBuilder) { b.Comment = "   " },
				errIs:  review.ErrEmptyComment,
			},
			{
				name:   "comment exceeds maximum length",
				mutate: func(b *builder.ReviewBuilder) { b.Comment = strings.Repeat("a", review.MaxCommentLength+1) },
				errIs:  review.ErrCommentTooLong,
			},
		})
	})

	t.Run("comment trimming", func(t *testing.T) {
		actual, err := builder.NewReviewBuilder().
			With(func(b *builder.ReviewBuilder) { b.Comment = "  Trimmed comment  " }).
			BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, "Trimmed comment", actual.Comment().String())
	})

	t.Run("errors carry their class", func(t *testing.T) {
		_, err := builder.NewReviewBuilder().With(func(b *builder.ReviewBuilder) { b.Rating = 9 }).BuildDomain()
		assert.True(t, errs.Is(err, errs.ErrInvalidInput))
	})
}

func TestCheckEligibility(t *testing.T) {
	guest := party.MustIdentity("guest-1")

	completed := func(t *testing.T) *booking.Booking {
		t.Helper()
		bb := builder.NewBookingBuilder()
		b := bb.BuildConfirmed()
		ok, err := b.Complete(bb.CheckOut, bb.CheckOut)
		require.NoError(t, err)
		require.True(t, ok)
		return b
	}

	t.Run("guest of a completed booking may review once", func(t *testing.T) {
		require.NoError(t, review.CheckEligibility(completed(t), guest, false))
	})

	t.Run("second review is rejected", func(t *testing.T) {
		err := review.CheckEligibility(completed(t), guest, true)
		assert.True(t, errs.Is(err, review.ErrReviewAlreadyExists))
		assert.True(t, errs.Is(err, errs.ErrNotEligible))
	})

	t.Run("only the guest may review", func(t *testing.T) {
		err := review.CheckEligibility(completed(t), party.MustIdentity("host-1"), false)
		assert.True(t, errs.Is(err, review.ErrNotGuest))
	})

	t.Run("confirmed booking is not yet reviewable", func(t *testing.T) {
		b := builder.NewBookingBuilder().BuildConfirmed()
		err := review.CheckEligibility(b, guest, false)
		assert.True(t, errs.Is(err, review.ErrBookingNotCompleted))
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewReviewBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.True(t, errs.Is(err, c.errIs))
			}
		})
	}
}
