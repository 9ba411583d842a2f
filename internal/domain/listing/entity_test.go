//go:build unit

package listing_test

import (
	"strings"
	"testing"
	"time"

	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*builder.ListingBuilder)
		errIs  error
	}{
		{name: "valid listing", mutate: func(*builder.ListingBuilder) {}},
		{name: "zero price", mutate: func(b *builder.ListingBuilder) { b.Price = 0 }, errIs: listing.ErrInvalidPrice},
		{name: "negative price", mutate: func(b *builder.ListingBuilder) { b.Price = -5 }, errIs: money.ErrNegativeAmount},
		{name: "blank owner", mutate: func(b *builder.ListingBuilder) { b.Owner = "  " }, errIs: party.ErrInvalidIdentity},
		{name: "blank name", mutate: func(b *builder.ListingBuilder) { b.Name = " \t" }, errIs: listing.ErrInvalidMetadata},
		{name: "missing image", mutate: func(b *builder.ListingBuilder) { b.ImageURI = "" }, errIs: listing.ErrInvalidMetadata},
		{
			name:   "description too long",
			mutate: func(b *builder.ListingBuilder) { b.Description = strings.Repeat("x", listing.MaxDescriptionLength+1) },
			errIs:  listing.ErrInvalidMetadata,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l, err := builder.NewListingBuilder().With(c.mutate).BuildDomain()
			if c.errIs == nil {
				require.NoError(t, err)
				assert.True(t, l.IsActive())
				assert.Equal(t, int64(10000), l.PricePerNight().Minor())
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, c.errIs))
			assert.True(t, errs.Is(err, errs.ErrInvalidInput))
		})
	}

	t.Run("metadata is trimmed", func(t *testing.T) {
		l, err := builder.NewListingBuilder().With(func(b *builder.ListingBuilder) { b.Name = "  Loft  " }).BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, "Loft", l.Metadata().Name())
	})
}

func TestListingOwnerOperations(t *testing.T) {
	owner := party.MustIdentity("host-1")
	stranger := party.MustIdentity("someone-else")
	later := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("deactivate is owner only and idempotent", func(t *testing.T) {
		l, err := builder.NewListingBuilder().BuildDomain()
		require.NoError(t, err)

		_, err = l.Deactivate(stranger, later)
		assert.True(t, errs.Is(err, errs.ErrNotAuthorized))
		assert.True(t, l.IsActive())

		changed, err := l.Deactivate(owner, later)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.False(t, l.IsActive())
		assert.Equal(t, later, l.UpdatedAt())

		changed, err = l.Deactivate(owner, later.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, later, l.UpdatedAt())

		assert.True(t, errs.Is(l.EnsureBookable(), listing.ErrInactive))
	})

	t.Run("update price", func(t *testing.T) {
		l, err := builder.NewListingBuilder().BuildDomain()
		require.NoError(t, err)
		price, _ := money.New(12000)

		assert.True(t, errs.Is(l.UpdatePrice(stranger, price, later), listing.ErrNotOwner))
		assert.True(t, errs.Is(l.UpdatePrice(owner, money.Zero(), later), listing.ErrInvalidPrice))
		require.NoError(t, l.UpdatePrice(owner, price, later))
		assert.Equal(t, int64(12000), l.PricePerNight().Minor())
	})
}

func TestAverageRatingScaled(t *testing.T) {
	l, err := builder.NewListingBuilder().BuildDomain()
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.AverageRatingScaled())

	now := time.Now()
	for _, r := range []int{5, 5, 4} {
		require.NoError(t, l.RecordRating(r, now))
	}
	assert.Equal(t, int64(14), l.RatingSum())
	assert.Equal(t, int64(3), l.RatingCount())
	assert.Equal(t, int64(466), l.AverageRatingScaled())

	assert.True(t, errs.Is(l.RecordRating(0, now), listing.ErrInvalidRating))
	assert.Equal(t, int64(3), l.RatingCount())
}

func TestParseID(t *testing.T) {
	id, err := listing.ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, listing.ID(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := listing.ParseID(bad)
		assert.True(t, errs.Is(err, errs.ErrInvalidInput), bad)
	}
}
