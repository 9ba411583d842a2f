//go:build unit

package money_test

import (
	"math"
	"math/big"
	"testing"

	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustAmount(t *testing.T, v int64) money.Amount {
	t.Helper()
	a, err := money.New(v)
	require.NoError(t, err)
	return a
}

func TestSplitFee(t *testing.T) {
	t.Run("333円×3泊、2.5%の手数料は切り捨て", func(t *testing.T) {
		price := mustAmount(t, 333)
		gross, err := price.MulInt(3)
		require.NoError(t, err)

		rate, err := money.NewBasisPoints(250)
		require.NoError(t, err)

		fee, net := money.SplitFee(gross, rate)
		assert.Equal(t, int64(999), gross.Minor())
		assert.Equal(t, int64(24), fee.Minor())
		assert.Equal(t, int64(975), net.Minor())

		sum, err := fee.Add(net)
		require.NoError(t, err)
		assert.True(t, sum.Equal(gross))
	})

	t.Run("手数料0%と100%", func(t *testing.T) {
		gross := mustAmount(t, 12345)

		zero, _ := money.NewBasisPoints(0)
		fee, net := money.SplitFee(gross, zero)
		assert.True(t, fee.IsZero())
		assert.Equal(t, gross, net)

		full, _ := money.NewBasisPoints(money.MaxBasisPoints)
		fee, net = money.SplitFee(gross, full)
		assert.Equal(t, gross, fee)
		assert.True(t, net.IsZero())
	})

	t.Run("int64の最大値でも溢れない", func(t *testing.T) {
		gross := mustAmount(t, math.MaxInt64)
		rate, _ := money.NewBasisPoints(9999)
		fee, net := money.SplitFee(gross, rate)

		want := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(9999))
		want.Quo(want, big.NewInt(money.MaxBasisPoints))
		assert.Equal(t, want.Int64(), fee.Minor())
		assert.Equal(t, int64(math.MaxInt64)-fee.Minor(), net.Minor())
	})
}

func TestSplitFeeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := rapid.Int64Range(0, math.MaxInt64).Draw(t, "gross")
		bps := rapid.Int64Range(0, money.MaxBasisPoints).Draw(t, "bps")

		gross, _ := money.New(g)
		rate, _ := money.NewBasisPoints(bps)
		fee, net := money.SplitFee(gross, rate)

		if fee.Minor()+net.Minor() != g {
			t.Fatalf("fee %d + net %d != gross %d", fee.Minor(), net.Minor(), g)
		}

		exact := new(big.Int).Mul(big.NewInt(g), big.NewInt(bps))
		exact.Quo(exact, big.NewInt(money.MaxBasisPoints))
		if exact.Int64() != fee.Minor() {
			t.Fatalf("fee %d, want floor %d", fee.Minor(), exact.Int64())
		}
	})
}

func TestAmountArithmetic(t *testing.T) {
	t.Run("負の金額は作れない", func(t *testing.T) {
		_, err := money.New(-1)
		require.Error(t, err)
		assert.True(t, errs.Is(err, money.ErrNegativeAmount))
		assert.True(t, errs.Is(err, errs.ErrInvalidInput))
	})

	t.Run("加算のオーバーフロー", func(t *testing.T) {
		_, err := mustAmount(t, math.MaxInt64).Add(mustAmount(t, 1))
		assert.True(t, errs.Is(err, money.ErrOverflow))
	})

	t.Run("乗算のオーバーフロー", func(t *testing.T) {
		_, err := mustAmount(t, math.MaxInt64/2+1).MulInt(2)
		assert.True(t, errs.Is(err, money.ErrOverflow))

		got, err := mustAmount(t, 7).MulInt(0)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("減算は0未満にならない", func(t *testing.T) {
		_, err := mustAmount(t, 5).Sub(mustAmount(t, 6))
		assert.True(t, errs.Is(err, money.ErrNegativeAmount))

		got, err := mustAmount(t, 6).Sub(mustAmount(t, 6))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("Sum", func(t *testing.T) {
		got, err := money.Sum(mustAmount(t, 1), mustAmount(t, 2), mustAmount(t, 3))
		require.NoError(t, err)
		assert.Equal(t, int64(6), got.Minor())
		assert.Equal(t, 1, got.Cmp(mustAmount(t, 5)))
		assert.Equal(t, 0, got.Cmp(mustAmount(t, 6)))
		assert.Equal(t, -1, got.Cmp(mustAmount(t, 7)))
	})

	t.Run("手数料率の範囲", func(t *testing.T) {
		_, err := money.NewBasisPoints(-1)
		assert.True(t, errs.Is(err, money.ErrInvalidRate))
		_, err = money.NewBasisPoints(money.MaxBasisPoints + 1)
		assert.True(t, errs.Is(err, money.ErrInvalidRate))
	})
}
