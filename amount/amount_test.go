package amount

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dlcgo/dlcd/codec"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestUnitConversions pins the exact scaling factors between units.
func TestUnitConversions(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1000000000000", FromSats(1).PicoSats().String())
	require.Equal(t, "1000000000", FromMilliSats(1).PicoSats().String())
	require.Equal(t, "1000000", FromMicroSats(1).PicoSats().String())

	require.Zero(t, FromPicoSats(big.NewInt(1)).Sats())
	require.EqualValues(
		t, 1, FromPicoSats(big.NewInt(1_000_000_000_000)).Sats(),
	)

	require.Equal(
		t, "100000000000000000000", FromBitcoin(1).PicoSats().String(),
	)

	require.EqualValues(t, 100_000_000, FromBitcoin(1).Sats())
	require.EqualValues(t, 100_000_000_000, FromBitcoin(1).MilliSats())
	require.EqualValues(t, 100_000_000_000_000, FromBitcoin(1).MicroSats())
}

// TestTruncation asserts that coarser accessors truncate toward zero.
func TestTruncation(t *testing.T) {
	t.Parallel()

	// 1.999... sats.
	a := FromPicoSats(big.NewInt(1_999_999_999_999))
	require.EqualValues(t, 1, a.Sats())
	require.EqualValues(t, 1999, a.MilliSats())
	require.EqualValues(t, 1_999_999, a.MicroSats())

	// Toward zero, not toward negative infinity.
	neg := FromPicoSats(big.NewInt(-1_999_999_999_999))
	require.EqualValues(t, -1, neg.Sats())
	require.EqualValues(t, -1999, neg.MilliSats())
}

// TestFluentChaining covers the mutating and copying arithmetic forms.
func TestFluentChaining(t *testing.T) {
	t.Parallel()

	require.EqualValues(
		t, 1400, Zero().Add(FromSats(1000)).Add(FromSats(400)).Sats(),
	)

	a := FromBitcoin(1)
	c := a.SubN(FromBitcoin(1.1))
	require.Equal(t, 1.0, a.Bitcoin())
	require.Equal(t, -0.1, c.Bitcoin())
	require.True(t, c.IsNegative())

	b := FromSats(500)
	d := b.AddN(FromSats(1))
	require.EqualValues(t, 500, b.Sats())
	require.EqualValues(t, 501, d.Sats())

	e := FromSats(10)
	same := e.Sub(FromSats(20))
	require.Same(t, e, same)
	require.EqualValues(t, -10, e.Sats())
}

// TestAmountString asserts exactly eight decimals with truncation.
func TestAmountString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a    *Amount
		want string
	}{
		{Zero(), "0.00000000"},
		{FromSats(1), "0.00000001"},
		{FromBitcoin(1), "1.00000000"},
		{FromBitcoin(21_000_000), "21000000.00000000"},
		{FromSats(-10_000_000), "-0.10000000"},
		{FromMilliSats(1999), "0.00000001"},
		{FromPicoSats(big.NewInt(999_999_999_999)), "0.00000000"},
	}
	for _, test := range tests {
		require.Equal(t, test.want, test.a.String())
	}
}

// TestComparisons compares on picosats, not on the display float.
func TestComparisons(t *testing.T) {
	t.Parallel()

	small := FromPicoSats(big.NewInt(1))
	zero := Zero()

	// Both display as 0 BTC but are not equal.
	require.Equal(t, small.Bitcoin(), zero.Bitcoin())
	require.False(t, small.Eq(zero))
	require.True(t, small.Gt(zero))
	require.True(t, small.Gte(zero))
	require.True(t, zero.Lt(small))
	require.True(t, zero.Lte(small))
	require.True(t, zero.Lte(Zero()))
	require.True(t, zero.Eq(Zero()))
}

// TestFromBitcoinString covers exact decimal parsing.
func TestFromBitcoinString(t *testing.T) {
	t.Parallel()

	a, err := FromBitcoinString("0.000000000000000001")
	require.NoError(t, err)
	require.Equal(t, "100", a.PicoSats().String())

	a, err = FromBitcoinString("-1.5")
	require.NoError(t, err)
	require.EqualValues(t, -150_000_000, a.Sats())

	_, err = FromBitcoinString("0.000000000000000000001")
	require.ErrorIs(t, err, codec.ErrPrecisionOverflow)

	_, err = FromBitcoinString("one")
	require.ErrorIs(t, err, codec.ErrPrecisionOverflow)
}

// TestAmountValueConversion checks the signed/unsigned bridge.
func TestAmountValueConversion(t *testing.T) {
	t.Parallel()

	v, err := FromSats(42).Value()
	require.NoError(t, err)
	require.EqualValues(t, 42, v.Sats())

	_, err = FromSats(-1).Value()
	require.ErrorIs(t, err, ErrNegativeValue)

	require.EqualValues(t, 7, FromBtcutil(btcutil.Amount(7)).Sats())
}

// TestAmountJSON round trips amounts through JSON.
func TestAmountJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a    *Amount
		json string
	}{
		{FromSats(99999999), `99999999`},
		{FromSats(-5), `-5`},
		{FromMilliSats(1500), `"1.5"`},
		{FromSats(1 << 60), `"1152921504606846976"`},
	}
	for _, test := range tests {
		b, err := json.Marshal(test.a)
		require.NoError(t, err)
		require.Equal(t, test.json, string(b))

		got := Zero()
		require.NoError(t, json.Unmarshal(b, got))
		require.True(t, test.a.Eq(got))
	}
}

// TestAmountArithmeticProperties checks AddN/SubN against big.Int.
func TestAmountArithmeticProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Int64().Draw(t, "x")
		y := rapid.Int64().Draw(t, "y")

		a := FromPicoSats(big.NewInt(x))
		b := FromPicoSats(big.NewInt(y))

		sum := a.AddN(b)
		diff := a.SubN(b)

		wantSum := new(big.Int).Add(big.NewInt(x), big.NewInt(y))
		wantDiff := new(big.Int).Sub(big.NewInt(x), big.NewInt(y))

		require.Zero(t, wantSum.Cmp(sum.PicoSats()))
		require.Zero(t, wantDiff.Cmp(diff.PicoSats()))
		require.True(t, sum.SubN(b).Eq(a))
		require.Zero(t, big.NewInt(x).Cmp(a.PicoSats()))
	})
}
